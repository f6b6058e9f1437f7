package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/vadimtrunov/cinescope/internal/browse"
	"github.com/vadimtrunov/cinescope/internal/core"
	"github.com/vadimtrunov/cinescope/internal/discover"
)

func newBrowseCmd() *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "browse <category>",
		Short: "Browse a category page by page",
		Long: "Browse a curated category, a genre (movie_genre_18, tv_genre_16) or a country\n" +
			"(country_kr). Runs an interactive pager on a terminal, prints one page otherwise.\n\n" +
			"Categories: " + strings.Join(discover.FixedTokens(), ", "),
		Example: `  cinescope browse movie_popular
  cinescope browse tv_top_rated --page 3`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := discover.ParseCategory(args[0])
			if err != nil {
				return err
			}
			return runListing(cmd.OutOrStdout(), func(ctx context.Context, a *app) (core.Query, string, error) {
				return cat.Query, cat.TitleWith(a.svc.Taxonomy().Lookup(ctx)), nil
			}, page)
		},
	}
	cmd.Flags().IntVarP(&page, "page", "p", 1, "page to start on")
	return cmd
}

func newSearchCmd() *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:     "search <query>",
		Short:   "Search movies and series by title",
		Example: `  cinescope search the dark knight`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return runListing(cmd.OutOrStdout(), func(context.Context, *app) (core.Query, string, error) {
				return browse.SearchQuery(query), fmt.Sprintf("Results for %q", query), nil
			}, page)
		},
	}
	cmd.Flags().IntVarP(&page, "page", "p", 1, "page to start on")
	return cmd
}

// listingSource resolves the query and title of a listing once services exist.
type listingSource func(ctx context.Context, a *app) (core.Query, string, error)

// runListing shows a listing in the TUI pager, or prints one page when stdout
// is not a terminal.
func runListing(out io.Writer, source listingSource, page int) error {
	interactive := isTerminal(os.Stdout)

	a, err := bootstrap(interactive)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	ctx, cancel := signalContext()
	defer cancel()

	q, title, err := source(ctx, a)
	if err != nil {
		return err
	}

	paginator := a.svc.NewPaginator()
	if !interactive {
		p, err := paginator.FetchPage(ctx, q, page)
		printPage(out, title, p)
		return err
	}

	prog := tea.NewProgram(newBrowseModel(ctx, paginator, q, title, page), tea.WithAltScreen())

	// Bridge OS signal cancellation into the Bubble Tea event loop.
	go func() {
		<-ctx.Done()
		prog.Send(tea.Quit())
	}()

	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("run browser: %w", err)
	}
	return nil
}

// browseKeys are the pager key bindings.
type browseKeys struct {
	Next   key.Binding
	Prev   key.Binding
	Reload key.Binding
	Quit   key.Binding
}

func defaultBrowseKeys() browseKeys {
	return browseKeys{
		Next: key.NewBinding(
			key.WithKeys("n", "right", "l"),
			key.WithHelp("n/→", "next page"),
		),
		Prev: key.NewBinding(
			key.WithKeys("p", "left", "h"),
			key.WithHelp("p/←", "previous page"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// pageMsg carries a fetched page back to the TUI.
type pageMsg struct {
	page discover.Page
	err  error
}

// browseModel is the Bubble Tea model of the listing pager.
type browseModel struct {
	ctx       context.Context
	paginator *discover.Paginator
	query     core.Query
	title     string
	start     int
	keys      browseKeys
	spinner   spinner.Model
	page      discover.Page
	err       error
	loading   bool
}

func newBrowseModel(ctx context.Context, p *discover.Paginator, q core.Query, title string, start int) browseModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styleInfo
	return browseModel{
		ctx:       ctx,
		paginator: p,
		query:     q,
		title:     title,
		start:     max(start, 1),
		keys:      defaultBrowseKeys(),
		spinner:   s,
		loading:   true,
	}
}

// Init fetches the first page.
func (m browseModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetch(func(ctx context.Context) (discover.Page, error) {
		return m.paginator.FetchPage(ctx, m.query, m.start)
	}))
}

// Update handles key presses and fetched pages.
func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case pageMsg:
		if errors.Is(msg.err, discover.ErrStale) {
			return m, nil
		}
		m.loading = false
		m.page = msg.page
		m.err = msg.err
		return m, nil

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m browseModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Next):
		if !m.page.HasNext() {
			return m, nil
		}
		return m.startFetch(m.paginator.NextPage)
	case key.Matches(msg, m.keys.Prev):
		if !m.page.HasPrevious() {
			return m, nil
		}
		return m.startFetch(m.paginator.PreviousPage)
	case key.Matches(msg, m.keys.Reload):
		return m.startFetch(m.paginator.Reload)
	}
	return m, nil
}

// startFetch shows the spinner and runs fn. A newer fetch supersedes an
// outstanding one.
func (m browseModel) startFetch(fn func(context.Context) (discover.Page, error)) (tea.Model, tea.Cmd) {
	wasLoading := m.loading
	m.loading = true
	if wasLoading {
		return m, m.fetch(fn)
	}
	return m, tea.Batch(m.spinner.Tick, m.fetch(fn))
}

func (m browseModel) fetch(fn func(context.Context) (discover.Page, error)) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		page, err := fn(ctx)
		return pageMsg{page: page, err: err}
	}
}

// View renders the header, the page body and the key help.
func (m browseModel) View() string {
	var sb strings.Builder

	header := m.title
	if m.page.Number > 0 {
		header += fmt.Sprintf(" · page %d/%d", m.page.Number, max(m.page.TotalPages, 1))
	}
	sb.WriteString(styleHeader.Render(header))
	sb.WriteString("\n")

	switch {
	case m.loading:
		sb.WriteString(m.spinner.View() + styleDim.Render(" Loading..."))
	case m.page.Status == discover.StatusFailed:
		sb.WriteString(styleError.Render("Couldn't load this page. Press r to try again."))
		if m.err != nil {
			sb.WriteString("\n" + styleDim.Render(m.err.Error()))
		}
	case m.page.Status == discover.StatusEmpty:
		sb.WriteString(styleDim.Render("No results."))
	default:
		for i, it := range m.page.Items {
			fmt.Fprintf(&sb, "%3d. %s\n", i+1, itemLine(it))
		}
	}
	sb.WriteString("\n\n")
	sb.WriteString(styleDim.Render(m.helpLine()))
	return sb.String()
}

func (m browseModel) helpLine() string {
	bindings := []key.Binding{m.keys.Next, m.keys.Prev, m.keys.Reload, m.keys.Quit}
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " · ")
}
