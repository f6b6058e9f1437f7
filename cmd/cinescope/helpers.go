package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/vadimtrunov/cinescope/internal/browse"
	"github.com/vadimtrunov/cinescope/internal/config"
	"github.com/vadimtrunov/cinescope/internal/discover"
	"github.com/vadimtrunov/cinescope/internal/httpclient"
	"github.com/vadimtrunov/cinescope/internal/metadata/tmdb"
)

// Lipgloss styles used across commands.
var (
	styleError   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))  // red
	styleSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // green
	styleInfo    = lipgloss.NewStyle().Foreground(lipgloss.Color("12")) // blue
	styleDim     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))  // gray
	styleTitle   = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true)
	styleRating  = lipgloss.NewStyle().Foreground(lipgloss.Color("11")) // yellow

	styleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("5")).
			MarginBottom(1)
)

// app is what every command needs once configuration is loaded.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	svc    *browse.Service
	closer io.Closer
}

func (a *app) Close() error {
	return a.closer.Close()
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// loadConfig loads and validates the configuration file.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	return cfg, nil
}

// bootstrap loads configuration, sets up logging and creates the browse
// service. quiet discards logs unless a log file is configured, so a TUI
// is not painted over.
func bootstrap(quiet bool) (*app, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}

	var (
		logger *slog.Logger
		closer io.Closer = nopCloser{}
	)
	if quiet && cfg.App.LogFile == "" {
		logger = config.NewLogger(io.Discard, cfg.App.LogLevel)
		slog.SetDefault(logger)
	} else {
		logger, closer, err = config.SetupLogger(cfg.App)
		if err != nil {
			return nil, err
		}
	}

	return &app{
		cfg:    cfg,
		logger: logger,
		svc:    initServices(cfg, logger),
		closer: closer,
	}, nil
}

// initServices creates the TMDb client and the browse service on top of it.
func initServices(cfg *config.Config, logger *slog.Logger) *browse.Service {
	httpCfg := httpclient.DefaultConfig()
	httpCfg.Timeout = cfg.HTTP.Timeout
	httpCfg.MaxRetries = cfg.HTTP.MaxRetries

	client := tmdb.New(tmdb.Options{
		APIKey:   cfg.TMDb.APIKey,
		BaseURL:  cfg.TMDb.BaseURL,
		Language: cfg.TMDb.Language,
		Region:   cfg.TMDb.Region,
		CacheTTL: cfg.TMDb.CacheTTL,
		HTTP:     httpCfg,
	}, logger)
	logger.Debug("TMDb client initialized",
		slog.String("url", sanitizeURL(cfg.TMDb.BaseURL)),
		slog.String("language", cfg.TMDb.Language),
	)

	return browse.New(client, browse.Options{
		EnrichConcurrency: cfg.Discover.EnrichConcurrency,
		SuggestionLimit:   cfg.Discover.SuggestionLimit,
	}, logger)
}

// signalContext is canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// sanitizeURL strips credentials, query params, and fragment from a URL for safe logging.
func sanitizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || u.Scheme == "" {
		return "<redacted>"
	}
	u.User = nil
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}

// itemLine renders one listing entry: title, year, runtime and score.
func itemLine(it discover.Item) string {
	var sb strings.Builder
	sb.WriteString(styleTitle.Render(it.Title))
	if it.Year > 0 {
		sb.WriteString(styleDim.Render(fmt.Sprintf(" (%d)", it.Year)))
	}
	sb.WriteString("  " + it.Runtime)
	if it.VoteAverage > 0 {
		sb.WriteString("  " + styleRating.Render(fmt.Sprintf("★ %.1f", it.VoteAverage)))
	}
	return sb.String()
}

// printPage writes a page for non-interactive output.
func printPage(w io.Writer, title string, page discover.Page) {
	header := title
	if page.Number > 0 {
		header += fmt.Sprintf(" · page %d/%d", page.Number, max(page.TotalPages, 1))
	}
	fmt.Fprintln(w, styleHeader.Render(header))

	switch page.Status {
	case discover.StatusFailed:
		fmt.Fprintln(w, styleError.Render("Couldn't load this page. Try again."))
		return
	case discover.StatusEmpty:
		fmt.Fprintln(w, styleDim.Render("No results."))
		return
	}
	for i, it := range page.Items {
		fmt.Fprintf(w, "%3d. %s\n", i+1, itemLine(it))
	}
}
