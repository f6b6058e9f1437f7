package main

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vadimtrunov/cinescope/internal/browse"
	"github.com/vadimtrunov/cinescope/internal/core"
	"github.com/vadimtrunov/cinescope/internal/discover"
)

// discoverFlags are the filter facets of the discover command.
type discoverFlags struct {
	mediaType string
	genres    []string
	countries []string
	years     []int
	rating    float64
	sort      string
	page      int
}

func newDiscoverCmd() *cobra.Command {
	var f discoverFlags
	cmd := &cobra.Command{
		Use:   "discover",
		Short: "List titles matching a filter",
		Long: "List movies or series filtered by genre, origin country, release year and\n" +
			"minimum rating. Genres and countries accept names or IDs/codes.",
		Example: `  cinescope discover --genre drama --genre comedy --country kr
  cinescope discover --type tv --year 2019,2020 --rating 7.5 --sort vote_average.desc`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runListing(cmd.OutOrStdout(), func(ctx context.Context, a *app) (core.Query, string, error) {
				filter, err := f.resolve(ctx, a.svc.Taxonomy())
				if err != nil {
					return core.Query{}, "", err
				}
				q, err := discover.BuildFilter(filter, core.MediaMovie)
				if err != nil {
					return core.Query{}, "", err
				}
				return q, discoverTitle(q.MediaType, filter), nil
			}, f.page)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.mediaType, "type", "t", string(core.MediaMovie), "media type: movie or tv")
	flags.StringSliceVarP(&f.genres, "genre", "g", nil, "genre name or ID (repeatable, all must match)")
	flags.StringSliceVar(&f.countries, "country", nil, "origin country name or ISO code (repeatable)")
	flags.IntSliceVarP(&f.years, "year", "y", nil, "release year (repeatable, spans min..max)")
	flags.Float64VarP(&f.rating, "rating", "r", 0, "minimum vote average (0-10)")
	flags.StringVarP(&f.sort, "sort", "s", "", "sort: popularity, release_date, vote_average or vote_count, with .asc or .desc")
	flags.IntVarP(&f.page, "page", "p", 1, "page to start on")
	return cmd
}

// resolve turns the flags into a filter, resolving genre and country names
// through the taxonomy.
func (f discoverFlags) resolve(ctx context.Context, tax *browse.Taxonomy) (discover.FilterState, error) {
	mediaType, err := core.ParseMediaType(f.mediaType)
	if err != nil {
		return discover.FilterState{}, err
	}

	v := url.Values{}
	v.Set("type", string(mediaType))
	for _, g := range f.genres {
		id, err := tax.ResolveGenre(ctx, mediaType, g)
		if err != nil {
			return discover.FilterState{}, err
		}
		v.Add("genre", strconv.Itoa(id))
	}
	for _, c := range f.countries {
		code, err := tax.ResolveCountry(ctx, c)
		if err != nil {
			return discover.FilterState{}, err
		}
		v.Add("country", code)
	}
	for _, y := range f.years {
		v.Add("year", strconv.Itoa(y))
	}
	if f.rating > 0 {
		v.Set("rating", strconv.FormatFloat(f.rating, 'f', -1, 64))
	}
	if f.sort != "" {
		v.Set("sort", f.sort)
	}
	return discover.FilterFromValues(v)
}

func discoverTitle(mediaType core.MediaType, f discover.FilterState) string {
	title := "Discover Movies"
	if mediaType == core.MediaTV {
		title = "Discover Series"
	}
	if !f.IsEmpty() {
		title += " · " + f.String()
	}
	return title
}

func newGenresCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "genres <movie|tv>",
		Short:     "List the genres of a media type",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(core.MediaMovie), string(core.MediaTV)},
		RunE: func(cmd *cobra.Command, args []string) error {
			mediaType, err := core.ParseMediaType(args[0])
			if err != nil {
				return err
			}
			return withApp(func(ctx context.Context, a *app) error {
				genres, err := a.svc.Taxonomy().Genres(ctx, mediaType)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, g := range genres {
					fmt.Fprintf(out, "%6d  %s  %s\n", g.ID, g.Name,
						styleDim.Render(discover.GenreToken(mediaType, g.ID)))
				}
				return nil
			})
		},
	}
}

func newCountriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "countries",
		Short: "List production countries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				countries, err := a.svc.Taxonomy().Countries(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, c := range countries {
					fmt.Fprintf(out, "%s  %s\n", strings.ToUpper(c.Code), c.Name)
				}
				return nil
			})
		},
	}
}

// withApp runs fn with services and a signal-aware context.
func withApp(fn func(ctx context.Context, a *app) error) error {
	a, err := bootstrap(false)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	ctx, cancel := signalContext()
	defer cancel()
	return fn(ctx, a)
}
