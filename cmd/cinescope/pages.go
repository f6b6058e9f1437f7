package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vadimtrunov/cinescope/internal/browse"
	"github.com/vadimtrunov/cinescope/internal/core"
	"github.com/vadimtrunov/cinescope/internal/discover"
)

func newHomeCmd() *cobra.Command {
	var recommended string
	cmd := &cobra.Command{
		Use:   "home",
		Short: "Show the home rows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				home, err := a.svc.Home(ctx, recommended)
				if err != nil {
					return err
				}
				printHome(cmd.OutOrStdout(), home)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&recommended, "recommended", browse.RecommendedTokens[0],
		"recommended row: "+strings.Join(browse.RecommendedTokens, ", "))
	return cmd
}

func printHome(w io.Writer, home *browse.Home) {
	if len(home.Hero) > 0 {
		fmt.Fprintln(w, styleHeader.Render("Featured"))
		for _, it := range home.Hero {
			fmt.Fprintln(w, "  "+itemLine(it))
		}
		fmt.Fprintln(w)
	}
	for _, row := range home.Rows {
		fmt.Fprintln(w, styleHeader.Render(row.Title)+styleDim.Render("  view all: cinescope browse "+row.ViewAll))
		switch row.Status {
		case discover.StatusFailed:
			fmt.Fprintln(w, styleError.Render("  Couldn't load this row."))
		case discover.StatusEmpty:
			fmt.Fprintln(w, styleDim.Render("  No results."))
		default:
			for _, it := range row.Items {
				fmt.Fprintln(w, "  "+itemLine(it))
			}
		}
		fmt.Fprintln(w)
	}
}

func newTitleCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "title <movie|tv> <id>",
		Short:   "Show a movie or series",
		Example: `  cinescope title movie 27205`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mediaType, err := core.ParseMediaType(args[0])
			if err != nil {
				return err
			}
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			return withApp(func(ctx context.Context, a *app) error {
				page, err := a.svc.Title(ctx, mediaType, id)
				if err != nil {
					return err
				}
				printTitle(cmd.OutOrStdout(), page)
				return nil
			})
		},
	}
}

func printTitle(w io.Writer, p *browse.TitlePage) {
	d := p.Details
	header := d.Title
	if year := discover.ReleaseYear(d.ReleaseDate); year > 0 {
		header += fmt.Sprintf(" (%d)", year)
	}
	fmt.Fprintln(w, styleHeader.Render(header))

	fmt.Fprintf(w, "%s · %s · %s\n", p.Runtime, p.Rating.Label(), styleRating.Render(fmt.Sprintf("★ %.1f", d.VoteAverage)))
	if len(d.Genres) > 0 {
		names := make([]string, len(d.Genres))
		for i, g := range d.Genres {
			names[i] = g.Name
		}
		fmt.Fprintln(w, styleDim.Render(strings.Join(names, ", ")))
	}
	if d.Tagline != "" {
		fmt.Fprintln(w, styleInfo.Render(d.Tagline))
	}
	if d.Overview != "" {
		fmt.Fprintln(w, "\n"+d.Overview)
	}
	if len(p.Cast) > 0 {
		fmt.Fprintln(w, "\n"+styleTitle.Render("Cast"))
		for _, c := range p.Cast {
			fmt.Fprintf(w, "  %s %s\n", c.Name, styleDim.Render("as "+c.Character))
		}
	}
	if url := browse.VideoURL(p.Trailer); url != "" {
		fmt.Fprintln(w, "\n"+styleTitle.Render("Trailer")+" "+url)
	}
	if len(p.Recommendations) > 0 {
		fmt.Fprintln(w, "\n"+styleTitle.Render("Recommended"))
		for _, it := range p.Recommendations {
			fmt.Fprintln(w, "  "+itemLine(it))
		}
	}
}

func newPersonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "person <id>",
		Short: "Show a person and their best-known credits",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withApp(func(ctx context.Context, a *app) error {
				page, err := a.svc.Person(ctx, id)
				if err != nil {
					return err
				}
				printPerson(cmd.OutOrStdout(), page)
				return nil
			})
		},
	}
}

func printPerson(w io.Writer, p *browse.PersonPage) {
	fmt.Fprintln(w, styleHeader.Render(p.Person.Name))
	var facts []string
	if p.Person.Department != "" {
		facts = append(facts, p.Person.Department)
	}
	if p.Person.Birthday != "" {
		facts = append(facts, "born "+p.Person.Birthday)
	}
	if p.Person.PlaceOfBirth != "" {
		facts = append(facts, p.Person.PlaceOfBirth)
	}
	if len(facts) > 0 {
		fmt.Fprintln(w, styleDim.Render(strings.Join(facts, " · ")))
	}
	if p.Person.Biography != "" {
		fmt.Fprintln(w, "\n"+p.Person.Biography)
	}
	if len(p.Credits) > 0 {
		fmt.Fprintln(w, "\n"+styleTitle.Render("Known for"))
		for _, c := range p.Credits {
			line := "  " + c.Title
			if year := discover.ReleaseYear(c.ReleaseDate); year > 0 {
				line += fmt.Sprintf(" (%d)", year)
			}
			if c.Character != "" {
				line += styleDim.Render(" as " + c.Character)
			}
			fmt.Fprintln(w, line)
		}
	}
}

func newPeopleCmd() *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "people",
		Short: "List popular people",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				people, err := a.svc.PopularPeople(ctx, max(page, 1))
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, p := range people {
					fmt.Fprintf(out, "%8d  %s  %s\n", p.ID, styleTitle.Render(p.Name), styleDim.Render(p.Department))
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&page, "page", "p", 1, "page number")
	return cmd
}

// parseID parses a positive TMDb ID.
func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("id must be a positive integer (got %q)", s)
	}
	return id, nil
}
