package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.3.0"

var configPath string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, styleError.Render(err.Error()))
		os.Exit(1)
	}
}

// newRootCmd builds the command tree.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cinescope",
		Short: "Browse movies and series from TMDb",
		Long: "cinescope browses curated categories, filtered discover listings and search\n" +
			"results from TMDb, page by page, in the terminal, over HTTP, in Telegram or as MCP tools.",
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/cinescope.yaml", "path to configuration file")

	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	rootCmd.AddCommand(
		newVersionCmd(),
		newHomeCmd(),
		newBrowseCmd(),
		newDiscoverCmd(),
		newSearchCmd(),
		newTitleCmd(),
		newPersonCmd(),
		newPeopleCmd(),
		newGenresCmd(),
		newCountriesCmd(),
		newServeCmd(),
		newBotCmd(),
		newMCPServeCmd(),
		newConfigCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "cinescope v%s\n", version)
		},
	}
}
