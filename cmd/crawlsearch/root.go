package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for crawlsearch.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawlsearch",
		Short: "Crawl a website and search its pages",
		Long: `crawlsearch crawls a single website breadth-first and stores the text of
every page in a corpus named after the site.

The corpus can then be searched for an exact substring with one of five
algorithms: naive, Boyer-Moore, Knuth-Morris-Pratt, Rabin-Karp and
Aho-Corasick. Pages are ranked by the number of occurrences.

Corpora live in a SQLite database in the XDG data directory unless
--postgres-dsn selects a PostgreSQL database.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewSearchCmd())
	cmd.AddCommand(NewCorpusCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
