package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/crawlsearch/internal/config"
	"github.com/nao1215/crawlsearch/internal/model"
	"github.com/nao1215/crawlsearch/internal/search"
)

// NewSearchCmd creates the search command.
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <corpus> <pattern>",
		Short: "Search a corpus for an exact substring",
		Long: `Search counts the occurrences of a pattern in the text of every page of a
corpus, ignoring case, and lists the matching pages with the most matches
first. Pages sharing a title are listed once.

Algorithms (name or code):
  naive          COUNT  substring counting
  boyer-moore    BM     bad character and good suffix shifts
  kmp            KMP    Knuth-Morris-Pratt prefix function
  rabin-karp     RK     rolling hash, verified on every hash hit
  aho-corasick   AC     automaton over the pattern

Examples:
  # Search with the default algorithm
  crawlsearch search en_wikipedia_org "gopher"

  # Use Boyer-Moore and show the top 20 pages
  crawlsearch search -a BM -n 20 en_wikipedia_org "gopher"

  # Run every algorithm and compare timings
  crawlsearch search --compare en_wikipedia_org "gopher"`,
		Args: cobra.ExactArgs(2),
		RunE: runSearchCmd,
	}

	cmd.Flags().StringP("algorithm", "a", config.DefaultAlgorithm,
		"Search algorithm: "+strings.Join(search.Codes(), ", ")+" or its name")
	cmd.Flags().IntP("max-results", "n", config.DefaultMaxResults,
		"Maximum number of pages listed (0 lists all)")
	cmd.Flags().Bool("compare", false,
		"Run every algorithm and report each")

	addStorageFlags(cmd.Flags())
	addOutputFlags(cmd)

	return cmd
}

// runSearchCmd executes the search command.
func runSearchCmd(cmd *cobra.Command, args []string) error {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)

	var err error
	cfg.Algorithm, err = cmd.Flags().GetString("algorithm")
	if err != nil {
		return err
	}
	cfg.MaxResults, err = cmd.Flags().GetInt("max-results")
	if err != nil {
		return err
	}
	compare, err := cmd.Flags().GetBool("compare")
	if err != nil {
		return err
	}
	if err := readStorageFlags(cmd, cfg); err != nil {
		return err
	}
	if err := readOutputFlags(cmd, cfg); err != nil {
		return err
	}
	if err := cfg.ValidateOutput(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd)

	ctx, cancel := signalContext(cmd.Context(), logger)
	defer cancel()

	q := model.SearchQuery{
		Corpus:     args[0],
		Pattern:    args[1],
		Algorithm:  cfg.Algorithm,
		MaxResults: cfg.MaxResults,
	}
	return runSearch(ctx, cfg, q, compare, logger, cmd.OutOrStdout())
}

// runSearch runs q, or every algorithm for q when compare is set, and
// writes the reports.
func runSearch(ctx context.Context, cfg *config.Config, q model.SearchQuery, compare bool, logger *slog.Logger, stdout io.Writer) (err error) {
	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}

	output, closeOutput, err := openOutput(cfg, stdout)
	if err != nil {
		_ = store.Close() //nolint:errcheck // Best effort cleanup
		return err
	}

	defer func() {
		if closeErr := closeAll(closeOutput, store.Close); err == nil {
			err = closeErr
		}
	}()

	engine := search.NewEngine(store, search.WithLogger(logger))

	var reports []*model.SearchReport
	if compare {
		reports, err = engine.Compare(ctx, q)
	} else {
		var r *model.SearchReport
		r, err = engine.Search(ctx, q)
		reports = []*model.SearchReport{r}
	}
	if err != nil {
		return err
	}

	writer := newReportWriter(cfg, output)
	for _, r := range reports {
		if _, err := writer.WriteSearch(r); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}
	return nil
}
