package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/crawlsearch/internal/config"
	"github.com/nao1215/crawlsearch/internal/corpus"
	"github.com/nao1215/crawlsearch/internal/report"
)

// NewCorpusCmd creates the corpus command and its subcommands.
func NewCorpusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "corpus",
		Short: "Manage stored corpora",
		Long: `Corpus lists, inspects and edits the corpora created by 'crawlsearch crawl'.

Examples:
  # List corpora with their page counts
  crawlsearch corpus list

  # Remove stop words into a new corpus example_com_pp
  crawlsearch corpus preprocess --copy example_com

  # Export every page as CSV
  crawlsearch corpus export example_com -o pages.csv`,
	}

	addStorageFlags(cmd.PersistentFlags())

	cmd.AddCommand(newCorpusListCmd())
	cmd.AddCommand(newCorpusPagesCmd())
	cmd.AddCommand(newCorpusDropCmd())
	cmd.AddCommand(newCorpusRenameCmd())
	cmd.AddCommand(newCorpusDeletePageCmd())
	cmd.AddCommand(newCorpusPreprocessCmd())
	cmd.AddCommand(newCorpusHistoryCmd())
	cmd.AddCommand(newCorpusExportCmd())

	return cmd
}

// withStore opens the corpus store selected by the storage flags, runs fn
// and closes the store.
func withStore(cmd *cobra.Command, fn func(ctx context.Context, store corpus.Store) error) (err error) {
	cfg := config.NewConfig()
	if err := readStorageFlags(cmd, cfg); err != nil {
		return err
	}

	logger := setupLogger(cmd)
	ctx, cancel := signalContext(cmd.Context(), logger)
	defer cancel()

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); err == nil {
			err = closeErr
		}
	}()

	return fn(ctx, store)
}

func newCorpusListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List corpora and their page counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd, func(ctx context.Context, store corpus.Store) error {
				corpora, err := store.ListCorpora(ctx)
				if err != nil {
					return err
				}
				_, err = report.WriteCorpora(cmd.OutOrStdout(), corpora)
				return err
			})
		},
	}
}

func newCorpusPagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pages <corpus>",
		Short: "List the pages of a corpus in crawl order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(ctx context.Context, store corpus.Store) error {
				records, err := store.FetchAll(ctx, args[0])
				if err != nil {
					return err
				}
				_, err = report.WritePages(cmd.OutOrStdout(), records)
				return err
			})
		},
	}
}

func newCorpusDropCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "drop <corpus>",
		Short: "Delete a corpus and all of its pages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(ctx context.Context, store corpus.Store) error {
				if err := store.DropCorpus(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Dropped corpus %s\n", args[0])
				return nil
			})
		},
	}
}

func newCorpusRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <old> <new>",
		Short: "Rename a corpus",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(ctx context.Context, store corpus.Store) error {
				if err := store.RenameCorpus(ctx, args[0], args[1]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Renamed corpus %s to %s\n", args[0], args[1])
				return nil
			})
		},
	}
}

func newCorpusDeletePageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-page <corpus> <url>",
		Short: "Delete one page from a corpus",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(ctx context.Context, store corpus.Store) error {
				if err := store.DeleteRecord(ctx, args[0], args[1]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s from %s\n", args[1], args[0])
				return nil
			})
		},
	}
}

func newCorpusPreprocessCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preprocess <corpus>",
		Short: "Remove English stop words from every page",
		Long: `Preprocess removes English stop words from the text of every page and
stores the result as <corpus>_pp. Without --copy the original corpus is
renamed and rewritten; with --copy it is kept unchanged.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keep, err := cmd.Flags().GetBool("copy")
			if err != nil {
				return err
			}
			return withStore(cmd, func(ctx context.Context, store corpus.Store) error {
				target, err := corpus.Preprocess(ctx, store, args[0], corpus.PreprocessOptions{Copy: keep})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Preprocessed corpus %s into %s\n", args[0], target)
				return nil
			})
		},
	}

	cmd.Flags().Bool("copy", false, "Keep the original corpus")

	return cmd
}

func newCorpusHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history <corpus>",
		Short: "Show past crawls of a corpus",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(ctx context.Context, store corpus.Store) error {
				runs, err := store.CrawlRuns(ctx, args[0])
				if err != nil {
					return err
				}
				_, err = report.WriteCrawlHistory(cmd.OutOrStdout(), runs)
				return err
			})
		},
	}
}

func newCorpusExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <corpus>",
		Short: "Export the pages of a corpus as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.NewConfig()
			var err error
			cfg.ReportFile, err = cmd.Flags().GetString("output")
			if err != nil {
				return err
			}

			return withStore(cmd, func(ctx context.Context, store corpus.Store) (err error) {
				records, err := store.FetchAll(ctx, args[0])
				if err != nil {
					return err
				}

				output, closeOutput, err := openOutput(cfg, cmd.OutOrStdout())
				if err != nil {
					return err
				}
				defer func() {
					if closeErr := closeOutput(); err == nil {
						err = closeErr
					}
				}()

				return report.ExportRecords(output, records)
			})
		},
	}

	cmd.Flags().StringP("output", "o", "",
		"Write CSV to specified file path (creates directories if needed)")

	return cmd
}
