package main

import (
	"github.com/spf13/cobra"

	"github.com/dzhu8/GoFetch-sub002/internal/storage"
)

var runsLimit int

func init() {
	runsCmd.AddCommand(runsListCmd, runsShowCmd)
	runsListCmd.Flags().IntVarP(&runsLimit, "limit", "l", 20, "Maximum number of runs to list")
	rootCmd.AddCommand(runsCmd)
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect persisted relevance runs",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db := mustOpenRuns()
		defer db.Close()

		runs, err := db.ListRuns(runsLimit)
		if err != nil {
			exitWithError(ExitError, "listing runs: %v", err)
		}
		if runs == nil {
			runs = []storage.RunSummary{}
		}

		if humanOutput {
			for _, r := range runs {
				outputHuman("%s  %s  %d/%d resolved, %d candidates, %d ranked\n",
					r.ID, r.CreatedAt.Format("2006-01-02 15:04"),
					r.ResolvedCount, r.TermCount, r.TotalCandidates, r.RankedCount)
			}
			return nil
		}
		return outputJSON(map[string]any{"runs": runs, "total": len(runs)})
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one run with its ranked papers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db := mustOpenRuns()
		defer db.Close()

		run, err := db.GetRun(args[0])
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}

		if humanOutput {
			outputHuman("Run %s (%s)\n", run.ID, run.CreatedAt.Format("2006-01-02 15:04"))
			if run.SeedTitle != "" {
				outputHuman("Seed: %s\n", truncateString(run.SeedTitle, TitleMaxLen))
			}
			outputHuman("%d candidates, %d ranked:\n\n", run.TotalCandidates, len(run.RankedPapers))
			for i, p := range run.RankedPapers {
				outputHuman("%2d. [%.3f] %s\n", i+1, p.Score, truncateString(p.Title, TitleMaxLen))
			}
			return nil
		}
		return outputJSON(run)
	},
}

func mustOpenRuns() *storage.DB {
	cfg := mustLoadConfig()
	db, err := storage.OpenDB(cfg.Storage.Path)
	if err != nil {
		exitWithError(ExitError, "opening runs database: %v", err)
	}
	return db
}
