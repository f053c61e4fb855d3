package main

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/dzhu8/GoFetch-sub002/internal/pdfmeta"
	"github.com/dzhu8/GoFetch-sub002/internal/refextract"
	"github.com/dzhu8/GoFetch-sub002/internal/snowball"
	"github.com/dzhu8/GoFetch-sub002/internal/storage"
)

var (
	relatedPDFPath string
	relatedSave    bool
	relatedTimeout int
)

func init() {
	rootCmd.AddCommand(relatedCmd)

	relatedCmd.Flags().StringVar(&relatedPDFPath, "pdf", "", "Original PDF, used to fill in missing seed title/DOI")
	relatedCmd.Flags().BoolVar(&relatedSave, "save", false, "Persist the run to the runs database")
	relatedCmd.Flags().IntVar(&relatedTimeout, "timeout", 300, "Overall deadline in seconds")
}

// RelatedResponse is the JSON output of the related command.
type RelatedResponse struct {
	RunID string `json:"runId,omitempty"`
	*snowball.Result
}

var relatedCmd = &cobra.Command{
	Use:   "related <ocr.json>",
	Short: "Rank papers related to a scanned document",
	Long: `Related runs the full relevance pipeline: it extracts the document's
bibliography from OCR output, resolves each reference against the
bibliographic graph API, expands a two-hop citation neighborhood, and
ranks the pooled candidates.

The run tolerates partial failure: unresolvable references and failed
network calls are skipped, and the counters in the output report how
much of the graph was reached.`,
	Args: cobra.ExactArgs(1),
	RunE: runRelated,
}

func runRelated(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	log := newLogger()
	defer log.Sync()

	doc := mustParseOCRFile(args[0])
	refs := refextract.Extract(doc)
	meta := refextract.ExtractMetadata(doc)

	// The PDF fallback only fills holes; OCR-derived metadata wins.
	if relatedPDFPath != "" && (meta.Title == "" || meta.DOI == "") {
		pdfMeta, err := pdfmeta.Extract(relatedPDFPath)
		if err != nil {
			exitWithError(ExitDataError, "reading %s: %v", relatedPDFPath, err)
		}
		if meta.Title == "" {
			meta.Title = pdfMeta.Title
		}
		if meta.DOI == "" {
			meta.DOI = pdfMeta.DOI
		}
	}

	req := snowball.Request{SeedTitle: meta.Title, SeedDOI: meta.DOI}
	for _, ref := range refs {
		req.SearchTerms = append(req.SearchTerms, ref.SearchTerm)
		req.IsDOI = append(req.IsDOI, ref.IsDOI)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(relatedTimeout)*time.Second)
	defer cancel()

	engine := newEngine(cfg, log)
	res, err := engine.Run(ctx, req)
	if err != nil {
		if errors.Is(err, snowball.ErrEmptyRequest) {
			exitWithError(ExitEmptyInput, "nothing to search: no references extracted and no seed metadata found")
		}
		exitWithError(ExitError, "relevance run: %v", err)
	}

	resp := RelatedResponse{Result: res}
	if relatedSave {
		db, err := storage.OpenDB(cfg.Storage.Path)
		if err != nil {
			exitWithError(ExitError, "opening runs database: %v", err)
		}
		defer db.Close()
		runID, err := db.SaveRun(req, res)
		if err != nil {
			exitWithError(ExitError, "saving run: %v", err)
		}
		resp.RunID = runID
	}

	if humanOutput {
		outputHuman("Seed: %s\n", res.SeedID)
		outputHuman("Resolved %d/%d references, %d candidates\n\n",
			res.ResolvedCount, len(req.SearchTerms), res.TotalCandidates)
		for i, p := range res.RankedPapers {
			outputHuman("%2d. [%.3f] %s\n    %s\n", i+1, p.Score,
				truncateString(p.Title, TitleMaxLen), p.URL)
		}
		return nil
	}
	return outputJSON(resp)
}
