package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/dzhu8/GoFetch-sub002/internal/ocr"
	"github.com/dzhu8/GoFetch-sub002/internal/refextract"
)

func init() {
	rootCmd.AddCommand(extractCmd)
}

// ExtractResponse is the JSON output of the extract command.
type ExtractResponse struct {
	References []refextract.ParsedReference `json:"references"`
	Metadata   refextract.DocumentMetadata  `json:"metadata"`
	Total      int                          `json:"total"`
}

var extractCmd = &cobra.Command{
	Use:   "extract <ocr.json>",
	Short: "Extract bibliography entries from an OCR payload",
	Long: `Extract parses a scanned document's OCR output and reconstructs its
bibliography: wrapped lines are re-joined, multi-entry blocks are split,
and each entry gets a search key (DOI when present, otherwise a derived
title).`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func runExtract(cmd *cobra.Command, args []string) error {
	doc := mustParseOCRFile(args[0])

	refs := refextract.Extract(doc)
	if refs == nil {
		refs = []refextract.ParsedReference{}
	}
	meta := refextract.ExtractMetadata(doc)

	if humanOutput {
		if meta.Title != "" {
			outputHuman("Document: %s\n", truncateString(meta.Title, TitleMaxLen))
		}
		if meta.DOI != "" {
			outputHuman("DOI: %s\n", meta.DOI)
		}
		outputHuman("\n%d references:\n", len(refs))
		for _, r := range refs {
			kind := "title"
			if r.IsDOI {
				kind = "doi"
			}
			outputHuman("  [%d] (%s) %s\n", r.RefNum, kind, truncateString(r.SearchTerm, TitleMaxLen))
		}
		return nil
	}

	return outputJSON(ExtractResponse{References: refs, Metadata: meta, Total: len(refs)})
}

// mustParseOCRFile reads and parses an OCR payload file, exiting with a
// data error when the file is unreadable or matches no known shape.
func mustParseOCRFile(path string) *ocr.Document {
	data, err := os.ReadFile(path)
	if err != nil {
		exitWithError(ExitDataError, "reading %s: %v", path, err)
	}
	doc, err := ocr.ParseDocument(data)
	if err != nil {
		if errors.Is(err, ocr.ErrUnrecognizedShape) {
			exitWithError(ExitDataError, "%s: %v", path, err)
		}
		exitWithError(ExitDataError, "parsing %s: %v", path, err)
	}
	return doc
}
