package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"pdfassist/internal/pdfx"
)

var (
	extractPDFPath  string
	extractPassword string
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract the plain text of a PDF",
	Long:  "Extract the reading-order plain text of every page, separated by blank lines.",
	RunE:  runExtract,
}

func init() {
	extractCmd.Flags().StringVarP(&extractPDFPath, "pdf", "p", "", "Path to PDF file (required)")
	extractCmd.Flags().StringVar(&extractPassword, "password", "", "Password for encrypted PDFs")
	extractCmd.MarkFlagRequired("pdf")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	doc, err := loadDocument(cmd.Context(), extractPDFPath, extractPassword)
	if err != nil {
		return err
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "%s: %d pages\n", doc.Name, doc.PageCount)
	}
	fmt.Print(doc.FullText)
	return nil
}

// loadDocument reads and extracts a PDF from disk, reporting progress to
// stderr in verbose mode.
func loadDocument(ctx context.Context, path, password string) (*pdfx.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	report := func(int) {}
	if verbose {
		report = func(p int) { fmt.Fprintf(os.Stderr, "\rloading... %3d%%", p) }
	}
	doc, err := pdfx.Open(ctx, filepath.Base(path), data, password, report)
	if verbose {
		fmt.Fprintln(os.Stderr)
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}
