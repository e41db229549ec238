package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"pdfassist/internal/i18n"
	"pdfassist/internal/llm"
)

var (
	summarizePDFPath  string
	summarizePassword string
	summarizeLanguage string
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Summarize a PDF with the configured generation service",
	RunE:  runSummarize,
}

func init() {
	summarizeCmd.Flags().StringVarP(&summarizePDFPath, "pdf", "p", "", "Path to PDF file (required)")
	summarizeCmd.Flags().StringVar(&summarizePassword, "password", "", "Password for encrypted PDFs")
	summarizeCmd.Flags().StringVarP(&summarizeLanguage, "language", "l", i18n.English, "Target language for the summary")
	summarizeCmd.MarkFlagRequired("pdf")
	rootCmd.AddCommand(summarizeCmd)
}

func runSummarize(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
	defer cancel()

	doc, err := loadDocument(ctx, summarizePDFPath, summarizePassword)
	if err != nil {
		return err
	}

	client, err := newCLIClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	ch, err := client.Summarize(ctx, llm.SummarizeRequest{
		Text:     doc.FullText,
		Language: summarizeLanguage,
		FileName: doc.Name,
	})
	if err != nil {
		return fmt.Errorf("summarize: %w", err)
	}
	return printStream(ctx, ch)
}

// newCLIClient builds the Gemini client from the environment.
func newCLIClient(ctx context.Context) (llm.StreamClient, error) {
	apiKey := strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	if apiKey == "" {
		apiKey = strings.TrimSpace(os.Getenv("GOOGLE_API_KEY"))
	}
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}
	return llm.NewGeminiClient(ctx, apiKey, strings.TrimSpace(os.Getenv("GEMINI_MODEL")))
}

// printStream writes fragments to stdout as they arrive.
func printStream(ctx context.Context, ch <-chan llm.Chunk) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case chunk, ok := <-ch:
			if !ok {
				fmt.Println()
				return nil
			}
			if chunk.Err != nil {
				return chunk.Err
			}
			if chunk.Done {
				fmt.Println()
				return nil
			}
			fmt.Print(chunk.Text)
		}
	}
}
