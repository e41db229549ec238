package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"pdfassist/internal/i18n"
	"pdfassist/internal/llm"
)

var (
	translateFilePath string
	translateLanguage string
)

var translateCmd = &cobra.Command{
	Use:   "translate",
	Short: "Translate a text file, preserving paragraph breaks",
	Long:  "Translate the given text file (or stdin when --file is omitted) to the target language.",
	RunE:  runTranslate,
}

func init() {
	translateCmd.Flags().StringVarP(&translateFilePath, "file", "f", "", "Path to text file (defaults to stdin)")
	translateCmd.Flags().StringVarP(&translateLanguage, "language", "l", i18n.English, "Target language")
	rootCmd.AddCommand(translateCmd)
}

func runTranslate(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
	defer cancel()

	var (
		text []byte
		err  error
	)
	if translateFilePath == "" {
		text, err = io.ReadAll(os.Stdin)
	} else {
		text, err = os.ReadFile(translateFilePath)
	}
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	client, err := newCLIClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	ch, err := client.Translate(ctx, llm.TranslateRequest{
		Text:     string(text),
		Language: translateLanguage,
	})
	if err != nil {
		return fmt.Errorf("translate: %w", err)
	}
	return printStream(ctx, ch)
}
