package llm

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// SummaryPrefixLimit bounds the document prefix sent for the initial
// summary. Larger documents are summarized from this prefix only and the
// model is told to say so.
const SummaryPrefixLimit = 15000

type summaryPrompt struct {
	Text      string
	Truncated bool
}

func buildSummaryPrompt(req SummarizeRequest) summaryPrompt {
	text := req.Text
	truncated := len(text) > SummaryPrefixLimit
	if truncated {
		cut := SummaryPrefixLimit
		// Back off to a rune boundary so multibyte text is never cut
		// mid-sequence.
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}

	formatting := fmt.Sprintf(`Your summary must be well-organized and easy to read in %s. Follow these formatting guidelines strictly:
1.  Start with a main title for the summary, like "PDF Summary: %s".
2.  Use numbered headings for main sections (e.g., "1. Main Topic", "2. Key Points", "3. Conclusion").
3.  Use nested lists (bullet points or numbered sub-points) to break down information within each section.
4.  Use **bold text** to highlight key terms, names, and important concepts.
5.  The entire output must be in well-formed markdown.`, req.Language, req.FileName)

	var prompt string
	if truncated {
		prompt = "The following is the beginning of a large document. Please provide a detailed and structured initial summary of this first part. Let the user know that this is a summary of the initial part and they can ask questions about the entire document.\n\n" +
			formatting + "\n\n---\n\n" + text
	} else {
		prompt = "Please provide a detailed and structured summary of the following document.\n\n" +
			formatting + "\n\n---\n\n" + text
	}
	return summaryPrompt{Text: prompt, Truncated: truncated}
}

// ChatSystemInstruction grounds chat answers in the full document text and
// pins the reply language.
func ChatSystemInstruction(fullText, language string) string {
	return fmt.Sprintf("You are a helpful assistant. Answer questions based on the full PDF document content provided below. Your response should be in %s.\n\n---\n\n%s", language, fullText)
}

func buildTranslatePrompt(req TranslateRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Translate the following text into %s. Preserve paragraph breaks. Output the translated text only, with no commentary.\n\n---\n\n", req.Language)
	b.WriteString(req.Text)
	return b.String()
}
