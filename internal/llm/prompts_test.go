package llm

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func TestSummaryPromptSmallDocument(t *testing.T) {
	p := buildSummaryPrompt(SummarizeRequest{Text: "short document", Language: "English", FileName: "a.pdf"})
	require.False(t, p.Truncated)
	require.Contains(t, p.Text, "short document")
	require.Contains(t, p.Text, "English")
	require.NotContains(t, p.Text, "beginning of a large document")
}

func TestSummaryPromptTruncatesLargeDocument(t *testing.T) {
	big := strings.Repeat("x", SummaryPrefixLimit+500)
	p := buildSummaryPrompt(SummarizeRequest{Text: big, Language: "English", FileName: "big.pdf"})
	require.True(t, p.Truncated)
	require.Contains(t, p.Text, "beginning of a large document")
	// Only the bounded prefix of the document is embedded.
	require.Less(t, len(p.Text), SummaryPrefixLimit+2000)
}

func TestSummaryPromptTruncatesOnRuneBoundary(t *testing.T) {
	// 14999 ASCII bytes put the truncation point inside every following
	// three-byte hangul rune.
	big := strings.Repeat("x", SummaryPrefixLimit-1) + strings.Repeat("한", 400)
	p := buildSummaryPrompt(SummarizeRequest{Text: big, Language: "English", FileName: "doc.pdf"})
	require.True(t, p.Truncated)
	require.True(t, utf8.ValidString(p.Text))
	require.NotContains(t, p.Text, "한")
}

func TestChatSystemInstructionEmbedsDocument(t *testing.T) {
	si := ChatSystemInstruction("DOC BODY", "日本語")
	require.Contains(t, si, "DOC BODY")
	require.Contains(t, si, "日本語")
}

func TestTranslatePromptShape(t *testing.T) {
	p := buildTranslatePrompt(TranslateRequest{Text: "one\n\ntwo", Language: "한국어"})
	require.Contains(t, p, "한국어")
	require.Contains(t, p, "Preserve paragraph breaks")
	require.True(t, strings.HasSuffix(p, "one\n\ntwo"))
}
