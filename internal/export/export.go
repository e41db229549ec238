// Package export turns generated text (summaries, translations, full
// document text) into downloadable formats.
package export

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/fumiama/go-docx"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// HTML renders generated markdown to an HTML fragment.
func HTML(source string) ([]byte, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteDocx writes a Word document with the given title followed by the
// text, one paragraph per blank-line separated block. Markdown heading
// markers are stripped; the text is otherwise carried verbatim.
func WriteDocx(w io.Writer, title, text string) error {
	doc := docx.New().WithDefaultTheme()
	if strings.TrimSpace(title) != "" {
		doc.AddParagraph().AddText(strings.TrimSpace(title)).Size("32").Bold()
	}
	for _, block := range strings.Split(text, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		if heading, level := headingText(block); heading != "" {
			p := doc.AddParagraph().AddText(heading).Bold()
			if level <= 2 {
				p.Size("28")
			} else {
				p.Size("24")
			}
			continue
		}
		doc.AddParagraph().AddText(block)
	}
	_, err := doc.WriteTo(w)
	if err != nil {
		return fmt.Errorf("write docx: %w", err)
	}
	return nil
}

// headingText returns the text and level of a single-line markdown heading
// block, or "" when the block is not a heading.
func headingText(block string) (string, int) {
	if strings.Contains(block, "\n") || !strings.HasPrefix(block, "#") {
		return "", 0
	}
	level := 0
	for level < len(block) && block[level] == '#' {
		level++
	}
	if level > 6 || level >= len(block) || block[level] != ' ' {
		return "", 0
	}
	return strings.TrimSpace(block[level:]), level
}
