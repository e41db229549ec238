package pdfx

import (
	"math"
	"sort"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

// Token is one positioned text fragment in page coordinate space. Y grows
// upward in PDF space, so larger Y means closer to the top of the page.
type Token struct {
	X, Y float64
	S    string
}

// PageSeparator joins page texts in the full document text. Every page
// contributes a segment followed by the separator, so splitting the full
// text recovers one segment per page.
const PageSeparator = "\n\n"

// LineText reconstructs the reading order of one page: tokens are grouped
// into visual lines by rounded Y (tolerating sub-pixel jitter), lines are
// ordered top-to-bottom, and tokens within a line left-to-right. Whitespace
// only tokens are dropped. Rounding Y to the nearest integer is a heuristic
// that can misorder multi-column or rotated layouts; it matches the viewer
// behaviour this service fronts.
func LineText(tokens []Token) string {
	lines := make(map[int][]Token)
	for _, tok := range tokens {
		if strings.TrimSpace(tok.S) == "" {
			continue
		}
		y := int(math.Round(tok.Y))
		lines[y] = append(lines[y], tok)
	}
	if len(lines) == 0 {
		return ""
	}

	ys := make([]int, 0, len(lines))
	for y := range lines {
		ys = append(ys, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ys)))

	parts := make([]string, 0, len(ys))
	for _, y := range ys {
		line := lines[y]
		sort.SliceStable(line, func(i, j int) bool { return line[i].X < line[j].X })
		words := make([]string, 0, len(line))
		for _, tok := range line {
			words = append(words, tok.S)
		}
		parts = append(parts, strings.Join(words, " "))
	}
	return strings.Join(parts, "\n")
}

// JoinPages concatenates per-page texts in page order, each followed by the
// page separator.
func JoinPages(pages []string) string {
	var b strings.Builder
	for _, p := range pages {
		b.WriteString(p)
		b.WriteString(PageSeparator)
	}
	return b.String()
}

// SplitPages is the inverse of JoinPages: it recovers exactly one segment per
// page from a full document text.
func SplitPages(fullText string) []string {
	if fullText == "" {
		return nil
	}
	trimmed := strings.TrimSuffix(fullText, PageSeparator)
	return strings.Split(trimmed, PageSeparator)
}

func pageTokens(page pdflib.Page) []Token {
	content := page.Content()
	tokens := make([]Token, 0, len(content.Text))
	for _, t := range content.Text {
		tokens = append(tokens, Token{X: t.X, Y: t.Y, S: t.S})
	}
	return tokens
}
