package render

// PageLayout is the vertical extent of one rendered page surface inside a
// scrollable viewport, in the same coordinate space as the viewport offsets.
type PageLayout struct {
	Top    float64
	Height float64
}

// ActivePage returns the 1-based page whose surface occupies the vertical
// center of the viewport. When no page contains the center line, the page
// whose own center is nearest wins; on exact ties the earlier page wins.
// Returns 0 for an empty layout.
func ActivePage(layouts []PageLayout, viewportTop, viewportHeight float64) int {
	if len(layouts) == 0 {
		return 0
	}
	center := viewportTop + viewportHeight/2

	best := 0
	bestDist := -1.0
	for i, l := range layouts {
		if center >= l.Top && center < l.Top+l.Height {
			return i + 1
		}
		pageCenter := l.Top + l.Height/2
		dist := pageCenter - center
		if dist < 0 {
			dist = -dist
		}
		if bestDist < 0 || dist < bestDist {
			best = i + 1
			bestDist = dist
		}
	}
	return best
}
