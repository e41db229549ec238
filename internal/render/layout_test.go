package render

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestActivePageCenterBand(t *testing.T) {
	layouts := []PageLayout{
		{Top: 0, Height: 500},
		{Top: 520, Height: 500},
		{Top: 1040, Height: 500},
	}
	require.Equal(t, 1, ActivePage(layouts, 0, 600))
	require.Equal(t, 2, ActivePage(layouts, 500, 600))
	require.Equal(t, 3, ActivePage(layouts, 1100, 600))
}

func TestActivePageGapNearestWins(t *testing.T) {
	layouts := []PageLayout{
		{Top: 0, Height: 100},
		{Top: 1000, Height: 100},
	}
	// Center falls in the gap, closer to page 2's center.
	require.Equal(t, 2, ActivePage(layouts, 500, 600))
	// Exact tie: earlier page wins.
	tied := []PageLayout{
		{Top: 0, Height: 100},
		{Top: 200, Height: 100},
	}
	require.Equal(t, 1, ActivePage(tied, 0, 300))
}

func TestActivePageEmpty(t *testing.T) {
	require.Equal(t, 0, ActivePage(nil, 0, 100))
}

func TestFitScale(t *testing.T) {
	require.InDelta(t, 2.0, FitScale(1240, 600), 1e-9)
	require.Equal(t, 1.0, FitScale(10, 600), "degenerate viewport falls back to 1.0")
	require.Equal(t, 1.0, FitScale(800, 0))
}

func gradient(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 0, A: 255})
		}
	}
	return img
}

func TestRotateDimensions(t *testing.T) {
	img := gradient(30, 20)
	require.Equal(t, image.Rect(0, 0, 20, 30), Rotate(img, 90).Bounds())
	require.Equal(t, image.Rect(0, 0, 30, 20), Rotate(img, 180).Bounds())
	require.Equal(t, image.Rect(0, 0, 20, 30), Rotate(img, 270).Bounds())
	require.Equal(t, image.Rect(0, 0, 30, 20), Rotate(img, 0).Bounds())
}

func TestRotateIsDeterministic(t *testing.T) {
	img := gradient(17, 11)
	a := Rotate(img, 90).(*image.RGBA)
	b := Rotate(img, 90).(*image.RGBA)
	require.Equal(t, a.Pix, b.Pix)
}

func TestRotateFullTurnIsIdentity(t *testing.T) {
	img := gradient(8, 6)
	out := Rotate(Rotate(Rotate(Rotate(img, 90), 90), 90), 90).(*image.RGBA)
	want := Rotate(img, 0).(*image.RGBA)
	require.Equal(t, want.Pix, out.Pix)
}

func TestNormalizeRotation(t *testing.T) {
	require.Equal(t, 90, normalizeRotation(450))
	require.Equal(t, 270, normalizeRotation(-90))
	require.Equal(t, -1, normalizeRotation(45))
}
