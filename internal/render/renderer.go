package render

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/gen2brain/go-fitz"
	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	// baseDPI is the rasterization density at scale 1.0.
	baseDPI = 72.0
	// ThumbnailScale matches the small fixed scale used for the page strip.
	ThumbnailScale = 0.2
	// AutoFitPadding is the fixed horizontal padding subtracted from the
	// viewport when computing the auto-fit scale.
	AutoFitPadding = 40

	rasterCacheSize = 64
)

// Key identifies one rendered surface. Rendering is idempotent for a fixed
// key, so cached rasters can be reused freely.
type Key struct {
	Page     int
	Scale    float64
	Rotation int
}

// Renderer rasterizes pages of a single loaded document. go-fitz documents
// are not safe for concurrent use, so all rasterization is serialized.
type Renderer struct {
	mu        sync.Mutex
	doc       *fitz.Document
	pageCount int

	cache *lru.Cache[Key, image.Image]

	thumbOnce sync.Once
	thumbs    []image.Image
	thumbErr  error
}

func New(data []byte) (*Renderer, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("open document for rendering: %w", err)
	}
	cache, err := lru.New[Key, image.Image](rasterCacheSize)
	if err != nil {
		doc.Close()
		return nil, err
	}
	return &Renderer{
		doc:       doc,
		pageCount: doc.NumPage(),
		cache:     cache,
	}, nil
}

func (r *Renderer) PageCount() int { return r.pageCount }

// Page rasterizes page n (1-based) at the given scale and rotation. Rotation
// must be one of 0, 90, 180 or 270 degrees and is applied as a lossless pixel
// transform so repeated renders are bit-identical.
func (r *Renderer) Page(ctx context.Context, n int, scale float64, rotation int) (image.Image, error) {
	if n < 1 || n > r.pageCount {
		return nil, fmt.Errorf("page %d out of range [1,%d]", n, r.pageCount)
	}
	if scale <= 0 {
		return nil, fmt.Errorf("scale must be positive, got %v", scale)
	}
	rotation = normalizeRotation(rotation)
	if rotation < 0 {
		return nil, fmt.Errorf("rotation must be a multiple of 90 degrees")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := Key{Page: n, Scale: scale, Rotation: rotation}
	if img, ok := r.cache.Get(key); ok {
		return img, nil
	}

	r.mu.Lock()
	img, err := r.doc.ImageDPI(n-1, baseDPI*scale)
	r.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("render page %d: %w", n, err)
	}
	rotated := Rotate(img, rotation)
	r.cache.Add(key, rotated)
	return rotated, nil
}

// Thumbnails renders every page at the thumbnail scale. The result is
// computed once per document and cached for the session.
func (r *Renderer) Thumbnails(ctx context.Context) ([]image.Image, error) {
	r.thumbOnce.Do(func() {
		thumbs := make([]image.Image, 0, r.pageCount)
		for i := 1; i <= r.pageCount; i++ {
			if err := ctx.Err(); err != nil {
				r.thumbErr = err
				return
			}
			img, err := r.Page(ctx, i, ThumbnailScale, 0)
			if err != nil {
				r.thumbErr = fmt.Errorf("thumbnail page %d: %w", i, err)
				return
			}
			thumbs = append(thumbs, img)
		}
		r.thumbs = thumbs
	})
	return r.thumbs, r.thumbErr
}

// AutoFitScale measures page 1 at scale 1 under the same rotation that will
// be used for rendering (rotation swaps effective width and height) and fits
// its intrinsic width into the viewport minus fixed padding.
func (r *Renderer) AutoFitScale(ctx context.Context, viewportWidth, rotation int) (float64, error) {
	if r.pageCount == 0 {
		return 1.0, nil
	}
	img, err := r.Page(ctx, 1, 1.0, rotation)
	if err != nil {
		return 0, err
	}
	return FitScale(viewportWidth, img.Bounds().Dx()), nil
}

func (r *Renderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.doc == nil {
		return nil
	}
	err := r.doc.Close()
	r.doc = nil
	r.cache.Purge()
	return err
}

// FitScale divides the available width by the intrinsic page width.
func FitScale(viewportWidth, intrinsicWidth int) float64 {
	available := viewportWidth - AutoFitPadding
	if available <= 0 || intrinsicWidth <= 0 {
		return 1.0
	}
	return float64(available) / float64(intrinsicWidth)
}

func normalizeRotation(rotation int) int {
	rotation %= 360
	if rotation < 0 {
		rotation += 360
	}
	switch rotation {
	case 0, 90, 180, 270:
		return rotation
	}
	return -1
}
