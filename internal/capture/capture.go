// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package capture rasterizes rendered report pages into PNG surfaces using a
// headless browser. Every page is captured at the same device scale factor
// and the results are returned in page order regardless of completion order.
package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/propverify/internal/render"
	"github.com/pdiddy/propverify/pkg/types"
)

// CSS pixel size of an A4 page at 96 dpi.
const (
	ViewportWidth  = 794
	ViewportHeight = 1123
)

var (
	// ErrRenderNotReady is returned when capture is invoked before any page
	// has rendered content.
	ErrRenderNotReady = errors.New("rendered pages are not ready")

	// ErrCapture wraps any failure while rasterizing a page.
	ErrCapture = errors.New("page capture failed")
)

// Raster is one captured page surface.
type Raster struct {
	// Index is the 0-based position of the page in the report.
	Index int

	// PNG is the encoded image.
	PNG []byte

	// Width and Height are the pixel dimensions of the image.
	Width  int
	Height int
}

// Capturer turns one rendered page into a raster.
type Capturer interface {
	Capture(ctx context.Context, page render.Page) ([]byte, error)
	Close() error
}

// New starts the browser backend selected by cfg.
func New(ctx context.Context, cfg types.CaptureConfig, logger *zap.Logger) (Capturer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.Backend {
	case "", types.CaptureChromedp:
		c, err := NewChromeCapturer(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return c, nil
	case types.CaptureRod:
		c, err := NewRodCapturer(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown capture backend %q", cfg.Backend)
	}
}

// CaptureAll rasterizes pages with at most workers captures in flight and
// returns the rasters in page order. Any single failure fails the whole call.
func CaptureAll(ctx context.Context, c Capturer, pages []render.Page, workers int, logger *zap.Logger) ([]Raster, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, ErrRenderNotReady
	}
	for _, p := range pages {
		if len(p.HTML) == 0 {
			return nil, fmt.Errorf("%w: page %d is empty", ErrRenderNotReady, p.Number)
		}
	}
	if workers <= 0 {
		workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	rasters := make([]Raster, len(pages))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, p := range pages {
		g.Go(func() error {
			data, err := c.Capture(gctx, p)
			if err != nil {
				return fmt.Errorf("%w: page %d: %w", ErrCapture, p.Number, err)
			}
			r, err := decodeRaster(i, data)
			if err != nil {
				return fmt.Errorf("%w: page %d: %w", ErrCapture, p.Number, err)
			}
			rasters[i] = r
			logger.Debug("page captured",
				zap.Int("page", p.Number),
				zap.Int("width", r.Width),
				zap.Int("height", r.Height),
				zap.Int("bytes", len(data)),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rasters, nil
}

// decodeRaster reads the PNG header to record the surface dimensions.
func decodeRaster(index int, data []byte) (Raster, error) {
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Raster{}, fmt.Errorf("decoding png: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Raster{}, fmt.Errorf("empty surface %dx%d", cfg.Width, cfg.Height)
	}
	return Raster{Index: index, PNG: data, Width: cfg.Width, Height: cfg.Height}, nil
}
