// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package assemble paginates captured page surfaces into a single PDF.
//
// Each surface is scaled to the page width and starts on a new physical
// page. A surface taller than one page is drawn again, in full, on as many
// following pages as needed, each time shifted up by one page height so the
// next band shows through the page box. No raster row is dropped or
// duplicated across page boundaries.
package assemble

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/pdiddy/propverify/internal/capture"
	"github.com/pdiddy/propverify/pkg/types"
)

// ErrAssembly wraps any failure while building the document.
var ErrAssembly = errors.New("document assembly failed")

// compressStreams deflates page content streams. Tests turn it off to read
// the drawing operators.
var compressStreams = true

// Layout is the physical page size in millimetres.
type Layout struct {
	PageWidth  float64
	PageHeight float64
}

// A4 returns the portrait A4 layout.
func A4() Layout {
	return Layout{PageWidth: types.A4Width, PageHeight: types.A4Height}
}

func (l Layout) valid() bool {
	return l.PageWidth > 0 && l.PageHeight > 0
}

// Placement is one draw of a surface onto a physical page.
type Placement struct {
	// Surface is the index of the raster being drawn.
	Surface int

	// Page is the 1-based physical page number.
	Page int

	// Y is the vertical offset of the image top, in millimetres. It is 0 for
	// the first slice and -k*PageHeight for the k-th overflow slice.
	Y float64

	// Height is the full scaled height of the surface.
	Height float64

	// Visible is how much of the surface shows on this page.
	Visible float64
}

// ScaledHeight is the height of a w x h surface drawn at the page width.
func ScaledHeight(w, h int, l Layout) float64 {
	return float64(h) * l.PageWidth / float64(w)
}

// PageRows is how many raster rows of a surface w pixels wide fit on one
// page.
func PageRows(w int, l Layout) float64 {
	return l.PageHeight * float64(w) / l.PageWidth
}

// Plan computes every placement for rasters in order.
func Plan(rasters []capture.Raster, l Layout) ([]Placement, error) {
	if !l.valid() {
		return nil, fmt.Errorf("%w: invalid page size %.1fx%.1f", ErrAssembly, l.PageWidth, l.PageHeight)
	}

	var out []Placement
	page := 0
	for i, r := range rasters {
		if r.Width <= 0 || r.Height < 0 {
			return nil, fmt.Errorf("%w: surface %d has invalid size %dx%d", ErrAssembly, i, r.Width, r.Height)
		}
		h := ScaledHeight(r.Width, r.Height, l)

		page++
		out = append(out, Placement{Surface: i, Page: page, Y: 0, Height: h, Visible: min(h, l.PageHeight)})

		// Overflow is counted in whole raster rows. A capture whose height was
		// rounded up to the next pixel (794x1123 for A4 is 297.01mm) leaves
		// less than one row over and stays on its page.
		pageRows := PageRows(r.Width, l)
		for k := 1; float64(r.Height)-float64(k)*pageRows >= 1; k++ {
			page++
			out = append(out, Placement{
				Surface: i,
				Page:    page,
				Y:       -float64(k) * l.PageHeight,
				Height:  h,
				Visible: min(h-float64(k)*l.PageHeight, l.PageHeight),
			})
		}
	}
	return out, nil
}

// Options configures Assemble.
type Options struct {
	Layout Layout

	// Timestamp is written as the creation and modification date. Identical
	// inputs with the same timestamp produce identical bytes.
	Timestamp time.Time

	Title  string
	Author string
}

// Document is the assembled report.
type Document struct {
	PDF        []byte
	Pages      int
	Placements []Placement
}

// Assemble draws every raster onto A4 (or opts.Layout) pages and serializes
// the result.
func Assemble(rasters []capture.Raster, opts Options) (*Document, error) {
	if len(rasters) == 0 {
		return nil, fmt.Errorf("%w: no surfaces", ErrAssembly)
	}
	l := opts.Layout
	if l == (Layout{}) {
		l = A4()
	}

	placements, err := Plan(rasters, l)
	if err != nil {
		return nil, err
	}

	ts := opts.Timestamp
	if ts.IsZero() {
		ts = time.Unix(0, 0)
	}
	ts = ts.UTC()

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: l.PageWidth, Ht: l.PageHeight},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreationDate(ts)
	pdf.SetModificationDate(ts)
	pdf.SetCatalogSort(true)
	pdf.SetCompression(compressStreams)
	pdf.SetCreator("propverify", true)
	if opts.Title != "" {
		pdf.SetTitle(opts.Title, true)
	}
	if opts.Author != "" {
		pdf.SetAuthor(opts.Author, true)
	}

	imgOpts := fpdf.ImageOptions{ImageType: "PNG"}
	for i, r := range rasters {
		pdf.RegisterImageOptionsReader(surfaceName(i), imgOpts, bytes.NewReader(r.PNG))
	}
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("%w: registering surfaces: %w", ErrAssembly, err)
	}

	for _, p := range placements {
		pdf.AddPage()
		if p.Height == 0 {
			// fpdf derives a zero height from the aspect ratio; an empty
			// surface still gets its page.
			continue
		}
		pdf.ClipRect(0, 0, l.PageWidth, l.PageHeight, false)
		pdf.ImageOptions(surfaceName(p.Surface), 0, p.Y, l.PageWidth, p.Height, false, imgOpts, 0, "")
		pdf.ClipEnd()
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAssembly, err)
	}

	return &Document{PDF: buf.Bytes(), Pages: len(placements), Placements: placements}, nil
}

func surfaceName(i int) string {
	return fmt.Sprintf("surface-%d", i)
}
