// Package render turns a DOT graph description into an image.
//
// The renderer is an injected capability: [Engine] is the interface the CLI
// depends on, and [Graphviz] is the production implementation backed by
// goccy/go-graphviz. Tests exercise the surrounding control flow with stub
// engines and never touch a real renderer.
//
// Rendering failures are classified into two terminal conditions:
//
//   - ENGINE_NOT_FOUND: the rendering engine is unavailable (the embedded
//     graphviz runtime failed to initialize, or PDF conversion requires an
//     rsvg-convert executable that is not installed)
//   - RENDER_FAILURE: the engine ran but could not produce the image
//
// In both cases the DOT artifact written before rendering survives on disk
// for manual inspection.
package render

import (
	"context"

	"github.com/depdiscover/depviz/pkg/errors"
)

// Supported output image formats.
const (
	FormatPNG = "png"
	FormatSVG = "svg"
	FormatJPG = "jpg"
	FormatPDF = "pdf"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatPNG: true,
	FormatSVG: true,
	FormatJPG: true,
	FormatPDF: true,
}

// Layout engine identifiers accepted by graphviz.
const (
	LayoutDot   = "dot"   // hierarchical; precise but slow on large graphs
	LayoutSFDP  = "sfdp"  // multiscale force-directed; fast on large graphs
	LayoutNeato = "neato"
	LayoutFDP   = "fdp"
	LayoutCirco = "circo"
	LayoutTwopi = "twopi"
)

// ValidLayouts is the set of supported layout engines.
var ValidLayouts = map[string]bool{
	LayoutDot:   true,
	LayoutSFDP:  true,
	LayoutNeato: true,
	LayoutFDP:   true,
	LayoutCirco: true,
	LayoutTwopi: true,
}

// AutoLayoutThreshold is the node count above which the default precise
// layout engine is traded for the fast one.
const AutoLayoutThreshold = 100

// ValidateFormat checks that format is a supported output format.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %s (must be 'png', 'svg', 'jpg', or 'pdf')", format)
	}
	return nil
}

// ValidateLayout checks that layout names a supported layout engine.
func ValidateLayout(layout string) error {
	if !ValidLayouts[layout] {
		return errors.New(errors.ErrCodeInvalidEngine, "invalid layout engine: %s (must be 'dot', 'sfdp', 'neato', 'fdp', 'circo', or 'twopi')", layout)
	}
	return nil
}

// AutoLayout returns the layout engine to use for a graph with nodeCount
// dependency nodes. When the configured engine is the default precise one
// and the graph exceeds [AutoLayoutThreshold] nodes, it escalates to the
// fast engine — a deliberate precision/performance trade-off; any other
// configured engine is respected as-is.
func AutoLayout(layout string, nodeCount int) string {
	if layout == LayoutDot && nodeCount > AutoLayoutThreshold {
		return LayoutSFDP
	}
	return layout
}

// Options configures a single render invocation.
type Options struct {
	Format string // output image format (png, svg, jpg, pdf)
	Layout string // graphviz layout engine (dot, sfdp, ...)
}

// Engine renders a DOT graph description to image bytes.
type Engine interface {
	Render(ctx context.Context, dot string, opts Options) ([]byte, error)
}
