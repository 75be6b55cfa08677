package render

import (
	"bytes"
	"context"

	"github.com/goccy/go-graphviz"

	"github.com/depdiscover/depviz/pkg/errors"
)

// layoutNames maps layout identifiers to graphviz layout engines.
var layoutNames = map[string]graphviz.Layout{
	LayoutDot:   graphviz.DOT,
	LayoutSFDP:  graphviz.SFDP,
	LayoutNeato: graphviz.NEATO,
	LayoutFDP:   graphviz.FDP,
	LayoutCirco: graphviz.CIRCO,
	LayoutTwopi: graphviz.TWOPI,
}

// formatNames maps output formats to graphviz render formats.
// PDF is absent: it goes through SVG plus rsvg-convert (see ToPDF).
var formatNames = map[string]graphviz.Format{
	FormatPNG: graphviz.PNG,
	FormatSVG: graphviz.SVG,
	FormatJPG: graphviz.JPG,
}

// Graphviz renders DOT using the embedded graphviz runtime.
// The zero value is ready to use.
type Graphviz struct{}

var _ Engine = (*Graphviz)(nil)

// Render parses the DOT description and renders it with the configured
// layout engine and output format.
//
// Initialization failures of the graphviz runtime classify as
// ENGINE_NOT_FOUND; parse and layout failures classify as RENDER_FAILURE.
// Both options must have been validated with [ValidateFormat] and
// [ValidateLayout] before calling.
func (Graphviz) Render(ctx context.Context, dot string, opts Options) ([]byte, error) {
	if opts.Format == FormatPDF {
		svg, err := Graphviz{}.Render(ctx, dot, Options{Format: FormatSVG, Layout: opts.Layout})
		if err != nil {
			return nil, err
		}
		return ToPDF(svg)
	}

	layout, ok := layoutNames[opts.Layout]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidEngine, "unknown layout engine: %s", opts.Layout)
	}
	format, ok := formatNames[opts.Format]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown format: %s", opts.Format)
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeEngineNotFound, err, "initialize graphviz runtime")
	}
	defer gv.Close()
	gv.SetLayout(layout)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailure, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailure, err, "render %s with %s", opts.Format, opts.Layout)
	}
	return buf.Bytes(), nil
}
