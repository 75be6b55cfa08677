package render

import (
	"bytes"
	"os/exec"

	"github.com/depdiscover/depviz/pkg/errors"
)

// ToPDF converts SVG bytes to PDF using rsvg-convert.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func ToPDF(svg []byte) ([]byte, error) {
	if _, err := exec.LookPath("rsvg-convert"); err != nil {
		return nil, errors.Wrap(errors.ErrCodeEngineNotFound, err,
			"pdf export requires librsvg (macOS: brew install librsvg, Linux: apt install librsvg2-bin)")
	}

	cmd := exec.Command("rsvg-convert", "-f", "pdf")
	cmd.Stdin = bytes.NewReader(svg)

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailure, err, "rsvg-convert: %s", errBuf.String())
	}
	return out.Bytes(), nil
}
