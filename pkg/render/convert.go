package render

import (
	"bytes"
	"fmt"
	"os/exec"

	"github.com/vizcli/viz/pkg/errors"
)

const converterBin = "rsvg-convert"

// ToPDF rasterizes SVG bytes into a PDF document. Static exports go through
// librsvg, so rsvg-convert must be on PATH.
func ToPDF(svg []byte) ([]byte, error) {
	return convertSVG(svg, "pdf")
}

// ToPNG rasterizes SVG bytes into a PNG at the given scale factor. A scale of
// 2.0 doubles the pixel dimensions for crisper output.
func ToPNG(svg []byte, scale float64) ([]byte, error) {
	return convertSVG(svg, "png", "-z", fmt.Sprintf("%.2f", scale))
}

func convertSVG(svg []byte, format string, extra ...string) ([]byte, error) {
	if _, err := exec.LookPath(converterBin); err != nil {
		return nil, errors.New(errors.ErrCodeInternal,
			"%s export needs librsvg (brew install librsvg on macOS, apt install librsvg2-bin on Linux)", format)
	}

	cmd := exec.Command(converterBin, append([]string{"-f", format}, extra...)...)
	cmd.Stdin = bytes.NewReader(svg)

	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err,
			"%s failed: %s", converterBin, stderr.String())
	}
	return out.Bytes(), nil
}
