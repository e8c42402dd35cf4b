// Package fonts provides the embedded typeface used for overlay text.
//
// The Go Regular font ships with golang.org/x/image, so rasterized overlays
// look the same on every host without system fonts installed.
package fonts

import (
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// FontFamily is the CSS font-family name of the embedded font.
const FontFamily = "Go"

// FallbackFontFamily is the CSS font stack for SVG output.
const FallbackFontFamily = `'Go', ui-sans-serif, 'Helvetica Neue', Arial, sans-serif`

var (
	regular     *truetype.Font
	regularErr  error
	regularOnce sync.Once
)

// TTF returns the raw font data.
func TTF() []byte { return goregular.TTF }

// Regular returns the parsed font. It is parsed once.
func Regular() (*truetype.Font, error) {
	regularOnce.Do(func() {
		regular, regularErr = truetype.Parse(goregular.TTF)
	})
	return regular, regularErr
}

// Face returns a face of the embedded font at size points (72 DPI, so one
// point is one pixel).
func Face(size float64) (font.Face, error) {
	f, err := Regular()
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(f, &truetype.Options{Size: size, Hinting: font.HintingFull}), nil
}
