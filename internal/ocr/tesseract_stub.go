//go:build !cgo

package ocr

import (
	"context"
	"fmt"
	"image"
)

// Tesseract is a placeholder for binaries built without cgo.
type Tesseract struct {
	Language    string
	PageSegMode int
}

// NewTesseract returns an engine whose Recognize always fails.
func NewTesseract(language string, pageSegMode int) *Tesseract {
	return &Tesseract{Language: language, PageSegMode: pageSegMode}
}

// Recognize returns ErrUnavailable.
func (t *Tesseract) Recognize(_ context.Context, _ image.Image) ([]Word, error) {
	return nil, fmt.Errorf("%w: built without cgo", ErrUnavailable)
}

// GetInfo reports that no backend is compiled in.
func GetInfo() Info {
	return Info{
		Backend: "none",
		Error:   "built without cgo; rebuild with CGO_ENABLED=1 and libtesseract installed",
	}
}
