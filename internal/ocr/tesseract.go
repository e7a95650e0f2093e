//go:build cgo

package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"github.com/otiai10/gosseract/v2"
)

// Tesseract is an Engine backed by libtesseract.
type Tesseract struct {
	Language    string
	PageSegMode int

	clientFactory func() *gosseract.Client
}

// NewTesseract returns a Tesseract engine for the given language code. A
// pageSegMode of 0 keeps the library default.
func NewTesseract(language string, pageSegMode int) *Tesseract {
	if language == "" {
		language = "eng"
	}
	return &Tesseract{
		Language:      language,
		PageSegMode:   pageSegMode,
		clientFactory: gosseract.NewClient,
	}
}

// Recognize runs word-level recognition on img. Tesseract calls cannot be
// interrupted, so ctx is only checked before the call starts.
func (t *Tesseract) Recognize(ctx context.Context, img image.Image) ([]Word, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}

	client := t.clientFactory()
	defer client.Close()

	if err := client.SetLanguage(t.Language); err != nil {
		return nil, fmt.Errorf("set language: %w", err)
	}
	if t.PageSegMode > 0 {
		if err := client.SetPageSegMode(gosseract.PageSegMode(t.PageSegMode)); err != nil {
			return nil, fmt.Errorf("set page segmentation mode: %w", err)
		}
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("recognize words: %w", err)
	}

	origin := img.Bounds().Min
	words := make([]Word, 0, len(boxes))
	for _, b := range boxes {
		r := b.Box.Add(origin)
		words = append(words, Word{
			Text:       b.Word,
			Confidence: b.Confidence,
			X1:         r.Min.X,
			Y1:         r.Min.Y,
			X2:         r.Max.X,
			Y2:         r.Max.Y,
		})
	}
	return words, nil
}

// GetInfo reports the linked Tesseract version.
func GetInfo() Info {
	return Info{
		Available: true,
		Backend:   "gosseract",
		Version:   gosseract.Version(),
	}
}
