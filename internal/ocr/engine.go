package ocr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"os"
)

// ErrUnavailable is returned when no OCR backend can run in this binary.
var ErrUnavailable = errors.New("ocr engine unavailable")

// Engine recognizes words in an image.
type Engine interface {
	Recognize(ctx context.Context, img image.Image) ([]Word, error)
}

// Word is one recognized word in pixel coordinates of the image passed to
// Recognize. X2 and Y2 are exclusive.
type Word struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"` // 0-100
	X1         int     `json:"x1"`
	Y1         int     `json:"y1"`
	X2         int     `json:"x2"`
	Y2         int     `json:"y2"`
}

// Rect returns the word box as an image.Rectangle.
func (w Word) Rect() image.Rectangle {
	return image.Rect(w.X1, w.Y1, w.X2, w.Y2)
}

// Info describes the OCR backend compiled into the binary.
type Info struct {
	Available bool   `json:"available"`
	Backend   string `json:"backend"`
	Version   string `json:"version,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Static is an Engine that returns a fixed word list.
type Static struct {
	Words []Word

	// Err, when set, is returned by every Recognize call.
	Err error
}

// Recognize returns a copy of s.Words.
func (s *Static) Recognize(ctx context.Context, _ image.Image) ([]Word, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]Word, len(s.Words))
	copy(out, s.Words)
	return out, nil
}

// LoadWords reads a JSON array of words, the format produced by the
// votecards_ocr tool and `votecards ocr`.
func LoadWords(path string) ([]Word, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read words: %w", err)
	}
	var words []Word
	if err := json.Unmarshal(data, &words); err != nil {
		return nil, fmt.Errorf("parse words %s: %w", path, err)
	}
	return words, nil
}
