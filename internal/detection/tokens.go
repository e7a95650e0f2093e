package detection

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"

	"github.com/ironsheep/votecards/internal/config"
	"github.com/ironsheep/votecards/internal/ocr"
)

// ErrOCRUnavailable wraps any failure of the OCR engine. It is fatal for a
// pipeline run; there is no fallback.
var ErrOCRUnavailable = errors.New("ocr unavailable")

// Token is a recognized word. Tokens are values and are never modified after
// Detect returns them.
type Token struct {
	Text       string  `json:"text"`
	Bounds     Bounds  `json:"bounds"`
	Confidence float64 `json:"confidence"` // 0-100
}

// TextDetector recognizes tokens in a chart image.
type TextDetector struct {
	engine ocr.Engine
	cfg    config.OCR
	log    logrus.FieldLogger
}

// NewTextDetector creates a detector. A nil logger uses the logrus
// standard logger.
func NewTextDetector(engine ocr.Engine, cfg config.OCR, log logrus.FieldLogger) *TextDetector {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &TextDetector{engine: engine, cfg: cfg, log: log}
}

// Detect returns every token the engine recognized with confidence at or
// above the configured floor. Boxes are in source image coordinates and never
// extend outside img.Bounds(). An empty result is not an error.
func (d *TextDetector) Detect(ctx context.Context, img image.Image) ([]Token, error) {
	prepared, fr := d.preprocess(img)

	words, err := d.engine.Recognize(ctx, prepared)
	if err != nil {
		// a cancelled or timed-out run is not an engine failure
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %w", ErrOCRUnavailable, err)
	}

	bounds := img.Bounds()
	tokens := make([]Token, 0, len(words))
	var lowConfidence, outside int
	for _, w := range words {
		text := strings.TrimSpace(w.Text)
		if text == "" {
			continue
		}
		if w.Confidence < d.cfg.MinConfidence {
			lowConfidence++
			continue
		}
		b := fr.toSource(w.Rect()).Clamp(bounds)
		if b.Empty() {
			outside++
			continue
		}
		tokens = append(tokens, Token{Text: text, Bounds: b, Confidence: w.Confidence})
	}

	d.log.WithFields(logrus.Fields{
		"words":          len(words),
		"tokens":         len(tokens),
		"low_confidence": lowConfidence,
		"outside":        outside,
	}).Debug("text detection finished")

	return tokens, nil
}

// frame maps coordinates of the preprocessed copy back to the source.
type frame struct {
	origin image.Point
	scale  float64
}

func (f frame) toSource(r image.Rectangle) Bounds {
	if f.scale == 1 && f.origin == (image.Point{}) {
		return BoundsFromRect(r)
	}
	return Bounds{
		X1: f.origin.X + int(math.Floor(float64(r.Min.X)/f.scale)),
		Y1: f.origin.Y + int(math.Floor(float64(r.Min.Y)/f.scale)),
		X2: f.origin.X + int(math.Ceil(float64(r.Max.X)/f.scale)),
		Y2: f.origin.Y + int(math.Ceil(float64(r.Max.Y)/f.scale)),
	}
}

// preprocess builds the image handed to the engine. Every step produces a
// new zero-origin image; img itself is only read.
func (d *TextDetector) preprocess(img image.Image) (image.Image, frame) {
	p := d.cfg.Preprocess
	fr := frame{scale: 1}
	if !p.Grayscale && p.Contrast == 0 && p.Upscale <= 1 {
		return img, fr
	}

	fr.origin = img.Bounds().Min
	out := img
	if p.Grayscale {
		out = effect.Grayscale(out)
	}
	if p.Contrast != 0 {
		out = adjust.Contrast(out, p.Contrast/100)
	}
	if p.Upscale > 1 {
		w := int(math.Round(float64(img.Bounds().Dx()) * p.Upscale))
		out = imaging.Resize(out, w, 0, imaging.Lanczos)
		fr.scale = float64(w) / float64(img.Bounds().Dx())
	}
	return out, fr
}
