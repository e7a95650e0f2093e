package detection

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"testing"
	"time"

	"github.com/ironsheep/votecards/internal/config"
	"github.com/ironsheep/votecards/internal/ocr"
)

// createTestImage creates a solid-colour RGBA image
func createTestImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

func word(text string, conf float64, x1, y1, x2, y2 int) ocr.Word {
	return ocr.Word{Text: text, Confidence: conf, X1: x1, Y1: y1, X2: x2, Y2: y2}
}

func plainOCR() config.OCR {
	cfg := config.Default().OCR
	cfg.Preprocess = config.Preprocess{}
	return cfg
}

func TestDetect_ConfidenceFloor(t *testing.T) {
	eng := &ocr.Static{Words: []ocr.Word{
		word("CA", 91, 10, 10, 30, 24),
		word("~", 12, 40, 10, 44, 24),
		word("TX", 40, 50, 10, 70, 24),
		word("  ", 99, 80, 10, 90, 24),
	}}
	d := NewTextDetector(eng, plainOCR(), nil)

	tokens, err := d.Detect(context.Background(), createTestImage(200, 100, color.White))
	if err != nil {
		t.Fatalf("Detect() error: %v", err)
	}
	if len(tokens) != 2 {
		t.Fatalf("got %d tokens, want 2: %+v", len(tokens), tokens)
	}
	if tokens[0].Text != "CA" || tokens[1].Text != "TX" {
		t.Errorf("tokens: got %q, %q; want CA, TX", tokens[0].Text, tokens[1].Text)
	}
}

func TestDetect_ClampsToImage(t *testing.T) {
	eng := &ocr.Static{Words: []ocr.Word{
		word("edge", 90, -5, 90, 30, 120),
		word("gone", 90, 300, 300, 340, 320),
	}}
	d := NewTextDetector(eng, plainOCR(), nil)

	img := createTestImage(200, 100, color.White)
	tokens, err := d.Detect(context.Background(), img)
	if err != nil {
		t.Fatalf("Detect() error: %v", err)
	}
	if len(tokens) != 1 {
		t.Fatalf("got %d tokens, want 1", len(tokens))
	}
	want := Bounds{X1: 0, Y1: 90, X2: 30, Y2: 100}
	if tokens[0].Bounds != want {
		t.Errorf("Bounds: got %+v, want %+v", tokens[0].Bounds, want)
	}
	if !tokens[0].Bounds.Rect().In(img.Bounds()) {
		t.Error("token box extends outside the image")
	}
}

func TestDetect_EngineError(t *testing.T) {
	d := NewTextDetector(&ocr.Static{Err: ocr.ErrUnavailable}, plainOCR(), nil)

	_, err := d.Detect(context.Background(), createTestImage(10, 10, color.White))
	if !errors.Is(err, ErrOCRUnavailable) {
		t.Errorf("Detect() = %v, want ErrOCRUnavailable", err)
	}
	if !errors.Is(err, ocr.ErrUnavailable) {
		t.Errorf("Detect() = %v, want wrapped engine error", err)
	}
}

func TestDetect_ContextDone(t *testing.T) {
	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	expired, cancelExpired := context.WithTimeout(context.Background(), -time.Second)
	defer cancelExpired()

	tests := []struct {
		name string
		ctx  context.Context
		want error
	}{
		{"canceled", canceled, context.Canceled},
		{"deadline", expired, context.DeadlineExceeded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewTextDetector(&ocr.Static{Words: []ocr.Word{word("CA", 90, 0, 0, 5, 5)}}, plainOCR(), nil)
			_, err := d.Detect(tt.ctx, createTestImage(10, 10, color.White))
			if !errors.Is(err, tt.want) {
				t.Errorf("Detect() = %v, want %v", err, tt.want)
			}
			if errors.Is(err, ErrOCRUnavailable) {
				t.Errorf("Detect() = %v, context errors must not read as ErrOCRUnavailable", err)
			}
		})
	}
}

func TestDetect_Empty(t *testing.T) {
	d := NewTextDetector(&ocr.Static{}, plainOCR(), nil)
	tokens, err := d.Detect(context.Background(), createTestImage(10, 10, color.White))
	if err != nil {
		t.Fatalf("Detect() error: %v", err)
	}
	if len(tokens) != 0 {
		t.Errorf("got %d tokens, want 0", len(tokens))
	}
}

// recordingEngine returns words in the coordinates of whatever image it was
// given, so tests can check the mapping back to the source.
type recordingEngine struct {
	seen  image.Rectangle
	words []ocr.Word
}

func (r *recordingEngine) Recognize(_ context.Context, img image.Image) ([]ocr.Word, error) {
	r.seen = img.Bounds()
	return r.words, nil
}

func TestDetect_UpscaleMapsBack(t *testing.T) {
	eng := &recordingEngine{words: []ocr.Word{word("NY", 80, 40, 20, 80, 48)}}
	cfg := plainOCR()
	cfg.Preprocess = config.Preprocess{Grayscale: true, Contrast: 20, Upscale: 2}
	d := NewTextDetector(eng, cfg, nil)

	src := createTestImage(100, 50, color.White)
	tokens, err := d.Detect(context.Background(), src)
	if err != nil {
		t.Fatalf("Detect() error: %v", err)
	}
	if eng.seen.Dx() != 200 || eng.seen.Dy() != 100 {
		t.Errorf("engine saw %v, want 200x100", eng.seen)
	}
	if len(tokens) != 1 {
		t.Fatalf("got %d tokens, want 1", len(tokens))
	}
	want := Bounds{X1: 20, Y1: 10, X2: 40, Y2: 24}
	if tokens[0].Bounds != want {
		t.Errorf("Bounds: got %+v, want %+v", tokens[0].Bounds, want)
	}
	// the source is only read
	if src.RGBAAt(0, 0) != (color.RGBA{255, 255, 255, 255}) {
		t.Error("source image was modified")
	}
}
