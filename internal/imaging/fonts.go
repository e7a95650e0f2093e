package imaging

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontSet holds the parsed regular and bold fonts used for rendering.
// Parsed fonts are shared; faces are created per call because font.Face
// implementations cache glyphs and are not safe for concurrent use.
type FontSet struct {
	regular *opentype.Font
	bold    *opentype.Font
}

var (
	defaultFonts     *FontSet
	defaultFontsErr  error
	defaultFontsOnce sync.Once
)

// DefaultFonts returns the embedded Go Regular and Go Bold fonts.
func DefaultFonts() (*FontSet, error) {
	defaultFontsOnce.Do(func() {
		defaultFonts, defaultFontsErr = parseFonts(goregular.TTF, gobold.TTF)
	})
	return defaultFonts, defaultFontsErr
}

// LoadFonts reads TrueType or OpenType files. An empty path falls back to
// the matching embedded Go font.
func LoadFonts(regularPath, boldPath string) (*FontSet, error) {
	if regularPath == "" && boldPath == "" {
		return DefaultFonts()
	}

	regular, bold := goregular.TTF, gobold.TTF
	var err error
	if regularPath != "" {
		if regular, err = os.ReadFile(regularPath); err != nil {
			return nil, fmt.Errorf("read regular font: %w", err)
		}
	}
	if boldPath != "" {
		if bold, err = os.ReadFile(boldPath); err != nil {
			return nil, fmt.Errorf("read bold font: %w", err)
		}
	}
	return parseFonts(regular, bold)
}

func parseFonts(regular, bold []byte) (*FontSet, error) {
	r, err := opentype.Parse(regular)
	if err != nil {
		return nil, fmt.Errorf("parse regular font: %w", err)
	}
	b, err := opentype.Parse(bold)
	if err != nil {
		return nil, fmt.Errorf("parse bold font: %w", err)
	}
	return &FontSet{regular: r, bold: b}, nil
}

// Face returns a new face at size points (72 DPI, so points equal pixels).
func (fs *FontSet) Face(size float64, bold bool) (font.Face, error) {
	f := fs.regular
	if bold {
		f = fs.bold
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create face: %w", err)
	}
	return face, nil
}
