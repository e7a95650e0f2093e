// Package config holds the tunable thresholds, patterns and render settings
// used by every stage of the vote card pipeline.
//
// A Config is an explicit value: each component receives the section it needs
// at construction time, so concurrent runs with different settings never
// share mutable state.
//
// # Loading
//
// Default returns the built-in settings tuned for the title-top, grid-middle,
// caption-bottom chart family. Load overlays a YAML file on top of the
// defaults, so a file only needs to name the keys it changes:
//
//	ocr:
//	  min_confidence: 55
//	zones:
//	  title_bottom: 0.10
//	render:
//	  word_budget: 80
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned when a configuration value is out of range.
var ErrInvalid = errors.New("invalid configuration")

// Config is the complete pipeline configuration.
type Config struct {
	OCR      OCR      `yaml:"ocr"`
	Layout   Layout   `yaml:"layout"`
	Zones    Zones    `yaml:"zones"`
	Patterns Patterns `yaml:"patterns"`
	Render   Render   `yaml:"render"`
}

// OCR configures text detection.
type OCR struct {
	// Language is the Tesseract language code, e.g. "eng".
	Language string `yaml:"language"`

	// MinConfidence is the floor (0-100) below which words are discarded.
	MinConfidence float64 `yaml:"min_confidence"`

	// PageSegMode is the Tesseract page segmentation mode. Sparse text (11)
	// suits charts with scattered labels.
	PageSegMode int `yaml:"page_seg_mode"`

	Preprocess Preprocess `yaml:"preprocess"`
}

// Preprocess controls the image copy handed to the OCR engine. The source
// image is never modified.
type Preprocess struct {
	Grayscale bool `yaml:"grayscale"`

	// Contrast is a percentage change in -100..100; 0 disables it.
	Contrast float64 `yaml:"contrast"`

	// Upscale enlarges small charts before recognition. Values <= 1 disable it.
	Upscale float64 `yaml:"upscale"`
}

// Layout holds the LineAssembler thresholds. Proportional thresholds are
// multiples of the median token height; a non-zero pixel override wins.
type Layout struct {
	LineOverlap        float64 `yaml:"line_overlap"`
	WordGap            float64 `yaml:"word_gap"`
	WordGapPixels      int     `yaml:"word_gap_pixels"`
	ParagraphGap       float64 `yaml:"paragraph_gap"`
	ParagraphGapPixels int     `yaml:"paragraph_gap_pixels"`
	ColumnOverlap      float64 `yaml:"column_overlap"`
}

// Zones are horizontal bands expressed as fractions of image height.
type Zones struct {
	TitleBottom float64 `yaml:"title_bottom"`
	GridTop     float64 `yaml:"grid_top"`
	GridBottom  float64 `yaml:"grid_bottom"`

	// HeaderRow is the band below the topmost grid text that still counts
	// as the header row.
	HeaderRow float64 `yaml:"header_row"`

	// TitleTie is the relative area difference under which two title
	// candidates are reported as ambiguous.
	TitleTie float64 `yaml:"title_tie"`
}

// Patterns are the lexical rules used by the classifier.
type Patterns struct {
	StateCodes     []string `yaml:"state_codes"`
	StatePattern   string   `yaml:"state_pattern"`
	ProMarker      string   `yaml:"pro_marker"`
	ConMarker      string   `yaml:"con_marker"`
	Bullet         string   `yaml:"bullet"`
	MaxHeaderWords int      `yaml:"max_header_words"`

	// HeaderPattern marks a grid column header by its wording, wherever it
	// sits in the grid zone. Empty leaves only the positional rule.
	HeaderPattern string `yaml:"header_pattern"`
}

// Render configures the Compositor.
type Render struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	Margin int `yaml:"margin"`

	Background string `yaml:"background"`
	Foreground string `yaml:"foreground"`
	Accent     string `yaml:"accent"`

	TitleSize   float64 `yaml:"title_size"`
	BodySize    float64 `yaml:"body_size"`
	LineSpacing float64 `yaml:"line_spacing"`

	WordBudget int    `yaml:"word_budget"`
	Ellipsis   string `yaml:"ellipsis"`

	StateScale  float64 `yaml:"state_scale"`
	HeaderScale float64 `yaml:"header_scale"`
	Bold        bool    `yaml:"bold"`
	ErasePad    int     `yaml:"erase_pad"`

	// Optional TrueType files; the embedded Go fonts are used when empty.
	RegularFont string `yaml:"regular_font"`
	BoldFont    string `yaml:"bold_font"`
}

// StateCodes lists the US postal codes recognised as state labels.
var StateCodes = []string{
	"AL", "AK", "AZ", "AR", "CA", "CO", "CT", "DE", "FL", "GA",
	"HI", "ID", "IL", "IN", "IA", "KS", "KY", "LA", "ME", "MD",
	"MA", "MI", "MN", "MS", "MO", "MT", "NE", "NV", "NH", "NJ",
	"NM", "NY", "NC", "ND", "OH", "OK", "OR", "PA", "RI", "SC",
	"SD", "TN", "TX", "UT", "VT", "VA", "WA", "WV", "WI", "WY",
	"DC",
}

// Default returns the built-in configuration.
func Default() Config {
	codes := make([]string, len(StateCodes))
	copy(codes, StateCodes)

	return Config{
		OCR: OCR{
			Language:      "eng",
			MinConfidence: 40,
			PageSegMode:   11,
			Preprocess: Preprocess{
				Grayscale: true,
				Upscale:   1,
			},
		},
		Layout: Layout{
			LineOverlap:   0.5,
			WordGap:       1.5,
			ParagraphGap:  0.9,
			ColumnOverlap: 0.3,
		},
		Zones: Zones{
			TitleBottom: 0.12,
			GridTop:     0.15,
			GridBottom:  0.85,
			HeaderRow:   0.06,
			TitleTie:    0.1,
		},
		Patterns: Patterns{
			StateCodes:     codes,
			StatePattern:   `^([A-Z]{2})(?:\s+\(?(\d{1,3})\)?)?$`,
			ProMarker:      `(?i)^\s*(?:pros?\b|\+|✓|✔)\s*[:\-–]?\s*`,
			ConMarker:      `(?i)^\s*(?:cons?\b|✗|✘)\s*[:\-–]?\s*`,
			Bullet:         `^\s*[-•*]\s+`,
			MaxHeaderWords: 4,
			HeaderPattern:  `(?i)^(?:for|against|abstained?|yea|nay|not voting)\b`,
		},
		Render: Render{
			Width:       1080,
			Height:      1080,
			Margin:      60,
			Background:  "#ffffff",
			Foreground:  "#1a1a1a",
			Accent:      "#0b3d91",
			TitleSize:   56,
			BodySize:    32,
			LineSpacing: 1.3,
			WordBudget:  100,
			Ellipsis:    "...",
			StateScale:  1.6,
			HeaderScale: 1.4,
			Bold:        true,
			ErasePad:    2,
		},
	}
}

// Load reads a YAML file and applies it over Default. An empty path returns
// the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate reports the first out-of-range value, wrapped in ErrInvalid.
func (c Config) Validate() error {
	z := c.Zones
	switch {
	case c.OCR.MinConfidence < 0 || c.OCR.MinConfidence > 100:
		return invalid("ocr.min_confidence %v outside 0..100", c.OCR.MinConfidence)
	case c.OCR.Preprocess.Contrast < -100 || c.OCR.Preprocess.Contrast > 100:
		return invalid("ocr.preprocess.contrast %v outside -100..100", c.OCR.Preprocess.Contrast)
	case c.Layout.LineOverlap <= 0 || c.Layout.LineOverlap > 1:
		return invalid("layout.line_overlap %v outside (0,1]", c.Layout.LineOverlap)
	case c.Layout.WordGap <= 0 && c.Layout.WordGapPixels <= 0:
		return invalid("layout.word_gap must be positive")
	case c.Layout.ParagraphGap <= 0 && c.Layout.ParagraphGapPixels <= 0:
		return invalid("layout.paragraph_gap must be positive")
	case c.Layout.ColumnOverlap < 0 || c.Layout.ColumnOverlap > 1:
		return invalid("layout.column_overlap %v outside [0,1]", c.Layout.ColumnOverlap)
	case !(0 < z.TitleBottom && z.TitleBottom <= z.GridTop && z.GridTop < z.GridBottom && z.GridBottom <= 1):
		return invalid("zones must satisfy 0 < title_bottom <= grid_top < grid_bottom <= 1")
	case z.HeaderRow < 0 || z.TitleTie < 0:
		return invalid("zones.header_row and zones.title_tie must not be negative")
	case c.Patterns.MaxHeaderWords < 1:
		return invalid("patterns.max_header_words must be at least 1")
	case len(c.Patterns.StateCodes) == 0:
		return invalid("patterns.state_codes is empty")
	case c.Render.Width <= 0 || c.Render.Height <= 0:
		return invalid("render size %dx%d", c.Render.Width, c.Render.Height)
	case c.Render.Margin < 0 || 2*c.Render.Margin >= c.Render.Width:
		return invalid("render.margin %d does not fit width %d", c.Render.Margin, c.Render.Width)
	case c.Render.TitleSize <= 0 || c.Render.BodySize <= 0 || c.Render.LineSpacing <= 0:
		return invalid("render font sizes and line spacing must be positive")
	case c.Render.WordBudget < 1:
		return invalid("render.word_budget must be at least 1")
	case c.Render.StateScale <= 0 || c.Render.HeaderScale <= 0:
		return invalid("render scales must be positive")
	case c.Render.ErasePad < 0:
		return invalid("render.erase_pad must not be negative")
	}

	for key, expr := range map[string]string{
		"state_pattern":  c.Patterns.StatePattern,
		"pro_marker":     c.Patterns.ProMarker,
		"con_marker":     c.Patterns.ConMarker,
		"bullet":         c.Patterns.Bullet,
		"header_pattern": c.Patterns.HeaderPattern,
	} {
		if _, err := regexp.Compile(expr); err != nil {
			return invalid("patterns.%s: %v", key, err)
		}
	}
	for key, hex := range map[string]string{
		"background": c.Render.Background,
		"foreground": c.Render.Foreground,
		"accent":     c.Render.Accent,
	} {
		if _, err := colorful.Hex(hex); err != nil {
			return invalid("render.%s %q: %v", key, hex, err)
		}
	}
	return nil
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}
