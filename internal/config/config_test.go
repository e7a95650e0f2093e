package config

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"
)

func TestDefault_Valid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v, want nil", err)
	}
	if cfg.OCR.MinConfidence != 40 {
		t.Errorf("MinConfidence: got %v, want 40", cfg.OCR.MinConfidence)
	}
	if cfg.Render.WordBudget != 100 {
		t.Errorf("WordBudget: got %d, want 100", cfg.Render.WordBudget)
	}
	if len(cfg.Patterns.StateCodes) != 51 {
		t.Errorf("StateCodes: got %d, want 51", len(cfg.Patterns.StateCodes))
	}
}

func TestDefault_StateCodesCopied(t *testing.T) {
	cfg := Default()
	cfg.Patterns.StateCodes[0] = "ZZ"
	if StateCodes[0] != "AL" {
		t.Errorf("Default shares the package StateCodes slice")
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"confidence above 100", func(c *Config) { c.OCR.MinConfidence = 120 }},
		{"zero line overlap", func(c *Config) { c.Layout.LineOverlap = 0 }},
		{"zones out of order", func(c *Config) { c.Zones.GridTop = 0.9 }},
		{"title zone empty", func(c *Config) { c.Zones.TitleBottom = 0 }},
		{"no header words", func(c *Config) { c.Patterns.MaxHeaderWords = 0 }},
		{"bad regexp", func(c *Config) { c.Patterns.ProMarker = "(" }},
		{"bad header pattern", func(c *Config) { c.Patterns.HeaderPattern = "[" }},
		{"bad colour", func(c *Config) { c.Render.Background = "white" }},
		{"zero budget", func(c *Config) { c.Render.WordBudget = 0 }},
		{"margin too wide", func(c *Config) { c.Render.Margin = 600 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate() = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestDefault_HeaderPattern(t *testing.T) {
	re := regexp.MustCompile(Default().Patterns.HeaderPattern)
	for _, s := range []string{"For (3)", "Against", "ABSTAINED 2", "Not Voting"} {
		if !re.MatchString(s) {
			t.Errorf("header pattern does not match %q", s)
		}
	}
	for _, s := range []string{"Formal", "CA", "Pros: lowers costs"} {
		if re.MatchString(s) {
			t.Errorf("header pattern matches %q", s)
		}
	}
}

func TestValidate_PixelOverrideAllowsZeroRatio(t *testing.T) {
	cfg := Default()
	cfg.Layout.WordGap = 0
	cfg.Layout.WordGapPixels = 18
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "votecards.yaml")
	data := []byte("ocr:\n  min_confidence: 55\nzones:\n  title_bottom: 0.10\nrender:\n  word_budget: 80\n  bold: false\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.OCR.MinConfidence != 55 {
		t.Errorf("MinConfidence: got %v, want 55", cfg.OCR.MinConfidence)
	}
	if cfg.Zones.TitleBottom != 0.10 {
		t.Errorf("TitleBottom: got %v, want 0.10", cfg.Zones.TitleBottom)
	}
	if cfg.Render.WordBudget != 80 {
		t.Errorf("WordBudget: got %d, want 80", cfg.Render.WordBudget)
	}
	if cfg.Render.Bold {
		t.Error("Bold: got true, want false")
	}
	// untouched keys keep their defaults
	if cfg.Zones.GridBottom != 0.85 {
		t.Errorf("GridBottom: got %v, want 0.85", cfg.Zones.GridBottom)
	}
	if cfg.OCR.Language != "eng" {
		t.Errorf("Language: got %q, want eng", cfg.OCR.Language)
	}
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}
	if cfg.Render.Width != 1080 {
		t.Errorf("Width: got %d, want 1080", cfg.Render.Width)
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("zones: [1, 2"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); err == nil {
		t.Error("expected error for malformed YAML")
	}

	invalidFile := filepath.Join(dir, "invalid.yaml")
	if err := os.WriteFile(invalidFile, []byte("zones:\n  grid_top: 0.95\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(invalidFile); !errors.Is(err, ErrInvalid) {
		t.Errorf("Load() = %v, want ErrInvalid", err)
	}
}
