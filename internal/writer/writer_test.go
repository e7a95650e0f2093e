package writer

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
)

func TestMonthFolder(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Roll call 42\nDate: 01/16/2025\nH.R. 498", "January-2025"},
		{"date - 3/4/2024", "March-2024"},
		{"Date: 11-30-24", "November-2024"},
		{"Date: 12/05/99", "December-1999"},
		{"voted 2023-07-19", "July-2023"},
		{"Date: 13/40/2025", "Unknown"},
		{"no date here", "Unknown"},
		{"", "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := MonthFolder(tt.text); got != tt.want {
				t.Errorf("MonthFolder(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestDir_Write(t *testing.T) {
	root := filepath.Join(t.TempDir(), "cards")
	w := Dir{Root: root}

	img := image.NewNRGBA(image.Rect(0, 0, 8, 6))
	img.Set(1, 1, color.NRGBA{200, 10, 10, 255})

	tests := []struct {
		name string
		want string
	}{
		{"title", "01_title.png"},
		{"pros_cons", "02_pros_cons.png"},
		{"visual", "03_visual.png"},
		{"extra", "extra.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := w.Write(tt.name, img)
			if err != nil {
				t.Fatalf("Write failed: %v", err)
			}
			if path != filepath.Join(root, tt.want) {
				t.Errorf("path: got %q, want %q", path, filepath.Join(root, tt.want))
			}

			got, err := imaging.Open(path)
			if err != nil {
				t.Fatalf("reopen: %v", err)
			}
			if got.Bounds().Dx() != 8 || got.Bounds().Dy() != 6 {
				t.Errorf("size: got %v", got.Bounds())
			}
			if r, _, _, _ := got.At(1, 1).RGBA(); r>>8 != 200 {
				t.Errorf("pixel (1,1) red: got %d, want 200", r>>8)
			}
		})
	}
}

func TestDir_WriteError(t *testing.T) {
	file := filepath.Join(t.TempDir(), "occupied")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	w := Dir{Root: file}
	if _, err := w.Write("title", image.NewNRGBA(image.Rect(0, 0, 2, 2))); err == nil {
		t.Error("expected error when the root is a file")
	}
}

func TestDated(t *testing.T) {
	d := Dated("/out", "Date: 02/14/2025")
	if d.Root != filepath.Join("/out", "February-2025") {
		t.Errorf("root: got %q", d.Root)
	}
}
