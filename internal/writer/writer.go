// Package writer persists rendered cards.
package writer

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/disintegration/imaging"
)

// Writer stores a named image and returns where it went.
type Writer interface {
	Write(name string, img image.Image) (string, error)
}

// FileNames maps artifact names to output file names. Other names are written
// as <name>.png.
var FileNames = map[string]string{
	"title":     "01_title.png",
	"pros_cons": "02_pros_cons.png",
	"visual":    "03_visual.png",
}

// Dir writes PNG files into a directory, creating it on first use.
type Dir struct {
	Root string
}

// Write encodes img as PNG under d.Root.
func (d Dir) Write(name string, img image.Image) (string, error) {
	if err := os.MkdirAll(d.Root, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	file, ok := FileNames[name]
	if !ok {
		file = name + ".png"
	}
	path := filepath.Join(d.Root, file)
	if err := imaging.Save(img, path); err != nil {
		return "", fmt.Errorf("save %s: %w", name, err)
	}
	return path, nil
}

// Dated returns a Dir for the month folder of text below root.
func Dated(root, text string) Dir {
	return Dir{Root: filepath.Join(root, MonthFolder(text))}
}

var (
	datePattern = regexp.MustCompile(`(?i)Date\s*[:\-]?\s*(\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4})`)
	isoPattern  = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	dateLayouts = []string{"1/2/2006", "1/2/06", "1-2-2006", "1-2-06"}
)

// MonthFolder derives a folder name such as "January-2025" from the first
// "Date: mm/dd/yyyy" in text, falling back to an ISO yyyy-mm-dd date and then
// to "Unknown".
func MonthFolder(text string) string {
	if m := datePattern.FindStringSubmatch(text); m != nil {
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, m[1]); err == nil {
				return t.Format("January-2006")
			}
		}
		return "Unknown"
	}
	if m := isoPattern.FindString(text); m != "" {
		if t, err := time.Parse("2006-01-02", m); err == nil {
			return t.Format("January-2006")
		}
	}
	return "Unknown"
}
