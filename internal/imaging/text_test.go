package imaging

import (
	"image"
	"image/color"
	"strings"
	"testing"
)

func testFonts(t *testing.T) *FontSet {
	t.Helper()
	fs, err := DefaultFonts()
	if err != nil {
		t.Fatalf("DefaultFonts failed: %v", err)
	}
	return fs
}

func TestLoadFonts(t *testing.T) {
	fs, err := LoadFonts("", "")
	if err != nil {
		t.Fatalf("LoadFonts failed: %v", err)
	}
	def, _ := DefaultFonts()
	if fs != def {
		t.Error("LoadFonts with no paths should return the default set")
	}

	if _, err := LoadFonts("/nonexistent/font.ttf", ""); err == nil {
		t.Error("expected error for missing font file")
	}
}

func TestFace_BoldIsWider(t *testing.T) {
	fs := testFonts(t)
	regular, err := fs.Face(24, false)
	if err != nil {
		t.Fatalf("Face failed: %v", err)
	}
	bold, err := fs.Face(24, true)
	if err != nil {
		t.Fatalf("Face failed: %v", err)
	}

	r, b := MeasureString(regular, "WASHINGTON"), MeasureString(bold, "WASHINGTON")
	if b <= r {
		t.Errorf("bold width %d should exceed regular width %d", b, r)
	}
	if LineHeight(regular) < 24 {
		t.Errorf("LineHeight: got %d, want at least 24", LineHeight(regular))
	}
}

func TestWrap(t *testing.T) {
	fs := testFonts(t)
	face, err := fs.Face(20, false)
	if err != nil {
		t.Fatal(err)
	}

	text := "Requires the Secretary of Health to negotiate prices for covered drugs\nand report annually"
	const maxWidth = 260
	lines := Wrap(face, text, maxWidth)

	if len(lines) < 3 {
		t.Fatalf("got %d lines, want at least 3: %q", len(lines), lines)
	}
	for _, l := range lines {
		if strings.Contains(l, " ") && MeasureString(face, l) > maxWidth {
			t.Errorf("line %q is %dpx wide, max %d", l, MeasureString(face, l), maxWidth)
		}
	}
	if got, want := strings.Join(lines, " "), strings.Join(strings.Fields(text), " "); got != want {
		t.Errorf("words changed:\n got %q\nwant %q", got, want)
	}
	if lines[len(lines)-1] != "and report annually" {
		t.Errorf("explicit line break not kept: last line %q", lines[len(lines)-1])
	}
}

func TestWrap_LongWord(t *testing.T) {
	fs := testFonts(t)
	face, _ := fs.Face(20, false)
	lines := Wrap(face, "a Supercalifragilistic b", 40)
	if len(lines) != 3 || lines[1] != "Supercalifragilistic" {
		t.Errorf("got %q, want the long word on its own line", lines)
	}
	if len(Wrap(face, "   ", 100)) != 0 {
		t.Error("blank text should produce no lines")
	}
}

func TestDrawString(t *testing.T) {
	fs := testFonts(t)
	face, _ := fs.Face(20, true)
	img := createInMemoryImage(100, 40, color.White)

	DrawString(img, face, 5, 28, "Hi", color.Black)

	dark := 0
	for y := 0; y < 40; y++ {
		for x := 0; x < 100; x++ {
			if r, _, _, _ := img.At(x, y).RGBA(); r < 0x8000 {
				dark++
			}
		}
	}
	if dark == 0 {
		t.Error("DrawString drew nothing")
	}
}

func TestFillRect(t *testing.T) {
	img := createInMemoryImage(10, 10, color.White)
	FillRect(img, image.Rect(2, 2, 4, 4), color.RGBA{255, 0, 0, 255})
	if img.RGBAAt(3, 3) != (color.RGBA{255, 0, 0, 255}) {
		t.Error("pixel inside rect not filled")
	}
	if img.RGBAAt(5, 5) != (color.RGBA{255, 255, 255, 255}) {
		t.Error("pixel outside rect changed")
	}
}
