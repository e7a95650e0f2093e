package imaging

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
)

// createLabelImage draws a dark block standing in for small label text on a
// coloured chart fill.
func createLabelImage() (*image.RGBA, image.Rectangle) {
	img := createInMemoryImage(200, 100, color.RGBA{170, 200, 230, 255})
	label := image.Rect(88, 44, 112, 56)
	for y := label.Min.Y + 2; y < label.Max.Y-2; y++ {
		for x := label.Min.X + 2; x < label.Max.X-2; x++ {
			img.Set(x, y, color.RGBA{20, 20, 20, 255})
		}
	}
	return img, label
}

func TestRedraw(t *testing.T) {
	src, box := createLabelImage()
	before := imaging.Clone(src)

	fs, err := DefaultFonts()
	if err != nil {
		t.Fatal(err)
	}
	face, err := fs.Face(14, true)
	if err != nil {
		t.Fatal(err)
	}

	out, dirty, err := Redraw(src, box, "CA", Style{Face: face, ErasePad: 2})
	if err != nil {
		t.Fatalf("Redraw failed: %v", err)
	}

	if !box.In(dirty) {
		t.Errorf("dirty %v does not cover box %v", dirty, box)
	}
	if !dirty.In(src.Bounds()) {
		t.Errorf("dirty %v extends outside the image", dirty)
	}
	if n := ChangedOutside(src, out, []image.Rectangle{dirty}); n != 0 {
		t.Errorf("%d pixels changed outside the dirty rectangle", n)
	}
	if n := ChangedOutside(before, src, nil); n != 0 {
		t.Errorf("source modified: %d pixels differ", n)
	}

	// the erased rim takes the sampled fill
	if got := out.NRGBAAt(box.Min.X-2, box.Min.Y-2); got != (color.NRGBA{170, 200, 230, 255}) {
		t.Errorf("erased corner: got %v, want the background fill", got)
	}

	// new glyphs use the colour found in the box
	ink := 0
	for y := dirty.Min.Y; y < dirty.Max.Y; y++ {
		for x := dirty.Min.X; x < dirty.Max.X; x++ {
			if out.NRGBAAt(x, y) == (color.NRGBA{20, 20, 20, 255}) {
				ink++
			}
		}
	}
	if ink == 0 {
		t.Error("no text pixels in the dirty rectangle")
	}
}

func TestRedraw_FixedColour(t *testing.T) {
	src, box := createLabelImage()
	fs, _ := DefaultFonts()
	face, _ := fs.Face(18, true)
	red := color.NRGBA{220, 0, 0, 255}

	out, dirty, err := Redraw(src, box, "TX", Style{Face: face, Color: red})
	if err != nil {
		t.Fatalf("Redraw failed: %v", err)
	}
	found := false
	for y := dirty.Min.Y; y < dirty.Max.Y && !found; y++ {
		for x := dirty.Min.X; x < dirty.Max.X; x++ {
			if out.NRGBAAt(x, y) == red {
				found = true
				break
			}
		}
	}
	if !found {
		t.Error("text not drawn in the requested colour")
	}
}

func TestRedraw_Errors(t *testing.T) {
	src, box := createLabelImage()
	fs, _ := DefaultFonts()
	face, _ := fs.Face(18, true)

	if _, _, err := Redraw(src, box, "  ", Style{Face: face}); !errors.Is(err, ErrEmptyText) {
		t.Errorf("empty text: got %v, want ErrEmptyText", err)
	}
	if _, _, err := Redraw(src, image.Rect(300, 300, 320, 320), "CA", Style{Face: face}); !errors.Is(err, ErrEmptyBox) {
		t.Errorf("outside box: got %v, want ErrEmptyBox", err)
	}
	if _, _, err := Redraw(src, image.Rect(10, 10, 10, 30), "CA", Style{Face: face}); !errors.Is(err, ErrEmptyBox) {
		t.Errorf("zero-width box: got %v, want ErrEmptyBox", err)
	}
}

func TestChangedOutside(t *testing.T) {
	a := createInMemoryImage(20, 20, color.White)
	b := createInMemoryImage(20, 20, color.White)
	b.Set(5, 5, color.Black)
	b.Set(15, 15, color.Black)

	if n := ChangedOutside(a, b, nil); n != 2 {
		t.Errorf("no allowed rects: got %d, want 2", n)
	}
	if n := ChangedOutside(a, b, []image.Rectangle{image.Rect(0, 0, 10, 10)}); n != 1 {
		t.Errorf("one allowed rect: got %d, want 1", n)
	}
}

func TestCopy_KeepsBounds(t *testing.T) {
	src := image.NewRGBA(image.Rect(10, 20, 30, 40))
	src.Set(15, 25, color.RGBA{1, 2, 3, 255})

	dst := Copy(src)
	if dst.Bounds() != src.Bounds() {
		t.Fatalf("bounds: got %v, want %v", dst.Bounds(), src.Bounds())
	}
	if got := dst.NRGBAAt(15, 25); got != (color.NRGBA{1, 2, 3, 255}) {
		t.Errorf("pixel at (15,25): got %v", got)
	}
	dst.Set(15, 25, color.Black)
	if src.RGBAAt(15, 25) != (color.RGBA{1, 2, 3, 255}) {
		t.Error("Copy shares pixels with the source")
	}
}
