package imaging

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

var (
	// ErrEmptyBox is returned when the box has no pixels inside the image.
	ErrEmptyBox = errors.New("box is empty")

	// ErrEmptyText is returned when there is nothing to draw.
	ErrEmptyText = errors.New("text is empty")
)

// Style controls a redraw.
type Style struct {
	// Face is the already sized face to draw with.
	Face font.Face

	// ErasePad grows the erased area beyond the box on every side so the
	// anti-aliased rim of the old glyphs goes too.
	ErasePad int

	// Ring is the width of the background sample taken around the erased
	// area. Zero means 3 pixels.
	Ring int

	// Color is the text colour. Nil estimates it from the box.
	Color color.Color
}

// Redraw returns a copy of src in which the text inside box has been replaced
// by text drawn with st, centred on the box centroid, together with the
// rectangle that was written. Pixels outside that rectangle are identical to
// src. src is not modified.
func Redraw(src image.Image, box image.Rectangle, text string, st Style) (*image.NRGBA, image.Rectangle, error) {
	dst := Copy(src)
	dirty, err := RedrawOnto(dst, src, box, text, st)
	if err != nil {
		return nil, image.Rectangle{}, err
	}
	return dst, dirty, nil
}

// Copy returns an NRGBA copy of src with the same bounds.
func Copy(src image.Image) *image.NRGBA {
	dst := imaging.Clone(src)
	dst.Rect = src.Bounds()
	return dst
}

// NewCanvas returns a w x h image filled with bg.
func NewCanvas(w, h int, bg color.Color) *image.NRGBA {
	return imaging.New(w, h, bg)
}

// RedrawOnto performs the redraw of Redraw on dst, which must share src's
// coordinate space. Colours are sampled from src, so earlier redraws on dst
// do not affect later ones.
func RedrawOnto(dst draw.Image, src image.Image, box image.Rectangle, text string, st Style) (image.Rectangle, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return image.Rectangle{}, ErrEmptyText
	}
	bounds := src.Bounds()
	box = box.Intersect(bounds)
	if box.Empty() {
		return image.Rectangle{}, ErrEmptyBox
	}

	ring := st.Ring
	if ring <= 0 {
		ring = 3
	}
	erase := box.Inset(-st.ErasePad).Intersect(bounds)
	bg := SampleBackground(src, erase, ring)
	fg := st.Color
	if fg == nil {
		fg = TextColor(src, box, bg)
	}

	// centre the ink box of the new text on the box centroid
	gb, _ := font.BoundString(st.Face, text)
	cx := fixed.I(box.Min.X+box.Max.X) / 2
	cy := fixed.I(box.Min.Y+box.Max.Y) / 2
	dot := fixed.Point26_6{
		X: cx - (gb.Min.X+gb.Max.X)/2,
		Y: cy - (gb.Min.Y+gb.Max.Y)/2,
	}
	ink := image.Rect(
		(dot.X+gb.Min.X).Floor(),
		(dot.Y+gb.Min.Y).Floor(),
		(dot.X+gb.Max.X).Ceil(),
		(dot.Y+gb.Max.Y).Ceil(),
	).Inset(-1)

	dirty := erase.Union(ink).Intersect(bounds)
	FillRect(dst, erase, bg)

	d := &font.Drawer{
		Dst:  clip(dst, dirty),
		Src:  image.NewUniform(fg),
		Face: st.Face,
		Dot:  dot,
	}
	d.DrawString(text)

	return dirty, nil
}

// clip restricts drawing to r when dst supports sub-images.
func clip(dst draw.Image, r image.Rectangle) draw.Image {
	if s, ok := dst.(interface {
		SubImage(image.Rectangle) image.Image
	}); ok {
		if sub, ok := s.SubImage(r).(draw.Image); ok {
			return sub
		}
	}
	return dst
}

// ChangedOutside counts the pixels that differ between a and b and lie
// outside every rectangle in allowed. Images of different bounds compare over
// their intersection.
func ChangedOutside(a, b image.Image, allowed []image.Rectangle) int {
	r := a.Bounds().Intersect(b.Bounds())
	changed := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			p := image.Pt(x, y)
			skip := false
			for _, ar := range allowed {
				if p.In(ar) {
					skip = true
					break
				}
			}
			if skip {
				continue
			}
			ar, ag, ab, aa := a.At(x, y).RGBA()
			br, bg, bb, ba := b.At(x, y).RGBA()
			if ar != br || ag != bg || ab != bb || aa != ba {
				changed++
			}
		}
	}
	return changed
}
