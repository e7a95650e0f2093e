package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
)

// Label is a box to outline on an annotated image.
type Label struct {
	Rect  image.Rectangle
	Text  string
	Color color.Color
}

// Annotate returns a copy of img with every label outlined and its text
// written on a dark tag above the box, or inside it at the top edge. The
// result is for inspecting classification, not for output cards.
func Annotate(img image.Image, labels []Label, fonts *FontSet) (*image.NRGBA, error) {
	out := Copy(img)
	face, err := fonts.Face(12, false)
	if err != nil {
		return nil, fmt.Errorf("annotation face: %w", err)
	}
	tagHeight := LineHeight(face) + 2
	tagColor := color.NRGBA{0, 0, 0, 180}

	for _, l := range labels {
		r := l.Rect.Intersect(out.Bounds())
		if r.Empty() {
			continue
		}
		outline(out, r, l.Color)

		if l.Text == "" {
			continue
		}
		tag := image.Rect(r.Min.X, r.Min.Y-tagHeight, r.Min.X+MeasureString(face, l.Text)+4, r.Min.Y)
		if tag.Min.Y < out.Bounds().Min.Y {
			tag = tag.Add(image.Pt(0, tagHeight))
		}
		tag = tag.Intersect(out.Bounds())
		draw.Draw(out, tag, image.NewUniform(tagColor), image.Point{}, draw.Over)
		DrawString(out, face, tag.Min.X+2, tag.Min.Y+face.Metrics().Ascent.Ceil()+1, l.Text, color.White)
	}
	return out, nil
}

// outline draws a one pixel rectangle just inside r.
func outline(dst *image.NRGBA, r image.Rectangle, c color.Color) {
	for x := r.Min.X; x < r.Max.X; x++ {
		dst.Set(x, r.Min.Y, c)
		dst.Set(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		dst.Set(r.Min.X, y, c)
		dst.Set(r.Max.X-1, y, c)
	}
}
