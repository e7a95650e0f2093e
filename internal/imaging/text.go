package imaging

import (
	"image"
	"image/color"
	"image/draw"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// MeasureString returns the advance width of s in pixels.
func MeasureString(face font.Face, s string) int {
	return font.MeasureString(face, s).Ceil()
}

// LineHeight returns the ascent plus descent of face in pixels.
func LineHeight(face font.Face) int {
	m := face.Metrics()
	return (m.Ascent + m.Descent).Ceil()
}

// Wrap breaks text into lines no wider than maxWidth pixels. Words are never
// split; a word wider than maxWidth gets a line of its own. Existing line
// breaks are kept.
func Wrap(face font.Face, text string, maxWidth int) []string {
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			continue
		}
		cur := words[0]
		for _, w := range words[1:] {
			candidate := cur + " " + w
			if MeasureString(face, candidate) <= maxWidth {
				cur = candidate
				continue
			}
			lines = append(lines, cur)
			cur = w
		}
		lines = append(lines, cur)
	}
	return lines
}

// DrawString draws s with its baseline at y, starting at x.
func DrawString(dst draw.Image, face font.Face, x, y int, s string, col color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// FillRect paints r with col.
func FillRect(dst draw.Image, r image.Rectangle, col color.Color) {
	draw.Draw(dst, r, image.NewUniform(col), image.Point{}, draw.Src)
}
