package imaging

import (
	"fmt"
	"image"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// ParseHex parses "#rrggbb" or "#rgb" into an opaque colour.
func ParseHex(hex string) (color.NRGBA, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid colour %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}

// Hex formats c as "#rrggbb", ignoring alpha.
func Hex(c color.Color) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", uint8(r>>8), uint8(g>>8), uint8(b>>8))
}

// bucket accumulates the pixels that quantize to the same key.
type bucket struct {
	count   int
	r, g, b int
}

// SampleBackground estimates the fill colour behind box from the ring of
// pixels up to ring pixels outside it.
//
// Pixels are quantized by dividing each 8-bit component by 16, the most
// common bucket wins and its real pixels are averaged. Text anti-aliasing and
// grid lines in the ring fall into minority buckets and do not shift the
// result. When box covers the whole image the box itself is sampled.
func SampleBackground(img image.Image, box image.Rectangle, ring int) color.NRGBA {
	bounds := img.Bounds()
	box = box.Intersect(bounds)
	outer := box.Inset(-ring).Intersect(bounds)

	buckets := make(map[uint16]*bucket)
	add := func(x, y int) {
		r, g, b, _ := img.At(x, y).RGBA()
		r8, g8, b8 := int(r>>8), int(g>>8), int(b>>8)
		key := uint16(r8/16)<<8 | uint16(g8/16)<<4 | uint16(b8/16)
		bk := buckets[key]
		if bk == nil {
			bk = &bucket{}
			buckets[key] = bk
		}
		bk.count++
		bk.r += r8
		bk.g += g8
		bk.b += b8
	}

	for y := outer.Min.Y; y < outer.Max.Y; y++ {
		for x := outer.Min.X; x < outer.Max.X; x++ {
			if image.Pt(x, y).In(box) {
				continue
			}
			add(x, y)
		}
	}
	if len(buckets) == 0 {
		for y := box.Min.Y; y < box.Max.Y; y++ {
			for x := box.Min.X; x < box.Max.X; x++ {
				add(x, y)
			}
		}
	}

	var best *bucket
	var bestKey uint16
	for key, bk := range buckets {
		// ties go to the lower key so results do not depend on map order
		if best == nil || bk.count > best.count || (bk.count == best.count && key < bestKey) {
			best, bestKey = bk, key
		}
	}
	if best == nil {
		return color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	}
	return color.NRGBA{
		R: uint8(best.r / best.count),
		G: uint8(best.g / best.count),
		B: uint8(best.b / best.count),
		A: 255,
	}
}

// minTextContrast is the CIE Lab distance under which a box is treated as
// containing no visible text.
const minTextContrast = 0.1

// TextColor estimates the colour of the text inside box as the pixel with
// the greatest Lab distance from bg. For an empty-looking box it returns
// black or white, whichever reads better on bg.
func TextColor(img image.Image, box image.Rectangle, bg color.Color) color.NRGBA {
	base, _ := colorful.MakeColor(bg)
	box = box.Intersect(img.Bounds())

	var best colorful.Color
	bestDist := -1.0
	for y := box.Min.Y; y < box.Max.Y; y++ {
		for x := box.Min.X; x < box.Max.X; x++ {
			c, ok := colorful.MakeColor(img.At(x, y))
			if !ok {
				continue
			}
			if d := c.DistanceLab(base); d > bestDist {
				best, bestDist = c, d
			}
		}
	}

	if bestDist < minTextContrast {
		return Contrasting(bg)
	}
	r, g, b := best.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

// Contrasting returns black on light colours and white on dark ones.
func Contrasting(bg color.Color) color.NRGBA {
	c, _ := colorful.MakeColor(bg)
	if l, _, _ := c.Lab(); l > 0.55 {
		return color.NRGBA{A: 255}
	}
	return color.NRGBA{R: 255, G: 255, B: 255, A: 255}
}
