package compose

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/image/font"

	"github.com/ironsheep/votecards/internal/classify"
	"github.com/ironsheep/votecards/internal/config"
	"github.com/ironsheep/votecards/internal/imaging"
)

// ErrRegionRenderSkipped marks a region that could not be drawn. It is
// recorded on the artifact and never fails the render.
var ErrRegionRenderSkipped = errors.New("region render skipped")

var errCardFull = errors.New("text does not fit on the card")

// Artifact is one rendered card.
type Artifact struct {
	Name  string
	Image *image.NRGBA

	// Lines is the text drawn on the card, one entry per rendered line.
	Lines []string

	// Dirty holds the rectangles written by in-place redraws. Every pixel
	// outside them equals the source image.
	Dirty []image.Rectangle

	Skipped []error
}

// Compositor renders plan entries. It is safe for concurrent use; faces are
// created per render.
type Compositor struct {
	cfg    config.Render
	fonts  *imaging.FontSet
	bg     color.NRGBA
	fg     color.NRGBA
	accent color.NRGBA
	log    logrus.FieldLogger
}

// New loads the configured fonts and colours. A nil logger uses the logrus
// standard logger.
func New(cfg config.Render, log logrus.FieldLogger) (*Compositor, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	fonts, err := imaging.LoadFonts(cfg.RegularFont, cfg.BoldFont)
	if err != nil {
		return nil, fmt.Errorf("load fonts: %w", err)
	}

	c := &Compositor{cfg: cfg, fonts: fonts, log: log}
	if c.bg, err = imaging.ParseHex(cfg.Background); err != nil {
		return nil, fmt.Errorf("background: %w", err)
	}
	if c.fg, err = imaging.ParseHex(cfg.Foreground); err != nil {
		return nil, fmt.Errorf("foreground: %w", err)
	}
	if c.accent, err = imaging.ParseHex(cfg.Accent); err != nil {
		return nil, fmt.Errorf("accent: %w", err)
	}
	return c, nil
}

// Render renders every entry of plan and returns the artifacts by name.
// img is only read by overlay entries and is never modified.
func (c *Compositor) Render(regions []classify.Region, img image.Image, plan RenderPlan) (map[string]*Artifact, error) {
	out := make(map[string]*Artifact, len(plan.Entries))
	for _, e := range plan.Entries {
		a, err := c.RenderEntry(regions, img, e)
		if err != nil {
			return out, fmt.Errorf("render %s: %w", e.Artifact, err)
		}
		out[e.Artifact] = a
	}
	return out, nil
}

// RenderEntry renders a single artifact.
func (c *Compositor) RenderEntry(regions []classify.Region, img image.Image, e PlanEntry) (*Artifact, error) {
	switch e.Mode {
	case ModeCanvas:
		return c.renderCanvas(regions, e)
	case ModeOverlay:
		if img == nil {
			return nil, errors.New("overlay needs a source image")
		}
		return c.renderOverlay(regions, img, e)
	default:
		return nil, fmt.Errorf("unknown render mode %q", e.Mode)
	}
}

func (c *Compositor) skip(a *Artifact, st Step, reason error) {
	a.Skipped = append(a.Skipped, fmt.Errorf("%w: region %d: %w", ErrRegionRenderSkipped, st.Region, reason))
	c.log.WithFields(logrus.Fields{
		"artifact": a.Name,
		"region":   st.Region,
	}).WithError(reason).Warn("Skipping region")
}

func regionAt(regions []classify.Region, i int) (classify.Region, error) {
	if i < 0 || i >= len(regions) {
		return classify.Region{}, fmt.Errorf("no region %d", i)
	}
	return regions[i], nil
}

// block is one paragraph of a canvas card.
type block struct {
	step    Step
	heading string
	text    string
}

var headings = map[Slot]string{
	SlotPro: "Pros:",
	SlotCon: "Cons:",
}

func (c *Compositor) renderCanvas(regions []classify.Region, e PlanEntry) (*Artifact, error) {
	w, h := e.Width, e.Height
	if w <= 0 || h <= 0 {
		w, h = c.cfg.Width, c.cfg.Height
	}
	a := &Artifact{Name: e.Artifact, Image: imaging.NewCanvas(w, h, c.bg)}

	var blocks []block
	section := Slot("")
	for _, st := range e.Steps {
		region, err := regionAt(regions, st.Region)
		if err != nil {
			c.skip(a, st, err)
			continue
		}

		items := []string{region.Text}
		_, listed := headings[st.Slot]
		if listed && len(region.Items) > 0 {
			items = region.Items
		}

		drawn := 0
		for _, item := range items {
			item = strings.TrimSpace(item)
			if item == "" {
				continue
			}
			b := block{step: st, text: item}
			if listed && section != st.Slot {
				section = st.Slot
				b.heading = headings[st.Slot]
			}
			blocks = append(blocks, b)
			drawn++
		}
		if drawn == 0 {
			c.skip(a, st, imaging.ErrEmptyText)
		}
	}

	texts := make([]string, len(blocks))
	for i, b := range blocks {
		texts[i] = b.text
	}
	texts, cut := limitWords(texts, c.cfg.WordBudget, c.cfg.Ellipsis)
	if cut {
		c.log.WithField("artifact", a.Name).Debugf("Text cut to %d words", c.cfg.WordBudget)
	}

	p := &painter{
		c:      c,
		a:      a,
		faces:  make(map[faceKey]font.Face),
		x:      c.cfg.Margin,
		y:      c.cfg.Margin,
		width:  w - 2*c.cfg.Margin,
		bottom: h - c.cfg.Margin,
	}
	for i, text := range texts {
		b := blocks[i]
		if i > 0 && b.step.Region != blocks[i-1].step.Region {
			p.y += int(c.cfg.BodySize / 2)
		}
		if b.heading != "" {
			if err := p.draw(b.heading, c.cfg.BodySize, true, c.accent); err != nil {
				c.skip(a, b.step, err)
				break
			}
		}
		if _, listed := headings[b.step.Slot]; listed {
			text = "- " + text
		}
		if err := p.draw(text, c.cfg.BodySize*b.step.FontScale, b.step.Bold, c.fg); err != nil {
			c.skip(a, b.step, err)
			break
		}
	}
	return a, nil
}

type faceKey struct {
	size float64
	bold bool
}

// painter lays text out top to bottom on a canvas.
type painter struct {
	c      *Compositor
	a      *Artifact
	faces  map[faceKey]font.Face
	x, y   int
	width  int
	bottom int
}

func (p *painter) face(size float64, bold bool) (font.Face, error) {
	k := faceKey{size, bold}
	if f, ok := p.faces[k]; ok {
		return f, nil
	}
	f, err := p.c.fonts.Face(size, bold)
	if err != nil {
		return nil, err
	}
	p.faces[k] = f
	return f, nil
}

func (p *painter) draw(text string, size float64, bold bool, col color.Color) error {
	face, err := p.face(size, bold)
	if err != nil {
		return err
	}
	ascent := face.Metrics().Ascent.Ceil()
	advance := int(math.Ceil(float64(imaging.LineHeight(face)) * p.c.cfg.LineSpacing))

	for _, line := range imaging.Wrap(face, text, p.width) {
		if p.y+ascent > p.bottom {
			return errCardFull
		}
		imaging.DrawString(p.a.Image, face, p.x, p.y+ascent, line, col)
		p.a.Lines = append(p.a.Lines, line)
		p.y += advance
	}
	return nil
}

// limitWords keeps the first budget words across texts. When words are
// dropped the ellipsis is appended to the last kept word, the texts after it
// are removed and cut is true. Line breaks inside kept text survive.
func limitWords(texts []string, budget int, ellipsis string) (kept []string, cut bool) {
	total := 0
	for _, t := range texts {
		total += len(strings.Fields(t))
	}
	if budget <= 0 || total <= budget {
		return texts, false
	}

	remaining := budget
	for _, t := range texts {
		n := len(strings.Fields(t))
		if n < remaining {
			kept = append(kept, t)
			remaining -= n
			continue
		}
		kept = append(kept, firstWords(t, remaining))
		break
	}
	kept[len(kept)-1] += ellipsis
	return kept, true
}

// firstWords returns the first n words of s, keeping its line breaks.
func firstWords(s string, n int) string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if n == 0 {
			break
		}
		words := strings.Fields(line)
		if len(words) == 0 {
			continue
		}
		if len(words) > n {
			words = words[:n]
		}
		n -= len(words)
		lines = append(lines, strings.Join(words, " "))
	}
	return strings.Join(lines, "\n")
}

func (c *Compositor) renderOverlay(regions []classify.Region, img image.Image, e PlanEntry) (*Artifact, error) {
	a := &Artifact{Name: e.Artifact, Image: imaging.Copy(img)}

	for _, st := range e.Steps {
		region, err := regionAt(regions, st.Region)
		if err != nil {
			c.skip(a, st, err)
			continue
		}
		text := strings.Join(strings.Fields(region.Text), " ")
		if text == "" {
			c.skip(a, st, imaging.ErrEmptyText)
			continue
		}
		if st.Target.Empty() {
			c.skip(a, st, imaging.ErrEmptyBox)
			continue
		}

		face, err := c.fonts.Face(float64(st.Target.Height())*st.FontScale, st.Bold)
		if err != nil {
			c.skip(a, st, err)
			continue
		}
		dirty, err := imaging.RedrawOnto(a.Image, img, st.Target.Rect(), text, imaging.Style{
			Face:     face,
			ErasePad: c.cfg.ErasePad,
		})
		if err != nil {
			c.skip(a, st, err)
			continue
		}
		a.Dirty = append(a.Dirty, dirty)
		a.Lines = append(a.Lines, text)
	}

	c.log.WithFields(logrus.Fields{
		"artifact": a.Name,
		"redrawn":  len(a.Dirty),
		"skipped":  len(a.Skipped),
	}).Debug("Overlay rendered")
	return a, nil
}
