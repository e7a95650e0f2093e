package detection

import (
	"math"
	"sort"
	"strings"

	"github.com/ironsheep/votecards/internal/config"
)

// Line is a left-to-right run of tokens sharing a horizontal band.
type Line struct {
	Tokens []Token `json:"tokens"`
	Text   string  `json:"text"`
	Bounds Bounds  `json:"bounds"`
}

// Paragraph is a top-to-bottom run of lines in the same column.
type Paragraph struct {
	// Index is the paragraph's position in reading order.
	Index  int    `json:"index"`
	Lines  []Line `json:"lines"`
	Text   string `json:"text"`
	Bounds Bounds `json:"bounds"`
}

// Tokens returns the paragraph's tokens in reading order.
func (p Paragraph) Tokens() []Token {
	var out []Token
	for _, l := range p.Lines {
		out = append(out, l.Tokens...)
	}
	return out
}

// Layout is the result of assembling one image's tokens.
type Layout struct {
	Lines        []Line      `json:"lines"`
	Paragraphs   []Paragraph `json:"paragraphs"`
	MedianHeight float64     `json:"median_height"`
}

// LineAssembler groups tokens into lines and paragraphs.
//
// Lines are formed by a sweep over tokens sorted by (top, left): a token joins
// a line when their vertical overlap, relative to the shorter of the two, is
// at least LineOverlap and the horizontal gap to the line's extent is at most
// the word gap. A token that fits several lines goes to the one whose vertical
// centre is closest. A second pass merges lines that satisfy the same test,
// which happens when words of one line arrive out of order.
//
// Paragraphs are formed by a second sweep over lines: a line joins the
// paragraph whose last line ends at most the paragraph gap above it and whose
// horizontal extent overlaps the line by at least ColumnOverlap of the
// narrower of the two.
type LineAssembler struct {
	cfg config.Layout
}

// NewLineAssembler creates an assembler with the given thresholds.
func NewLineAssembler(cfg config.Layout) *LineAssembler {
	return &LineAssembler{cfg: cfg}
}

// Assemble builds the layout. Every input token appears in exactly one line
// and every line in exactly one paragraph. The input slice is not modified.
func (a *LineAssembler) Assemble(tokens []Token) *Layout {
	if len(tokens) == 0 {
		return &Layout{}
	}

	median := medianHeight(tokens)
	wordGap := a.threshold(a.cfg.WordGapPixels, a.cfg.WordGap, median)
	paraGap := a.threshold(a.cfg.ParagraphGapPixels, a.cfg.ParagraphGap, median)

	lines := a.groupIntoLines(tokens, wordGap)
	paragraphs := a.groupIntoParagraphs(lines, paraGap)

	return &Layout{Lines: lines, Paragraphs: paragraphs, MedianHeight: median}
}

func (a *LineAssembler) threshold(pixels int, ratio, median float64) float64 {
	if pixels > 0 {
		return float64(pixels)
	}
	return ratio * median
}

type lineBuild struct {
	tokens []Token
	bounds Bounds
	// band is the box of the line's first token. The vertical join test runs
	// against it so one tall token cannot stretch a line over its neighbours.
	band Bounds
}

func newLineBuild(t Token) *lineBuild {
	return &lineBuild{tokens: []Token{t}, bounds: t.Bounds, band: t.Bounds}
}

func (l *lineBuild) add(t Token) {
	l.tokens = append(l.tokens, t)
	l.bounds = l.bounds.Union(t.Bounds)
}

// reset recomputes bounds and band after tokens were moved out.
func (l *lineBuild) reset() {
	l.band = l.tokens[0].Bounds
	l.bounds = l.band
	for _, t := range l.tokens[1:] {
		l.bounds = l.bounds.Union(t.Bounds)
	}
}

// accepts is the join test shared by the sweep, the reassignment and the
// merge pass.
func (a *LineAssembler) accepts(l *lineBuild, box Bounds, wordGap float64) bool {
	ov := verticalOverlap(l.band, box)
	if ov <= 0 {
		return false
	}
	shorter := min(l.band.Height(), box.Height())
	if shorter <= 0 || float64(ov)/float64(shorter) < a.cfg.LineOverlap {
		return false
	}
	return float64(horizontalGap(l.bounds, box)) <= wordGap
}

func centreDistance(l *lineBuild, box Bounds) float64 {
	return math.Abs(l.band.CenterY() - box.CenterY())
}

func (a *LineAssembler) groupIntoLines(tokens []Token, wordGap float64) []Line {
	sorted := make([]Token, len(tokens))
	copy(sorted, tokens)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Bounds.Y1 != sorted[j].Bounds.Y1 {
			return sorted[i].Bounds.Y1 < sorted[j].Bounds.Y1
		}
		return sorted[i].Bounds.X1 < sorted[j].Bounds.X1
	})

	var builds []*lineBuild
	for _, t := range sorted {
		best, bestDist := -1, math.Inf(1)
		for i, l := range builds {
			if !a.accepts(l, t.Bounds, wordGap) {
				continue
			}
			if d := centreDistance(l, t.Bounds); d < bestDist {
				best, bestDist = i, d
			}
		}
		if best < 0 {
			builds = append(builds, newLineBuild(t))
			continue
		}
		builds[best].add(t)
	}

	builds = a.reassign(builds, wordGap)
	builds = a.mergeLines(builds, wordGap)

	lines := make([]Line, 0, len(builds))
	for _, b := range builds {
		sort.SliceStable(b.tokens, func(i, j int) bool {
			return b.tokens[i].Bounds.X1 < b.tokens[j].Bounds.X1
		})
		words := make([]string, len(b.tokens))
		for i, t := range b.tokens {
			words[i] = t.Text
		}
		lines = append(lines, Line{
			Tokens: b.tokens,
			Text:   strings.Join(words, " "),
			Bounds: b.bounds,
		})
	}

	sort.SliceStable(lines, func(i, j int) bool {
		if lines[i].Bounds.Y1 != lines[j].Bounds.Y1 {
			return lines[i].Bounds.Y1 < lines[j].Bounds.Y1
		}
		return lines[i].Bounds.X1 < lines[j].Bounds.X1
	})
	return lines
}

// reassign moves a token that fits several lines to the one with the nearest
// vertical centre. During the sweep a token only sees lines opened above it,
// so a line starting just below may be the better home.
func (a *LineAssembler) reassign(builds []*lineBuild, wordGap float64) []*lineBuild {
	type move struct{ from, idx, to int }
	var moves []move
	for i, l := range builds {
		for k, t := range l.tokens {
			best, bestDist := i, centreDistance(l, t.Bounds)
			for j, other := range builds {
				if j == i || !a.accepts(other, t.Bounds, wordGap) {
					continue
				}
				if d := centreDistance(other, t.Bounds); d < bestDist {
					best, bestDist = j, d
				}
			}
			if best != i {
				moves = append(moves, move{from: i, idx: k, to: best})
			}
		}
	}
	if len(moves) == 0 {
		return builds
	}

	moved := make(map[[2]int]bool, len(moves))
	for _, m := range moves {
		moved[[2]int{m.from, m.idx}] = true
		builds[m.to].add(builds[m.from].tokens[m.idx])
	}
	out := builds[:0]
	for i, l := range builds {
		kept := l.tokens[:0]
		for k, t := range l.tokens {
			if !moved[[2]int{i, k}] {
				kept = append(kept, t)
			}
		}
		if len(kept) == 0 {
			continue
		}
		l.tokens = kept
		l.reset()
		out = append(out, l)
	}
	return out
}

// mergeLines joins lines that pass the join test against each other,
// repeating until nothing changes.
func (a *LineAssembler) mergeLines(builds []*lineBuild, wordGap float64) []*lineBuild {
	for merged := true; merged; {
		merged = false
		for i := 0; i < len(builds) && !merged; i++ {
			for j := i + 1; j < len(builds); j++ {
				other := Bounds{X1: builds[j].bounds.X1, Y1: builds[j].band.Y1, X2: builds[j].bounds.X2, Y2: builds[j].band.Y2}
				if !a.accepts(builds[i], other, wordGap) {
					continue
				}
				for _, t := range builds[j].tokens {
					builds[i].add(t)
				}
				builds = append(builds[:j], builds[j+1:]...)
				merged = true
				break
			}
		}
	}
	return builds
}

func (a *LineAssembler) groupIntoParagraphs(lines []Line, paraGap float64) []Paragraph {
	var paras []Paragraph
	for _, line := range lines {
		best, bestGap := -1, math.Inf(1)
		for i := range paras {
			last := paras[i].Lines[len(paras[i].Lines)-1].Bounds
			if line.Bounds.CenterY() <= last.CenterY() {
				continue
			}
			gap := float64(line.Bounds.Y1 - last.Y2)
			if gap > paraGap {
				continue
			}
			if !a.sameColumn(paras[i].Bounds, line.Bounds) {
				continue
			}
			if gap < bestGap {
				best, bestGap = i, gap
			}
		}
		if best < 0 {
			paras = append(paras, Paragraph{Lines: []Line{line}, Bounds: line.Bounds})
			continue
		}
		paras[best].Lines = append(paras[best].Lines, line)
		paras[best].Bounds = paras[best].Bounds.Union(line.Bounds)
	}

	sort.SliceStable(paras, func(i, j int) bool {
		if paras[i].Bounds.Y1 != paras[j].Bounds.Y1 {
			return paras[i].Bounds.Y1 < paras[j].Bounds.Y1
		}
		return paras[i].Bounds.X1 < paras[j].Bounds.X1
	})
	for i := range paras {
		texts := make([]string, len(paras[i].Lines))
		for j, l := range paras[i].Lines {
			texts[j] = l.Text
		}
		paras[i].Text = strings.Join(texts, "\n")
		paras[i].Index = i
	}
	return paras
}

func (a *LineAssembler) sameColumn(para, line Bounds) bool {
	ov := horizontalOverlap(para, line)
	if ov <= 0 {
		return false
	}
	narrower := min(para.Width(), line.Width())
	return narrower > 0 && float64(ov)/float64(narrower) >= a.cfg.ColumnOverlap
}

func medianHeight(tokens []Token) float64 {
	heights := make([]int, len(tokens))
	for i, t := range tokens {
		heights[i] = t.Bounds.Height()
	}
	sort.Ints(heights)
	n := len(heights)
	if n%2 == 1 {
		return float64(heights[n/2])
	}
	return float64(heights[n/2-1]+heights[n/2]) / 2
}
