// Package classify assigns a semantic role to each block of chart text.
//
// The classifier combines position and lexical cues. The image is split into
// horizontal zones given as fractions of its height: a title zone at the top,
// a grid zone in the middle and a caption zone below the grid. Each unit of
// text (a paragraph, one state code or one other line split out of a
// paragraph that holds grid rows, or one marker-led block of a caption
// paragraph) receives the first role whose rule matches:
//
//  1. state_label: a US postal code, optionally followed by a small count,
//     centred strictly inside the grid zone.
//  2. header: a grid-zone text matching the header pattern, or a short text
//     in the grid zone's top row that is not a state code.
//  3. title: the largest unit centred in the title zone.
//  4. description: any other unit centred above the grid zone.
//  5. pro / con: caption-zone units under a pro or con marker, up to the next
//     marker.
//  6. unclassified: everything else.
//
// Every unit gets exactly one role. Charts outside the title, grid, caption
// layout degrade to unclassified content; nothing is dropped.
package classify

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/votecards/internal/config"
	"github.com/ironsheep/votecards/internal/detection"
)

// Classifier holds the compiled rules.
type Classifier struct {
	zones          config.Zones
	maxHeaderWords int
	states         map[string]bool
	statePattern   *regexp.Regexp
	countPattern   *regexp.Regexp
	proMarker      *regexp.Regexp
	conMarker      *regexp.Regexp
	bullet         *regexp.Regexp
	headerPattern  *regexp.Regexp
	log            logrus.FieldLogger
}

// New compiles the patterns. A nil logger uses the logrus standard logger.
func New(zones config.Zones, patterns config.Patterns, log logrus.FieldLogger) (*Classifier, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	c := &Classifier{
		zones:          zones,
		maxHeaderWords: patterns.MaxHeaderWords,
		states:         make(map[string]bool, len(patterns.StateCodes)),
		countPattern:   regexp.MustCompile(`^\(?(\d{1,3})\)?$`),
		log:            log,
	}
	for _, code := range patterns.StateCodes {
		c.states[strings.ToUpper(code)] = true
	}

	var err error
	if c.statePattern, err = regexp.Compile(patterns.StatePattern); err != nil {
		return nil, fmt.Errorf("state pattern: %w", err)
	}
	if c.proMarker, err = regexp.Compile(patterns.ProMarker); err != nil {
		return nil, fmt.Errorf("pro marker: %w", err)
	}
	if c.conMarker, err = regexp.Compile(patterns.ConMarker); err != nil {
		return nil, fmt.Errorf("con marker: %w", err)
	}
	if c.bullet, err = regexp.Compile(patterns.Bullet); err != nil {
		return nil, fmt.Errorf("bullet pattern: %w", err)
	}
	if patterns.HeaderPattern != "" {
		if c.headerPattern, err = regexp.Compile(patterns.HeaderPattern); err != nil {
			return nil, fmt.Errorf("header pattern: %w", err)
		}
	}
	return c, nil
}

// unit is the atom that receives a role.
type unit struct {
	paragraph int
	lines     []string
	tokens    []detection.Token
	bounds    detection.Bounds

	// residue holds the tokens of a grid line that are not state codes.
	residue bool
}

func (u *unit) text() string { return strings.Join(u.lines, "\n") }

// frac is the unit's vertical centre as a fraction of image height.
func (u *unit) frac(height int) float64 {
	return u.bounds.CenterY() / float64(height)
}

// Classify assigns a role to every token of paragraphs. width and height are
// the source image dimensions.
func (c *Classifier) Classify(paragraphs []detection.Paragraph, width, height int) *Result {
	res := &Result{}
	if height <= 0 || width <= 0 {
		return res
	}

	var units []*unit
	for _, p := range paragraphs {
		units = append(units, c.split(p, height)...)
	}
	sort.SliceStable(units, func(i, j int) bool {
		if units[i].bounds.Y1 != units[j].bounds.Y1 {
			return units[i].bounds.Y1 < units[j].bounds.Y1
		}
		return units[i].bounds.X1 < units[j].bounds.X1
	})

	c.checkStraddle(units, height, res)

	roles := make([]Role, len(units))
	regions := make([]Region, len(units))
	for i, u := range units {
		regions[i] = Region{
			Bounds:    u.bounds,
			Text:      u.text(),
			Tokens:    u.tokens,
			Paragraph: u.paragraph,
		}
	}

	// 1. state labels
	for i, u := range units {
		if code, count, ok := c.stateCode(u.text()); ok && c.inGrid(u, height) {
			roles[i] = RoleStateLabel
			regions[i].Code, regions[i].Count = code, count
		}
	}

	// 2. headers: the top row is measured over every grid unit
	topRow := -1
	for _, u := range units {
		if c.inGrid(u, height) && (topRow < 0 || u.bounds.Y1 < topRow) {
			topRow = u.bounds.Y1
		}
	}
	rowLimit := float64(topRow) + c.zones.HeaderRow*float64(height)
	for i, u := range units {
		if roles[i] != "" || !c.inGrid(u, height) {
			continue
		}
		if _, _, isState := c.stateCode(u.text()); isState {
			continue
		}
		if c.isHeaderText(u.text()) {
			roles[i] = RoleHeader
			continue
		}
		if !u.residue && len(strings.Fields(u.text())) <= c.maxHeaderWords && float64(u.bounds.Y1) <= rowLimit {
			roles[i] = RoleHeader
		}
	}

	// 3. title
	if t := c.pickTitle(units, roles, height, res); t >= 0 {
		roles[t] = RoleTitle
	}

	// 4. description
	for i, u := range units {
		if roles[i] == "" && u.frac(height) < c.zones.GridTop {
			roles[i] = RoleDescription
		}
	}

	// 5. pro / con, in reading order of the caption zone
	var current Role
	for i, u := range units {
		if roles[i] != "" || u.frac(height) < c.zones.GridBottom {
			continue
		}
		role, items := c.caption(u, current)
		if role == "" {
			continue
		}
		current = role
		roles[i] = role
		regions[i].Items = items
		regions[i].Text = strings.Join(items, "\n")
	}

	// 6. the rest
	for i := range roles {
		if roles[i] == "" {
			roles[i] = RoleUnclassified
		}
		regions[i].Role = roles[i]
	}
	res.Regions = regions

	for _, w := range res.Warnings {
		c.log.WithError(w).Debug("classification tie-break applied")
	}
	return res
}

// split turns a paragraph into units.
func (c *Classifier) split(p detection.Paragraph, height int) []*unit {
	if units, ok := c.splitGrid(p, height); ok {
		return units
	}

	whole := &unit{paragraph: p.Index, bounds: p.Bounds}
	for _, l := range p.Lines {
		whole.lines = append(whole.lines, l.Text)
		whole.tokens = append(whole.tokens, l.Tokens...)
	}
	if whole.frac(height) < c.zones.GridBottom || len(p.Lines) < 2 {
		return []*unit{whole}
	}

	// caption paragraphs break before every marker line
	var units []*unit
	var cur *unit
	for _, l := range p.Lines {
		if cur == nil || c.isMarker(l.Text) {
			cur = &unit{paragraph: p.Index, bounds: l.Bounds}
			units = append(units, cur)
		}
		cur.lines = append(cur.lines, l.Text)
		cur.tokens = append(cur.tokens, l.Tokens...)
		cur.bounds = cur.bounds.Union(l.Bounds)
	}
	return units
}

// splitGrid breaks up a paragraph with at least one grid line, a line centred
// in the grid zone that holds a state code. Each code, with a count that
// directly follows it, becomes its own unit. The other tokens of a grid line
// are kept together as one residue unit, and every other line of the
// paragraph stays whole.
func (c *Classifier) splitGrid(p detection.Paragraph, height int) ([]*unit, bool) {
	grid := make([]bool, len(p.Lines))
	found := false
	for i, l := range p.Lines {
		grid[i] = c.isGridLine(l, height)
		found = found || grid[i]
	}
	if !found {
		return nil, false
	}

	var units []*unit
	for i, l := range p.Lines {
		if !grid[i] {
			units = append(units, &unit{paragraph: p.Index, lines: []string{l.Text},
				tokens: append([]detection.Token(nil), l.Tokens...), bounds: l.Bounds})
			continue
		}
		var cur, residue *unit
		for _, t := range l.Tokens {
			switch {
			case c.states[t.Text]:
				cur = &unit{paragraph: p.Index, lines: []string{t.Text}, tokens: []detection.Token{t}, bounds: t.Bounds}
				units = append(units, cur)
			case cur != nil && len(cur.tokens) == 1 && c.countPattern.MatchString(t.Text):
				cur.lines[0] += " " + t.Text
				cur.tokens = append(cur.tokens, t)
				cur.bounds = cur.bounds.Union(t.Bounds)
			default:
				cur = nil
				if residue == nil {
					residue = &unit{paragraph: p.Index, lines: []string{t.Text}, bounds: t.Bounds, residue: true}
					units = append(units, residue)
				} else {
					residue.lines[0] += " " + t.Text
					residue.bounds = residue.bounds.Union(t.Bounds)
				}
				residue.tokens = append(residue.tokens, t)
			}
		}
	}
	return units, true
}

// isGridLine reports whether l is a row of state codes inside the grid zone.
// Lines matching the header pattern never are.
func (c *Classifier) isGridLine(l detection.Line, height int) bool {
	f := l.Bounds.CenterY() / float64(height)
	if f <= c.zones.GridTop || f >= c.zones.GridBottom || c.isHeaderText(l.Text) {
		return false
	}
	for _, t := range l.Tokens {
		if c.states[t.Text] {
			return true
		}
	}
	return false
}

func (c *Classifier) isHeaderText(text string) bool {
	return c.headerPattern != nil && c.headerPattern.MatchString(strings.TrimSpace(text))
}

func (c *Classifier) isMarker(line string) bool {
	return c.proMarker.MatchString(line) || c.conMarker.MatchString(line)
}

// stateCode matches text against the state pattern and the state set.
func (c *Classifier) stateCode(text string) (code string, count int, ok bool) {
	m := c.statePattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil || len(m) < 2 || !c.states[m[1]] {
		return "", 0, false
	}
	if len(m) > 2 && m[2] != "" {
		count, _ = strconv.Atoi(m[2])
	}
	return m[1], count, true
}

func (c *Classifier) inGrid(u *unit, height int) bool {
	f := u.frac(height)
	return f > c.zones.GridTop && f < c.zones.GridBottom
}

// pickTitle returns the index of the largest unassigned unit centred in the
// title zone, or -1. Equal areas go to the earlier unit in reading order.
func (c *Classifier) pickTitle(units []*unit, roles []Role, height int, res *Result) int {
	best, second := -1, -1
	for i, u := range units {
		if roles[i] != "" || u.frac(height) >= c.zones.TitleBottom {
			continue
		}
		switch {
		case best < 0 || u.bounds.Area() > units[best].bounds.Area():
			best, second = i, best
		case second < 0 || u.bounds.Area() > units[second].bounds.Area():
			second = i
		}
	}
	if best >= 0 && second >= 0 {
		a, b := float64(units[best].bounds.Area()), float64(units[second].bounds.Area())
		if a-b <= c.zones.TitleTie*a {
			res.Warnings = append(res.Warnings, fmt.Errorf("%w: title candidates %q and %q differ by %.0f%% in area",
				ErrLayoutAmbiguous, units[best].text(), units[second].text(), 100*(a-b)/a))
		}
	}
	return best
}

// caption resolves a caption unit given the block it follows. It returns an
// empty role when no marker has been seen yet.
func (c *Classifier) caption(u *unit, current Role) (Role, []string) {
	role := current
	lines := append([]string(nil), u.lines...)
	if loc := c.proMarker.FindStringIndex(lines[0]); loc != nil {
		role, lines[0] = RolePro, lines[0][loc[1]:]
	} else if loc := c.conMarker.FindStringIndex(lines[0]); loc != nil {
		role, lines[0] = RoleCon, lines[0][loc[1]:]
	}
	if role == "" {
		return "", nil
	}

	// bullet lines open items; other lines continue the previous item
	var items []string
	for _, l := range lines {
		bulleted := c.bullet.MatchString(l)
		text := strings.TrimSpace(c.bullet.ReplaceAllString(l, ""))
		if text == "" {
			continue
		}
		if bulleted || len(items) == 0 {
			items = append(items, text)
			continue
		}
		items[len(items)-1] += " " + text
	}
	return role, items
}

// checkStraddle warns about units whose box crosses the grid boundaries.
func (c *Classifier) checkStraddle(units []*unit, height int, res *Result) {
	for _, u := range units {
		for _, edge := range []float64{c.zones.GridTop, c.zones.GridBottom} {
			y := edge * float64(height)
			if float64(u.bounds.Y1) < y && float64(u.bounds.Y2) > y {
				res.Warnings = append(res.Warnings, fmt.Errorf("%w: %q crosses the zone boundary at y=%.0f",
					ErrLayoutAmbiguous, u.text(), y))
			}
		}
	}
}
