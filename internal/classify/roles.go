package classify

import (
	"errors"

	"github.com/ironsheep/votecards/internal/detection"
)

// ErrLayoutAmbiguous marks a zone or title decision that was resolved by a
// tie-break. It is reported as a warning, never returned as a failure.
var ErrLayoutAmbiguous = errors.New("layout ambiguous")

// Role is the semantic role of a region.
type Role string

const (
	RoleTitle        Role = "title"
	RoleDescription  Role = "description"
	RolePro          Role = "pro"
	RoleCon          Role = "con"
	RoleHeader       Role = "header"
	RoleStateLabel   Role = "state_label"
	RoleUnclassified Role = "unclassified"
)

// Roles lists every role in classification order.
var Roles = []Role{
	RoleStateLabel,
	RoleHeader,
	RoleTitle,
	RoleDescription,
	RolePro,
	RoleCon,
	RoleUnclassified,
}

// Valid reports whether r is one of the fixed roles.
func (r Role) Valid() bool {
	for _, v := range Roles {
		if r == v {
			return true
		}
	}
	return false
}

// Region is a classified block of text.
type Region struct {
	Role   Role             `json:"role"`
	Bounds detection.Bounds `json:"bounds"`

	// Text is the display text: marker words are removed for pro and con,
	// lines are joined with "\n".
	Text string `json:"text"`

	// Code is the postal code of a state_label; Count is the small integer
	// printed after it, or zero.
	Code  string `json:"code,omitempty"`
	Count int    `json:"count,omitempty"`

	// Items holds the bullet entries of a pro or con block.
	Items []string `json:"items,omitempty"`

	Tokens []detection.Token `json:"tokens"`

	// Paragraph is the index of the source paragraph.
	Paragraph int `json:"paragraph"`
}

// Result is the output of Classify.
type Result struct {
	Regions  []Region `json:"regions"`
	Warnings []error  `json:"-"`
}

// ByRole returns the regions with the given role in reading order.
func (r *Result) ByRole(role Role) []Region {
	var out []Region
	for _, reg := range r.Regions {
		if reg.Role == role {
			out = append(out, reg)
		}
	}
	return out
}

// Counts returns the number of regions per role.
func (r *Result) Counts() map[Role]int {
	counts := make(map[Role]int, len(Roles))
	for _, reg := range r.Regions {
		counts[reg.Role]++
	}
	return counts
}
