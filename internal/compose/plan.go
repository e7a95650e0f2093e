package compose

import (
	"github.com/ironsheep/votecards/internal/classify"
	"github.com/ironsheep/votecards/internal/config"
	"github.com/ironsheep/votecards/internal/detection"
)

// Artifact names.
const (
	ArtifactTitle    = "title"
	ArtifactProsCons = "pros_cons"
	ArtifactVisual   = "visual"
)

// ArtifactNames lists the artifacts in output order.
var ArtifactNames = []string{ArtifactTitle, ArtifactProsCons, ArtifactVisual}

// Mode says how an artifact is produced.
type Mode string

const (
	ModeCanvas  Mode = "canvas"
	ModeOverlay Mode = "overlay"
)

// Slot is the place a step's text takes on a canvas card.
type Slot string

const (
	SlotTitle       Slot = "title"
	SlotDescription Slot = "description"
	SlotPro         Slot = "pro"
	SlotCon         Slot = "con"
	SlotInPlace     Slot = "in_place"
)

// Step is the render instruction for one region.
type Step struct {
	// Region indexes the regions slice the plan was built from.
	Region int  `json:"region"`
	Slot   Slot `json:"slot"`

	// FontScale multiplies the body size on canvas cards and the source
	// box height for in-place redraws.
	FontScale float64 `json:"font_scale"`
	Bold      bool    `json:"bold"`

	InPlace bool             `json:"in_place"`
	Target  detection.Bounds `json:"target"`
}

// PlanEntry describes one artifact.
type PlanEntry struct {
	Artifact string `json:"artifact"`
	Mode     Mode   `json:"mode"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
	Steps    []Step `json:"steps"`
}

// RenderPlan has one entry per artifact, in ArtifactNames order.
type RenderPlan struct {
	Entries []PlanEntry `json:"entries"`
}

// Entry returns the entry for the named artifact.
func (p RenderPlan) Entry(name string) (PlanEntry, bool) {
	for _, e := range p.Entries {
		if e.Artifact == name {
			return e, true
		}
	}
	return PlanEntry{}, false
}

// BuildPlan assigns regions to artifacts. Every artifact gets an entry even
// when no region feeds it, so a degraded run still produces all three cards.
func BuildPlan(regions []classify.Region, cfg config.Render) RenderPlan {
	title := PlanEntry{Artifact: ArtifactTitle, Mode: ModeCanvas, Width: cfg.Width, Height: cfg.Height}
	prosCons := PlanEntry{Artifact: ArtifactProsCons, Mode: ModeCanvas, Width: cfg.Width, Height: cfg.Height}
	visual := PlanEntry{Artifact: ArtifactVisual, Mode: ModeOverlay}

	titleScale := cfg.TitleSize / cfg.BodySize
	canvas := func(e *PlanEntry, role classify.Role, slot Slot, scale float64, bold bool) {
		for i, r := range regions {
			if r.Role == role {
				e.Steps = append(e.Steps, Step{Region: i, Slot: slot, FontScale: scale, Bold: bold})
			}
		}
	}
	canvas(&title, classify.RoleTitle, SlotTitle, titleScale, true)
	canvas(&title, classify.RoleDescription, SlotDescription, 1, false)
	canvas(&prosCons, classify.RolePro, SlotPro, 1, false)
	canvas(&prosCons, classify.RoleCon, SlotCon, 1, false)

	for i, r := range regions {
		var scale float64
		switch r.Role {
		case classify.RoleStateLabel:
			scale = cfg.StateScale
		case classify.RoleHeader:
			scale = cfg.HeaderScale
		default:
			continue
		}
		visual.Steps = append(visual.Steps, Step{
			Region:    i,
			Slot:      SlotInPlace,
			FontScale: scale,
			Bold:      cfg.Bold,
			InPlace:   true,
			Target:    r.Bounds,
		})
	}

	return RenderPlan{Entries: []PlanEntry{title, prosCons, visual}}
}
