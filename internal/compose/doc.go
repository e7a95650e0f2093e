// Package compose turns classified regions into the three output cards.
//
// BuildPlan decides which regions feed which artifact and how they are drawn.
// A Compositor then renders each plan entry:
//
//   - title and pros_cons are text cards drawn on a fresh canvas, word-wrapped
//     and held to a word budget.
//   - visual is a copy of the source image with the state labels and grid
//     headers erased and redrawn larger and bold in place.
//
// A region that cannot be drawn is recorded on its artifact and skipped.
package compose
