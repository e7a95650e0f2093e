// Package imaging provides the pixel-level primitives of the card renderer.
//
// It covers loading source charts, sampling background and text colours,
// font faces, measured word wrapping and the in-place redraw used for the
// visual card. All operations work with standard Go image.Image types and use
// a coordinate system where (0,0) is at the top-left corner, X increases
// rightward, and Y increases downward.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For rectangles, Min is inclusive and Max is exclusive
//
// # Redraw
//
// Redraw erases a text box with a colour sampled from the ring of pixels
// around it and draws new text centred on the box centroid. It never writes
// to its source image and reports the exact rectangle it touched, so callers
// can verify that every other pixel is unchanged.
//
// Annotate outlines labelled boxes on a copy of an image for inspecting
// classification results.
//
// # Thread Safety
//
// ImageCache and FontSet are safe for concurrent use. font.Face values are
// not; Face returns a fresh face for every call.
package imaging
