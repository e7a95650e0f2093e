// Package detection turns OCR output into positioned text structure.
//
// It covers the first two pipeline stages:
//
//   - TextDetector runs an ocr.Engine over a (optionally preprocessed) copy of
//     the source image and returns Tokens: recognized words above the
//     confidence floor with boxes clamped to the image.
//   - LineAssembler groups Tokens into Lines and Lines into Paragraphs using
//     geometry only. It knows nothing about charts or vote results.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//   - Bounding boxes use inclusive top-left and exclusive bottom-right
//
// # Thresholds
//
// Grouping thresholds are proportional to the median token height so that the
// same configuration works for small and large renders of a chart. Each one
// can be pinned to a pixel value through config.Layout.
package detection
