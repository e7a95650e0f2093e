// Package ocr recognizes words in a raster image.
//
// The rest of the module depends only on the Engine interface: a call that
// takes a decoded image and returns every recognized word with its pixel box
// and a confidence score in the range 0-100.
//
// # Engines
//
//   - Tesseract wraps the Tesseract library through gosseract/v2. It needs
//     cgo and an installed libtesseract with language data; binaries built
//     with CGO_ENABLED=0 get a stub whose Recognize returns ErrUnavailable.
//   - Static replays a fixed word list. It backs the tests and the CLI's
//     -words flag, which feeds OCR output recorded earlier (or produced by
//     another engine) through the pipeline.
//
// # Prerequisites
//
// Tesseract must be installed for the cgo build:
//   - Ubuntu/Debian: apt-get install libtesseract-dev tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// Info reports whether the engine can be used in the current binary.
package ocr
