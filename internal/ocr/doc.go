// Package ocr models per-character recognition state for human review of
// scanned matrix and catalog numbers.
//
// A Session wraps the recognized string as an ordered sequence of
// CharacterConfidence entries, seeds plausible alternatives from a table of
// OCR confusables (0/O/Q/D and friends), and records corrections in an
// append-once-per-position log. Sessions are pure in-memory values: the scan
// workflow owns them and persists their assembled output separately.
package ocr
