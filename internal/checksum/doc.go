// Package checksum fingerprints downloaded dataset files.
//
// The digest is logged and carried into the run report so two runs can be
// compared without keeping the source files around.
//
// SHA256 is safe for concurrent use by multiple goroutines.
package checksum
