package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Calculator computes a content checksum.
type Calculator interface {
	// Calculate returns the checksum of content as lowercase hex.
	Calculate(content []byte) string

	// Algorithm names the hash, e.g. "sha256".
	Algorithm() string
}

// SHA256 implements Calculator using SHA-256.
// SHA256 is a zero-size type; pass it by value.
type SHA256 struct{}

// New creates a new SHA-256 based calculator.
func New() SHA256 {
	return SHA256{}
}

// Calculate computes SHA-256 of raw content.
func (SHA256) Calculate(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

// Algorithm returns "sha256".
func (SHA256) Algorithm() string {
	return "sha256"
}

// Label renders "algorithm:hex", the form used in logs and reports.
func Label(c Calculator, content []byte) string {
	return c.Algorithm() + ":" + c.Calculate(content)
}
