// Package objectid generates and validates document object identifiers: 16
// random bytes rendered as uppercase 8-4-4-4-12 hex groups, e.g.
// "5D1A7C38-1B44-4A0E-8C2F-0C1C1E1A2B3C".
package objectid

import (
	"crypto/rand"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Reader is the entropy source. Tests may replace it.
var Reader io.Reader = rand.Reader

var pattern = regexp.MustCompile(`^[0-9A-F]{8}-[0-9A-F]{4}-[0-9A-F]{4}-[0-9A-F]{4}-[0-9A-F]{12}$`)

// New returns a fresh identifier.
func New() (string, error) {
	var b uuid.UUID
	if _, err := io.ReadFull(Reader, b[:]); err != nil {
		return "", fmt.Errorf("objectid: read entropy: %w", err)
	}
	return strings.ToUpper(b.String()), nil
}

// MustNew is New that panics when the entropy source fails.
func MustNew() string {
	id, err := New()
	if err != nil {
		panic(err)
	}
	return id
}

// Valid reports whether id has the identifier layout and is uppercase.
func Valid(id string) bool {
	if !pattern.MatchString(id) {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}
