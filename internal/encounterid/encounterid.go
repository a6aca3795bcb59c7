package encounterid

import (
	"encoding/hex"
	"regexp"

	"github.com/google/uuid"
)

const (
	// Generated ids are 12 lowercase hex characters (48 random bits).
	generatedLength = 12

	maxCustomLength = 30
)

var (
	customPattern    = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	generatedPattern = regexp.MustCompile(`^[0-9a-f]{12}$`)
)

// Generate returns an opaque id for rooms created implicitly on first join.
func Generate() string {
	u := uuid.New()
	return hex.EncodeToString(u[:generatedLength/2])
}

// ValidCustom reports whether id is acceptable as a human-chosen room id:
// non-empty, bounded length, URL-safe characters, and not shaped like a
// generated id (so a claim can never collide with the implicit namespace).
func ValidCustom(id string) bool {
	if id == "" || len(id) > maxCustomLength {
		return false
	}
	if !customPattern.MatchString(id) {
		return false
	}
	if generatedPattern.MatchString(id) {
		return false
	}
	return true
}
