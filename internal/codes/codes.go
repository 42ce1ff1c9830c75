// Package codes generates the short, human-shareable identifiers assigned to
// student and teacher profiles.
package codes

import (
	"strings"

	"github.com/google/uuid"
)

// Prefixes for the profile code families.
const (
	StudentPrefix = "STU"
	TeacherPrefix = "TCH"
)

// DefaultLength is the number of random characters after the prefix.
const DefaultLength = 8

// Generate produces prefix + length uppercase alphanumeric characters derived
// from a random UUID. Collision probability is astronomically low but not
// zero; the store's unique constraint is the authority and callers retry on
// collision.
func Generate(prefix string, length int) string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	if length <= 0 || length > len(id) {
		length = len(id)
	}
	return prefix + id[:length]
}
