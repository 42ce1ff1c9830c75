package codes

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^STU[0-9A-F]{8}$`)

	for i := 0; i < 100; i++ {
		code := Generate(StudentPrefix, DefaultLength)
		require.True(t, pattern.MatchString(code), "unexpected code %q", code)
	}

	assert.Regexp(t, `^TCH[0-9A-F]{8}$`, Generate(TeacherPrefix, DefaultLength))
}

func TestGenerateIsRandom(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		code := Generate(StudentPrefix, DefaultLength)
		assert.False(t, seen[code], "duplicate code %q", code)
		seen[code] = true
	}
}

func TestGenerateClampsLength(t *testing.T) {
	assert.Len(t, Generate(StudentPrefix, 0), 3+32)
	assert.Len(t, Generate(StudentPrefix, 100), 3+32)
	assert.Len(t, Generate(StudentPrefix, 4), 3+4)
}
