package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSoftDeleteRoundTrip(t *testing.T) {
	var sd SoftDelete
	assert.False(t, sd.IsDeleted)
	assert.Nil(t, sd.DeletedAt)

	now := time.Now()
	sd.MarkDeleted(now)
	assert.True(t, sd.IsDeleted)
	require.NotNil(t, sd.DeletedAt)
	assert.True(t, sd.DeletedAt.Equal(now))

	sd.Restore()
	assert.False(t, sd.IsDeleted)
	assert.Nil(t, sd.DeletedAt)
}
