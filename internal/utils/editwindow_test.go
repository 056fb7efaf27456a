package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEditDeadline(t *testing.T) {
	from := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, from.Add(2*time.Hour), EditDeadline(from, 2*time.Hour))
	// Zero and negative windows are valid and just produce a closed window.
	assert.Equal(t, from, EditDeadline(from, 0))
	assert.Equal(t, from.Add(-time.Hour), EditDeadline(from, -time.Hour))
}

func TestCanEditAt(t *testing.T) {
	now := time.Now()

	assert.False(t, CanEditAt(nil, now))

	future := now.Add(time.Hour)
	assert.True(t, CanEditAt(&future, now))

	past := now.Add(-time.Hour)
	assert.False(t, CanEditAt(&past, now))

	assert.False(t, CanEditAt(&now, now))
}

func TestEditWindowScenario(t *testing.T) {
	placedAt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	deadline := EditDeadline(placedAt, 2*time.Hour)

	assert.True(t, CanEditAt(&deadline, placedAt.Add(time.Hour)))
	assert.False(t, CanEditAt(&deadline, placedAt.Add(3*time.Hour)))
}
