package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsOnline(t *testing.T) {
	now := time.Now()

	assert.False(t, IsOnline(nil, now), "never-seen user is offline")

	recent := now.Add(-299 * time.Second)
	assert.True(t, IsOnline(&recent, now))

	boundary := now.Add(-PresenceWindow)
	assert.False(t, IsOnline(&boundary, now), "window is strict")

	stale := now.Add(-time.Hour)
	assert.False(t, IsOnline(&stale, now))
}
