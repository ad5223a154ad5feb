package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCooldownsExpire(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewCooldowns(time.Minute)
	c.now = func() time.Time { return now }

	assert.False(t, c.Active("openai"))
	c.Mark("openai")
	c.Mark("gemini")
	assert.True(t, c.Active("openai"))
	assert.Equal(t, []string{"gemini", "openai"}, c.Snapshot())

	now = now.Add(59 * time.Second)
	assert.True(t, c.Active("openai"))

	now = now.Add(time.Second)
	assert.False(t, c.Active("openai"))
	assert.Empty(t, c.Snapshot())
}

func TestCooldownsClear(t *testing.T) {
	c := NewCooldowns(time.Hour)
	c.Mark("anthropic")
	c.Clear("anthropic")
	assert.False(t, c.Active("anthropic"))
	assert.NotNil(t, c.Snapshot())
}

func TestCooldownsDisabled(t *testing.T) {
	c := NewCooldowns(0)
	c.Mark("openai")
	assert.False(t, c.Active("openai"))
}
