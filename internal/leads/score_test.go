package leads

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nexus-ai/nexus/internal/api"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    int
	}{
		{"empty floors at 1", "", 1},
		{"neutral short", "hello there", 1},
		{"buying intent", "I want to buy this", 3},
		{"intent plus positive", "I would love to order one", 5},
		{"negative pulls down but floors", "not interested, this is bad", 1},
		{
			"long message with intent and positive",
			"I am really excited about this product and would love to order two units for my shop, please send details",
			7,
		},
		{"case-insensitive matching", "PLEASE let me BUY", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(api.Lead{Message: tt.message}))
		})
	}
}

func TestLevelFor(t *testing.T) {
	assert.Equal(t, Cold, LevelFor(1))
	assert.Equal(t, Warm, LevelFor(3))
	assert.Equal(t, Warm, LevelFor(4))
	assert.Equal(t, Hot, LevelFor(5))
	assert.Equal(t, Hot, LevelFor(9))
}

func TestSortByScore(t *testing.T) {
	now := time.Now()
	ls := []api.Lead{
		{ID: 1, Message: "hello", CreatedAt: now},
		{ID: 2, Message: "I would love to order one", CreatedAt: now.Add(-time.Hour)},
		{ID: 3, Message: "hello", CreatedAt: now.Add(time.Hour)},
	}
	SortByScore(ls)
	assert.Equal(t, 2, ls[0].ID)
	// Equal scores: newest first.
	assert.Equal(t, 3, ls[1].ID)
	assert.Equal(t, 1, ls[2].ID)
}
