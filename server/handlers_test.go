package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewReshareAssignsUniqueId(t *testing.T) {
	first := newReshare("alice", "rec-1", "must try the hand rolls")
	second := newReshare("alice", "rec-1", "must try the hand rolls")

	assert.NotEmpty(t, first.Id)
	assert.NotEqual(t, first.Id, second.Id)
	assert.Equal(t, "alice", first.ResharerID)
	assert.Equal(t, "rec-1", first.RecommendationID)
	assert.Equal(t, "must try the hand rolls", first.Comment)
}
