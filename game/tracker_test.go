package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func remoteState(id string, x, y float64, score int) *PlayerState {
	return &PlayerState{PlayerID: id, SessionID: "s1", Pos: Vec2{X: x, Y: y}, Score: score}
}

func TestTrackerCreatesTrailAnchoredAtFirstPosition(t *testing.T) {
	tr := NewRemotePlayerTracker(DefaultConfig(), "local")

	tr.Apply(remoteState("remote", 200, 300, 0))

	p, ok := tr.Get("remote")
	require.True(t, ok)
	assert.Equal(t, Vec2{X: 200, Y: 300}, p.Head)
	require.Len(t, p.Segments, DefaultConfig().TrailSegments)
	for _, seg := range p.Segments {
		assert.Equal(t, Vec2{X: 200, Y: 300}, seg)
	}
}

func TestTrackerAppliesPositionsDirectly(t *testing.T) {
	tr := NewRemotePlayerTracker(DefaultConfig(), "local")

	tr.Apply(remoteState("remote", 0, 0, 0))
	tr.Apply(remoteState("remote", 100, 0, 3))

	p, ok := tr.Get("remote")
	require.True(t, ok)
	// The head teleports to the reported position; no interpolation.
	assert.Equal(t, Vec2{X: 100, Y: 0}, p.Head)
	assert.Equal(t, 3, p.Score)
}

func TestTrackerTrailKeepsConstantSpacing(t *testing.T) {
	cfg := DefaultConfig()
	tr := NewRemotePlayerTracker(cfg, "local")

	tr.Apply(remoteState("remote", 0, 0, 0))
	tr.Apply(remoteState("remote", 100, 0, 0))

	p, ok := tr.Get("remote")
	require.True(t, ok)

	lead := p.Head
	for _, seg := range p.Segments {
		assert.InDelta(t, cfg.TrailSpacing, lead.Sub(seg).Len(), 1e-9)
		lead = seg
	}
}

func TestTrackerIgnoresLocalPlayer(t *testing.T) {
	tr := NewRemotePlayerTracker(DefaultConfig(), "local")

	tr.Apply(remoteState("local", 10, 10, 0))

	assert.Equal(t, 0, tr.Count())
}

func TestTrackerPrunesPlayersAbsentFromBatch(t *testing.T) {
	tr := NewRemotePlayerTracker(DefaultConfig(), "local")

	tr.ApplyBatch([]*PlayerState{
		remoteState("a", 10, 10, 0),
		remoteState("b", 20, 20, 0),
	})
	assert.Equal(t, 2, tr.Count())

	tr.ApplyBatch([]*PlayerState{
		remoteState("a", 15, 10, 1),
	})

	assert.Equal(t, 1, tr.Count())
	_, ok := tr.Get("b")
	assert.False(t, ok)
}

func TestFinalRankingSortsByDescendingScore(t *testing.T) {
	tr := NewRemotePlayerTracker(DefaultConfig(), "local")

	tr.Apply(remoteState("a", 0, 0, 30))
	tr.Apply(remoteState("b", 0, 0, 50))

	ranking, placement := tr.FinalRanking("local", 10)

	require.Len(t, ranking, 3)
	assert.Equal(t, []int{50, 30, 10}, []int{ranking[0].Score, ranking[1].Score, ranking[2].Score})
	assert.Equal(t, "b", ranking[0].PlayerID)
	assert.Equal(t, 1, ranking[0].Placement)
	assert.Equal(t, 3, placement)
}

func TestFinalRankingTiesAreStableAndDeterministic(t *testing.T) {
	for i := 0; i < 10; i++ {
		tr := NewRemotePlayerTracker(DefaultConfig(), "local")
		tr.Apply(remoteState("zeta", 0, 0, 50))
		tr.Apply(remoteState("alpha", 0, 0, 50))

		ranking, placement := tr.FinalRanking("local", 50)

		require.Len(t, ranking, 3)
		// Ties fall back to ascending player id.
		assert.Equal(t, "alpha", ranking[0].PlayerID)
		assert.Equal(t, "local", ranking[1].PlayerID)
		assert.Equal(t, "zeta", ranking[2].PlayerID)
		assert.Equal(t, 2, placement)
	}
}
