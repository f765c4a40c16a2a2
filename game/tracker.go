package game

import (
	"sort"
	"sync"
)

// TrackedPlayer is the rendered state of one remote player: the head sits at
// the last authoritative position, the segments trail behind it.
type TrackedPlayer struct {
	ID       string
	Head     Vec2
	Segments []Vec2
	Score    int
}

// RemotePlayerTracker keeps visual state for every other player in the
// session. Positions are applied directly, never predicted. The map is
// touched by the frame loop and, in tests, asserted from other goroutines,
// so it sits behind a mutex.
type RemotePlayerTracker struct {
	cfg     Config
	localID string

	mu      sync.Mutex
	players map[string]*TrackedPlayer
}

func NewRemotePlayerTracker(cfg Config, localID string) *RemotePlayerTracker {
	return &RemotePlayerTracker{
		cfg:     cfg,
		localID: localID,
		players: make(map[string]*TrackedPlayer),
	}
}

// Apply moves one remote player to its reported position. Local-player states
// are ignored; those belong to the movement controller.
func (t *RemotePlayerTracker) Apply(state *PlayerState) {
	if state == nil || state.PlayerID == t.localID {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.apply(state)
}

func (t *RemotePlayerTracker) apply(state *PlayerState) {
	p, ok := t.players[state.PlayerID]
	if !ok {
		segs := make([]Vec2, t.cfg.TrailSegments)
		for i := range segs {
			segs[i] = state.Pos
		}
		t.players[state.PlayerID] = &TrackedPlayer{
			ID:       state.PlayerID,
			Head:     state.Pos,
			Segments: segs,
			Score:    state.Score,
		}
		return
	}

	p.Head = state.Pos
	p.Score = state.Score
	t.followTheLeader(p)
}

// followTheLeader drags each segment toward the one ahead of it, keeping a
// constant spacing once the gap exceeds it.
func (t *RemotePlayerTracker) followTheLeader(p *TrackedPlayer) {
	lead := p.Head
	for i := range p.Segments {
		gap := p.Segments[i].Sub(lead)
		if gap.Len() > t.cfg.TrailSpacing {
			p.Segments[i] = lead.Add(gap.Normalized().Scale(t.cfg.TrailSpacing))
		}
		lead = p.Segments[i]
	}
}

// ApplyBatch applies one full membership snapshot and prunes every tracked
// player absent from it. Membership is exactly the id set of the batch, so
// callers must pass complete rosters; incremental updates go through Apply.
func (t *RemotePlayerTracker) ApplyBatch(states []*PlayerState) {
	t.mu.Lock()
	defer t.mu.Unlock()

	present := make(map[string]bool, len(states))
	for _, s := range states {
		if s == nil {
			continue
		}
		present[s.PlayerID] = true
		if s.PlayerID != t.localID {
			t.apply(s)
		}
	}

	for id := range t.players {
		if !present[id] {
			delete(t.players, id)
		}
	}
}

// Get returns a copy of one tracked player's state.
func (t *RemotePlayerTracker) Get(playerID string) (TrackedPlayer, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.players[playerID]
	if !ok {
		return TrackedPlayer{}, false
	}
	cp := *p
	cp.Segments = append([]Vec2(nil), p.Segments...)
	return cp, true
}

// Count returns how many remote players are tracked.
func (t *RemotePlayerTracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.players)
}

// RankedPlayer is one row of the final standings.
type RankedPlayer struct {
	PlayerID  string
	Score     int
	Placement int
}

// FinalRanking sorts all known players plus the local one by descending
// score. The pre-sort order is ascending player id, so ties land in a
// deterministic stable order. Placement is 1-indexed; the second return is
// the local player's placement.
func (t *RemotePlayerTracker) FinalRanking(localID string, localScore int) ([]RankedPlayer, int) {
	t.mu.Lock()
	ranked := make([]RankedPlayer, 0, len(t.players)+1)
	for id, p := range t.players {
		ranked = append(ranked, RankedPlayer{PlayerID: id, Score: p.Score})
	}
	t.mu.Unlock()

	ranked = append(ranked, RankedPlayer{PlayerID: localID, Score: localScore})

	sort.Slice(ranked, func(i, j int) bool { return ranked[i].PlayerID < ranked[j].PlayerID })
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })

	placement := 0
	for i := range ranked {
		ranked[i].Placement = i + 1
		if ranked[i].PlayerID == localID {
			placement = i + 1
		}
	}
	return ranked, placement
}
