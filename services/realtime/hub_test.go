package realtime

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCleaner struct {
	mu       sync.Mutex
	sessions []string
}

func (f *fakeCleaner) CleanupSession(sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions = append(f.sessions, sessionID)
	return nil
}

func (f *fakeCleaner) cleaned() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sessions...)
}

func TestEnqueueAfterCloseIsDropped(t *testing.T) {
	conn := NewClientConn(nil)
	conn.Enqueue([]byte(`{"type":"session"}`))

	conn.Close()
	conn.Enqueue([]byte(`{"type":"food"}`))
	conn.Close()

	// Only the pre-close message went out; the late one was dropped.
	events := drainConn(t, conn)
	require.Len(t, events, 1)
	assert.Equal(t, EventSession, events[0].Type)
}

func TestHubReapsEndedRoomAfterLastLeave(t *testing.T) {
	store := newMemStore()
	session := testSession()
	session.Ended = true
	store.sessions["s1"] = session
	seedPlayer(store, 540, 540)

	cleaner := &fakeCleaner{}
	h := NewHub(store, &fakeFinisher{}, cleaner)

	r := h.getOrCreateRoom("s1")
	conn := NewClientConn(nil)
	r.joinCh <- joinRequest{playerID: "p1", conn: conn}
	r.leaveCh <- "p1"

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && len(cleaner.cleaned()) == 0 {
		time.Sleep(5 * time.Millisecond)
	}

	assert.Equal(t, []string{"s1"}, cleaner.cleaned())
	h.mu.Lock()
	assert.Empty(t, h.rooms)
	h.mu.Unlock()
}
