package game

// EventKind discriminates feed events.
type EventKind int

const (
	EventPositionUpdated EventKind = iota
	EventWorldState
	EventSessionChanged
	EventGameOver
)

// Event is one pushed feed notification. Exactly one payload field is set
// depending on Kind; EventGameOver carries none. EventPositionUpdated is an
// incremental update for a single player; EventWorldState is a full
// membership snapshot, the only event that may shrink the set of tracked
// players.
type Event struct {
	Kind    EventKind
	State   *PlayerState
	States  []*PlayerState
	Session *Session
}

// EventQueue carries feed events from the network reader to the frame loop.
// Push never blocks; when the buffer is full the event is dropped, which the
// reconciliation loop tolerates since every authoritative update supersedes
// the previous one. Drain preserves arrival order.
type EventQueue struct {
	ch chan Event
}

func NewEventQueue(capacity int) *EventQueue {
	if capacity <= 0 {
		capacity = 256
	}
	return &EventQueue{ch: make(chan Event, capacity)}
}

func (q *EventQueue) Push(ev Event) bool {
	select {
	case q.ch <- ev:
		return true
	default:
		return false
	}
}

// Drain returns every event queued since the last call, in arrival order.
// Called once per frame by the active scene.
func (q *EventQueue) Drain() []Event {
	var out []Event
	for {
		select {
		case ev := <-q.ch:
			out = append(out, ev)
		default:
			return out
		}
	}
}
