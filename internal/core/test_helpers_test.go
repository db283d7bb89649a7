package core

import "testing"

// tryEvent pops one event without blocking.
func tryEvent(ch <-chan *Event) (*Event, bool) {
	select {
	case ev := <-ch:
		return ev, true
	default:
		return nil, false
	}
}

// lastEvent drains the queue and returns the newest event of the given
// kind, failing the test if none arrived.
func lastEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	var last *Event
	for {
		ev, ok := tryEvent(ch)
		if !ok {
			break
		}
		if ev.Kind == kind {
			last = ev
		}
	}
	if last == nil {
		t.Fatalf("expected event kind %v not received", kind)
	}
	return last
}
