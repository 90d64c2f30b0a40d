package registry

import "time"

// EventType represents the type of unit event.
type EventType int

const (
	EventTypeRegistered EventType = iota
	EventTypeLoading
	EventTypeReady
	EventTypeLoadFailed
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventTypeRegistered:
		return "registered"
	case EventTypeLoading:
		return "loading"
	case EventTypeReady:
		return "ready"
	case EventTypeLoadFailed:
		return "load_failed"
	default:
		return "unknown"
	}
}

// UnitEvent represents a change in a view unit's lifecycle. Consumers that
// rendered an empty placeholder subscribe to learn when the realized value
// is available; unsubscribing before the event arrives cancels the update.
type UnitEvent struct {
	Type      EventType
	Unit      string
	Timestamp time.Time
}

// Watch returns a channel that receives unit events.
func (r *UnitRegistry) Watch() <-chan UnitEvent {
	r.mu.Lock()
	defer r.mu.Unlock()

	ch := make(chan UnitEvent, 64)
	r.watchers = append(r.watchers, ch)
	return ch
}

// UnWatch removes a watcher channel and closes it. Events already in flight
// for the channel are dropped with it.
func (r *UnitRegistry) UnWatch(ch <-chan UnitEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, watcher := range r.watchers {
		if watcher == ch {
			close(watcher)
			r.watchers = append(r.watchers[:i], r.watchers[i+1:]...)
			break
		}
	}
}

func (r *UnitRegistry) notify(event UnitEvent) {
	event.Timestamp = time.Now()

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, watcher := range r.watchers {
		select {
		case watcher <- event:
		default:
			// Skip if channel is full
		}
	}
}
