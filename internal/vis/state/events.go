package state

import "sync"

// Severity grades log entries for colouring.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarn
	SeverityError
)

// Event is one line of the planner log, tied to the commit it followed.
type Event struct {
	Step     int // number of commits when the event fired
	Severity Severity
	Text     string
}

// EventLog collects planner events. Planners may report from several
// goroutines, so access is guarded.
type EventLog struct {
	mu     sync.Mutex
	events []Event
}

// NewEventLog creates an empty log.
func NewEventLog() *EventLog {
	return &EventLog{}
}

// Add appends an event.
func (l *EventLog) Add(ev Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
}

// Until returns the events that fired at or before step, oldest first.
func (l *EventLog) Until(step int) []Event {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []Event
	for _, ev := range l.events {
		if ev.Step > step {
			break
		}
		out = append(out, ev)
	}
	return out
}

// Len returns the number of events.
func (l *EventLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}
