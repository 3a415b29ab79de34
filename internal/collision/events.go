package collision

import "fmt"

type ContactEventKind int

const (
	ContactStarted ContactEventKind = iota
	ContactStopped
)

func (k ContactEventKind) String() string {
	switch k {
	case ContactStarted:
		return "started"
	case ContactStopped:
		return "stopped"
	default:
		return fmt.Sprintf("ContactEventKind(%d)", int(k))
	}
}

// ContactEvent reports a pair starting or stopping to touch.
type ContactEvent struct {
	Kind   ContactEventKind
	Pair   ColliderPair
	Sensor bool
}

// EventHandler receives contact events after the narrow phase has run and
// when a removal drops a touching pair.
type EventHandler interface {
	HandleContactEvent(ContactEvent)
}

// EventHandlerFunc adapts a function to EventHandler.
type EventHandlerFunc func(ContactEvent)

func (f EventHandlerFunc) HandleContactEvent(e ContactEvent) { f(e) }

// EventCollector buffers events until drained.
type EventCollector struct {
	events []ContactEvent
}

func (c *EventCollector) HandleContactEvent(e ContactEvent) {
	c.events = append(c.events, e)
}

// Drain returns the buffered events and empties the buffer.
func (c *EventCollector) Drain() []ContactEvent {
	out := c.events
	c.events = nil
	return out
}

func (c *EventCollector) Len() int { return len(c.events) }
