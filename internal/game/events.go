package game

type EventKind int

const (
	EventFileDrop EventKind = iota
	EventWindowMove
	EventWindowFocus
	// EventResize carries the new framebuffer size in X, Y
	EventResize
)

// Event is a window event captured during PollEvents
type Event struct {
	Kind    EventKind
	Path    string
	X, Y    int
	Focused bool
}

// EventQueue buffers window events until the driver is between frames.
// It is used from the main thread only.
type EventQueue struct {
	pending []Event
	spare   []Event
}

func NewEventQueue() *EventQueue {
	return &EventQueue{}
}

func (q *EventQueue) Push(e Event) {
	q.pending = append(q.pending, e)
}

func (q *EventQueue) Len() int {
	return len(q.pending)
}

// Drain hands every queued event to fn in arrival order. Events pushed by
// fn itself are kept for the next Drain.
func (q *EventQueue) Drain(fn func(Event)) {
	if len(q.pending) == 0 {
		return
	}
	batch := q.pending
	q.pending = q.spare[:0]
	for _, e := range batch {
		fn(e)
	}
	clear(batch)
	q.spare = batch[:0]
}
