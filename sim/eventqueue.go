package sim

import (
	"container/heap"
	"sync"
)

// EventQueue are a queue of event ordered by the time of events
type EventQueue interface {
	Push(evt Event)
	Pop() Event
	Len() int
	Peek() Event
}

// EventQueueImpl provides a thread safe event queue
type EventQueueImpl struct {
	sync.Mutex
	events eventHeap
}

// NewEventQueue creates and returns a newly created EventQueue
func NewEventQueue() *EventQueueImpl {
	q := new(EventQueueImpl)
	q.events = eventHeap{entries: make([]heapEntry, 0)}
	heap.Init(&q.events)

	return q
}

// Push adds an event to the event queue
func (q *EventQueueImpl) Push(evt Event) {
	q.Lock()
	q.events.seq++
	heap.Push(&q.events, heapEntry{evt: evt, seq: q.events.seq})
	q.Unlock()
}

// Pop returns the next earliest event
func (q *EventQueueImpl) Pop() Event {
	q.Lock()
	defer q.Unlock()

	if q.events.Len() == 0 {
		return nil
	}

	return heap.Pop(&q.events).(heapEntry).evt
}

// Len returns the number of event in the queue
func (q *EventQueueImpl) Len() int {
	q.Lock()
	l := q.events.Len()
	q.Unlock()

	return l
}

// Peek returns the event in front of the queue without removing it from the
// queue
func (q *EventQueueImpl) Peek() Event {
	q.Lock()
	defer q.Unlock()

	if q.events.Len() == 0 {
		return nil
	}

	return q.events.entries[0].evt
}

// heapEntry remembers the push order so that same-time events pop in the
// order they were scheduled. Component ordering inside a cycle must not depend
// on the heap layout.
type heapEntry struct {
	evt Event
	seq uint64
}

type eventHeap struct {
	entries []heapEntry
	seq     uint64
}

// Len returns the length of the event queue
func (h eventHeap) Len() int {
	return len(h.entries)
}

// Less determines the order between two events. Less returns true if the i-th
// event happens before the j-th event.
func (h eventHeap) Less(i, j int) bool {
	ti := h.entries[i].evt.Time()
	tj := h.entries[j].evt.Time()

	if ti != tj {
		return ti < tj
	}

	return h.entries[i].seq < h.entries[j].seq
}

// Swap changes the position of two events in the event queue
func (h eventHeap) Swap(i, j int) {
	h.entries[i], h.entries[j] = h.entries[j], h.entries[i]
}

// Push adds an event into the event queue
func (h *eventHeap) Push(x any) {
	h.entries = append(h.entries, x.(heapEntry))
}

// Pop removes and returns the next event to happen
func (h *eventHeap) Pop() any {
	old := h.entries
	n := len(old)
	entry := old[n-1]
	h.entries = old[0 : n-1]

	return entry
}
