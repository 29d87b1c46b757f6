package castle

// EventType identifies an event.
type EventType uint8

const (
	EventStabilityChanged EventType = iota
	EventCollapseDetected
	EventPlacementResult
	EventProgressionUpdated
	EventSettleAwarded
	EventPartRemoved
)

var eventTypeNames = [...]string{
	EventStabilityChanged:   "stability_changed",
	EventCollapseDetected:   "collapse_detected",
	EventPlacementResult:    "placement_result",
	EventProgressionUpdated: "progression_updated",
	EventSettleAwarded:      "settle_awarded",
	EventPartRemoved:        "part_removed",
}

// String returns the snake_case event name.
func (t EventType) String() string {
	if int(t) < len(eventTypeNames) {
		return eventTypeNames[t]
	}
	return "unknown"
}

// Event is implemented by every event the engine emits.
type Event interface {
	Type() EventType
}

// StabilityChanged is emitted when a part's classification changes,
// including its first classification.
type StabilityChanged struct {
	Part      PartID
	Stability StabilityLevel
}

// CollapseDetected is emitted once when the structure collapses.
type CollapseDetected struct {
	Report CollapseReport
}

// PlacementResult is emitted when a landed part has been judged.
type PlacementResult struct {
	Part        PartID
	Level       int
	Valid       bool
	TargetLevel int // GroundTarget, a support level, or NoTarget
	ScoreDelta  int
}

// ProgressionUpdated is emitted when the set of spawnable levels changes.
// An empty set means the castle is deadlocked.
type ProgressionUpdated struct {
	EligibleLevels []int
}

// SettleAwarded is emitted once per validly placed part when it settles,
// or when the settle timeout expires.
type SettleAwarded struct {
	Part      PartID
	Points    int
	Perfect   bool
	Stability StabilityLevel
}

// PartRemoved is emitted when a part leaves the store.
type PartRemoved struct {
	Part  PartID
	Level int
}

func (StabilityChanged) Type() EventType   { return EventStabilityChanged }
func (CollapseDetected) Type() EventType   { return EventCollapseDetected }
func (PlacementResult) Type() EventType    { return EventPlacementResult }
func (ProgressionUpdated) Type() EventType { return EventProgressionUpdated }
func (SettleAwarded) Type() EventType      { return EventSettleAwarded }
func (PartRemoved) Type() EventType        { return EventPartRemoved }

// DefaultQueueSize is the event queue capacity.
const DefaultQueueSize = 256

// EventQueue is a bounded FIFO ring of events.
// When full, the oldest event is overwritten.
// It is not safe for concurrent use; Engine serializes access.
type EventQueue struct {
	buf     []Event
	head    int
	n       int
	dropped int
}

// NewEventQueue creates a queue holding up to size events.
func NewEventQueue(size int) *EventQueue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &EventQueue{buf: make([]Event, size)}
}

// Push appends an event.
func (q *EventQueue) Push(e Event) {
	tail := (q.head + q.n) % len(q.buf)
	q.buf[tail] = e
	if q.n < len(q.buf) {
		q.n++
		return
	}
	// Overwrote the oldest
	q.head = (q.head + 1) % len(q.buf)
	q.dropped++
}

// Drain returns all pending events in FIFO order and empties the queue.
func (q *EventQueue) Drain() []Event {
	if q.n == 0 {
		return nil
	}
	out := make([]Event, q.n)
	for i := range out {
		idx := (q.head + i) % len(q.buf)
		out[i] = q.buf[idx]
		q.buf[idx] = nil
	}
	q.head = 0
	q.n = 0
	return out
}

// Len returns the number of pending events.
func (q *EventQueue) Len() int {
	return q.n
}

// Dropped returns how many events were overwritten since creation.
func (q *EventQueue) Dropped() int {
	return q.dropped
}

// Clear discards pending events.
func (q *EventQueue) Clear() {
	for i := range q.buf {
		q.buf[i] = nil
	}
	q.head = 0
	q.n = 0
}
