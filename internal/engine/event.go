package engine

import (
	"math"

	"github.com/shelfsim/shelfsim/internal/order"
)

// EventType distinguishes the event kinds the Engine understands.
type EventType int

const (
	// EventOrderReceived carries one order from the Producer.
	EventOrderReceived EventType = iota + 1
	// EventCourierArrived marks a dispatched courier reaching its order.
	EventCourierArrived
	// EventShutdown tells the Engine no further orders will be submitted.
	EventShutdown
)

func (t EventType) String() string {
	switch t {
	case EventOrderReceived:
		return "order_received"
	case EventCourierArrived:
		return "courier_arrived"
	case EventShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// ShutdownKey is the sentinel ordering key reserved for the shutdown event
// in logical-priority mode. It is larger than any real timestamp, so the
// shutdown event is dequeued only after every other finite-keyed event.
var ShutdownKey = math.Inf(1)

// ignoredKey fills the Key field in wall-clock mode, where ordering comes
// from real elapsed time and keys are never consulted. Populated for
// consistency with logical-priority events.
const ignoredKey = -1

// Event is one entry on the shared queue.
//
// Key is the logical timestamp at which the event should have occurred. In
// wall-clock mode it is ignoredKey. Equal keys preserve per-actor submission
// order via the queue's insertion sequence.
type Event struct {
	Type EventType
	Key  float64

	// Pos and Order are set on order-received events. Pos is the 1-based
	// position within the input batch; it is only ever human-read.
	Pos   int
	Order order.Order

	// Token and Orig are set on courier-arrived events: the dispatch
	// token being retired and the originating order-received event.
	Token string
	Orig  *Event

	// seq is the queue insertion sequence, the tie-break for equal keys.
	seq uint64
}
