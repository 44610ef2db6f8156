// Package engine implements the shelfsim fulfillment core.
//
// Two actors run concurrently: the order Producer replays an input batch at
// a configured rate, and the fulfillment Engine consumes a single shared
// event queue, owning all shelf and order-record state. The queue is the
// only synchronization point in the system; because the Engine is the sole
// consumer and the sole mutator of shelf state, that state needs no locks.
//
// ARCHITECTURE:
//
// Dual clock discipline:
// The same event-handling logic runs under two interchangeable time models.
// In wall-clock mode the queue is strict FIFO, the Producer literally sleeps
// between submissions, and courier arrivals are real timer callbacks. In
// logical-priority mode the queue is a min-heap on logical timestamps, the
// Producer advances a logical clock instead of sleeping, and courier
// arrivals are heap insertions at a computed future key. A +Inf sentinel key
// reserved for the shutdown event guarantees it sorts after every
// finite-keyed pending event.
//
// Single-consumer event loop:
// The Engine keeps running while it has not seen shutdown, OR the queue is
// non-empty, OR courier dispatches are still outstanding. The last clause is
// what drains timer callbacks that fire after shutdown has already been
// processed.
//
// Determinism:
// With courier dispatch disabled, a run's final state depends only on the
// batch and the configured capacities, never on timing noise. Randomness is
// confined to the courier delay draw behind the DelaySource interface, so
// tests pin it.
package engine
