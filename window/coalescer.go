// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: window/coalescer.go
// Summary: Debounced request coalescer for boundary fetches.
//
// Every Request restarts a single debounce timer. When the timer fires with
// no further requests in the interval, the last `lookback` queued requests
// are reduced into one Batch, the queue is cleared, and the sink is called
// once. Rapid scrolling therefore produces one outbound fetch per quiet
// period instead of one per boundary crossing.

package window

import (
	"log"
	"sync"
	"time"
)

// CoalesceMode selects how queued requests are reduced into a batch.
type CoalesceMode int

const (
	// CoalesceLiteral takes the minimum offset and multiplies the last taken
	// length by the number of taken entries.
	CoalesceLiteral CoalesceMode = iota
	// CoalesceSpan covers min(offset) through max(offset+length).
	CoalesceSpan
)

// String returns the config spelling of the mode.
func (m CoalesceMode) String() string {
	if m == CoalesceSpan {
		return "span"
	}
	return "literal"
}

// ParseCoalesceMode maps a config string to a mode. Unknown values are literal.
func ParseCoalesceMode(s string) CoalesceMode {
	if s == "span" {
		return CoalesceSpan
	}
	return CoalesceLiteral
}

// Range is a contiguous slot range [Offset, Offset+Length).
type Range struct {
	Offset int
	Length int
}

// End returns one past the last slot.
func (r Range) End() int { return r.Offset + r.Length }

// Batch is one outbound fetch produced by the coalescer.
type Batch struct {
	Range
	// Epoch is the dataset generation of the newest request in the batch.
	Epoch uint64
	// Coalesced is how many queued requests were discarded or folded in.
	Coalesced int
}

type pendingRequest struct {
	Range
	epoch uint64
}

// CoalescerConfig holds coalescer settings.
type CoalescerConfig struct {
	// Debounce is the quiet period before a batch is emitted.
	// Default: 10ms
	Debounce time.Duration

	// Lookback is how many of the most recent requests are reduced.
	// Default: 3
	Lookback int

	// Mode selects the reduction. Default: CoalesceLiteral.
	Mode CoalesceMode

	// Clock schedules the debounce. Default: RealClock.
	Clock Clock
}

// DefaultCoalescerConfig returns the reference settings.
func DefaultCoalescerConfig() CoalescerConfig {
	return CoalescerConfig{
		Debounce: 10 * time.Millisecond,
		Lookback: 3,
		Mode:     CoalesceLiteral,
		Clock:    RealClock{},
	}
}

// Coalescer batches requests into at most one sink call per quiet period.
type Coalescer struct {
	config CoalescerConfig
	sink   func(Batch)

	mu     sync.Mutex
	queue  []pendingRequest
	timer  Timer
	gen    uint64 // bumped on every (re)schedule so stale timer callbacks are ignored
	closed bool
}

// NewCoalescer creates a coalescer that delivers batches to sink.
func NewCoalescer(config CoalescerConfig, sink func(Batch)) *Coalescer {
	def := DefaultCoalescerConfig()
	if config.Debounce <= 0 {
		config.Debounce = def.Debounce
	}
	if config.Lookback <= 0 {
		config.Lookback = def.Lookback
	}
	if config.Clock == nil {
		config.Clock = def.Clock
	}
	return &Coalescer{config: config, sink: sink}
}

// Request enqueues a range tagged with the caller's epoch and restarts the
// debounce timer. Negative offsets and lengths are clamped to 0. It reports
// false when the coalescer is closed.
func (c *Coalescer) Request(offset, length int, epoch uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}

	c.queue = append(c.queue, pendingRequest{
		Range: Range{Offset: max(offset, 0), Length: max(length, 0)},
		epoch: epoch,
	})

	if c.timer != nil {
		c.timer.Stop()
	}
	c.gen++
	gen := c.gen
	c.timer = c.config.Clock.AfterFunc(c.config.Debounce, func() {
		c.fire(gen)
	})
	return true
}

// Pending returns the number of queued requests.
func (c *Coalescer) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

// Flush emits the pending batch immediately, if any.
func (c *Coalescer) Flush() {
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.gen++
	batch, ok := c.drainLocked()
	c.mu.Unlock()

	if ok {
		c.sink(batch)
	}
}

// Reset drops queued requests without emitting them and returns how many
// were dropped.
func (c *Coalescer) Reset() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.gen++
	dropped := len(c.queue)
	c.queue = c.queue[:0]
	return dropped
}

// Close stops the coalescer. Later requests are ignored.
func (c *Coalescer) Close() {
	c.Reset()
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

// fire runs on the timer goroutine. A callback whose generation was
// superseded by a later Request, Flush or Reset does nothing.
func (c *Coalescer) fire(gen uint64) {
	c.mu.Lock()
	if gen != c.gen || c.closed {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	batch, ok := c.drainLocked()
	c.mu.Unlock()

	if ok {
		c.sink(batch)
	}
}

// drainLocked reduces the queue tail into a batch and clears the queue.
func (c *Coalescer) drainLocked() (Batch, bool) {
	if len(c.queue) == 0 {
		return Batch{}, false
	}
	taken := c.queue[max(len(c.queue)-c.config.Lookback, 0):]
	batch := Batch{
		Range:     reduce(taken, c.config.Mode),
		Epoch:     taken[len(taken)-1].epoch,
		Coalesced: len(c.queue),
	}
	c.queue = c.queue[:0]
	if batch.Coalesced > 1 {
		log.Printf("Coalescer: %d requests -> offset=%d length=%d", batch.Coalesced, batch.Offset, batch.Length)
	}
	return batch, true
}

func reduce(taken []pendingRequest, mode CoalesceMode) Range {
	out := Range{Offset: taken[0].Offset}
	end := 0
	for i, req := range taken {
		out.Offset = min(out.Offset, req.Offset)
		end = max(end, req.End())
		// Literal: the last taken length scaled by its 1-based position.
		out.Length = req.Length * (i + 1)
	}
	if mode == CoalesceSpan {
		out.Length = end - out.Offset
	}
	return out
}
