// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: window/engine.go
// Summary: Engine owns the dataset and window state and reacts to boundary signals.
//
// Architecture:
//
//	boundary signal -> TopNear/BottomNear (pure transition)
//	                -> Coalescer.Request (debounced)
//	                -> Source.Fetch (async)
//	                -> Dataset.Merge (copy-on-write)
//	                -> listeners notified, sentinels re-subscribed
//
// Thread-safety:
//
//	All public methods are safe for concurrent use. State and dataset
//	mutations are serialized by a single mutex, and listeners and boundary
//	callbacks always run without it held.
//
// Fetch results are merged in completion order. Every Reset bumps the
// epoch; a result whose originating request predates the current epoch is
// dropped instead of merged.

package window

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
)

// ErrClosed is returned by operations on a closed engine.
var ErrClosed = errors.New("window: engine closed")

// Page is one answer from a Source.
type Page[T any] struct {
	// Total is the dataset size known to the source.
	Total int
	// Items starts at the requested offset; len(Items) <= requested length.
	Items []T
}

// Source answers "give me length items starting at offset". It must
// return an empty page (not an error) for offsets at or past the end.
type Source[T any] interface {
	Fetch(ctx context.Context, offset, length int) (Page[T], error)
}

// SourceFunc adapts a function to Source.
type SourceFunc[T any] func(ctx context.Context, offset, length int) (Page[T], error)

// Fetch implements Source.
func (f SourceFunc[T]) Fetch(ctx context.Context, offset, length int) (Page[T], error) {
	return f(ctx, offset, length)
}

// View is a read-only snapshot of the window for presentation.
type View[T any] struct {
	Phase   Phase
	Top     int
	Bucket  int
	Buffer  int
	Columns int

	// Slots is dataset[Top, Top+Buffer), clipped to the dataset.
	Slots []Slot[T]
	// Padding counts the grid rows above and below Slots.
	Padding Padding
	// Total is the dataset length.
	Total int
	// Known is false until a page has been merged since the last reset.
	Known bool
	// Epoch is the dataset generation.
	Epoch uint64
	// Pending counts queued plus in-flight fetches.
	Pending int
}

// Engine is the windowing state machine for one session.
type Engine[T any] struct {
	src     Source[T]
	opts    Options
	metrics *Metrics
	ctx     context.Context
	cancel  context.CancelFunc

	coalescer *Coalescer
	inflight  atomic.Int64

	// busy counts queued requests plus running fetches; idle is signalled
	// on every change.
	busyMu sync.Mutex
	busy   int
	idle   *sync.Cond

	mu       sync.Mutex
	state    State
	data     Dataset[T]
	known    bool
	epoch    uint64
	columns  int
	measured Measurement
	closed   bool

	listenerMu sync.Mutex
	listeners  []func()

	bindMu        sync.Mutex
	boundary      BoundarySource
	subs          []Subscription
	rebinding     bool
	rebindPending bool
	// shifted records the edges that moved the window during the current
	// rebind run; held the edges whose signal was refused in this pass.
	shifted [2]bool
	held    [2]bool
}

// NewEngine creates an engine fetching from src. The engine stays
// Uninitialized until the first valid Measure.
func NewEngine[T any](ctx context.Context, src Source[T], opts Options) *Engine[T] {
	opts = opts.withDefaults()
	ctx, cancel := context.WithCancel(ctx)
	e := &Engine[T]{
		src:     src,
		opts:    opts,
		metrics: opts.Metrics,
		ctx:     ctx,
		cancel:  cancel,
		columns: opts.Columns,
	}
	e.idle = sync.NewCond(&e.busyMu)
	e.coalescer = NewCoalescer(CoalescerConfig{
		Debounce: opts.Debounce,
		Lookback: opts.Lookback,
		Mode:     opts.Mode,
		Clock:    opts.Clock,
	}, e.dispatch)
	return e
}

// Options returns the effective options.
func (e *Engine[T]) Options() Options {
	return e.opts
}

// State returns the current window state.
func (e *Engine[T]) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Dataset returns the current dataset value.
func (e *Engine[T]) Dataset() Dataset[T] {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.data
}

// Measure recomputes bucket and buffer sizes from a geometry measurement.
// An unusable measurement returns ErrGeometryUnavailable and changes nothing.
func (e *Engine[T]) Measure(m Measurement) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	changed, err := e.measureLocked(m)
	e.mu.Unlock()
	if err != nil {
		log.Printf("Window: skipping measurement %+v: %v", m, err)
		return err
	}
	if changed {
		e.changed()
	}
	return nil
}

// SetColumns changes the column count. The buffer is recomputed from
// scratch and the window returns to the start.
func (e *Engine[T]) SetColumns(columns int) error {
	if columns < 1 {
		columns = 1
	}
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	if columns == e.columns {
		e.mu.Unlock()
		return nil
	}
	e.columns = columns
	var changed bool
	var err error
	if e.measured.Valid() {
		changed, err = e.measureLocked(e.measured)
	}
	e.mu.Unlock()
	if err != nil {
		return err
	}
	if changed {
		e.changed()
	}
	return nil
}

// Columns returns the current column count.
func (e *Engine[T]) Columns() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.columns
}

func (e *Engine[T]) measureLocked(m Measurement) (bool, error) {
	prev := e.state
	columnsChanged := prev.Phase == Uninitialized || prev.Columns != e.columns
	sz, err := ComputeSizing(m, e.columns, e.opts.BucketSizeVh, e.opts.BufferSizeVh, prev.Buffer, columnsChanged)
	if err != nil {
		return false, err
	}
	e.measured = m
	e.state = Measure(prev, sz, e.columns)
	if e.state.Phase == Positioning {
		e.positionLocked()
	}
	return e.state != prev, nil
}

func (e *Engine[T]) positionLocked() {
	next, req, fetch, ok := Position(e.state, e.data)
	if !ok {
		return
	}
	e.state = next
	if fetch {
		e.requestLocked(req)
	}
}

// Reset empties the dataset (a new query) and returns to Positioning.
// Results of fetches issued before the reset are discarded.
func (e *Engine[T]) Reset() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.epoch++
	e.data = Dataset[T]{}
	e.known = false
	e.addBusy(-e.coalescer.Reset())
	e.state = Reset(e.state)
	if e.state.Phase == Positioning {
		e.positionLocked()
	}
	e.mu.Unlock()
	e.changed()
}

// TopNear handles the top sentinel entering the viewport.
func (e *Engine[T]) TopNear() {
	e.shift(EdgeTop)
}

// BottomNear handles the bottom sentinel entering the viewport.
func (e *Engine[T]) BottomNear() {
	e.shift(EdgeBottom)
}

func (e *Engine[T]) shift(edge Edge) bool {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return false
	}
	var (
		next    State
		req     Range
		fetch   bool
		changed bool
	)
	if edge == EdgeTop {
		next, req, fetch, changed = TopNear(e.state, e.data)
	} else {
		next, req, fetch, changed = BottomNear(e.state, e.data)
	}
	if fetch {
		e.requestLocked(req)
	}
	e.state = next
	e.mu.Unlock()

	if changed {
		e.metrics.recordShift(e.ctx, edge)
		e.changed()
	}
	return changed
}

func (e *Engine[T]) requestLocked(r Range) {
	e.metrics.recordRequest(e.ctx)
	e.addBusy(1)
	if !e.coalescer.Request(r.Offset, r.Length, e.epoch) {
		e.addBusy(-1)
	}
}

// Flush sends any queued request without waiting for the debounce.
func (e *Engine[T]) Flush() {
	e.coalescer.Flush()
}

// Wait sends queued requests without waiting for the debounce and blocks
// until no request is queued and every fetch has been merged or dropped.
// Requests queued by a merging fetch are sent and waited for as well.
func (e *Engine[T]) Wait() {
	e.busyMu.Lock()
	defer e.busyMu.Unlock()
	for e.busy > 0 {
		if e.coalescer.Pending() > 0 {
			e.busyMu.Unlock()
			e.coalescer.Flush()
			e.busyMu.Lock()
			continue
		}
		e.idle.Wait()
	}
}

func (e *Engine[T]) addBusy(n int) {
	if n == 0 {
		return
	}
	e.busyMu.Lock()
	e.busy += n
	e.busyMu.Unlock()
	e.idle.Broadcast()
}

// dispatch is the coalescer sink. It never runs with e.mu held. The batch
// stands in for the requests folded into it.
func (e *Engine[T]) dispatch(b Batch) {
	e.addBusy(1 - b.Coalesced)
	e.inflight.Add(1)
	e.opts.Go(func() {
		defer e.addBusy(-1)
		defer e.inflight.Add(-1)
		e.fetch(b)
	})
}

func (e *Engine[T]) fetch(b Batch) {
	offset, length := max(b.Offset, 0), max(b.Length, 0)
	e.metrics.recordFetch(e.ctx)
	page, err := e.src.Fetch(e.ctx, offset, length)
	if err != nil {
		e.metrics.recordFailure(e.ctx)
		if !errors.Is(err, context.Canceled) {
			log.Printf("Window: fetch offset=%d length=%d failed: %v", offset, length, err)
		}
		return
	}
	e.apply(b.Epoch, offset, page)
}

func (e *Engine[T]) apply(epoch uint64, offset int, page Page[T]) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	if epoch != e.epoch {
		e.mu.Unlock()
		e.metrics.recordStale(e.ctx)
		log.Printf("Window: dropped stale page offset=%d epoch=%d (current %d)", offset, epoch, e.epoch)
		return
	}
	e.data = e.data.Merge(offset, page.Total, page.Items)
	e.known = true
	e.mu.Unlock()

	e.metrics.recordMerge(e.ctx, len(page.Items))
	e.changed()
}

// View returns a snapshot of the visible slice and layout padding.
func (e *Engine[T]) View() View[T] {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.state
	return View[T]{
		Phase:   s.Phase,
		Top:     s.Top,
		Bucket:  s.Bucket,
		Buffer:  s.Buffer,
		Columns: s.Columns,
		Slots:   e.data.Slice(s.Top, s.Top+s.Buffer),
		Padding: PaddingFor(s, e.data.Len()),
		Total:   e.data.Len(),
		Known:   e.known,
		Epoch:   e.epoch,
		Pending: int(e.inflight.Load()) + e.coalescer.Pending(),
	}
}

// OnChange registers fn to run after every window or dataset change.
// fn runs without engine locks held and may call back into the engine.
func (e *Engine[T]) OnChange(fn func()) {
	e.listenerMu.Lock()
	e.listeners = append(e.listeners, fn)
	e.listenerMu.Unlock()
}

func (e *Engine[T]) changed() {
	e.listenerMu.Lock()
	listeners := append([]func(){}, e.listeners...)
	e.listenerMu.Unlock()
	for _, fn := range listeners {
		fn()
	}
	e.rebind()
}

// Bind subscribes the window sentinels to src. Sentinels are re-subscribed
// after every change because their positions follow the window.
func (e *Engine[T]) Bind(src BoundarySource) {
	e.bindMu.Lock()
	e.boundary = src
	e.bindMu.Unlock()
	e.rebind()
}

// Unbind cancels the sentinel subscriptions.
func (e *Engine[T]) Unbind() {
	e.bindMu.Lock()
	e.boundary = nil
	subs := e.subs
	e.subs = nil
	e.bindMu.Unlock()
	for _, s := range subs {
		s.Cancel()
	}
}

// subscribe installs the sentinel for edge. A fire from inside Subscribe
// is synchronous; later fires come from the viewport moving.
func (e *Engine[T]) subscribe(src BoundarySource, edge Edge) Subscription {
	var installed atomic.Bool
	sub := src.Subscribe(edge, e.opts.Margin, func() { e.signal(edge, !installed.Load()) })
	installed.Store(true)
	return sub
}

// signal handles a sentinel fire. During a rebind run the window only moves
// one way: a synchronous signal from the edge opposite to one that already
// shifted it is held, and that edge is watched for a later move into view
// instead.
func (e *Engine[T]) signal(edge Edge, immediate bool) {
	e.bindMu.Lock()
	if immediate && e.shifted[edge.opposite()] {
		e.held[edge] = true
		e.bindMu.Unlock()
		return
	}
	outer := !e.rebinding
	was := e.shifted[edge]
	e.shifted[edge] = true
	e.bindMu.Unlock()

	moved := e.shift(edge)

	e.bindMu.Lock()
	switch {
	case outer:
		e.shifted = [2]bool{}
	case !moved:
		e.shifted[edge] = was
	}
	e.bindMu.Unlock()
}

// rebind re-subscribes both sentinels. A subscription may fire
// synchronously and shift the window, which asks for another rebind; that
// request is folded into the running loop instead of recursing. Every
// shift in one run goes the same way, so the loop ends at the latest when
// the window reaches the start or end of the dataset.
func (e *Engine[T]) rebind() {
	e.bindMu.Lock()
	if e.rebinding {
		e.rebindPending = true
		e.bindMu.Unlock()
		return
	}
	e.rebinding = true
	for {
		e.rebindPending = false
		e.held = [2]bool{}
		src := e.boundary
		old := e.subs
		e.subs = nil
		e.bindMu.Unlock()

		for _, s := range old {
			s.Cancel()
		}
		var subs []Subscription
		if src != nil && e.State().Phase == Active {
			subs = append(subs,
				e.subscribe(src, EdgeTop),
				e.subscribe(src, EdgeBottom),
			)
		}

		e.bindMu.Lock()
		if w, ok := src.(Watcher); ok && !e.rebindPending && e.boundary == src {
			held := e.held
			e.bindMu.Unlock()
			for _, edge := range []Edge{EdgeTop, EdgeBottom} {
				if held[edge] {
					subs = append(subs, w.Watch(edge, e.opts.Margin, func() { e.signal(edge, false) }))
				}
			}
			e.bindMu.Lock()
		}
		if e.boundary != src {
			// Unbound or rebound while subscribing.
			e.rebindPending = true
		}
		e.subs = append(e.subs, subs...)
		if !e.rebindPending {
			break
		}
	}
	e.rebinding = false
	e.shifted = [2]bool{}
	e.held = [2]bool{}
	e.bindMu.Unlock()
}

// Close stops the coalescer, cancels in-flight fetches and unbinds.
func (e *Engine[T]) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.addBusy(-e.coalescer.Reset())
	e.mu.Unlock()

	e.coalescer.Close()
	e.cancel()
	e.Unbind()
}
