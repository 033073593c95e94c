// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: window/dataset.go
// Summary: Sparse positional dataset and the merge that folds fetched pages into it.
//
// A Dataset is a value: Merge never mutates the receiver, it returns a new
// Dataset sharing nothing with the old one. Holders of an older Dataset keep
// seeing the old contents.
//
// Invariants:
//   - Length never shrinks once set.
//   - A slot transitions Empty -> Loaded and never reverts.

package window

// Slot is one positional entry: either empty (not yet fetched) or loaded.
type Slot[T any] struct {
	item   T
	loaded bool
}

// Loaded wraps an item in a loaded slot.
func Loaded[T any](item T) Slot[T] {
	return Slot[T]{item: item, loaded: true}
}

// IsLoaded reports whether the slot holds an item.
func (s Slot[T]) IsLoaded() bool { return s.loaded }

// Item returns the item and whether the slot was loaded.
func (s Slot[T]) Item() (T, bool) { return s.item, s.loaded }

// Dataset is an ordered sequence of slots with a known length.
type Dataset[T any] struct {
	slots []Slot[T]
}

// Len returns the number of slots (the last known total).
func (d Dataset[T]) Len() int { return len(d.slots) }

// Slot returns the slot at index i, or an empty slot when out of range.
func (d Dataset[T]) Slot(i int) Slot[T] {
	if i < 0 || i >= len(d.slots) {
		return Slot[T]{}
	}
	return d.slots[i]
}

// At returns the item at index i and whether it is loaded.
func (d Dataset[T]) At(i int) (T, bool) {
	return d.Slot(i).Item()
}

// Slice returns a copy of the slots in [from, to), clipped to the dataset.
func (d Dataset[T]) Slice(from, to int) []Slot[T] {
	from, to = clip(from, to, len(d.slots))
	out := make([]Slot[T], to-from)
	copy(out, d.slots[from:to])
	return out
}

// HasEmpty reports whether any slot in [from, to) is empty. Indexes past the
// end of the dataset are not considered.
func (d Dataset[T]) HasEmpty(from, to int) bool {
	from, to = clip(from, to, len(d.slots))
	for i := from; i < to; i++ {
		if !d.slots[i].loaded {
			return true
		}
	}
	return false
}

// LoadedCount returns the number of loaded slots.
func (d Dataset[T]) LoadedCount() int {
	n := 0
	for _, s := range d.slots {
		if s.loaded {
			n++
		}
	}
	return n
}

// Merge returns a new dataset with items written at [offset, offset+len(items)).
// The result is at least total slots long; a negative offset is clamped to 0.
// Overlapping merges are last-write-wins in call order.
func (d Dataset[T]) Merge(offset, total int, items []T) Dataset[T] {
	offset = max(offset, 0)
	size := max(len(d.slots), total, offset+len(items))
	if len(items) == 0 {
		// Nothing to write; only growth can change the dataset.
		size = max(len(d.slots), total)
	}

	slots := make([]Slot[T], size)
	copy(slots, d.slots)
	for i, item := range items {
		slots[offset+i] = Loaded(item)
	}
	return Dataset[T]{slots: slots}
}

func clip(from, to, n int) (int, int) {
	from = min(max(from, 0), n)
	to = min(max(to, from), n)
	return from, to
}
