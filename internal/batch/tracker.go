package batch

import (
	"sync"
	"time"
)

// Tracker is the keyed item collection behind one batch. Keys are
// unique: re-adding an existing key resets that entry instead of
// duplicating it. Updates for keys that have been deleted are no-ops,
// so a remote result landing after a user delete is discarded.
type Tracker struct {
	mu    sync.RWMutex
	order []string
	items map[string]*Item
}

func NewTracker(keys []string) *Tracker {
	t := &Tracker{
		items: make(map[string]*Item, len(keys)),
	}
	now := time.Now()
	for _, key := range keys {
		if _, exists := t.items[key]; !exists {
			t.order = append(t.order, key)
		}
		t.items[key] = &Item{
			Key:       key,
			Status:    StatusPending,
			UpdatedAt: now,
		}
	}
	return t
}

// Keys returns the tracked keys in submission order.
func (t *Tracker) Keys() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ret := make([]string, len(t.order))
	copy(ret, t.order)
	return ret
}

// Snapshot returns copies of all items in submission order.
func (t *Tracker) Snapshot() []Item {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ret := make([]Item, 0, len(t.order))
	for _, key := range t.order {
		if item, ok := t.items[key]; ok {
			ret = append(ret, *item)
		}
	}
	return ret
}

// Get returns a copy of one item.
func (t *Tracker) Get(key string) (Item, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	item, ok := t.items[key]
	if !ok {
		return Item{}, false
	}
	return *item, true
}

// Update applies fn to the item under the lock. It reports false, and
// applies nothing, when the key is not tracked anymore.
func (t *Tracker) Update(key string, fn func(*Item)) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	item, ok := t.items[key]
	if !ok {
		return false
	}
	fn(item)
	item.UpdatedAt = time.Now()
	return true
}

// Advance bumps the item's progress by step toward ceiling. Only items
// still loading move, and progress never decreases.
func (t *Tracker) Advance(key string, step, ceiling int) bool {
	return t.Update(key, func(item *Item) {
		if item.Status != StatusLoading {
			return
		}
		next := item.Progress + step
		if next > ceiling {
			next = ceiling
		}
		if next > item.Progress {
			item.Progress = next
		}
	})
}

// Delete removes exactly the given key, reporting whether it existed.
func (t *Tracker) Delete(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.items[key]; !ok {
		return false
	}
	delete(t.items, key)
	for i, k := range t.order {
		if k == key {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return true
}

// Len reports the number of tracked items.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.items)
}
