package batch

import "sync"

// Registry tracks live batches by ID for the API layer.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	batches map[string]*Batch
}

func NewRegistry() *Registry {
	return &Registry{
		batches: make(map[string]*Batch),
	}
}

func (r *Registry) Add(b *Batch) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.batches[b.ID]; !exists {
		r.order = append(r.order, b.ID)
	}
	r.batches[b.ID] = b
}

func (r *Registry) Get(id string) (*Batch, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.batches[id]
	return b, ok
}

// List returns snapshots of all batches in creation order.
func (r *Registry) List() []Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ret := make([]Snapshot, 0, len(r.order))
	for _, id := range r.order {
		if b, ok := r.batches[id]; ok {
			ret = append(ret, b.Snapshot())
		}
	}
	return ret
}
