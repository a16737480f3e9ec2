package features

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

var (
	ErrRegistrySealed = errors.New("feature registry is sealed")
	ErrEmptyID        = errors.New("feature id is required")
)

// DuplicateFeatureError is returned when a feature id is registered twice.
type DuplicateFeatureError struct {
	ID string
}

func (e *DuplicateFeatureError) Error() string {
	return fmt.Sprintf("feature %q is already registered", e.ID)
}

type entry struct {
	record Record
	id     string // lowercased
	name   string // lowercased
}

// Registry holds the canonical set of feature records. It is append-only
// until Seal is called and read-only afterwards.
type Registry struct {
	mu      sync.RWMutex
	entries []entry
	index   map[string]int
	sealed  bool
}

func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

func (r *Registry) Register(rec Record) error {
	id := strings.TrimSpace(rec.ID)
	if id == "" {
		return ErrEmptyID
	}
	if !rec.Status.Valid() {
		return fmt.Errorf("feature %q: invalid status %q", id, rec.Status)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return ErrRegistrySealed
	}

	key := strings.ToLower(id)
	if _, ok := r.index[key]; ok {
		return &DuplicateFeatureError{ID: id}
	}

	rec = rec.clone()
	rec.ID = id
	if rec.Name == "" {
		rec.Name = id
	}
	rec.Polyfills = dedupe(rec.Polyfills)

	r.index[key] = len(r.entries)
	r.entries = append(r.entries, entry{
		record: rec,
		id:     key,
		name:   strings.ToLower(rec.Name),
	})
	return nil
}

// Seal freezes the registry. Further Register calls fail.
func (r *Registry) Seal() {
	r.mu.Lock()
	r.sealed = true
	r.mu.Unlock()
}

func (r *Registry) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Get looks up a record by id, ignoring case.
func (r *Registry) Get(id string) (Record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.index[strings.ToLower(strings.TrimSpace(id))]
	if !ok {
		return Record{}, false
	}
	return r.entries[i].record.clone(), true
}

// Match returns the first record, in insertion order, whose id or name
// contains query. query must already be lowercased.
func (r *Registry) Match(query string) (Record, bool) {
	if query == "" {
		return Record{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.entries {
		if strings.Contains(e.id, query) || strings.Contains(e.name, query) {
			return e.record.clone(), true
		}
	}
	return Record{}, false
}

// All returns every record in insertion order.
func (r *Registry) All() []Record {
	return r.filter(func(entry) bool { return true })
}

// Search returns every record whose id or name contains query, ignoring case.
func (r *Registry) Search(query string) []Record {
	q := strings.ToLower(strings.TrimSpace(query))
	return r.filter(func(e entry) bool {
		return strings.Contains(e.id, q) || strings.Contains(e.name, q)
	})
}

func (r *Registry) ByStatus(status Status) []Record {
	return r.filter(func(e entry) bool { return e.record.Status == status })
}

func (r *Registry) ByCategory(category Category) []Record {
	return r.filter(func(e entry) bool { return e.record.Category == category })
}

func (r *Registry) filter(keep func(entry) bool) []Record {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Record, 0, len(r.entries))
	for _, e := range r.entries {
		if keep(e) {
			out = append(out, e.record.clone())
		}
	}
	return out
}

// Statistics counts registered features per status.
type Statistics struct {
	Total    int            `json:"total"`
	ByStatus map[Status]int `json:"byStatus"`
}

func (r *Registry) Statistics() Statistics {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := Statistics{
		Total:    len(r.entries),
		ByStatus: map[Status]int{Widely: 0, Newly: 0, Limited: 0, NotBaseline: 0},
	}
	for _, e := range r.entries {
		stats.ByStatus[e.record.Status]++
	}
	return stats
}
