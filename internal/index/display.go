package index

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/renderdash/rdash/internal/domain"
)

// Entry is one displayed service with its ordering metadata.
type Entry struct {
	Service  *domain.Service
	Priority int
	// UpdatedAt is when this entry was last written by a
	// reconciliation cycle.
	UpdatedAt time.Time
}

// Failure records a per-service fetch failure from the most recent
// reconciliation cycle, kept for diagnostics.
type Failure struct {
	ServiceID string
	Err       error
	At        time.Time
}

// DisplaySet is the in-memory collection of currently shown service
// entries, keyed by service id. Mutated only by the reconciliation
// merge step, read by the rendering layer; the lock keeps a render
// pass from observing a half-applied merge.
type DisplaySet struct {
	mu          sync.RWMutex
	entries     map[string]*Entry
	failures    []Failure
	lastRefresh time.Time
}

// NewDisplaySet creates an empty display set.
func NewDisplaySet() *DisplaySet {
	return &DisplaySet{
		entries: make(map[string]*Entry),
	}
}

// Upsert inserts or replaces the entry for svc. Replacement is
// wholesale: the previous Service value is superseded, never patched
// field-by-field.
func (ds *DisplaySet) Upsert(svc *domain.Service, priority int) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	ds.entries[svc.ID] = &Entry{
		Service:   svc,
		Priority:  priority,
		UpdatedAt: time.Now(),
	}
}

// Evict removes the entry for id, if present. Called when a service's
// fetch failed: stale data is dropped rather than shown.
func (ds *DisplaySet) Evict(id string) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	delete(ds.entries, id)
}

// Get returns the entry for id.
func (ds *DisplaySet) Get(id string) (*Entry, bool) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	e, ok := ds.entries[id]
	return e, ok
}

// All returns the entries ordered by priority, then name. The slice
// is a copy; callers may hold it across renders.
func (ds *DisplaySet) All() []*Entry {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	entries := make([]*Entry, 0, len(ds.entries))
	for _, e := range ds.entries {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Priority != entries[j].Priority {
			return entries[i].Priority < entries[j].Priority
		}
		return strings.ToLower(entries[i].Service.Name) < strings.ToLower(entries[j].Service.Name)
	})
	return entries
}

// Count returns the number of displayed entries.
func (ds *DisplaySet) Count() int {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	return len(ds.entries)
}

// MarkRefreshed records cycle completion: the last-refresh timestamp
// and that cycle's fetch failures. Called exactly once per cycle,
// however many individual services failed.
func (ds *DisplaySet) MarkRefreshed(failures []Failure) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	ds.lastRefresh = time.Now()
	ds.failures = failures
}

// LastRefresh returns when the last reconciliation cycle completed,
// zero before the first one.
func (ds *DisplaySet) LastRefresh() time.Time {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	return ds.lastRefresh
}

// Failures returns the most recent cycle's per-service failures.
func (ds *DisplaySet) Failures() []Failure {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	out := make([]Failure, len(ds.failures))
	copy(out, ds.failures)
	return out
}
