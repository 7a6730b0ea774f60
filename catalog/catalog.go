package catalog

import (
	"fmt"
	"sync"

	"github.com/signalsfoundry/orbital-tracker/model"
)

// EventType indicates what kind of change happened in the store.
type EventType int

const (
	EventGroupReplaced EventType = iota
	EventObjectsPublished
)

// Event is emitted to subscribers when something interesting happens.
type Event struct {
	Type  EventType
	Group string // set for EventGroupReplaced
}

// MetricsRecorder receives catalog size updates from store mutators.
type MetricsRecorder interface {
	SetCatalogCounts(records, objects int)
}

// Store is an in-memory, thread-safe snapshot of the current catalog: raw
// records grouped by transport source, plus the processed objects of the
// most recent propagation pass. The transport layer replaces whole groups;
// the store never fetches anything itself.
type Store struct {
	mu sync.RWMutex

	groups     map[string][]*model.CatalogRecord
	groupOrder []string

	objects []*model.ProcessedObject

	subs    []func(Event)
	metrics MetricsRecorder
}

// Option customises a Store.
type Option func(*Store)

// WithMetricsRecorder attaches a recorder driven from the store's mutators.
func WithMetricsRecorder(m MetricsRecorder) Option {
	return func(s *Store) { s.metrics = m }
}

// NewStore constructs an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		groups: make(map[string][]*model.CatalogRecord),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ReplaceGroup swaps the records of one transport group. Every record must
// carry a positive identifier; a bad record rejects the whole group so a
// partially-applied snapshot can never be observed.
func (s *Store) ReplaceGroup(group string, records []*model.CatalogRecord) error {
	for i, rec := range records {
		if rec == nil {
			return fmt.Errorf("group %q record %d is nil", group, i)
		}
		if rec.NoradID <= 0 {
			return fmt.Errorf("group %q record %d has non-positive identifier %d", group, i, rec.NoradID)
		}
	}

	s.mu.Lock()
	if _, seen := s.groups[group]; !seen {
		s.groupOrder = append(s.groupOrder, group)
	}
	s.groups[group] = append([]*model.CatalogRecord(nil), records...)
	s.updateMetricsLocked()
	s.mu.Unlock()

	s.notify(Event{Type: EventGroupReplaced, Group: group})
	return nil
}

// Records returns all records in a stable order: groups in first-seen order,
// records within a group in the order the transport delivered them.
func (s *Store) Records() []*model.CatalogRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, g := range s.groups {
		total += len(g)
	}
	res := make([]*model.CatalogRecord, 0, total)
	for _, group := range s.groupOrder {
		res = append(res, s.groups[group]...)
	}
	return res
}

// Group returns a snapshot of one group's records.
func (s *Store) Group(group string) []*model.CatalogRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*model.CatalogRecord(nil), s.groups[group]...)
}

// PublishObjects stores the results of a completed propagation pass,
// superseding the previous pass wholesale.
func (s *Store) PublishObjects(objects []*model.ProcessedObject) {
	s.mu.Lock()
	s.objects = append([]*model.ProcessedObject(nil), objects...)
	s.updateMetricsLocked()
	s.mu.Unlock()

	s.notify(Event{Type: EventObjectsPublished})
}

// Objects returns a snapshot of the latest published pass.
func (s *Store) Objects() []*model.ProcessedObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*model.ProcessedObject(nil), s.objects...)
}

// Subscribe registers a callback invoked after every mutation. Callbacks run
// outside the store lock.
func (s *Store) Subscribe(fn func(Event)) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	s.mu.Unlock()
}

func (s *Store) notify(ev Event) {
	s.mu.RLock()
	subs := append([]func(Event){}, s.subs...)
	s.mu.RUnlock()

	for _, fn := range subs {
		fn(ev)
	}
}

func (s *Store) updateMetricsLocked() {
	if s.metrics == nil {
		return
	}
	records := 0
	for _, g := range s.groups {
		records += len(g)
	}
	s.metrics.SetCatalogCounts(records, len(s.objects))
}
