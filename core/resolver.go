package core

import (
	"context"
	"sync"

	"github.com/signalsfoundry/orbital-tracker/internal/logging"
	"github.com/signalsfoundry/orbital-tracker/model"
)

// ResolvedState couples propagator state with the record it came from. It is
// owned by the Resolver's cache; callers hold references, never copies.
type ResolvedState struct {
	Record *model.CatalogRecord
	State  State
}

// Resolver turns catalog records into propagator-ready state, memoized by
// identifier. Records that fail construction are cached as a permanent
// unresolvable sentinel: orbital elements for an identifier do not change
// within a catalog snapshot, so there is nothing to gain from retrying.
//
// Construction runs at most once per identifier for the life of the cache.
// Writes are serialized under the mutex; the map is append-only.
type Resolver struct {
	prop Propagator
	log  logging.Logger

	mu      sync.Mutex
	entries map[int]*ResolvedState // nil value marks an unresolvable record
}

// NewResolver constructs a Resolver around the given propagation capability.
// A nil logger silently drops resolution diagnostics.
func NewResolver(prop Propagator, log logging.Logger) *Resolver {
	if log == nil {
		log = logging.Noop()
	}
	return &Resolver{
		prop:    prop,
		log:     log,
		entries: make(map[int]*ResolvedState),
	}
}

// Resolve returns the cached state for the record's identifier, constructing
// it on first sight. The second return is false when the record is
// unresolvable; that verdict is itself cached.
func (r *Resolver) Resolve(ctx context.Context, rec *model.CatalogRecord) (*ResolvedState, bool) {
	if rec == nil || rec.NoradID <= 0 {
		return nil, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if cached, seen := r.entries[rec.NoradID]; seen {
		return cached, cached != nil
	}

	resolved := r.construct(ctx, rec)
	r.entries[rec.NoradID] = resolved
	return resolved, resolved != nil
}

func (r *Resolver) construct(ctx context.Context, rec *model.CatalogRecord) *ResolvedState {
	var line1, line2 string
	switch {
	case rec.HasEncodedLines():
		line1, line2 = rec.LineOne, rec.LineTwo
	case rec.HasElements():
		line1, line2 = EncodeLines(rec)
	default:
		r.log.Debug(ctx, "record carries neither element lines nor elements",
			logging.Int("norad_id", rec.NoradID))
		return nil
	}

	st, err := r.prop.Construct(line1, line2)
	if err != nil {
		r.log.Debug(ctx, "element set rejected",
			logging.Int("norad_id", rec.NoradID),
			logging.String("error", err.Error()))
		return nil
	}
	return &ResolvedState{Record: rec, State: st}
}

// Stats reports the number of cached entries and how many of them are
// unresolvable sentinels.
func (r *Resolver) Stats() (entries, unresolvable int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.entries {
		if e == nil {
			unresolvable++
		}
	}
	return len(r.entries), unresolvable
}
