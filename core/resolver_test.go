package core

import (
	"context"
	"testing"
	"time"

	"github.com/signalsfoundry/orbital-tracker/model"
)

// countingProp records every Construct call and rejects identifiers listed in
// reject, keyed by the first line's catalog-number columns.
type countingProp struct {
	constructs []string
	reject     map[string]bool
}

func (p *countingProp) Construct(line1, line2 string) (State, error) {
	key := line1[2:7]
	p.constructs = append(p.constructs, key)
	if p.reject[key] {
		return nil, ErrConstructRejected
	}
	return key, nil
}

func (p *countingProp) Propagate(st State, at time.Time) (Vec3, Vec3, error) {
	return Vec3{X: 7000}, Vec3{Y: 7.5}, nil
}

func (p *countingProp) SiderealTime(at time.Time) float64 { return 0 }

func (p *countingProp) ToGeodetic(pos Vec3, gmst float64) (lat, lon, alt float64) {
	return 0, 0, 622
}

func lineRecord(id int) *model.CatalogRecord {
	rec := &model.CatalogRecord{
		NoradID:    id,
		IntlDesig:  "2021-005-A",
		Epoch:      time.Date(2021, time.June, 1, 0, 0, 0, 0, time.UTC),
		MeanMotion: 15.1,
	}
	rec.LineOne, rec.LineTwo = EncodeLines(rec)
	return rec
}

func TestResolverConstructsOncePerIdentifier(t *testing.T) {
	prop := &countingProp{}
	r := NewResolver(prop, nil)
	ctx := context.Background()
	rec := lineRecord(25544)

	first, ok := r.Resolve(ctx, rec)
	if !ok || first == nil {
		t.Fatal("first resolution should succeed")
	}
	second, ok := r.Resolve(ctx, rec)
	if !ok || second != first {
		t.Fatal("second resolution must return the cached entry")
	}
	if len(prop.constructs) != 1 {
		t.Fatalf("Construct ran %d times, want 1", len(prop.constructs))
	}
}

func TestResolverCachesUnresolvableVerdict(t *testing.T) {
	prop := &countingProp{reject: map[string]bool{"00900": true}}
	r := NewResolver(prop, nil)
	ctx := context.Background()
	rec := lineRecord(900)

	for i := 0; i < 3; i++ {
		if _, ok := r.Resolve(ctx, rec); ok {
			t.Fatalf("attempt %d: rejected record must stay unresolvable", i+1)
		}
	}
	if len(prop.constructs) != 1 {
		t.Fatalf("Construct ran %d times for a rejected record, want 1", len(prop.constructs))
	}

	entries, unresolvable := r.Stats()
	if entries != 1 || unresolvable != 1 {
		t.Fatalf("Stats() = (%d, %d), want (1, 1)", entries, unresolvable)
	}
}

func TestResolverEncodesRecordsWithoutLines(t *testing.T) {
	prop := &countingProp{}
	r := NewResolver(prop, nil)

	rec := lineRecord(44714)
	rec.LineOne, rec.LineTwo = "", ""

	resolved, ok := r.Resolve(context.Background(), rec)
	if !ok {
		t.Fatal("record with elements should resolve via the encoder")
	}
	if resolved.State != "44714" {
		t.Fatalf("construct saw catalog number %v, want 44714", resolved.State)
	}
}

func TestResolverRejectsUnusableRecords(t *testing.T) {
	prop := &countingProp{}
	r := NewResolver(prop, nil)
	ctx := context.Background()

	if _, ok := r.Resolve(ctx, nil); ok {
		t.Fatal("nil record must not resolve")
	}
	if _, ok := r.Resolve(ctx, &model.CatalogRecord{NoradID: 0}); ok {
		t.Fatal("non-positive identifier must not resolve")
	}
	if _, ok := r.Resolve(ctx, &model.CatalogRecord{NoradID: 7}); ok {
		t.Fatal("record with neither lines nor elements must not resolve")
	}
	if len(prop.constructs) != 0 {
		t.Fatalf("Construct ran %d times, want 0", len(prop.constructs))
	}

	// The bare record still consumed a cache slot as unresolvable.
	entries, unresolvable := r.Stats()
	if entries != 1 || unresolvable != 1 {
		t.Fatalf("Stats() = (%d, %d), want (1, 1)", entries, unresolvable)
	}
}

func TestResolverDistinguishesIdentifiers(t *testing.T) {
	prop := &countingProp{}
	r := NewResolver(prop, nil)
	ctx := context.Background()

	for _, id := range []int{100, 200, 100, 300, 200} {
		if _, ok := r.Resolve(ctx, lineRecord(id)); !ok {
			t.Fatalf("identifier %d should resolve", id)
		}
	}
	if len(prop.constructs) != 3 {
		t.Fatalf("Construct ran %d times, want 3", len(prop.constructs))
	}
}
