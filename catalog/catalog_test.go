package catalog

import (
	"testing"

	"github.com/signalsfoundry/orbital-tracker/model"
)

type countRecorder struct {
	records int
	objects int
	calls   int
}

func (c *countRecorder) SetCatalogCounts(records, objects int) {
	c.records, c.objects = records, objects
	c.calls++
}

func recs(ids ...int) []*model.CatalogRecord {
	out := make([]*model.CatalogRecord, 0, len(ids))
	for _, id := range ids {
		out = append(out, &model.CatalogRecord{NoradID: id})
	}
	return out
}

func idsOf(records []*model.CatalogRecord) []int {
	out := make([]int, 0, len(records))
	for _, r := range records {
		out = append(out, r.NoradID)
	}
	return out
}

func TestReplaceGroupAndStableOrder(t *testing.T) {
	s := NewStore()

	if err := s.ReplaceGroup("active", recs(10, 20)); err != nil {
		t.Fatalf("ReplaceGroup(active): %v", err)
	}
	if err := s.ReplaceGroup("debris", recs(30)); err != nil {
		t.Fatalf("ReplaceGroup(debris): %v", err)
	}
	// Replacing an existing group keeps its position in the order.
	if err := s.ReplaceGroup("active", recs(11, 21, 31)); err != nil {
		t.Fatalf("ReplaceGroup(active) again: %v", err)
	}

	got := idsOf(s.Records())
	want := []int{11, 21, 31, 30}
	if len(got) != len(want) {
		t.Fatalf("Records() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Records() = %v, want %v", got, want)
		}
	}

	if g := s.Group("debris"); len(g) != 1 || g[0].NoradID != 30 {
		t.Fatalf("Group(debris) = %v", idsOf(g))
	}
	if g := s.Group("missing"); len(g) != 0 {
		t.Fatalf("Group(missing) should be empty, got %v", idsOf(g))
	}
}

func TestReplaceGroupRejectsBadRecordsAtomically(t *testing.T) {
	s := NewStore()
	if err := s.ReplaceGroup("active", recs(1, 2)); err != nil {
		t.Fatalf("ReplaceGroup: %v", err)
	}

	bad := recs(3)
	bad = append(bad, nil)
	if err := s.ReplaceGroup("active", bad); err == nil {
		t.Fatal("nil record should reject the group")
	}
	if err := s.ReplaceGroup("active", recs(3, 0)); err == nil {
		t.Fatal("non-positive identifier should reject the group")
	}

	// The previous snapshot survives a rejected replacement.
	got := idsOf(s.Records())
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("Records() after rejected replace = %v, want [1 2]", got)
	}
}

func TestReplaceGroupCopiesInput(t *testing.T) {
	s := NewStore()
	input := recs(1, 2)
	if err := s.ReplaceGroup("active", input); err != nil {
		t.Fatalf("ReplaceGroup: %v", err)
	}

	input[0] = &model.CatalogRecord{NoradID: 99}
	if got := s.Records(); got[0].NoradID != 1 {
		t.Fatalf("store aliased the caller's slice: got identifier %d", got[0].NoradID)
	}
}

func TestPublishObjectsSupersedes(t *testing.T) {
	s := NewStore()

	s.PublishObjects([]*model.ProcessedObject{{NoradID: 1}, {NoradID: 2}})
	s.PublishObjects([]*model.ProcessedObject{{NoradID: 3}})

	got := s.Objects()
	if len(got) != 1 || got[0].NoradID != 3 {
		t.Fatalf("Objects() = %d entries, want the latest pass only", len(got))
	}
}

func TestSubscribeSeesMutations(t *testing.T) {
	s := NewStore()

	var events []Event
	s.Subscribe(func(ev Event) { events = append(events, ev) })
	s.Subscribe(nil) // ignored

	if err := s.ReplaceGroup("stations", recs(25544)); err != nil {
		t.Fatalf("ReplaceGroup: %v", err)
	}
	s.PublishObjects(nil)

	if len(events) != 2 {
		t.Fatalf("observed %d events, want 2", len(events))
	}
	if events[0].Type != EventGroupReplaced || events[0].Group != "stations" {
		t.Fatalf("first event = %+v, want group replacement for stations", events[0])
	}
	if events[1].Type != EventObjectsPublished {
		t.Fatalf("second event = %+v, want objects published", events[1])
	}
}

func TestNotifyReachesAllSubscribers(t *testing.T) {
	s := NewStore()

	var first, second int
	s.Subscribe(func(Event) { first++ })
	s.Subscribe(func(Event) { second++ })

	if err := s.ReplaceGroup("active", recs(1)); err != nil {
		t.Fatalf("ReplaceGroup: %v", err)
	}
	s.PublishObjects(nil)

	if first != 2 || second != 2 {
		t.Fatalf("subscribers saw (%d, %d) events, want (2, 2)", first, second)
	}
}

func TestMetricsRecorderTracksCounts(t *testing.T) {
	rec := &countRecorder{}
	s := NewStore(WithMetricsRecorder(rec))

	if err := s.ReplaceGroup("active", recs(1, 2, 3)); err != nil {
		t.Fatalf("ReplaceGroup: %v", err)
	}
	s.PublishObjects([]*model.ProcessedObject{{NoradID: 1}})

	if rec.records != 3 || rec.objects != 1 {
		t.Fatalf("recorder = (%d records, %d objects), want (3, 1)", rec.records, rec.objects)
	}
	if rec.calls != 2 {
		t.Fatalf("recorder updated %d times, want 2", rec.calls)
	}
}
