package etw

import "testing"

func TestNewEventIDsFilterDedups(t *testing.T) {
	f := NewEventIDsFilter(1, 2, 2, 3, 1)
	ids := f.EventIDs()
	if len(ids) != 3 {
		t.Fatalf("EventIDs() = %v, want 3 deduplicated entries", ids)
	}
	seen := map[uint16]bool{}
	for _, id := range ids {
		if seen[id] {
			t.Fatalf("duplicate id %d survived dedup", id)
		}
		seen[id] = true
	}
	if f.EventIDSet() == nil {
		t.Fatal("EventIDSet should be populated")
	}
}

func TestEventFilterAdmitsWithNoPredicate(t *testing.T) {
	f := NewEventIDFilter(5)
	if !f.admits(&RawRecord{EventID: 5}, nil) {
		t.Fatal("a filter with no predicate must admit every record the host already restricted")
	}
}

func TestEventFilterPredicateGating(t *testing.T) {
	f := NewEventFilter(IDIs(3))
	if !f.admits(&RawRecord{EventID: 3}, nil) {
		t.Fatal("matching predicate should admit")
	}
	if f.admits(&RawRecord{EventID: 4}, nil) {
		t.Fatal("non-matching predicate should not admit")
	}
}

func TestEventFilterDispatchFiresOnEventInOrder(t *testing.T) {
	var order []int
	f := NewEventFilter(nil).
		OnEvent(func(*TypedRecord) { order = append(order, 1) }).
		OnEvent(func(*TypedRecord) { order = append(order, 2) })

	rec := &RawRecord{EventID: 1}
	tr := &TypedRecord{rec: rec}
	ev := &ErrorView{}
	f.dispatch(tr, ev)

	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("callbacks fired out of order: %v", order)
	}
}

func TestEventFilterCallbackPanicRoutesToErrorChain(t *testing.T) {
	var caught *ErrorView
	f := NewEventFilter(nil).
		OnEvent(func(*TypedRecord) { panic("boom") }).
		OnError(func(e *ErrorView) { caught = e })

	rec := &RawRecord{Provider: GUID{Data1: 1}, EventID: 9}
	tr := &TypedRecord{rec: rec}
	ev := &ErrorView{rec: rec}
	f.dispatch(tr, ev)

	if caught == nil {
		t.Fatal("a callback panic must be recovered and routed to the error chain")
	}
	if caught.Err() == nil {
		t.Fatal("routed error view should carry a non-nil error")
	}
}

func TestNewEventIDsPredicateFilterCombinesBoth(t *testing.T) {
	f := NewEventIDsPredicateFilter(ProcessIDIs(42), 1, 2)
	if len(f.EventIDs()) != 2 {
		t.Fatalf("expected 2 event ids, got %d", len(f.EventIDs()))
	}
	if !f.admits(&RawRecord{ProcessID: 42}, nil) {
		t.Fatal("predicate half should admit a matching pid")
	}
	if f.admits(&RawRecord{ProcessID: 1}, nil) {
		t.Fatal("predicate half should reject a non-matching pid")
	}
}
