package etw

import "github.com/0xrawsec/golang-utils/datastructs"

// EventFilter wraps an optional predicate, an optional set of event ids for
// native registration, and the callback lists that fire on a match
// (spec.md §4.3, C3). Constructed via NewEventFilter/NewEventIDFilter/
// NewEventIDsFilter; callback lists are append-only and must not be mutated
// once the owning Trace is Running (spec.md §5).
type EventFilter struct {
	predicate Predicate
	ids       *datastructs.Set // native event-id set, nil if none configured
	rawIDs    []uint16         // deduplicated ids backing ids, for host/trace consumption
	filterIn  bool             // true admits the ids set, false excludes it

	onEvent []func(*TypedRecord)
	onError []func(*ErrorView)
}

// NewEventFilter builds a filter from a predicate alone.
func NewEventFilter(p Predicate) *EventFilter {
	return &EventFilter{predicate: p}
}

// NewEventIDFilter builds a filter that natively registers a single event
// id, grounded on the teacher's NewEventIDFilter constructor shape.
func NewEventIDFilter(id uint16) *EventFilter {
	return NewEventIDsFilter(id)
}

// NewEventIDsFilter builds a filter that natively registers a set of event
// ids, deduplicated via datastructs.Set (the sibling teacher's
// tekert-golang-etw/etw/filter.go dependency, reused here for C3).
func NewEventIDsFilter(ids ...uint16) *EventFilter {
	seen := make(map[uint16]struct{}, len(ids))
	dedup := make([]uint16, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		dedup = append(dedup, id)
	}
	s := datastructs.NewInitSet(datastructs.ToInterfaceSlice(dedup)...)
	return &EventFilter{ids: s, rawIDs: dedup, filterIn: true}
}

// NewEventIDsPredicateFilter combines a native event-id set with an
// in-process predicate, per spec.md §4.3's "combination of event ids with a
// predicate" filter shape.
func NewEventIDsPredicateFilter(p Predicate, ids ...uint16) *EventFilter {
	f := NewEventIDsFilter(ids...)
	f.predicate = p
	return f
}

// EventIDSet returns the deduplicated native event-id set this filter
// contributes, or nil if it configured none.
func (f *EventFilter) EventIDSet() *datastructs.Set {
	return f.ids
}

// EventIDs returns the deduplicated event ids backing EventIDSet, in
// insertion order. Used by Trace at start to build the union event-id set
// per GUID (spec.md §4.6.2).
func (f *EventFilter) EventIDs() []uint16 {
	return f.rawIDs
}

// OnEvent appends an event callback, invoked in registration order.
func (f *EventFilter) OnEvent(cb func(*TypedRecord)) *EventFilter {
	f.onEvent = append(f.onEvent, cb)
	return f
}

// OnError appends an error callback, invoked in registration order.
func (f *EventFilter) OnError(cb func(*ErrorView)) *EventFilter {
	f.onError = append(f.onError, cb)
	return f
}

// admits reports whether the filter's predicate (if any) accepts rec. A
// filter with no predicate admits every record the host already delivered
// under its native id restriction.
func (f *EventFilter) admits(rec *RawRecord, schema *SchemaBlob) bool {
	if f.predicate == nil {
		return true
	}
	return f.predicate(rec, schema)
}

// dispatch runs the filter against an already schema-resolved record: if
// the predicate admits it, every event callback fires in registration
// order. A callback panic is recovered and routed to the filter's error
// chain, matching spec.md §7's "callback exceptions ... must not unwind
// through the pump".
func (f *EventFilter) dispatch(tr *TypedRecord, ev *ErrorView) {
	if !f.admits(tr.rec, tr.schema) {
		return
	}
	for _, cb := range f.onEvent {
		f.safeCall(cb, tr, ev)
	}
}

func (f *EventFilter) safeCall(cb func(*TypedRecord), tr *TypedRecord, ev *ErrorView) {
	defer func() {
		if r := recover(); r != nil {
			ev.err = newHostError(ErrUnknownHost, 0, "filter callback panic").withEventContext(tr.rec.Provider, tr.rec.EventID)
			f.dispatchError(ev)
		}
	}()
	cb(tr)
}

// dispatchErrorRaw routes a pre-resolved schema failure (no TypedRecord
// available yet) to this filter's error chain.
func (f *EventFilter) dispatchErrorRaw(ev *ErrorView) {
	f.dispatchError(ev)
}

func (f *EventFilter) dispatchError(ev *ErrorView) {
	for _, cb := range f.onError {
		cb(ev)
	}
}
