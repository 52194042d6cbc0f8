package etw

import "strconv"

// samplerKey builds a per-(provider, event) key for the dispatch hot path's
// sampled warnings, so a flood of failures on one event id does not also
// suppress warnings about a different, unrelated one under the same GUID.
func samplerKey(prefix string, guid GUID, eventID uint16) string {
	var buf [80]byte
	b := buf[:0]
	b = append(b, prefix...)
	b = append(b, ':')
	b = append(b, guid.String()...)
	b = append(b, ':')
	b = strconv.AppendUint(b, uint64(eventID), 10)
	return string(b)
}

// dispatcher routes raw records to the right Provider and, on the way,
// resolves and caches their schema (spec.md §4.7, C7). It owns the
// re-used TypedRecord/MetadataView/ErrorView wrappers handed to callbacks
// so the pump thread never allocates one per event.
type dispatcher struct {
	cache *SchemaCache
	dec   decoder

	metaView *MetadataView
	typed    *TypedRecord
	errView  *ErrorView
}

func newDispatcher(cache *SchemaCache, dec decoder) *dispatcher {
	return &dispatcher{
		cache:    cache,
		dec:      dec,
		metaView: &MetadataView{},
		typed:    &TypedRecord{},
		errView:  &ErrorView{},
	}
}

// dispatch implements the six steps of spec.md §4.7 for one raw record,
// given the resolved set of providers sharing rec's GUID (usually one, but
// spec.md's Open Question resolves duplicate-GUID providers to "fire on
// every match") and the trace's default chain.
func (d *dispatcher) dispatch(rec *RawRecord, providers []*Provider, tr *Trace) {
	if len(providers) == 0 {
		d.dispatchDefault(rec, tr)
		return
	}

	d.metaView.reset(rec)
	tr.fireDefaultMetadata(d.metaView)

	schema, err := d.cache.Get(rec)
	if err != nil {
		conlog.SampledWarnWithErrSig(samplerKey("schema-lookup-failed", rec.Provider, rec.EventID), err).
			Uint32("eventID", uint32(rec.EventID)).Msg("schema lookup failed")
		d.errView.reset(rec, err)
		for _, p := range providers {
			p.dispatchErrors(d.errView)
		}
		tr.fireDefaultError(d.errView)
		return
	}

	d.typed.reset(rec, schema, d.dec)
	d.errView.reset(rec, nil)
	for _, p := range providers {
		p.dispatch(d.typed, d.errView)
	}
}

// dispatchDefault handles a record whose provider GUID matches no
// registered Provider (spec.md §4.7 step 2 / §4.6.4): the trace's default
// chain fires instead of any provider-level chain.
func (d *dispatcher) dispatchDefault(rec *RawRecord, tr *Trace) {
	d.metaView.reset(rec)
	tr.fireDefaultMetadata(d.metaView)

	schema, err := d.cache.Get(rec)
	if err != nil {
		d.errView.reset(rec, err)
		tr.fireDefaultError(d.errView)
		return
	}

	d.typed.reset(rec, schema, d.dec)
	tr.fireDefaultEvent(d.typed)
}
