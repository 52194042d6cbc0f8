package etw

import "testing"

func newTestDispatcher(host HostRuntime) *dispatcher {
	return newDispatcher(NewSchemaCache(host), defaultDecoder{})
}

func TestDispatcherFiresProviderOnSuccessfulSchemaLookup(t *testing.T) {
	host := newFakeHost()
	host.metadataFor = func(*RawRecord) ([]byte, error) { return []byte{0}, nil }

	guid := *MustParseGUID("{9E814AAD-3204-11D2-9A82-006008A86939}")
	var got *TypedRecord
	p := NewProvider(guid).OnEvent(func(tr *TypedRecord) { got = tr })

	trace := UserTrace("t", host)
	trace.AddProvider(p)

	d := newTestDispatcher(host)
	rec := recWithName("Foo", 1)
	rec.Provider = guid

	d.dispatch(rec, trace.byGUID[guid], trace)

	if got == nil {
		t.Fatal("provider's event callback should have fired")
	}
	if got.Raw().EventID != 1 {
		t.Fatalf("dispatched record EventID = %d, want 1", got.Raw().EventID)
	}
}

func TestDispatcherRoutesUnknownGUIDToDefaultChain(t *testing.T) {
	host := newFakeHost()
	host.metadataFor = func(*RawRecord) ([]byte, error) { return []byte{0}, nil }

	trace := UserTrace("t", host)
	var fired bool
	trace.DefaultEvent(func(*TypedRecord) { fired = true })

	d := newTestDispatcher(host)
	rec := recWithName("Foo", 1)
	rec.Provider = *MustParseGUID("{9E814AAD-3204-11D2-9A82-006008A86939}")

	d.dispatch(rec, trace.byGUID[rec.Provider], trace)

	if !fired {
		t.Fatal("a record with no matching provider must fire the trace's default event chain")
	}
}

func TestDispatcherRoutesSchemaFailureToErrorChains(t *testing.T) {
	host := newFakeHost() // metadataFor nil -> always fails

	guid := *MustParseGUID("{9E814AAD-3204-11D2-9A82-006008A86939}")
	var providerErr, defaultErr *ErrorView
	p := NewProvider(guid).OnError(func(e *ErrorView) { providerErr = e })

	trace := UserTrace("t", host)
	trace.AddProvider(p)
	trace.DefaultError(func(e *ErrorView) { defaultErr = e })

	d := newTestDispatcher(host)
	rec := recWithName("Foo", 1)
	rec.Provider = guid

	d.dispatch(rec, trace.byGUID[guid], trace)

	if providerErr == nil {
		t.Fatal("provider's error chain should fire on a schema lookup failure")
	}
	if defaultErr == nil {
		t.Fatal("the trace's default error chain should also fire on a schema lookup failure")
	}
}

func TestDispatcherFiresDefaultMetadataForEveryRecord(t *testing.T) {
	host := newFakeHost()
	host.metadataFor = func(*RawRecord) ([]byte, error) { return []byte{0}, nil }

	guid := *MustParseGUID("{9E814AAD-3204-11D2-9A82-006008A86939}")
	trace := UserTrace("t", host)
	trace.AddProvider(NewProvider(guid))

	count := 0
	trace.DefaultMetadata(func(*MetadataView) { count++ })

	d := newTestDispatcher(host)
	rec := recWithName("Foo", 1)
	rec.Provider = guid
	d.dispatch(rec, trace.byGUID[guid], trace)

	if count != 1 {
		t.Fatalf("default metadata callback fired %d times, want 1", count)
	}
}
