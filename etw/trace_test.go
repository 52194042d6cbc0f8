package etw

import (
	"sync"
	"testing"
	"time"
)

func TestTraceLifecycleStates(t *testing.T) {
	host := newFakeHost()
	tr := UserTrace("t", host)
	if tr.State() != TraceConstructed {
		t.Fatalf("new trace state = %v, want Constructed", tr.State())
	}

	tr.SetTraceProperties(DefaultSessionProperties())
	if tr.State() != TraceConfigured {
		t.Fatalf("state after SetTraceProperties = %v, want Configured", tr.State())
	}

	if err := tr.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if tr.State() != TraceOpen {
		t.Fatalf("state after Open = %v, want Open", tr.State())
	}
}

func TestTraceStopBeforeStartIsIdempotent(t *testing.T) {
	host := newFakeHost()
	tr := UserTrace("t", host)
	if err := tr.Stop(); err != nil {
		t.Fatalf("Stop on an unopened trace should be a no-op, got: %v", err)
	}
	if tr.State() != TraceStopped {
		t.Fatalf("state = %v, want Stopped", tr.State())
	}
	if err := tr.Stop(); err != nil {
		t.Fatalf("second Stop should also be a no-op, got: %v", err)
	}
}

func TestTraceUnionCollapsesSharedGUID(t *testing.T) {
	host := newFakeHost()
	guid := *MustParseGUID("{9E814AAD-3204-11D2-9A82-006008A86939}")

	tr := UserTrace("t", host)
	p1 := NewProvider(guid)
	p1.Level = LevelWarning
	p1.MatchAnyKeyword = 0x1
	p1.AddFilter(NewEventIDsFilter(1, 2))

	p2 := NewProvider(guid)
	p2.Level = LevelCritical
	p2.MatchAnyKeyword = 0x2
	p2.AddFilter(NewEventIDsFilter(2, 3))

	tr.AddProvider(p1).AddProvider(p2)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = tr.Start()
	}()

	waitForState(t, tr, TraceRunning)
	if err := tr.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	wg.Wait()

	sess := host.session(tr.handle)
	if len(sess.enabled) != 1 {
		t.Fatalf("expected exactly one union-collapsed EnableProvider call, got %d", len(sess.enabled))
	}
	req := sess.enabled[0]
	if req.Level != LevelWarning|LevelCritical {
		t.Fatalf("Level = %d, want OR of both providers' levels", req.Level)
	}
	if req.MatchAnyKeyword != 0x3 {
		t.Fatalf("MatchAnyKeyword = %#x, want 0x3", req.MatchAnyKeyword)
	}
	if req.EventIDs == nil || len(req.EventIDs.IDs) != 3 {
		t.Fatalf("expected a unioned set of 3 event ids, got %+v", req.EventIDs)
	}
}

func TestTraceDisposeStopsAndMarksDisposed(t *testing.T) {
	host := newFakeHost()
	tr := UserTrace("t", host)
	if err := tr.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := tr.Dispose(); err != nil {
		t.Fatalf("Dispose: %v", err)
	}
	if tr.State() != TraceDisposed {
		t.Fatalf("state = %v, want Disposed", tr.State())
	}
}

func TestTraceDispatchesDeliveredRecordsToProvider(t *testing.T) {
	host := newFakeHost()
	host.metadataFor = func(*RawRecord) ([]byte, error) { return []byte{0}, nil }

	guid := *MustParseGUID("{9E814AAD-3204-11D2-9A82-006008A86939}")
	received := make(chan *TypedRecord, 1)
	p := NewProvider(guid).OnEvent(func(tr *TypedRecord) { received <- tr })

	tr := UserTrace("t", host)
	tr.AddProvider(p)

	go func() { _ = tr.Start() }()
	waitForState(t, tr, TraceRunning)

	rec := recWithName("Foo", 1)
	rec.Provider = guid
	host.deliver(tr.handle, rec)

	select {
	case got := <-received:
		if got.Raw().EventID != 1 {
			t.Fatalf("EventID = %d, want 1", got.Raw().EventID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for dispatched record")
	}

	if err := tr.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

func waitForState(t *testing.T, tr *Trace, want TraceState) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if tr.State() == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("trace never reached state %v, stuck at %v", want, tr.State())
}
