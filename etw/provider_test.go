package etw

import "testing"

func TestNewProviderDefaults(t *testing.T) {
	guid := *MustParseGUID("{9E814AAD-3204-11D2-9A82-006008A86939}")
	p := NewProvider(guid)
	if p.Level != LevelAll {
		t.Fatalf("Level = %d, want LevelAll", p.Level)
	}
	if p.MatchAnyKeyword != 0xffffffffffffffff {
		t.Fatalf("MatchAnyKeyword = %#x, want all bits set", p.MatchAnyKeyword)
	}
}

func TestProviderDispatchOrderFiltersBeforeOwnCallbacks(t *testing.T) {
	var order []string
	p := NewProvider(GUID{})
	p.AddFilter(NewEventFilter(nil).OnEvent(func(*TypedRecord) { order = append(order, "filter") }))
	p.OnEvent(func(*TypedRecord) { order = append(order, "provider") })

	rec := &RawRecord{}
	tr := &TypedRecord{rec: rec}
	p.dispatch(tr, &ErrorView{rec: rec})

	if len(order) != 2 || order[0] != "filter" || order[1] != "provider" {
		t.Fatalf("dispatch order = %v, want [filter provider]", order)
	}
}

func TestProviderCallbackPanicIsRecovered(t *testing.T) {
	var caught *ErrorView
	p := NewProvider(GUID{})
	p.OnEvent(func(*TypedRecord) { panic("boom") })
	p.OnError(func(e *ErrorView) { caught = e })

	rec := &RawRecord{}
	tr := &TypedRecord{rec: rec}
	p.dispatch(tr, &ErrorView{rec: rec})

	if caught == nil {
		t.Fatal("provider-level callback panic should route to the provider's error chain")
	}
}

func TestParseProviderGUIDOnly(t *testing.T) {
	p, err := ParseProvider("{9E814AAD-3204-11D2-9A82-006008A86939}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Level != LevelAll {
		t.Fatalf("Level should default to LevelAll when unspecified, got %d", p.Level)
	}
}

func TestParseProviderFullySpecified(t *testing.T) {
	p, err := ParseProvider("{9E814AAD-3204-11D2-9A82-006008A86939}:0x4:12,13:0xff:0x0f")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Level != 4 {
		t.Fatalf("Level = %d, want 4", p.Level)
	}
	if p.MatchAnyKeyword != 0xff {
		t.Fatalf("MatchAnyKeyword = %#x, want 0xff", p.MatchAnyKeyword)
	}
	if p.MatchAllKeyword != 0x0f {
		t.Fatalf("MatchAllKeyword = %#x, want 0x0f", p.MatchAllKeyword)
	}
	if len(p.Filters) != 1 || len(p.Filters[0].EventIDs()) != 2 {
		t.Fatalf("expected one filter with 2 event ids, got %+v", p.Filters)
	}
}

func TestParseProviderSkipsEmptyChunks(t *testing.T) {
	p, err := ParseProvider("{9E814AAD-3204-11D2-9A82-006008A86939}::::0x0f")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Level != LevelAll {
		t.Fatalf("empty Level chunk should keep the default, got %d", p.Level)
	}
	if p.MatchAllKeyword != 0x0f {
		t.Fatalf("MatchAllKeyword = %#x, want 0x0f", p.MatchAllKeyword)
	}
}

func TestParseProviderRejectsUnknownName(t *testing.T) {
	if _, err := ParseProvider("Some-Symbolic-Name-Not-A-Guid"); err == nil {
		t.Fatal("a symbolic name cannot resolve on a non-windows host and should error")
	}
}

func TestMustParseProviderPanicsOnBadInput(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	MustParseProvider("not-a-provider")
}
