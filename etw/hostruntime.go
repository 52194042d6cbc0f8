package etw

import "context"

// SessionHandle is an opaque handle to a host tracing session. The concrete
// value is host-defined; core logic only ever compares it or hands it back
// to the HostRuntime that produced it.
type SessionHandle uintptr

// SessionProperties configures a session at the Configured lifecycle state.
// Field names and units follow EVENT_TRACE_PROPERTIES_V2, reduced to the
// subset spec.md's Trace Session names.
type SessionProperties struct {
	BufferSizeKB      uint32
	MinimumBuffers    uint32
	MaximumBuffers    uint32
	FlushTimerSeconds uint32
	LogFileMode       uint32

	// EnableFlags carries the legacy NT Kernel Logger's EVENT_TRACE_FLAG_*
	// bits (spec.md §4.5, "Flag-based" kernel provider). Union-collapsed
	// from every attached flag-based KernelProvider at Trace.Start.
	EnableFlags uint32

	// ControlGUID overrides EVENT_TRACE_PROPERTIES.Wnode.GUID. A
	// KernelTrace sets it to the well-known NT Kernel Logger control GUID
	// before Open; zero means "let the host pick" (a fresh session GUID).
	ControlGUID GUID
}

// maxBufferSizeKB is the host-enforced ceiling on BufferSizeKB.
const maxBufferSizeKB = 1024

// DefaultSessionProperties returns the properties a Trace starts with before
// any call to SetTraceProperties.
func DefaultSessionProperties() SessionProperties {
	return SessionProperties{
		BufferSizeKB:      64,
		MinimumBuffers:    2,
		MaximumBuffers:    64,
		FlushTimerSeconds: 1,
		LogFileMode:       LogFileModeRealTime,
	}
}

// Clamp enforces the invariants spec.md §4.6.1 names on session properties,
// in place.
func (p *SessionProperties) Clamp() {
	if p.BufferSizeKB > maxBufferSizeKB {
		p.BufferSizeKB = maxBufferSizeKB
	}
	if p.BufferSizeKB == 0 {
		p.BufferSizeKB = 64
	}
	if p.MaximumBuffers < p.MinimumBuffers {
		p.MaximumBuffers = p.MinimumBuffers
	}
}

// LogFileMode bits, a reduced subset of EVENT_TRACE_PROPERTIES.LogFileMode.
const (
	LogFileModeRealTime           uint32 = 0x00000100 // EVENT_TRACE_REAL_TIME_MODE
	LogFileModeNoPerProcBuffering uint32 = 0x10000000 // EVENT_TRACE_NO_PER_PROCESSOR_BUFFERING
	LogFileModeSystemLogger       uint32 = 0x02000000 // EVENT_TRACE_SYSTEM_LOGGER_MODE
	LogFileModePagedMemory        uint32 = 0x01000000 // EVENT_TRACE_USE_PAGED_MEMORY
)

// EventIDFilter is the native per-event-ID registration half of a Filter,
// carried down to EnableRequest so the host can restrict delivery before it
// ever reaches user-mode.
type EventIDFilter struct {
	FilterIn bool
	IDs      []uint16
}

// EnableRequest is the union-collapsed enablement the trace issues once per
// GUID at start, per spec.md §4.6.2.
type EnableRequest struct {
	Provider        GUID
	Level           uint8
	MatchAnyKeyword uint64
	MatchAllKeyword uint64
	TraceFlags      uint32
	EventIDs        *EventIDFilter
	CaptureState    bool // EVENT_CONTROL_CODE_CAPTURE_STATE instead of ENABLE_PROVIDER
}

// GroupMask carries the eight PERFINFO_GROUPMASK words for a kernel
// group-mask session, applied via HostRuntime.SetTraceInformation.
type GroupMask [8]uint32

// SessionStats mirrors the counters query_stats() (spec.md §4.6.3) exposes:
// live values maintained by the host, never reset by the core on stop.
type SessionStats struct {
	BuffersProcessed    uint64
	EventsLost          uint64
	RealTimeBuffersLost uint64
	RealTimeEventsLost  uint64
}

// HostRuntime is the narrow contract the core dispatch/session logic needs
// from the underlying ETW ABI (spec.md §6.1). It is the seam that keeps the
// pure logic — identity, cache, predicate algebra, filter, provider, trace
// state machine — testable on any GOOS via a fake implementation, while
// confining real syscalls to a windows-only binding.
type HostRuntime interface {
	// StartSession creates a new session with the given name and properties.
	StartSession(name string, props *SessionProperties) (SessionHandle, error)
	// OpenSession attaches to an existing session by name.
	OpenSession(name string) (SessionHandle, error)
	// EnableProvider issues one union-collapsed enablement for req.Provider.
	EnableProvider(h SessionHandle, req EnableRequest) error
	// SetTraceInformation applies a kernel group mask to h before providers
	// are enabled, per the resolved Open Question in SPEC_FULL.md §9.
	SetTraceInformation(h SessionHandle, mask GroupMask) error
	// ProcessEvents blocks the calling (pump) thread, invoking onRecord for
	// each delivered record, until the session is closed or ctx is done.
	ProcessEvents(ctx context.Context, h SessionHandle, onRecord func(*RawRecord)) error
	// CloseSession stops and releases the session. Idempotent.
	CloseSession(h SessionHandle) error
	// GetEventMetadata fills buf with the schema blob for rec, two-phase:
	// called first with a nil/short buf to learn the needed size.
	GetEventMetadata(rec *RawRecord, buf []byte) (needed int, err error)
	// QueryStats returns the host's live counters for h.
	QueryStats(h SessionHandle) (SessionStats, error)
}
