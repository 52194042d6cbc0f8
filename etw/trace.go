package etw

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// TraceState is one node of the Constructed → Configured → Open → Running →
// Stopped → Disposed lifecycle (spec.md §4.6.1).
type TraceState int32

const (
	TraceConstructed TraceState = iota
	TraceConfigured
	TraceOpen
	TraceRunning
	TraceStopped
	TraceDisposed
)

func (s TraceState) String() string {
	switch s {
	case TraceConstructed:
		return "Constructed"
	case TraceConfigured:
		return "Configured"
	case TraceOpen:
		return "Open"
	case TraceRunning:
		return "Running"
	case TraceStopped:
		return "Stopped"
	case TraceDisposed:
		return "Disposed"
	default:
		return "Unknown"
	}
}

// TraceKind distinguishes a user-mode session from the kernel logger. Both
// kinds start their host session under the name the caller gives; nothing
// in this package substitutes the well-known kernel logger session name.
type TraceKind int

const (
	UserTraceKind TraceKind = iota
	KernelTraceKind
)

// Trace owns a host session, its provider set, and the dispatch loop
// (spec.md §3/§4.6, C6). Providers may only be attached before Start; after
// Start the provider set and each provider's filter list are frozen for
// dispatch purposes (spec.md's Lifecycles).
type Trace struct {
	Name string
	kind TraceKind

	host  HostRuntime
	state atomic.Int32

	mu        sync.Mutex
	handle    SessionHandle
	props     SessionProperties
	providers []*Provider
	byGUID    map[GUID][]*Provider
	groupMask *GroupMask

	dec decoder

	defaultMetadata []func(*MetadataView)
	defaultEvent    []func(*TypedRecord)
	defaultError    []func(*ErrorView)

	buffersProcessed atomic.Uint64
	eventsHandled    atomic.Uint64
	eventsLost       atomic.Uint64

	cancel context.CancelFunc
}

// newTrace is the shared constructor behind UserTrace/KernelTrace.
func newTrace(kind TraceKind, name string, host HostRuntime, dec decoder) *Trace {
	t := &Trace{
		Name:   name,
		kind:   kind,
		host:   host,
		props:  DefaultSessionProperties(),
		byGUID: make(map[GUID][]*Provider),
		dec:    dec,
	}
	t.state.Store(int32(TraceConstructed))
	return t
}

// UserTrace constructs a user-mode real-time trace bound to host, with the
// given session name (spec.md §6, "Consumer API": UserTrace(name?)).
func UserTrace(name string, host HostRuntime) *Trace {
	return newTrace(UserTraceKind, name, host, defaultDecoder{})
}

// KernelTrace constructs a kernel-logger trace bound to host. The session
// starts under name as given; neither Trace nor the windows binding
// replaces it with the "NT Kernel Logger" session name.
func KernelTrace(name string, host HostRuntime) *Trace {
	return newTrace(KernelTraceKind, name, host, defaultDecoder{})
}

// State reports the trace's current lifecycle state. Safe for concurrent
// use from any goroutine (spec.md §5, "Counters ... word-sized ... possibly
// stale but well-formed").
func (t *Trace) State() TraceState { return TraceState(t.state.Load()) }

// SetTraceProperties configures session properties. Must precede Open
// (spec.md §4.6.1). Values are clamped per SessionProperties.Clamp.
func (t *Trace) SetTraceProperties(p SessionProperties) *Trace {
	p.Clamp()
	t.mu.Lock()
	t.props = p
	t.mu.Unlock()
	t.state.CompareAndSwap(int32(TraceConstructed), int32(TraceConfigured))
	return t
}

// SetGroupMask installs the PERFINFO_GROUPMASK words applied via
// HostRuntime.SetTraceInformation before providers are enabled (spec.md
// §4.5, C5's group-mask variant). Only meaningful for KernelTraceKind.
func (t *Trace) SetGroupMask(mask GroupMask) *Trace {
	t.mu.Lock()
	t.groupMask = &mask
	t.mu.Unlock()
	return t
}

// AddProvider attaches p to the trace. Must be called before Start (spec.md
// Lifecycles: "Providers are ... mutated ... only before Trace.start").
func (t *Trace) AddProvider(p *Provider) *Trace {
	t.mu.Lock()
	t.providers = append(t.providers, p)
	t.byGUID[p.GUID] = append(t.byGUID[p.GUID], p)
	t.mu.Unlock()
	return t
}

// DefaultMetadata registers a callback fired for every record whether or
// not its provider GUID is registered (spec.md §4.6.4/§4.7 step 3).
func (t *Trace) DefaultMetadata(cb func(*MetadataView)) *Trace {
	t.defaultMetadata = append(t.defaultMetadata, cb)
	return t
}

// DefaultEvent registers a callback fired only for records whose provider
// GUID matches no registered Provider (spec.md §4.6.4).
func (t *Trace) DefaultEvent(cb func(*TypedRecord)) *Trace {
	t.defaultEvent = append(t.defaultEvent, cb)
	return t
}

// DefaultError registers the trace-wide fallback error callback (spec.md
// §4.6.4, §7 "per-event errors").
func (t *Trace) DefaultError(cb func(*ErrorView)) *Trace {
	t.defaultError = append(t.defaultError, cb)
	return t
}

func (t *Trace) fireDefaultMetadata(m *MetadataView) {
	for _, cb := range t.defaultMetadata {
		cb(m)
	}
}

func (t *Trace) fireDefaultEvent(r *TypedRecord) {
	for _, cb := range t.defaultEvent {
		cb(r)
	}
}

func (t *Trace) fireDefaultError(e *ErrorView) {
	for _, cb := range t.defaultError {
		cb(e)
	}
}

// Open creates the session with the host if it has not been created yet
// (spec.md §4.6.1). Start calls Open automatically if it was skipped.
func (t *Trace) Open() error {
	if t.State() >= TraceOpen {
		return nil
	}
	t.mu.Lock()
	if t.kind == KernelTraceKind {
		t.props.ControlGUID = *systemTraceControlGuid
	}
	t.mu.Unlock()
	h, err := t.host.StartSession(t.Name, &t.props)
	if err != nil {
		return err
	}
	t.mu.Lock()
	t.handle = h
	t.mu.Unlock()
	t.state.Store(int32(TraceOpen))
	seslog.Info().Str("trace", t.Name).Msg("session opened")
	return nil
}

// enablement is the union-collapsed per-GUID request spec.md §4.6.2
// describes: multiple Providers sharing a GUID contribute their level/any/
// all/trace-flags via bitwise OR and their event-id sets via set union.
type enablement struct {
	level      uint8
	any        uint64
	all        uint64
	flags      uint32
	ids        map[uint16]struct{}
	capture    bool
}

func (t *Trace) buildEnablements() map[GUID]*enablement {
	byGUID := make(map[GUID]*enablement)
	for _, p := range t.providers {
		e, ok := byGUID[p.GUID]
		if !ok {
			e = &enablement{ids: make(map[uint16]struct{})}
			byGUID[p.GUID] = e
		}
		e.level |= p.Level
		e.any |= p.MatchAnyKeyword
		e.all |= p.MatchAllKeyword
		e.flags |= uint32(p.TraceFlags)
		e.capture = e.capture || p.captureState
		for _, f := range p.Filters {
			for _, id := range f.EventIDs() {
				e.ids[id] = struct{}{}
			}
		}
	}
	return byGUID
}

// Start transitions the trace to Running: it enables every provider with
// its union-collapsed parameters (spec.md §4.6.2), then blocks the calling
// goroutine on the host's pump call until Stop is invoked from elsewhere
// (spec.md §5). Start is meant to be called on its own dedicated goroutine;
// it does not return until the pump does.
func (t *Trace) Start() error {
	t.mu.Lock()
	for _, p := range t.providers {
		if p.kernelFlags != 0 {
			t.props.EnableFlags |= uint32(p.kernelFlags)
		}
		if p.kernelGroupMask != nil {
			gm := t.groupMask
			if gm == nil {
				gm = &GroupMask{}
			}
			for i := range gm {
				gm[i] |= p.kernelGroupMask[i]
			}
			t.groupMask = gm
		}
	}
	t.mu.Unlock()

	if err := t.Open(); err != nil {
		return err
	}

	t.mu.Lock()
	h := t.handle
	groupMask := t.groupMask
	t.mu.Unlock()

	if t.kind == KernelTraceKind && groupMask != nil {
		if err := t.host.SetTraceInformation(h, *groupMask); err != nil {
			return err
		}
	}

	for guid, e := range t.buildEnablements() {
		req := EnableRequest{
			Provider:        guid,
			Level:           e.level,
			MatchAnyKeyword: e.any,
			MatchAllKeyword: e.all,
			TraceFlags:      e.flags,
			CaptureState:    e.capture,
		}
		if len(e.ids) > 0 {
			ids := make([]uint16, 0, len(e.ids))
			for id := range e.ids {
				ids = append(ids, id)
			}
			req.EventIDs = &EventIDFilter{FilterIn: true, IDs: ids}
		}
		if err := t.host.EnableProvider(h, req); err != nil {
			return fmt.Errorf("enable provider %s: %w", guid.String(), err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.mu.Lock()
	t.cancel = cancel
	t.mu.Unlock()

	t.state.Store(int32(TraceRunning))
	seslog.Info().Str("trace", t.Name).Int("providers", len(t.providers)).Msg("trace running")

	disp := newDispatcher(NewSchemaCache(t.host), t.dec)
	err := t.host.ProcessEvents(ctx, h, func(rec *RawRecord) {
		t.eventsHandled.Add(1)
		disp.dispatch(rec, t.byGUID[rec.Provider], t)
	})

	t.state.Store(int32(TraceStopped))
	return err
}

// Stop closes the session, causing Start's pump call to return. Must be
// invoked from a different goroutine than Start (spec.md §4.6.1/§5).
// Idempotent: safe to call repeatedly and safe to call before Start reaches
// the pump.
func (t *Trace) Stop() error {
	t.mu.Lock()
	h := t.handle
	cancel := t.cancel
	t.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if t.State() < TraceOpen {
		t.state.Store(int32(TraceStopped))
		return nil
	}
	err := t.host.CloseSession(h)
	t.state.CompareAndSwap(int32(TraceRunning), int32(TraceStopped))
	t.state.CompareAndSwap(int32(TraceOpen), int32(TraceStopped))
	return err
}

// Dispose releases all resources, calling Stop first if needed. Idempotent.
func (t *Trace) Dispose() error {
	err := t.Stop()
	t.state.Store(int32(TraceDisposed))
	return err
}

// BuffersProcessed returns the host's live buffers-processed counter
// (spec.md §4.6.3). Never reset by the core on stop.
func (t *Trace) BuffersProcessed() uint64 {
	stats, err := t.host.QueryStats(t.handle)
	if err != nil {
		return t.buffersProcessed.Load()
	}
	return stats.BuffersProcessed
}

// QueryStats surfaces the host's live counters verbatim.
func (t *Trace) QueryStats() (SessionStats, error) {
	return t.host.QueryStats(t.handle)
}

// defaultDecoder is the zero-value decoder used until a host binding
// installs a real one; every read fails with ErrSchemaNotFound rather than
// panicking, keeping the pure logic testable without a parser dependency
// (spec.md §1, "decode ... out of scope").
type defaultDecoder struct{}

func (defaultDecoder) Decode(*RawRecord, *SchemaBlob, string) (any, error) {
	return nil, ErrSchemaNotFound
}
