package etw

import (
	"fmt"
	"strconv"
	"strings"
)

// TraceFlag is the trace_flags bit set spec.md §4.4 names, mirroring
// EVENT_ENABLE_PROPERTY_* semantics. Unknown bits are passed through
// verbatim to the host.
type TraceFlag uint32

const (
	TraceFlagSID                     TraceFlag = 0x00000001 // include user SID
	TraceFlagTerminalSessionID       TraceFlag = 0x00000002 // include terminal session id
	TraceFlagStackTrace              TraceFlag = 0x00000004 // include call stack trace
	TraceFlagPSMKey                  TraceFlag = 0x00000008
	TraceFlagIgnoreKeyword0          TraceFlag = 0x00000010 // filter out events with keyword 0
	TraceFlagProviderGroup           TraceFlag = 0x00000020 // enable a provider group, not an individual provider
	TraceFlagEnableKeyword0          TraceFlag = 0x00000040
	TraceFlagProcessStartKey         TraceFlag = 0x00000080 // include process start key
	TraceFlagEventKey                TraceFlag = 0x00000100 // include a unique event key
	TraceFlagExcludeInPrivate        TraceFlag = 0x00000200
	TraceFlagEnableSilos             TraceFlag = 0x00000400
	TraceFlagSourceContainerTracking TraceFlag = 0x00000800
)

// EnableLevel constants, standard ETW severities (spec.md §4.4).
const (
	LevelCritical    uint8 = 1
	LevelError       uint8 = 2
	LevelWarning     uint8 = 3
	LevelInformation uint8 = 4
	LevelVerbose     uint8 = 5
	LevelAll         uint8 = 0xff
)

// Provider is an event source descriptor: identity, keyword/level masks,
// trace flags, an ordered filter list, and callback chains (spec.md §3, C4).
// Providers are created by the host and mutated only before Trace.Start;
// after Start, the provider set and each provider's filter list are frozen
// for dispatch (spec.md's Lifecycles).
type Provider struct {
	GUID GUID
	Name string

	Level           uint8
	MatchAnyKeyword uint64
	MatchAllKeyword uint64
	TraceFlags      TraceFlag

	Filters []*EventFilter

	onEvent []func(*TypedRecord)
	onError []func(*ErrorView)

	captureState bool // set by EnableRundownEvents

	kernelFlags     KernelNtFlag // set by KernelProvider
	kernelGroupMask *GroupMask   // set by KernelGroupMaskProvider
}

// NewProvider constructs a Provider for guid with the all-levels,
// all-keywords defaults the teacher's defaultProvider used.
func NewProvider(guid GUID) *Provider {
	return &Provider{
		GUID:            guid,
		Level:           LevelAll,
		MatchAnyKeyword: 0xffffffffffffffff,
		TraceFlags:      TraceFlagProcessStartKey,
	}
}

// AddFilter appends f to the provider's ordered filter list.
func (p *Provider) AddFilter(f *EventFilter) *Provider {
	p.Filters = append(p.Filters, f)
	return p
}

// OnEvent appends a provider-level event callback, invoked after every
// filter has had a chance to fire (spec.md §4.4 step 2).
func (p *Provider) OnEvent(cb func(*TypedRecord)) *Provider {
	p.onEvent = append(p.onEvent, cb)
	return p
}

// OnError appends a provider-level error callback.
func (p *Provider) OnError(cb func(*ErrorView)) *Provider {
	p.onError = append(p.onError, cb)
	return p
}

// EnableRundownEvents marks the provider for a capture-state/DCStart
// rundown request instead of a normal enablement (spec.md §4.4,
// SPEC_FULL.md's RundownRequest supplement).
func (p *Provider) EnableRundownEvents() *Provider {
	p.captureState = true
	return p
}

// dispatch implements the per-provider half of spec.md §4.4/§4.7: filters
// fire in insertion order, then the provider's own event chain.
func (p *Provider) dispatch(tr *TypedRecord, ev *ErrorView) {
	for _, f := range p.Filters {
		f.dispatch(tr, ev)
	}
	for _, cb := range p.onEvent {
		p.safeCall(cb, tr, ev)
	}
}

func (p *Provider) safeCall(cb func(*TypedRecord), tr *TypedRecord, ev *ErrorView) {
	defer func() {
		if r := recover(); r != nil {
			ev.err = newHostError(ErrUnknownHost, 0, "provider callback panic").withEventContext(tr.rec.Provider, tr.rec.EventID)
			p.dispatchError(ev)
		}
	}()
	cb(tr)
}

// dispatchErrors runs only the error chains (filters then provider), used
// when schema lookup failed earlier in the dispatcher (spec.md §4.4 step 3).
func (p *Provider) dispatchErrors(ev *ErrorView) {
	for _, f := range p.Filters {
		f.dispatchErrorRaw(ev)
	}
	p.dispatchError(ev)
}

func (p *Provider) dispatchError(ev *ErrorView) {
	for _, cb := range p.onError {
		cb(ev)
	}
}

// MustParseProvider wraps ParseProvider and panics on error, kept as a
// convenience constructor path per SPEC_FULL.md's supplemental features.
func MustParseProvider(s string) *Provider {
	p, err := ParseProvider(s)
	if err != nil {
		panic(err)
	}
	return p
}

// ErrUnknownProvider is returned when ParseProvider cannot resolve a
// symbolic provider name.
var ErrUnknownProvider = fmt.Errorf("%w: unknown provider", ErrInvalidParameter)

// ParseProvider parses a configuration string into a Provider.
//
// The format is strictly positional:
//
//	(Name|GUID)[:Level[:EventIDs[:MatchAnyKeyword[:MatchAllKeyword]]]]
//
// An empty chunk means "use the default for this position". Example:
// "{EDD08927-9CC4-4E65-B970-C2560FB5C289}:0xff:12,13,14". GUID resolution
// for a symbolic name goes through resolveProviderByName, which resolves no
// names on any platform, so only literal GUID strings resolve.
func ParseProvider(s string) (*Provider, error) {
	parts := strings.Split(s, ":")
	if len(parts) == 0 || parts[0] == "" {
		return nil, ErrUnknownProvider
	}

	guid, name, err := resolveProviderIdentity(parts[0])
	if err != nil {
		return nil, err
	}
	p := NewProvider(guid)
	p.Name = name

	for i := 1; i < len(parts); i++ {
		chunk := parts[i]
		if chunk == "" {
			continue
		}
		switch i {
		case 1:
			u, err := strconv.ParseUint(chunk, 0, 8)
			if err != nil {
				return nil, fmt.Errorf("failed to parse EnableLevel %q: %w", chunk, err)
			}
			p.Level = uint8(u)
		case 2:
			ids, err := parseEventIDList(chunk)
			if err != nil {
				return nil, err
			}
			if len(ids) > 0 {
				p.AddFilter(NewEventIDsFilter(ids...))
			}
		case 3:
			u, err := strconv.ParseUint(chunk, 0, 64)
			if err != nil {
				return nil, fmt.Errorf("failed to parse MatchAnyKeyword %q: %w", chunk, err)
			}
			p.MatchAnyKeyword = u
		case 4:
			u, err := strconv.ParseUint(chunk, 0, 64)
			if err != nil {
				return nil, fmt.Errorf("failed to parse MatchAllKeyword %q: %w", chunk, err)
			}
			p.MatchAllKeyword = u
		}
	}
	return p, nil
}

func parseEventIDList(chunk string) ([]uint16, error) {
	idStrings := strings.Split(chunk, ",")
	ids := make([]uint16, 0, len(idStrings))
	for _, idStr := range idStrings {
		u, err := strconv.ParseUint(idStr, 0, 16)
		if err != nil {
			return nil, fmt.Errorf("failed to parse EventID %q: %w", idStr, err)
		}
		ids = append(ids, uint16(u))
	}
	return ids, nil
}

// resolveProviderIdentity resolves s (a GUID literal or a symbolic name)
// into a GUID and display name. GUID literals resolve on every platform;
// symbolic names require the windows-only provider enumeration binding.
func resolveProviderIdentity(s string) (GUID, string, error) {
	if g, err := ParseGUID(s); err == nil {
		return *g, s, nil
	}
	guid, name, ok := resolveProviderByName(s)
	if !ok {
		return GUID{}, "", fmt.Errorf("%w: %s", ErrUnknownProvider, s)
	}
	return guid, name, nil
}
