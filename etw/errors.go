package etw

import (
	"errors"
	"fmt"
)

// Sentinel errors forming the closed C8 error taxonomy. Host bindings map
// their native status codes onto these via newHostError; core logic never
// constructs a raw error for a host-facing failure.
var (
	ErrSessionAlreadyRegistered = errors.New("etw: session already registered")
	ErrInvalidParameter         = errors.New("etw: invalid parameter")
	ErrNeedsElevation           = errors.New("etw: operation requires elevation")
	ErrSchemaNotFound           = errors.New("etw: event schema not found")
	ErrUnknownHost              = errors.New("etw: unknown host runtime error")
	ErrUnsupportedPlatform      = errors.New("etw: host runtime not available on this platform")
)

// Error wraps a sentinel from the C8 taxonomy with the context needed to
// diagnose it: the provider GUID and event id involved (when known) and the
// raw numeric status the host runtime returned.
type Error struct {
	Sentinel error
	Provider GUID
	EventID  uint16
	HostCode uint32
	Context  string
}

func (e *Error) Error() string {
	msg := e.Sentinel.Error()
	if e.Context != "" {
		msg += ": " + e.Context
	}
	if !e.Provider.IsZero() {
		msg += fmt.Sprintf(" (provider=%s", e.Provider.String())
		if e.EventID != 0 {
			msg += fmt.Sprintf(" id=%d", e.EventID)
		}
		msg += ")"
	}
	if e.HostCode != 0 {
		msg += fmt.Sprintf(" [host=0x%x]", e.HostCode)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Sentinel }

// newHostError builds an *Error from a C8 taxonomy sentinel chosen by the
// caller, the raw host status code (Win32 error-code conventions; 0 when
// there is none) and a context string. It does no classification itself.
func newHostError(sentinel error, code uint32, context string) *Error {
	return &Error{Sentinel: sentinel, HostCode: code, Context: context}
}

// withEventContext returns a shallow copy of e annotated with the provider
// and event id the failure was attributed to, for errors surfaced deep in
// the dispatcher where the original host error carries no such context.
func (e *Error) withEventContext(provider GUID, eventID uint16) *Error {
	cp := *e
	cp.Provider = provider
	cp.EventID = eventID
	return &cp
}
