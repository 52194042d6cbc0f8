//go:build !windows

package etw

import "context"

// unsupportedHostRuntime answers every HostRuntime call with
// ErrUnsupportedPlatform (spec.md §4.8, C8). It exists so the package
// builds and links on non-Windows hosts; the pure logic (schema cache,
// predicates, filters, dispatch, trace state machine) is exercised on any
// GOOS via a fake HostRuntime in tests instead.
type unsupportedHostRuntime struct{}

// NewWindowsHost on a non-Windows GOOS returns a HostRuntime whose every
// method fails with ErrUnsupportedPlatform, so callers can still construct
// a Trace and observe the platform error at Open/Start rather than at
// compile time.
func NewWindowsHost() HostRuntime { return unsupportedHostRuntime{} }

func (unsupportedHostRuntime) StartSession(string, *SessionProperties) (SessionHandle, error) {
	return 0, ErrUnsupportedPlatform
}

func (unsupportedHostRuntime) OpenSession(string) (SessionHandle, error) {
	return 0, ErrUnsupportedPlatform
}

func (unsupportedHostRuntime) EnableProvider(SessionHandle, EnableRequest) error {
	return ErrUnsupportedPlatform
}

func (unsupportedHostRuntime) SetTraceInformation(SessionHandle, GroupMask) error {
	return ErrUnsupportedPlatform
}

func (unsupportedHostRuntime) ProcessEvents(context.Context, SessionHandle, func(*RawRecord)) error {
	return ErrUnsupportedPlatform
}

func (unsupportedHostRuntime) CloseSession(SessionHandle) error {
	return ErrUnsupportedPlatform
}

func (unsupportedHostRuntime) GetEventMetadata(*RawRecord, []byte) (int, error) {
	return 0, ErrUnsupportedPlatform
}

func (unsupportedHostRuntime) QueryStats(SessionHandle) (SessionStats, error) {
	return SessionStats{}, ErrUnsupportedPlatform
}

// resolveProviderByName has no non-Windows implementation; literal GUID
// strings still resolve via ParseGUID regardless of platform.
func resolveProviderByName(name string) (GUID, string, bool) {
	return GUID{}, "", false
}
