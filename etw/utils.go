package etw

import (
	"crypto/rand"
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"time"
	"unsafe"
)

// noCopy may be added to structs which must not be copied after first use.
//
// See https://golang.org/issues/8005#issuecomment-190753527 for details.
// Must not be embedded, due to the Lock and Unlock methods.
//
//lint:ignore U1000 explanation
type noCopy struct{}

// Lock is a no-op used by -copylocks checker from `go vet`.
func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

const filetimeEpoch = 116444736000000000

// FromFiletime converts a Windows FILETIME (100-nanosecond intervals since
// 1601) to a local time.Time.
//
//go:inline
func FromFiletime(fileTime int64) time.Time {
	return time.Unix(0, (fileTime-filetimeEpoch)*100)
}

// FromFiletimeNanos converts a Windows FILETIME to Unix nanoseconds.
//
//go:inline
func FromFiletimeNanos(fileTime int64) int64 {
	return (fileTime - filetimeEpoch) * 100
}

// FromFiletimeUTC converts a Windows FILETIME to a UTC time.Time.
//
//go:inline
func FromFiletimeUTC(fileTime int64) time.Time {
	return time.Unix(0, (fileTime-filetimeEpoch)*100).UTC()
}

// copyData copies size bytes starting at pointer into a freshly allocated
// slice that does not alias the source memory.
func copyData(pointer unsafe.Pointer, size int) []byte {
	if size <= 0 {
		return nil
	}
	src := unsafe.Slice((*byte)(pointer), size)
	dst := make([]byte, size)
	copy(dst, src)
	return dst
}

// newUUID generates a random UUID-shaped identifier.
func newUUID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return fmt.Sprintf("%X-%X-%X-%X-%X", b[0:4], b[4:6], b[6:8], b[8:10], b[10:]), nil
}

// getGoroutineID extracts the calling goroutine's id from a runtime stack
// dump. The schema cache and dispatcher are documented as single-goroutine
// per trace; this is used only in debug-tagged assertions to catch a
// concurrent misuse during development, never on the hot path in release
// builds.
func getGoroutineID() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	id := strings.Fields(strings.TrimPrefix(string(buf[:n]), "goroutine "))[0]
	val, _ := strconv.ParseInt(id, 10, 64)
	return val
}
