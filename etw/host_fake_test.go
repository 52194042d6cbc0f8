package etw

import (
	"context"
	"sync"
	"sync/atomic"
)

// fakeHost is an in-process HostRuntime double: no OS calls, so the pure
// dispatch/session logic is exercised on any GOOS (spec.md §6.1's whole
// point for the HostRuntime seam).
type fakeHost struct {
	mu       sync.Mutex
	sessions map[SessionHandle]*fakeSession
	next     SessionHandle

	metadataFor func(rec *RawRecord) ([]byte, error) // nil => ErrSchemaNotFound
	queryErr    error

	startCalls  atomic.Int32
	enableCalls atomic.Int32
}

type fakeSession struct {
	name     string
	props    SessionProperties
	enabled  []EnableRequest
	stopped  bool
	pump     chan *RawRecord
	groupMax GroupMask
}

func newFakeHost() *fakeHost {
	return &fakeHost{sessions: make(map[SessionHandle]*fakeSession)}
}

func (h *fakeHost) StartSession(name string, props *SessionProperties) (SessionHandle, error) {
	h.startCalls.Add(1)
	h.mu.Lock()
	defer h.mu.Unlock()
	h.next++
	sh := h.next
	h.sessions[sh] = &fakeSession{name: name, props: *props, pump: make(chan *RawRecord, 64)}
	return sh, nil
}

func (h *fakeHost) OpenSession(name string) (SessionHandle, error) {
	return h.StartSession(name, &SessionProperties{})
}

func (h *fakeHost) session(sh SessionHandle) *fakeSession {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sessions[sh]
}

func (h *fakeHost) EnableProvider(sh SessionHandle, req EnableRequest) error {
	h.enableCalls.Add(1)
	s := h.session(sh)
	if s == nil {
		return newHostError(ErrInvalidParameter, 0, "unknown session")
	}
	h.mu.Lock()
	s.enabled = append(s.enabled, req)
	h.mu.Unlock()
	return nil
}

func (h *fakeHost) SetTraceInformation(sh SessionHandle, mask GroupMask) error {
	s := h.session(sh)
	if s == nil {
		return newHostError(ErrInvalidParameter, 0, "unknown session")
	}
	h.mu.Lock()
	s.groupMax = mask
	h.mu.Unlock()
	return nil
}

func (h *fakeHost) ProcessEvents(ctx context.Context, sh SessionHandle, onRecord func(*RawRecord)) error {
	s := h.session(sh)
	if s == nil {
		return newHostError(ErrInvalidParameter, 0, "unknown session")
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case rec, ok := <-s.pump:
			if !ok {
				return nil
			}
			onRecord(rec)
		}
	}
}

func (h *fakeHost) CloseSession(sh SessionHandle) error {
	s := h.session(sh)
	if s == nil {
		return nil
	}
	h.mu.Lock()
	if s.stopped {
		h.mu.Unlock()
		return nil
	}
	s.stopped = true
	h.mu.Unlock()
	close(s.pump)
	return nil
}

func (h *fakeHost) GetEventMetadata(rec *RawRecord, buf []byte) (int, error) {
	if h.metadataFor == nil {
		return 0, newHostError(ErrSchemaNotFound, 0, "no fake metadata configured")
	}
	full, err := h.metadataFor(rec)
	if err != nil {
		return 0, err
	}
	if buf == nil {
		return len(full), nil
	}
	n := copy(buf, full)
	return n, nil
}

func (h *fakeHost) QueryStats(sh SessionHandle) (SessionStats, error) {
	if h.queryErr != nil {
		return SessionStats{}, h.queryErr
	}
	return SessionStats{BuffersProcessed: 1}, nil
}

// deliver pushes rec through sh's pump, as if the host had received it.
func (h *fakeHost) deliver(sh SessionHandle, rec *RawRecord) {
	s := h.session(sh)
	s.pump <- rec
}
