//go:build windows

package etw

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

// windowsHost is the real HostRuntime binding: advapi32.dll/tdh.dll via
// syscall.NewLazyDLL, grounded on the sibling quentin-nozomi-microsoft-etw
// repo's winapi package (advapi32_syscall_windows.go, tdh_syscall_windows.go).
// Confines every actual Win32 call behind the HostRuntime seam so the rest
// of the package stays testable on any GOOS.
type windowsHost struct {
	mu      sync.Mutex
	next    SessionHandle
	byName  map[string]*winSession
	byHandle map[SessionHandle]*winSession
}

// NewWindowsHost constructs the production HostRuntime binding.
func NewWindowsHost() HostRuntime {
	return &windowsHost{
		byName:   make(map[string]*winSession),
		byHandle: make(map[SessionHandle]*winSession),
	}
}

// winSession bundles the two native handles a real-time ETW session needs:
// the controller handle from StartTraceW (used to enable providers and
// query/stop the session) and the consumer handle from OpenTraceW (used to
// pump events via ProcessTrace). Kept behind our own opaque SessionHandle.
type winSession struct {
	name       string
	control    syscall.Handle
	consumer   syscall.Handle
	hasConsumer bool
	onRecord   func(*RawRecord)
	closeOnce  sync.Once
}

var (
	advapi32Dll = syscall.NewLazyDLL("advapi32.dll")
	tdhDll      = syscall.NewLazyDLL("tdh.dll")

	procStartTraceW           = advapi32Dll.NewProc("StartTraceW")
	procControlTraceW         = advapi32Dll.NewProc("ControlTraceW")
	procEnableTraceEx2        = advapi32Dll.NewProc("EnableTraceEx2")
	procOpenTraceW            = advapi32Dll.NewProc("OpenTraceW")
	procProcessTrace          = advapi32Dll.NewProc("ProcessTrace")
	procCloseTrace            = advapi32Dll.NewProc("CloseTrace")
	procTraceSetInformation   = advapi32Dll.NewProc("TraceSetInformation")
	procTdhGetEventInformation = tdhDll.NewProc("TdhGetEventInformation")
)

const (
	evtTraceControlStop  = 1
	evtTraceControlQuery = 0

	evtTraceRealTimeMode = 0x00000100
	wnodeFlagAllData     = 0x00000001

	evtControlCodeEnableProvider  = 1
	evtControlCodeCaptureState    = 2

	processTraceModeRealTime    = 0x00000100
	processTraceModeEventRecord = 0x10000000

	// TraceSystemTraceEnableFlagsInfo, index 4 of the TRACE_INFO_CLASS
	// enumeration (evntrace.h) — the class SetTraceInformation targets for
	// a group-mask kernel session (spec.md §4.5).
	traceSystemTraceEnableFlagsInfo = 4

	eventFilterTypeEventID = 0x80000200
)

// wnodeHeader mirrors WNODE_HEADER, the fixed prefix of EVENT_TRACE_PROPERTIES.
type wnodeHeader struct {
	BufferSize    uint32
	ProviderID    uint32
	union1        uint64
	union2        int64
	GUID          windows.GUID
	ClientContext uint32
	Flags         uint32
}

// eventTraceProperties mirrors EVENT_TRACE_PROPERTIES. LoggerName/LogFileName
// are appended after this fixed part; LoggerNameOffset points at them.
type eventTraceProperties struct {
	Wnode               wnodeHeader
	BufferSize          uint32
	MinimumBuffers      uint32
	MaximumBuffers      uint32
	MaximumFileSize     uint32
	LogFileMode         uint32
	FlushTimer          uint32
	EnableFlags         uint32
	AgeLimit            int32
	NumberOfBuffers     uint32
	FreeBuffers         uint32
	EventsLost          uint32
	BuffersWritten      uint32
	LogBuffersLost      uint32
	RealTimeBuffersLost uint32
	LoggerThreadID      syscall.Handle
	LogFileNameOffset   uint32
	LoggerNameOffset    uint32
}

// tracePropertiesBuf allocates an EVENT_TRACE_PROPERTIES buffer with name
// appended past the fixed struct, per StartTraceW's documented layout.
func tracePropertiesBuf(name string, props *SessionProperties) ([]byte, *eventTraceProperties, error) {
	u16Name, err := syscall.UTF16FromString(name)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: session name %q", ErrInvalidParameter, name)
	}
	fixedSize := int(unsafe.Sizeof(eventTraceProperties{}))
	nameBytes := len(u16Name) * 2
	buf := make([]byte, fixedSize+nameBytes)

	p := (*eventTraceProperties)(unsafe.Pointer(&buf[0]))
	p.Wnode.BufferSize = uint32(len(buf))
	p.Wnode.ClientContext = 1
	p.Wnode.Flags = wnodeFlagAllData
	if !props.ControlGUID.IsZero() {
		p.Wnode.GUID = toWinGUID(&props.ControlGUID)
	}
	p.BufferSize = props.BufferSizeKB
	p.MinimumBuffers = props.MinimumBuffers
	p.MaximumBuffers = props.MaximumBuffers
	p.FlushTimer = props.FlushTimerSeconds
	p.LogFileMode = props.LogFileMode
	p.EnableFlags = props.EnableFlags
	p.LoggerNameOffset = uint32(fixedSize)

	copy(buf[fixedSize:], unsafe.Slice((*byte)(unsafe.Pointer(&u16Name[0])), nameBytes))
	return buf, p, nil
}

func (h *windowsHost) StartSession(name string, props *SessionProperties) (SessionHandle, error) {
	p := *props
	p.Clamp()

	buf, tprops, err := tracePropertiesBuf(name, &p)
	if err != nil {
		return 0, err
	}
	u16Name, _ := syscall.UTF16PtrFromString(name)

	var handle syscall.Handle
	r1, _, _ := procStartTraceW.Call(
		uintptr(unsafe.Pointer(&handle)),
		uintptr(unsafe.Pointer(u16Name)),
		uintptr(unsafe.Pointer(&buf[0])),
	)
	if err := statusToError(uint32(r1)); err != nil {
		return 0, err
	}
	_ = tprops

	h.mu.Lock()
	defer h.mu.Unlock()
	h.next++
	sh := h.next
	sess := &winSession{name: name, control: handle}
	h.byHandle[sh] = sess
	h.byName[name] = sess
	seslog.Debug().Str("session", name).Msg("StartTraceW succeeded")
	return sh, nil
}

func (h *windowsHost) OpenSession(name string) (SessionHandle, error) {
	h.mu.Lock()
	sess, ok := h.byName[name]
	h.mu.Unlock()
	if !ok {
		h.mu.Lock()
		h.next++
		sh := h.next
		sess = &winSession{name: name}
		h.byHandle[sh] = sess
		h.byName[name] = sess
		h.mu.Unlock()
		return sh, nil
	}
	for sh, s := range h.byHandle {
		if s == sess {
			return sh, nil
		}
	}
	return 0, newHostError(ErrUnknownHost, 0, "session handle not found")
}

func (h *windowsHost) session(sh SessionHandle) (*winSession, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.byHandle[sh]
	if !ok {
		return nil, newHostError(ErrInvalidParameter, 0, "unknown session handle")
	}
	return s, nil
}

// eventFilterDescriptor mirrors EVENT_FILTER_DESCRIPTOR.
type eventFilterDescriptor struct {
	Ptr  uint64
	Size uint32
	Type uint32
}

// eventFilterEventID mirrors EVENT_FILTER_EVENT_ID's fixed prefix; the
// variable-length Events array is appended by allocEventIDFilter.
type eventFilterEventID struct {
	FilterIn uint8
	Reserved uint8
	Count    uint16
}

func allocEventIDFilter(ids []uint16) []byte {
	buf := make([]byte, 4+len(ids)*2)
	hdr := (*eventFilterEventID)(unsafe.Pointer(&buf[0]))
	hdr.FilterIn = 1
	hdr.Count = uint16(len(ids))
	for i, id := range ids {
		off := 4 + i*2
		buf[off] = byte(id)
		buf[off+1] = byte(id >> 8)
	}
	return buf
}

// enableTraceParameters mirrors ENABLE_TRACE_PARAMETERS.
type enableTraceParameters struct {
	Version          uint32
	EnableProperty   uint32
	ControlFlags     uint32
	SourceID         windows.GUID
	EnableFilterDesc *eventFilterDescriptor
	FilterDescCount  uint32
}

const enableTraceParametersVersion2 = 2

func (h *windowsHost) EnableProvider(sh SessionHandle, req EnableRequest) error {
	sess, err := h.session(sh)
	if err != nil {
		return err
	}

	providerGUID := toWinGUID(&req.Provider)
	params := enableTraceParameters{
		Version: enableTraceParametersVersion2,
	}

	var filterBuf []byte
	var filterDesc eventFilterDescriptor
	if req.EventIDs != nil && len(req.EventIDs.IDs) > 0 {
		filterBuf = allocEventIDFilter(req.EventIDs.IDs)
		filterDesc = eventFilterDescriptor{
			Ptr:  uint64(uintptr(unsafe.Pointer(&filterBuf[0]))),
			Size: uint32(len(filterBuf)),
			Type: eventFilterTypeEventID,
		}
		params.EnableFilterDesc = &filterDesc
		params.FilterDescCount = 1
	}

	controlCode := uint32(evtControlCodeEnableProvider)
	if req.CaptureState {
		controlCode = evtControlCodeCaptureState
	}

	r1, _, _ := procEnableTraceEx2.Call(
		uintptr(sess.control),
		uintptr(unsafe.Pointer(&providerGUID)),
		uintptr(controlCode),
		uintptr(req.Level),
		uintptr(req.MatchAnyKeyword),
		uintptr(req.MatchAllKeyword),
		0,
		uintptr(unsafe.Pointer(&params)),
	)
	return statusToError(uint32(r1))
}

func (h *windowsHost) SetTraceInformation(sh SessionHandle, mask GroupMask) error {
	sess, err := h.session(sh)
	if err != nil {
		return err
	}
	r1, _, _ := procTraceSetInformation.Call(
		uintptr(sess.control),
		uintptr(traceSystemTraceEnableFlagsInfo),
		uintptr(unsafe.Pointer(&mask[0])),
		uintptr(len(mask)*4),
	)
	return statusToError(uint32(r1))
}

// eventTraceLogfile mirrors EVENT_TRACE_LOGFILE, the structure OpenTraceW
// consumes to attach a real-time consumer and register the per-event
// callback trampoline.
type eventTraceLogfile struct {
	LogFileName    *uint16
	LoggerName     *uint16
	CurrentTime    int64
	BuffersRead    uint32
	ProcessTraceMode uint32
	CurrentEvent   [16]byte // opaque legacy EVENT_TRACE, unused in EVENT_RECORD mode
	LogfileHeader  [0x110]byte // opaque TRACE_LOGFILE_HEADER, sized generously
	BufferCallback uintptr
	BufferSize     uint32
	Filled         uint32
	EventsLost     uint32
	Callback       uintptr
	IsKernelTrace  uint32
	Context        uintptr
}

var activeSessions sync.Map // uintptr(context) -> *winSession

var callbackSeq atomic.Uintptr

// eventRecordTrampoline is installed as EVENT_TRACE_LOGFILE.Callback. ETW
// invokes it on the pump thread for every delivered record; it recovers the
// owning session via the Context pointer stashed at OpenTraceW time, per
// spec.md §9's "native function pointers... recovers the provider via a
// context pointer supplied at enable-time" design note.
func eventRecordTrampoline(er *nativeEventRecord) uintptr {
	v, ok := activeSessions.Load(er.UserContext)
	if !ok {
		return 0
	}
	sess := v.(*winSession)
	rec := recordFromNative(er)
	sess.onRecord(rec)
	return 0
}

var eventRecordCallbackPtr = syscall.NewCallback(eventRecordTrampoline)

// nativeEventRecord mirrors EVENT_RECORD.
type nativeEventRecord struct {
	EventHeader       nativeEventHeader
	BufferContext     [4]byte
	ExtendedDataCount uint16
	UserDataLength    uint16
	ExtendedData      uintptr
	UserData          uintptr
	UserContext       uintptr
}

type nativeEventHeader struct {
	Size            uint16
	HeaderType      uint16
	Flags           uint16
	EventProperty   uint16
	ThreadID        uint32
	ProcessID       uint32
	TimeStamp       int64
	ProviderID      windows.GUID
	EventDescriptor nativeEventDescriptor
	KernelTime      uint32
	UserTime        uint32
	ActivityID      windows.GUID
}

type nativeEventDescriptor struct {
	ID      uint16
	Version uint8
	Channel uint8
	Level   uint8
	Opcode  uint8
	Task    uint16
	Keyword uint64
}

type nativeExtendedDataItem struct {
	Reserved1      uint16
	ExtType        uint16
	InternalStruct uint16
	DataSize       uint16
	DataPtr        uintptr
}

func recordFromNative(er *nativeEventRecord) *RawRecord {
	rec := &RawRecord{
		Provider:  fromWinGUID(er.EventHeader.ProviderID),
		EventID:   er.EventHeader.EventDescriptor.ID,
		Version:   er.EventHeader.EventDescriptor.Version,
		Opcode:    er.EventHeader.EventDescriptor.Opcode,
		Level:     er.EventHeader.EventDescriptor.Level,
		Keyword:   er.EventHeader.EventDescriptor.Keyword,
		Timestamp: er.EventHeader.TimeStamp,
		ProcessID: er.EventHeader.ProcessID,
		ThreadID:  er.EventHeader.ThreadID,
		Native:    uintptr(unsafe.Pointer(er)),
	}
	if er.UserDataLength > 0 && er.UserData != 0 {
		rec.UserData = unsafe.Slice((*byte)(unsafe.Pointer(er.UserData)), er.UserDataLength)
	}
	if er.ExtendedDataCount > 0 && er.ExtendedData != 0 {
		items := unsafe.Slice((*nativeExtendedDataItem)(unsafe.Pointer(er.ExtendedData)), er.ExtendedDataCount)
		rec.ExtendedData = make([]ExtendedDataItem, len(items))
		for i, it := range items {
			var data []byte
			if it.DataSize > 0 && it.DataPtr != 0 {
				data = unsafe.Slice((*byte)(unsafe.Pointer(it.DataPtr)), it.DataSize)
			}
			rec.ExtendedData[i] = ExtendedDataItem{Type: it.ExtType, Data: data}
		}
	}
	return rec
}

func (h *windowsHost) ProcessEvents(ctx context.Context, sh SessionHandle, onRecord func(*RawRecord)) error {
	sess, err := h.session(sh)
	if err != nil {
		return err
	}
	sess.onRecord = onRecord

	u16Name, err := syscall.UTF16PtrFromString(sess.name)
	if err != nil {
		return fmt.Errorf("%w: session name %q", ErrInvalidParameter, sess.name)
	}

	logfile := eventTraceLogfile{
		LoggerName:       u16Name,
		ProcessTraceMode: processTraceModeRealTime | processTraceModeEventRecord,
		Callback:         eventRecordCallbackPtr,
		Context:          uintptr(callbackSeq.Add(1)),
	}
	activeSessions.Store(logfile.Context, sess)
	defer activeSessions.Delete(logfile.Context)

	r1, _, _ := procOpenTraceW.Call(uintptr(unsafe.Pointer(&logfile)))
	consumer := syscall.Handle(r1)
	if consumer == syscall.InvalidHandle {
		return newHostError(ErrUnknownHost, uint32(r1), "OpenTraceW failed")
	}
	sess.consumer = consumer
	sess.hasConsumer = true

	done := make(chan error, 1)
	go func() {
		r1, _, _ := procProcessTrace.Call(
			uintptr(unsafe.Pointer(&consumer)),
			1,
			0,
			0,
		)
		done <- statusToError(uint32(r1))
	}()

	select {
	case <-ctx.Done():
		procCloseTrace.Call(uintptr(consumer))
		<-done
		return nil
	case err := <-done:
		return err
	}
}

func (h *windowsHost) CloseSession(sh SessionHandle) error {
	sess, err := h.session(sh)
	if err != nil {
		return nil
	}
	var outerErr error
	sess.closeOnce.Do(func() {
		buf, _, e := tracePropertiesBuf(sess.name, &SessionProperties{})
		if e == nil {
			u16Name, _ := syscall.UTF16PtrFromString(sess.name)
			procControlTraceW.Call(
				uintptr(sess.control),
				uintptr(unsafe.Pointer(u16Name)),
				uintptr(unsafe.Pointer(&buf[0])),
				evtTraceControlStop,
			)
		}
		if sess.hasConsumer {
			procCloseTrace.Call(uintptr(sess.consumer))
		}
	})
	return outerErr
}

// GetEventMetadata calls TdhGetEventInformation for rec's TRACE_EVENT_INFO:
// with an empty buf it reports the needed size (the insufficient-buffer
// status is not an error there), otherwise it fills buf. The schema cache
// never interprets the payload itself (spec.md §1, decode is a narrow
// out-of-scope contract).
func (h *windowsHost) GetEventMetadata(rec *RawRecord, buf []byte) (int, error) {
	if rec.Native == 0 {
		return 0, newHostError(ErrSchemaNotFound, 0, "record has no native handle")
	}
	er := (*nativeEventRecord)(unsafe.Pointer(rec.Native))

	var bufPtr unsafe.Pointer
	if len(buf) > 0 {
		bufPtr = unsafe.Pointer(&buf[0])
	}
	size := uint32(len(buf))

	r1, _, _ := procTdhGetEventInformation.Call(
		uintptr(unsafe.Pointer(er)),
		0, 0,
		uintptr(bufPtr),
		uintptr(unsafe.Pointer(&size)),
	)

	status := uint32(r1)
	if status == uint32(syscall.ERROR_INSUFFICIENT_BUFFER) {
		return int(size), nil
	}
	if status != 0 {
		return 0, newHostError(ErrSchemaNotFound, status, "TdhGetEventInformation")
	}
	return int(size), nil
}

func (h *windowsHost) QueryStats(sh SessionHandle) (SessionStats, error) {
	sess, err := h.session(sh)
	if err != nil {
		return SessionStats{}, err
	}
	buf, _, e := tracePropertiesBuf(sess.name, &SessionProperties{})
	if e != nil {
		return SessionStats{}, e
	}
	u16Name, _ := syscall.UTF16PtrFromString(sess.name)
	r1, _, _ := procControlTraceW.Call(
		uintptr(sess.control),
		uintptr(unsafe.Pointer(u16Name)),
		uintptr(unsafe.Pointer(&buf[0])),
		evtTraceControlQuery,
	)
	if err := statusToError(uint32(r1)); err != nil {
		return SessionStats{}, err
	}
	p := (*eventTraceProperties)(unsafe.Pointer(&buf[0]))
	return SessionStats{
		BuffersProcessed:    uint64(p.BuffersWritten),
		EventsLost:          uint64(p.EventsLost),
		RealTimeBuffersLost: uint64(p.RealTimeBuffersLost),
		RealTimeEventsLost:  uint64(p.EventsLost),
	}, nil
}

// statusToError classifies a raw Win32 status per C8 (spec.md §4.8/§8's
// "buffer-too-small is a non-error in sizing probe").
func statusToError(status uint32) error {
	switch status {
	case 0: // ERROR_SUCCESS
		return nil
	case uint32(windows.ERROR_ALREADY_EXISTS):
		return newHostError(ErrSessionAlreadyRegistered, status, "session already exists")
	case uint32(windows.ERROR_INVALID_PARAMETER):
		return newHostError(ErrInvalidParameter, status, "invalid parameter")
	case uint32(windows.ERROR_ACCESS_DENIED):
		return newHostError(ErrNeedsElevation, status, "access denied")
	case uint32(windows.ERROR_NOT_FOUND), uint32(windows.ERROR_FILE_NOT_FOUND):
		return newHostError(ErrSchemaNotFound, status, "not found")
	default:
		return newHostError(ErrUnknownHost, status, "host runtime error")
	}
}

func toWinGUID(g *GUID) windows.GUID {
	return windows.GUID{
		Data1: g.Data1,
		Data2: g.Data2,
		Data3: g.Data3,
		Data4: g.Data4,
	}
}

func fromWinGUID(g windows.GUID) GUID {
	return GUID{
		Data1: g.Data1,
		Data2: g.Data2,
		Data3: g.Data3,
		Data4: g.Data4,
	}
}

// resolveProviderByName is windows-only: it would enumerate registered
// providers via TdhEnumerateProviders and match by friendly name. Not
// wired to a concrete TDH call yet; literal GUID strings always work via
// ParseGUID regardless of platform.
func resolveProviderByName(name string) (GUID, string, bool) {
	return GUID{}, "", false
}
