package etw

import (
	"time"
	"unicode/utf16"
)

// ExtendedDataItem is one entry of a RawRecord's extended-data item list,
// the concrete shape EventIdentity's name lookup (spec.md §4.1) reads to
// recover a self-describing event's name. Modeled after the
// EVENT_HEADER_EXTENDED_DATA_ITEM ABI: Type identifies the kind of
// extension (self-describing name, SID, stack trace, ...), Data is the
// extension's raw payload.
type ExtendedDataItem struct {
	Type uint16
	Data []byte
}

// Self-describing name extension type, the ExtendedDataItem.Type value
// EventIdentity's key construction looks for (spec.md §4.1).
const extTypeEventSchemaTraits uint16 = 21 // EVENT_HEADER_EXT_TYPE_PROV_TRAITS-adjacent, self-describing container.

// RawRecord is the host-supplied record handed to the dispatcher: a header
// plus an opaque user-data payload. The windows binding builds a fresh
// RawRecord per event, but its UserData and ExtendedData bytes alias
// host-owned buffers that are valid only during the callback; callbacks
// must not retain a pointer to one past the callback's return.
type RawRecord struct {
	Provider     GUID
	EventID      uint16
	Version      uint8
	Opcode       uint8
	Level        uint8
	Keyword      uint64
	Timestamp    int64 // raw host timestamp, host-clock-scale dependent
	ProcessID    uint32
	ThreadID     uint32
	ExtendedData []ExtendedDataItem
	UserData     []byte

	// Native is an opaque handle back to the host's original record (a
	// *EVENT_RECORD on Windows), valid only for the duration of the
	// callback that received it. HostRuntime.GetEventMetadata uses it to
	// requery the host; the stub/fake hosts leave it zero.
	Native uintptr
}

// Time interprets Timestamp as a Windows FILETIME and converts it to a
// local time.Time. It does no conversion from a QPC or CPU-cycle clock: a
// Timestamp in such a clock is read as if it were a FILETIME.
func (r *RawRecord) Time() time.Time {
	return FromFiletime(r.Timestamp)
}

// eventName scans ExtendedData for the self-describing name extension and
// returns the name decoded into a new Go string, or "" if absent/malformed. This
// is the "recognised type and size" block spec.md §4.1 refers to.
func (r *RawRecord) eventName() string {
	for _, item := range r.ExtendedData {
		if item.Type != extTypeEventSchemaTraits {
			continue
		}
		return decodeTraitsName(item.Data)
	}
	return ""
}

// decodeTraitsName extracts the provider-name-like prefix from a
// traits/self-describing block: a sequence of length-prefixed bytes ending
// at the first byte whose high bit is unset, per spec.md's "reading bytes
// until a byte with its high bit unset is found" rule, followed by a
// NUL-terminated UTF-16 name.
func decodeTraitsName(data []byte) string {
	i := 0
	for i < len(data) {
		if data[i]&0x80 == 0 {
			i++
			break
		}
		i++
	}
	if i >= len(data) {
		return ""
	}
	rest := data[i:]
	// Skip a 2-byte size prefix if present, matching EVENT_HEADER_EXT_TYPE
	// self-describing traits blocks, then decode UTF-16LE up to the NUL.
	if len(rest) < 2 {
		return ""
	}
	rest = rest[2:]
	return utf16zToString(rest)
}

func utf16zToString(b []byte) string {
	u16 := make([]uint16, 0, len(b)/2)
	for i := 0; i+1 < len(b); i += 2 {
		c := uint16(b[i]) | uint16(b[i+1])<<8
		if c == 0 {
			break
		}
		u16 = append(u16, c)
	}
	return string(utf16.Decode(u16))
}

// MetadataView is the lightweight header-only view the dispatcher's
// default-metadata callback receives (spec.md §4.7 step 3), before schema
// lookup succeeds or fails.
type MetadataView struct {
	rec *RawRecord
}

func (m *MetadataView) Provider() GUID      { return m.rec.Provider }
func (m *MetadataView) EventID() uint16     { return m.rec.EventID }
func (m *MetadataView) Version() uint8      { return m.rec.Version }
func (m *MetadataView) Opcode() uint8       { return m.rec.Opcode }
func (m *MetadataView) Level() uint8        { return m.rec.Level }
func (m *MetadataView) Keyword() uint64     { return m.rec.Keyword }
func (m *MetadataView) ProcessID() uint32   { return m.rec.ProcessID }
func (m *MetadataView) ThreadID() uint32    { return m.rec.ThreadID }
func (m *MetadataView) reset(rec *RawRecord) { m.rec = rec }

// ErrorView is the wrapper handed to error callbacks: a dispatch-time error
// plus header context, re-used across events like MetadataView/TypedRecord.
type ErrorView struct {
	rec *RawRecord
	err error
}

func (e *ErrorView) Provider() GUID    { return e.rec.Provider }
func (e *ErrorView) EventID() uint16   { return e.rec.EventID }
func (e *ErrorView) Err() error        { return e.err }
func (e *ErrorView) reset(rec *RawRecord, err error) {
	e.rec = rec
	e.err = err
}

// decoder is the narrow, out-of-scope collaborator spec.md §1 calls
// "decode(record, schema, property_name) -> typed value". The core never
// implements a byte-level parser; TypedRecord delegates every property
// read through this contract.
type decoder interface {
	Decode(rec *RawRecord, schema *SchemaBlob, property string) (any, error)
}

// TypedRecord binds a RawRecord to a SchemaBlob through a decoder. Callbacks
// receive a live TypedRecord per dispatch; the dispatcher re-uses the
// wrapper across events on the pump thread (§5), so property reads must
// complete synchronously within the callback.
type TypedRecord struct {
	rec    *RawRecord
	schema *SchemaBlob
	dec    decoder
}

// Raw returns the underlying header-only view.
func (t *TypedRecord) Raw() *RawRecord { return t.rec }

// Schema returns the schema blob this record was matched against.
func (t *TypedRecord) Schema() *SchemaBlob { return t.schema }

// Property decodes a single named property via the configured decoder.
func (t *TypedRecord) Property(name string) (any, error) {
	if t.dec == nil {
		return nil, ErrSchemaNotFound
	}
	return t.dec.Decode(t.rec, t.schema, name)
}

func (t *TypedRecord) reset(rec *RawRecord, schema *SchemaBlob, dec decoder) {
	t.rec = rec
	t.schema = schema
	t.dec = dec
}
