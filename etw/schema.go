package etw

// EventIdentity is the compound key for the schema cache (spec.md §3, C1).
// Equality and hash consider every field including Name. Name is an
// ordinary Go string decoded from the originating record's extended data
// (see identityFromRecord), so it never aliases the record's buffer.
type EventIdentity struct {
	Provider GUID
	Name     string
	EventID  uint16
	Version  uint8
	Opcode   uint8
	Level    uint8
	Keyword  uint64

	// owned holds the interned backing string once internalize() has run;
	// nil for a transient lookup key. Kept distinct from Name so equality
	// and hash only ever look at Name's contents, per spec.md §9's
	// "view == contents of owned" requirement.
	owned *string
}

// identityFromRecord builds a lookup key for rec. Name is decoded from rec's
// extended data into a newly allocated Go string (see utf16zToString), so
// building the key allocates whenever the record carries a name; the key
// does not alias rec's extended-data buffer.
func identityFromRecord(rec *RawRecord) EventIdentity {
	return EventIdentity{
		Provider: rec.Provider,
		Name:     rec.eventName(),
		EventID:  rec.EventID,
		Version:  rec.Version,
		Opcode:   rec.Opcode,
		Level:    rec.Level,
		Keyword:  rec.Keyword,
	}
}

// internalize returns a copy of k with owned set to k.Name. No bytes are
// copied: Name is already an independent Go string (see
// identityFromRecord). Called exactly once, right before insertion
// (spec.md §4.1 step 3).
func (k EventIdentity) internalize() EventIdentity {
	s := k.Name
	k.owned = &s
	k.Name = *k.owned
	return k
}

// Equal reports whether k and other identify the same event shape.
func (k EventIdentity) Equal(other EventIdentity) bool {
	return k.EventID == other.EventID &&
		k.Version == other.Version &&
		k.Opcode == other.Opcode &&
		k.Level == other.Level &&
		k.Keyword == other.Keyword &&
		k.Name == other.Name &&
		k.Provider.Equals(&other.Provider)
}

// hash computes a non-cryptographic shift-add-xor hash mixing every field,
// matching the scheme the source (krabs::schema_key) uses.
func (k EventIdentity) hash() uint64 {
	var h uint64 = 0

	mix := func(v uint64) {
		h ^= (h << 5) + (h >> 2) + v
	}

	mix(uint64(k.Provider.Data1))
	mix(uint64(k.Provider.Data2)<<16 | uint64(k.Provider.Data3))
	for _, b := range k.Provider.Data4 {
		mix(uint64(b))
	}
	mix(fnv1a(k.Name))
	mix(uint64(k.EventID))
	mix(uint64(k.Version))
	mix(uint64(k.Opcode))
	mix(uint64(k.Level))
	mix(k.Keyword)

	return h
}

// fnv1a hashes a string; used only as an input to EventIdentity.hash's
// shift-add-xor mix, not as a standalone hash.
func fnv1a(s string) uint64 {
	const offset64 = 14695981039346656037
	const prime64 = 1099511628211
	h := uint64(offset64)
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= prime64
	}
	return h
}

// SchemaBlob is opaque variable-length metadata returned by the host's
// metadata query (spec.md §3). Exclusively owned by its cache entry; handed
// out as a shared read-only borrow to consumers via TypedRecord.Schema.
type SchemaBlob struct {
	Identity EventIdentity
	Raw      []byte
}

// schemaBucket is one hash bucket in the locator cache: a small slice
// checked with Equal, matching an unordered_map<schema_key, ...> collapsed
// to the size this cache actually needs (dozens to low hundreds of unique
// shapes per trace, not millions).
type schemaBucket struct {
	key  EventIdentity
	blob *SchemaBlob
	next *schemaBucket
}

// SchemaCache memoizes decoded event metadata keyed by EventIdentity control
// flow: strictly single-threaded, called only from the trace's pump thread
// (spec.md §4.1). No locks — thread affinity is the caller's contract, not
// something this type enforces at runtime except via a debug assertion.
type SchemaCache struct {
	host    HostRuntime
	buckets map[uint64]*schemaBucket
	size    int
	owner   int64 // debug-only affinity check, see checkAffinity
}

// NewSchemaCache constructs an empty cache bound to host for metadata
// queries. A new Trace always starts with an empty cache (spec.md's
// Lifecycles: "A new Trace starts with an empty cache").
func NewSchemaCache(host HostRuntime) *SchemaCache {
	return &SchemaCache{host: host, buckets: make(map[uint64]*schemaBucket)}
}

// Len reports the number of distinct event identities currently cached.
func (c *SchemaCache) Len() int { return c.size }

// Get resolves rec's schema, running the host's two-phase metadata lookup
// (size probe, then fill) at most once per unique EventIdentity (spec.md
// §4.1, testable property 3).
func (c *SchemaCache) Get(rec *RawRecord) (*SchemaBlob, error) {
	checkAffinity(&c.owner)

	key := identityFromRecord(rec)
	h := key.hash()

	for b := c.buckets[h]; b != nil; b = b.next {
		if b.key.Equal(key) {
			return b.blob, nil
		}
	}

	blob, err := c.query(rec, key)
	if err != nil {
		return nil, err
	}

	stored := key.internalize()
	c.buckets[h] = &schemaBucket{key: stored, blob: blob, next: c.buckets[h]}
	c.size++
	return blob, nil
}

// query performs the two-phase host metadata lookup described in spec.md
// §4.1: a zero-sized probe to learn the required buffer size, then a second
// call with the exact-size buffer.
func (c *SchemaCache) query(rec *RawRecord, key EventIdentity) (*SchemaBlob, error) {
	needed, err := c.host.GetEventMetadata(rec, nil)
	if err != nil {
		return nil, newHostError(ErrSchemaNotFound, 0, "size probe failed").withEventContext(rec.Provider, rec.EventID)
	}
	if needed <= 0 {
		return nil, newHostError(ErrSchemaNotFound, 0, "empty metadata").withEventContext(rec.Provider, rec.EventID)
	}

	buf := make([]byte, needed)
	if _, err := c.host.GetEventMetadata(rec, buf); err != nil {
		return nil, newHostError(ErrSchemaNotFound, 0, "metadata fetch failed").withEventContext(rec.Provider, rec.EventID)
	}

	return &SchemaBlob{Identity: key, Raw: buf}, nil
}
