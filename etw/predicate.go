package etw

import "unicode"

// Predicate is a pure function from a record and its resolved schema to an
// admit decision (spec.md §4.2). It takes the schema alongside the record
// because property_* leaves need a bound schema to decode a named field;
// id/opcode/version/pid leaves simply ignore it. Combinators own their
// children by value, never by reference, so a tree built once remains a
// valid, self-contained value for the whole trace lifetime (spec.md §9,
// "Predicate tree ownership").
type Predicate func(rec *RawRecord, schema *SchemaBlob) bool

// IDIs admits records whose EventID equals id.
func IDIs(id uint16) Predicate {
	return func(rec *RawRecord, _ *SchemaBlob) bool { return rec.EventID == id }
}

// OpcodeIs admits records whose Opcode equals opcode.
func OpcodeIs(opcode uint8) Predicate {
	return func(rec *RawRecord, _ *SchemaBlob) bool { return rec.Opcode == opcode }
}

// VersionIs admits records whose Version equals version.
func VersionIs(version uint8) Predicate {
	return func(rec *RawRecord, _ *SchemaBlob) bool { return rec.Version == version }
}

// ProcessIDIs admits records whose ProcessID equals pid.
func ProcessIDIs(pid uint32) Predicate {
	return func(rec *RawRecord, _ *SchemaBlob) bool { return rec.ProcessID == pid }
}

func propertyString(rec *RawRecord, schema *SchemaBlob, dec decoder, name string) (string, bool) {
	if dec == nil || schema == nil {
		return "", false
	}
	v, err := dec.Decode(rec, schema, name)
	if err != nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// PropertyEquals admits a record iff its named property, decoded via dec,
// equals value. Case-sensitive.
func PropertyEquals(dec decoder, name, value string) Predicate {
	return func(rec *RawRecord, schema *SchemaBlob) bool {
		s, ok := propertyString(rec, schema, dec, name)
		return ok && textEquals(s, value, false)
	}
}

// PropertyIContains admits iff the named property case-insensitively
// contains needle.
func PropertyIContains(dec decoder, name, needle string) Predicate {
	return func(rec *RawRecord, schema *SchemaBlob) bool {
		s, ok := propertyString(rec, schema, dec, name)
		return ok && textContains(s, needle, true)
	}
}

// PropertyStartsWith admits iff the named property starts with prefix.
func PropertyStartsWith(dec decoder, name, prefix string, ci bool) Predicate {
	return func(rec *RawRecord, schema *SchemaBlob) bool {
		s, ok := propertyString(rec, schema, dec, name)
		return ok && textStartsWith(s, prefix, ci)
	}
}

// Not negates p.
func Not(p Predicate) Predicate {
	return func(rec *RawRecord, schema *SchemaBlob) bool { return !p(rec, schema) }
}

// And short-circuits: b is not evaluated if a returns false.
func And(a, b Predicate) Predicate {
	return func(rec *RawRecord, schema *SchemaBlob) bool { return a(rec, schema) && b(rec, schema) }
}

// Or short-circuits: b is not evaluated if a returns true.
func Or(a, b Predicate) Predicate {
	return func(rec *RawRecord, schema *SchemaBlob) bool { return a(rec, schema) || b(rec, schema) }
}

// AndAllOf evaluates preds left-to-right, short-circuiting on the first
// false. An empty list admits everything. Owns preds by value (copies the
// slice), matching spec.md §9's "combinators own their children by value".
func AndAllOf(preds []Predicate) Predicate {
	own := append([]Predicate(nil), preds...)
	return func(rec *RawRecord, schema *SchemaBlob) bool {
		for _, p := range own {
			if !p(rec, schema) {
				return false
			}
		}
		return true
	}
}

// OrAnyOf evaluates preds left-to-right, short-circuiting on the first
// true. An empty list admits nothing.
func OrAnyOf(preds []Predicate) Predicate {
	own := append([]Predicate(nil), preds...)
	return func(rec *RawRecord, schema *SchemaBlob) bool {
		for _, p := range own {
			if p(rec, schema) {
				return true
			}
		}
		return false
	}
}

// textEquals compares two strings, optionally case-insensitively using
// single-codepoint upper-casing (spec.md §4.2: "full locale folding is not
// attempted").
func textEquals(a, b string, ci bool) bool {
	if !ci {
		return a == b
	}
	ra, rb := []rune(a), []rune(b)
	if len(ra) != len(rb) {
		return false
	}
	for i := range ra {
		if unicode.ToUpper(ra[i]) != unicode.ToUpper(rb[i]) {
			return false
		}
	}
	return true
}

// textContains reports whether haystack contains needle. An empty needle
// always returns true, regardless of haystack, including an empty haystack
// (spec.md §4.2, testable property 4).
func textContains(haystack, needle string, ci bool) bool {
	if needle == "" {
		return true
	}
	h, n := []rune(haystack), []rune(needle)
	if len(n) > len(h) {
		return false
	}
	for start := 0; start+len(n) <= len(h); start++ {
		if runesEqual(h[start:start+len(n)], n, ci) {
			return true
		}
	}
	return false
}

// textStartsWith short-circuits on length mismatch before comparing runes
// (spec.md §4.2). An empty prefix always matches.
func textStartsWith(s, prefix string, ci bool) bool {
	sr, pr := []rune(s), []rune(prefix)
	if len(pr) == 0 {
		return true
	}
	if len(pr) > len(sr) {
		return false
	}
	return runesEqual(sr[:len(pr)], pr, ci)
}

// textEndsWith mirrors textStartsWith from the tail.
func textEndsWith(s, suffix string, ci bool) bool {
	sr, fr := []rune(s), []rune(suffix)
	if len(fr) == 0 {
		return true
	}
	if len(fr) > len(sr) {
		return false
	}
	return runesEqual(sr[len(sr)-len(fr):], fr, ci)
}

func runesEqual(a, b []rune, ci bool) bool {
	for i := range a {
		x, y := a[i], b[i]
		if ci {
			x, y = unicode.ToUpper(x), unicode.ToUpper(y)
		}
		if x != y {
			return false
		}
	}
	return true
}

// countedStringView extracts a length-prefixed string view: the first two
// bytes are a little-endian uint16 length in code units, followed by that
// many UTF-16 code units (spec.md §4.2, "Counted string" view adapter).
func countedStringView(b []byte) string {
	if len(b) < 2 {
		return ""
	}
	n := int(uint16(b[0]) | uint16(b[1])<<8)
	b = b[2:]
	if n*2 > len(b) {
		n = len(b) / 2
	}
	return utf16zToString(append(b[:n*2:n*2], 0, 0))
}

// nullTerminatedStringView extracts a NUL-terminated UTF-16 view whose
// declared byte length is len(b) (spec.md §4.2, "Null-terminated string"
// view adapter): length in code units is len(b)/2 - 1, and the terminator
// itself is excluded from the returned string.
func nullTerminatedStringView(b []byte) string {
	n := len(b)/2 - 1
	if n <= 0 {
		return ""
	}
	return utf16zToString(b[:n*2])
}
