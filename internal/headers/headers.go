// Package headers parses and stores HTTP header blocks. Headers are
// ordered and multi-valued: duplicate field names are preserved
// individually rather than collapsed, so a caller can recover every
// value a client sent for a given name. Parsing enforces configurable
// caps on header count and total byte size, and validates field names
// against RFC 9110's token grammar.
package headers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/minum-go/minum/internal/herr"
	"github.com/minum-go/minum/internal/streamreader"
)

// Headers is a case-insensitive, multi-valued, insertion-ordered
// collection of header lines.
type Headers struct {
	names  []string            // insertion order of distinct lowercase names
	values map[string][]string // lowercase name -> values in insertion order
	bytes  int                 // raw bytes consumed, for the MAX_HEADER_BYTES cap
}

// New returns an empty Headers value.
func New() Headers {
	return Headers{values: map[string][]string{}}
}

// Parse reads header lines from r until a blank line, enforcing
// maxCount (distinct header occurrences, not distinct names) and
// maxBytes (cumulative raw line bytes including the CRLF).
func Parse(r *streamreader.Reader, maxCount, maxBytes int) (Headers, error) {
	h := New()
	count := 0
	for {
		line, err := r.ReadLine()
		if err != nil {
			return Headers{}, err
		}
		if line == "" {
			return h, nil
		}

		h.bytes += len(line) + 2
		if maxBytes > 0 && h.bytes > maxBytes {
			return Headers{}, fmt.Errorf("header block exceeds %d bytes: %w", maxBytes, herr.ErrForbidden)
		}

		if line[0] == ' ' || line[0] == '\t' {
			return Headers{}, fmt.Errorf("obsolete header folding in %q: %w", line, herr.ErrParse)
		}

		colon := strings.IndexByte(line, ':')
		if colon <= 0 {
			return Headers{}, fmt.Errorf("malformed header line %q: %w", line, herr.ErrParse)
		}

		nameRaw := line[:colon]
		if strings.ContainsAny(nameRaw, " \t") || !isToken(nameRaw) {
			return Headers{}, fmt.Errorf("malformed header name %q: %w", nameRaw, herr.ErrParse)
		}
		name := strings.ToLower(nameRaw)
		value := strings.Trim(line[colon+1:], " \t")

		h.add(name, value)
		count++
		if maxCount > 0 && count > maxCount {
			return Headers{}, fmt.Errorf("more than %d headers: %w", maxCount, herr.ErrForbidden)
		}
	}
}

func (h *Headers) add(name, value string) {
	if h.values == nil {
		h.values = map[string][]string{}
	}
	if _, ok := h.values[name]; !ok {
		h.names = append(h.names, name)
	}
	h.values[name] = append(h.values[name], value)
}

// Set adds a value under name, preserving any existing values (used by
// response construction, where a single value per header is typical
// but the type stays consistent with the parsed representation).
func (h *Headers) Set(name, value string) {
	h.add(strings.ToLower(name), value)
}

// ValueByKey returns the values stored under name (case-insensitive),
// or nil if the header was never present — a distinction callers use
// to tell "absent" from "present with an empty value".
func (h Headers) ValueByKey(name string) []string {
	v, ok := h.values[strings.ToLower(name)]
	if !ok {
		return nil
	}
	return v
}

// Get returns the first value for name, or "" if absent.
func (h Headers) Get(name string) string {
	v := h.ValueByKey(name)
	if len(v) == 0 {
		return ""
	}
	return v[0]
}

// Names returns the distinct header names in insertion order.
func (h Headers) Names() []string {
	return append([]string(nil), h.names...)
}

// Count returns the number of individual header occurrences, not
// distinct names, which is what the configured header-count cap
// bounds.
func (h Headers) Count() int {
	n := 0
	for _, v := range h.values {
		n += len(v)
	}
	return n
}

// ContentLength returns the integer value of the last content-length
// header, or 0 if absent. A negative or non-numeric value is a
// bad-input error.
func (h Headers) ContentLength() (int, error) {
	v := h.ValueByKey("content-length")
	if len(v) == 0 {
		return 0, nil
	}
	last := v[len(v)-1]
	n, err := strconv.Atoi(strings.TrimSpace(last))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("bad content-length %q: %w", last, herr.ErrParse)
	}
	return n, nil
}

// ContentType returns the last content-type header value, or "".
func (h Headers) ContentType() string {
	v := h.ValueByKey("content-type")
	if len(v) == 0 {
		return ""
	}
	return v[len(v)-1]
}

// TransferEncoding returns the last transfer-encoding header value, or "".
func (h Headers) TransferEncoding() string {
	v := h.ValueByKey("transfer-encoding")
	if len(v) == 0 {
		return ""
	}
	return v[len(v)-1]
}

// HasConnectionToken reports whether any "connection" header value
// contains token (case-insensitive, comma-separated list semantics).
func (h Headers) HasConnectionToken(token string) bool {
	for _, v := range h.ValueByKey("connection") {
		for _, t := range strings.Split(v, ",") {
			if strings.EqualFold(strings.TrimSpace(t), token) {
				return true
			}
		}
	}
	return false
}

var allowed [256]bool

func init() {
	for c := byte('0'); c <= '9'; c++ {
		allowed[c] = true
	}
	for c := byte('A'); c <= 'Z'; c++ {
		allowed[c] = true
	}
	for c := byte('a'); c <= 'z'; c++ {
		allowed[c] = true
	}
	for _, c := range []byte("!#$%&'*+-.^_`|~") {
		allowed[c] = true
	}
}

func isToken(s string) bool {
	if len(s) == 0 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] > 127 || !allowed[s[i]] {
			return false
		}
	}
	return true
}
