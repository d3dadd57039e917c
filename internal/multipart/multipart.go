// Package multipart decodes multipart/form-data bodies. Binary
// correctness is the central invariant: the boundary scan is a pure
// byte-level Knuth-Morris-Pratt search, never a string search, so a
// payload containing bytes that merely resemble the boundary's prefix
// is never mistaken for a real separator.
package multipart

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/minum-go/minum/internal/headers"
	"github.com/minum-go/minum/internal/herr"
	"github.com/minum-go/minum/internal/streamreader"
)

// Body is the decoded result of a multipart/form-data payload.
type Body struct {
	Parts            map[string][]byte
	PartitionHeaders map[string]headers.Headers
	Raw              []byte
}

// PartAsString decodes the named part's bytes as UTF-8.
func (b Body) PartAsString(name string) string {
	return string(b.Parts[name])
}

// Empty is the distinguished empty body.
var Empty = Body{Parts: map[string][]byte{}, PartitionHeaders: map[string]headers.Headers{}}

// Decode splits raw on occurrences of "--"+boundary, parses each part's
// headers and payload, and returns the name -> bytes map built from
// each part's content-disposition "name" parameter. Parts with no
// name are tolerated and skipped.
func Decode(raw []byte, boundary string) (Body, error) {
	sep := append([]byte("--"), boundary...)
	cuts := kmpFindAll(raw, sep)
	if len(cuts) < 2 {
		return Empty, fmt.Errorf("multipart body has no boundary %q: %w", boundary, herr.ErrParse)
	}

	out := Body{
		Parts:            map[string][]byte{},
		PartitionHeaders: map[string]headers.Headers{},
		Raw:              raw,
	}

	// Each segment between two adjacent separator occurrences, except
	// the last (the segment after the terminal "--boundary--"), is a
	// candidate part. The preamble before the first separator is
	// discarded; so is the epilogue after the terminal separator.
	for i := 0; i < len(cuts)-1; i++ {
		segStart := cuts[i] + len(sep)
		segEnd := cuts[i+1]
		if segEnd < segStart {
			continue
		}
		segment := raw[segStart:segEnd]

		// The terminal separator is followed immediately by "--"; its
		// segment (the epilogue) is not a part.
		if bytes.HasPrefix(segment, []byte("--")) {
			continue
		}

		part := trimCRLFPrefixAndSuffix(segment)
		name, hdrs, payload, ok := parsePart(part)
		if !ok {
			continue // absent/unnamed content-disposition: tolerated, skipped
		}

		out.Parts[name] = payload
		out.PartitionHeaders[name] = hdrs
	}

	return out, nil
}

// trimCRLFPrefixAndSuffix drops the single leading "\r\n" that always
// follows a separator, and the single trailing "\r\n" that always
// precedes the next separator.
func trimCRLFPrefixAndSuffix(b []byte) []byte {
	b = bytes.TrimPrefix(b, []byte("\r\n"))
	b = bytes.TrimSuffix(b, []byte("\r\n"))
	return b
}

// parsePart splits a part's bytes into header lines (up to the first
// blank line) and payload, then extracts its content-disposition name.
func parsePart(part []byte) (name string, hdrs headers.Headers, payload []byte, ok bool) {
	blank := bytes.Index(part, []byte("\r\n\r\n"))
	var headerBlock, body []byte
	if blank < 0 {
		// No body (e.g. a part with only headers and no payload).
		headerBlock = part
		body = nil
	} else {
		headerBlock = part[:blank]
		body = part[blank+4:]
	}

	hdrs, err := headers.Parse(
		streamreader.New(bytes.NewReader(append(headerBlock, '\r', '\n', '\r', '\n')), 0),
		0, 0,
	)
	if err != nil {
		return "", headers.Headers{}, nil, false
	}

	disp := hdrs.Get("content-disposition")
	if disp == "" {
		return "", headers.Headers{}, nil, false
	}
	n, ok2 := extractName(disp)
	if !ok2 {
		return "", headers.Headers{}, nil, false
	}

	return n, hdrs, body, true
}

// extractName pulls name="..." out of a content-disposition value.
func extractName(disp string) (string, bool) {
	const key = `name="`
	for from := 0; ; {
		idx := strings.Index(disp[from:], key)
		if idx < 0 {
			return "", false
		}
		idx += from
		// Only a parameter of its own counts, not the tail of filename="...".
		if idx == 0 || disp[idx-1] == ' ' || disp[idx-1] == ';' {
			rest := disp[idx+len(key):]
			end := strings.IndexByte(rest, '"')
			if end < 0 {
				return "", false
			}
			return rest[:end], true
		}
		from = idx + len(key)
	}
}

// kmpFindAll returns the start index of every non-overlapping
// occurrence of pat in s, using the Knuth-Morris-Pratt failure
// function so a partial prefix match inside binary payload data never
// causes a quadratic rescan or a false split.
func kmpFindAll(s, pat []byte) []int {
	if len(pat) == 0 {
		return nil
	}
	fail := kmpFailure(pat)

	var matches []int
	j := 0
	for i := 0; i < len(s); i++ {
		for j > 0 && s[i] != pat[j] {
			j = fail[j-1]
		}
		if s[i] == pat[j] {
			j++
		}
		if j == len(pat) {
			matches = append(matches, i-len(pat)+1)
			j = fail[j-1]
		}
	}
	return matches
}

func kmpFailure(pat []byte) []int {
	fail := make([]int, len(pat))
	k := 0
	for i := 1; i < len(pat); i++ {
		for k > 0 && pat[i] != pat[k] {
			k = fail[k-1]
		}
		if pat[i] == pat[k] {
			k++
		}
		fail[i] = k
	}
	return fail
}
