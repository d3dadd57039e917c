// Package body decides whether a request carries a body and decodes
// it: chunked transfer-encoding takes priority over content-type-driven
// decoding, content-length bounds the read, and a content-type without
// usable framing headers is treated as having no body at all.
package body

import (
	"fmt"
	"strings"

	"github.com/minum-go/minum/internal/headers"
	"github.com/minum-go/minum/internal/herr"
	"github.com/minum-go/minum/internal/multipart"
	"github.com/minum-go/minum/internal/streamreader"
	"github.com/minum-go/minum/internal/urlencoded"
)

// Body is the decoded request body.
type Body struct {
	Parts            map[string][]byte
	PartitionHeaders map[string]headers.Headers
	Raw              []byte
}

// Empty is the distinguished empty body.
var Empty = Body{Parts: map[string][]byte{}, PartitionHeaders: map[string]headers.Headers{}}

// PartAsString decodes the named part's bytes as UTF-8.
func (b Body) PartAsString(name string) string {
	return string(b.Parts[name])
}

// HasBody reports true iff transfer-encoding contains "chunked", or
// content-type is present and content-length is present and > 0.
func HasBody(h headers.Headers) (bool, error) {
	if strings.Contains(strings.ToLower(h.TransferEncoding()), "chunked") {
		return true, nil
	}
	if h.ContentType() == "" {
		return false, nil
	}
	cl, err := h.ContentLength()
	if err != nil {
		return false, err
	}
	return cl > 0, nil
}

// Decode reads and decodes the body off r according to h, enforcing
// maxBody on whichever framing mechanism is in play. transfer-encoding
// is tried before content-type.
func Decode(r *streamreader.Reader, h headers.Headers, maxBody int) (Body, error) {
	te := strings.ToLower(h.TransferEncoding())
	if strings.Contains(te, "chunked") {
		raw, err := r.ReadChunked(maxBody)
		if err != nil {
			return Empty, err
		}
		return Body{Raw: raw, Parts: map[string][]byte{}, PartitionHeaders: map[string]headers.Headers{}}, nil
	}

	cl, err := h.ContentLength()
	if err != nil {
		return Empty, err
	}
	if maxBody > 0 && cl > maxBody {
		return Empty, fmt.Errorf("content-length %d exceeds max body size %d: %w", cl, maxBody, herr.ErrForbidden)
	}

	raw, err := r.ReadExact(cl)
	if err != nil {
		return Empty, err
	}

	ct := h.ContentType()
	switch {
	case strings.HasPrefix(ct, "application/x-www-form-urlencoded"):
		pairs, err := urlencoded.Parse(string(raw))
		if err != nil {
			return Empty, err
		}
		parts := map[string][]byte{}
		for k, v := range pairs {
			parts[k] = []byte(v)
		}
		return Body{Raw: raw, Parts: parts, PartitionHeaders: map[string]headers.Headers{}}, nil

	case strings.HasPrefix(ct, "multipart/form-data"):
		boundary, ok := boundaryFrom(ct)
		if !ok {
			return Empty, fmt.Errorf("multipart content-type %q has no boundary: %w", ct, herr.ErrParse)
		}
		mb, err := multipart.Decode(raw, boundary)
		if err != nil {
			return Empty, err
		}
		return Body{Raw: raw, Parts: mb.Parts, PartitionHeaders: mb.PartitionHeaders}, nil

	default:
		return Body{Raw: raw, Parts: map[string][]byte{}, PartitionHeaders: map[string]headers.Headers{}}, nil
	}
}

func boundaryFrom(contentType string) (string, bool) {
	idx := strings.Index(contentType, "boundary=")
	if idx < 0 {
		return "", false
	}
	b := contentType[idx+len("boundary="):]
	if i := strings.IndexByte(b, ';'); i >= 0 {
		b = b[:i]
	}
	b = strings.Trim(b, `" `)
	if b == "" {
		return "", false
	}
	return b, true
}
