// Package response holds the immutable Response value object and its
// wire serializer: build a Response with a constructor, then hand it
// and a clock to Write to produce the status line, headers, and body
// in one pass.
package response

import (
	"fmt"
	"io"
	"net/textproto"
	"sort"
	"time"

	"github.com/minum-go/minum/internal/clock"
	"github.com/minum-go/minum/internal/status"
)

// Response is the immutable result of a handler invocation.
type Response struct {
	Status       status.Code
	ExtraHeaders map[string]string
	Body         []byte
}

// HTMLOk builds a 200 response with an HTML content-type carrying
// text's UTF-8 bytes.
func HTMLOk(text string) *Response {
	return &Response{
		Status:       status.OK,
		ExtraHeaders: map[string]string{"content-type": "text/html; charset=UTF-8"},
		Body:         []byte(text),
	}
}

// NotFound is the empty-body 404 the connection handler emits when the
// router finds no matching handler.
func NotFound() *Response {
	return &Response{Status: status.NotFound, ExtraHeaders: map[string]string{}}
}

// BadRequest is the empty-body 400 the connection handler emits on a
// parse error it can still answer before giving up on the connection.
func BadRequest() *Response {
	return &Response{Status: status.BadRequest, ExtraHeaders: map[string]string{}}
}

// RequestEntityTooLarge is the empty-body 413 emitted when a
// configured size limit is exceeded.
func RequestEntityTooLarge() *Response {
	return &Response{Status: status.RequestEntityTooLarge, ExtraHeaders: map[string]string{}}
}

// KeepAlive describes whether, and with what timeout, the connection
// handler intends to keep the socket open after this response.
type KeepAlive struct {
	Enabled        bool
	TimeoutSeconds int
}

const serverName = "minum"

// Write serializes resp to w: status line, date (from clk), server,
// content-type/content-length, any other ExtraHeaders (sorted by name),
// connection/keep-alive headers, blank line, body — in that fixed order.
func Write(w io.Writer, resp *Response, clk clock.Clock, ka KeepAlive) error {
	if _, err := fmt.Fprintf(w, "HTTP/1.1 %d %s\r\n", resp.Status.Num, resp.Status.Reason); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "date: %s\r\n", clk.Now().UTC().Format(time.RFC1123)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "server: %s\r\n", serverName); err != nil {
		return err
	}

	contentType := resp.ExtraHeaders["content-type"]
	if contentType == "" {
		contentType = "text/plain; charset=UTF-8"
	}
	if _, err := fmt.Fprintf(w, "content-type: %s\r\n", contentType); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "content-length: %d\r\n", len(resp.Body)); err != nil {
		return err
	}

	extraNames := make([]string, 0, len(resp.ExtraHeaders))
	for k := range resp.ExtraHeaders {
		if k == "content-type" {
			continue
		}
		extraNames = append(extraNames, k)
	}
	sort.Strings(extraNames)
	for _, k := range extraNames {
		if _, err := fmt.Fprintf(w, "%s: %s\r\n", textproto.CanonicalMIMEHeaderKey(k), resp.ExtraHeaders[k]); err != nil {
			return err
		}
	}

	if ka.Enabled {
		if _, err := fmt.Fprintf(w, "connection: keep-alive\r\n"); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "keep-alive: timeout=%d\r\n", ka.TimeoutSeconds); err != nil {
			return err
		}
	} else {
		if _, err := fmt.Fprintf(w, "connection: close\r\n"); err != nil {
			return err
		}
	}

	if _, err := io.WriteString(w, "\r\n"); err != nil {
		return err
	}
	_, err := w.Write(resp.Body)
	return err
}
