// Package request holds the immutable Request value handed to route
// handlers once a full request has been read off the wire.
package request

import (
	"github.com/minum-go/minum/internal/body"
	"github.com/minum-go/minum/internal/headers"
	"github.com/minum-go/minum/internal/startline"
)

// Request is the fully-parsed, immutable view of an HTTP request
// handed to route handlers.
type Request struct {
	Headers    headers.Headers
	StartLine  startline.StartLine
	Body       body.Body
	RemoteAddr string
}
