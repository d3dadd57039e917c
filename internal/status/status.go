// Package status defines the closed set of status codes the framework
// understands, shared by both the response writer and the status-line
// parser used when the core acts as a client against its own server.
package status

import "fmt"

// Code pairs an HTTP status number with its canonical reason phrase.
type Code struct {
	Num    int
	Reason string
}

func (c Code) String() string {
	return fmt.Sprintf("%d %s", c.Num, c.Reason)
}

var (
	OK                    = Code{200, "OK"}
	SeeOther              = Code{303, "SEE OTHER"}
	BadRequest            = Code{400, "BAD REQUEST"}
	NotFound              = Code{404, "NOT FOUND"}
	RequestEntityTooLarge = Code{413, "REQUEST ENTITY TOO LARGE"}
	InternalServerError   = Code{500, "INTERNAL SERVER ERROR"}
)

var byNum = map[int]Code{
	OK.Num:                    OK,
	SeeOther.Num:              SeeOther,
	BadRequest.Num:            BadRequest,
	NotFound.Num:              NotFound,
	RequestEntityTooLarge.Num: RequestEntityTooLarge,
	InternalServerError.Num:   InternalServerError,
}

// ErrNoSuchElement is returned by FromInt when n is not a status code
// this framework knows about.
var ErrNoSuchElement = fmt.Errorf("no such element")

// FromInt looks up the Code for a numeric status, failing with
// ErrNoSuchElement for anything outside the known registry.
func FromInt(n int) (Code, error) {
	c, ok := byNum[n]
	if !ok {
		return Code{}, fmt.Errorf("status code %d: %w", n, ErrNoSuchElement)
	}
	return c, nil
}
