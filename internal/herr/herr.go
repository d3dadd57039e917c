// Package herr defines the small sentinel-error vocabulary shared by the
// parsing packages, so callers can tell a malformed-input error from a
// limit violation with errors.Is instead of type-switching.
package herr

import "errors"

var (
	// ErrParse marks malformed input that the connection handler turns
	// into a 400 response and then closes the connection.
	ErrParse = errors.New("malformed input")

	// ErrForbidden marks a configured limit being exceeded (too many
	// query keys, oversized headers or body).
	ErrForbidden = errors.New("limit exceeded")

	// ErrInvariant marks a programmer error: something the caller
	// promised would never happen. Sites that return this are telling
	// the caller it is safe to treat the failure as fatal to the
	// connection.
	ErrInvariant = errors.New("invariant violation")
)
