// Package statusline parses an HTTP response's status line
// ("HTTP/1.1 200 OK"), used symmetrically to startline when this core
// acts as a client, such as a test harness driving the server it just
// started.
package statusline

import (
	"fmt"
	"regexp"

	"github.com/minum-go/minum/internal/herr"
	"github.com/minum-go/minum/internal/startline"
	"github.com/minum-go/minum/internal/status"
)

var pattern = regexp.MustCompile(`^HTTP/(1\.1|1\.0) (\d{3}) (.*)$`)

// StatusLine is the parsed first line of an HTTP response.
type StatusLine struct {
	Status   status.Code
	Version  startline.Version
	RawValue string
}

// Extract parses line into a StatusLine. Unlike startline.Extract this
// is not lenient: a regex mismatch produces an invariant error quoting
// the line and the expected pattern, and a matched but unrecognized
// numeric code produces a "no such element" failure.
func Extract(line string) (StatusLine, error) {
	m := pattern.FindStringSubmatch(line)
	if m == nil {
		return StatusLine{}, fmt.Errorf(
			"status line %q does not match pattern %s: %w",
			line, pattern.String(), herr.ErrInvariant,
		)
	}

	var version startline.Version
	switch m[1] {
	case "1.0":
		version = startline.OneDotZero
	case "1.1":
		version = startline.OneDotOne
	}

	var num int
	if _, err := fmt.Sscanf(m[2], "%d", &num); err != nil {
		return StatusLine{}, fmt.Errorf("status line %q: bad status number: %w", line, herr.ErrInvariant)
	}

	code, err := status.FromInt(num)
	if err != nil {
		return StatusLine{}, err
	}

	return StatusLine{
		Status:   code,
		Version:  version,
		RawValue: line,
	}, nil
}
