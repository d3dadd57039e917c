// Package startline parses an HTTP request's start line ("GET /path
// HTTP/1.1"). Extract accepts both HTTP/1.0 and HTTP/1.1 and never
// errors on a malformed line — it reports the mismatch by returning
// the Empty sentinel, leaving the caller to decide how to respond.
package startline

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/minum-go/minum/internal/herr"
)

// Verb is the closed set of methods this framework understands.
type Verb string

const (
	GET     Verb = "GET"
	POST    Verb = "POST"
	PUT     Verb = "PUT"
	DELETE  Verb = "DELETE"
	PATCH   Verb = "PATCH"
	HEAD    Verb = "HEAD"
	OPTIONS Verb = "OPTIONS"
	TRACE   Verb = "TRACE"
)

var knownVerbs = map[string]Verb{
	"GET": GET, "POST": POST, "PUT": PUT, "DELETE": DELETE,
	"PATCH": PATCH, "HEAD": HEAD, "OPTIONS": OPTIONS, "TRACE": TRACE,
}

// Version is the closed set of HTTP versions this framework speaks.
type Version string

const (
	OneDotZero Version = "1.0"
	OneDotOne  Version = "1.1"
)

// PathDetails holds the parsed path and query string of a start line.
// IsolatedPath never begins with '/': the leading slash is stripped
// during parsing, and "/" yields an empty IsolatedPath.
type PathDetails struct {
	IsolatedPath   string
	RawQueryString string
	QueryPairs     map[string]string
}

// StartLine is the parsed first line of an HTTP request.
type StartLine struct {
	Verb     Verb
	Path     PathDetails
	Version  Version
	RawValue string
}

// Key is the comparable projection of a StartLine, usable as a map key
// and used by IsEmpty: (verb, isolated path, version). StartLine itself
// is not comparable with == because PathDetails.QueryPairs is a map.
// The router does not use Key; its exact table is keyed on verb and
// isolated path only.
type Key struct {
	Verb    Verb
	Path    string
	Version Version
}

func (s StartLine) Key() Key {
	return Key{Verb: s.Verb, Path: s.Path.IsolatedPath, Version: s.Version}
}

// Empty is the distinguished parse-failure / placeholder sentinel.
// Its zero value already satisfies "all fields empty/default".
var Empty = StartLine{}

// IsEmpty reports whether s is the parse-failure sentinel, comparing
// through Key since PathDetails.QueryPairs makes StartLine itself
// non-comparable.
func (s StartLine) IsEmpty() bool {
	return s.Key() == Empty.Key()
}

var pattern = regexp.MustCompile(
	`^(GET|POST|PUT|DELETE|PATCH|HEAD|OPTIONS|TRACE) /([^ ]*) HTTP/(1\.1|1\.0)$`,
)

// Extract parses line into a StartLine. Any mismatch — unknown verb,
// missing path, bad version, or a line that simply isn't shaped like a
// start line (including "") — returns Empty rather than an error; this
// lets the router cleanly 404 on garbage input instead of the
// connection handler having to special-case parse failures at this
// layer. maxQueryKeys caps the number of decoded query pairs; exceeding
// it is a forbidden-use error.
func Extract(line string, maxQueryKeys int) (StartLine, error) {
	m := pattern.FindStringSubmatch(line)
	if m == nil {
		return Empty, nil
	}

	verb, ok := knownVerbs[m[1]]
	if !ok {
		return Empty, nil
	}

	var version Version
	switch m[3] {
	case "1.0":
		version = OneDotZero
	case "1.1":
		version = OneDotOne
	default:
		return Empty, nil
	}

	pd, err := parsePath(m[2], maxQueryKeys)
	if err != nil {
		return Empty, err
	}

	return StartLine{
		Verb:     verb,
		Path:     pd,
		Version:  version,
		RawValue: line,
	}, nil
}

// parsePath splits the raw path at the first '?' and decodes the query
// string into pairs. Pairs without '=' are silently dropped.
func parsePath(raw string, maxQueryKeys int) (PathDetails, error) {
	path := raw
	rawQuery := ""
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		path = raw[:i]
		rawQuery = raw[i+1:]
	}

	pairs := map[string]string{}
	if rawQuery != "" {
		tokens := strings.Split(rawQuery, "&")
		if maxQueryKeys > 0 && len(tokens) > maxQueryKeys {
			return PathDetails{}, herr.ErrForbidden
		}
		for _, tok := range tokens {
			eq := strings.IndexByte(tok, '=')
			if eq < 0 {
				continue // no '=' => silently dropped
			}
			k, errK := url.QueryUnescape(tok[:eq])
			v, errV := url.QueryUnescape(tok[eq+1:])
			if errK != nil || errV != nil {
				continue
			}
			pairs[k] = v
		}
	}

	return PathDetails{
		IsolatedPath:   path,
		RawQueryString: rawQuery,
		QueryPairs:     pairs,
	}, nil
}
