// Package connhandler implements the per-connection request/response
// loop: parse, dispatch, serialize, and repeat for as many requests as
// keep-alive semantics allow, logging and answering with a best-effort
// error response when parsing fails partway through.
package connhandler

import (
	"errors"
	"io"
	"net"
	"time"

	"github.com/minum-go/minum/internal/body"
	"github.com/minum-go/minum/internal/clock"
	"github.com/minum-go/minum/internal/config"
	"github.com/minum-go/minum/internal/headers"
	"github.com/minum-go/minum/internal/herr"
	"github.com/minum-go/minum/internal/request"
	"github.com/minum-go/minum/internal/response"
	"github.com/minum-go/minum/internal/router"
	"github.com/minum-go/minum/internal/startline"
	"github.com/minum-go/minum/internal/streamreader"
	"github.com/sirupsen/logrus"
)

// Deps bundles the collaborators a connection needs: the route table
// (read-only after startup), the configured limits, the injected
// clock behind the "date" header, and a logger.
type Deps struct {
	Router *router.Router
	Config config.Config
	Clock  clock.Clock
	Log    *logrus.Logger
}

// Handle runs the request/response loop for one accepted connection
// until the client closes it, a timeout elapses, a parse error occurs,
// or the negotiated keep-alive semantics call for closing after one
// exchange. The caller owns conn and is responsible for closing it;
// Handle itself never panics on I/O failures — those are logged and
// treated as a reason to return.
func Handle(conn net.Conn, deps Deps) {
	if deps.Clock == nil {
		deps.Clock = clock.System{}
	}
	timeout := time.Duration(deps.Config.KeepAliveTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	r := streamreader.New(conn, deps.Config.MaxLineBytes)

	for {
		if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
			deps.logf("set read deadline: %v", err)
			return
		}

		line, err := r.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			deps.logf("read start line: %v", err)
			return
		}

		sl, err := startline.Extract(line, deps.Config.MaxQueryStringKeysCount)
		if err != nil {
			deps.respondError(conn, err)
			return
		}

		hdrs, err := headers.Parse(r, deps.Config.MaxHeaders, deps.Config.MaxHeaderBytes)
		if err != nil {
			deps.respondError(conn, err)
			return
		}

		has, err := body.HasBody(hdrs)
		if err != nil {
			deps.respondError(conn, err)
			return
		}

		reqBody := body.Empty
		if has {
			reqBody, err = body.Decode(r, hdrs, deps.Config.MaxBodyBytes)
			if err != nil {
				deps.respondError(conn, err)
				return
			}
		}

		req := &request.Request{
			Headers:    hdrs,
			StartLine:  sl,
			Body:       reqBody,
			RemoteAddr: remoteAddr(conn),
		}

		var handler router.Handler
		if !sl.IsEmpty() {
			handler = deps.Router.Find(sl)
		}

		var resp *response.Response
		if handler == nil {
			resp = response.NotFound()
		} else {
			resp = handler(req)
		}

		ka := decideKeepAlive(sl.Version, hdrs, deps.Config.KeepAliveTimeoutSeconds)

		if err := response.Write(conn, resp, deps.Clock, ka); err != nil {
			deps.logf("write response: %v", err)
			return
		}

		if !ka.Enabled {
			return
		}
	}
}

// decideKeepAlive implements the negotiation rule: HTTP/1.1 keeps
// alive unless the client sent "connection: close"; HTTP/1.0 keeps
// alive only if the client opted in with "connection: keep-alive".
func decideKeepAlive(version startline.Version, h headers.Headers, timeoutSeconds int) response.KeepAlive {
	if timeoutSeconds <= 0 {
		timeoutSeconds = 3
	}
	var enabled bool
	switch version {
	case startline.OneDotOne:
		enabled = !h.HasConnectionToken("close")
	case startline.OneDotZero:
		enabled = h.HasConnectionToken("keep-alive")
	default:
		enabled = false
	}
	return response.KeepAlive{Enabled: enabled, TimeoutSeconds: timeoutSeconds}
}

// respondError renders a parse or forbidden-use error as a best-effort
// 400/413 response, then lets the caller close the connection.
func (d Deps) respondError(conn net.Conn, err error) {
	d.logf("parse error: %v", err)

	var resp *response.Response
	switch {
	case errors.Is(err, herr.ErrForbidden):
		resp = response.RequestEntityTooLarge()
	case errors.Is(err, herr.ErrParse):
		resp = response.BadRequest()
	default:
		// Invariant violations and raw I/O failures: nothing sane to
		// say to the client, just stop.
		return
	}

	_ = response.Write(conn, resp, clockOrSystem(d.Clock), response.KeepAlive{Enabled: false})
}

func clockOrSystem(c clock.Clock) clock.Clock {
	if c == nil {
		return clock.System{}
	}
	return c
}

func (d Deps) logf(format string, args ...any) {
	if d.Log == nil {
		return
	}
	d.Log.Debugf(format, args...)
}

func remoteAddr(conn net.Conn) string {
	if conn == nil || conn.RemoteAddr() == nil {
		return ""
	}
	return conn.RemoteAddr().String()
}
