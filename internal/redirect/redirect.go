// Package redirect implements a single-shot HTTP→HTTPS responder: it
// reads one request line off a plain connection and answers with a
// 303 pointing at the TLS host and port.
package redirect

import (
	"fmt"
	"io"
	"net"

	"github.com/minum-go/minum/internal/config"
	"github.com/minum-go/minum/internal/streamreader"
	"github.com/sirupsen/logrus"
)

// Handle reads one line off conn. If the line is empty or the stream
// is already closed, it returns silently without writing anything.
// Otherwise it writes a 303 SEE OTHER pointing at the SSL host/port.
func Handle(conn net.Conn, cfg config.Config, log *logrus.Logger) {
	r := streamreader.New(conn, cfg.MaxLineBytes)
	line, err := r.ReadLine()
	if err != nil || line == "" {
		if log != nil {
			log.WithError(err).Debug("redirect handler: no request line, closing silently")
		}
		return
	}

	location := fmt.Sprintf("https://%s:%d/", cfg.Hostname, cfg.SSLServerPort)
	resp := "HTTP/1.1 303 SEE OTHER\r\n" +
		"location: " + location + "\r\n" +
		"content-length: 0\r\n" +
		"\r\n"

	if _, err := io.WriteString(conn, resp); err != nil && log != nil {
		log.WithError(err).Debug("redirect handler: write failed")
	}
}
