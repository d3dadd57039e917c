package connhandler

import (
	"bufio"
	"io"
	"net"
	"testing"
	"time"

	"github.com/minum-go/minum/internal/config"
	"github.com/minum-go/minum/internal/request"
	"github.com/minum-go/minum/internal/response"
	"github.com/minum-go/minum/internal/router"
	"github.com/minum-go/minum/internal/startline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDeps() Deps {
	r := router.New()
	r.Register(startline.GET, "add_two_numbers", func(req *request.Request) *response.Response {
		return response.HTMLOk("86")
	})
	cfg := config.Default()
	cfg.KeepAliveTimeoutSeconds = 1
	return Deps{Router: r, Config: cfg}
}

func readStatusLine(t *testing.T, r *bufio.Reader) string {
	t.Helper()
	line, err := r.ReadString('\n')
	require.NoError(t, err)
	return line
}

func drainHeaders(t *testing.T, r *bufio.Reader) {
	t.Helper()
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		if line == "\r\n" {
			return
		}
	}
}

func TestHandleAddTwoNumbers(t *testing.T) {
	client, server := net.Pipe()
	deps := testDeps()

	done := make(chan struct{})
	go func() {
		Handle(server, deps)
		close(done)
	}()

	_, err := io.WriteString(client, "GET /add_two_numbers HTTP/1.1\r\nconnection: close\r\n\r\n")
	require.NoError(t, err)

	br := bufio.NewReader(client)
	status := readStatusLine(t, br)
	assert.Equal(t, "HTTP/1.1 200 OK\r\n", status)
	drainHeaders(t, br)

	body := make([]byte, 2)
	_, err = io.ReadFull(br, body)
	require.NoError(t, err)
	assert.Equal(t, "86", string(body))

	client.Close()
	<-done
}

func TestHandleUnknownRouteReturns404(t *testing.T) {
	client, server := net.Pipe()
	deps := testDeps()

	done := make(chan struct{})
	go func() {
		Handle(server, deps)
		close(done)
	}()

	_, err := io.WriteString(client, "GET /nope HTTP/1.1\r\nconnection: close\r\n\r\n")
	require.NoError(t, err)

	br := bufio.NewReader(client)
	assert.Equal(t, "HTTP/1.1 404 NOT FOUND\r\n", readStatusLine(t, br))

	client.Close()
	<-done
}

func TestHandleHTTP10KeepAliveThenClose(t *testing.T) {
	client, server := net.Pipe()
	deps := testDeps()

	done := make(chan struct{})
	go func() {
		Handle(server, deps)
		close(done)
	}()

	_, err := io.WriteString(client, "GET /add_two_numbers HTTP/1.0\r\nconnection: keep-alive\r\n\r\n")
	require.NoError(t, err)

	br := bufio.NewReader(client)
	assert.Equal(t, "HTTP/1.1 200 OK\r\n", readStatusLine(t, br))
	drainHeaders(t, br)
	firstBody := make([]byte, 2)
	_, err = io.ReadFull(br, firstBody)
	require.NoError(t, err)
	assert.Equal(t, "86", string(firstBody))

	_, err = io.WriteString(client, "GET /add_two_numbers HTTP/1.0\r\n\r\n")
	require.NoError(t, err)

	assert.Equal(t, "HTTP/1.1 200 OK\r\n", readStatusLine(t, br))
	drainHeaders(t, br)
	secondBody := make([]byte, 2)
	_, err = io.ReadFull(br, secondBody)
	require.NoError(t, err)
	assert.Equal(t, "86", string(secondBody))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not close connection after non-keep-alive HTTP/1.0 request")
	}

	client.Close()
}

func TestHandleMalformedStartLineFallsBackTo404(t *testing.T) {
	client, server := net.Pipe()
	deps := testDeps()

	done := make(chan struct{})
	go func() {
		Handle(server, deps)
		close(done)
	}()

	_, err := io.WriteString(client, "GET \r\n\r\n")
	require.NoError(t, err)

	br := bufio.NewReader(client)
	status := readStatusLine(t, br)
	assert.Equal(t, "HTTP/1.1 404 NOT FOUND\r\n", status)

	client.Close()
	<-done
}
