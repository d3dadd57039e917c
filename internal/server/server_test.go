package server

import (
	"bufio"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoHandler(conn net.Conn) {
	br := bufio.NewReader(conn)
	line, err := br.ReadString('\n')
	if err != nil {
		return
	}
	_, _ = conn.Write([]byte("echo: " + line))
}

func TestStartAcceptsConnectionsAndReportsHostPort(t *testing.T) {
	s, err := Start("127.0.0.1:0", echoHandler, 2, nil)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, "127.0.0.1", s.Host())
	assert.NotZero(t, s.Port())

	conn, err := net.Dial("tcp", fmt.Sprintf("127.0.0.1:%d", s.Port()))
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("hello\n"))
	require.NoError(t, err)

	reply := make([]byte, len("echo: hello\n"))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, err = conn.Read(reply)
	require.NoError(t, err)
	assert.Equal(t, "echo: hello\n", string(reply))
}

func TestCloseIsIdempotent(t *testing.T) {
	s, err := Start("127.0.0.1:0", echoHandler, 1, nil)
	require.NoError(t, err)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
}

func TestRestartOnSamePortAfterClose(t *testing.T) {
	s, err := Start("127.0.0.1:0", echoHandler, 1, nil)
	require.NoError(t, err)
	port := s.Port()
	require.NoError(t, s.Close())

	s2, err := Start(fmt.Sprintf("127.0.0.1:%d", port), echoHandler, 1, nil)
	require.NoError(t, err)
	defer s2.Close()
	assert.Equal(t, port, s2.Port())
}

func TestCloseStopsAcceptingNewConnections(t *testing.T) {
	s, err := Start("127.0.0.1:0", echoHandler, 1, nil)
	require.NoError(t, err)
	port := s.Port()
	require.NoError(t, s.Close())

	_, err = net.DialTimeout("tcp", fmt.Sprintf("127.0.0.1:%d", port), 200*time.Millisecond)
	assert.Error(t, err)
}
