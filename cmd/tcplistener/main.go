// Command tcplistener is a small debugging tool: it accepts raw TCP
// connections, parses one HTTP request off each with the same
// primitives the real server uses, and prints what it found.
package main

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/minum-go/minum/internal/body"
	"github.com/minum-go/minum/internal/config"
	"github.com/minum-go/minum/internal/headers"
	"github.com/minum-go/minum/internal/startline"
	"github.com/minum-go/minum/internal/streamreader"
)

const port = ":42069"

func main() {
	cfg := config.Default()

	tcp, err := net.Listen("tcp", port)
	if err != nil {
		fmt.Println("ERROR: failed to open.", err)
		os.Exit(1)
	}
	defer tcp.Close()

	fmt.Println("Listening for TCP traffic on", port)
	for {
		conn, err := tcp.Accept()
		if err != nil {
			fmt.Println("ERROR: failed to accept.", err)
			continue
		}
		go handleConn(conn, cfg)
	}
}

func handleConn(conn net.Conn, cfg config.Config) {
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(5 * time.Second))

	r := streamreader.New(conn, cfg.MaxLineBytes)

	line, err := r.ReadLine()
	if err != nil {
		fmt.Println("ERROR: failed to read start line:", err)
		return
	}
	sl, err := startline.Extract(line, cfg.MaxQueryStringKeysCount)
	if err != nil {
		fmt.Println("ERROR: bad query string:", err)
		return
	}

	hdrs, err := headers.Parse(r, cfg.MaxHeaders, cfg.MaxHeaderBytes)
	if err != nil {
		fmt.Println("ERROR: failed to parse headers:", err)
		return
	}

	fmt.Printf("Request line:\n- Method: %s\n- Target: %s\n- Version: %s\n",
		sl.Verb, sl.Path.IsolatedPath, sl.Version)

	fmt.Println("Headers:")
	if hdrs.Count() == 0 {
		fmt.Println("- (none)")
	} else {
		for _, name := range hdrs.Names() {
			fmt.Printf("- %s: %v\n", name, hdrs.ValueByKey(name))
		}
	}

	has, err := body.HasBody(hdrs)
	if err != nil {
		fmt.Println("ERROR:", err)
		return
	}

	fmt.Println("Body:")
	if !has {
		fmt.Println("- (none)")
	} else {
		b, err := body.Decode(r, hdrs, cfg.MaxBodyBytes)
		if err != nil && !errors.Is(err, io.EOF) {
			fmt.Println("ERROR:", err)
			return
		}
		fmt.Println(string(b.Raw))
	}

	resp := "HTTP/1.1 200 OK\r\n" +
		"Content-Type: text/plain\r\n" +
		"Content-Length: 2\r\n" +
		"Connection: close\r\n" +
		"\r\n" +
		"OK"
	_, _ = io.WriteString(conn, resp)
}
