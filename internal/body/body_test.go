package body

import (
	"strconv"
	"strings"
	"testing"

	"github.com/minum-go/minum/internal/headers"
	"github.com/minum-go/minum/internal/streamreader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func headersFrom(t *testing.T, raw string) headers.Headers {
	t.Helper()
	h, err := headers.Parse(streamreader.New(strings.NewReader(raw), 0), 0, 0)
	require.NoError(t, err)
	return h
}

func TestHasBodyContentTypeAndLength(t *testing.T) {
	h := headersFrom(t, "content-type: application/x-www-form-urlencoded\r\ncontent-length: 10\r\n\r\n")
	has, err := HasBody(h)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestHasBodyContentTypeWithoutLengthIsFalse(t *testing.T) {
	h := headersFrom(t, "content-type: text/plain\r\n\r\n")
	has, err := HasBody(h)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestHasBodyZeroLengthIsFalse(t *testing.T) {
	h := headersFrom(t, "content-type: text/plain\r\ncontent-length: 0\r\n\r\n")
	has, err := HasBody(h)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestHasBodyChunked(t *testing.T) {
	h := headersFrom(t, "transfer-encoding: chunked\r\n\r\n")
	has, err := HasBody(h)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestHasBodyUnknownTransferEncodingWithContentTypeIsFalse(t *testing.T) {
	// Documented lenient Open Question: content-type + an unrecognized
	// transfer-encoding is treated as no body.
	h := headersFrom(t, "content-type: text/plain\r\ntransfer-encoding: foo\r\n\r\n")
	has, err := HasBody(h)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestDecodeURLEncoded(t *testing.T) {
	h := headersFrom(t, "content-type: application/x-www-form-urlencoded\r\ncontent-length: 23\r\n\r\n")
	r := streamreader.New(strings.NewReader("value_a=123&value_b=456"), 0)
	b, err := Decode(r, h, 0)
	require.NoError(t, err)
	assert.Equal(t, "123", b.PartAsString("value_a"))
	assert.Equal(t, "456", b.PartAsString("value_b"))
}

func TestDecodeMultipart(t *testing.T) {
	raw := "--xyz\r\ncontent-disposition: form-data; name=\"a\"\r\n\r\nhello\r\n--xyz--\r\n"
	r := streamreader.New(strings.NewReader(raw), 0)
	hWithLen := headersFrom(t, "content-type: multipart/form-data; boundary=xyz\r\ncontent-length: "+strconv.Itoa(len(raw))+"\r\n\r\n")
	b, err := Decode(r, hWithLen, 0)
	require.NoError(t, err)
	assert.Equal(t, "hello", b.PartAsString("a"))
}

func TestDecodeChunked(t *testing.T) {
	h := headersFrom(t, "transfer-encoding: chunked\r\n\r\n")
	r := streamreader.New(strings.NewReader("4\r\ntest\r\n0\r\n\r\n"), 0)
	b, err := Decode(r, h, 0)
	require.NoError(t, err)
	assert.Equal(t, "test", string(b.Raw))
}
