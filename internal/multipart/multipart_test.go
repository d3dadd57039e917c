package multipart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func build(boundary string, parts ...string) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, []byte("--"+boundary+"\r\n")...)
		out = append(out, []byte(p)...)
	}
	out = append(out, []byte("--"+boundary+"--\r\n")...)
	return out
}

func TestDecodeTextAndBinaryParts(t *testing.T) {
	boundary := "i_am_a_boundary"
	raw := build(boundary,
		"content-disposition: form-data; name=\"text1\"\r\n"+
			"content-type: text/plain\r\n\r\n"+
			"I am a value that is text\r\n",
		"content-disposition: form-data; name=\"image_uploads\"\r\n"+
			"content-type: application/octet-stream\r\n\r\n"+
			string([]byte{1, 2, 3})+"\r\n",
	)

	body, err := Decode(raw, boundary)
	require.NoError(t, err)

	assert.Equal(t, "I am a value that is text", body.PartAsString("text1"))
	assert.Equal(t, []byte{1, 2, 3}, body.Parts["image_uploads"])
	assert.Equal(t, []string{"text/plain"}, body.PartitionHeaders["text1"].ValueByKey("content-type"))
}

func TestDecodeBinaryRoundTripsArbitraryBytes(t *testing.T) {
	boundary := "b123"
	// Contains "--b12" — a partial prefix of the separator "--b123" —
	// followed by a byte that breaks the match, plus NUL and 0xff.
	payload := []byte{0x01, 0x02, 0x03, '-', '-', 'b', '1', '2', 'X', 0x00, 0xff}
	raw := build(boundary,
		"content-disposition: form-data; name=\"file\"\r\n\r\n"+string(payload)+"\r\n",
	)

	body, err := Decode(raw, boundary)
	require.NoError(t, err)
	assert.Equal(t, payload, body.Parts["file"])
}

func TestDecodeSkipsPartsWithoutName(t *testing.T) {
	boundary := "bnd"
	raw := build(boundary,
		"content-type: text/plain\r\n\r\nno disposition at all\r\n",
		"content-disposition: form-data\r\n\r\nno name param\r\n",
		"content-disposition: form-data; name=\"ok\"\r\n\r\nkept\r\n",
	)

	body, err := Decode(raw, boundary)
	require.NoError(t, err)
	assert.Len(t, body.Parts, 1)
	assert.Equal(t, "kept", body.PartAsString("ok"))
}

func TestDecodeDiscardsPreambleAndEpilogue(t *testing.T) {
	boundary := "bnd2"
	raw := append([]byte("ignored preamble\r\n"), build(boundary,
		"content-disposition: form-data; name=\"a\"\r\n\r\nvalue\r\n",
	)...)
	raw = append(raw, []byte("ignored epilogue")...)

	body, err := Decode(raw, boundary)
	require.NoError(t, err)
	assert.Equal(t, "value", body.PartAsString("a"))
}

func TestKMPFindAllNoFalseMatchOnPartialPrefix(t *testing.T) {
	pat := []byte("--boundary")
	// Binary data that contains "--bound" but never the full separator.
	s := []byte("xx--boundyy--boundaryzz")
	matches := kmpFindAll(s, pat)
	require.Len(t, matches, 1)
	assert.Equal(t, 11, matches[0])
}
