// Package codec reads and writes the node file format: a yaml front-matter
// block delimited by "---" lines, followed by a free-form text body.
//
// Decoding is deliberately lenient. A missing, unterminated, or malformed
// block never fails; it degrades to empty metadata with the whole input as
// body, so a hand-edited or foreign file still loads as an opaque node.
package codec

import (
	"bytes"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/weftworks/weft/api"
)

const (
	delimiter = "---"
	opener    = delimiter + "\n"
	closer    = "\n" + delimiter + "\n"
)

// Decode splits raw content into metadata and body. It never returns an
// error: anything that does not parse as a front-matter block is body.
func Decode(raw []byte) (api.Metadata, string) {
	text := string(raw)
	var meta api.Metadata

	if !strings.HasPrefix(text, opener) {
		return meta, text
	}
	rest := text[len(opener):]
	end := strings.Index(rest, closer)
	if end < 0 {
		// Unterminated block; treat the whole input as body.
		return meta, text
	}
	block := rest[:end]
	body := rest[end+len(closer):]

	if err := yaml.Unmarshal([]byte(block), &meta); err != nil {
		// Malformed yaml, or a block that is not a mapping.
		return api.Metadata{}, text
	}
	return meta, body
}

// Encode serializes metadata and body into the node file format. Field
// order is fixed and extras are emitted in sorted key order, so output is
// deterministic for a given input.
func Encode(meta api.Metadata, body string) []byte {
	var buf bytes.Buffer
	buf.WriteString(opener)

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	// Metadata is plain data; encoding cannot fail.
	_ = enc.Encode(meta)
	_ = enc.Close()

	buf.WriteString(delimiter + "\n")
	buf.WriteString(body)
	return buf.Bytes()
}

// EncodeSidecar serializes metadata alone, the layout used by sidecar files.
func EncodeSidecar(meta api.Metadata) []byte {
	return Encode(meta, "")
}
