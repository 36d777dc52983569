package codec

import (
	"testing"
)

func FuzzDecode(f *testing.F) {
	// Seed corpus
	f.Add([]byte("---\nid: node-1-abcdef123\ntitle: A\n---\nbody\n"))
	f.Add([]byte("no front matter at all"))
	f.Add([]byte("---\nunterminated: true\n"))
	f.Add([]byte("---\n{broken: [\n---\n"))
	f.Add([]byte(""))
	f.Add([]byte("---\n---\n"))

	f.Fuzz(func(t *testing.T, data []byte) {
		// Limit size to avoid timeouts during fuzzing
		if len(data) > 1<<16 {
			data = data[:1<<16]
		}

		meta, body := Decode(data)

		// Re-encoding whatever came out must parse back to the same result.
		meta2, body2 := Decode(Encode(meta, body))
		if body != body2 {
			t.Fatalf("body not stable after re-encode:\n first: %q\nsecond: %q", body, body2)
		}
		if meta.ID != meta2.ID || meta.Title != meta2.Title || meta.Type != meta2.Type {
			t.Fatalf("metadata identity not stable: %+v vs %+v", meta, meta2)
		}
	})
}
