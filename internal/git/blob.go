package git

import "github.com/go-enry/go-enry/v2"

// MaxInMemoryBlobSize is the largest blob whose full content is loaded.
// Larger blobs only carry their leading bytes for the binary heuristic.
const MaxInMemoryBlobSize int64 = 1_000_000_000

// IsBinary reports whether the blob looks like binary content.
func (b Blob) IsBinary() bool {
	data := b.data
	if len(data) > binarySniffLen {
		data = data[:binarySniffLen]
	}
	return enry.IsBinary(data)
}

// Truncated reports whether only a prefix of the content was loaded.
func (b Blob) Truncated() bool {
	return int64(len(b.data)) < b.Size
}
