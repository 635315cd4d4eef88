package badger

import (
	"encoding/binary"
	"fmt"
)

// Key prefixes for the two record types.
const (
	chunkPrefix = "chk"
	docPrefix   = "doc"
)

// makeChunkKey generates a composite key for a chunk.
// Format: chk:<documentID>:<index>, index in BigEndian so iteration order
// matches chunk order within a document.
func makeChunkKey(documentID string, index int) []byte {
	prefix := fmt.Sprintf("%s:%s:", chunkPrefix, documentID)
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(index))
	return buf
}

// makeDocKey generates a key for a document registry entry.
func makeDocKey(documentID string) []byte {
	return []byte(fmt.Sprintf("%s:%s", docPrefix, documentID))
}

// hasPrefix reports whether key starts with prefix followed by ':'.
func hasPrefix(key []byte, prefix string) bool {
	if len(key) < len(prefix)+1 {
		return false
	}
	return string(key[:len(prefix)]) == prefix && key[len(prefix)] == ':'
}
