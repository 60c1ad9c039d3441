// Digest algorithms for log content fingerprinting.
//
// Digest hashes the full log to 16 hex characters, used for audit
// trails and to fingerprint the result of a compaction. Three
// algorithms are supported, selectable via Config.Algorithm.
package shelf

import (
	"fmt"
	"hash/fnv"
	"io"

	"github.com/zeebo/xxh3"
	"golang.org/x/crypto/blake2b"
)

// Digest algorithm constants.
const (
	AlgXXHash3 = 1 // Default, fastest
	AlgFNV1a   = 2 // No external dependencies
	AlgBlake2b = 3 // Best distribution
)

// Digest hashes the current log content with the configured algorithm.
func (db *Store) Digest() (string, error) {
	if db.closed.Load() {
		return "", ErrClosed
	}
	return db.contentDigest()
}

func (db *Store) contentDigest() (string, error) {
	sz, err := size(db.reader)
	if err != nil {
		return "", fmt.Errorf("digest: stat: %w", err)
	}
	data, err := io.ReadAll(io.NewSectionReader(db.reader, 0, sz))
	if err != nil {
		return "", fmt.Errorf("digest: %w", err)
	}
	return digest(data, db.config.Algorithm)
}

// digest hashes data to 16 hex characters using the given algorithm.
func digest(data []byte, alg int) (string, error) {
	switch alg {
	case AlgXXHash3:
		return fmt.Sprintf("%016x", xxh3.Hash(data)), nil
	case AlgFNV1a:
		h := fnv.New64a()
		h.Write(data)
		return fmt.Sprintf("%016x", h.Sum64()), nil
	case AlgBlake2b:
		h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
		h.Write(data)
		return fmt.Sprintf("%016x", h.Sum(nil)), nil
	default:
		return "", fmt.Errorf("unknown digest algorithm %d", alg)
	}
}
