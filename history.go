// Compressed history archive for compacted tombstones.
//
// Tombstones are the store's audit trail, so Compact does not discard
// them outright: before the rewrite, every dropped line is
// zstd-compressed and appended to a sidecar file (<name>.hist.zst).
// Each batch is an independent zstd frame; the decoder treats the
// concatenated frames as one stream on read-back.
package shelf

import (
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
)

// HistorySuffix is appended to the store name to form the sidecar name.
const HistorySuffix = ".hist.zst"

// Shared encoder/decoder, allocated once: zstd state construction is
// expensive relative to the small batches written here. SpeedFastest
// because archiving runs inside the mutation gate on the Compact path.
var (
	zstdEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	zstdDecoder, _ = zstd.NewReader(nil)
)

// archive appends the given raw log lines to the history sidecar.
func (db *Store) archive(lines []byte) error {
	if len(lines) == 0 {
		return nil
	}

	f, err := db.root.OpenFile(db.name+HistorySuffix, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(zstdEncoder.EncodeAll(lines, nil)); err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	return nil
}

// History returns the tombstoned lines archived by past compactions, in
// the order they were dropped. Returns nil when no compaction has
// archived anything yet.
func (db *Store) History() ([]byte, error) {
	if db.closed.Load() {
		return nil, ErrClosed
	}

	f, err := db.root.OpenFile(db.name+HistorySuffix, os.O_RDONLY, 0644)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("history: %w", err)
	}
	defer f.Close()

	compressed, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}

	out, err := zstdDecoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: zstd: %w", ErrDecompress, err)
	}
	return out, nil
}
