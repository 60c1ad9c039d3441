// Log compaction.
//
// The log never shrinks during normal operation: Insert appends and
// Delete flips tag bytes. Compact reclaims the space by rewriting the
// log with only live entries, archiving the dropped tombstones to the
// history sidecar first. The rewrite is a direct overwrite plus
// truncate under the mutation gate; a crash mid-rewrite can leave a
// truncated log.
package shelf

import "bytes"

// CompactStats reports the outcome of a compaction.
type CompactStats struct {
	Kept    int    // live lines retained
	Dropped int    // tombstoned lines archived and removed
	Digest  string // content digest of the compacted log
}

// Compact rewrites the log keeping only live entries. Dropped lines are
// preserved in the compressed history sidecar, so the audit trail
// survives compaction.
func (db *Store) Compact() (CompactStats, error) {
	if db.closed.Load() {
		return CompactStats{}, ErrClosed
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	entries, err := db.readLog()
	if err != nil {
		return CompactStats{}, err
	}

	kept := make([]entry, 0, len(entries))
	var dropped bytes.Buffer
	for _, e := range entries {
		if e.live() {
			kept = append(kept, e)
			continue
		}
		dropped.Write(e.raw)
		dropped.WriteByte('\n')
	}

	// Archive before rewriting so a failure here loses nothing.
	if err := db.archive(dropped.Bytes()); err != nil {
		return CompactStats{}, err
	}
	if err := db.rewrite(kept); err != nil {
		return CompactStats{}, err
	}

	stats := CompactStats{Kept: len(kept), Dropped: len(entries) - len(kept)}
	stats.Digest, err = db.contentDigest()
	if err != nil {
		return stats, err
	}

	db.log.Info("compact", "kept", stats.Kept, "dropped", stats.Dropped, "digest", stats.Digest)
	return stats, nil
}
