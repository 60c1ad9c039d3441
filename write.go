// Write primitives for the append-only log.
//
// Insert appends whole lines at the tail. Delete never appends: it
// patches the tag byte of an existing line in place, leaving every other
// byte untouched. Only Compact rewrites the file from the top.
package shelf

import (
	"bytes"
	"fmt"
)

// appendLine writes a tagged line at the current tail and advances it.
// Callers hold the mutation gate.
func (db *Store) appendLine(line []byte) (int64, error) {
	offset := db.tail
	if _, err := db.writer.WriteAt(line, offset); err != nil {
		return 0, fmt.Errorf("append: %w", err)
	}
	db.tail += int64(len(line))

	if db.config.SyncWrites {
		db.writer.Sync()
	}
	return offset, nil
}

// patchTag flips the tag byte of the line at offset without touching the
// rest of the line. Deletion is a one-byte patch: the record's JSON
// stays on disk verbatim.
func (db *Store) patchTag(offset int64, tag byte) error {
	if _, err := db.writer.WriteAt([]byte{tag}, offset); err != nil {
		return fmt.Errorf("patch: %w", err)
	}
	if db.config.SyncWrites {
		db.writer.Sync()
	}
	return nil
}

// rewrite replaces the whole log with the given entries, in order,
// preserving each entry's original bytes. Direct overwrite plus
// truncate — a crash mid-rewrite can leave a truncated log. Callers
// hold the mutation gate.
func (db *Store) rewrite(entries []entry) error {
	var buf bytes.Buffer
	for _, e := range entries {
		buf.Write(e.raw)
		buf.WriteByte('\n')
	}

	if _, err := db.writer.WriteAt(buf.Bytes(), 0); err != nil {
		return fmt.Errorf("rewrite: %w", err)
	}
	if err := db.writer.Truncate(int64(buf.Len())); err != nil {
		return fmt.Errorf("rewrite: truncate: %w", err)
	}
	db.tail = int64(buf.Len())

	if db.config.SyncWrites {
		db.writer.Sync()
	}
	return nil
}
