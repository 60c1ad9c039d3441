// Log reading.
//
// Every operation reads the file fresh; nothing is cached between calls.
// Reads go through a SectionReader over the shared read handle so that
// concurrent readers do not interfere with each other's offsets.
package shelf

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
)

// readLog parses every record in the file. Blank and whitespace-only
// lines are skipped; any other line must carry a tag byte followed by a
// JSON object or the whole read fails with ErrCorruptLog. There is no
// partial recovery of a corrupt log.
func (db *Store) readLog() ([]entry, error) {
	sz, err := size(db.reader)
	if err != nil {
		return nil, fmt.Errorf("read: stat: %w", err)
	}

	section := io.NewSectionReader(db.reader, 0, sz)
	scanner := bufio.NewScanner(section)
	scanner.Buffer(make([]byte, db.config.ReadBuffer), db.config.MaxRecordSize)

	var entries []entry
	var offset int64
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) > 0 {
			e, err := decodeLine(line, offset)
			if err != nil {
				return nil, err
			}
			entries = append(entries, e)
		}
		offset += int64(len(line)) + 1
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read: scan: %w", err)
	}
	return entries, nil
}

func size(f *os.File) (int64, error) {
	info, err := f.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
