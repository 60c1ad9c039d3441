// Log entry representation and the line codec.
//
// Every record is a single line: one tag byte followed by a JSON object,
// terminated by '\n'. The tag byte is the only part of a line that is
// ever modified after being written.
package shelf

import (
	"fmt"
	"slices"

	json "github.com/goccy/go-json"
)

// Tag bytes marking the state of a log line.
const (
	TagLive = byte('E') // live entry
	TagDead = byte('D') // tombstone
)

// Document is the unit of storage: a JSON object decoded field by field.
// The store never interprets a document beyond field lookup by name.
type Document = map[string]any

// entry is one parsed log line plus its position in the file. raw holds
// the full line including the tag byte, so rewrites can preserve the
// original bytes verbatim.
type entry struct {
	offset int64 // byte position of the tag character
	tag    byte
	raw    []byte
	doc    Document
}

func (e *entry) live() bool { return e.tag == TagLive }

// decodeLine parses a tagged log line. 'E' reads as live; any other tag
// byte reads as a tombstone. The remainder must be a JSON object or the
// line is reported corrupt.
func decodeLine(line []byte, offset int64) (entry, error) {
	e := entry{offset: offset, tag: TagDead, raw: slices.Clone(line)}
	if line[0] == TagLive {
		e.tag = TagLive
	}
	if err := json.Unmarshal(line[1:], &e.doc); err != nil {
		return entry{}, fmt.Errorf("%w at offset %d: %v", ErrCorruptLog, offset, err)
	}
	return e, nil
}

// encodeLine serializes a document into a tagged log line, newline
// included. doc may be any value that marshals to JSON; object-ness is
// checked by the caller.
func encodeLine(tag byte, doc any) ([]byte, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	line := make([]byte, 0, len(data)+2)
	line = append(line, tag)
	line = append(line, data...)
	line = append(line, '\n')
	return line, nil
}
