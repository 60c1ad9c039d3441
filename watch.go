// Follow mode for the log file.
//
// Watch observes the log through fsnotify and yields documents appended
// after the call, lazily via iter.Seq2. Tag patches from Delete touch
// bytes before the high-water mark and are not re-emitted. A partially
// written trailing line (no newline yet) is held back until the next
// write event completes it.
package shelf

import (
	"bytes"
	"context"
	"io"
	"iter"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch yields live documents appended to the log after the call. It
// stops when ctx is canceled or the caller breaks out of the range loop.
func (db *Store) Watch(ctx context.Context) iter.Seq2[Document, error] {
	return func(yield func(Document, error) bool) {
		if db.closed.Load() {
			yield(nil, ErrClosed)
			return
		}

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			yield(nil, err)
			return
		}
		defer watcher.Close()

		mark, err := size(db.reader)
		if err != nil {
			yield(nil, err)
			return
		}

		if err := watcher.Add(filepath.Join(db.root.Name(), db.name)); err != nil {
			yield(nil, err)
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case err := <-watcher.Errors:
				if !yield(nil, err) {
					return
				}
			case ev := <-watcher.Events:
				if !ev.Has(fsnotify.Write) {
					continue
				}
				next, ok := db.emitFrom(mark, yield)
				mark = next
				if !ok {
					return
				}
			}
		}
	}
}

// emitFrom yields live entries between mark and the last complete line,
// returning the new mark and whether the caller wants more.
func (db *Store) emitFrom(mark int64, yield func(Document, error) bool) (int64, bool) {
	sz, err := size(db.reader)
	if err != nil {
		return mark, yield(nil, err)
	}
	if sz <= mark {
		return mark, true
	}

	data, err := io.ReadAll(io.NewSectionReader(db.reader, mark, sz-mark))
	if err != nil {
		return mark, yield(nil, err)
	}

	end := bytes.LastIndexByte(data, '\n')
	if end < 0 {
		return mark, true
	}

	offset := mark
	for line := range bytes.Lines(data[:end+1]) {
		n := int64(len(line))
		line = bytes.TrimRight(line, "\n")
		if len(bytes.TrimSpace(line)) > 0 {
			e, err := decodeLine(line, offset)
			if err != nil {
				if !yield(nil, err) {
					return offset, false
				}
			} else if e.live() {
				if !yield(e.doc, nil) {
					return offset + n, false
				}
			}
		}
		offset += n
	}
	return mark + int64(end) + 1, true
}
