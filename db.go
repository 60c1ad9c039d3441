// Core store type and lifecycle operations.
//
// Store manages the file handles and coordinates all read/write
// operations. A single mutex — the mutation gate — serializes Insert,
// Delete and Compact; Find deliberately reads outside the gate and may
// observe a mutation in flight.
package shelf

import (
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
)

// Config holds store configuration options.
type Config struct {
	FullText      []string     // Fields scanned by Text predicates
	Algorithm     int          // Digest algorithm: 1=xxHash3, 2=FNV1a, 3=Blake2b
	ReadBuffer    int          // Buffer size for reading (default 64KB)
	MaxRecordSize int          // Maximum single record size (default 16MB)
	SyncWrites    bool         // Call fsync after writes
	Logger        *slog.Logger // Operational logging (default: discard)
}

// Store is an open document store.
type Store struct {
	root   *os.Root // Sandboxed filesystem access
	name   string   // Log filename
	reader *os.File // Read handle (O_RDONLY)
	writer *os.File // Write handle (O_RDWR)
	config Config
	log    *slog.Logger
	tail   int64 // Append offset (end of file)
	closed atomic.Bool
	mu     sync.Mutex // Mutation gate
}

// Open opens or creates a store file. FullText names the fields scanned
// by Text predicates; it cannot be changed after opening.
func Open(dir, name string, config Config) (*Store, error) {
	// Default config values
	if config.Algorithm == 0 {
		config.Algorithm = AlgXXHash3
	}
	if config.ReadBuffer == 0 {
		config.ReadBuffer = 64 * 1024
	}
	if config.MaxRecordSize == 0 {
		config.MaxRecordSize = 16 * 1024 * 1024
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}

	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, err
	}

	if _, err := root.Stat(name); os.IsNotExist(err) {
		file, err := root.Create(name)
		if err != nil {
			root.Close()
			return nil, err
		}
		file.Close()
	}

	reader, err := root.OpenFile(name, os.O_RDONLY, 0644)
	if err != nil {
		root.Close()
		return nil, err
	}

	writer, err := root.OpenFile(name, os.O_RDWR, 0644)
	if err != nil {
		reader.Close()
		root.Close()
		return nil, err
	}

	info, err := writer.Stat()
	if err != nil {
		reader.Close()
		writer.Close()
		root.Close()
		return nil, err
	}

	return &Store{
		root:   root,
		name:   name,
		reader: reader,
		writer: writer,
		config: config,
		log:    config.Logger,
		tail:   info.Size(),
	}, nil
}

// Close closes the store and releases its file handles. Operations in
// flight on other goroutines fail once their handle is gone.
func (db *Store) Close() error {
	db.closed.Store(true)

	db.mu.Lock()
	defer db.mu.Unlock()

	var errs []error
	if err := db.reader.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := db.writer.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := db.root.Close(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// Find returns every live document matching the predicate, shaped by
// opts. It takes no lock: a Find racing a mutation may observe the log
// mid-write, which this design accepts in exchange for never blocking
// readers.
func (db *Store) Find(p Predicate, opts *FindOptions) ([]Document, error) {
	if db.closed.Load() {
		return nil, ErrClosed
	}

	entries, err := db.readLog()
	if err != nil {
		return nil, err
	}
	docs, err := filter(entries, p, db.config.FullText)
	if err != nil {
		return nil, err
	}
	return shape(docs, opts), nil
}

// Count reports how many live documents match the predicate.
func (db *Store) Count(p Predicate) (int, error) {
	if db.closed.Load() {
		return 0, ErrClosed
	}

	entries, err := db.readLog()
	if err != nil {
		return 0, err
	}
	docs, err := filter(entries, p, db.config.FullText)
	if err != nil {
		return 0, err
	}
	return len(docs), nil
}

// Insert appends one document as a live log entry. doc may be any value
// that marshals to a JSON object. No uniqueness or schema check is
// applied, so duplicate inserts succeed.
func (db *Store) Insert(doc any) error {
	if db.closed.Load() {
		return ErrClosed
	}

	line, err := encodeLine(TagLive, doc)
	if err != nil {
		return err
	}
	if line[1] != '{' {
		return ErrNotObject
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	offset, err := db.appendLine(line)
	if err != nil {
		return err
	}
	db.log.Debug("insert", "offset", offset, "bytes", len(line))
	return nil
}

// Delete tombstones every live document matching the predicate and
// returns how many were flipped. Matches are identified by line offset
// from a single gate-held read, so each delete patches exactly one byte
// per record and every other line is preserved verbatim.
func (db *Store) Delete(p Predicate) (int, error) {
	if db.closed.Load() {
		return 0, ErrClosed
	}

	match, err := p.compile(db.config.FullText)
	if err != nil {
		return 0, err
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	entries, err := db.readLog()
	if err != nil {
		return 0, err
	}

	n := 0
	for _, e := range entries {
		if !e.live() || !match(e.doc) {
			continue
		}
		if err := db.patchTag(e.offset, TagDead); err != nil {
			return n, err
		}
		n++
	}
	db.log.Debug("delete", "tombstoned", n)
	return n, nil
}

// filter compiles the predicate once and keeps matching live documents
// in log order.
func filter(entries []entry, p Predicate, fulltext []string) ([]Document, error) {
	match, err := p.compile(fulltext)
	if err != nil {
		return nil, err
	}
	var docs []Document
	for _, e := range entries {
		if e.live() && match(e.doc) {
			docs = append(docs, e.doc)
		}
	}
	return docs, nil
}
