// Package shelf provides an embedded document store backed by a single
// append-only log file. Documents are JSON objects stored one per line,
// each line prefixed with a tag byte: 'E' for a live entry, 'D' for a
// tombstone. Deletion flips the tag in place and never removes a line,
// so the file keeps a stable, line-addressable history of every write.
//
// Queries are built from a small operator language (Eq, Lt, Gt, In)
// combined into predicate trees (And, Or, Text, Where). Text search
// matches whole words, case-insensitively, against a fixed set of
// full-text fields chosen when the store is opened.
//
// Every operation reads the log fresh from disk; no in-memory cache is
// kept between calls. Mutations are serialized by a single mutation
// lock, while Find reads without locking and may observe a concurrent
// mutation mid-flight.
package shelf

import "errors"

// Sentinel errors for programmatic handling. Callers can use errors.Is
// to distinguish recoverable conditions from corruption (ErrCorruptLog,
// ErrDecompress).
var (
	ErrClosed         = errors.New("store is closed")
	ErrCorruptLog     = errors.New("corrupt log line")
	ErrInvalidPattern = errors.New("invalid text pattern")
	ErrInvalidQuery   = errors.New("invalid query shape")
	ErrUnknownField   = errors.New("field not present in record type")
	ErrNotObject      = errors.New("document is not a JSON object")
	ErrDecompress     = errors.New("decompression failed")
)
