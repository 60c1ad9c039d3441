package shelf

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// writeRaw replaces the log content behind the store's back, simulating
// a file produced elsewhere.
func writeRaw(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("write raw: %v", err)
	}
}

func TestReadLogRoundTrip(t *testing.T) {
	db := openTestStore(t)

	db.Insert(Document{"name": "a", "age": 3})
	db.Insert(Document{"name": "b", "age": 1})
	db.Delete(Where(Query{"name": Eq("b")}))

	entries, err := db.readLog()
	if err != nil {
		t.Fatalf("readLog: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if entries[0].tag != TagLive || entries[0].doc["name"] != "a" {
		t.Errorf("entry 0 = %c %v", entries[0].tag, entries[0].doc)
	}
	if entries[1].tag != TagDead || entries[1].doc["name"] != "b" {
		t.Errorf("entry 1 = %c %v", entries[1].tag, entries[1].doc)
	}
}

func TestReadLogSkipsBlankLines(t *testing.T) {
	db, dir := openTestStoreDir(t)

	writeRaw(t, dir, "test.shelf", "E{\"a\":1}\n\n   \n\t\nE{\"a\":2}\n")

	entries, err := db.readLog()
	if err != nil {
		t.Fatalf("readLog: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("len(entries) = %d, want 2", len(entries))
	}
}

func TestReadLogUnknownTagIsTombstone(t *testing.T) {
	db, dir := openTestStoreDir(t)

	writeRaw(t, dir, "test.shelf", "X{\"a\":1}\nE{\"a\":2}\n")

	entries, err := db.readLog()
	if err != nil {
		t.Fatalf("readLog: %v", err)
	}
	if entries[0].live() {
		t.Error("unknown tag read as live, want tombstone")
	}
	if !entries[1].live() {
		t.Error("E tag read as tombstone")
	}
}

func TestReadLogCorruptLineAbortsRead(t *testing.T) {
	db, dir := openTestStoreDir(t)

	writeRaw(t, dir, "test.shelf", "E{\"a\":1}\nEnot json\nE{\"a\":2}\n")

	if _, err := db.readLog(); !errors.Is(err, ErrCorruptLog) {
		t.Errorf("err = %v, want ErrCorruptLog", err)
	}

	// The failure surfaces through Find too.
	if _, err := db.Find(Where(nil), nil); !errors.Is(err, ErrCorruptLog) {
		t.Errorf("find err = %v, want ErrCorruptLog", err)
	}
}

func TestReadLogMissingTrailingNewline(t *testing.T) {
	db, dir := openTestStoreDir(t)

	writeRaw(t, dir, "test.shelf", "E{\"a\":1}\nE{\"a\":2}")

	entries, err := db.readLog()
	if err != nil {
		t.Fatalf("readLog: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("len(entries) = %d, want 2", len(entries))
	}
}

func TestReadLogTracksOffsets(t *testing.T) {
	db, dir := openTestStoreDir(t)

	first := "E{\"a\":1}\n"
	writeRaw(t, dir, "test.shelf", first+"E{\"a\":2}\n")

	entries, err := db.readLog()
	if err != nil {
		t.Fatalf("readLog: %v", err)
	}
	if entries[0].offset != 0 {
		t.Errorf("entry 0 offset = %d, want 0", entries[0].offset)
	}
	if want := int64(len(first)); entries[1].offset != want {
		t.Errorf("entry 1 offset = %d, want %d", entries[1].offset, want)
	}
}
