package shelf

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCompactDropsTombstones(t *testing.T) {
	db, dir := openTestStoreDir(t)

	db.Insert(Document{"name": "a"})
	db.Insert(Document{"name": "b"})
	db.Insert(Document{"name": "c"})
	db.Delete(Where(Query{"name": Eq("b")}))

	stats, err := db.Compact()
	if err != nil {
		t.Fatalf("compact: %v", err)
	}
	if stats.Kept != 2 || stats.Dropped != 1 {
		t.Errorf("stats = %+v, want Kept 2 Dropped 1", stats)
	}
	if len(stats.Digest) != 16 {
		t.Errorf("digest = %q, want 16 hex chars", stats.Digest)
	}

	data, _ := os.ReadFile(filepath.Join(dir, "test.shelf"))
	if strings.Contains(string(data), `"name":"b"`) {
		t.Error("tombstoned record survived compaction")
	}

	docs, err := db.Find(Where(nil), nil)
	if err != nil {
		t.Fatalf("find after compact: %v", err)
	}
	if len(docs) != 2 {
		t.Errorf("len(docs) = %d, want 2", len(docs))
	}
}

func TestCompactArchivesDroppedLines(t *testing.T) {
	db, dir := openTestStoreDir(t)

	db.Insert(Document{"name": "gone"})
	db.Delete(Where(nil))
	if _, err := db.Compact(); err != nil {
		t.Fatalf("compact: %v", err)
	}

	hist, err := db.History()
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(string(hist), `"name":"gone"`) {
		t.Errorf("history = %q, want archived record", hist)
	}
	if hist[0] != TagDead {
		t.Errorf("archived tag = %c, want D", hist[0])
	}

	if _, err := os.Stat(filepath.Join(dir, "test.shelf"+HistorySuffix)); err != nil {
		t.Errorf("history sidecar missing: %v", err)
	}
}

func TestCompactAccumulatesHistory(t *testing.T) {
	db := openTestStore(t)

	db.Insert(Document{"n": 1})
	db.Delete(Where(nil))
	db.Compact()

	db.Insert(Document{"n": 2})
	db.Delete(Where(nil))
	db.Compact()

	hist, err := db.History()
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	s := string(hist)
	if !strings.Contains(s, `"n":1`) || !strings.Contains(s, `"n":2`) {
		t.Errorf("history = %q, want both batches", s)
	}
}

func TestCompactNothingToDrop(t *testing.T) {
	db := openTestStore(t)

	db.Insert(Document{"a": 1})

	stats, err := db.Compact()
	if err != nil {
		t.Fatalf("compact: %v", err)
	}
	if stats.Kept != 1 || stats.Dropped != 0 {
		t.Errorf("stats = %+v, want Kept 1 Dropped 0", stats)
	}

	hist, _ := db.History()
	if hist != nil {
		t.Errorf("history = %q, want none", hist)
	}
}

func TestHistoryEmptyStore(t *testing.T) {
	db := openTestStore(t)

	hist, err := db.History()
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if hist != nil {
		t.Errorf("history = %q, want nil", hist)
	}
}
