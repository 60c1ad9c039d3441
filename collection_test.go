package shelf

import (
	"errors"
	"testing"
)

type note struct {
	Name  string  `json:"name"`
	Age   float64 `json:"age"`
	Notes string  `json:"notes"`
}

func TestCollectionRoundTrip(t *testing.T) {
	db := openTestStore(t)

	c, err := NewCollection[note](db)
	if err != nil {
		t.Fatalf("new collection: %v", err)
	}

	if err := c.Insert(note{Name: "a", Age: 3, Notes: "a foo bar"}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := c.Insert(note{Name: "b", Age: 1}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := c.Find(Where(Query{"age": Gt(1)}), nil)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(got) != 1 || got[0].Name != "a" {
		t.Fatalf("find = %+v, want one record named a", got)
	}

	n, err := c.Delete(Text("foo"))
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted = %d, want 1", n)
	}

	total, err := c.Count(Where(nil))
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if total != 1 {
		t.Errorf("count = %d, want 1", total)
	}
}

func TestCollectionValidatesFullTextFields(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(dir, "test.shelf", Config{FullText: []string{"no_such_field"}})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	if _, err := NewCollection[note](db); !errors.Is(err, ErrUnknownField) {
		t.Errorf("err = %v, want ErrUnknownField", err)
	}
}

func TestCollectionValidatesQueryFields(t *testing.T) {
	db := openTestStore(t)

	c, err := NewCollection[note](db)
	if err != nil {
		t.Fatalf("new collection: %v", err)
	}

	if _, err := c.Find(Where(Query{"typo": Eq(1)}), nil); !errors.Is(err, ErrUnknownField) {
		t.Errorf("find err = %v, want ErrUnknownField", err)
	}
	if _, err := c.Delete(And(Where(Query{"typo": Eq(1)}))); !errors.Is(err, ErrUnknownField) {
		t.Errorf("nested delete err = %v, want ErrUnknownField", err)
	}
}

func TestCollectionValidatesOptionFields(t *testing.T) {
	db := openTestStore(t)

	c, err := NewCollection[note](db)
	if err != nil {
		t.Fatalf("new collection: %v", err)
	}

	_, err = c.Find(Where(nil), &FindOptions{Sort: []SortKey{{Field: "typo", Dir: Asc}}})
	if !errors.Is(err, ErrUnknownField) {
		t.Errorf("sort err = %v, want ErrUnknownField", err)
	}

	_, err = c.Find(Where(nil), &FindOptions{Projection: map[string]bool{"typo": true}})
	if !errors.Is(err, ErrUnknownField) {
		t.Errorf("projection err = %v, want ErrUnknownField", err)
	}
}

func TestCollectionMapShapeSkipsValidation(t *testing.T) {
	db := openTestStore(t)

	c, err := NewCollection[Document](db)
	if err != nil {
		t.Fatalf("new collection: %v", err)
	}

	// No fixed property set, so arbitrary field names pass through.
	if _, err := c.Find(Where(Query{"anything": Eq(1)}), nil); err != nil {
		t.Errorf("find: %v", err)
	}
}
