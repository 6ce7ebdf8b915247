package catalog

import "testing"

func TestDefaultCatalog(t *testing.T) {
	c := New(nil, 0, 0)
	if c.Len() != 18 {
		t.Fatalf("expected 18 default slots, got %d", c.Len())
	}
	if c.Capacity() != 100 {
		t.Fatalf("expected default capacity 100, got %d", c.Capacity())
	}
	if c.RowWidth() != 10 {
		t.Fatalf("expected default row width 10, got %d", c.RowWidth())
	}
	first, last := "9:00 AM - 9:30 AM", "5:30 PM - 6:00 PM"
	if n, ok := c.Ordinal(first); !ok || n != 0 {
		t.Fatalf("expected %q at ordinal 0, got %d (ok=%v)", first, n, ok)
	}
	if n, ok := c.Ordinal(last); !ok || n != 17 {
		t.Fatalf("expected %q at ordinal 17, got %d (ok=%v)", last, n, ok)
	}
	if c.Contains("6:00 PM - 6:30 PM") {
		t.Fatal("slot outside the schedule should not be contained")
	}
}

func TestCustomLabels(t *testing.T) {
	c := New([]string{"early", "late", "early"}, 4, 2)
	if c.Len() != 2 {
		t.Fatalf("duplicate label should keep first ordinal only, got %d slots", c.Len())
	}
	if n, _ := c.Ordinal("late"); n != 1 {
		t.Fatalf("expected late at ordinal 1, got %d", n)
	}
	if got := c.Slots(); got[0] != "early" || got[1] != "late" {
		t.Fatalf("unexpected slot order: %v", got)
	}
}

func TestSlotsReturnsCopy(t *testing.T) {
	c := New([]string{"a", "b"}, 1, 1)
	s := c.Slots()
	s[0] = "mutated"
	if c.Slots()[0] != "a" {
		t.Fatal("mutating the returned slice must not affect the catalog")
	}
}
