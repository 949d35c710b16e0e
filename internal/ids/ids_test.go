package ids

import (
	"testing"
	"time"
)

func TestGeneratorOrdersWithinMillisecond(t *testing.T) {
	gen := NewGenerator(1)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	prev := gen.NewAt(at)
	for i := 0; i < 100; i++ {
		next := gen.NewAt(at)
		if next <= prev {
			t.Fatalf("id %q does not sort after %q", next, prev)
		}
		prev = next
	}
}

func TestNewLength(t *testing.T) {
	if got := New(); len(got) != 26 {
		t.Fatalf("len(New()) = %d, want 26", len(got))
	}
}
