package clock

import (
	"testing"
	"time"
)

func TestMockAdvance(t *testing.T) {
	start := time.Date(2025, 1, 2, 8, 0, 0, 0, time.UTC)
	m := NewMock(start)

	if !m.Now().Equal(start) {
		t.Fatalf("Now() = %v, want %v", m.Now(), start)
	}
	m.Advance(90 * time.Second)
	if got := m.Now().Sub(start); got != 90*time.Second {
		t.Fatalf("advanced by %v, want 90s", got)
	}
	m.Set(start)
	if !m.Now().Equal(start) {
		t.Fatalf("Set did not reset time: %v", m.Now())
	}
}

func TestRealIsClose(t *testing.T) {
	if d := time.Since(Real{}.Now()); d < 0 || d > time.Second {
		t.Fatalf("Real clock drifted by %v", d)
	}
}
