package tokens

import (
	"strings"
	"testing"
)

func TestEstimate_Empty(t *testing.T) {
	if got := Estimate(""); got != 0 {
		t.Errorf("Estimate(\"\") = %d, want 0", got)
	}
}

func TestEstimate_NonEmptyNeverZero(t *testing.T) {
	for _, s := range []string{"x", " ", "\n", "ab"} {
		if got := Estimate(s); got <= 0 {
			t.Errorf("Estimate(%q) = %d, want > 0", s, got)
		}
	}
}

func TestEstimate_Monotonic(t *testing.T) {
	prev := 0
	text := ""
	for i := 0; i < 200; i++ {
		text += "abcd"
		if i%10 == 0 {
			text += "\n"
		}
		got := Estimate(text)
		if got < prev {
			t.Fatalf("Estimate not monotonic at len %d: %d < %d", len(text), got, prev)
		}
		prev = got
	}
}

func TestEstimate_Deterministic(t *testing.T) {
	text := strings.Repeat("+func foo() error {\n", 50)
	first := Estimate(text)
	for i := 0; i < 5; i++ {
		if got := Estimate(text); got != first {
			t.Fatalf("Estimate varied across runs: %d vs %d", got, first)
		}
	}
}

func TestEstimate_RoughRatio(t *testing.T) {
	// 400 chars of single-line text: ~100 tokens from chars plus line overhead.
	text := strings.Repeat("a", 400)
	got := Estimate(text)
	if got < 100 || got > 110 {
		t.Errorf("Estimate(400 chars) = %d, want ~100-110", got)
	}
}
