package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
)

func TestScoreBarFilled(t *testing.T) {
	tests := []struct {
		score float64
		want  int
	}{
		{0, 0},
		{50, 10},
		{66.67, 13},
		{100, 20},
		{150, 20},
		{-5, 0},
	}
	for _, tt := range tests {
		if got := NewScoreBar("", tt.score, 0).Filled(20); got != tt.want {
			t.Errorf("Filled(%v) = %d, want %d", tt.score, got, tt.want)
		}
	}
}

func TestScoreBarView(t *testing.T) {
	got := ansi.Strip(NewScoreBar("Día 1", 66.666, 40).View())
	if !strings.HasPrefix(got, "Día 1  ") {
		t.Errorf("missing label: %q", got)
	}
	if !strings.HasSuffix(got, " 66.67%") {
		t.Errorf("missing score: %q", got)
	}
}
