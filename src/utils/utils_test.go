package utils

import (
	"log/slog"
	"slices"
	"testing"
)

func TestInsertRemoveSorted(t *testing.T) {
	var floors []int
	for _, f := range []int{5, 1, 3, 5, 0} {
		floors = InsertSorted(floors, f)
	}
	if !slices.Equal(floors, []int{0, 1, 3, 5}) {
		t.Errorf("Expected [0 1 3 5], got %v", floors)
	}
	floors = RemoveSorted(floors, 3)
	floors = RemoveSorted(floors, 4)
	if !slices.Equal(floors, []int{0, 1, 5}) {
		t.Errorf("Expected [0 1 5], got %v", floors)
	}
}

func TestForEachIndex(t *testing.T) {
	var got []int
	ForEachIndex(2, 5, func(i int) { got = append(got, i) })
	if !slices.Equal(got, []int{2, 3, 4, 5}) {
		t.Errorf("Expected [2 3 4 5], got %v", got)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
