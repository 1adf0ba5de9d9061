package utils

import (
	"testing"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		s     string
		width int
		want  string
	}{
		{"empty", "", 5, ""},
		{"short", "hello", 10, "hello"},
		{"exact", "hello", 5, "hello"},
		{"long", "hello world", 6, "hello…"},
		{"width zero", "x", 0, "x"},
		{"accented", "Café operation", 5, "Café…"},
		{"wide runes", "日本語テキスト", 5, "日本…"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.s, tt.width); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.s, tt.width, got, tt.want)
			}
		})
	}
}

func TestFitIndex(t *testing.T) {
	tests := []struct {
		s     string
		width int
		want  int
	}{
		{"hello", 3, 3},
		{"hello", 10, 5},
		{"Café", 4, 5},
		{"Café", 3, 3},
		{"日本", 3, 3},
		{"abc", 0, 0},
	}
	for _, tt := range tests {
		if got := FitIndex(tt.s, tt.width); got != tt.want {
			t.Errorf("FitIndex(%q, %d) = %d, want %d", tt.s, tt.width, got, tt.want)
		}
	}
}
