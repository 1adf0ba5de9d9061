package highlight

import (
	"reflect"
	"testing"

	"github.com/hyperjump/hikari/internal/models"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   []models.MatchRange
		want []models.MatchRange
	}{
		{"empty", nil, nil},
		{"already sorted", []models.MatchRange{{Start: 0, End: 1}, {Start: 4, End: 5}}, []models.MatchRange{{Start: 0, End: 1}, {Start: 4, End: 5}}},
		{"unsorted", []models.MatchRange{{Start: 4, End: 5}, {Start: 0, End: 1}}, []models.MatchRange{{Start: 0, End: 1}, {Start: 4, End: 5}}},
		{"overlapping", []models.MatchRange{{Start: 0, End: 3}, {Start: 2, End: 5}}, []models.MatchRange{{Start: 0, End: 5}}},
		{"contained", []models.MatchRange{{Start: 0, End: 9}, {Start: 2, End: 3}}, []models.MatchRange{{Start: 0, End: 9}}},
		{"adjacent", []models.MatchRange{{Start: 0, End: 1}, {Start: 2, End: 3}}, []models.MatchRange{{Start: 0, End: 3}}},
		{"drops inverted", []models.MatchRange{{Start: 5, End: 2}, {Start: 0, End: 0}}, []models.MatchRange{{Start: 0, End: 0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Normalize(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalize_DoesNotModifyInput(t *testing.T) {
	in := []models.MatchRange{{Start: 4, End: 5}, {Start: 0, End: 1}}
	_ = Normalize(in)
	if in[0] != (models.MatchRange{Start: 4, End: 5}) {
		t.Errorf("input modified: %v", in)
	}
}

func TestFromOffsets(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		offsets []int
		want    []models.MatchRange
	}{
		{"none", "pizza", nil, nil},
		{"consecutive", "pizza", []int{0, 1, 2}, []models.MatchRange{{Start: 0, End: 2}}},
		{"gaps", "pizza delivery", []int{0, 6, 7}, []models.MatchRange{{Start: 0, End: 0}, {Start: 6, End: 7}}},
		{"unsorted with duplicates", "pizza", []int{4, 0, 0, 3}, []models.MatchRange{{Start: 0, End: 0}, {Start: 3, End: 4}}},
		{"multi-byte rune", "café au lait", []int{2, 3, 5}, []models.MatchRange{{Start: 2, End: 5}}},
		{"ignores out of range and mid-rune", "café", []int{-1, 4, 10}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromOffsets(tt.text, tt.offsets)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FromOffsets(%q, %v) = %v, want %v", tt.text, tt.offsets, got, tt.want)
			}
			if _, err := Field(tt.text, got, DefaultMarkers()); err != nil {
				t.Errorf("ranges from FromOffsets must be valid: %v", err)
			}
		})
	}
}

func TestRuneOffsets(t *testing.T) {
	got := RuneOffsets("aé b")
	want := []int{0, 1, 3, 4, 5}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("RuneOffsets = %v, want %v", got, want)
	}
}

func TestClip(t *testing.T) {
	in := []models.MatchRange{{Start: 0, End: 2}, {Start: 4, End: 8}, {Start: 10, End: 12}}
	got := Clip(in, 6)
	want := []models.MatchRange{{Start: 0, End: 2}, {Start: 4, End: 5}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Clip = %v, want %v", got, want)
	}
	if got := Clip(in, 0); got != nil {
		t.Errorf("Clip(0) = %v, want nil", got)
	}
}
