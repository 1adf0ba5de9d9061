package highlight

import (
	"strings"
	"testing"

	"github.com/hyperjump/hikari/internal/models"
)

func BenchmarkField(b *testing.B) {
	text := strings.Repeat("Pizza delivery and restaurant operation ", 25)
	var ranges []models.MatchRange
	for i := 0; i+4 < len(text); i += 40 {
		ranges = append(ranges, models.MatchRange{Start: i, End: i + 4})
	}
	m := DefaultMarkers()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Field(text, ranges, m)
	}
}

func BenchmarkNormalize(b *testing.B) {
	ranges := make([]models.MatchRange, 0, 200)
	for i := 200; i > 0; i-- {
		ranges = append(ranges, models.MatchRange{Start: i * 3, End: i*3 + 4})
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Normalize(ranges)
	}
}
