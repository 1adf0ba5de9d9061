package matcher

import (
	"context"
	"testing"

	"github.com/hyperjump/hikari/internal/dataset"
	"github.com/hyperjump/hikari/internal/models"
)

func benchMatcher(b *testing.B, kind Kind) Matcher {
	b.Helper()
	snap, err := dataset.Load("", models.DefaultFields)
	if err != nil {
		b.Fatal(err)
	}
	m, err := NewMatcher(string(kind))
	if err != nil {
		b.Fatal(err)
	}
	if err := m.Index(context.Background(), snap.Records()); err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() { _ = m.Close() })
	return m
}

func BenchmarkSearch(b *testing.B) {
	queries := []struct {
		name  string
		query string
		fuzzy bool
	}{
		{"prefix", "pizza del", false},
		{"fuzzy", "softwre", true},
	}
	ctx := context.Background()
	for _, kind := range Kinds {
		m := benchMatcher(b, kind)
		for _, q := range queries {
			b.Run(string(kind)+"/"+q.name, func(b *testing.B) {
				opts := &SearchOptions{Limit: 10, Fuzzy: q.fuzzy, Fuzziness: 1}
				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					_, _ = m.Search(ctx, q.query, opts)
				}
			})
		}
	}
}

func BenchmarkIndex(b *testing.B) {
	snap, err := dataset.Load("", models.DefaultFields)
	if err != nil {
		b.Fatal(err)
	}
	records := snap.Records()
	ctx := context.Background()
	for _, kind := range Kinds {
		b.Run(string(kind), func(b *testing.B) {
			m, err := NewMatcher(string(kind))
			if err != nil {
				b.Fatal(err)
			}
			defer m.Close()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = m.Index(ctx, records)
			}
		})
	}
}

func BenchmarkDamerauLevenshtein(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = DamerauLevenshteinDistance("restaurnat", "restaurant")
	}
}
