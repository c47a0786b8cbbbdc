package filter

import (
	"context"
	"testing"
	"time"
)

// Benchmark filter compilation
func BenchmarkCompile(b *testing.B) {
	expressions := []struct {
		name string
		expr string
	}{
		{"simple", `isMovie()`},
		{"complex", `isMovie() and Year > 2015 and ratedAtLeast(7)`},
	}

	for _, tc := range expressions {
		b.Run(tc.name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_, err := NewExprCompiler().Compile(tc.expr)
				if err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// Benchmark filter compilation with caching
func BenchmarkCompileWithCache(b *testing.B) {
	compiler := NewExprCompiler(WithCache(100))
	expression := `isMovie() and Year > 2015`

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_, err := compiler.Compile(expression)
		if err != nil {
			b.Fatal(err)
		}
	}
}

// Benchmark single filter evaluation
func BenchmarkEvaluate(b *testing.B) {
	items := generateItems(1000)
	filter, err := NewExprCompiler().Compile(`isMovie() and Year > 2010`)
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		matches := 0
		for _, item := range items {
			if filter.Evaluate(item) {
				matches++
			}
		}
		_ = matches
	}
}

// Benchmark concurrent evaluation
func BenchmarkEvaluateConcurrent(b *testing.B) {
	items := generateItems(10000)
	filter, err := NewExprCompiler().Compile(`isMovie() and ratedAtLeast(7)`)
	if err != nil {
		b.Fatal(err)
	}
	ctx := context.Background()

	evaluators := []struct {
		name      string
		evaluator *ConcurrentEvaluator
	}{
		{"workers-1", NewConcurrentEvaluator(WithWorkers(1))},
		{"workers-4", NewConcurrentEvaluator(WithWorkers(4))},
		{"workers-8", NewConcurrentEvaluator(WithWorkers(8))},
		{"workers-default", NewConcurrentEvaluator()},
	}

	for _, tc := range evaluators {
		b.Run(tc.name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_, err := tc.evaluator.Evaluate(ctx, filter, items)
				if err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// Benchmark batch evaluation
func BenchmarkEvaluateBatch(b *testing.B) {
	items := generateItems(5000)
	expressions := map[string]string{
		"movies":    `isMovie()`,
		"recent":    `listedAfter(monthsAgo(6))`,
		"highRated": `ratedAtLeast(8)`,
		"withNotes": `hasNotes()`,
		"complex":   `isShow() and Year > 2015 and hasID("tvdb")`,
	}

	compiler := NewExprCompiler(WithCache(10))
	compiled := make(map[string]CompiledFilter, len(expressions))
	for name, expression := range expressions {
		filter, err := compiler.Compile(expression)
		if err != nil {
			b.Fatal(err)
		}
		compiled[name] = filter
	}

	ctx := context.Background()
	evaluator := NewConcurrentEvaluator()

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_, err := evaluator.EvaluateBatch(ctx, compiled, items)
		if err != nil {
			b.Fatal(err)
		}
	}
}

// Benchmark helper closure performance
func BenchmarkHelperFunctions(b *testing.B) {
	item := Item{
		Type:     "episode",
		Title:    "Breakage",
		Show:     "Breaking Bad",
		ListedAt: time.Now().AddDate(0, 0, -14),
		TVDB:     403061,
	}

	b.Run("hasID", func(b *testing.B) {
		hasID := createHasIDFunc(item)
		b.ReportAllocs()
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			_ = hasID("tvdb")
		}
	})

	b.Run("titleContains", func(b *testing.B) {
		titleContains := createTitleContainsFunc(item)
		b.ReportAllocs()
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			_ = titleContains("breaking")
		}
	})

	b.Run("listedAfter", func(b *testing.B) {
		listedAfter := createAfterFunc(item.ListedAt)
		cutoff := time.Now().AddDate(0, -1, 0)
		b.ReportAllocs()
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			_ = listedAfter(cutoff)
		}
	})
}
