package filter

import (
	"maps"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// exprFilter implements CompiledFilter using the expr language
type exprFilter struct {
	expression string
	program    *vm.Program
	funcs      map[string]any
}

// ExprCompilerOption configures an expr compiler
type ExprCompilerOption func(*exprCompiler)

// WithCache enables filter caching with the specified size
func WithCache(size int) ExprCompilerOption {
	return func(c *exprCompiler) {
		if size > 0 {
			c.cache = newLRUCache(size)
		}
	}
}

// WithCustomFunctions adds custom helper functions available to expressions
func WithCustomFunctions(funcs map[string]any) ExprCompilerOption {
	return func(c *exprCompiler) {
		maps.Copy(c.helperFuncs, funcs)
	}
}

// NewExprCompiler creates a new expr-based filter compiler
func NewExprCompiler(opts ...ExprCompilerOption) Compiler {
	c := &exprCompiler{
		helperFuncs: createHelperFunctions(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// exprCompiler implements Compiler for expr-based filters
type exprCompiler struct {
	helperFuncs map[string]any
	cache       *lruCache
}

// Compile compiles an expression into an executable filter
func (c *exprCompiler) Compile(expression string) (CompiledFilter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "empty expression",
			Position:   -1,
		}
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(expression); ok {
			return cached.(CompiledFilter), nil
		}
	}

	// Item properties are injected per evaluation, so the static
	// environment only knows the helper functions.
	program, err := expr.Compile(expression,
		expr.Env(c.helperFuncs),
		expr.AllowUndefinedVariables(),
		expr.AsBool(),
	)
	if err != nil {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "failed to compile expression",
			Position:   -1,
			Err:        err,
		}
	}

	filter := &exprFilter{
		expression: expression,
		program:    program,
		funcs:      c.helperFuncs,
	}

	if c.cache != nil {
		c.cache.Put(expression, filter)
	}

	return filter, nil
}

// Clear removes all cached filters
func (c *exprCompiler) Clear() {
	if c.cache != nil {
		c.cache.Clear()
	}
}

// Size returns the number of cached filters
func (c *exprCompiler) Size() int {
	if c.cache != nil {
		return c.cache.Size()
	}
	return 0
}

// Evaluate evaluates the filter against an item. Expressions that fail at
// runtime, for example by comparing a misspelled variable, match nothing.
func (f *exprFilter) Evaluate(item Item) bool {
	env := f.environment(item)

	result, err := expr.Run(f.program, env)
	if err != nil {
		return false
	}

	// AsBool() during compilation guarantees a bool result
	return result.(bool)
}

// Expression returns the original expression
func (f *exprFilter) Expression() string {
	return f.expression
}

// IsThreadSafe indicates that expr filters are thread-safe
func (f *exprFilter) IsThreadSafe() bool {
	return true
}

// environment builds the runtime environment for one evaluation
func (f *exprFilter) environment(item Item) map[string]any {
	env := make(map[string]any, 64)

	// Helper functions, including any custom ones
	maps.Copy(env, f.funcs)

	// The full record for expressions that prefer Item.Title style access
	env["Item"] = item

	// Item-specific helpers using closures
	env["isMovie"] = createTypeFunc(item.Type, "movie")
	env["isShow"] = createTypeFunc(item.Type, "show")
	env["isSeason"] = createTypeFunc(item.Type, "season")
	env["isEpisode"] = createTypeFunc(item.Type, "episode")
	env["rated"] = func() bool { return item.Rating > 0 }
	env["ratedAtLeast"] = func(threshold int) bool { return item.Rating >= threshold }
	env["hasNotes"] = func() bool { return item.Notes != "" }
	env["titleContains"] = createTitleContainsFunc(item)
	env["hasID"] = createHasIDFunc(item)
	env["listedAfter"] = createAfterFunc(item.ListedAt)
	env["listedBefore"] = createBeforeFunc(item.ListedAt)
	env["collectedAfter"] = createAfterFunc(item.CollectedAt)
	env["collectedBefore"] = createBeforeFunc(item.CollectedAt)
	env["ratedAfter"] = createAfterFunc(item.RatedAt)
	env["ratedBefore"] = createBeforeFunc(item.RatedAt)
	env["watchedAfter"] = createAfterFunc(item.WatchedAt)
	env["watchedBefore"] = createBeforeFunc(item.WatchedAt)

	// Direct item properties for convenience
	env["Type"] = item.Type
	env["Title"] = item.Title
	env["Year"] = item.Year
	env["Show"] = item.Show
	env["Season"] = item.Season
	env["Episode"] = item.Episode
	env["Rank"] = item.Rank
	env["Notes"] = item.Notes
	env["ListedAt"] = item.ListedAt
	env["CollectedAt"] = item.CollectedAt
	env["Rating"] = item.Rating
	env["RatedAt"] = item.RatedAt
	env["Progress"] = item.Progress
	env["PausedAt"] = item.PausedAt
	env["WatchedAt"] = item.WatchedAt
	env["Action"] = item.Action
	env["TraktID"] = item.TraktID
	env["Slug"] = item.Slug
	env["IMDB"] = item.IMDB
	env["TMDB"] = item.TMDB
	env["TVDB"] = item.TVDB

	return env
}

// createHelperFunctions creates the static helper functions used during compilation
func createHelperFunctions() map[string]any {
	funcs := make(map[string]any, 32)
	addHelperFunctions(funcs)
	return funcs
}

// addHelperFunctions adds all helper functions to the provided map
func addHelperFunctions(env map[string]any) {
	// Date helpers
	env["daysSince"] = func(t time.Time) int {
		return int(time.Since(t).Hours() / 24)
	}
	env["daysAgo"] = func(days int) time.Time {
		return time.Now().AddDate(0, 0, -days)
	}
	env["monthsAgo"] = func(months int) time.Time {
		return time.Now().AddDate(0, -months, 0)
	}
	env["yearsAgo"] = func(years int) time.Time {
		return time.Now().AddDate(-years, 0, 0)
	}
	env["parseDate"] = func(dateStr string) time.Time {
		t, _ := time.Parse("2006-01-02", dateStr)
		return t
	}
	// Case-sensitive string matching is covered by the expr language's own
	// contains, startsWith and endsWith operators and the lower builtin.
	env["now"] = time.Now
}

// Helper factory functions shared by the runtime environment

func createTypeFunc(itemType, want string) func() bool {
	return func() bool {
		return itemType == want
	}
}

// createAfterFunc reports whether a timestamp falls after a cutoff. Zero
// timestamps never match, so records a listing does not stamp stay out of
// date-windowed results.
func createAfterFunc(t time.Time) func(time.Time) bool {
	return func(cutoff time.Time) bool {
		return !t.IsZero() && t.After(cutoff)
	}
}

func createBeforeFunc(t time.Time) func(time.Time) bool {
	return func(cutoff time.Time) bool {
		return !t.IsZero() && t.Before(cutoff)
	}
}

func createHasIDFunc(item Item) func(string) bool {
	return func(kind string) bool {
		switch strings.ToLower(kind) {
		case "trakt":
			return item.TraktID != 0
		case "slug":
			return item.Slug != ""
		case "imdb":
			return item.IMDB != ""
		case "tmdb":
			return item.TMDB != 0
		case "tvdb":
			return item.TVDB != 0
		}
		return false
	}
}

// createTitleContainsFunc matches case-insensitively against both the item
// title and, for seasons and episodes, the parent show title.
func createTitleContainsFunc(item Item) func(string) bool {
	title := strings.ToLower(item.Title)
	show := strings.ToLower(item.Show)
	return func(substr string) bool {
		target := strings.ToLower(substr)
		return strings.Contains(title, target) || (show != "" && strings.Contains(show, target))
	}
}
