package filter

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// EvaluatorOption configures an evaluator
type EvaluatorOption func(*ConcurrentEvaluator)

// WithWorkers sets the number of concurrent evaluation goroutines
func WithWorkers(workers int) EvaluatorOption {
	return func(e *ConcurrentEvaluator) {
		if workers > 0 {
			e.workerCount = workers
		}
	}
}

// WithBatchSize sets the chunk size for concurrent processing
func WithBatchSize(size int) EvaluatorOption {
	return func(e *ConcurrentEvaluator) {
		if size > 0 {
			e.batchSize = size
		}
	}
}

// ConcurrentEvaluator implements both Evaluator and BatchEvaluator. Inputs
// smaller than the batch size are evaluated inline; larger ones are split
// into chunks that run on a bounded errgroup.
type ConcurrentEvaluator struct {
	workerCount int
	batchSize   int
}

// NewConcurrentEvaluator creates a new concurrent evaluator
func NewConcurrentEvaluator(opts ...EvaluatorOption) *ConcurrentEvaluator {
	e := &ConcurrentEvaluator{
		workerCount: runtime.GOMAXPROCS(0),
		batchSize:   100,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Evaluate evaluates a single filter against all items, preserving input order
func (e *ConcurrentEvaluator) Evaluate(ctx context.Context, filter CompiledFilter, items []Item) ([]Item, error) {
	if len(items) == 0 {
		return []Item{}, nil
	}

	// For small lists, don't bother with concurrency
	if len(items) < e.batchSize {
		return e.evaluateSequential(filter, items), nil
	}

	return e.evaluateConcurrent(ctx, filter, items)
}

// EvaluateBatch evaluates multiple filters against the same items
// concurrently. The first filter to fail aborts the batch.
func (e *ConcurrentEvaluator) EvaluateBatch(ctx context.Context, filters map[string]CompiledFilter, items []Item) (map[string][]Item, error) {
	results := make(map[string][]Item, len(filters))
	if len(filters) == 0 || len(items) == 0 {
		return results, nil
	}

	names := make([]string, 0, len(filters))
	for name := range filters {
		names = append(names, name)
	}

	// Each goroutine writes its own slot, so no lock is needed
	matches := make([][]Item, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workerCount)

	for i, name := range names {
		i, name := i, name
		filter := filters[name]
		g.Go(func() error {
			got, err := e.Evaluate(gctx, filter, items)
			if err != nil {
				return &EvaluationError{
					FilterName: name,
					Reason:     "evaluation aborted",
					Err:        err,
				}
			}
			matches[i] = got
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, name := range names {
		results[name] = matches[i]
	}

	return results, nil
}

// evaluateSequential evaluates a filter against items inline
func (e *ConcurrentEvaluator) evaluateSequential(filter CompiledFilter, items []Item) []Item {
	matches := make([]Item, 0, len(items)/10)
	for _, item := range items {
		if filter.Evaluate(item) {
			matches = append(matches, item)
		}
	}
	return matches
}

// evaluateConcurrent evaluates a filter against items chunk by chunk
func (e *ConcurrentEvaluator) evaluateConcurrent(ctx context.Context, filter CompiledFilter, items []Item) ([]Item, error) {
	chunkSize := max(len(items)/e.workerCount, e.batchSize)
	chunkCount := (len(items) + chunkSize - 1) / chunkSize

	// Chunk results are kept per index so input order survives
	chunked := make([][]Item, chunkCount)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workerCount)

	for index := 0; index < chunkCount; index++ {
		index := index
		start := index * chunkSize
		end := min(start+chunkSize, len(items))
		chunk := items[start:end]

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			chunked[index] = e.evaluateSequential(filter, chunk)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, part := range chunked {
		total += len(part)
	}

	all := make([]Item, 0, total)
	for _, part := range chunked {
		all = append(all, part...)
	}

	return all, nil
}
