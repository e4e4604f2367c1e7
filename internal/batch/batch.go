// Package batch runs many independent corpus comparisons concurrently
// (SPEC_FULL.md §4.8): each pair gets its own Context, so there is no
// shared mutable state across workers beyond the worker pool itself. This
// is grounded on tunny, a teacher dependency (go.mod) that had no wired
// call site before this package — Context-per-job concurrency is exactly
// the bounded-worker-pool shape tunny is built for.
package batch

import (
	"github.com/Jeffail/tunny"

	"github.com/abigraph/abidiff/internal/core"
	"github.com/abigraph/abidiff/internal/diff"
	"github.com/abigraph/abidiff/internal/ir"
	"github.com/abigraph/abidiff/internal/pairing"
	"github.com/abigraph/abidiff/internal/propagate"
	"github.com/abigraph/abidiff/internal/redundancy"
	"github.com/abigraph/abidiff/internal/suppress"
)

// Pair is one corpus comparison job.
type Pair struct {
	Label  string
	First  *ir.Corpus
	Second *ir.Corpus

	// Suppressions, if non-nil, are applied to this pair's own Context
	// before redundancy marking (spec.md §4.5 runs per-comparison).
	Suppressions []core.SuppressionRule

	// Configure, if non-nil, runs against the pair's freshly built Context
	// before comparison starts — e.g. to narrow AllowedCategories.
	Configure func(*core.Context)
}

// Result is one pair's outcome: either Root is populated, or Err explains
// why the comparison could not complete.
type Result struct {
	Label string
	Ctx   *core.Context
	Root  *diff.CorpusDiff
	Err   error
}

// Compare runs CompareCorpora, category propagation, suppression and
// redundancy marking for every pair, bounding concurrency to workers (a
// value below 1 is coerced to 1). Results are returned in the same order as pairs, regardless
// of completion order.
func Compare(pairs []Pair, workers int) []Result {
	if workers < 1 {
		workers = 1
	}

	results := make([]Result, len(pairs))
	pool := tunny.NewFunc(workers, func(payload interface{}) interface{} {
		idx := payload.(int)
		results[idx] = runPair(pairs[idx])
		return nil
	})
	defer pool.Close()

	done := make(chan struct{}, len(pairs))
	for i := range pairs {
		i := i
		go func() {
			pool.Process(i)
			done <- struct{}{}
		}()
	}
	for range pairs {
		<-done
	}
	return results
}

func runPair(p Pair) (result Result) {
	result.Label = p.Label
	defer func() {
		if r := recover(); r != nil {
			result.Err = panicToError(r)
		}
	}()

	ctx := core.NewContext(p.First, p.Second)
	ctx.Suppressions = p.Suppressions
	if p.Configure != nil {
		p.Configure(ctx)
	}

	root := pairing.CompareCorpora(ctx, p.First, p.Second)
	propagate.Run(ctx, root)
	if len(ctx.Suppressions) > 0 {
		suppress.Apply(ctx, root)
	}
	redundancy.Mark(ctx, root)

	result.Ctx = ctx
	result.Root = root
	return result
}

func panicToError(r interface{}) error {
	if err, ok := r.(error); ok {
		return err
	}
	return &panicError{r}
}

type panicError struct{ v interface{} }

func (e *panicError) Error() string { return "batch: comparison panicked: " + toString(e.v) }

func toString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	if err, ok := v.(error); ok {
		return err.Error()
	}
	return "unknown panic value"
}
