package translate

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// one API request's worth of work
type batchFunc func(ctx context.Context, items []Item) ([]Result, error)

func splitBatches(items []Item, size int) [][]Item {
	var batches [][]Item
	for i := 0; i < len(items); i += size {
		end := i + size
		if end > len(items) {
			end = len(items)
		}
		batches = append(batches, items[i:end])
	}
	return batches
}

// runBatches splits items into batches of opts.BatchSize. Workers (up to
// opts.Concurrency) pull batches from a shared queue; the first failure
// cancels the rest. Results come back in input order.
func runBatches(
	ctx context.Context,
	items []Item,
	opts Options,
	fn batchFunc,
) ([]Result, error) {
	if len(items) == 0 {
		return []Result{}, nil
	}

	batches := splitBatches(items, opts.batchSize())
	if len(batches) == 1 {
		return fn(ctx, batches[0])
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type batchResult struct {
		Index   int
		Results []Result
		Error   error
	}

	workChan := make(chan int)
	resultChan := make(chan batchResult, len(batches))

	concurrency := opts.concurrency()

	var wg sync.WaitGroup
	for i := 0; i < concurrency && i < len(batches); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case batchIdx, ok := <-workChan:
					if !ok {
						return
					}
					if ctx.Err() != nil {
						return
					}

					results, err := fn(ctx, batches[batchIdx])
					if err != nil {
						cancel()
					}
					resultChan <- batchResult{
						Index:   batchIdx,
						Results: results,
						Error:   err,
					}
				}
			}
		}()
	}

	go func() {
		defer close(workChan)
		for i := range batches {
			select {
			case <-ctx.Done():
				return
			case workChan <- i:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	done := make([]batchResult, 0, len(batches))
	var firstErr error
	for result := range resultChan {
		if result.Error != nil && firstErr == nil {
			firstErr = fmt.Errorf(
				"batch %d failed: %w",
				result.Index,
				result.Error,
			)
			cancel()
		}
		if result.Error == nil {
			done = append(done, result)
		}
	}

	if firstErr != nil {
		return nil, firstErr
	}
	// the parent context may have ended before every batch was queued
	if len(done) != len(batches) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("only %d of %d batches finished", len(done), len(batches))
	}

	sort.Slice(done, func(i, j int) bool {
		return done[i].Index < done[j].Index
	})

	var all []Result
	for _, r := range done {
		all = append(all, r.Results...)
	}
	return all, nil
}
