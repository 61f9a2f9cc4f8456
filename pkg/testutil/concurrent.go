package testutil

import (
	"errors"
	"sync"
	"sync/atomic"

	dErrors "elan/pkg/domain-errors"
	"elan/pkg/platform/sentinel"
)

// ConcurrentResult tracks outcomes of concurrent test operations.
type ConcurrentResult struct {
	Successes int32
	Conflicts int32 // lost a race: conflict, already used or illegal transition
	NotFounds int32
	Denied    int32
	Errors    int32
}

func (r *ConcurrentResult) Total() int32 {
	return r.Successes + r.Conflicts + r.NotFounds + r.Denied + r.Errors
}

// RunConcurrent runs fn on n goroutines at once and tallies the outcomes.
// It understands both store sentinels and service domain errors.
func RunConcurrent(n int, fn func(idx int) error) *ConcurrentResult {
	var wg sync.WaitGroup
	var successes, conflicts, notFounds, denied, errs atomic.Int32
	start := make(chan struct{})

	for i := range n {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			<-start
			switch err := fn(idx); {
			case err == nil:
				successes.Add(1)
			case isConflict(err):
				conflicts.Add(1)
			case errors.Is(err, sentinel.ErrNotFound) || dErrors.HasCode(err, dErrors.CodeNotFound):
				notFounds.Add(1)
			case dErrors.HasCode(err, dErrors.CodeForbidden):
				denied.Add(1)
			default:
				errs.Add(1)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	return &ConcurrentResult{
		Successes: successes.Load(),
		Conflicts: conflicts.Load(),
		NotFounds: notFounds.Load(),
		Denied:    denied.Load(),
		Errors:    errs.Load(),
	}
}

func isConflict(err error) bool {
	return errors.Is(err, sentinel.ErrConflict) ||
		errors.Is(err, sentinel.ErrAlreadyUsed) ||
		dErrors.HasCode(err, dErrors.CodeConflict) ||
		dErrors.HasCode(err, dErrors.CodeIllegalTransition)
}
