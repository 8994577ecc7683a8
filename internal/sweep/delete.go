package sweep

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/dev-tams/sweepkit/internal/storage/object"
)

// deleteAll drains the candidate set with a bounded pool. Every candidate is
// taken by exactly one worker exactly once; the dry-run gate sits here, per
// object, and nowhere upstream. A failed delete is recorded and logged with
// the key and worker id while the rest of the pool keeps going.
func (s *Sweeper) deleteAll(ctx context.Context, candidates []object.Info) (int, []DeleteError) {
	if len(candidates) == 0 {
		return 0, nil
	}

	workers := s.opts.Threads
	if workers > len(candidates) {
		workers = len(candidates)
	}

	var (
		processed atomic.Int64
		mu        sync.Mutex
		failures  []DeleteError
	)

	candCh := make(chan object.Info)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for obj := range candCh {
				if ctx.Err() != nil {
					continue
				}

				if s.opts.DryRun {
					s.log.Info().
						Int("worker", worker).
						Str("key", obj.Key).
						Msg("would delete")
					processed.Add(1)
					continue
				}

				if err := s.store.Delete(ctx, obj.Key); err != nil {
					s.log.Error().
						Int("worker", worker).
						Str("key", obj.Key).
						Err(err).
						Msg("delete failed")
					mu.Lock()
					failures = append(failures, DeleteError{Key: obj.Key, Worker: worker, Err: err})
					mu.Unlock()
					continue
				}

				processed.Add(1)
				s.log.Debug().
					Int("worker", worker).
					Str("key", obj.Key).
					Msg("deleted")
			}
		}(w)
	}

	for _, c := range candidates {
		candCh <- c
	}
	close(candCh)
	wg.Wait()

	return int(processed.Load()), failures
}
