package sweep

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/dev-tams/sweepkit/internal/storage/object"
)

// listAll drains the shard set and returns every object found. Under
// multi-read the shards feed a closed channel drained by a bounded pool;
// workers exit only when the channel is closed and drained, so no shard is
// taken twice and no worker blocks after exhaustion. Otherwise listing runs
// sequentially on the calling goroutine with identical external behavior.
func (s *Sweeper) listAll(ctx context.Context, shards []string) ([]object.Info, []ShardError, error) {
	if !s.opts.MultiRead || len(shards) == 1 {
		return s.listSequential(ctx, shards)
	}

	workers := s.opts.Threads
	if workers > len(shards) {
		workers = len(shards)
	}

	var (
		mu       sync.Mutex
		results  []object.Info
		failures []ShardError
		listed   atomic.Int64
	)

	shardCh := make(chan string)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for shard := range shardCh {
				if ctx.Err() != nil {
					// Keep draining so the feeder never blocks.
					continue
				}

				objs, err := s.store.List(ctx, shard)
				listed.Add(int64(len(objs)))

				mu.Lock()
				results = append(results, objs...)
				if err != nil {
					failures = append(failures, ShardError{Shard: shard, Err: err})
				}
				mu.Unlock()

				if err != nil {
					s.log.Error().
						Int("worker", worker).
						Str("shard", shard).
						Err(err).
						Msg("shard listing failed")
					continue
				}
				s.log.Debug().
					Int("worker", worker).
					Str("shard", shard).
					Int("objects", len(objs)).
					Msg("shard listed")
			}
		}(w)
	}

	for _, shard := range shards {
		shardCh <- shard
	}
	close(shardCh)
	wg.Wait()

	s.log.Debug().Int64("listed_total", listed.Load()).Msg("listing pool joined")
	return results, failures, ctx.Err()
}

func (s *Sweeper) listSequential(ctx context.Context, shards []string) ([]object.Info, []ShardError, error) {
	var (
		results  []object.Info
		failures []ShardError
	)

	for _, shard := range shards {
		if err := ctx.Err(); err != nil {
			return results, failures, err
		}

		objs, err := s.store.List(ctx, shard)
		results = append(results, objs...)
		if err != nil {
			failures = append(failures, ShardError{Shard: shard, Err: err})
			s.log.Error().Str("shard", shard).Err(err).Msg("shard listing failed")
			continue
		}
		s.log.Debug().Str("shard", shard).Int("objects", len(objs)).Msg("shard listed")
	}

	return results, failures, nil
}
