// Package sweep implements the bulk-deletion pipeline: plan listing shards,
// list them in parallel, filter the aggregated result against key patterns,
// and delete the matches in parallel. Stages run strictly in order; deletion
// never starts before the full candidate set is known.
package sweep

import (
	"context"
	"sort"

	"github.com/rs/zerolog"

	"github.com/dev-tams/sweepkit/internal/storage"
)

// Options control a single run.
type Options struct {
	// Prefixes restrict listing to explicit key prefixes. Empty means the
	// whole bucket.
	Prefixes []string

	// Patterns are the regular expressions candidates must match. An empty
	// list selects nothing; deleting everything requires an explicit
	// match-all pattern.
	Patterns []string

	// Threads bounds both worker pools. Values below 1 are treated as 1.
	Threads int

	// MultiRead enables parallel listing. Without explicit prefixes it
	// shards the bucket by leading printable-ASCII character.
	MultiRead bool

	// DryRun logs intended deletions instead of issuing them. The gate is
	// applied per object inside the deletion pool, nowhere upstream.
	DryRun bool
}

// ShardError records a failed shard listing. Sibling shards are unaffected;
// the shard contributes whatever was collected before the failure.
type ShardError struct {
	Shard string
	Err   error
}

// DeleteError records a failed deletion of one candidate.
type DeleteError struct {
	Key    string
	Worker int
	Err    error
}

// Summary aggregates the counts and per-item failures of one run.
type Summary struct {
	// Listed is the total number of objects collected across all shards.
	Listed int

	// Matched is the size of the deduplicated candidate set.
	Matched int

	// Processed counts deletions, or intended deletions under dry-run.
	Processed int

	ListFailures   []ShardError
	DeleteFailures []DeleteError
}

// Failed reports whether any shard listing or deletion failed. Callers use
// this to surface partial failure through the exit status.
func (s *Summary) Failed() bool {
	return len(s.ListFailures) > 0 || len(s.DeleteFailures) > 0
}

type Sweeper struct {
	store storage.ObjectStore
	log   zerolog.Logger
	opts  Options
}

func New(store storage.ObjectStore, log zerolog.Logger, opts Options) *Sweeper {
	if opts.Threads < 1 {
		opts.Threads = 1
	}
	return &Sweeper{store: store, log: log, opts: opts}
}

// Run executes the four stages in order and blocks until the last pool has
// joined. Per-item failures are collected in the summary, not returned as an
// error; only context cancellation aborts the run.
func (s *Sweeper) Run(ctx context.Context) (*Summary, error) {
	sum := &Summary{}

	shards := planShards(s.opts.Prefixes, s.opts.MultiRead)
	s.log.Debug().
		Int("shards", len(shards)).
		Bool("multi_read", s.opts.MultiRead).
		Msg("planned listing shards")

	results, listFailures, err := s.listAll(ctx, shards)
	sum.Listed = len(results)
	sum.ListFailures = listFailures
	if err != nil {
		return sum, err
	}
	s.log.Info().
		Int("listed", sum.Listed).
		Int("failed_shards", len(listFailures)).
		Msg("listing complete")

	patterns := compilePatterns(s.opts.Patterns, s.log)
	candidates := matchCandidates(results, patterns)
	sum.Matched = len(candidates)
	s.log.Info().Int("matched", sum.Matched).Msg("filtering complete")

	// The candidate slice is immutable from here on: the debug dump and the
	// deletion pool read the same snapshot.
	if s.log.GetLevel() <= zerolog.DebugLevel && len(candidates) > 0 {
		keys := make([]string, len(candidates))
		for i, c := range candidates {
			keys[i] = c.Key
		}
		sort.Strings(keys)
		s.log.Debug().Strs("keys", keys).Msg("candidate set")
	}

	processed, deleteFailures := s.deleteAll(ctx, candidates)
	sum.Processed = processed
	sum.DeleteFailures = deleteFailures
	if err := ctx.Err(); err != nil {
		return sum, err
	}

	s.log.Info().
		Int("processed", sum.Processed).
		Int("failed_deletes", len(deleteFailures)).
		Bool("dry_run", s.opts.DryRun).
		Msg("sweep complete")

	return sum, nil
}
