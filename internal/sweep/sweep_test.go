package sweep

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/dev-tams/sweepkit/internal/storage/object"
)

// fakeStore is an in-memory ObjectStore safe for concurrent use.
type fakeStore struct {
	mu      sync.Mutex
	keys    map[string]struct{}
	listErr map[string]error // shard prefix -> forced error
	delErr  map[string]error // key -> forced error
	deletes []string         // every Delete call, including failed ones
}

func newFakeStore(keys ...string) *fakeStore {
	f := &fakeStore{
		keys:    make(map[string]struct{}, len(keys)),
		listErr: make(map[string]error),
		delErr:  make(map[string]error),
	}
	for _, k := range keys {
		f.keys[k] = struct{}{}
	}
	return f
}

func (f *fakeStore) Name() string { return "fake" }

func (f *fakeStore) List(_ context.Context, prefix string) ([]object.Info, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.listErr[prefix]; err != nil {
		return nil, err
	}
	var out []object.Info
	for k := range f.keys {
		if strings.HasPrefix(k, prefix) {
			out = append(out, object.Info{Key: k})
		}
	}
	return out, nil
}

func (f *fakeStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.deletes = append(f.deletes, key)
	if err := f.delErr[key]; err != nil {
		return err
	}
	delete(f.keys, key)
	return nil
}

func (f *fakeStore) deleteCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.deletes))
	copy(out, f.deletes)
	return out
}

// syncBuffer lets concurrent workers log into one buffer.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestRunDryRunIssuesNoDeletes(t *testing.T) {
	store := newFakeStore("img-800x600.png", "img-1024x800.jpg", "readme.txt")
	var buf syncBuffer
	log := zerolog.New(&buf)

	sw := New(store, log, Options{
		Patterns: []string{"-800x600", "-1024x800.*(jpg|png)"},
		Threads:  4,
		DryRun:   true,
	})
	sum, err := sw.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, 3, sum.Listed)
	require.Equal(t, 2, sum.Matched)
	require.Equal(t, 2, sum.Processed)
	require.Empty(t, store.deleteCalls(), "dry-run must not issue delete calls")
	require.Equal(t, 2, strings.Count(buf.String(), "would delete"))
}

func TestRunMatchAllDeletesEachKeyExactlyOnce(t *testing.T) {
	keys := make([]string, 0, 100)
	for i := 0; i < 100; i++ {
		keys = append(keys, fmt.Sprintf("obj-%03d", i))
	}
	store := newFakeStore(keys...)

	sw := New(store, zerolog.Nop(), Options{
		Patterns: []string{".*"},
		Threads:  8,
	})
	sum, err := sw.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, 100, sum.Listed)
	require.Equal(t, 100, sum.Matched)
	require.Equal(t, 100, sum.Processed)
	require.False(t, sum.Failed())

	calls := store.deleteCalls()
	sort.Strings(calls)
	require.Equal(t, keys, calls, "each candidate deleted exactly once")
}

func TestRunSingleThreadProcessesEverything(t *testing.T) {
	store := newFakeStore("a", "b", "c")
	sw := New(store, zerolog.Nop(), Options{Patterns: []string{".*"}, Threads: 1})
	sum, err := sw.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, sum.Processed)
	require.Len(t, store.deleteCalls(), 3)
}

func TestRunMultiReadListsWholeKeySpace(t *testing.T) {
	store := newFakeStore("alpha/1", "beta/2", "zeta/3", "!bang", "~tilde")
	sw := New(store, zerolog.Nop(), Options{
		Patterns:  []string{".*"},
		Threads:   4,
		MultiRead: true,
		DryRun:    true,
	})
	sum, err := sw.Run(context.Background())
	require.NoError(t, err)

	// Per-shard counts must add up to the full result set.
	require.Equal(t, 5, sum.Listed)
	require.Equal(t, 5, sum.Matched)
}

func TestRunExplicitPrefixesEquivalentToFiltering(t *testing.T) {
	store := newFakeStore("a1", "a2", "b1", "c1")

	withPrefixes := New(store, zerolog.Nop(), Options{
		Prefixes:  []string{"a", "b"},
		Patterns:  []string{".*"},
		Threads:   2,
		MultiRead: true,
		DryRun:    true,
	})
	sum, err := withPrefixes.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, sum.Listed)
	require.Equal(t, 3, sum.Matched)
}

func TestRunEmptyPatternListDeletesNothing(t *testing.T) {
	store := newFakeStore("a", "b")
	sw := New(store, zerolog.Nop(), Options{Threads: 2})
	sum, err := sw.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, 2, sum.Listed)
	require.Zero(t, sum.Matched)
	require.Zero(t, sum.Processed)
	require.Empty(t, store.deleteCalls())
}

func TestRunShardListingFailureIsIsolated(t *testing.T) {
	store := newFakeStore("a1", "b1", "c1")
	store.listErr["b"] = fmt.Errorf("throttled")

	sw := New(store, zerolog.Nop(), Options{
		Prefixes:  []string{"a", "b", "c"},
		Patterns:  []string{".*"},
		Threads:   3,
		MultiRead: true,
		DryRun:    true,
	})
	sum, err := sw.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, 2, sum.Listed, "sibling shards keep listing")
	require.Len(t, sum.ListFailures, 1)
	require.Equal(t, "b", sum.ListFailures[0].Shard)
	require.True(t, sum.Failed())
}

func TestRunDeleteFailureIsIsolated(t *testing.T) {
	store := newFakeStore("a", "b", "c")
	store.delErr["b"] = fmt.Errorf("access denied")

	sw := New(store, zerolog.Nop(), Options{Patterns: []string{".*"}, Threads: 2})
	sum, err := sw.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, 2, sum.Processed)
	require.Len(t, sum.DeleteFailures, 1)
	require.Equal(t, "b", sum.DeleteFailures[0].Key)
	require.True(t, sum.Failed())
	require.Len(t, store.deleteCalls(), 3, "failed delete still attempted once")
}

func TestRunCanceledContextAborts(t *testing.T) {
	store := newFakeStore("a", "b")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sw := New(store, zerolog.Nop(), Options{Patterns: []string{".*"}, Threads: 2})
	_, err := sw.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, store.deleteCalls())
}
