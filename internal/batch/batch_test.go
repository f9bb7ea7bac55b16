package batch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestResolve_DistinctKeysOnce(t *testing.T) {
	var mu sync.Mutex
	calls := map[string]int{}
	got := Resolve(context.Background(), []string{"1", "2", "1", "3", "2"}, 0, "?",
		func(_ context.Context, k string) (string, error) {
			mu.Lock()
			calls[k]++
			mu.Unlock()
			return "name-" + k, nil
		})

	require.Equal(t, map[string]string{"1": "name-1", "2": "name-2", "3": "name-3"}, got)
	require.Equal(t, map[string]int{"1": 1, "2": 1, "3": 1}, calls)
}

func TestResolve_ZeroKeySkipsLookup(t *testing.T) {
	var calls atomic.Int32
	got := Resolve(context.Background(), []string{"", "1", ""}, 0, "?",
		func(_ context.Context, k string) (string, error) {
			calls.Add(1)
			return "name-" + k, nil
		})
	require.Equal(t, map[string]string{"": "?", "1": "name-1"}, got)
	require.Equal(t, int32(1), calls.Load())
}

func TestResolve_FailureYieldsPlaceholder(t *testing.T) {
	got := Resolve(context.Background(), []int{1, 2, 3}, 2, "User",
		func(_ context.Context, k int) (string, error) {
			if k == 2 {
				return "", errors.New("boom")
			}
			return "ok", nil
		})
	require.Equal(t, map[int]string{1: "ok", 2: "User", 3: "ok"}, got)
}

func TestResolve_RunsConcurrently(t *testing.T) {
	var inFlight, peak atomic.Int32
	keys := []int{1, 2, 3, 4}
	_ = Resolve(context.Background(), keys, len(keys), 0,
		func(_ context.Context, k int) (int, error) {
			n := inFlight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			inFlight.Add(-1)
			return k, nil
		})
	require.Greater(t, peak.Load(), int32(1))
}

func TestResolve_RespectsLimit(t *testing.T) {
	var inFlight, peak atomic.Int32
	_ = Resolve(context.Background(), []int{1, 2, 3, 4, 5, 6}, 2, 0,
		func(_ context.Context, k int) (int, error) {
			n := inFlight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			inFlight.Add(-1)
			return k, nil
		})
	require.LessOrEqual(t, peak.Load(), int32(2))
}

func TestResolve_Empty(t *testing.T) {
	got := Resolve(context.Background(), nil, 0, "",
		func(context.Context, string) (string, error) {
			t.Fatal("lookup must not be called")
			return "", nil
		})
	require.Empty(t, got)
}
