// Package batch resolves display values for a set of keys concurrently.
package batch

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DefaultLimit bounds the number of lookups in flight.
const DefaultLimit = 8

// LookupFunc fetches the value for one key.
type LookupFunc[K comparable, V any] func(ctx context.Context, key K) (V, error)

// Resolve looks up every distinct key once, all lookups started together
// and joined before returning. A failed lookup yields placeholder for its
// key and does not cancel the others. Zero keys map to placeholder without
// a lookup. The result holds every input key.
func Resolve[K comparable, V any](ctx context.Context, keys []K, limit int, placeholder V, lookup LookupFunc[K, V]) map[K]V {
	var zero K
	distinct := make([]K, 0, len(keys))
	seen := make(map[K]struct{}, len(keys))
	hasZero := false
	for _, k := range keys {
		if k == zero {
			hasZero = true
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		distinct = append(distinct, k)
	}

	values := make([]V, len(distinct))
	var g errgroup.Group
	if limit <= 0 {
		limit = DefaultLimit
	}
	g.SetLimit(limit)
	for i, k := range distinct {
		g.Go(func() error {
			v, err := lookup(ctx, k)
			if err != nil {
				values[i] = placeholder
				return nil
			}
			values[i] = v
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[K]V, len(distinct)+1)
	for i, k := range distinct {
		out[k] = values[i]
	}
	if hasZero {
		out[zero] = placeholder
	}
	return out
}
