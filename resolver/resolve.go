package resolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/arflix-cli/arflix/log"
	"github.com/arflix-cli/arflix/source"
	"golang.org/x/sync/errgroup"
)

// Resolve queries every resolver concurrently and concatenates their candidates in resolver order.
// A failing resolver is logged and skipped; an error is returned only when all of them fail.
// Candidate indexes are renumbered over the merged list.
func Resolve(ctx context.Context, resolvers []source.Resolver, query string) ([]*source.Candidate, error) {
	results := make([][]*source.Candidate, len(resolvers))
	errs := make([]error, len(resolvers))

	var g errgroup.Group
	for i, r := range resolvers {
		i, r := i, r
		g.Go(func() error {
			candidates, err := r.Streams(ctx, query)
			if err != nil {
				log.WithField("resolver", r.Name()).Warnf("resolve %q: %s", query, err)
				errs[i] = err
				return nil
			}
			results[i] = candidates
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var merged []*source.Candidate
	for _, candidates := range results {
		for _, c := range candidates {
			c.Index = len(merged)
			merged = append(merged, c)
		}
	}

	if len(merged) == 0 {
		if joined := errors.Join(errs...); joined != nil {
			return nil, joined
		}
		return nil, fmt.Errorf("%q: %w", query, ErrNoStreams)
	}

	return merged, nil
}

// LoadAll loads the named scripts. The caller closes the returned resolvers.
func LoadAll(names []string) ([]*Resolver, error) {
	var loaded []*Resolver
	for _, name := range names {
		script, ok := Get(name)
		if !ok {
			closeAll(loaded)
			return nil, fmt.Errorf("resolver %q is not installed", name)
		}

		r, err := script.Load()
		if err != nil {
			closeAll(loaded)
			return nil, fmt.Errorf("load resolver %s: %w", name, err)
		}
		loaded = append(loaded, r)
	}
	return loaded, nil
}

func closeAll(resolvers []*Resolver) {
	for _, r := range resolvers {
		r.Close()
	}
}
