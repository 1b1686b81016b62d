// Package source defines stream candidates and the resolvers that produce them.
package source

import "context"

// Resolver produces stream candidates for a query. Catalog lookup happens behind it.
type Resolver interface {
	// Name returns the human readable resolver name.
	Name() string

	// ID returns the unique identifier of the resolver.
	ID() string

	// Streams returns every candidate the resolver knows for query, in the resolver's own order.
	Streams(ctx context.Context, query string) ([]*Candidate, error)
}
