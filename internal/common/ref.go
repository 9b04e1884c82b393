package common

import "context"

// ResolveRef returns the already-resolved document when present, otherwise
// looks it up by id. Field resolvers and exports receive either form.
func ResolveRef[T any](ctx context.Context, resolved *T, id string, lookup func(context.Context, string) (*T, error)) (*T, error) {
	if resolved != nil {
		return resolved, nil
	}
	if id == "" {
		return nil, ErrNotFound
	}
	return lookup(ctx, id)
}

// RefResolver memoizes ResolveRef lookups by id, for loops that resolve the
// same handful of references many times (CSV exports).
type RefResolver[T any] struct {
	lookup func(context.Context, string) (*T, error)
	seen   map[string]*T
}

func NewRefResolver[T any](lookup func(context.Context, string) (*T, error)) *RefResolver[T] {
	return &RefResolver[T]{lookup: lookup, seen: make(map[string]*T)}
}

func (r *RefResolver[T]) Resolve(ctx context.Context, id string) (*T, error) {
	if cached, ok := r.seen[id]; ok {
		return cached, nil
	}
	doc, err := ResolveRef[T](ctx, nil, id, r.lookup)
	if err != nil {
		return nil, err
	}
	r.seen[id] = doc
	return doc, nil
}
