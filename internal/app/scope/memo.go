package scope

import "context"

// DataProvider defines a typed data fetching contract.
// Useful for pre-registering known data sources.
type DataProvider interface {
	// Key returns the slot key the fetched value is cached under.
	Key() string

	// Fetch retrieves the data.
	Fetch(ctx context.Context) (any, error)
}

// GetOrFetch returns the value cached under key in the caller's slot, or
// calls fetchFn and caches its result there. Errors are returned unchanged
// and nothing is cached. The cache lives exactly as long as the scope.
func (s *Store) GetOrFetch(
	ctx context.Context,
	key string,
	fetchFn func(ctx context.Context) (any, error),
) (any, error) {
	// Fast path: already fetched in this scope
	if cached, ok := s.Lookup(key); ok {
		return cached, nil
	}

	value, err := fetchFn(ctx)
	if err != nil {
		return nil, err
	}

	s.Set(key, value)

	return value, nil
}

// GetOrFetchProvider is a convenience method for DataProvider types.
func (s *Store) GetOrFetchProvider(ctx context.Context, provider DataProvider) (any, error) {
	return s.GetOrFetch(ctx, provider.Key(), provider.Fetch)
}
