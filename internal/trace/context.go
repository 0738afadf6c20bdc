package trace

import "context"

type contextKey struct{}

var storeContextKey contextKey

// WithStore returns a context carrying a request-scoped Store. Instrumented
// calls made with the returned context append their records to that Store
// instead of the process-wide default.
func WithStore(ctx context.Context, store *Store) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if store == nil {
		return ctx
	}
	return context.WithValue(ctx, storeContextKey, store)
}

// StoreFrom extracts the request-scoped Store from ctx.
func StoreFrom(ctx context.Context) (*Store, bool) {
	if ctx == nil {
		return nil, false
	}
	store, ok := ctx.Value(storeContextKey).(*Store)
	if !ok || store == nil {
		return nil, false
	}
	return store, true
}

func storeFor(ctx context.Context) *Store {
	if store, ok := StoreFrom(ctx); ok {
		return store
	}
	return Default()
}
