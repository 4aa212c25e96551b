package middleware

import "github.com/aretw0/cairn/pkg/ports"

// Middleware wraps a ResultStore to add behavior.
type Middleware func(ports.ResultStore) ports.ResultStore

// Chain applies middlewares so the first one listed is the outermost.
func Chain(store ports.ResultStore, middlewares ...Middleware) ports.ResultStore {
	for i := len(middlewares) - 1; i >= 0; i-- {
		store = middlewares[i](store)
	}
	return store
}
