package dividends

import (
	"fmt"
)

// Model is a single key value answer of a query, for example a token and
// the amount a recipient could claim in it.
type Model struct {
	Key   []byte
	Value []byte
}

func Pair(key, value []byte) Model {
	return Model{
		Key:   key,
		Value: value,
	}
}

// QueryHandler answers a read only question about the ledger, such as the
// fees recorded for a day or the amount owed to a recipient. It never sees
// uncommitted state.
type QueryHandler interface {
	Query(db ReadOnlyKVStore, data []byte) ([]Model, error)
}

type QueryHandlerFunc func(db ReadOnlyKVStore, data []byte) ([]Model, error)

func (fn QueryHandlerFunc) Query(db ReadOnlyKVStore, data []byte) ([]Model, error) {
	return fn(db, data)
}

// QueryRegister is implemented by each extension to publish its query
// paths.
type QueryRegister func(QueryRouter)

// QueryRouter dispatches a query by its path, for example "/preview" or
// "/day". Each path has exactly one handler.
type QueryRouter struct {
	routes map[string]QueryHandler
}

func NewQueryRouter() QueryRouter {
	return QueryRouter{
		routes: make(map[string]QueryHandler, 10),
	}
}

func (r QueryRouter) RegisterAll(qr ...QueryRegister) {
	for _, q := range qr {
		q(r)
	}
}

// Register panics if the path already has a handler.
func (r QueryRouter) Register(path string, h QueryHandler) {
	if _, ok := r.routes[path]; ok {
		panic(fmt.Sprintf("query path %q registered twice", path))
	}
	r.routes[path] = h
}

// Handler returns nil for an unknown path.
func (r QueryRouter) Handler(path string) QueryHandler {
	return r.routes[path]
}
