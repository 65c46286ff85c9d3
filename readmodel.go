package nano

import (
	"context"
	"fmt"

	"github.com/io-da/query"
)

// ReadModel marks a consumer-side, read-optimized view served from the
// replicas the apply handler maintains. Replication exists so consumers can
// answer queries locally; the query provider is where those answers come
// from.
type ReadModel interface {
}

// GenericQueryHandler resolves one query type against local replica state.
type GenericQueryHandler[T query.Query, R ReadModel] interface {
	HandleQuery(ctx context.Context, qry T) (R, error)
}

// NewQueryHandlerFunc wraps a plain function as a GenericQueryHandler.
func NewQueryHandlerFunc[T query.Query, R ReadModel](fn func(ctx context.Context, qry T) (R, error)) GenericQueryHandler[T, R] {
	return queryHandlerFunc[T, R](fn)
}

type queryHandlerFunc[T query.Query, R ReadModel] func(ctx context.Context, qry T) (R, error)

func (h queryHandlerFunc[T, R]) HandleQuery(ctx context.Context, qry T) (R, error) {
	return h(ctx, qry)
}

// QueryProvider adapts registered read-model handlers onto the query bus.
type QueryProvider interface {
	query.Handler
	RegisterHandler(name string, handler GenericQueryHandler[query.Query, ReadModel])
}

type readModelProvider struct {
	handlers map[string]GenericQueryHandler[query.Query, ReadModel]
}

func NewQueryProvider() QueryProvider {
	return &readModelProvider{
		handlers: make(map[string]GenericQueryHandler[query.Query, ReadModel]),
	}
}

// RegisterHandler registers a handler under the query type name. Duplicate
// registrations panic at startup.
func (t *readModelProvider) RegisterHandler(name string, handler GenericQueryHandler[query.Query, ReadModel]) {
	if name == "" {
		panic("nano: query handler with empty name")
	}
	if _, ok := t.handlers[name]; ok {
		panic(fmt.Errorf("duplicate handler for query %s: %w", name, ErrDuplicateHandler))
	}
	t.handlers[name] = handler
}

func (t *readModelProvider) Handle(ctx context.Context, qry query.Query, res *query.Result) error {
	provider, exists := t.handlers[TypeName(qry)]
	if !exists {
		return fmt.Errorf("unknown query type: %s", TypeName(qry))
	}

	result, err := provider.HandleQuery(ctx, qry)
	if err != nil {
		return err
	}

	res.Add(result)
	res.Done()

	return nil
}
