// Package repokit is what sql repos build on: the store seams re-exported,
// binders that attach a repo to a pool or a tx, and transaction hooks
package repokit

import (
	"context"
	"fmt"

	"spec11/internal/platform/store"
)

type (
	Queryer    = store.RowQuerier
	TxRunner   = store.TxRunner
	Rows       = store.Rows
	Row        = store.Row
	CommandTag = store.CommandTag
)

// Binder attaches a repo to a Queryer, usually the one a Tx hands out
type Binder[T any] interface {
	Bind(Queryer) T
}

// BindFunc adapts a constructor to Binder
type BindFunc[T any] func(Queryer) T

func (f BindFunc[T]) Bind(q Queryer) T { return f(q) }

// MustBind panics on a nil q instead of failing at the first query
func MustBind[T any](b Binder[T], q Queryer) T {
	if q == nil {
		panic("repokit: bind to nil Queryer")
	}
	return b.Bind(q)
}

// MustGuard panics when g reports an unreachable dependency
func MustGuard(ctx context.Context, g interface{ Guard(context.Context) error }) {
	if err := g.Guard(ctx); err != nil {
		panic(fmt.Errorf("dependency guard failed: %w", err))
	}
}
