// Package tx scopes work that must commit or roll back as a unit, such as
// writing a finished record and deleting its active session.
package tx

import "context"

type Manager interface {
	// Within runs fn inside one transaction carried by the context. A nested
	// call joins the outer transaction.
	Within(ctx context.Context, fn func(context.Context) error) error
}

// NoopManager runs fn directly, for stores without transactions.
type NoopManager struct{}

func (NoopManager) Within(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}
