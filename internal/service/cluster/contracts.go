package cluster

import (
	"context"

	"service-dispatch/internal/ports/dispatchtx"
)

// txRunner opens a repository transaction.
type txRunner interface {
	WithTx(ctx context.Context, fn func(tx dispatchtx.Repository) error) error
}
