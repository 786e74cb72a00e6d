package mocks

import (
	"context"

	"github.com/adi-0903/wallet-service/internal/repository"
	"github.com/stretchr/testify/mock"
)

type TxManager struct {
	mock.Mock
}

// WithTx records the call, then runs fn with a transaction marker in
// the context so code under test behaves as if inside a transaction.
func (t *TxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	args := t.Called(ctx, fn)

	if args.Error(0) != nil {
		return args.Error(0)
	}

	return fn(repository.WithTxValue(ctx, nil))
}
