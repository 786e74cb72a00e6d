package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

type Locker struct {
	mock.Mock
}

func (l *Locker) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	args := l.Called(ctx, key, ttl)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (l *Locker) Release(ctx context.Context, key string, token string) error {
	args := l.Called(ctx, key, token)
	return args.Error(0)
}
