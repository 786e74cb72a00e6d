package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type CircuitBreaker struct {
	mock.Mock
}

func (c *CircuitBreaker) Allow(ctx context.Context) bool {
	args := c.Called(ctx)
	return args.Bool(0)
}

func (c *CircuitBreaker) RecordSuccess(ctx context.Context) {
	c.Called(ctx)
}

func (c *CircuitBreaker) RecordFailure(ctx context.Context) {
	c.Called(ctx)
}
