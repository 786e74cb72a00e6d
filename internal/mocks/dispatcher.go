package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

type Dispatcher struct {
	mock.Mock
}

func (d *Dispatcher) Enqueue(ctx context.Context, queue string, body []byte) error {
	args := d.Called(ctx, queue, body)
	return args.Error(0)
}

func (d *Dispatcher) EnqueueIn(ctx context.Context, queue string, body []byte, delay time.Duration) error {
	args := d.Called(ctx, queue, body, delay)
	return args.Error(0)
}
