package mocks

import (
	"context"

	"github.com/adi-0903/wallet-service/pkg/paymentgateway"
	"github.com/stretchr/testify/mock"
)

type PaymentGateway struct {
	mock.Mock
}

func (p *PaymentGateway) CreateOrder(ctx context.Context, amount int64, receipt string) (paymentgateway.Order, error) {
	args := p.Called(ctx, amount, receipt)
	return args.Get(0).(paymentgateway.Order), args.Error(1)
}

func (p *PaymentGateway) FetchStatus(ctx context.Context, orderID string) (paymentgateway.PaymentStatus, error) {
	args := p.Called(ctx, orderID)
	return args.Get(0).(paymentgateway.PaymentStatus), args.Error(1)
}
