package consumers

import (
	"context"
	"encoding/json"

	"github.com/adi-0903/wallet-service/internal/scheduler"
	"github.com/adi-0903/wallet-service/internal/service"
	"github.com/adi-0903/wallet-service/pkg/mq"
	"go.uber.org/zap"
)

// VerifyConsumer drains the three verification queues, one goroutine
// per queue. Priority is purely a function of which queue a job rides;
// the handler itself is identical.
type VerifyConsumer struct {
	broker   *mq.RabbitMQ
	verifier service.VerifyService
	prefetch int
	logger   *zap.Logger
}

func NewVerifyConsumer(broker *mq.RabbitMQ, verifier service.VerifyService, prefetch int, logger *zap.Logger) *VerifyConsumer {
	return &VerifyConsumer{broker: broker, verifier: verifier, prefetch: prefetch, logger: logger}
}

func (c *VerifyConsumer) Start(ctx context.Context) error {
	for _, queue := range scheduler.Queues() {
		consumer, err := c.broker.CreateConsumer()
		if err != nil {
			return err
		}

		go func(queue string, consumer mq.Consumer) {
			if err := consumer.Consume(ctx, c.prefetch, queue, c.handle); err != nil && ctx.Err() == nil {
				c.logger.Error("consumer stopped unexpectedly",
					zap.String("queue", queue), zap.Error(err))
			}
		}(queue, consumer)

		c.logger.Info("verification consumer started", zap.String("queue", queue))
	}

	return nil
}

// handle runs one verification job. Database errors are temporary so
// the broker requeues them; malformed payloads are dropped.
func (c *VerifyConsumer) handle(ctx context.Context, body []byte) error {
	var job service.VerifyJob
	if err := json.Unmarshal(body, &job); err != nil {
		c.logger.Warn("dropping malformed verification job", zap.Error(err))
		return err
	}

	if job.OrderID == "" {
		c.logger.Warn("dropping verification job without order id")
		return nil
	}

	outcome, err := c.verifier.Verify(ctx, job)
	if err != nil {
		c.logger.Error("verification job failed",
			zap.String("orderID", job.OrderID),
			zap.String("outcome", outcome),
			zap.Error(err))
		return mq.Temporary(err)
	}

	return nil
}
