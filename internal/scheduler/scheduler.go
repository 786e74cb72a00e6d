package scheduler

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/adi-0903/wallet-service/pkg/mq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Verification jobs ride three queues so a burst of stale orders never
// starves fresh ones.
const (
	QueueVerifyHigh    = "wallet.verify.high"
	QueueVerifyDefault = "wallet.verify.default"
	QueueVerifyLow     = "wallet.verify.low"
)

const delayedKey = "scheduler:delayed"

func Queues() []string {
	return []string{QueueVerifyHigh, QueueVerifyDefault, QueueVerifyLow}
}

// Dispatcher hands jobs to the worker pool, either immediately or after
// a countdown. Delayed jobs park in a redis sorted set scored by due
// time; the pump publishes them once due. Workers reschedule through
// EnqueueIn instead of sleeping so they never pin a pool slot.
type Dispatcher interface {
	Enqueue(ctx context.Context, queue string, body []byte) error
	EnqueueIn(ctx context.Context, queue string, body []byte, delay time.Duration) error
}

type envelope struct {
	Queue string          `json:"queue"`
	Body  json.RawMessage `json:"body"`
}

type Scheduler struct {
	client    *redis.Client
	publisher mq.Publisher
	logger    *zap.Logger
}

func New(client *redis.Client, publisher mq.Publisher, logger *zap.Logger) *Scheduler {
	return &Scheduler{client: client, publisher: publisher, logger: logger}
}

func (s *Scheduler) Enqueue(ctx context.Context, queue string, body []byte) error {
	return s.publisher.Publish(ctx, queue, body)
}

func (s *Scheduler) EnqueueIn(ctx context.Context, queue string, body []byte, delay time.Duration) error {
	if delay <= 0 {
		return s.Enqueue(ctx, queue, body)
	}

	member, err := json.Marshal(envelope{Queue: queue, Body: body})
	if err != nil {
		return err
	}

	due := float64(time.Now().Add(delay).UnixMilli())
	return s.client.ZAdd(ctx, delayedKey, redis.Z{Score: due, Member: member}).Err()
}

// Depth reports the number of parked delayed jobs.
func (s *Scheduler) Depth(ctx context.Context) (int64, error) {
	return s.client.ZCard(ctx, delayedKey).Result()
}

// Run pumps due jobs from the sorted set into their queues until the
// context is cancelled. A single pump instance is expected per
// deployment; the sweeper binary owns it.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler pump stopped")
			return
		case <-ticker.C:
			if err := s.pump(ctx); err != nil {
				s.logger.Error("scheduler pump failed", zap.Error(err))
			}
		}
	}
}

func (s *Scheduler) pump(ctx context.Context) error {
	now := float64(time.Now().UnixMilli())

	members, err := s.client.ZRangeByScore(ctx, delayedKey, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatFloat(now, 'f', 0, 64),
		Count: 100,
	}).Result()
	if err != nil {
		return err
	}

	for _, member := range members {
		var env envelope
		if err := json.Unmarshal([]byte(member), &env); err != nil {
			s.logger.Warn("dropping malformed delayed job", zap.Error(err))
			s.client.ZRem(ctx, delayedKey, member)
			continue
		}

		if err := s.publisher.Publish(ctx, env.Queue, env.Body); err != nil {
			// Leave the member in place; the next tick retries it.
			s.logger.Error("failed to publish due job",
				zap.Error(err),
				zap.String("queue", env.Queue))
			continue
		}

		s.client.ZRem(ctx, delayedKey, member)
	}

	return nil
}
