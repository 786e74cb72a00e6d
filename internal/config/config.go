package config

import (
	"fmt"
	"reflect"
	"time"

	"github.com/adi-0903/wallet-service/pkg/mq"
	"github.com/adi-0903/wallet-service/pkg/mysql"
	"github.com/adi-0903/wallet-service/pkg/paymentgateway"
	"github.com/go-viper/mapstructure/v2"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	API      API          `mapstructure:"api"`
	Database mysql.Config `mapstructure:"database"`
	Redis    Redis        `mapstructure:"redis"`
	RabbitMQ mq.Config    `mapstructure:"rabbitmq"`
	Gateway  Gateway      `mapstructure:"gateway"`
	Wallet   Wallet       `mapstructure:"wallet"`
	Breaker  Breaker      `mapstructure:"breaker"`
	Verifier Verifier     `mapstructure:"verifier"`
	Sweeper  Sweeper      `mapstructure:"sweeper"`
	Health   Health       `mapstructure:"health"`
}

type API struct {
	Port string `mapstructure:"port"`
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type Gateway struct {
	paymentgateway.Config `mapstructure:",squash"`

	WebhookSecret string `mapstructure:"webhook_secret"`
}

// BonusTier credits a percentage of the recharge amount once the amount
// reaches Threshold. Tiers must be ordered by ascending threshold.
type BonusTier struct {
	Threshold   decimal.Decimal `mapstructure:"threshold"`
	Percentage  decimal.Decimal `mapstructure:"percentage"`
	Description string          `mapstructure:"description"`
}

type WelcomeBonus struct {
	Enabled     bool            `mapstructure:"enabled"`
	Amount      decimal.Decimal `mapstructure:"amount"`
	Description string          `mapstructure:"description"`
}

type Wallet struct {
	BonusTiers        []BonusTier     `mapstructure:"bonus_tiers"`
	WelcomeBonus      WelcomeBonus    `mapstructure:"welcome_bonus"`
	FeePerKg          decimal.Decimal `mapstructure:"fee_per_kg"`
	MaxPending        int             `mapstructure:"max_pending"`
	PendingWindow     time.Duration   `mapstructure:"pending_window"`
	PendingCeiling    time.Duration   `mapstructure:"pending_ceiling"`
	TransactionsLimit int             `mapstructure:"transactions_limit"`
}

type Breaker struct {
	Threshold     int           `mapstructure:"threshold"`
	BaseTimeout   time.Duration `mapstructure:"base_timeout"`
	MaxTimeout    time.Duration `mapstructure:"max_timeout"`
	TimeoutFactor int           `mapstructure:"timeout_factor"`
}

type Verifier struct {
	LockTTL         time.Duration `mapstructure:"lock_ttl"`
	MaxAttempts     int           `mapstructure:"max_attempts"`
	StalenessWindow time.Duration `mapstructure:"staleness_window"`
	BackoffBase     time.Duration `mapstructure:"backoff_base"`
	BackoffCap      time.Duration `mapstructure:"backoff_cap"`
	BreakerRetryIn  time.Duration `mapstructure:"breaker_retry_in"`
	LockRetryIn     time.Duration `mapstructure:"lock_retry_in"`
}

type Sweeper struct {
	Interval     time.Duration `mapstructure:"interval"`
	LockTTL      time.Duration `mapstructure:"lock_ttl"`
	RecentLimit  int           `mapstructure:"recent_limit"`
	MediumLimit  int           `mapstructure:"medium_limit"`
	OldLimit     int           `mapstructure:"old_limit"`
	ExpiryPeriod time.Duration `mapstructure:"expiry_period"`
}

type Health struct {
	Interval          time.Duration `mapstructure:"interval"`
	MaxMemoryMB       float64       `mapstructure:"max_memory_mb"`
	MaxLocks          int           `mapstructure:"max_locks"`
	MaxPendingWarning int64         `mapstructure:"max_pending_warning"`
}

func Load() (cfg *Config, err error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AddConfigPath("./config")

	err = viper.ReadInConfig()
	if err != nil {
		return cfg, fmt.Errorf("failed to load config: %w", err)
	}

	err = viper.Unmarshal(&cfg, viper.DecodeHook(decimalHook()))
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects configurations the ledger cannot run with. Bonus
// tiers come from operators and are the single source of truth for
// bonus math, so a bad tier list has to fail startup, not a request.
func (c *Config) Validate() error {
	prev := decimal.Zero
	for i, tier := range c.Wallet.BonusTiers {
		if i > 0 && tier.Threshold.LessThanOrEqual(prev) {
			return fmt.Errorf("bonus tiers must be ordered by ascending threshold, tier %d is not", i)
		}
		if tier.Percentage.IsNegative() || tier.Percentage.GreaterThan(decimal.NewFromInt(1)) {
			return fmt.Errorf("bonus tier %d percentage must be within [0, 1]", i)
		}
		prev = tier.Threshold
	}

	if c.Wallet.WelcomeBonus.Enabled && c.Wallet.WelcomeBonus.Amount.IsNegative() {
		return fmt.Errorf("welcome bonus amount cannot be negative")
	}

	if c.Breaker.Threshold <= 0 {
		return fmt.Errorf("breaker threshold must be positive")
	}

	if c.Breaker.TimeoutFactor < 2 {
		return fmt.Errorf("breaker timeout factor must be at least 2")
	}

	return nil
}

func decimalHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(decimal.Decimal{}) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return decimal.NewFromString(v)
		case int:
			return decimal.NewFromInt(int64(v)), nil
		case int64:
			return decimal.NewFromInt(v), nil
		case float64:
			return decimal.NewFromFloat(v), nil
		default:
			return data, nil
		}
	}
}
