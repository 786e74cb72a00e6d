package paymentgateway

import "time"

type Config struct {
	BaseURL    string        `mapstructure:"base_url"`
	KeyID      string        `mapstructure:"key_id"`
	KeySecret  string        `mapstructure:"key_secret"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"max_retries"`
	Currency   string        `mapstructure:"currency"`
}
