package service

import (
	"github.com/adi-0903/wallet-service/internal/config"
	"github.com/shopspring/decimal"
)

// CalculateBonus resolves the recharge amount against the configured
// tier ladder and returns the bonus credit plus its description. Tiers
// are ordered ascending, so the last threshold the amount clears wins.
func CalculateBonus(tiers []config.BonusTier, amount decimal.Decimal) (decimal.Decimal, string) {
	bonus := decimal.Zero
	description := ""

	for _, tier := range tiers {
		if amount.GreaterThanOrEqual(tier.Threshold) {
			bonus = amount.Mul(tier.Percentage).Round(2)
			description = tier.Description
		}
	}

	return bonus, description
}
