package checkaffordability

import (
	"fmt"
	"time"

	"car-mzansi-connect/internal/common/config"

	"github.com/shopspring/decimal"
)

type Config struct {
	Timeout            time.Duration
	AnnualRate         decimal.Decimal
	MaxInstalmentRatio decimal.Decimal
}

// LoadConfig reads the rate and ratio from the finance section.
func LoadConfig(fin config.FinanceConfig) (*Config, error) {
	rate, err := decimal.NewFromString(fin.DefaultAnnualRate)
	if err != nil {
		return nil, fmt.Errorf("finance.default_annual_rate: %w", err)
	}
	ratio, err := decimal.NewFromString(fin.MaxInstalmentRatio)
	if err != nil {
		return nil, fmt.Errorf("finance.max_instalment_ratio: %w", err)
	}
	return &Config{
		Timeout:            5 * time.Second,
		AnnualRate:         rate,
		MaxInstalmentRatio: ratio,
	}, nil
}
