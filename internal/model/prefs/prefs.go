package prefs

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/laurenhquan/piggypal/internal/entity/currency"
	"github.com/laurenhquan/piggypal/internal/entity/period"
)

const (
	defaultCurrencyKey = "default_currency"
	budgetLimitKey     = "budget_limit"
	budgetPeriodKey    = "budget_period"
)

type settingsStorage interface {
	GetPreference(ctx context.Context, name string) (string, error)
	SetPreference(ctx context.Context, name, value string) error
}

type defaults interface {
	DefaultCurrency() string
	BudgetLimit() string
	BudgetPeriod() string
}

// Service reads and writes the persisted scalar settings: default
// currency, budget limit (zero means no budget) and budget period.
// Unset values fall back to the config defaults.
type Service struct {
	storage  settingsStorage
	defaults defaults
}

func NewService(storage settingsStorage, defaults defaults) *Service {
	return &Service{storage: storage, defaults: defaults}
}

func (s *Service) DefaultCurrency(ctx context.Context) (string, error) {
	code, err := s.storage.GetPreference(ctx, defaultCurrencyKey)
	if err != nil {
		return "", errors.Wrap(err, "get default currency")
	}
	if code == "" {
		code = s.defaults.DefaultCurrency()
	}
	return code, nil
}

func (s *Service) SetDefaultCurrency(ctx context.Context, code string) error {
	if !currency.IsValid(code) {
		return fmt.Errorf("invalid currency code %q", code)
	}
	return errors.Wrap(s.storage.SetPreference(ctx, defaultCurrencyKey, code), "set default currency")
}

func (s *Service) BudgetLimit(ctx context.Context) (decimal.Decimal, error) {
	raw, err := s.storage.GetPreference(ctx, budgetLimitKey)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "get budget limit")
	}
	if raw == "" {
		raw = s.defaults.BudgetLimit()
	}
	limit, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "parse budget limit")
	}
	return limit, nil
}

func (s *Service) BudgetPeriod(ctx context.Context) (period.Period, error) {
	raw, err := s.storage.GetPreference(ctx, budgetPeriodKey)
	if err != nil {
		return "", errors.Wrap(err, "get budget period")
	}
	if raw == "" {
		raw = s.defaults.BudgetPeriod()
	}
	return period.Parse(raw)
}

// SetBudget stores the limit and period together. A zero limit turns
// the budget warning off.
func (s *Service) SetBudget(ctx context.Context, limit decimal.Decimal, p period.Period) error {
	if limit.IsNegative() {
		return fmt.Errorf("budget limit must not be negative, got %s", limit)
	}
	if err := s.storage.SetPreference(ctx, budgetLimitKey, limit.String()); err != nil {
		return errors.Wrap(err, "set budget limit")
	}
	return errors.Wrap(s.storage.SetPreference(ctx, budgetPeriodKey, p.String()), "set budget period")
}
