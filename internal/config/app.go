package config

type AppConfig struct {
	DefaultCurrencyCode string `yaml:"default-currency"`
	BudgetLimitAmount   string `yaml:"budget-limit"`
	BudgetPeriodName    string `yaml:"budget-period"`
}

func (s *AppConfig) DefaultCurrency() string {
	if s.DefaultCurrencyCode == "" {
		return "USD"
	}
	return s.DefaultCurrencyCode
}

func (s *AppConfig) BudgetLimit() string {
	if s.BudgetLimitAmount == "" {
		return "0"
	}
	return s.BudgetLimitAmount
}

func (s *AppConfig) BudgetPeriod() string {
	if s.BudgetPeriodName == "" {
		return "monthly"
	}
	return s.BudgetPeriodName
}
