package config

type ExchangeConfig struct {
	BaseUrl        string `yaml:"base-url"`
	Key            string `yaml:"api-key"`
	TimeoutSeconds int64  `yaml:"timeout-seconds"`
}

func (e *ExchangeConfig) BaseURL() string {
	if e.BaseUrl == "" {
		return "https://api.exchangerate.host"
	}
	return e.BaseUrl
}

func (e *ExchangeConfig) ApiKey() string {
	return e.Key
}

func (e *ExchangeConfig) Timeout() int64 {
	if e.TimeoutSeconds <= 0 {
		return 10
	}
	return e.TimeoutSeconds
}
