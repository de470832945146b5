package config

type MemcachedConfig struct {
	NodeHosts      []string `yaml:"hosts"`
	RateTtlSeconds int32    `yaml:"rate-ttl-seconds"`
}

func (s *MemcachedConfig) Hosts() []string {
	return s.NodeHosts
}

func (s *MemcachedConfig) RateTTLSeconds() int32 {
	if s.RateTtlSeconds <= 0 {
		return 300
	}
	return s.RateTtlSeconds
}
