package cache

import (
	"github.com/pkg/errors"

	"go.uber.org/zap"

	"github.com/laurenhquan/piggypal/internal/logger"

	"github.com/bradfitz/gomemcache/memcache"
)

type config interface {
	Hosts() []string
	RateTTLSeconds() int32
}

// MemcacheClient keeps recently fetched conversion rates for a short
// TTL so repeated conversions of the same pair do not hit the network.
type MemcacheClient struct {
	client *memcache.Client
	ttl    int32
}

func NewMemcache(config config) (*MemcacheClient, error) {
	logger.Info("memcached hosts", zap.Strings("hosts", config.Hosts()))
	mc := memcache.New(config.Hosts()...)
	return &MemcacheClient{client: mc, ttl: config.RateTTLSeconds()}, mc.Ping()
}

func formatKey(from, to string) string {
	return "rate:" + from + ":" + to
}

func (mc *MemcacheClient) CacheRate(from, to string, rate string) error {
	return mc.client.Set(&memcache.Item{
		Key:        formatKey(from, to),
		Value:      []byte(rate),
		Expiration: mc.ttl,
	})
}

func (mc *MemcacheClient) GetRate(from, to string) (string, bool, error) {
	item, err := mc.client.Get(formatKey(from, to))
	if errors.Is(err, memcache.ErrCacheMiss) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(item.Value), true, nil
}

func (mc *MemcacheClient) InvalidatePair(from, to string) error {
	logger.Info("invalidate cached rate", zap.String("from", from), zap.String("to", to))
	err := mc.client.Delete(formatKey(from, to))
	if err != nil && !errors.Is(err, memcache.ErrCacheMiss) {
		return err
	}
	return nil
}
