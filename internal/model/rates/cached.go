package rates

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/laurenhquan/piggypal/internal/clients/exchange"
	"github.com/laurenhquan/piggypal/internal/logger"
)

type ratesProvider interface {
	FetchRates(ctx context.Context, base string) (map[string]decimal.Decimal, error)
	ConvertOne(ctx context.Context, amount decimal.Decimal, from, to string) (exchange.Conversion, error)
}

type rateCache interface {
	GetRate(from, to string) (string, bool, error)
	CacheRate(from, to, rate string) error
	InvalidatePair(from, to string) error
}

// CachedProvider puts a short-lived cache in front of the exchange
// client. Within the cache TTL a currency pair always converts with
// the same rate, so repeated conversions stay consistent.
type CachedProvider struct {
	provider ratesProvider
	cache    rateCache
}

func NewCachedProvider(provider ratesProvider, cache rateCache) *CachedProvider {
	return &CachedProvider{provider: provider, cache: cache}
}

func (p *CachedProvider) FetchRates(ctx context.Context, base string) (map[string]decimal.Decimal, error) {
	rates, err := p.provider.FetchRates(ctx, base)
	if err != nil {
		return nil, err
	}
	for code, rate := range rates {
		p.store(base, code, rate)
	}
	return rates, nil
}

func (p *CachedProvider) ConvertOne(ctx context.Context, amount decimal.Decimal, from, to string) (exchange.Conversion, error) {
	if from == to {
		return p.provider.ConvertOne(ctx, amount, from, to)
	}

	cached, ok, err := p.cache.GetRate(from, to)
	if err != nil {
		logger.Error("rate cache lookup failed", zap.Error(err))
	}
	if ok {
		rate, parseErr := decimal.NewFromString(cached)
		if parseErr == nil {
			return exchange.Conversion{Rate: rate, Result: amount.Mul(rate)}, nil
		}
		logger.Error("discarding unparsable cached rate", zap.String("rate", cached), zap.Error(parseErr))
		if invErr := p.cache.InvalidatePair(from, to); invErr != nil {
			logger.Error("cannot invalidate cached rate", zap.Error(invErr))
		}
	}

	conv, err := p.provider.ConvertOne(ctx, amount, from, to)
	if err != nil {
		return exchange.Conversion{}, err
	}
	p.store(from, to, conv.Rate)
	return conv, nil
}

func (p *CachedProvider) store(from, to string, rate decimal.Decimal) {
	if err := p.cache.CacheRate(from, to, rate.String()); err != nil {
		logger.Error("cannot cache rate", zap.Error(err),
			zap.String("from", from), zap.String("to", to))
	}
}
