package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/laurenhquan/piggypal/internal/clients/cache"
	"github.com/laurenhquan/piggypal/internal/clients/exchange"
	"github.com/laurenhquan/piggypal/internal/config"
	"github.com/laurenhquan/piggypal/internal/logger"
	"github.com/laurenhquan/piggypal/internal/model/ledger"
	"github.com/laurenhquan/piggypal/internal/model/messages"
	"github.com/laurenhquan/piggypal/internal/model/prefs"
	"github.com/laurenhquan/piggypal/internal/model/rates"
	"github.com/laurenhquan/piggypal/internal/model/storage"
	"github.com/laurenhquan/piggypal/internal/tracing"
)

const serviceName = "piggypal"

type consoleReplier struct{}

func (consoleReplier) Reply(text string) error {
	_, err := fmt.Fprintln(os.Stdout, text)
	return err
}

type rateProvider interface {
	FetchRates(ctx context.Context, base string) (map[string]decimal.Decimal, error)
	ConvertOne(ctx context.Context, amount decimal.Decimal, from, to string) (exchange.Conversion, error)
}

func main() {
	logger.Info("PiggyPal init - start")

	conf, err := config.New()
	if err != nil {
		logger.Fatal("failed to init config", zap.Error(err))
	}

	closer, err := tracing.Init(serviceName)
	if err != nil {
		logger.Fatal("failed to init tracing", zap.Error(err))
	}
	defer closer.Close()

	db, err := storage.NewSqliteStorage(conf.Sqlite())
	if err != nil {
		logger.Fatal("failed to init storage", zap.Error(err))
	}
	defer db.Close()

	var provider rateProvider = exchange.New(conf.Exchange())
	if hosts := conf.Memcached().Hosts(); len(hosts) > 0 {
		mc, cacheErr := cache.NewMemcache(conf.Memcached())
		if cacheErr != nil {
			logger.Error("memcached unavailable, rates will not be cached", zap.Error(cacheErr))
		} else {
			provider = rates.NewCachedProvider(provider, mc)
		}
	}

	ledg, err := ledger.NewService(db, provider)
	if err != nil {
		logger.Fatal("failed to init ledger", zap.Error(err))
	}

	prf := prefs.NewService(db, conf.App())
	msgService := messages.NewService(consoleReplier{}, ledg, prf, provider)

	logger.Info("PiggyPal init - end")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	listenCommands(ctx, msgService)
}

func listenCommands(ctx context.Context, msgService *messages.Service) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	logger.Info("Start listening for commands")
	for {
		select {
		case <-ctx.Done():
			logger.Info("Stop listening for commands")
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if strings.TrimSpace(line) == "" {
				continue
			}
			err := msgService.HandleIncomingMessage(ctx, messages.Message{Text: line})
			if err != nil {
				logger.Error("error processing command", zap.Error(err))
			}
		}
	}
}
