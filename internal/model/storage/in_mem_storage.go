package storage

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/laurenhquan/piggypal/internal/entity/transaction"
	"github.com/laurenhquan/piggypal/internal/model/customerr"
)

// InMemStorage keeps everything in maps. It backs tests and the
// throwaway in-memory mode; nothing survives a restart.
type InMemStorage struct {
	transactions map[uuid.UUID]transaction.Transaction
	preferences  map[string]string
}

func NewInMemStorage() *InMemStorage {
	return &InMemStorage{
		transactions: make(map[uuid.UUID]transaction.Transaction),
		preferences:  make(map[string]string),
	}
}

func (s *InMemStorage) GetAll(_ context.Context) ([]transaction.Transaction, error) {
	txs := make([]transaction.Transaction, 0, len(s.transactions))
	for _, t := range s.transactions {
		txs = append(txs, t)
	}
	sort.Slice(txs, func(i, j int) bool {
		return txs[i].Date.After(txs[j].Date)
	})
	return txs, nil
}

func (s *InMemStorage) ListByCategory(ctx context.Context, category string) ([]transaction.Transaction, error) {
	return s.filter(ctx, func(t transaction.Transaction) bool {
		return t.Category == category
	})
}

func (s *InMemStorage) ListByCurrency(ctx context.Context, code string) ([]transaction.Transaction, error) {
	return s.filter(ctx, func(t transaction.Transaction) bool {
		return t.Currency == code
	})
}

func (s *InMemStorage) ListBetween(ctx context.Context, from, to time.Time) ([]transaction.Transaction, error) {
	return s.filter(ctx, func(t transaction.Transaction) bool {
		return !t.Date.Before(from) && !t.Date.After(to)
	})
}

func (s *InMemStorage) filter(ctx context.Context, keep func(transaction.Transaction) bool) ([]transaction.Transaction, error) {
	all, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	res := make([]transaction.Transaction, 0)
	for _, t := range all {
		if keep(t) {
			res = append(res, t)
		}
	}
	return res, nil
}

func (s *InMemStorage) GetByID(_ context.Context, id uuid.UUID) (transaction.Transaction, error) {
	t, ok := s.transactions[id]
	if !ok {
		return transaction.Transaction{}, &customerr.NotFoundError{ID: id.String()}
	}
	return t, nil
}

func (s *InMemStorage) Insert(_ context.Context, t transaction.Transaction) error {
	s.transactions[t.ID] = t
	return nil
}

func (s *InMemStorage) Update(_ context.Context, t transaction.Transaction) error {
	if _, ok := s.transactions[t.ID]; !ok {
		return &customerr.NotFoundError{ID: t.ID.String()}
	}
	s.transactions[t.ID] = t
	return nil
}

func (s *InMemStorage) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := s.transactions[id]; !ok {
		return &customerr.NotFoundError{ID: id.String()}
	}
	delete(s.transactions, id)
	return nil
}

func (s *InMemStorage) DeleteAll(_ context.Context) error {
	s.transactions = make(map[uuid.UUID]transaction.Transaction)
	return nil
}

func (s *InMemStorage) GetPreference(_ context.Context, name string) (string, error) {
	return s.preferences[name], nil
}

func (s *InMemStorage) SetPreference(_ context.Context, name, value string) error {
	s.preferences[name] = value
	return nil
}
