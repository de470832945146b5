package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/laurenhquan/piggypal/internal/entity/transaction"
	"github.com/laurenhquan/piggypal/internal/logger"
	"github.com/laurenhquan/piggypal/internal/model/customerr"
)

type transactionStorage interface {
	GetAll(ctx context.Context) ([]transaction.Transaction, error)
	GetByID(ctx context.Context, id uuid.UUID) (transaction.Transaction, error)
	Insert(ctx context.Context, t transaction.Transaction) error
	Update(ctx context.Context, t transaction.Transaction) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAll(ctx context.Context) error
	ListByCategory(ctx context.Context, category string) ([]transaction.Transaction, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]transaction.Transaction, error)
}

type ratesProvider interface {
	FetchRates(ctx context.Context, base string) (map[string]decimal.Decimal, error)
}

// Service is the single owner of the transaction list. Mutations go
// through the storage first; the in-memory projection is refreshed only
// after the write succeeds, so it always reflects the last persisted
// state. Readers get copies, never the backing slice.
type Service struct {
	storage      transactionStorage
	rates        ratesProvider
	transactions []transaction.Transaction
	lastErr      error
}

// ConvertReport summarizes one bulk re-denomination: how many entries
// were rewritten and how many were left untouched because their write
// failed. Err aggregates the per-entry failures.
type ConvertReport struct {
	From      string
	To        string
	Rate      decimal.Decimal
	Converted int
	Failed    int
	Err       error
}

func NewService(storage transactionStorage, rates ratesProvider) (*Service, error) {
	s := &Service{storage: storage, rates: rates}
	if err := s.reload(context.Background()); err != nil {
		return nil, errors.Wrap(err, "cannot load ledger")
	}
	return s, nil
}

// Transactions returns a copy of the current projection.
func (s *Service) Transactions() []transaction.Transaction {
	res := make([]transaction.Transaction, len(s.transactions))
	copy(res, s.transactions)
	return res
}

// LastError reports the most recent failure, for surfacing in the UI.
func (s *Service) LastError() error {
	return s.lastErr
}

// Balance sums the amounts of the given entries. Empty input sums to
// zero. Pure, touches no state.
func Balance(txs []transaction.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txs {
		total = total.Add(t.Amount)
	}
	return total
}

func (s *Service) Add(ctx context.Context, amount decimal.Decimal, curr string, date time.Time, category, description string) (transaction.Transaction, error) {
	t := transaction.New(amount, curr, date, category, description)
	if err := t.Validate(); err != nil {
		return transaction.Transaction{}, s.fail(&customerr.ValidationError{Err: err})
	}

	if err := s.storage.Insert(ctx, t); err != nil {
		return transaction.Transaction{}, s.fail(&customerr.PersistenceError{Op: "add", Err: err})
	}
	if err := s.reload(ctx); err != nil {
		return transaction.Transaction{}, s.fail(err)
	}
	return t, nil
}

// Edit overwrites every mutable field of an existing entry at once.
func (s *Service) Edit(ctx context.Context, id uuid.UUID, amount decimal.Decimal, curr string, date time.Time, category, description string) error {
	current, err := s.storage.GetByID(ctx, id)
	if err != nil {
		return s.fail(err)
	}

	current.Amount = amount
	current.Currency = curr
	current.Date = date
	current.Category = category
	current.Description = description
	if err = current.Validate(); err != nil {
		return s.fail(&customerr.ValidationError{Err: err})
	}

	if err = s.storage.Update(ctx, current); err != nil {
		return s.fail(wrapUnlessNotFound(err, "edit"))
	}
	return s.refresh(ctx)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.storage.Delete(ctx, id); err != nil {
		return s.fail(wrapUnlessNotFound(err, "delete"))
	}
	return s.refresh(ctx)
}

// ClearAll removes every transaction in one storage operation.
func (s *Service) ClearAll(ctx context.Context) error {
	if err := s.storage.DeleteAll(ctx); err != nil {
		return s.fail(&customerr.PersistenceError{Op: "clear", Err: err})
	}
	return s.refresh(ctx)
}

func (s *Service) ByCategory(ctx context.Context, category string) ([]transaction.Transaction, error) {
	txs, err := s.storage.ListByCategory(ctx, category)
	if err != nil {
		return nil, s.fail(&customerr.PersistenceError{Op: "list by category", Err: err})
	}
	return txs, nil
}

func (s *Service) Between(ctx context.Context, from, to time.Time) ([]transaction.Transaction, error) {
	txs, err := s.storage.ListBetween(ctx, from, to)
	if err != nil {
		return nil, s.fail(&customerr.PersistenceError{Op: "list between", Err: err})
	}
	return txs, nil
}

// ConvertAll re-denominates every entry recorded in from into to,
// using one fetched rate for the whole batch. A failed rate fetch
// aborts with nothing converted. Per-entry write failures leave that
// entry in its old currency; the batch continues and the report
// carries the counts and the combined error.
func (s *Service) ConvertAll(ctx context.Context, from, to string) (ConvertReport, error) {
	report := ConvertReport{From: from, To: to}
	if from == to {
		return report, nil
	}

	span, ctx := opentracing.StartSpanFromContext(ctx, "convertAll")
	defer span.Finish()
	span.SetTag("from", from)
	span.SetTag("to", to)

	rates, err := s.rates.FetchRates(ctx, from)
	if err != nil {
		ext.Error.Set(span, true)
		return report, s.fail(errors.Wrap(err, "convert all"))
	}
	rate, ok := rates[to]
	if !ok {
		ext.Error.Set(span, true)
		return report, s.fail(fmt.Errorf("no rate from %s to %s", from, to))
	}
	report.Rate = rate

	for _, t := range s.transactions {
		if t.Currency != from {
			continue
		}
		converted := t
		converted.Amount = t.Amount.Mul(rate)
		converted.Currency = to

		if err = s.storage.Update(ctx, converted); err != nil {
			report.Failed++
			report.Err = multierror.Append(report.Err,
				errors.Wrapf(err, "convert entry %s", t.ID))
			logger.Error("failed to convert entry",
				zap.String("id", t.ID.String()), zap.Error(err))
			continue
		}
		report.Converted++
	}

	if err = s.reload(ctx); err != nil {
		return report, s.fail(err)
	}
	if report.Err != nil {
		ext.Error.Set(span, true)
		s.lastErr = report.Err
	}
	return report, nil
}

func (s *Service) refresh(ctx context.Context) error {
	if err := s.reload(ctx); err != nil {
		return s.fail(err)
	}
	return nil
}

// reload replaces the projection from storage. On failure the old
// projection stays in place.
func (s *Service) reload(ctx context.Context) error {
	txs, err := s.storage.GetAll(ctx)
	if err != nil {
		return &customerr.PersistenceError{Op: "load", Err: err}
	}
	s.transactions = txs
	return nil
}

func (s *Service) fail(err error) error {
	s.lastErr = err
	return err
}

func wrapUnlessNotFound(err error, op string) error {
	var notFound *customerr.NotFoundError
	if errors.As(err, &notFound) {
		return err
	}
	return &customerr.PersistenceError{Op: op, Err: err}
}
