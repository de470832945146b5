package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laurenhquan/piggypal/internal/entity/transaction"
	"github.com/laurenhquan/piggypal/internal/model/customerr"
	"github.com/laurenhquan/piggypal/internal/model/storage"
)

type stubRates struct {
	rates map[string]map[string]decimal.Decimal
	err   error
	calls int
}

func (s *stubRates) FetchRates(_ context.Context, base string) (map[string]decimal.Decimal, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.rates[base], nil
}

type flakyStorage struct {
	*storage.InMemStorage
	failID uuid.UUID
}

func (s *flakyStorage) Update(ctx context.Context, t transaction.Transaction) error {
	if t.ID == s.failID {
		return errors.New("disk full")
	}
	return s.InMemStorage.Update(ctx, t)
}

func newTestService(t *testing.T, rates *stubRates) *Service {
	t.Helper()
	svc, err := NewService(storage.NewInMemStorage(), rates)
	require.NoError(t, err)
	return svc
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func Test_OnEmptySequence_BalanceShouldBeZero(t *testing.T) {
	assert.True(t, Balance(nil).IsZero())
	assert.True(t, Balance([]transaction.Transaction{}).IsZero())
}

func Test_Balance_ShouldEqualSumOfAmounts(t *testing.T) {
	txs := []transaction.Transaction{
		{Amount: decimal.RequireFromString("-42.50")},
		{Amount: decimal.RequireFromString("100.00")},
		{Amount: decimal.RequireFromString("-0.01")},
	}

	assert.True(t, Balance(txs).Equal(decimal.RequireFromString("57.49")))
}

func Test_OnAdd_ShouldPersistEntry(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, &stubRates{})

	added, err := svc.Add(ctx, decimal.RequireFromString("-42.50"), "USD",
		date(2024, time.March, 1), "Groceries", "weekly shop")

	require.NoError(t, err)
	txs := svc.Transactions()
	require.Len(t, txs, 1)
	assert.Equal(t, added.ID, txs[0].ID)
	assert.True(t, txs[0].Amount.Equal(decimal.RequireFromString("-42.50")))
	assert.Equal(t, "USD", txs[0].Currency)
	assert.NoError(t, svc.LastError())
}

func Test_OnAddWithZeroDate_ShouldAttributeToNow(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, &stubRates{})

	added, err := svc.Add(ctx, decimal.NewFromInt(10), "USD", time.Time{}, "Health", "")

	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), added.Date, time.Minute)
}

func Test_OnAddWithUnknownCategory_ShouldRejectAndKeepList(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, &stubRates{})

	_, err := svc.Add(ctx, decimal.NewFromInt(10), "USD", date(2024, time.March, 1), "Yachts", "")

	var validationErr *customerr.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Empty(t, svc.Transactions())
	assert.Error(t, svc.LastError())
}

func Test_OnEditMissingID_ShouldReturnNotFound(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, &stubRates{})

	err := svc.Edit(ctx, uuid.New(), decimal.NewFromInt(1), "USD",
		date(2024, time.March, 1), "Groceries", "")

	var notFound *customerr.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func Test_OnEdit_ShouldOverwriteAllFields(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, &stubRates{})

	added, err := svc.Add(ctx, decimal.NewFromInt(-20), "USD",
		date(2024, time.March, 1), "Groceries", "old")
	require.NoError(t, err)

	err = svc.Edit(ctx, added.ID, decimal.NewFromInt(-25), "EUR",
		date(2024, time.March, 2), "Health", "new")
	require.NoError(t, err)

	txs := svc.Transactions()
	require.Len(t, txs, 1)
	assert.Equal(t, added.ID, txs[0].ID)
	assert.True(t, txs[0].Amount.Equal(decimal.NewFromInt(-25)))
	assert.Equal(t, "EUR", txs[0].Currency)
	assert.Equal(t, "Health", txs[0].Category)
	assert.Equal(t, "new", txs[0].Description)
}

func Test_OnEditThenDelete_ShouldMatchDeleteAlone(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, &stubRates{})

	kept, err := svc.Add(ctx, decimal.NewFromInt(5), "USD", date(2024, time.March, 1), "Health", "")
	require.NoError(t, err)
	doomed, err := svc.Add(ctx, decimal.NewFromInt(-7), "USD", date(2024, time.March, 2), "Groceries", "")
	require.NoError(t, err)

	require.NoError(t, svc.Edit(ctx, doomed.ID, decimal.NewFromInt(-99), "EUR",
		date(2024, time.March, 3), "Transportation", "edited"))
	require.NoError(t, svc.Delete(ctx, doomed.ID))

	txs := svc.Transactions()
	require.Len(t, txs, 1)
	assert.Equal(t, kept, txs[0])
}

func Test_OnByCategoryAndBetween_ShouldFilterThroughStorage(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, &stubRates{})

	groceries, err := svc.Add(ctx, decimal.NewFromInt(-30), "USD",
		date(2024, time.March, 1), "Groceries", "")
	require.NoError(t, err)
	health, err := svc.Add(ctx, decimal.NewFromInt(-15), "USD",
		date(2024, time.April, 1), "Health", "")
	require.NoError(t, err)

	byCategory, err := svc.ByCategory(ctx, "Groceries")
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	assert.Equal(t, groceries.ID, byCategory[0].ID)

	between, err := svc.Between(ctx,
		date(2024, time.March, 15), date(2024, time.April, 15))
	require.NoError(t, err)
	require.Len(t, between, 1)
	assert.Equal(t, health.ID, between[0].ID)
}

func Test_OnDeleteMissingID_ShouldReturnNotFound(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, &stubRates{})

	var notFound *customerr.NotFoundError
	assert.ErrorAs(t, svc.Delete(ctx, uuid.New()), &notFound)
}

func Test_OnClearAll_BalanceShouldBeZero(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, &stubRates{})

	_, err := svc.Add(ctx, decimal.NewFromInt(100), "USD", date(2024, time.March, 1), "Health", "")
	require.NoError(t, err)
	_, err = svc.Add(ctx, decimal.NewFromInt(-40), "USD", date(2024, time.March, 2), "Groceries", "")
	require.NoError(t, err)

	require.NoError(t, svc.ClearAll(ctx))

	assert.Empty(t, svc.Transactions())
	assert.True(t, Balance(svc.Transactions()).IsZero())
}

func Test_OnConvertAllSameCurrency_ShouldBeNoOp(t *testing.T) {
	ctx := context.Background()
	rates := &stubRates{}
	svc := newTestService(t, rates)

	_, err := svc.Add(ctx, decimal.RequireFromString("-42.50"), "USD",
		date(2024, time.March, 1), "Groceries", "")
	require.NoError(t, err)
	before := svc.Transactions()

	report, err := svc.ConvertAll(ctx, "USD", "USD")

	require.NoError(t, err)
	assert.Zero(t, report.Converted)
	assert.Zero(t, rates.calls)
	assert.Equal(t, before, svc.Transactions())
}

func Test_OnConvertAllRoundTrip_ShouldRestoreAmounts(t *testing.T) {
	ctx := context.Background()
	rate := decimal.RequireFromString("0.92")
	rates := &stubRates{rates: map[string]map[string]decimal.Decimal{
		"USD": {"EUR": rate},
		"EUR": {"USD": decimal.NewFromInt(1).Div(rate)},
	}}
	svc := newTestService(t, rates)

	amounts := []string{"-42.50", "100.00", "-0.07"}
	for i, raw := range amounts {
		_, err := svc.Add(ctx, decimal.RequireFromString(raw), "USD",
			date(2024, time.March, i+1), "Groceries", "")
		require.NoError(t, err)
	}
	original := svc.Transactions()

	_, err := svc.ConvertAll(ctx, "USD", "EUR")
	require.NoError(t, err)
	_, err = svc.ConvertAll(ctx, "EUR", "USD")
	require.NoError(t, err)

	tolerance := decimal.New(1, -6)
	byID := make(map[uuid.UUID]transaction.Transaction)
	for _, tx := range svc.Transactions() {
		byID[tx.ID] = tx
	}
	for _, want := range original {
		got, ok := byID[want.ID]
		require.True(t, ok)
		assert.Equal(t, "USD", got.Currency)
		diff := got.Amount.Sub(want.Amount).Abs()
		assert.True(t, diff.LessThanOrEqual(tolerance),
			"amount drifted by %s", diff)
	}
}

func Test_OnConvertAllFetchFailure_ShouldConvertNothing(t *testing.T) {
	ctx := context.Background()
	rates := &stubRates{err: errors.New("api down")}
	svc := newTestService(t, rates)

	_, err := svc.Add(ctx, decimal.NewFromInt(-10), "USD", date(2024, time.March, 1), "Groceries", "")
	require.NoError(t, err)
	before := svc.Transactions()

	_, err = svc.ConvertAll(ctx, "USD", "EUR")

	assert.Error(t, err)
	assert.Equal(t, before, svc.Transactions())
}

func Test_OnConvertAllPartialFailure_ShouldReportFailedEntries(t *testing.T) {
	ctx := context.Background()
	rates := &stubRates{rates: map[string]map[string]decimal.Decimal{
		"USD": {"EUR": decimal.RequireFromString("0.9")},
	}}

	store := &flakyStorage{InMemStorage: storage.NewInMemStorage()}
	svc, err := NewService(store, rates)
	require.NoError(t, err)

	good, err := svc.Add(ctx, decimal.NewFromInt(-10), "USD", date(2024, time.March, 1), "Groceries", "")
	require.NoError(t, err)
	bad, err := svc.Add(ctx, decimal.NewFromInt(-20), "USD", date(2024, time.March, 2), "Health", "")
	require.NoError(t, err)
	store.failID = bad.ID

	report, err := svc.ConvertAll(ctx, "USD", "EUR")

	require.NoError(t, err)
	assert.Equal(t, 1, report.Converted)
	assert.Equal(t, 1, report.Failed)
	assert.Error(t, report.Err)

	byID := make(map[uuid.UUID]transaction.Transaction)
	for _, tx := range svc.Transactions() {
		byID[tx.ID] = tx
	}
	assert.Equal(t, "EUR", byID[good.ID].Currency)
	assert.True(t, byID[good.ID].Amount.Equal(decimal.NewFromInt(-9)))
	assert.Equal(t, "USD", byID[bad.ID].Currency)
	assert.True(t, byID[bad.ID].Amount.Equal(decimal.NewFromInt(-20)))
}

func Test_Transactions_ShouldReturnACopy(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, &stubRates{})

	_, err := svc.Add(ctx, decimal.NewFromInt(5), "USD", date(2024, time.March, 1), "Health", "")
	require.NoError(t, err)

	leaked := svc.Transactions()
	leaked[0].Amount = decimal.NewFromInt(999)

	assert.True(t, svc.Transactions()[0].Amount.Equal(decimal.NewFromInt(5)))
}
