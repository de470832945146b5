package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/laurenhquan/piggypal/internal/config"
	"github.com/laurenhquan/piggypal/internal/entity/transaction"
	"github.com/laurenhquan/piggypal/internal/model/customerr"
)

func newTestStorage(t *testing.T) *SqliteStorage {
	t.Helper()
	s, err := NewSqliteStorage(&appconfig.SqliteConfig{
		DbPath: filepath.Join(t.TempDir(), "piggypal.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testTx(amount, category string, date time.Time) transaction.Transaction {
	return transaction.New(decimal.RequireFromString(amount), "USD", date, category, "note")
}

func Test_OnInsert_GetAllShouldReturnEntry(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	want := testTx("-42.50", "Groceries", time.Date(2024, time.March, 1, 9, 30, 0, 0, time.UTC))
	require.NoError(t, s.Insert(ctx, want))

	got, err := s.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, want.ID, got[0].ID)
	assert.True(t, got[0].Amount.Equal(want.Amount))
	assert.Equal(t, want.Currency, got[0].Currency)
	assert.Equal(t, want.Category, got[0].Category)
	assert.Equal(t, want.Description, got[0].Description)
	assert.True(t, got[0].Date.Equal(want.Date))
}

func Test_OnGetMissingID_ShouldReturnNotFound(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	_, err := s.GetByID(ctx, uuid.New())

	var notFound *customerr.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func Test_OnUpdate_ShouldOverwriteAllFields(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	tx := testTx("-20.00", "Groceries", time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, s.Insert(ctx, tx))

	tx.Amount = decimal.RequireFromString("-25.00")
	tx.Currency = "EUR"
	tx.Category = "Health"
	tx.Description = "changed"
	require.NoError(t, s.Update(ctx, tx))

	got, err := s.GetByID(ctx, tx.ID)
	require.NoError(t, err)
	assert.True(t, got.Amount.Equal(tx.Amount))
	assert.Equal(t, "EUR", got.Currency)
	assert.Equal(t, "Health", got.Category)
	assert.Equal(t, "changed", got.Description)
}

func Test_OnUpdateMissingID_ShouldReturnNotFound(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	err := s.Update(ctx, testTx("-1.00", "Health", time.Now()))

	var notFound *customerr.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func Test_OnDelete_ShouldRemoveOnlyThatEntry(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	doomed := testTx("-1.00", "Health", time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC))
	kept := testTx("-2.00", "Groceries", time.Date(2024, time.March, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, s.Insert(ctx, doomed))
	require.NoError(t, s.Insert(ctx, kept))

	require.NoError(t, s.Delete(ctx, doomed.ID))

	got, err := s.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, kept.ID, got[0].ID)

	var notFound *customerr.NotFoundError
	assert.ErrorAs(t, s.Delete(ctx, doomed.ID), &notFound)
}

func Test_OnDeleteAll_ShouldLeaveNothing(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	require.NoError(t, s.Insert(ctx, testTx("-1.00", "Health", time.Now())))
	require.NoError(t, s.Insert(ctx, testTx("2.00", "Groceries", time.Now())))

	require.NoError(t, s.DeleteAll(ctx))

	got, err := s.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func Test_OnListFilters_ShouldQueryByCategoryCurrencyAndRange(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	march := testTx("-42.50", "Groceries", time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC))
	april := testTx("-10.00", "Health", time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, s.Insert(ctx, march))
	require.NoError(t, s.Insert(ctx, april))

	byCategory, err := s.ListByCategory(ctx, "Groceries")
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	assert.Equal(t, march.ID, byCategory[0].ID)

	byCurrency, err := s.ListByCurrency(ctx, "USD")
	require.NoError(t, err)
	assert.Len(t, byCurrency, 2)

	between, err := s.ListBetween(ctx,
		time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.March, 31, 23, 59, 59, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, between, 1)
	assert.Equal(t, march.ID, between[0].ID)
}

func Test_OnGetAll_ShouldOrderNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	older := testTx("-1.00", "Health", time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC))
	newer := testTx("-2.00", "Health", time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, s.Insert(ctx, older))
	require.NoError(t, s.Insert(ctx, newer))

	got, err := s.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, newer.ID, got[0].ID)
	assert.Equal(t, older.ID, got[1].ID)
}

func Test_OnPreferences_ShouldUpsertAndSurvive(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	unset, err := s.GetPreference(ctx, "default_currency")
	require.NoError(t, err)
	assert.Empty(t, unset)

	require.NoError(t, s.SetPreference(ctx, "default_currency", "USD"))
	require.NoError(t, s.SetPreference(ctx, "default_currency", "EUR"))

	got, err := s.GetPreference(ctx, "default_currency")
	require.NoError(t, err)
	assert.Equal(t, "EUR", got)
}
