package storage

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	// sqlite driver
	_ "modernc.org/sqlite"

	"github.com/laurenhquan/piggypal/internal/entity/transaction"
	"github.com/laurenhquan/piggypal/internal/model/customerr"
)

const schema = `
CREATE TABLE IF NOT EXISTS transactions (
	id          TEXT PRIMARY KEY,
	amount      TEXT NOT NULL,
	currency    TEXT NOT NULL,
	made_at     TEXT NOT NULL,
	category    TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_transactions_category ON transactions(category);
CREATE INDEX IF NOT EXISTS idx_transactions_made_at ON transactions(made_at);

CREATE TABLE IF NOT EXISTS preferences (
	name       TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
`

// made_at is stored as RFC 3339 UTC text so that lexicographic range
// scans line up with chronological order.
const timeLayout = time.RFC3339Nano

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Question)

type config interface {
	Path() string
}

type SqliteStorage struct {
	db *sql.DB
}

func NewSqliteStorage(config config) (*SqliteStorage, error) {
	path := config.Path()
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "create db directory")
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "cannot open database")
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "cannot open database")
	}
	if _, err = db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "init schema")
	}
	return &SqliteStorage{db}, nil
}

func (s *SqliteStorage) Close() error {
	return s.db.Close()
}

func (s *SqliteStorage) GetAll(ctx context.Context) ([]transaction.Transaction, error) {
	return s.list(ctx, nil)
}

func (s *SqliteStorage) ListByCategory(ctx context.Context, category string) ([]transaction.Transaction, error) {
	return s.list(ctx, sq.Eq{"category": category})
}

func (s *SqliteStorage) ListByCurrency(ctx context.Context, code string) ([]transaction.Transaction, error) {
	return s.list(ctx, sq.Eq{"currency": code})
}

func (s *SqliteStorage) ListBetween(ctx context.Context, from, to time.Time) ([]transaction.Transaction, error) {
	return s.list(ctx, sq.And{
		sq.GtOrEq{"made_at": from.UTC().Format(timeLayout)},
		sq.LtOrEq{"made_at": to.UTC().Format(timeLayout)},
	})
}

func (s *SqliteStorage) list(ctx context.Context, where interface{}) ([]transaction.Transaction, error) {
	query := qb.Select("id", "amount", "currency", "made_at", "category", "description").
		From("transactions").
		OrderBy("made_at DESC")
	if where != nil {
		query = query.Where(where)
	}

	rows, err := query.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list transactions")
	}
	defer rows.Close()

	txs := make([]transaction.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, errors.Wrap(err, "list transactions")
		}
		txs = append(txs, t)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "list transactions")
	}
	return txs, nil
}

func (s *SqliteStorage) GetByID(ctx context.Context, id uuid.UUID) (transaction.Transaction, error) {
	query := qb.Select("id", "amount", "currency", "made_at", "category", "description").
		From("transactions").
		Where(sq.Eq{"id": id.String()})

	row := query.RunWith(s.db).QueryRowContext(ctx)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return transaction.Transaction{}, &customerr.NotFoundError{ID: id.String()}
	}
	if err != nil {
		return transaction.Transaction{}, errors.Wrap(err, "get transaction")
	}
	return t, nil
}

func (s *SqliteStorage) Insert(ctx context.Context, t transaction.Transaction) error {
	query := qb.Insert("transactions").
		Columns("id", "amount", "currency", "made_at", "category", "description").
		Values(t.ID.String(), t.Amount.String(), t.Currency,
			t.Date.UTC().Format(timeLayout), t.Category, t.Description)

	_, err := query.RunWith(s.db).ExecContext(ctx)
	return errors.Wrap(err, "insert transaction")
}

func (s *SqliteStorage) Update(ctx context.Context, t transaction.Transaction) error {
	query := qb.Update("transactions").
		Set("amount", t.Amount.String()).
		Set("currency", t.Currency).
		Set("made_at", t.Date.UTC().Format(timeLayout)).
		Set("category", t.Category).
		Set("description", t.Description).
		Where(sq.Eq{"id": t.ID.String()})

	res, err := query.RunWith(s.db).ExecContext(ctx)
	if err != nil {
		return errors.Wrap(err, "update transaction")
	}
	return noneUpdatedAsNotFound(res, t.ID)
}

func (s *SqliteStorage) Delete(ctx context.Context, id uuid.UUID) error {
	query := qb.Delete("transactions").Where(sq.Eq{"id": id.String()})

	res, err := query.RunWith(s.db).ExecContext(ctx)
	if err != nil {
		return errors.Wrap(err, "delete transaction")
	}
	return noneUpdatedAsNotFound(res, id)
}

// DeleteAll removes every transaction in one statement, so the set is
// cleared entirely or not at all.
func (s *SqliteStorage) DeleteAll(ctx context.Context) error {
	_, err := qb.Delete("transactions").RunWith(s.db).ExecContext(ctx)
	return errors.Wrap(err, "delete all transactions")
}

func (s *SqliteStorage) GetPreference(ctx context.Context, name string) (string, error) {
	query := qb.Select("value").From("preferences").Where(sq.Eq{"name": name})

	var value string
	err := query.RunWith(s.db).QueryRowContext(ctx).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrap(err, "get preference")
	}
	return value, nil
}

func (s *SqliteStorage) SetPreference(ctx context.Context, name, value string) error {
	now := time.Now().UTC().Format(timeLayout)
	query := qb.Insert("preferences").
		Columns("name", "value", "updated_at").
		Values(name, value, now).
		Suffix("ON CONFLICT(name) DO UPDATE SET value = ?, updated_at = ?", value, now)

	_, err := query.RunWith(s.db).ExecContext(ctx)
	return errors.Wrap(err, "set preference")
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(row rowScanner) (transaction.Transaction, error) {
	var t transaction.Transaction
	var id, amount, madeAt string
	if err := row.Scan(&id, &amount, &t.Currency, &madeAt, &t.Category, &t.Description); err != nil {
		return transaction.Transaction{}, err
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return transaction.Transaction{}, errors.Wrap(err, "parse id")
	}
	t.ID = parsed

	t.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return transaction.Transaction{}, errors.Wrap(err, "parse amount")
	}

	t.Date, err = time.Parse(timeLayout, madeAt)
	if err != nil {
		return transaction.Transaction{}, errors.Wrap(err, "parse date")
	}
	return t, nil
}

func noneUpdatedAsNotFound(res sql.Result, id uuid.UUID) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if affected == 0 {
		return &customerr.NotFoundError{ID: id.String()}
	}
	return nil
}
