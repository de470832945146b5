package transaction

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/laurenhquan/piggypal/internal/entity/currency"
	"github.com/laurenhquan/piggypal/internal/utils"
)

// Transaction is one posted ledger entry. The ID never changes after
// creation; every other field is mutable through the ledger's edit
// operation. Negative amounts are withdrawals, positive are deposits.
type Transaction struct {
	ID          uuid.UUID
	Amount      decimal.Decimal
	Currency    string
	Date        time.Time
	Category    string
	Description string
}

// Categories is the closed set a transaction may be classified under.
var Categories = []string{
	"Home & Utilities",
	"Transportation",
	"Groceries",
	"Health",
	"Restaurant & Dining",
	"Shopping & Entertainment",
}

// New builds an unsaved entry with a fresh id. A zero date is
// attributed to now.
func New(amount decimal.Decimal, curr string, date time.Time, category, description string) Transaction {
	if date.IsZero() {
		date = time.Now()
	}
	return Transaction{
		ID:          uuid.New(),
		Amount:      amount,
		Currency:    curr,
		Date:        date,
		Category:    category,
		Description: description,
	}
}

func (t Transaction) Validate() error {
	if !currency.IsValid(t.Currency) {
		return fmt.Errorf("invalid currency code %q", t.Currency)
	}
	if !utils.Contains(Categories, t.Category) {
		return fmt.Errorf("unknown category %q", t.Category)
	}
	return nil
}
