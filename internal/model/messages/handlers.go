package messages

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/laurenhquan/piggypal/internal/clients/exchange"
	"github.com/laurenhquan/piggypal/internal/entity/currency"
	"github.com/laurenhquan/piggypal/internal/entity/period"
	"github.com/laurenhquan/piggypal/internal/entity/transaction"
	"github.com/laurenhquan/piggypal/internal/model/ledger"
	"github.com/laurenhquan/piggypal/internal/model/reports"
)

const (
	dontUnderstandMessage = "I don't understand you :("
	helloMessage          = "Hello! I am PiggyPal 🐷\n" +
		"Feed me with /feed, check /balance, /log, /report, /convert or /budget."
	loveToTalkMessage     = "I would love to talk about it more!"
	okMessage             = "Gotcha!"
	noTransactionsMessage = "You have no transactions yet"

	incorrectUsageMessage  = "That is an incorrect command usage"
	incorrectAmountMessage = "That amount is incorrect"
	incorrectDateMessage   = "The date is incorrect. Should be dd.mm.yyyy"
	incorrectIDMessage     = "That transaction id is incorrect"
	unknownCategoryMessage = "I don't know that category. Try: " + categoryAliasList
	unknownPeriodMessage   = "I don't know that period. Try daily, weekly, monthly or yearly"

	cannotSaveMessage    = "Can't save your transaction atm. Try later"
	cannotLoadMessage    = "Can't get your transactions atm. Try later"
	cannotConvertMessage = "Can't convert that atm. Try later"
)

const (
	startCommand        = "/start"
	feedCommand         = "/feed"
	editCommand         = "/edit"
	deleteCommand       = "/delete"
	clearCommand        = "/clear"
	logCommand          = "/log"
	balanceCommand      = "/balance"
	reportCommand       = "/report"
	convertCommand      = "/convert"
	redenominateCommand = "/redenominate"
	currencyCommand     = "/currency"
	budgetCommand       = "/budget"
)

const categoryAliasList = "home, transport, groceries, health, dining, shopping"

// The settings picker offers a fixed category set; short aliases keep
// the commands typeable.
var categoryAliases = map[string]string{
	"home":      "Home & Utilities",
	"transport": "Transportation",
	"groceries": "Groceries",
	"health":    "Health",
	"dining":    "Restaurant & Dining",
	"shopping":  "Shopping & Entertainment",
}

type ledgerService interface {
	Transactions() []transaction.Transaction
	Add(ctx context.Context, amount decimal.Decimal, curr string, date time.Time, category, description string) (transaction.Transaction, error)
	Edit(ctx context.Context, id uuid.UUID, amount decimal.Decimal, curr string, date time.Time, category, description string) error
	Delete(ctx context.Context, id uuid.UUID) error
	ClearAll(ctx context.Context) error
	ConvertAll(ctx context.Context, from, to string) (ledger.ConvertReport, error)
}

type prefsService interface {
	DefaultCurrency(ctx context.Context) (string, error)
	SetDefaultCurrency(ctx context.Context, code string) error
	BudgetLimit(ctx context.Context) (decimal.Decimal, error)
	BudgetPeriod(ctx context.Context) (period.Period, error)
	SetBudget(ctx context.Context, limit decimal.Decimal, p period.Period) error
}

type converter interface {
	ConvertOne(ctx context.Context, amount decimal.Decimal, from, to string) (exchange.Conversion, error)
}

type handler func(ctx context.Context, arg string) (string, error)

type handlerMap map[string]handler

type HandlerService struct {
	handlersMap handlerMap
	ledger      ledgerService
	prefs       prefsService
	converter   converter
}

func newHandler(ledger ledgerService, prefs prefsService, converter converter) *HandlerService {
	res := &HandlerService{
		handlersMap: nil,
		ledger:      ledger,
		prefs:       prefs,
		converter:   converter,
	}
	res.handlersMap = newMap(res)
	return res
}

func (s *HandlerService) HandleCommand(ctx context.Context, text string) (string, error) {
	cmd, arg := parseCommand(text)

	handler, ok := s.handlersMap[cmd]
	if ok {
		return handler(ctx, arg)
	}
	return dontUnderstandMessage, nil
}

func newMap(s *HandlerService) handlerMap {
	m := make(handlerMap)
	m[startCommand] = s.handleStart
	m[feedCommand] = s.handleFeed
	m[editCommand] = s.handleEdit
	m[deleteCommand] = s.handleDelete
	m[clearCommand] = s.handleClear
	m[logCommand] = s.handleLog
	m[balanceCommand] = s.handleBalance
	m[reportCommand] = s.handleReport
	m[convertCommand] = s.handleConvert
	m[redenominateCommand] = s.handleRedenominate
	m[currencyCommand] = s.handleCurrency
	m[budgetCommand] = s.handleBudget

	m[""] = s.handleNoCommand

	return m
}

func (s *HandlerService) handleStart(_ context.Context, _ string) (string, error) {
	return helloMessage, nil
}

func (s *HandlerService) handleNoCommand(_ context.Context, _ string) (string, error) {
	return loveToTalkMessage, nil
}

// handleFeed records a new entry:
// /feed <amount> <currency> <category> [dd.mm.yyyy] [description...]
// Negative amounts are withdrawals, positive are deposits.
func (s *HandlerService) handleFeed(ctx context.Context, arg string) (string, error) {
	entry, errMsg, err := parseEntryArgs(strings.Fields(arg))
	if errMsg != "" {
		return errMsg, err
	}

	t, err := s.ledger.Add(ctx, entry.amount, entry.currency, entry.date, entry.category, entry.description)
	if err != nil {
		return cannotSaveMessage, errors.Wrap(err, "handle feed")
	}
	return fmt.Sprintf("%s\nRecorded %s as %s", okMessage,
		formatMoney(t.Amount, t.Currency), t.ID), nil
}

// handleEdit overwrites all fields of one entry:
// /edit <id> <amount> <currency> <category> [dd.mm.yyyy] [description...]
func (s *HandlerService) handleEdit(ctx context.Context, arg string) (string, error) {
	args := strings.Fields(arg)
	if len(args) < 1 {
		return incorrectUsageMessage, nil
	}
	id, err := uuid.Parse(args[0])
	if err != nil {
		return incorrectIDMessage, errors.Wrap(err, "handle edit")
	}

	entry, errMsg, err := parseEntryArgs(args[1:])
	if errMsg != "" {
		return errMsg, err
	}

	err = s.ledger.Edit(ctx, id, entry.amount, entry.currency, entry.date, entry.category, entry.description)
	if err != nil {
		return cannotSaveMessage, errors.Wrap(err, "handle edit")
	}
	return okMessage, nil
}

func (s *HandlerService) handleDelete(ctx context.Context, arg string) (string, error) {
	id, err := uuid.Parse(strings.TrimSpace(arg))
	if err != nil {
		return incorrectIDMessage, errors.Wrap(err, "handle delete")
	}
	if err = s.ledger.Delete(ctx, id); err != nil {
		return cannotSaveMessage, errors.Wrap(err, "handle delete")
	}
	return okMessage, nil
}

func (s *HandlerService) handleClear(ctx context.Context, _ string) (string, error) {
	if err := s.ledger.ClearAll(ctx); err != nil {
		return cannotSaveMessage, errors.Wrap(err, "handle clear")
	}
	return "All transactions gone. Fresh start!", nil
}

func (s *HandlerService) handleLog(_ context.Context, _ string) (string, error) {
	txs := s.ledger.Transactions()
	if len(txs) == 0 {
		return noTransactionsMessage, nil
	}

	lines := make([]string, 0, len(txs))
	for _, t := range txs {
		desc := t.Description
		if desc == "" {
			desc = "-"
		}
		lines = append(lines, fmt.Sprintf("%s | %s | %s | %s | %s",
			t.Date.Format(dateLayout), t.Category, desc,
			formatMoney(t.Amount, t.Currency), t.ID))
	}
	return strings.Join(lines, "\n"), nil
}

func (s *HandlerService) handleBalance(ctx context.Context, _ string) (string, error) {
	txs := s.ledger.Transactions()
	curr, err := s.prefs.DefaultCurrency(ctx)
	if err != nil {
		return cannotLoadMessage, errors.Wrap(err, "handle balance")
	}

	res := fmt.Sprintf("Balance: %s", formatMoney(ledger.Balance(txs), curr))
	warning, err := s.budgetWarning(ctx, txs)
	if err != nil {
		return cannotLoadMessage, errors.Wrap(err, "handle balance")
	}
	if warning != "" {
		res += "\n" + warning
	}
	return res, nil
}

// handleReport renders the spending analysis for one period bucket:
// per-category breakdown, earned and spent totals, budget state.
func (s *HandlerService) handleReport(ctx context.Context, arg string) (string, error) {
	p, err := s.reportPeriod(ctx, arg)
	if err != nil {
		return unknownPeriodMessage, errors.Wrap(err, "handle report")
	}

	txs := s.ledger.Transactions()
	now := time.Now()
	if len(reports.InPeriod(txs, p, now)) == 0 {
		return noTransactionsMessage, nil
	}

	curr, err := s.prefs.DefaultCurrency(ctx)
	if err != nil {
		return cannotLoadMessage, errors.Wrap(err, "handle report")
	}

	res := formatByCategory(reports.ByCategory(txs, p, now), curr)
	res = append(res, "",
		fmt.Sprintf("Earned: %s", formatMoney(reports.TotalEarned(txs, p, now), curr)),
		fmt.Sprintf("Spent: %s", formatMoney(reports.TotalSpent(txs, p, now), curr)),
		fmt.Sprintf("Total: %s", formatMoney(reports.CurrentBalance(txs, p, now), curr)),
	)

	warning, err := s.budgetWarning(ctx, txs)
	if err != nil {
		return cannotLoadMessage, errors.Wrap(err, "handle report")
	}
	if warning != "" {
		res = append(res, warning)
	}
	return strings.Join(res, "\n"), nil
}

// handleConvert converts a one-off amount: /convert <amount> <from> <to>
func (s *HandlerService) handleConvert(ctx context.Context, arg string) (string, error) {
	args := strings.Fields(arg)
	if len(args) != 3 {
		return incorrectUsageMessage, nil
	}
	amount, err := decimal.NewFromString(args[0])
	if err != nil {
		return incorrectAmountMessage, errors.Wrap(err, "handle convert")
	}
	from, to := strings.ToUpper(args[1]), strings.ToUpper(args[2])

	conv, err := s.converter.ConvertOne(ctx, amount, from, to)
	if err != nil {
		return cannotConvertMessage, errors.Wrap(err, "handle convert")
	}
	return fmt.Sprintf("%s = %s (rate %s)",
		formatMoney(amount, from), formatMoney(conv.Result, to), conv.Rate.StringFixed(4)), nil
}

// handleRedenominate rewrites every entry in one currency:
// /redenominate <from> <to>
func (s *HandlerService) handleRedenominate(ctx context.Context, arg string) (string, error) {
	args := strings.Fields(arg)
	if len(args) != 2 {
		return incorrectUsageMessage, nil
	}
	from, to := strings.ToUpper(args[0]), strings.ToUpper(args[1])

	report, err := s.ledger.ConvertAll(ctx, from, to)
	if err != nil {
		return cannotConvertMessage, errors.Wrap(err, "handle redenominate")
	}
	if from == to {
		return "Nothing to do, same currency", nil
	}

	res := fmt.Sprintf("Converted %d entries from %s to %s (rate %s)",
		report.Converted, from, to, report.Rate.StringFixed(4))
	if report.Failed > 0 {
		res += fmt.Sprintf("\n%d entries could not be converted and kept their old currency", report.Failed)
	}
	return res, nil
}

// handleCurrency sets the default display currency; without an
// argument it shows the current one.
func (s *HandlerService) handleCurrency(ctx context.Context, arg string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(arg))
	if code == "" {
		curr, err := s.prefs.DefaultCurrency(ctx)
		if err != nil {
			return cannotLoadMessage, errors.Wrap(err, "handle currency")
		}
		return fmt.Sprintf("Default currency is %s. Popular codes: %s",
			curr, strings.Join(currency.Currencies, ", ")), nil
	}
	if err := s.prefs.SetDefaultCurrency(ctx, code); err != nil {
		return incorrectUsageMessage, errors.Wrap(err, "handle currency")
	}
	return okMessage, nil
}

// handleBudget sets the spending budget: /budget <limit> [period]
func (s *HandlerService) handleBudget(ctx context.Context, arg string) (string, error) {
	args := strings.Fields(arg)
	if len(args) < 1 {
		return incorrectUsageMessage, nil
	}
	limit, err := decimal.NewFromString(args[0])
	if err != nil || limit.IsNegative() {
		return incorrectAmountMessage, errors.Wrap(err, "handle budget")
	}

	p, err := s.prefs.BudgetPeriod(ctx)
	if err != nil {
		return cannotLoadMessage, errors.Wrap(err, "handle budget")
	}
	if len(args) > 1 {
		p, err = period.Parse(args[1])
		if err != nil {
			return unknownPeriodMessage, errors.Wrap(err, "handle budget")
		}
	}

	if err = s.prefs.SetBudget(ctx, limit, p); err != nil {
		return cannotSaveMessage, errors.Wrap(err, "handle budget")
	}
	if limit.IsZero() {
		return "Budget cleared", nil
	}
	return fmt.Sprintf("Budget set to %s per %s", limit.StringFixed(2), p), nil
}

func (s *HandlerService) reportPeriod(ctx context.Context, arg string) (period.Period, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return s.prefs.BudgetPeriod(ctx)
	}
	return period.Parse(arg)
}

func (s *HandlerService) budgetWarning(ctx context.Context, txs []transaction.Transaction) (string, error) {
	limit, err := s.prefs.BudgetLimit(ctx)
	if err != nil {
		return "", err
	}
	p, err := s.prefs.BudgetPeriod(ctx)
	if err != nil {
		return "", err
	}

	over, exceeded := reports.OverBudget(txs, p, time.Now(), limit)
	if !exceeded {
		return "", nil
	}
	return fmt.Sprintf("Warning: you're over your %s budget by %s!", p, over.StringFixed(2)), nil
}

func formatByCategory(byCategory map[string]decimal.Decimal, curr string) []string {
	records := make([]struct {
		category string
		amount   decimal.Decimal
	}, 0, len(byCategory))
	for category, amount := range byCategory {
		records = append(records, struct {
			category string
			amount   decimal.Decimal
		}{category, amount})
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].amount.GreaterThan(records[j].amount)
	})

	res := make([]string, 0, len(records))
	for _, rec := range records {
		res = append(res, fmt.Sprintf("%s: %s", rec.category, formatMoney(rec.amount, curr)))
	}
	return res
}
