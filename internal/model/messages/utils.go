package messages

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const dateLayout = "02.01.2006"

const commandParts = 2

func parseCommand(text string) (cmd, arg string) {
	text = strings.TrimSpace(text)
	split := strings.SplitN(text, " ", commandParts)

	if len(split) == commandParts {
		return split[0], split[1]
	}
	if strings.HasPrefix(text, "/") {
		return text, ""
	}
	return "", text
}

type entryArgs struct {
	amount      decimal.Decimal
	currency    string
	category    string
	date        time.Time
	description string
}

// parseEntryArgs reads <amount> <currency> <category> [dd.mm.yyyy]
// [description...]. The returned message is non-empty when the input
// should be answered with a usage hint instead of being processed.
func parseEntryArgs(args []string) (entry entryArgs, msg string, err error) {
	if len(args) < 3 {
		return entry, incorrectUsageMessage, nil
	}

	entry.amount, err = decimal.NewFromString(args[0])
	if err != nil {
		return entry, incorrectAmountMessage, errors.Wrap(err, "parse entry")
	}
	entry.currency = strings.ToUpper(args[1])

	category, ok := categoryAliases[strings.ToLower(args[2])]
	if !ok {
		return entry, unknownCategoryMessage, nil
	}
	entry.category = category

	rest := args[3:]
	entry.date = time.Now()
	if len(rest) > 0 {
		date, dateErr := time.ParseInLocation(dateLayout, rest[0], time.Local)
		switch {
		case dateErr == nil:
			entry.date = date
			rest = rest[1:]
		case looksLikeDate(rest[0]):
			return entry, incorrectDateMessage, errors.Wrap(dateErr, "parse entry")
		}
	}
	entry.description = strings.Join(rest, " ")
	return entry, "", nil
}

// looksLikeDate guards against silently treating a mistyped date as
// the start of the description.
func looksLikeDate(s string) bool {
	return strings.Count(s, ".") == 2
}

func formatMoney(amount decimal.Decimal, code string) string {
	return amount.StringFixed(2) + " " + code
}
