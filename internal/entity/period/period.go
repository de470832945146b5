package period

import (
	"fmt"
	"strings"
)

// Period is a calendar-aligned bucket used to scope reports and budgets.
type Period string

const (
	Daily   Period = "daily"
	Weekly  Period = "weekly"
	Monthly Period = "monthly"
	Yearly  Period = "yearly"
)

var Periods = []Period{Daily, Weekly, Monthly, Yearly}

func Parse(s string) (Period, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "day", "daily":
		return Daily, nil
	case "week", "weekly":
		return Weekly, nil
	case "month", "monthly":
		return Monthly, nil
	case "year", "yearly":
		return Yearly, nil
	}
	return "", fmt.Errorf("unknown period %q", s)
}

func (p Period) String() string {
	return string(p)
}
