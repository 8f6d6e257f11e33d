package utils

import (
	"fmt"
	"strings"
	"time"
)

const ShortDashDateLayout = "2006-01-02"

// Layouts accepted for broker statement dates, tried in order.
var statementDateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"01-02-2006",
	"2006/01/02",
}

// ParseStatementDate parses dates found in broker CSV exports. Schwab
// sometimes reports "06/13/2024 as of 06/10/2024"; the "as of" date is
// the effective trade date and wins.
func ParseStatementDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if idx := strings.Index(value, " as of "); idx >= 0 {
		value = strings.TrimSpace(value[idx+len(" as of "):])
	}
	for _, layout := range statementDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", value)
}

// DaysHeld returns the whole days elapsed since purchase, never negative.
func DaysHeld(purchase, now time.Time) int {
	days := int(now.Sub(purchase).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}
