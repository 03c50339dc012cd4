package bankfeed

import (
	"regexp"
	"strings"
	"time"
)

// zoneSuffix matches a trailing UTC designator or a numeric offset (+07, +0700
// or +07:00) after the time part.
var zoneSuffix = regexp.MustCompile(`(Z|[+-]\d{2}(:?\d{2})?)$`)

var transactionDateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
}

// NormalizeDate returns the calendar date of a provider timestamp. Zone
// information is dropped rather than converted, so the bank's wall-clock date
// is kept. Empty or unparseable input falls back to the date of now.
func NormalizeDate(raw string, now time.Time) time.Time {
	if d, ok := ParseTransactionDate(raw); ok {
		return d
	}
	return DateOf(now)
}

// ParseTransactionDate parses the accepted timestamp formats and reports
// whether parsing succeeded.
func ParseTransactionDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	s = strings.Replace(s, "T", " ", 1)
	// Only strip a zone when a time part is present, a bare date has '-' separators
	if strings.Contains(s, " ") {
		s = zoneSuffix.ReplaceAllString(s, "")
		s = strings.TrimSpace(s)
	}
	for _, layout := range transactionDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), true
		}
	}
	return time.Time{}, false
}

// DateOf truncates t to its calendar date, expressed at midnight UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
