// Package normalize cleans up the locale-ambiguous values found in Turkish
// marketplace exports: currency amounts, day-first dates and free-text fields.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)

	// exact grouped formats: 1.234,56 and 1,234.56
	groupDotDecimalComma = regexp.MustCompile(`^[+-]?\d{1,3}(\.\d{3})+,\d{2}$`)
	groupCommaDecimalDot = regexp.MustCompile(`^[+-]?\d{1,3}(,\d{3})+\.\d{2}$`)

	// single-separator decimal forms: 12,5 / 12.50
	commaDecimal = regexp.MustCompile(`^[+-]?\d+,\d{1,2}$`)
	dotDecimal   = regexp.MustCompile(`^[+-]?\d+\.\d{1,2}$`)

	currencyWord = regexp.MustCompile(`(?i)\b(TL|TRY)\b`)

	turkishTitle = cases.Title(language.Turkish)
	turkishLower = cases.Lower(language.Turkish)
)

// Text collapses internal whitespace runs to single spaces and trims the ends.
func Text(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// TitleCase normalizes whitespace and title-cases with Turkish casing rules,
// so dotted/dotless i is handled the way buyer names need it.
func TitleCase(s string) string {
	return turkishTitle.String(turkishLower.String(Text(s)))
}

// LocaleNumber parses a currency/number string of uncertain locale.
// It strips the lira symbol and currency code, then decides which separator is
// the decimal one. The result is nil for anything unparseable; this function
// never panics.
func LocaleNumber(s string) *float64 {
	s = strings.ReplaceAll(s, "₺", "")
	s = currencyWord.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, " ", " ")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.TrimSpace(s)
	if s == "" || !strings.ContainsAny(s, "0123456789") {
		return nil
	}

	hasComma := strings.Contains(s, ",")
	hasDot := strings.Contains(s, ".")

	switch {
	case hasComma && hasDot:
		switch {
		case groupDotDecimalComma.MatchString(s):
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		case groupCommaDecimalDot.MatchString(s):
			s = strings.ReplaceAll(s, ",", "")
		default:
			// neither exact pattern: the separator appearing last wins
			if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
				s = strings.ReplaceAll(s, ".", "")
				s = strings.Replace(s, ",", ".", 1)
			} else {
				s = strings.ReplaceAll(s, ",", "")
			}
		}
	case hasComma:
		if commaDecimal.MatchString(s) {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case hasDot:
		if !dotDecimal.MatchString(s) {
			s = strings.ReplaceAll(s, ".", "")
		}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// Quantity coerces a cell to a non-negative integer count, defaulting to 0 on
// any parse failure.
func Quantity(s string) int {
	v := LocaleNumber(s)
	if v == nil || *v < 0 {
		return 0
	}
	return int(*v)
}

// serialEpoch is the spreadsheet day-serial base date.
var serialEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// DayFirstDate parses a date cell with day-first semantics, dropping any
// time-of-day part. A bare number is read as a spreadsheet date serial.
func DayFirstDate(s string) (time.Time, bool) {
	s = Text(s)
	if s == "" {
		return time.Time{}, false
	}

	// exports sometimes carry "02.01.2024 14:33"; the date is the first token
	if idx := strings.IndexByte(s, ' '); idx > 0 {
		s = s[:idx]
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		if serial < 1 || serial > 300000 {
			return time.Time{}, false
		}
		return serialEpoch.AddDate(0, 0, int(serial)), true
	}

	norm := strings.NewReplacer(".", "/", "-", "/").Replace(s)
	parts := strings.Split(norm, "/")
	if len(parts) != 3 {
		return time.Time{}, false
	}

	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return time.Time{}, false
		}
		nums[i] = n
	}

	var day, month, year int
	if len(parts[0]) == 4 {
		// ISO order: 2024-03-05
		year, month, day = nums[0], nums[1], nums[2]
	} else {
		day, month, year = nums[0], nums[1], nums[2]
		if year < 100 {
			year += 2000
		}
	}

	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// reject overflow like 31/02
	if t.Day() != day || t.Month() != time.Month(month) {
		return time.Time{}, false
	}
	return t, true
}

// IsDateColumn reports whether a header names a date field.
func IsDateColumn(name string) bool {
	lower := turkishLower.String(name)
	return strings.Contains(lower, "tarih") || strings.Contains(lower, "date")
}
