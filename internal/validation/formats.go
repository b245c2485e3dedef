package validation

import (
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/xeipuuv/gojsonschema"
)

// Custom schema formats. Both accept the empty string so optional fields may
// be submitted blank; requiredness is expressed with minLength.
const (
	FormatCalendarDate   = "calendar-date"
	FormatStrongPassword = "strong-password"
)

const (
	DateLayout        = "02-01-2006"
	PasswordMinLength = 8
	PasswordMaxLength = 30
	PasswordSymbols   = "@$!%*?&"
)

var (
	datePattern  = regexp.MustCompile(`^\d{2}-\d{2}-\d{4}$`)
	registerOnce sync.Once
)

// registerFormats installs the custom checkers in the global gojsonschema
// chain. Rule sets are package variables, so this runs from NewRuleSet rather
// than init.
func registerFormats() {
	registerOnce.Do(func() {
		gojsonschema.FormatCheckers.Add(FormatCalendarDate, calendarDateChecker{})
		gojsonschema.FormatCheckers.Add(FormatStrongPassword, strongPasswordChecker{})
	})
}

type calendarDateChecker struct{}

// IsFormat only judges values already shaped DD-MM-YYYY; the shape itself is
// a pattern rule.
func (calendarDateChecker) IsFormat(input interface{}) bool {
	s, ok := input.(string)
	if !ok || s == "" || !datePattern.MatchString(s) {
		return true
	}
	return IsCalendarDate(s)
}

type strongPasswordChecker struct{}

func (strongPasswordChecker) IsFormat(input interface{}) bool {
	s, ok := input.(string)
	if !ok || s == "" {
		return true
	}
	return IsStrongPassword(s)
}

// IsCalendarDate reports whether s is a DD-MM-YYYY date that exists on the
// calendar, so 29-02-2024 passes and 31-02-2024 does not.
func IsCalendarDate(s string) bool {
	_, err := ParseDate(s)
	return err == nil
}

// ParseDate parses a DD-MM-YYYY date at midnight UTC.
func ParseDate(s string) (time.Time, error) {
	if !datePattern.MatchString(s) {
		return time.Time{}, &time.ParseError{Layout: DateLayout, Value: s, Message: ": date should be in the format DD-MM-YYYY"}
	}
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// IsStrongPassword applies the composite password rule: 8 to 30 characters
// drawn from letters, digits and PasswordSymbols, with at least one of each
// of uppercase, lowercase, digit and symbol.
func IsStrongPassword(s string) bool {
	if len(s) < PasswordMinLength || len(s) > PasswordMaxLength {
		return false
	}
	var upper, lower, digit, symbol bool
	for _, r := range s {
		switch {
		case r > unicode.MaxASCII:
			return false
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(PasswordSymbols, r):
			symbol = true
		default:
			return false
		}
	}
	return upper && lower && digit && symbol
}
