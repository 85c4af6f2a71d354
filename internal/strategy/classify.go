package strategy

import (
	"regexp"
	"time"
	"unicode"
	"unicode/utf8"
)

// emailPattern is the form's documented acceptance pattern.
var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9_\-.]+@[a-zA-Z0-9_\-.]+\.[a-zA-Z]{2,5}$`)

// maxTextRunes is the free-text length boundary: valid strings stay
// strictly below it, invalid ones probe it from the other side.
const maxTextRunes = 300

// yearDays approximates leap years when converting ages to spans.
const yearDays = 365.25

const (
	minStudentAgeYears = 16
	maxStudentAgeYears = 60
)

// AcceptableText reports whether s is a valid free-text value: 1 to
// 299 runes with at least one alphabetic character.
func AcceptableText(s string) bool {
	n := utf8.RuneCountInString(s)
	if n < 1 || n >= maxTextRunes {
		return false
	}
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// AcceptableEmail reports whether s matches the acceptance pattern.
func AcceptableEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// AcceptableMobile reports whether s is exactly ten digit characters.
// Leading zeros are permitted.
func AcceptableMobile(s string) bool {
	if utf8.RuneCountInString(s) != 10 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// AcceptableBirthDate reports whether d falls 16 to 60 years before
// now, comparing at day granularity.
func AcceptableBirthDate(d, now time.Time) bool {
	oldest := truncate(now.AddDate(0, 0, -int(maxStudentAgeYears*yearDays)))
	youngest := truncate(now.AddDate(0, 0, -int(minStudentAgeYears*yearDays)))
	return !d.Before(oldest) && !d.After(youngest)
}
