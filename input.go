package main

import (
	"fmt"
	"strings"
	"time"

	"go-mrz-validator/document"
	"go-mrz-validator/models"
	"go-mrz-validator/mrz"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/width"
)

const REQUEST_DATE_FORMAT = "2006-01-02"

// NormalizeInput trims the value, folds full width forms such as U+FF1C to
// their ASCII counterparts and uppercases the result.
func NormalizeInput(value string) string {
	// a Caser keeps state, so it cannot be shared between requests
	return cases.Upper(language.Und).String(width.Narrow.String(strings.TrimSpace(value)))
}

// expectedFromRequest turns the typed values of a request into expectations,
// written the way the zone prints them.
func expectedFromRequest(request models.ValidationRequest) (mrz.Expected, error) {
	var expected mrz.Expected

	if number := NormalizeInput(request.PassportNumber); number != "" {
		expected.PassportNumber = mrz.Pad(number, mrz.PassportNumberWidth)
	}
	expected.Nationality = NormalizeInput(request.Nationality)

	if gender := NormalizeInput(request.Gender); gender != "" {
		expected.Sex = document.SexByte(gender)
	}

	var err error
	expected.DateOfBirth, err = parseRequestDate("date_of_birth", request.DateOfBirth)
	if err != nil {
		return mrz.Expected{}, err
	}
	expected.ExpirationDate, err = parseRequestDate("expiry_date", request.ExpiryDate)
	if err != nil {
		return mrz.Expected{}, err
	}

	return expected, nil
}

func parseRequestDate(name, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	parsed, err := time.Parse(REQUEST_DATE_FORMAT, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s, expected YYYY-MM-DD: %w", name, err)
	}
	return parsed, nil
}
