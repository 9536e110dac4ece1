package models

import "time"

type MRZRecord struct {
	PassportNumber       string `json:"passport_number"`
	PassportCheckDigit   string `json:"passport_check_digit"`
	Nationality          string `json:"nationality"`
	DateOfBirth          string `json:"date_of_birth"` // YYMMDD as printed
	DOBCheckDigit        string `json:"dob_check_digit"`
	Sex                  string `json:"sex"`
	ExpirationDate       string `json:"expiration_date"` // YYMMDD as printed
	ExpirationCheckDigit string `json:"expiration_check_digit"`
	PersonalNumber       string `json:"personal_number"`
	PersonalCheckDigit   string `json:"personal_check_digit"`
	CompositeCheckDigit  string `json:"composite_check_digit"`
}

type CheckResult struct {
	Name   string `json:"name"`
	Kind   string `json:"kind"`
	Passed bool   `json:"passed"`
}

type ValidationResponse struct {
	ReportId    string        `json:"report_id"`
	Record      MRZRecord     `json:"record"`
	Checks      []CheckResult `json:"checks"`
	Valid       bool          `json:"valid"`
	IsExpired   bool          `json:"is_expired"`
	ChipChecked bool          `json:"chip_checked"`
	CreatedAt   time.Time     `json:"created_at"`
}

// ErrorResponse is returned when the line cannot be decoded.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
	Field string `json:"field,omitempty"`
}
