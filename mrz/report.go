package mrz

import "time"

type CheckKind string

const (
	// KindFieldMatch compares a decoded field with a value supplied by the caller.
	KindFieldMatch CheckKind = "field_match"
	// KindCheckDigit recomputes one of the five check digits.
	KindCheckDigit CheckKind = "check_digit"
	// KindInformational is reported but never changes the verdict.
	KindInformational CheckKind = "informational"
)

const (
	CheckPassportNumber = "Passport Number"
	CheckNationality    = "Nationality"
	CheckDateOfBirth    = "Date of Birth"
	CheckGender         = "Gender"
	CheckExpiryDate     = "Expiry Date"

	CheckPassportDigit  = "Passport Check"
	CheckDOBDigit       = "DOB Check"
	CheckExpiryDigit    = "Expiry Date Check"
	CheckPersonalDigit  = "Personal Number Check"
	CheckCompositeDigit = "Composite Check"

	CheckICAOComposite = "ICAO Composite Check"
)

type Check struct {
	Name   string
	Kind   CheckKind
	Passed bool
}

// Expected holds the values a caller wants to see in the line. Zero values are
// compared like any other value, so a missing expectation shows up as a mismatch.
type Expected struct {
	PassportNumber string
	Nationality    string
	DateOfBirth    time.Time
	Sex            byte
	ExpirationDate time.Time
}

// Report is the outcome of verifying one line.
type Report struct {
	Record *Record
	Checks []Check
	// Valid only looks at the check digits; field matches are informational.
	Valid bool
	// Expired is set once the expiration date, century resolved, has fully passed
	// at the time of verification. The document is valid through its expiry day.
	Expired bool
}

// Verify decodes line and checks it against expected. Decode failures are
// returned as they are.
func Verify(line string, expected Expected, now time.Time) (*Report, error) {
	record, err := Decode(line)
	if err != nil {
		return nil, err
	}
	return NewReport(record, expected, now), nil
}

// NewReport runs every check against an already decoded record.
func NewReport(r *Record, expected Expected, now time.Time) *Report {
	checks := []Check{
		{CheckPassportNumber, KindFieldMatch, r.passportNumber == expected.PassportNumber},
		{CheckNationality, KindFieldMatch, r.nationality == expected.Nationality},
		{CheckDateOfBirth, KindFieldMatch, r.dateOfBirth.Matches(expected.DateOfBirth)},
		{CheckGender, KindFieldMatch, r.sex == expected.Sex},
		{CheckExpiryDate, KindFieldMatch, r.expirationDate.Matches(expected.ExpirationDate)},

		{CheckPassportDigit, KindCheckDigit, ValidatePassport(r)},
		{CheckDOBDigit, KindCheckDigit, ValidateDOB(r)},
		{CheckExpiryDigit, KindCheckDigit, ValidateExpiration(r)},
		{CheckPersonalDigit, KindCheckDigit, ValidatePersonal(r)},
		{CheckCompositeDigit, KindCheckDigit, ValidateComposite(r)},

		{CheckICAOComposite, KindInformational, ValidateICAOComposite(r)},
	}

	return &Report{
		Record:  r,
		Checks:  checks,
		Valid:   Validate(r),
		Expired: isExpired(r.expirationDate, now),
	}
}

func isExpired(expiration Date, now time.Time) bool {
	dayAfter := expiration.ExpiryTime(now).AddDate(0, 0, 1)
	return !now.Before(dayAfter)
}

// Check looks up a check by name.
func (rep *Report) Check(name string) (Check, bool) {
	for _, c := range rep.Checks {
		if c.Name == name {
			return c, true
		}
	}
	return Check{}, false
}

// Failed returns the checks of the given kind that did not pass, in order.
func (rep *Report) Failed(kind CheckKind) []Check {
	var failed []Check
	for _, c := range rep.Checks {
		if c.Kind == kind && !c.Passed {
			failed = append(failed, c)
		}
	}
	return failed
}
