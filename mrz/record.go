// Package mrz decodes and validates the second line of a TD3 (passport)
// machine readable zone.
package mrz

import "strings"

const (
	LineLength = 44
	Filler     = '<'

	PassportNumberWidth = 9
)

type span struct{ from, to int }

func (s span) of(line string) string {
	return line[s.from:s.to]
}

// Layout of line 2, 0-indexed and half open.
var (
	passportNumberSpan = span{0, 9}
	nationalitySpan    = span{10, 13}
	dateOfBirthSpan    = span{13, 19}
	expirationSpan     = span{21, 27}
	personalNumberSpan = span{28, 42}
	fullLineSpan       = span{0, 43}
)

const (
	passportCheckPos   = 9
	dobCheckPos        = 19
	sexPos             = 20
	expirationCheckPos = 27
	personalCheckPos   = 42
	compositeCheckPos  = 43
)

// Record is a decoded line 2. It can only be obtained from Decode and is never
// modified afterwards.
type Record struct {
	passportNumber       string
	passportCheckDigit   byte
	nationality          string
	dateOfBirth          Date
	dobCheckDigit        byte
	sex                  byte
	expirationDate       Date
	expirationCheckDigit byte
	personalNumber       string
	personalCheckDigit   byte
	fullLine43           string
	compositeCheckDigit  byte
}

// Decode slices a 44 character line into its fields. Any other length fails with
// a WrongLength FormatError before anything is extracted, a date that is not a
// valid YYMMDD fails with InvalidDate naming the field.
func Decode(line string) (*Record, error) {
	if len(line) != LineLength {
		return nil, &FormatError{Kind: WrongLength, Value: line}
	}

	dob, err := ParseDate(FieldDateOfBirth, dateOfBirthSpan.of(line))
	if err != nil {
		return nil, err
	}

	expiration, err := ParseDate(FieldExpirationDate, expirationSpan.of(line))
	if err != nil {
		return nil, err
	}

	return &Record{
		passportNumber:       passportNumberSpan.of(line),
		passportCheckDigit:   line[passportCheckPos],
		nationality:          nationalitySpan.of(line),
		dateOfBirth:          dob,
		dobCheckDigit:        line[dobCheckPos],
		sex:                  line[sexPos],
		expirationDate:       expiration,
		expirationCheckDigit: line[expirationCheckPos],
		personalNumber:       personalNumberSpan.of(line),
		personalCheckDigit:   line[personalCheckPos],
		fullLine43:           fullLineSpan.of(line),
		compositeCheckDigit:  line[compositeCheckPos],
	}, nil
}

func (r *Record) PassportNumber() string { return r.passportNumber }
func (r *Record) PassportCheckDigit() byte { return r.passportCheckDigit }
func (r *Record) Nationality() string { return r.nationality }
func (r *Record) DateOfBirth() Date { return r.dateOfBirth }
func (r *Record) DOBCheckDigit() byte { return r.dobCheckDigit }
func (r *Record) Sex() byte { return r.sex }
func (r *Record) ExpirationDate() Date { return r.expirationDate }
func (r *Record) ExpirationCheckDigit() byte { return r.expirationCheckDigit }
func (r *Record) PersonalNumber() string { return r.personalNumber }
func (r *Record) PersonalCheckDigit() byte { return r.personalCheckDigit }
func (r *Record) FullLine43() string { return r.fullLine43 }
func (r *Record) CompositeCheckDigit() byte { return r.compositeCheckDigit }

// String puts the fields back together into the line they were decoded from.
func (r *Record) String() string {
	var b strings.Builder
	b.Grow(LineLength)
	b.WriteString(r.passportNumber)
	b.WriteByte(r.passportCheckDigit)
	b.WriteString(r.nationality)
	b.WriteString(r.dateOfBirth.String())
	b.WriteByte(r.dobCheckDigit)
	b.WriteByte(r.sex)
	b.WriteString(r.expirationDate.String())
	b.WriteByte(r.expirationCheckDigit)
	b.WriteString(r.personalNumber)
	b.WriteByte(r.personalCheckDigit)
	b.WriteByte(r.compositeCheckDigit)
	return b.String()
}

// Pad right-fills value with the filler character up to width, the way fields
// are written into the zone. Longer values are returned unchanged.
func Pad(value string, width int) string {
	if len(value) >= width {
		return value
	}
	return value + strings.Repeat(string(Filler), width-len(value))
}
