package mrz

var weights = [...]int{7, 3, 1}

// CheckDigit computes the ICAO 9303 check digit of value. Digits count as
// themselves and A-Z as 10-35; the filler and anything else count as 0, so the
// function never fails. Weights follow the character position, not the byte offset.
func CheckDigit(value string) int {
	sum, pos := 0, 0
	for _, c := range value {
		sum += charValue(c) * weights[pos%len(weights)]
		pos++
	}
	return sum % 10
}

func charValue(c rune) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 10
	default:
		return 0
	}
}

func digitMatches(value string, stored byte) bool {
	return CheckDigit(value) == int(stored)-'0'
}

func ValidatePassport(r *Record) bool {
	return digitMatches(r.passportNumber, r.passportCheckDigit)
}

func ValidateDOB(r *Record) bool {
	return digitMatches(r.dateOfBirth.String(), r.dobCheckDigit)
}

func ValidateExpiration(r *Record) bool {
	return digitMatches(r.expirationDate.String(), r.expirationCheckDigit)
}

func ValidatePersonal(r *Record) bool {
	return digitMatches(r.personalNumber, r.personalCheckDigit)
}

// ValidateComposite checks the last digit against the first 43 characters.
func ValidateComposite(r *Record) bool {
	return digitMatches(r.fullLine43, r.compositeCheckDigit)
}

// ValidateICAOComposite checks the last digit the way ICAO 9303 defines it for
// TD3 documents, leaving out nationality and sex. It is reported alongside the
// other checks but does not take part in Validate.
func ValidateICAOComposite(r *Record) bool {
	value := r.passportNumber + string(r.passportCheckDigit) +
		r.dateOfBirth.String() + string(r.dobCheckDigit) +
		r.expirationDate.String() + string(r.expirationCheckDigit) +
		r.personalNumber + string(r.personalCheckDigit)
	return digitMatches(value, r.compositeCheckDigit)
}

// Validate reports whether all five check digits match. A single failing digit
// makes the whole record invalid.
func Validate(r *Record) bool {
	return ValidatePassport(r) &&
		ValidateDOB(r) &&
		ValidateExpiration(r) &&
		ValidatePersonal(r) &&
		ValidateComposite(r)
}
