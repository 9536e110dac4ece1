package document

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go-mrz-validator/mrz"

	"github.com/gmrtd/gmrtd/document"
)

const nationalityWidth = 3

// ExpectedFromDG1 reads the MRZ stored in an EF.DG1 data group, as read from the
// passport chip, and turns it into expectations for the printed line.
func ExpectedFromDG1(dg1Hex string, now time.Time) (mrz.Expected, error) {
	dg1Bytes, err := hex.DecodeString(strings.TrimSpace(dg1Hex))
	if err != nil {
		return mrz.Expected{}, fmt.Errorf("DG1 is not valid hex: %w", err)
	}
	if len(dg1Bytes) == 0 {
		return mrz.Expected{}, fmt.Errorf("DG1 is empty")
	}

	dg1, err := document.NewDG1(dg1Bytes)
	if err != nil {
		return mrz.Expected{}, fmt.Errorf("failed to create DG1: %w", err)
	}
	if dg1 == nil {
		return mrz.Expected{}, fmt.Errorf("DG1 did not contain an MRZ")
	}

	chip := dg1.Mrz
	slog.Debug("Decoded DG1 from chip", "document_code", chip.DocumentCode, "issuing_state", chip.IssuingState)

	dob, err := mrz.ParseDate(mrz.FieldDateOfBirth, chip.DateOfBirth)
	if err != nil {
		return mrz.Expected{}, fmt.Errorf("failed to parse date of birth: %w", err)
	}

	doe, err := mrz.ParseDate(mrz.FieldExpirationDate, chip.DateOfExpiry)
	if err != nil {
		return mrz.Expected{}, fmt.Errorf("failed to parse date of expiry: %w", err)
	}

	return mrz.Expected{
		// the chip values come without their trailing fillers
		PassportNumber: mrz.Pad(chip.DocumentNumber, mrz.PassportNumberWidth),
		Nationality:    mrz.Pad(chip.Nationality, nationalityWidth),
		DateOfBirth:    dob.BirthTime(now),
		Sex:            SexByte(chip.Sex),
		ExpirationDate: doe.ExpiryTime(now),
	}, nil
}

// SexByte maps a sex value to the character printed in the zone. Unspecified
// values, X included, are printed as the filler.
func SexByte(sex string) byte {
	switch strings.ToUpper(strings.TrimSpace(sex)) {
	case "M":
		return 'M'
	case "F":
		return 'F'
	default:
		return mrz.Filler
	}
}
