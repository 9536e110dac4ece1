package mrz

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	// the well known sample, whose last digit does not match its first 43 characters
	sampleLine = "L898902C<3UTO6908061F9406236ZE184226B<<<<<10"
	// the same sample with a matching composite digit
	validLine = "L898902C<3UTO6908061F9406236ZE184226B<<<<<14"
	// current ICAO 9303 specimen, valid under the ICAO composite only
	icaoLine = "L898902C36UTO7408122F1204159ZE184226B<<<<<10"
)

func replaceAt(line string, pos int, s string) string {
	return line[:pos] + s + line[pos+len(s):]
}

func nextDigit(c byte) string {
	return string(rune('0' + (c-'0'+1)%10))
}

func TestDecodeSample(t *testing.T) {
	record, err := Decode(sampleLine)
	require.NoError(t, err)

	require.Equal(t, "L898902C<", record.PassportNumber())
	require.Equal(t, byte('3'), record.PassportCheckDigit())
	require.Equal(t, "UTO", record.Nationality())
	require.Equal(t, Date{Year: 69, Month: time.August, Day: 6}, record.DateOfBirth())
	require.Equal(t, "690806", record.DateOfBirth().String())
	require.Equal(t, byte('1'), record.DOBCheckDigit())
	require.Equal(t, byte('F'), record.Sex())
	require.Equal(t, "940623", record.ExpirationDate().String())
	require.Equal(t, byte('6'), record.ExpirationCheckDigit())
	require.Equal(t, "ZE184226B<<<<<", record.PersonalNumber())
	require.Equal(t, byte('1'), record.PersonalCheckDigit())
	require.Equal(t, sampleLine[:43], record.FullLine43())
	require.Equal(t, byte('0'), record.CompositeCheckDigit())
}

func TestDecodeWrongLength(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"empty", ""},
		{"one character", "L"},
		{"43 characters", validLine[:43]},
		{"45 characters", validLine + "<"},
		{"much longer", strings.Repeat(validLine, 3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record, err := Decode(tt.line)
			require.Nil(t, record)
			require.ErrorIs(t, err, ErrWrongLength)
			require.NotErrorIs(t, err, ErrInvalidDate)
			require.Contains(t, err.Error(), "invalid length")

			var formatErr *FormatError
			require.True(t, errors.As(err, &formatErr))
			require.Equal(t, WrongLength, formatErr.Kind)
			require.Empty(t, formatErr.Field)
		})
	}
}

func TestDecodeEveryOtherLengthFails(t *testing.T) {
	for n := 0; n <= 2*LineLength; n++ {
		if n == LineLength {
			continue
		}
		_, err := Decode(strings.Repeat("<", n))
		require.ErrorIs(t, err, ErrWrongLength, "length %d", n)
	}
}

func TestDecodeInvalidDate(t *testing.T) {
	tests := []struct {
		name  string
		pos   int
		date  string
		field Field
	}{
		{"birth month 13", 13, "691306", FieldDateOfBirth},
		{"birth month 00", 13, "690006", FieldDateOfBirth},
		{"birth day 00", 13, "690800", FieldDateOfBirth},
		{"birth February 30", 13, "690230", FieldDateOfBirth},
		{"birth February 29 in non leap year", 13, "690229", FieldDateOfBirth},
		{"birth contains letter", 13, "69O806", FieldDateOfBirth},
		{"birth contains filler", 13, "<<0806", FieldDateOfBirth},
		{"birth signed year", 13, "+10806", FieldDateOfBirth},
		{"expiry month 13", 21, "941323", FieldExpirationDate},
		{"expiry April 31", 21, "940431", FieldExpirationDate},
		{"expiry contains letter", 21, "9406Z3", FieldExpirationDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record, err := Decode(replaceAt(validLine, tt.pos, tt.date))
			require.Nil(t, record)
			require.ErrorIs(t, err, ErrInvalidDate)
			require.NotErrorIs(t, err, ErrWrongLength)
			require.Contains(t, err.Error(), "invalid date")
			require.Contains(t, err.Error(), string(tt.field))

			var formatErr *FormatError
			require.True(t, errors.As(err, &formatErr))
			require.Equal(t, InvalidDate, formatErr.Kind)
			require.Equal(t, tt.field, formatErr.Field)
			require.Equal(t, tt.date, formatErr.Value)
		})
	}
}

func TestDecodeBirthDateIsCheckedFirst(t *testing.T) {
	line := replaceAt(replaceAt(validLine, 13, "691306"), 21, "941323")
	_, err := Decode(line)

	var formatErr *FormatError
	require.True(t, errors.As(err, &formatErr))
	require.Equal(t, FieldDateOfBirth, formatErr.Field)
}

func TestDecodeLeapDays(t *testing.T) {
	for _, date := range []string{"000229", "040229", "680229", "720229", "960229"} {
		t.Run(date, func(t *testing.T) {
			record, err := Decode(replaceAt(validLine, 13, date))
			require.NoError(t, err)
			require.Equal(t, date, record.DateOfBirth().String())
		})
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	for _, line := range []string{sampleLine, validLine, icaoLine, "<<<<<<<<<0<<<0001010<0001010<<<<<<<<<<<<<<00"} {
		t.Run(line, func(t *testing.T) {
			record, err := Decode(line)
			require.NoError(t, err)

			require.Equal(t, line, record.String())
			require.Equal(t, line[0:9], record.PassportNumber())
			require.Equal(t, line[10:13], record.Nationality())
			require.Equal(t, line[13:19], record.DateOfBirth().String())
			require.Equal(t, line[21:27], record.ExpirationDate().String())
			require.Equal(t, line[28:42], record.PersonalNumber())
			require.Equal(t, line[:43], record.FullLine43())
		})
	}
}

func TestPad(t *testing.T) {
	require.Equal(t, "L898902C<", Pad("L898902C", PassportNumberWidth))
	require.Equal(t, "<<<<<<<<<", Pad("", PassportNumberWidth))
	require.Equal(t, "L898902C3", Pad("L898902C3", PassportNumberWidth))
	require.Equal(t, "L898902C3X", Pad("L898902C3X", PassportNumberWidth))
}

func TestErrorKindString(t *testing.T) {
	require.Equal(t, "wrong_length", WrongLength.String())
	require.Equal(t, "invalid_date", InvalidDate.String())
	require.Equal(t, "unknown", ErrorKind(0).String())
}
