package models

// ValidationRequest is what a client posts to validate a line. Dates use the
// YYYY-MM-DD form; when DG1 is set, the chip values replace the typed ones.
type ValidationRequest struct {
	MRZLine2       string `json:"mrz_line2"`
	PassportNumber string `json:"passport_number,omitempty"`
	Nationality    string `json:"nationality,omitempty"`
	DateOfBirth    string `json:"date_of_birth,omitempty"`
	Gender         string `json:"gender,omitempty"`
	ExpiryDate     string `json:"expiry_date,omitempty"`
	DG1            string `json:"dg1,omitempty"` // hex encoded EF.DG1 read from the chip
}
