package models

import "time"

// MRZData are the attributes issued for a line whose check digits all match.
type MRZData struct {
	DocumentNumber string
	Nationality    string
	IsEuCitizen    string
	DateOfBirth    time.Time
	DateOfExpiry   time.Time
	Gender         string
	PersonalNumber string
	ChipChecked    string
}

type IssuanceResponse struct {
	Jwt           string `json:"jwt"`
	IrmaServerURL string `json:"irma_server_url"`
}
