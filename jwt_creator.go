package main

import (
	"crypto/rsa"
	"os"
	"strings"
	"time"

	"go-mrz-validator/models"

	"github.com/golang-jwt/jwt/v4"
	irma "github.com/privacybydesign/irmago"
)

type JwtCreator interface {
	CreateMRZJwt(data models.MRZData) (jwt string, err error)
}

func NewIrmaJwtCreator(privateKeyPath string,
	issuerId string,
	credential string,
	sdJwtBatchSize uint,
) (*DefaultJwtCreator, error) {
	keyBytes, err := os.ReadFile(privateKeyPath)

	if err != nil {
		return nil, err
	}

	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(keyBytes)

	if err != nil {
		return nil, err
	}

	return &DefaultJwtCreator{
		issuerId:       issuerId,
		privateKey:     privateKey,
		credential:     credential,
		sdJwtBatchSize: sdJwtBatchSize,
	}, nil
}

type DefaultJwtCreator struct {
	privateKey     *rsa.PrivateKey
	issuerId       string
	credential     string
	sdJwtBatchSize uint
}

const DATE_FORMAT_CYMD = "2006-01-02"
const DATE_FORMAT_YEAR = "2006"

func (jc *DefaultJwtCreator) CreateMRZJwt(data models.MRZData) (string, error) {
	attributes := map[string]string{
		"documentNumber": strings.TrimRight(data.DocumentNumber, "<"),
		"nationality":    strings.TrimRight(data.Nationality, "<"),
		"isEuCitizen":    data.IsEuCitizen,
		"dateOfBirth":    data.DateOfBirth.Format(DATE_FORMAT_CYMD),
		"yearOfBirth":    data.DateOfBirth.Format(DATE_FORMAT_YEAR),
		"dateOfExpiry":   data.DateOfExpiry.Format(DATE_FORMAT_CYMD),
		"gender":         data.Gender,
		"personalNumber": strings.TrimRight(data.PersonalNumber, "<"),
		"chipChecked":    data.ChipChecked,
	}

	return irma.SignSessionRequest(
		jc.createIssuanceRequest(attributes),
		jwt.GetSigningMethod(jwt.SigningMethodRS256.Alg()),
		jc.privateKey,
		jc.issuerId,
	)
}

// createIssuanceRequest is split off so tests can inspect the request before signing
func (jc *DefaultJwtCreator) createIssuanceRequest(attributes map[string]string) *irma.IssuanceRequest {
	validity := irma.Timestamp(time.Unix(time.Now().AddDate(1, 0, 0).Unix(), 0)) // 1 year from now

	return irma.NewIssuanceRequest([]*irma.CredentialRequest{
		{
			CredentialTypeID: irma.NewCredentialTypeIdentifier(jc.credential),
			Attributes:       attributes,
			SdJwtBatchSize:   jc.sdJwtBatchSize,
			Validity:         &validity,
		},
	})
}
