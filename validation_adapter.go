package main

import (
	"time"

	"go-mrz-validator/document"
	"go-mrz-validator/mrz"
)

// abstract interfaces for easier testing

type LineVerifier interface {
	Verify(line string, expected mrz.Expected, now time.Time) (*mrz.Report, error)
}

type ChipReader interface {
	ExpectedFromDG1(dg1Hex string, now time.Time) (mrz.Expected, error)
}

// Production implementations

type LineVerifierImpl struct{}

func (LineVerifierImpl) Verify(line string, expected mrz.Expected, now time.Time) (*mrz.Report, error) {
	return mrz.Verify(line, expected, now)
}

type ChipReaderImpl struct{}

func (ChipReaderImpl) ExpectedFromDG1(dg1Hex string, now time.Time) (mrz.Expected, error) {
	return document.ExpectedFromDG1(dg1Hex, now)
}
