package domain

import (
	"fmt"
	"strings"
)

// UnknownCantonError is returned when a canton code is not in the registry
type UnknownCantonError struct {
	Code string
}

func (e *UnknownCantonError) Error() string {
	return fmt.Sprintf("unknown canton %q", e.Code)
}

// UnsupportedTaxYearError is returned when a canton has no tariff for the requested year
type UnsupportedTaxYearError struct {
	Code      string
	Year      int
	Available []int
}

func (e *UnsupportedTaxYearError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("canton %s has no tariff for tax year %d", e.Code, e.Year)
	}
	years := make([]string, len(e.Available))
	for i, y := range e.Available {
		years[i] = fmt.Sprint(y)
	}
	return fmt.Sprintf("canton %s has no tariff for tax year %d (available: %s)", e.Code, e.Year, strings.Join(years, ", "))
}

// InvalidMaritalStatusError is returned for marital status values other than single or married.
// The engine never substitutes the single tariff for an unrecognised status.
type InvalidMaritalStatusError struct {
	Value string
}

func (e *InvalidMaritalStatusError) Error() string {
	return fmt.Sprintf("invalid marital status %q: must be 'single' or 'married'", e.Value)
}

// MissingMunicipalFactorError is returned when a canton needs municipal factors that
// only the caller can know (the commune's coefficient and indexation).
type MissingMunicipalFactorError struct {
	Code   string
	Factor string
}

func (e *MissingMunicipalFactorError) Error() string {
	return fmt.Sprintf("canton %s requires the municipal %s to be supplied", e.Code, e.Factor)
}

// InvalidTariffError describes malformed tariff data found while building the registry
type InvalidTariffError struct {
	Source string
	Field  string
	Err    error
}

func (e *InvalidTariffError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid tariff %s: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("invalid tariff %s (%s): %v", e.Source, e.Field, e.Err)
}

func (e *InvalidTariffError) Unwrap() error {
	return e.Err
}

// NewInvalidTariffError creates a new InvalidTariffError.
func NewInvalidTariffError(source, field string, err error) error {
	return &InvalidTariffError{
		Source: source,
		Field:  field,
		Err:    err,
	}
}
