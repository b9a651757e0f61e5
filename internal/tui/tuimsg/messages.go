package tuimsg

import (
	"github.com/rgehrsitz/cantontax/internal/calculation"
	"github.com/rgehrsitz/cantontax/internal/compare"
	"github.com/rgehrsitz/cantontax/internal/domain"
)

// CalculateRequestedMsg asks the application to calculate one request
type CalculateRequestedMsg struct {
	Entity  domain.Entity
	Request calculation.Request
}

// RankRequestedMsg asks the application to rank every canton for a request
type RankRequestedMsg struct {
	Entity  domain.Entity
	Request calculation.Request
}

// CalculationCompleteMsg signals a calculation has finished
type CalculationCompleteMsg struct {
	Result domain.CalculationResult
	Err    error
}

// RankingCompleteMsg signals a cross-canton ranking has finished
type RankingCompleteMsg struct {
	Ranking *compare.ComparisonSet
	Err     error
}

// ErrorMsg displays an error to the user
type ErrorMsg struct {
	Err error
}
