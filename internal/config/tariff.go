package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rgehrsitz/cantontax/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// TariffFile is the YAML layout of one canton tariff table. A file may cover several
// tax years when the law did not change between them.
type TariffFile struct {
	Code       string          `yaml:"code"`
	Name       string          `yaml:"name"`
	TaxYears   []int           `yaml:"tax_years"`
	Multiplier MultiplierEntry `yaml:"multiplier"`
	Splitting  *SplittingEntry `yaml:"splitting"`
	Income     IncomeEntry     `yaml:"income"`
	Wealth     WealthEntry     `yaml:"wealth"`
}

// MultiplierEntry holds the canton multiplier and the default municipality
type MultiplierEntry struct {
	Kind         string          `yaml:"kind"`
	Canton       decimal.Decimal `yaml:"canton"`
	Municipality string          `yaml:"municipality"`
	Municipal    decimal.Decimal `yaml:"municipal"`
}

// SplittingEntry is the YAML form of domain.SplittingRule
type SplittingEntry struct {
	Kind        string          `yaml:"kind"`
	Divisor     decimal.Decimal `yaml:"divisor"`
	Coefficient decimal.Decimal `yaml:"coefficient"`
}

// IncomeEntry holds income schedules. Married defaults to the single schedule.
type IncomeEntry struct {
	Single  *ScheduleEntry `yaml:"single"`
	Married *ScheduleEntry `yaml:"married"`
}

// WealthEntry holds wealth schedules, thresholds and an optional splitting rule
type WealthEntry struct {
	Thresholds ThresholdEntry  `yaml:"thresholds"`
	Splitting  *SplittingEntry `yaml:"splitting"`
	Single     *ScheduleEntry  `yaml:"single"`
	Married    *ScheduleEntry  `yaml:"married"`
}

// ThresholdEntry holds the tax-free wealth per marital status
type ThresholdEntry struct {
	Single  decimal.Decimal `yaml:"single"`
	Married decimal.Decimal `yaml:"married"`
}

// ScheduleEntry is the union of all schedule kinds; kind selects which fields apply
type ScheduleEntry struct {
	Kind string `yaml:"kind"`

	Brackets     []BracketEntry   `yaml:"brackets"`
	RatePerMille *decimal.Decimal `yaml:"rate_per_mille"`
	MinAmount    decimal.Decimal  `yaml:"min_amount"`
	Segments     []SegmentEntry   `yaml:"segments"`
	Quotients    *QuotientEntry   `yaml:"quotients"`
	Base         *ScheduleEntry   `yaml:"base"`
	Canton       *ScheduleEntry   `yaml:"canton"`
	Municipal    *ScheduleEntry   `yaml:"municipal"`

	FlatRate    *FlatRateEntry  `yaml:"flat_rate"`
	RoundDownTo decimal.Decimal `yaml:"round_down_to"`
}

// BracketEntry is one bracket row. Exactly one of rate (fraction) or per_mille is set.
type BracketEntry struct {
	Lower    decimal.Decimal  `yaml:"lower"`
	Upper    *decimal.Decimal `yaml:"upper"`
	Rate     *decimal.Decimal `yaml:"rate"`
	PerMille *decimal.Decimal `yaml:"per_mille"`
	Base     decimal.Decimal  `yaml:"base"`
}

// SegmentEntry is one range of a logarithmic formula
type SegmentEntry struct {
	Upper *decimal.Decimal `yaml:"upper"`
	B     decimal.Decimal  `yaml:"b"`
	C     decimal.Decimal  `yaml:"c"`
	D     decimal.Decimal  `yaml:"d"`
}

// QuotientEntry is the YAML form of domain.QuotientTable
type QuotientEntry struct {
	Single       decimal.Decimal `yaml:"single"`
	Married      decimal.Decimal `yaml:"married"`
	SingleParent decimal.Decimal `yaml:"single_parent"`
	PerChild     decimal.Decimal `yaml:"per_child"`
	MaxChildren  int             `yaml:"max_children"`
}

// FlatRateEntry is the YAML form of domain.FlatRateOverride
type FlatRateEntry struct {
	Threshold decimal.Decimal `yaml:"threshold"`
	Rate      decimal.Decimal `yaml:"rate"`
}

// TariffParser turns tariff YAML into validated canton configurations
type TariffParser struct{}

// NewTariffParser creates a new tariff parser
func NewTariffParser() *TariffParser {
	return &TariffParser{}
}

// LoadFromFile loads and validates a tariff table from a YAML file
func (tp *TariffParser) LoadFromFile(filename string) ([]domain.CantonTaxConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return tp.Parse(data, filename)
}

// Parse decodes one tariff table and returns one configuration per covered tax year.
// source names the table in error messages.
func (tp *TariffParser) Parse(data []byte, source string) ([]domain.CantonTaxConfig, error) {
	var file TariffFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, domain.NewInvalidTariffError(source, "", fmt.Errorf("failed to parse YAML: %w", err))
	}
	return tp.Build(file, source)
}

// Build converts a decoded tariff file into validated configurations
func (tp *TariffParser) Build(file TariffFile, source string) ([]domain.CantonTaxConfig, error) {
	code := strings.ToUpper(strings.TrimSpace(file.Code))
	if code == "" {
		return nil, domain.NewInvalidTariffError(source, "code", errors.New("canton code is required"))
	}
	if len(file.TaxYears) == 0 {
		return nil, domain.NewInvalidTariffError(source, "tax_years", errors.New("at least one tax year is required"))
	}

	template := domain.CantonTaxConfig{
		Code:                       code,
		Name:                       file.Name,
		MultiplierKind:             domain.MultiplierKind(file.Multiplier.Kind),
		CantonMultiplier:           file.Multiplier.Canton,
		DefaultMunicipality:        file.Multiplier.Municipality,
		DefaultMunicipalMultiplier: file.Multiplier.Municipal,
		WealthThresholds: domain.StatusAmounts{
			Single:  file.Wealth.Thresholds.Single,
			Married: file.Wealth.Thresholds.Married,
		},
	}

	if file.Splitting == nil {
		return nil, domain.NewInvalidTariffError(source, "splitting", errors.New("splitting rule is required"))
	}
	template.Splitting = convertSplitting(*file.Splitting)
	template.WealthSplitting = domain.SplittingRule{Kind: domain.SplitNone}
	if file.Wealth.Splitting != nil {
		template.WealthSplitting = convertSplitting(*file.Wealth.Splitting)
	}

	var err error
	if template.Income, err = convertPair(file.Income.Single, file.Income.Married); err != nil {
		return nil, domain.NewInvalidTariffError(source, "income", err)
	}
	if template.Wealth, err = convertPair(file.Wealth.Single, file.Wealth.Married); err != nil {
		return nil, domain.NewInvalidTariffError(source, "wealth", err)
	}

	configs := make([]domain.CantonTaxConfig, 0, len(file.TaxYears))
	seen := make(map[int]bool, len(file.TaxYears))
	for _, year := range file.TaxYears {
		if seen[year] {
			return nil, domain.NewInvalidTariffError(source, "tax_years", fmt.Errorf("tax year %d listed twice", year))
		}
		seen[year] = true

		cfg := template
		cfg.TaxYear = year
		if err := cfg.Validate(); err != nil {
			return nil, domain.NewInvalidTariffError(source, fmt.Sprintf("%s/%d", code, year), err)
		}
		configs = append(configs, cfg)
	}
	return configs, nil
}

func convertSplitting(e SplittingEntry) domain.SplittingRule {
	return domain.SplittingRule{
		Kind:        domain.SplittingKind(e.Kind),
		Divisor:     e.Divisor,
		Coefficient: e.Coefficient,
	}
}

func convertPair(single, married *ScheduleEntry) (domain.TariffPair, error) {
	if single == nil {
		return domain.TariffPair{}, errors.New("single schedule is required")
	}
	s, err := convertTariff(*single)
	if err != nil {
		return domain.TariffPair{}, fmt.Errorf("single: %w", err)
	}
	if married == nil {
		return domain.TariffPair{Single: s, Married: s}, nil
	}
	m, err := convertTariff(*married)
	if err != nil {
		return domain.TariffPair{}, fmt.Errorf("married: %w", err)
	}
	return domain.TariffPair{Single: s, Married: m}, nil
}

func convertTariff(e ScheduleEntry) (domain.Tariff, error) {
	schedule, err := convertSchedule(e)
	if err != nil {
		return domain.Tariff{}, err
	}
	t := domain.Tariff{Schedule: schedule, RoundDownTo: e.RoundDownTo}
	if e.FlatRate != nil {
		t.FlatRate = &domain.FlatRateOverride{Threshold: e.FlatRate.Threshold, Rate: e.FlatRate.Rate}
	}
	return t, nil
}

func convertSchedule(e ScheduleEntry) (domain.Schedule, error) {
	switch domain.ScheduleKind(e.Kind) {
	case domain.KindMarginal:
		brackets, err := convertBrackets(e.Brackets)
		if err != nil {
			return nil, err
		}
		return domain.MarginalBrackets{Brackets: brackets}, nil

	case domain.KindCumulative:
		brackets, err := convertBrackets(e.Brackets)
		if err != nil {
			return nil, err
		}
		return domain.CumulativeBrackets{Brackets: brackets}, nil

	case domain.KindProportional:
		if e.RatePerMille == nil {
			return nil, errors.New("proportional schedule requires rate_per_mille")
		}
		return domain.Proportional{RatePerMille: *e.RatePerMille}, nil

	case domain.KindLogarithmic:
		segments := make([]domain.LogSegment, len(e.Segments))
		for i, s := range e.Segments {
			segments[i] = domain.LogSegment{Upper: s.Upper, B: s.B, C: s.C, D: s.D}
		}
		return domain.LogarithmicFormula{MinAmount: e.MinAmount, Segments: segments}, nil

	case domain.KindFamilyQuotient:
		if e.Base == nil {
			return nil, errors.New("family quotient schedule requires a base schedule")
		}
		if e.Quotients == nil {
			return nil, errors.New("family quotient schedule requires quotients")
		}
		base, err := convertSchedule(*e.Base)
		if err != nil {
			return nil, fmt.Errorf("base: %w", err)
		}
		q := e.Quotients
		return domain.FamilyQuotient{
			Base: base,
			Quotients: domain.QuotientTable{
				Single:       q.Single,
				Married:      q.Married,
				SingleParent: q.SingleParent,
				PerChild:     q.PerChild,
				MaxChildren:  q.MaxChildren,
			},
		}, nil

	case domain.KindDualTariff:
		if e.Canton == nil || e.Municipal == nil {
			return nil, errors.New("dual tariff requires canton and municipal schedules")
		}
		canton, err := convertSchedule(*e.Canton)
		if err != nil {
			return nil, fmt.Errorf("canton: %w", err)
		}
		municipal, err := convertSchedule(*e.Municipal)
		if err != nil {
			return nil, fmt.Errorf("municipal: %w", err)
		}
		return domain.DualTariff{Canton: canton, Municipal: municipal}, nil

	case "":
		return nil, errors.New("schedule kind is required")
	}
	return nil, fmt.Errorf("unknown schedule kind %q", e.Kind)
}

func convertBrackets(entries []BracketEntry) ([]domain.Bracket, error) {
	brackets := make([]domain.Bracket, len(entries))
	for i, e := range entries {
		var rate decimal.Decimal
		switch {
		case e.Rate != nil && e.PerMille != nil:
			return nil, fmt.Errorf("bracket %d: rate and per_mille are mutually exclusive", i)
		case e.Rate != nil:
			rate = *e.Rate
		case e.PerMille != nil:
			rate = e.PerMille.Div(domain.Thousand)
		default:
			return nil, fmt.Errorf("bracket %d: rate or per_mille is required", i)
		}
		brackets[i] = domain.Bracket{Lower: e.Lower, Upper: e.Upper, Rate: rate, Base: e.Base}
	}
	return brackets, nil
}
