package output

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rgehrsitz/cantontax/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Report is a set of calculation results rendered together
type Report struct {
	Title       string                     `json:"title" yaml:"title"`
	GeneratedAt time.Time                  `json:"generated_at" yaml:"generated_at"`
	Results     []domain.CalculationResult `json:"results" yaml:"results"`
	Assumptions []string                   `json:"assumptions,omitempty" yaml:"assumptions,omitempty"`
}

// NewReport creates a report stamped with the current time
func NewReport(title string, results ...domain.CalculationResult) *Report {
	return &Report{
		Title:       title,
		GeneratedAt: time.Now(),
		Results:     results,
	}
}

// TotalTax sums the total tax of every result in the report
func (r *Report) TotalTax() decimal.Decimal {
	total := decimal.Zero
	for _, res := range r.Results {
		total = total.Add(res.TotalTax)
	}
	return total
}

// Formatter renders a report in one output format
type Formatter interface {
	Name() string
	Format(report *Report) ([]byte, error)
}

// FormatterFunc adapts a plain function to the Formatter interface
type FormatterFunc struct {
	ID string
	F  func(report *Report) ([]byte, error)
}

func (f FormatterFunc) Name() string { return f.ID }

func (f FormatterFunc) Format(report *Report) ([]byte, error) {
	return f.F(report)
}

// NewFormatter returns the formatter registered under name
func NewFormatter(name string) (Formatter, error) {
	switch strings.ToLower(name) {
	case "console", "":
		return ConsoleFormatter{}, nil
	case "verbose":
		return ConsoleVerboseFormatter{}, nil
	case "csv":
		return CSVSummarizer{}, nil
	case "json":
		return JSONFormatter{Pretty: true}, nil
	case "yaml":
		return YAMLFormatter{}, nil
	case "html":
		return HTMLFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", name)
	}
}

// FormatNames lists every format NewFormatter accepts
func FormatNames() []string {
	return []string{"console", "verbose", "csv", "json", "yaml", "html"}
}

// WriteFormatted renders report with formatter into a timestamped file in the
// working directory and returns the file name.
func WriteFormatted(formatter Formatter, report *Report, ext string) (string, error) {
	data, err := formatter.Format(report)
	if err != nil {
		return "", err
	}

	filename := fmt.Sprintf("cantontax_report_%s.%s", time.Now().Format("20060102_150405"), strings.TrimPrefix(ext, "."))
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return filename, nil
}

// JSONFormatter renders the report as JSON
type JSONFormatter struct {
	Pretty bool
}

func (j JSONFormatter) Name() string { return "json" }

func (j JSONFormatter) Format(report *Report) ([]byte, error) {
	if j.Pretty {
		return json.MarshalIndent(report, "", "  ")
	}
	return json.Marshal(report)
}

// YAMLFormatter renders the report as YAML
type YAMLFormatter struct{}

func (y YAMLFormatter) Name() string { return "yaml" }

func (y YAMLFormatter) Format(report *Report) ([]byte, error) {
	return yaml.Marshal(report)
}
