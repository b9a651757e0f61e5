package cantons

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/rgehrsitz/cantontax/internal/config"
	"github.com/rgehrsitz/cantontax/internal/domain"
	"github.com/samber/lo"
)

//go:embed tables/*.yaml
var embeddedTables embed.FS

// Registry provides the tax configuration of every canton by tax year.
// It is built once and never mutated afterwards, so lookups need no locking.
type Registry struct {
	configs map[string]map[int]domain.CantonTaxConfig
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the registry built from the embedded tariff tables.
// Malformed embedded data is a programming error and panics on first use.
func Default() *Registry {
	defaultOnce.Do(func() {
		sub, err := fs.Sub(embeddedTables, "tables")
		if err != nil {
			panic(fmt.Sprintf("cantons: embedded tables: %v", err))
		}
		registry, err := NewRegistry(sub)
		if err != nil {
			panic(fmt.Sprintf("cantons: %v", err))
		}
		defaultRegistry = registry
	})
	return defaultRegistry
}

// NewRegistry builds a registry from every *.yaml file at the root of fsys
func NewRegistry(fsys fs.FS) (*Registry, error) {
	files, err := fs.Glob(fsys, "*.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to list tariff tables: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no tariff tables found")
	}
	sort.Strings(files)

	registry := &Registry{configs: make(map[string]map[int]domain.CantonTaxConfig)}
	parser := config.NewTariffParser()
	for _, name := range files {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("failed to read tariff table %s: %w", name, err)
		}
		configs, err := parser.Parse(data, path.Base(name))
		if err != nil {
			return nil, err
		}
		for _, cfg := range configs {
			if err := registry.register(cfg, name); err != nil {
				return nil, err
			}
		}
	}
	return registry, nil
}

// NewRegistryFromConfigs builds a registry from already constructed configurations
func NewRegistryFromConfigs(configs ...domain.CantonTaxConfig) (*Registry, error) {
	registry := &Registry{configs: make(map[string]map[int]domain.CantonTaxConfig)}
	for _, cfg := range configs {
		if err := cfg.Validate(); err != nil {
			return nil, domain.NewInvalidTariffError(cfg.Code, fmt.Sprint(cfg.TaxYear), err)
		}
		if err := registry.register(cfg, cfg.Code); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

func (r *Registry) register(cfg domain.CantonTaxConfig, source string) error {
	years, ok := r.configs[cfg.Code]
	if !ok {
		years = make(map[int]domain.CantonTaxConfig)
		r.configs[cfg.Code] = years
	}
	if _, exists := years[cfg.TaxYear]; exists {
		return domain.NewInvalidTariffError(source, "tax_years",
			fmt.Errorf("canton %s tax year %d is defined more than once", cfg.Code, cfg.TaxYear))
	}
	years[cfg.TaxYear] = cfg
	return nil
}

// Lookup returns the configuration of a canton for a tax year. The code is
// case-insensitive.
func (r *Registry) Lookup(code string, year int) (domain.CantonTaxConfig, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	years, ok := r.configs[normalized]
	if !ok {
		return domain.CantonTaxConfig{}, &domain.UnknownCantonError{Code: code}
	}
	cfg, ok := years[year]
	if !ok {
		return domain.CantonTaxConfig{}, &domain.UnsupportedTaxYearError{
			Code:      normalized,
			Year:      year,
			Available: r.Years(normalized),
		}
	}
	return cfg.Clone(), nil
}

// Codes returns all canton codes in alphabetical order
func (r *Registry) Codes() []string {
	codes := lo.Keys(r.configs)
	sort.Strings(codes)
	return codes
}

// Years returns the tax years available for a canton in ascending order
func (r *Registry) Years(code string) []int {
	years := lo.Keys(r.configs[strings.ToUpper(strings.TrimSpace(code))])
	sort.Ints(years)
	return years
}

// Name returns the canton's name, or "" for an unknown code
func (r *Registry) Name(code string) string {
	for _, cfg := range r.configs[strings.ToUpper(strings.TrimSpace(code))] {
		return cfg.Name
	}
	return ""
}

// Supports reports whether the canton has a tariff for the year
func (r *Registry) Supports(code string, year int) bool {
	_, err := r.Lookup(code, year)
	return err == nil
}
