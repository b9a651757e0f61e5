package transform

import (
	"sort"
	"strings"

	"github.com/rgehrsitz/cantontax/internal/calculation"
	"github.com/rgehrsitz/cantontax/internal/domain"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// TemplateRegistry manages built-in what-if templates
type TemplateRegistry struct {
	templates map[string]Template
}

// Template represents a named collection of transforms
type Template struct {
	Name        string
	Description string
	Transforms  []RequestTransform
}

// NewTemplateRegistry creates an empty template registry
func NewTemplateRegistry() *TemplateRegistry {
	return &TemplateRegistry{
		templates: make(map[string]Template),
	}
}

// Register adds a template to the registry
func (tr *TemplateRegistry) Register(t Template) {
	tr.templates[strings.ToLower(t.Name)] = t
}

// Get retrieves a template by name (case-insensitive)
func (tr *TemplateRegistry) Get(name string) (Template, bool) {
	t, ok := tr.templates[strings.ToLower(name)]
	return t, ok
}

// List returns all registered template names in alphabetical order
func (tr *TemplateRegistry) List() []string {
	names := lo.Keys(tr.templates)
	sort.Strings(names)
	return names
}

// CreateBuiltInTemplates creates a template registry with common household changes
func CreateBuiltInTemplates() *TemplateRegistry {
	registry := NewTemplateRegistry()

	registry.Register(Template{
		Name:        "marry",
		Description: "File jointly as a married couple",
		Transforms: []RequestTransform{
			&SetStatus{Status: domain.Married},
		},
	})

	registry.Register(Template{
		Name:        "first_child",
		Description: "Add one child to the household",
		Transforms: []RequestTransform{
			&SetChildren{Count: 1},
		},
	})

	registry.Register(Template{
		Name:        "family_two_children",
		Description: "Married couple with two children",
		Transforms: []RequestTransform{
			&SetStatus{Status: domain.Married},
			&SetChildren{Count: 2},
		},
	})

	registry.Register(Template{
		Name:        "raise_10pct",
		Description: "Amount grows by 10%",
		Transforms: []RequestTransform{
			&AdjustAmount{Percent: decimal.NewFromInt(10)},
		},
	})

	registry.Register(Template{
		Name:        "next_year",
		Description: "Apply the 2025 tariff",
		Transforms: []RequestTransform{
			&SetTaxYear{Year: 2025},
		},
	})

	// relocation templates to the usual low-tax cantons
	for _, code := range []string{"ZG", "SZ", "NW"} {
		registry.Register(Template{
			Name:        "move_" + strings.ToLower(code),
			Description: "Move to canton " + code,
			Transforms: []RequestTransform{
				&MoveCanton{Canton: code},
			},
		})
	}

	return registry
}

// ApplyTemplate applies a template to a base request
func ApplyTemplate(base calculation.Request, template Template) (calculation.Request, error) {
	return ApplyTransforms(base, template.Transforms)
}

// ParseTemplateList parses a comma-separated list of template names
func ParseTemplateList(templateList string) []string {
	if templateList == "" {
		return nil
	}

	parts := strings.Split(templateList, ",")
	templates := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			templates = append(templates, trimmed)
		}
	}
	return templates
}
