package transform

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/rgehrsitz/cantontax/internal/domain"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// TransformRegistry provides a central registry for all available transforms.
// It enables creation of transforms from string parameters, useful for CLI commands.
type TransformRegistry struct {
	factories map[string]TransformFactory
}

// TransformFactory is a function that creates a transform from parameters.
type TransformFactory func(params map[string]string) (RequestTransform, error)

// NewTransformRegistry creates a new registry with all built-in transforms registered.
func NewTransformRegistry() *TransformRegistry {
	registry := &TransformRegistry{
		factories: make(map[string]TransformFactory),
	}

	registry.Register("set_status", createSetStatus)
	registry.Register("set_children", createSetChildren)
	registry.Register("adjust_amount", createAdjustAmount)
	registry.Register("move_canton", createMoveCanton)
	registry.Register("set_multiplier", createSetMultiplier)
	registry.Register("set_tax_year", createSetTaxYear)

	return registry
}

// Register adds a transform factory to the registry.
func (r *TransformRegistry) Register(name string, factory TransformFactory) {
	r.factories[name] = factory
}

// Create creates a transform by name with the given parameters.
func (r *TransformRegistry) Create(name string, params map[string]string) (RequestTransform, error) {
	factory, exists := r.factories[name]
	if !exists {
		return nil, fmt.Errorf("unknown transform: %s", name)
	}

	return factory(params)
}

// List returns the names of all registered transforms in alphabetical order.
func (r *TransformRegistry) List() []string {
	names := lo.Keys(r.factories)
	sort.Strings(names)
	return names
}

// ParseTransformSpec parses a transform specification string.
// Format: "transform_name:param1=value1,param2=value2"
// Example: "move_canton:canton=ZG"
func (r *TransformRegistry) ParseTransformSpec(spec string) (RequestTransform, error) {
	parts := strings.SplitN(spec, ":", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid transform spec format, expected 'name:params', got: %s", spec)
	}

	name := strings.TrimSpace(parts[0])
	paramsStr := strings.TrimSpace(parts[1])

	params := make(map[string]string)
	if paramsStr != "" {
		for _, paramPair := range strings.Split(paramsStr, ",") {
			kv := strings.SplitN(paramPair, "=", 2)
			if len(kv) != 2 {
				return nil, fmt.Errorf("invalid parameter format, expected 'key=value', got: %s", paramPair)
			}
			params[strings.TrimSpace(kv[0])] = strings.TrimSpace(kv[1])
		}
	}

	return r.Create(name, params)
}

// ParseTransformSpecs parses several specs, keeping their order
func (r *TransformRegistry) ParseTransformSpecs(specs []string) ([]RequestTransform, error) {
	transforms := make([]RequestTransform, 0, len(specs))
	for _, spec := range specs {
		t, err := r.ParseTransformSpec(spec)
		if err != nil {
			return nil, err
		}
		transforms = append(transforms, t)
	}
	return transforms, nil
}

// Factory functions for each transform

func createSetStatus(params map[string]string) (RequestTransform, error) {
	value, ok := params["status"]
	if !ok {
		return nil, fmt.Errorf("set_status requires 'status' parameter")
	}
	status, err := domain.ParseMaritalStatus(value)
	if err != nil {
		return nil, err
	}
	return &SetStatus{Status: status}, nil
}

func createSetChildren(params map[string]string) (RequestTransform, error) {
	countStr, ok := params["count"]
	if !ok {
		return nil, fmt.Errorf("set_children requires 'count' parameter")
	}
	count, err := strconv.Atoi(countStr)
	if err != nil {
		return nil, fmt.Errorf("invalid count value: %w", err)
	}
	return &SetChildren{Count: count}, nil
}

func createAdjustAmount(params map[string]string) (RequestTransform, error) {
	deltaStr, hasDelta := params["delta"]
	percentStr, hasPercent := params["percent"]
	if hasDelta == hasPercent {
		return nil, fmt.Errorf("adjust_amount requires exactly one of 'delta' or 'percent'")
	}

	if hasDelta {
		delta, err := decimal.NewFromString(deltaStr)
		if err != nil {
			return nil, fmt.Errorf("invalid delta value: %w", err)
		}
		return &AdjustAmount{Delta: delta}, nil
	}

	percent, err := decimal.NewFromString(percentStr)
	if err != nil {
		return nil, fmt.Errorf("invalid percent value: %w", err)
	}
	return &AdjustAmount{Percent: percent}, nil
}

func createMoveCanton(params map[string]string) (RequestTransform, error) {
	canton, ok := params["canton"]
	if !ok {
		return nil, fmt.Errorf("move_canton requires 'canton' parameter")
	}
	return &MoveCanton{Canton: canton}, nil
}

func createSetMultiplier(params map[string]string) (RequestTransform, error) {
	level, ok := params["level"]
	if !ok {
		return nil, fmt.Errorf("set_multiplier requires 'level' parameter")
	}
	valueStr, ok := params["value"]
	if !ok {
		return nil, fmt.Errorf("set_multiplier requires 'value' parameter")
	}
	value, err := decimal.NewFromString(valueStr)
	if err != nil {
		return nil, fmt.Errorf("invalid multiplier value: %w", err)
	}
	return &SetMultiplier{Level: level, Value: value}, nil
}

func createSetTaxYear(params map[string]string) (RequestTransform, error) {
	yearStr, ok := params["year"]
	if !ok {
		return nil, fmt.Errorf("set_tax_year requires 'year' parameter")
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return nil, fmt.Errorf("invalid year value: %w", err)
	}
	return &SetTaxYear{Year: year}, nil
}
