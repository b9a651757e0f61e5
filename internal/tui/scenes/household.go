package scenes

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/cantontax/internal/calculation"
	"github.com/rgehrsitz/cantontax/internal/domain"
	"github.com/rgehrsitz/cantontax/internal/tui/tuimsg"
	"github.com/rgehrsitz/cantontax/internal/tui/tuistyles"
)

// Field indexes of the household form
const (
	FieldCanton = iota
	FieldTaxYear
	FieldEntity
	FieldStatus
	FieldChildren
	FieldAmount
	FieldMunicipalMultiplier
	FieldMunicipalIndexation
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"Canton",
	"Tax year",
	"Income or wealth",
	"Marital status",
	"Children",
	"Amount (CHF)",
	"Municipal multiplier",
	"Municipal indexation",
}

// HouseholdModel is the form describing the household to calculate
type HouseholdModel struct {
	inputs  []textinput.Model
	focused int
	err     error
	width   int
	height  int
}

// NewHouseholdModel creates the form with sensible defaults
func NewHouseholdModel(taxYear int) *HouseholdModel {
	defaults := [fieldCount]string{"ZH", strconv.Itoa(taxYear), "income", "single", "0", "100000", "", ""}
	placeholders := [fieldCount]string{"e.g. ZH", "e.g. 2025", "income or wealth", "single or married", "0", "e.g. 100'000", "canton default", "required for VS"}

	m := &HouseholdModel{inputs: make([]textinput.Model, fieldCount)}
	for i := range m.inputs {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		ti.CharLimit = 16
		ti.Width = 20
		ti.SetValue(defaults[i])
		m.inputs[i] = ti
	}
	m.inputs[FieldCanton].CharLimit = 6
	m.inputs[FieldCanton].Focus()
	return m
}

// SetSize updates the scene dimensions
func (m *HouseholdModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Focused returns the index of the focused field
func (m *HouseholdModel) Focused() int {
	return m.focused
}

// SetValue replaces the content of one field
func (m *HouseholdModel) SetValue(field int, value string) {
	if field >= 0 && field < fieldCount {
		m.inputs[field].SetValue(value)
	}
}

// Value returns the content of one field
func (m *HouseholdModel) Value(field int) string {
	if field < 0 || field >= fieldCount {
		return ""
	}
	return m.inputs[field].Value()
}

// Err returns the last validation error
func (m *HouseholdModel) Err() error {
	return m.err
}

// Update handles messages for the household form
func (m *HouseholdModel) Update(msg tea.Msg) (*HouseholdModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, key.NewBinding(key.WithKeys("tab", "down"))):
			m.setFocus((m.focused + 1) % fieldCount)
			return m, textinput.Blink

		case key.Matches(msg, key.NewBinding(key.WithKeys("shift+tab", "up"))):
			m.setFocus((m.focused + fieldCount - 1) % fieldCount)
			return m, textinput.Blink

		case key.Matches(msg, key.NewBinding(key.WithKeys("enter"))):
			return m, m.submit(false)

		case key.Matches(msg, key.NewBinding(key.WithKeys("ctrl+r"))):
			return m, m.submit(true)
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focused], cmd = m.inputs[m.focused].Update(msg)
	return m, cmd
}

func (m *HouseholdModel) setFocus(index int) {
	m.inputs[m.focused].Blur()
	m.focused = index
	m.inputs[m.focused].Focus()
}

// submit validates the form and emits a calculation or ranking request
func (m *HouseholdModel) submit(rank bool) tea.Cmd {
	entity, req, err := m.ParseRequest()
	m.err = err
	if err != nil {
		return nil
	}
	return func() tea.Msg {
		if rank {
			return tuimsg.RankRequestedMsg{Entity: entity, Request: req}
		}
		return tuimsg.CalculateRequestedMsg{Entity: entity, Request: req}
	}
}

// ParseRequest converts the form fields into a calculation request
func (m *HouseholdModel) ParseRequest() (domain.Entity, calculation.Request, error) {
	var req calculation.Request

	req.Canton = strings.ToUpper(strings.TrimSpace(m.Value(FieldCanton)))
	if req.Canton == "" {
		return "", req, fmt.Errorf("canton is required")
	}

	year, err := strconv.Atoi(strings.TrimSpace(m.Value(FieldTaxYear)))
	if err != nil {
		return "", req, fmt.Errorf("invalid tax year %q", m.Value(FieldTaxYear))
	}
	req.TaxYear = year

	entity := domain.Entity(strings.ToLower(strings.TrimSpace(m.Value(FieldEntity))))
	if entity != domain.EntityIncome && entity != domain.EntityWealth {
		return "", req, fmt.Errorf("entity must be income or wealth, got %q", m.Value(FieldEntity))
	}

	status, err := domain.ParseMaritalStatus(m.Value(FieldStatus))
	if err != nil {
		return "", req, err
	}
	req.MaritalStatus = status

	children, err := strconv.Atoi(strings.TrimSpace(m.Value(FieldChildren)))
	if err != nil || children < 0 {
		return "", req, fmt.Errorf("children must be a non-negative whole number")
	}
	req.Children = children

	amount, err := domain.ParseAmount(m.Value(FieldAmount))
	if err != nil {
		return "", req, fmt.Errorf("invalid amount: %w", err)
	}
	req.Amount = amount

	if req.MunicipalMultiplier, err = parseOptional(m.Value(FieldMunicipalMultiplier)); err != nil {
		return "", req, fmt.Errorf("invalid municipal multiplier: %w", err)
	}
	if req.MunicipalIndexation, err = parseOptional(m.Value(FieldMunicipalIndexation)); err != nil {
		return "", req, fmt.Errorf("invalid municipal indexation: %w", err)
	}

	return entity, req, nil
}

func parseOptional(s string) (*decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// View renders the household form
func (m *HouseholdModel) View() string {
	var content strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(tuistyles.ColorPrimary)
	content.WriteString(titleStyle.Render("Household"))
	content.WriteString("\n\n")

	for i, input := range m.inputs {
		label := tuistyles.ParameterLabelStyle.Render(fieldLabels[i])
		cursor := "  "
		if i == m.focused {
			cursor = tuistyles.SelectedItemStyle.Render("❯ ")
		}
		content.WriteString(cursor + label + input.View() + "\n")
	}

	if m.err != nil {
		content.WriteString("\n" + tuistyles.ErrorStyle.Render(m.err.Error()) + "\n")
	}

	subtleStyle := lipgloss.NewStyle().Foreground(tuistyles.ColorMuted)
	content.WriteString("\n" + subtleStyle.Render("Tab/↓ next field • Shift+Tab/↑ previous • Enter calculate • Ctrl+R rank all cantons"))

	return tuistyles.BorderStyle.Render(content.String())
}
