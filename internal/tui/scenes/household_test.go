package scenes

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgehrsitz/cantontax/internal/domain"
	"github.com/rgehrsitz/cantontax/internal/tui/tuimsg"
)

func TestHouseholdModel_Defaults(t *testing.T) {
	m := NewHouseholdModel(2024)

	entity, req, err := m.ParseRequest()
	require.NoError(t, err)
	assert.Equal(t, domain.EntityIncome, entity)
	assert.Equal(t, "ZH", req.Canton)
	assert.Equal(t, 2024, req.TaxYear)
	assert.Equal(t, domain.Single, req.MaritalStatus)
	assert.Equal(t, "100000.00", req.Amount.StringFixed(2))
	assert.Nil(t, req.MunicipalMultiplier)
	assert.Nil(t, req.MunicipalIndexation)
}

func TestHouseholdModel_ParseRequest(t *testing.T) {
	m := NewHouseholdModel(2025)
	m.SetValue(FieldCanton, " vs ")
	m.SetValue(FieldEntity, "Wealth")
	m.SetValue(FieldStatus, "married")
	m.SetValue(FieldChildren, "2")
	m.SetValue(FieldAmount, "1'250'000.50")
	m.SetValue(FieldMunicipalMultiplier, "1.2")
	m.SetValue(FieldMunicipalIndexation, "1.1")

	entity, req, err := m.ParseRequest()
	require.NoError(t, err)
	assert.Equal(t, domain.EntityWealth, entity)
	assert.Equal(t, "VS", req.Canton)
	assert.Equal(t, domain.Married, req.MaritalStatus)
	assert.Equal(t, 2, req.Children)
	assert.Equal(t, "1250000.50", req.Amount.StringFixed(2))
	require.NotNil(t, req.MunicipalMultiplier)
	assert.Equal(t, "1.2", req.MunicipalMultiplier.String())
	require.NotNil(t, req.MunicipalIndexation)
	assert.Equal(t, "1.1", req.MunicipalIndexation.String())
}

func TestHouseholdModel_ParseRequestErrors(t *testing.T) {
	tests := []struct {
		name  string
		field int
		value string
		want  string
	}{
		{"missing canton", FieldCanton, "", "canton is required"},
		{"bad year", FieldTaxYear, "next", "invalid tax year"},
		{"bad entity", FieldEntity, "property", "entity must be income or wealth"},
		{"bad status", FieldStatus, "divorced", "invalid marital status"},
		{"negative children", FieldChildren, "-1", "children must be"},
		{"empty amount", FieldAmount, "", "amount is required"},
		{"bad amount", FieldAmount, "lots", "invalid amount"},
		{"bad multiplier", FieldMunicipalMultiplier, "x", "invalid municipal multiplier"},
		{"bad indexation", FieldMunicipalIndexation, "y", "invalid municipal indexation"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewHouseholdModel(2025)
			m.SetValue(tt.field, tt.value)
			_, _, err := m.ParseRequest()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestHouseholdModel_FocusNavigation(t *testing.T) {
	m := NewHouseholdModel(2025)
	assert.Equal(t, FieldCanton, m.Focused())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, FieldTaxYear, m.Focused())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, FieldEntity, m.Focused())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, FieldCanton, m.Focused())

	// wraps around
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, FieldMunicipalIndexation, m.Focused())
}

func TestHouseholdModel_Typing(t *testing.T) {
	m := NewHouseholdModel(2025)
	m.SetValue(FieldCanton, "")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("zg")})
	assert.Equal(t, "zg", m.Value(FieldCanton))

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("xxxxxx")})
	assert.Equal(t, "zgxxxx", m.Value(FieldCanton))
}

func TestHouseholdModel_PaddedCanton(t *testing.T) {
	for _, input := range []string{" vs ", "  zg  ", "ge "} {
		m := NewHouseholdModel(2024)
		m.SetValue(FieldCanton, input)
		m.SetValue(FieldMunicipalMultiplier, "1.2")
		m.SetValue(FieldMunicipalIndexation, "1.1")

		_, req, err := m.ParseRequest()
		require.NoError(t, err, input)
		assert.Len(t, req.Canton, 2, input)
	}
}

func TestHouseholdModel_Submit(t *testing.T) {
	m := NewHouseholdModel(2025)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	calc, ok := cmd().(tuimsg.CalculateRequestedMsg)
	require.True(t, ok)
	assert.Equal(t, "ZH", calc.Request.Canton)
	assert.Equal(t, domain.EntityIncome, calc.Entity)

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	require.NotNil(t, cmd)
	_, ok = cmd().(tuimsg.RankRequestedMsg)
	assert.True(t, ok)
}

func TestHouseholdModel_SubmitInvalid(t *testing.T) {
	m := NewHouseholdModel(2025)
	m.SetValue(FieldStatus, "widowed")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	require.Error(t, m.Err())
	assert.Contains(t, m.View(), "invalid marital status")
}

func TestHouseholdModel_View(t *testing.T) {
	view := NewHouseholdModel(2025).View()

	for _, label := range fieldLabels {
		assert.Contains(t, view, label)
	}
	assert.Contains(t, view, "Ctrl+R rank all cantons")
}
