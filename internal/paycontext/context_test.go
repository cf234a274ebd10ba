package paycontext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payroll-engine/internal/fixtures"
	"payroll-engine/internal/model"
	"payroll-engine/internal/model/payerr"
	"payroll-engine/internal/sources"
)

var march = model.YearMonth{Year: 2025, Month: 3}

func bundle(contract *model.Contract) *sources.Bundle {
	b := fixtures.Bundle(march, contract, fixtures.Company(10))
	b.Cumuls = &model.CumulsFile{Period: model.CumulsPeriod{Year: 2025, LastMonth: 2}}
	return b
}

func codes(msgs []model.CalculationMessage) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.Code)
	}
	return out
}

func TestNew_StandardContext(t *testing.T) {
	c, msgs, err := New(bundle(fixtures.Contract(35, 2000)))

	require.NoError(t, err)
	assert.Empty(t, msgs)
	assert.Equal(t, 10, c.Headcount())
	assert.False(t, c.IsCadre())
	assert.Equal(t, 35.0, c.WeeklyHours())
	assert.Equal(t, 3864.0, c.MonthlyCeiling())
	assert.Equal(t, "2025-03-31", c.ReferenceDate().Format("2006-01-02"))
	assert.NotEmpty(t, c.Planned)
	assert.NotEmpty(t, c.Actual)
}

func TestNew_OpeningCumuls(t *testing.T) {
	t.Run("missing cumuls start from zero", func(t *testing.T) {
		b := bundle(fixtures.Contract(35, 2000))
		b.Cumuls = nil

		c, msgs, err := New(b)

		require.NoError(t, err)
		assert.Equal(t, []string{CodeCumulsMissing}, codes(msgs))
		assert.Equal(t, model.Cumuls{}, c.Cumuls())
	})

	t.Run("same year totals carry over", func(t *testing.T) {
		b := bundle(fixtures.Contract(35, 2000))
		b.Cumuls.Totals = model.Cumuls{GrossTotal: 4000, PaidHours: 303.34, ReferenceGross: 24000}

		c, _, err := New(b)

		require.NoError(t, err)
		assert.Equal(t, b.Cumuls.Totals, c.Cumuls())
	})

	t.Run("previous year totals become the reference gross", func(t *testing.T) {
		b := fixtures.Bundle(model.YearMonth{Year: 2025, Month: 1}, fixtures.Contract(35, 2000), fixtures.Company(10))
		b.Cumuls = &model.CumulsFile{
			Period: model.CumulsPeriod{Year: 2024, LastMonth: 12},
			Totals: model.Cumuls{GrossTotal: 24000, PaidHours: 1820, GeneralReduction: -5868},
		}

		c, _, err := New(b)

		require.NoError(t, err)
		assert.Equal(t, model.Cumuls{ReferenceGross: 24000}, c.Cumuls())
	})
}

func TestNew_ContractFailures(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*model.Contract)
		kind  payerr.Kind
		field string
	}{
		{
			name:  "missing weekly hours",
			edit:  func(c *model.Contract) { c.Employment.WorkingTime.WeeklyHours = nil },
			kind:  payerr.KindContractIncomplete,
			field: "contrat.temps_travail.duree_hebdomadaire",
		},
		{
			name:  "weekly hours out of range",
			edit:  func(c *model.Contract) { c.Employment.WorkingTime.WeeklyHours = model.Ptr(50.0) },
			kind:  payerr.KindConfigInvalid,
			field: "contrat.temps_travail.duree_hebdomadaire",
		},
		{
			name:  "missing base salary",
			edit:  func(c *model.Contract) { c.Pay.BaseSalary.Value = nil },
			kind:  payerr.KindContractIncomplete,
			field: "remuneration.salaire_de_base.valeur",
		},
		{
			name:  "unknown status",
			edit:  func(c *model.Contract) { c.Employment.Status = "Stagiaire" },
			kind:  payerr.KindConfigInvalid,
			field: "contrat.statut",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			contract := fixtures.Contract(35, 2000)
			tt.edit(contract)

			_, _, err := New(bundle(contract))

			var pe *payerr.Error
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.kind, pe.Kind)
			assert.Equal(t, tt.field, pe.Field)
		})
	}
}

func TestNew_MinimumPayWarnings(t *testing.T) {
	tests := []struct {
		name     string
		contract *model.Contract
		want     []string
	}{
		{name: "below smic", contract: fixtures.Contract(35, 1500), want: []string{CodeSmicNotMet}},
		{name: "below convention minimum", contract: fixtures.Contract(35, 2000, fixtures.Convention("3248", 300)), want: []string{CodeConventionMinimum}},
		{name: "unknown convention", contract: fixtures.Contract(35, 2000, fixtures.Convention("9999", 300)), want: []string{CodeConventionNotFound}},
		{name: "part time prorates the minimum", contract: fixtures.Contract(28, 1700, fixtures.Convention("3248", 300)), want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, msgs, err := New(bundle(tt.contract))

			require.NoError(t, err)
			assert.Equal(t, tt.want, codes(msgs))
		})
	}
}

func TestAccessors(t *testing.T) {
	contract := fixtures.Contract(35, 2000)
	contract.Pay.VariableElements = []model.Bonus{{ID: "prime_objectifs", Amount: 300}}
	b := bundle(contract)
	b.Company.Convention.IDCC = "1486"
	b.Saisies = &model.SaisiesFile{Bonuses: []model.Bonus{{ID: "prime_exceptionnelle", Amount: 150}}, Advance: model.Ptr(200.0)}

	c, _, err := New(b)
	require.NoError(t, err)

	assert.Equal(t, "1486", c.ConventionID())
	contract.Pay.Classification.IDCC = "3248"
	assert.Equal(t, "3248", c.ConventionID())

	bonuses := c.Bonuses()
	require.Len(t, bonuses, 2)
	assert.Equal(t, "prime_objectifs", bonuses[0].ID)
	assert.Equal(t, "prime_exceptionnelle", bonuses[1].ID)
	assert.Equal(t, 200.0, c.Advance())
}
