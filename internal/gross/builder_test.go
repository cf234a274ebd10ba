package gross

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payroll-engine/internal/fixtures"
	"payroll-engine/internal/hours"
	"payroll-engine/internal/leave"
	"payroll-engine/internal/model"
	"payroll-engine/internal/money"
	"payroll-engine/internal/paycontext"
	"payroll-engine/internal/period"
	"payroll-engine/internal/sources"
)

var march = model.YearMonth{Year: 2025, Month: 3}

func build(t *testing.T, b *sources.Bundle) *Result {
	t.Helper()
	c, _, err := paycontext.New(b)
	require.NoError(t, err)
	events := hours.Analyze(hours.Input{Planned: c.Planned, Actual: c.Actual, WeeklyHours: c.WeeklyHours(), Month: c.Month}).Events
	p, err := period.Resolve(c.Company.Payroll.PayPeriod, c.Month)
	require.NoError(t, err)
	res, _ := Build(c, events, p)
	for _, l := range res.Lines {
		require.True(t, money.IsCents(l.Gain) && money.IsCents(l.Loss), "line not in cents: %+v", l)
	}
	return res
}

func line(t *testing.T, res *Result, label string) model.GrossLine {
	t.Helper()
	for _, l := range res.Lines {
		if l.Label == label {
			return l
		}
	}
	t.Fatalf("no line %q in %+v", label, res.Lines)
	return model.GrossLine{}
}

func TestBuild_FullTimeMonth(t *testing.T) {
	res := build(t, fixtures.Bundle(march, fixtures.Contract(35, 2000), fixtures.Company(10)))

	require.Len(t, res.Lines, 1)
	assert.Equal(t, LabelBaseSalary, res.Lines[0].Label)
	assert.Equal(t, 151.67, res.Lines[0].Quantity)
	assert.Equal(t, 2000.0, res.Lines[0].Gain)
	assert.Equal(t, 2000.0, res.Total)
	assert.Zero(t, res.OvertimeGross)
	assert.Zero(t, res.OvertimeHours)
	assert.Equal(t, 151.67, res.MonthPaidHours())
	assert.Equal(t, 1.25, res.SeniorityYears)
}

func TestBuild_StructuralOvertime(t *testing.T) {
	res := build(t, fixtures.Bundle(march, fixtures.Contract(39, 2200), fixtures.Company(10)))

	assert.Equal(t, 1925.05, line(t, res, LabelBaseSalary).Gain)
	structural := line(t, res, LabelStructuralOvertime)
	assert.Equal(t, 274.95, structural.Gain)
	assert.Equal(t, 17.33, structural.Quantity)
	subtotal := line(t, res, LabelContractualSubtotal)
	assert.True(t, subtotal.Subtotal)

	assert.Equal(t, 2200.0, res.Total, "subtotal marker must not be counted")
	assert.Equal(t, 274.95, res.OvertimeGross)
	assert.Equal(t, 17.33, res.OvertimeHours)
	assert.Equal(t, 169.0, res.MonthPaidHours())
}

func TestBuild_ConjuncturalOvertime(t *testing.T) {
	b := fixtures.Bundle(march, fixtures.Contract(35, 2000), fixtures.Company(10))
	sched := fixtures.Schedule(b, march)
	for _, d := range []int{10, 11, 12, 13, 14} {
		fixtures.SetWorked(sched, d, model.Ptr(10.0))
	}

	res := build(t, b)

	assert.Equal(t, 131.87, line(t, res, LabelOvertime25).Gain)
	assert.Equal(t, 138.46, line(t, res, LabelOvertime50).Gain)
	assert.Equal(t, 2270.33, res.Total)
	assert.Equal(t, 270.33, res.OvertimeGross)
	assert.Equal(t, 15.0, res.OvertimeHours)
	assert.Equal(t, 166.67, res.MonthPaidHours())
}

func TestBuild_UnjustifiedAbsenceOnStructuralHours(t *testing.T) {
	b := fixtures.Bundle(march, fixtures.Contract(39, 2200), fixtures.Company(10))
	fixtures.SetWorked(fixtures.Schedule(b, march), 14, nil)

	res := build(t, b)

	assert.Equal(t, 48.23, line(t, res, "Absence injustifiée du 14/03/2025").Loss)
	assert.Equal(t, 63.46, line(t, res, "Absence injustifiée (heures supplémentaires à 25 %) du 14/03/2025").Loss)
	assert.Equal(t, 2088.31, res.Total)
	assert.Equal(t, 211.49, res.OvertimeGross)
	assert.Equal(t, 13.33, res.OvertimeHours)
}

func TestBuild_PaidLeave(t *testing.T) {
	tests := []struct {
		name       string
		reference  float64
		wantMethod leave.Method
		wantLabel  string
		wantGain   float64
		wantTotal  float64
	}{
		{name: "no reference gross", wantMethod: leave.MethodMaintenance, wantLabel: LabelLeaveMaintenance, wantGain: 461.53, wantTotal: 2000},
		{name: "tenth is more favourable", reference: 30000, wantMethod: leave.MethodTenth, wantLabel: LabelLeaveTenth, wantGain: 500, wantTotal: 2038.47},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := fixtures.Bundle(march, fixtures.Contract(35, 2000), fixtures.Company(10))
			b.Cumuls = &model.CumulsFile{
				Period: model.CumulsPeriod{Year: 2025, LastMonth: 2},
				Totals: model.Cumuls{ReferenceGross: tt.reference},
			}
			cal, sched := fixtures.Calendar(b, march), fixtures.Schedule(b, march)
			for _, d := range []int{10, 11, 12, 13, 14} {
				fixtures.SetPlanned(cal, d, model.DayPaidLeave, model.Ptr(7.0))
				fixtures.SetWorked(sched, d, nil)
			}

			res := build(t, b)

			require.NotNil(t, res.Leave)
			assert.Equal(t, 5, res.LeaveDays)
			assert.Equal(t, tt.wantMethod, res.Leave.Method)
			assert.Equal(t, 461.53, line(t, res, LabelLeaveRetention).Loss)
			assert.Equal(t, tt.wantGain, line(t, res, tt.wantLabel).Gain)
			assert.Equal(t, tt.wantTotal, res.Total)
		})
	}
}

func TestBuild_UnpaidAbsence(t *testing.T) {
	b := fixtures.Bundle(march, fixtures.Contract(35, 2000), fixtures.Company(10))
	fixtures.SetPlanned(fixtures.Calendar(b, march), 12, model.DayUnpaidAbsence, model.Ptr(7.0))
	fixtures.SetWorked(fixtures.Schedule(b, march), 12, nil)

	res := build(t, b)

	assert.Equal(t, 92.31, line(t, res, "Absence non rémunérée du 12/03/2025").Loss)
	assert.Equal(t, 1907.69, res.Total)
}

func TestBuild_BonusesSeniorityAndBenefits(t *testing.T) {
	contract := fixtures.Contract(35, 2000, fixtures.HiredOn("2015-01-01"), fixtures.Convention("3248", 240))
	contract.Pay.BenefitsInKind.Meals.PerMonth = 10
	contract.Pay.BenefitsInKind.Housing = model.HousingBenefit{Granted: true, Rooms: 2}
	b := fixtures.Bundle(march, contract, fixtures.Company(10))
	b.Saisies = &model.SaisiesFile{Bonuses: []model.Bonus{
		{ID: "PRIME_EXC", Amount: 300},
		{ID: "PRIME_PPV", Amount: 200},
	}}

	res := build(t, b)

	assert.Equal(t, 10.25, res.SeniorityYears)
	seniority := line(t, res, LabelSeniority)
	assert.Equal(t, 0.09, seniority.Rate)
	assert.Equal(t, 166.5, seniority.Gain)
	assert.Equal(t, 300.0, line(t, res, "Prime exceptionnelle").Gain)
	assert.Equal(t, 202.3, line(t, res, LabelBenefitsInKind).Gain)
	assert.Equal(t, 202.3, res.BenefitsInKind)

	require.Len(t, res.UntaxedBonuses, 1)
	assert.Equal(t, "PRIME_PPV", res.UntaxedBonuses[0].ID)
	assert.Equal(t, 200.0, res.UntaxedBonuses[0].Amount)

	assert.Equal(t, 2668.8, res.Total)
}

func TestBuild_BonusOverridesCatalogue(t *testing.T) {
	b := fixtures.Bundle(march, fixtures.Contract(35, 2000), fixtures.Company(10))
	b.Saisies = &model.SaisiesFile{Bonuses: []model.Bonus{
		{ID: "PRIME_EXC", Amount: 300, SocialBased: model.Ptr(false)},
	}}

	res := build(t, b)

	assert.Equal(t, 2000.0, res.Total)
	require.Len(t, res.UntaxedBonuses, 1)
	assert.Equal(t, "Prime exceptionnelle", res.UntaxedBonuses[0].Label)
}

func TestHousingForfait(t *testing.T) {
	scale := fixtures.Company(10).Payroll.BenefitsInKind.HousingScale

	assert.Equal(t, 77.6, housingForfait(scale, 1500, 1))
	assert.InDelta(t, 90.6+2*58.2, housingForfait(scale, 2318, 3), 1e-9)
	assert.InDelta(t, 103.8+77.6, housingForfait(scale, 5000, 2), 1e-9)
	assert.Zero(t, housingForfait(nil, 5000, 2))
}
