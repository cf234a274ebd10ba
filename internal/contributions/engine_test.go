package contributions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payroll-engine/internal/baremes"
	"payroll-engine/internal/fixtures"
	"payroll-engine/internal/model"
	"payroll-engine/internal/money"
	"payroll-engine/internal/paycontext"
	"payroll-engine/internal/sources"
)

var march = model.YearMonth{Year: 2025, Month: 3}

func newContext(t *testing.T, contract *model.Contract, headcount int, edit ...func(*sources.Bundle)) *paycontext.Context {
	t.Helper()
	b := fixtures.Bundle(march, contract, fixtures.Company(headcount))
	for _, fn := range edit {
		fn(b)
	}
	c, _, err := paycontext.New(b)
	require.NoError(t, err)
	return c
}

func find(res *Result, id string) (model.ContributionLine, bool) {
	for _, l := range res.Lines {
		if l.ID == id {
			return l, true
		}
	}
	return model.ContributionLine{}, false
}

func mustFind(t *testing.T, res *Result, id string) model.ContributionLine {
	t.Helper()
	l, ok := find(res, id)
	require.True(t, ok, "no %s line", id)
	return l
}

func TestCompute_NonCadreStandardMonth(t *testing.T) {
	c := newContext(t, fixtures.Contract(35, 2000), 10)

	res, msgs := Compute(c, Input{Gross: 2000})

	assert.Empty(t, msgs)
	assert.Equal(t, 434.98, res.TotalEmployee)
	assert.Equal(t, 710.12, res.TotalEmployer)
	assert.Equal(t, 57.28, res.CSGNonDeductible)
	assert.Equal(t, 1975.0, res.Assiettes.CSGNormal)
	assert.Len(t, res.Lines, 18)

	assert.Equal(t, 138.0, mustFind(t, res, baremes.IDRetraiteSecuPlafond).EmployeeAmount)
	assert.Equal(t, 134.3, mustFind(t, res, IDCSGDeductible).EmployeeAmount)
	assert.Equal(t, 10.0, mustFind(t, res, baremes.IDPrevoyanceNonCadre).EmployerAmount)
	assert.Equal(t, 16.8, mustFind(t, res, baremes.IDATMP).EmployerAmount)

	for _, id := range []string{baremes.IDAPEC, "retraite_comp_t2", "cet", IDCSGOvertime, IDOvertimeEmployee} {
		_, ok := find(res, id)
		assert.False(t, ok, "unexpected %s line", id)
	}
	for _, l := range res.Lines {
		assert.True(t, money.IsCents(l.EmployeeAmount) && money.IsCents(l.EmployerAmount), "%+v", l)
	}
}

func TestCompute_SmicThresholdsAreInclusive(t *testing.T) {
	c := newContext(t, fixtures.Contract(35, 4000), 10)
	require.Equal(t, 1801.84, c.SmicMonthly())

	tests := []struct {
		name  string
		id    string
		gross float64
		want  float64
	}{
		{name: "maladie at 2.5 smic", id: baremes.IDMaladie, gross: 4504.60, want: 0.07},
		{name: "maladie a cent above", id: baremes.IDMaladie, gross: 4504.61, want: 0.13},
		{name: "allocations at 3.5 smic", id: baremes.IDAllocations, gross: 6306.44, want: 0.0345},
		{name: "allocations a cent above", id: baremes.IDAllocations, gross: 6306.45, want: 0.0525},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, _ := Compute(c, Input{Gross: tt.gross})
			assert.Equal(t, tt.want, *mustFind(t, res, tt.id).EmployerRate)
		})
	}
}

func TestCompute_CadreAboveCeiling(t *testing.T) {
	c := newContext(t, fixtures.Contract(35, 5000, fixtures.Cadre()), 10)

	res, msgs := Compute(c, Input{Gross: 5000})

	assert.Empty(t, msgs)
	assert.Equal(t, 1136.0, res.Assiettes.Tranche2)
	assert.Equal(t, 3864.0, res.Assiettes.CappedGross)
	assert.Equal(t, 5000.0, res.Assiettes.CET)
	assert.Equal(t, 266.62, mustFind(t, res, baremes.IDRetraiteSecuPlafond).EmployeeAmount)
	assert.Equal(t, 110.42, mustFind(t, res, "retraite_comp_t2").EmployeeAmount)
	assert.Equal(t, 1.2, mustFind(t, res, baremes.IDAPEC).EmployeeAmount)
	assert.Equal(t, 57.96, mustFind(t, res, baremes.IDPrevoyanceCadre).EmployerAmount)
	assert.Equal(t, 0.13, *mustFind(t, res, baremes.IDMaladie).EmployerRate)
	assert.Equal(t, 1087.82, res.TotalEmployee)
	assert.Equal(t, 2124.43, res.TotalEmployer)
}

func TestCompute_HeadcountAndRegion(t *testing.T) {
	t.Run("large company", func(t *testing.T) {
		c := newContext(t, fixtures.Contract(35, 2000), 60)
		res, _ := Compute(c, Input{Gross: 2000})
		assert.Equal(t, 0.005, *mustFind(t, res, baremes.IDFNAL).EmployerRate)
		assert.Equal(t, 0.01, *mustFind(t, res, baremes.IDCFP).EmployerRate)
	})

	t.Run("alsace moselle", func(t *testing.T) {
		c := newContext(t, fixtures.Contract(35, 2000, fixtures.AlsaceMoselle()), 10)
		res, _ := Compute(c, Input{Gross: 2000})
		assert.Equal(t, 26.0, mustFind(t, res, baremes.IDMaladie).EmployeeAmount)
		assert.Equal(t, 0.0044, *mustFind(t, res, baremes.IDApprentissage).EmployerRate)
		_, ok := find(res, baremes.IDApprentissageSolde)
		assert.False(t, ok, "zero solde is dropped")
	})
}

func TestCompute_Overtime(t *testing.T) {
	c := newContext(t, fixtures.Contract(35, 2000), 10)

	res, _ := Compute(c, Input{Gross: 2270.33, OvertimeGross: 270.33, OvertimeHours: 15})

	assert.Equal(t, 1976.35, res.Assiettes.CSGNormal)
	assert.Equal(t, 265.6, res.Assiettes.CSGOvertime)
	hs := mustFind(t, res, IDCSGOvertime)
	assert.InDelta(t, 0.097, *hs.EmployeeRate, 1e-12)
	assert.Equal(t, 25.76, hs.EmployeeAmount)
	assert.Equal(t, 83.07, res.CSGNonDeductible)

	assert.Equal(t, -30.57, mustFind(t, res, IDOvertimeEmployee).EmployeeAmount)
	assert.Equal(t, -22.5, mustFind(t, res, IDOvertimeEmployer).EmployerAmount)
	assert.Equal(t, 463.18, res.TotalEmployee)
	assert.Equal(t, 783.6, res.TotalEmployer)
}

func TestCompute_Mutuelle(t *testing.T) {
	contract := fixtures.Contract(35, 2000)
	contract.Specifics.Mutuelle = model.Mutuelle{Member: true, Lines: []model.MutuelleLine{
		{Label: "Mutuelle base", EmployeeAmount: 30, EmployerAmount: 40, EmployerCSGBased: true},
		{Label: "Mutuelle option", EmployeeAmount: 5, EmployerAmount: 10},
	}}
	c := newContext(t, contract, 10)

	res, _ := Compute(c, Input{Gross: 2000})

	assert.Equal(t, 2015.0, res.Assiettes.CSGNormal)
	assert.Equal(t, 50.0, res.EmployerMutuelle)
	assert.Equal(t, 58.44, res.CSGNonDeductible)
	assert.Equal(t, 473.86, res.TotalEmployee)
	assert.Equal(t, 760.12, res.TotalEmployer)

	l := mustFind(t, res, baremes.IDMutuelle)
	assert.Nil(t, l.Base)
	assert.Nil(t, l.EmployeeRate)
	assert.Nil(t, l.EmployerRate)
}

func TestCompute_CadrePrevoyanceLines(t *testing.T) {
	contract := fixtures.Contract(35, 4000, fixtures.Cadre())
	contract.Specifics.Prevoyance = model.Prevoyance{Member: true, Lines: []model.PrevoyanceLine{
		{Label: "Prévoyance cadre", Base: "brut_plafonne", EmployeeRate: 0.01, EmployerRate: 0.02, ForfaitSocial: model.Ptr(0.08)},
	}}
	c := newContext(t, contract, 10)

	res, _ := Compute(c, Input{Gross: 4000})

	prev := mustFind(t, res, baremes.IDPrevoyanceCadre)
	assert.Equal(t, 38.64, prev.EmployeeAmount)
	assert.Equal(t, 77.28, prev.EmployerAmount)
	assert.Equal(t, 6.18, mustFind(t, res, IDForfaitSocial).EmployerAmount)
	assert.Equal(t, 4007.28, res.Assiettes.CSGNormal)
	assert.Equal(t, 919.4, res.TotalEmployee)
	assert.Equal(t, 1494.01, res.TotalEmployer)
}

func TestCompute_MissingRuleIsAWarning(t *testing.T) {
	c := newContext(t, fixtures.Contract(35, 2000), 10, func(b *sources.Bundle) {
		tables := *b.Tables
		tables.Contributions = nil
		for _, rule := range b.Tables.Contributions {
			if rule.ID != baremes.IDCSA {
				tables.Contributions = append(tables.Contributions, rule)
			}
		}
		b.Tables = &tables
	})

	res, msgs := Compute(c, Input{Gross: 2000})

	require.Len(t, msgs, 1)
	assert.Equal(t, paycontext.CodeRateLookupFailed, msgs[0].Code)
	assert.Equal(t, model.LevelWarning, msgs[0].Level)
	assert.Equal(t, 704.12, res.TotalEmployer)
}
