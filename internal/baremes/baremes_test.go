package baremes_test

import (
	"os"
	"path/filepath"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payroll-engine/internal/baremes"
	"payroll-engine/internal/fixtures"
	"payroll-engine/internal/model/payerr"
)

func TestRateSpec_Decode(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want baremes.Rate
	}{
		{name: "scalar", raw: `0.069`, want: baremes.Scalar(0.069)},
		{name: "null", raw: `null`, want: nil},
		{name: "headcount", raw: `{"taux_moins_50": 0.001, "taux_50_et_plus": 0.005}`, want: baremes.HeadcountConditional{Below: 0.001, Above: 0.005, Threshold: 50}},
		{name: "region", raw: `{"metropole": 0, "alsace_moselle": 0.013}`, want: baremes.RegionConditional{AlsaceMoselle: 0.013}},
		{name: "csg split", raw: `{"deductible": 0.068, "non_deductible": 0.029}`, want: baremes.CsgSplit{Deductible: 0.068, NonDeductible: 0.029}},
		{name: "smic conditional", raw: `{"reduit": 0.07, "plein": 0.13, "seuil_smic": 2.25}`, want: baremes.SmicConditional{Reduced: 0.07, Full: 0.13, SmicMultiple: 2.25}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var spec baremes.RateSpec
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &spec))
			assert.Equal(t, tt.want, spec.Rate)
			assert.Equal(t, tt.want == nil, spec.IsNull())
		})
	}
}

func TestRateSpec_UnknownShapes(t *testing.T) {
	for _, raw := range []string{`{"taux_moins_11": 0.01}`, `{"taux_moins_x": 0.01, "taux_x_et_plus": 0.02}`, `{"forfait": 12}`, `"7%"`} {
		var spec baremes.RateSpec
		assert.Error(t, json.Unmarshal([]byte(raw), &spec), raw)
	}
}

func TestRateSpec_EncodesBackToTheSameShape(t *testing.T) {
	spec := baremes.RateSpec{Rate: baremes.HeadcountConditional{Below: 0.0068, Above: 0.0088, Threshold: 11}}

	b, err := json.Marshal(spec)
	require.NoError(t, err)
	assert.JSONEq(t, `{"taux_moins_11": 0.0068, "taux_11_et_plus": 0.0088}`, string(b))

	var back baremes.RateSpec
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, spec, back)
}

func TestDecode_Fixtures(t *testing.T) {
	tables, err := baremes.Decode(fixtures.TableFiles())
	require.NoError(t, err)

	assert.Equal(t, 11.88, tables.Smic.Hourly)
	assert.Equal(t, 1801.84, tables.Smic.Monthly())
	assert.InDelta(t, 10.692, tables.Smic.HourlyForAge(17), 1e-9)
	assert.InDelta(t, 9.504, tables.Smic.HourlyForAge(16), 1e-9)
	assert.Equal(t, 11.88, tables.Smic.HourlyForAge(30))

	_, ok := tables.Contribution(baremes.IDMaladie)
	assert.True(t, ok)
	_, ok = tables.Contribution("taxe_sur_les_yachts")
	assert.False(t, ok)
}

func TestDecode_Errors(t *testing.T) {
	files := fixtures.TableFiles()
	delete(files, baremes.FileSmic)
	_, err := baremes.Decode(files)
	require.Error(t, err)
	assert.Equal(t, payerr.KindConfigMissing, payerr.KindOf(err))

	files = fixtures.TableFiles()
	files[baremes.FileCeilings] = []byte(`{"pss": {"mensuel": "3925"}}`)
	_, err = baremes.Decode(files)
	assert.Equal(t, payerr.KindConfigInvalid, payerr.KindOf(err))

	files = fixtures.TableFiles()
	files[baremes.FileContributions] = []byte(`{"cotisations": [{"id": "x", "salarial": {"bizarre": 1}}]}`)
	_, err = baremes.Decode(files)
	assert.Equal(t, payerr.KindConfigInvalid, payerr.KindOf(err))

	files = fixtures.TableFiles()
	delete(files, baremes.FileConventions)
	tables, err := baremes.Decode(files)
	require.NoError(t, err)
	assert.Empty(t, tables.Conventions)
}

func TestLookups(t *testing.T) {
	tables := fixtures.Tables()

	perHour, ok := tables.Overtime.EmployerDeductionFor(10)
	assert.True(t, ok)
	assert.Equal(t, 1.5, perHour)
	perHour, _ = tables.Overtime.EmployerDeductionFor(20)
	assert.Equal(t, 0.5, perHour)
	_, ok = tables.Overtime.EmployerDeductionFor(250)
	assert.False(t, ok)

	rate, ok := tables.Withholding.NeutralRate("metropole", 1622.3)
	assert.True(t, ok)
	assert.Equal(t, 0.005, rate)
	rate, _ = tables.Withholding.NeutralRate("metropole", 100000)
	assert.Equal(t, 0.43, rate)
	_, ok = tables.Withholding.NeutralRate("guyane", 1622.3)
	assert.False(t, ok)

	metal, ok := tables.Convention("3248")
	require.True(t, ok)
	assert.Equal(t, 0.09, metal.Seniority.RateFor(10.5))
	assert.Zero(t, metal.Seniority.RateFor(2.9))
	minimum, ok := metal.MinimumFor(350)
	assert.True(t, ok)
	assert.Equal(t, 2100.0, minimum)
	_, ok = metal.MinimumFor(100)
	assert.False(t, ok)
}

func TestRegistry_LoadCachesFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, fixtures.WriteTables(dir))
	reg := baremes.NewRegistry(dir)

	first, err := reg.Load()
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(dir, baremes.FileSmic)))
	second, err := reg.Load()
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Equal(t, first.Smic, second.Smic)

	reg.Reset()
	_, err = reg.Load()
	require.Error(t, err)
	assert.Equal(t, payerr.KindConfigMissing, payerr.KindOf(err))
}

func TestRegistry_OptionalFilesMayBeAbsent(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, fixtures.WriteTables(dir))
	require.NoError(t, os.Remove(filepath.Join(dir, baremes.FileBonuses)))

	tables, err := baremes.NewRegistry(dir).Load()
	require.NoError(t, err)
	assert.Empty(t, tables.Bonuses)
}
