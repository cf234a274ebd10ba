// Package fixtures builds in-memory rule tables and employee documents for tests.
package fixtures

import (
	"embed"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"

	"payroll-engine/internal/baremes"
	"payroll-engine/internal/model"
	"payroll-engine/internal/sources"
)

//go:embed baremes/*.json
var baremesFS embed.FS

func TableFiles() map[string][]byte {
	entries, err := baremesFS.ReadDir("baremes")
	if err != nil {
		panic(err)
	}
	files := make(map[string][]byte, len(entries))
	for _, e := range entries {
		b, err := baremesFS.ReadFile(path.Join("baremes", e.Name()))
		if err != nil {
			panic(err)
		}
		files[e.Name()] = b
	}
	return files
}

func Tables() *baremes.Tables {
	t, err := baremes.Decode(TableFiles())
	if err != nil {
		panic(err)
	}
	return t
}

// WriteTables copies the fixture tables into dir.
func WriteTables(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for name, b := range TableFiles() {
		if err := os.WriteFile(filepath.Join(dir, name), b, 0o644); err != nil {
			return err
		}
	}
	return nil
}

type ContractOption func(*model.Contract)

func Cadre() ContractOption {
	return func(c *model.Contract) { c.Employment.Status = model.StatusCadre }
}

func AlsaceMoselle() ContractOption {
	return func(c *model.Contract) { c.Specifics.AlsaceMoselle = true }
}

func WithholdingRate(pct float64) ContractOption {
	return func(c *model.Contract) { c.Specifics.Withholding.Rate = &pct }
}

func HiredOn(date string) ContractOption {
	return func(c *model.Contract) { c.Employment.HireDate = date }
}

func Convention(idcc string, coefficient float64) ContractOption {
	return func(c *model.Contract) {
		c.Pay.Classification.IDCC = idcc
		c.Pay.Classification.Coefficient = coefficient
	}
}

// Contract returns a Non-Cadre CDI with no mutuelle, no prévoyance lines and a 0% PAS rate.
func Contract(weeklyHours, baseSalary float64, opts ...ContractOption) *model.Contract {
	c := &model.Contract{
		Employee: model.Employee{
			LastName:  "Martin",
			FirstName: "Camille",
			NIR:       "2850675123456",
			BirthDate: "1985-06-15",
		},
		Employment: model.Employment{
			HireDate:     "2024-01-01",
			ContractType: "CDI",
			Status:       model.StatusNonCadre,
			JobTitle:     "Technicien",
			WorkingTime: model.WorkingTime{
				WeeklyHours: model.Ptr(weeklyHours),
				PartTime:    weeklyHours < 35,
			},
		},
		Pay: model.Pay{
			BaseSalary: model.BaseSalary{Value: model.Ptr(baseSalary)},
		},
		Specifics: model.PayrollSpecifics{
			Withholding: model.Withholding{Rate: model.Ptr(0.0)},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Company returns a company paying up to the Sunday after the last Friday.
func Company(headcount int) *model.Company {
	return &model.Company{
		Identification: model.CompanyIdentification{
			Name:  "Atelier Durand SAS",
			SIRET: "12345678900012",
		},
		Payroll: model.PayrollParameters{
			Headcount:     headcount,
			SpecificRates: model.SpecificRates{ATMP: 0.0084},
			PayPeriod:     model.PayPeriodRule{ReferenceWeekday: 4, Occurrence: -1},
			BenefitsInKind: model.CompanyBenefitsInKind{
				MealValue: 5.35,
				HousingScale: []model.HousingBracket{
					{MaxPay: model.Ptr(1932.0), OneRoom: 77.6, PerExtraRoom: 41.5},
					{MaxPay: model.Ptr(2318.0), OneRoom: 90.6, PerExtraRoom: 58.2},
					{MaxPay: nil, OneRoom: 103.8, PerExtraRoom: 77.6},
				},
			},
		},
	}
}

// PlannedMonth plans weekly/5 hours Monday to Friday and weekends otherwise.
func PlannedMonth(ym model.YearMonth, weeklyHours float64) model.CalendarFile {
	cal := model.CalendarFile{Period: model.FilePeriod{Year: ym.Year, Month: ym.Month}}
	last := ym.LastDay().Day()
	for d := 1; d <= last; d++ {
		date := time.Date(ym.Year, time.Month(ym.Month), d, 0, 0, 0, 0, time.UTC)
		switch date.Weekday() {
		case time.Saturday, time.Sunday:
			cal.Planned = append(cal.Planned, model.PlannedDay{Day: d, Type: model.DayWeekend})
		default:
			cal.Planned = append(cal.Planned, model.PlannedDay{Day: d, Type: model.DayWork, PlannedHours: model.Ptr(weeklyHours / 5)})
		}
	}
	return cal
}

// ActualFromPlan works exactly the planned hours of every working day.
func ActualFromPlan(cal model.CalendarFile) model.ScheduleFile {
	sched := model.ScheduleFile{Period: cal.Period}
	for _, p := range cal.Planned {
		if p.Type != model.DayWork {
			continue
		}
		sched.Actual = append(sched.Actual, model.ActualDay{Day: p.Day, WorkedHours: model.Ptr(*p.PlannedHours), Type: model.DayWork})
	}
	return sched
}

// SetPlanned replaces the planned record of one day.
func SetPlanned(cal *model.CalendarFile, day int, typ model.DayType, hours *float64) {
	for i := range cal.Planned {
		if cal.Planned[i].Day == day {
			cal.Planned[i].Type = typ
			cal.Planned[i].PlannedHours = hours
			return
		}
	}
	cal.Planned = append(cal.Planned, model.PlannedDay{Day: day, Type: typ, PlannedHours: hours})
}

// SetWorked replaces (or adds) the actual hours of one day; nil removes it.
func SetWorked(sched *model.ScheduleFile, day int, hours *float64) {
	for i := range sched.Actual {
		if sched.Actual[i].Day == day {
			if hours == nil {
				sched.Actual = append(sched.Actual[:i], sched.Actual[i+1:]...)
				return
			}
			sched.Actual[i].WorkedHours = hours
			return
		}
	}
	if hours != nil {
		sched.Actual = append(sched.Actual, model.ActualDay{Day: day, WorkedHours: hours, Type: model.DayWork})
	}
}

// Bundle plans and works the contract hours over M-1, M and M+1.
func Bundle(ym model.YearMonth, contract *model.Contract, company *model.Company) *sources.Bundle {
	b := &sources.Bundle{
		Employee: "martin-camille",
		Year:     ym.Year,
		Month:    ym.Month,
		Tables:   Tables(),
		Contract: contract,
		Company:  company,
	}
	for _, m := range []model.YearMonth{ym.Prev(), ym, ym.Next()} {
		cal := PlannedMonth(m, contract.WeeklyHours())
		b.Calendars = append(b.Calendars, cal)
		b.Schedules = append(b.Schedules, ActualFromPlan(cal))
	}
	return b
}

// Calendar returns a pointer to the planned calendar of ym inside b.
func Calendar(b *sources.Bundle, ym model.YearMonth) *model.CalendarFile {
	for i := range b.Calendars {
		if b.Calendars[i].Period.Year == ym.Year && b.Calendars[i].Period.Month == ym.Month {
			return &b.Calendars[i]
		}
	}
	return nil
}

// Schedule returns a pointer to the actual hours of ym inside b.
func Schedule(b *sources.Bundle, ym model.YearMonth) *model.ScheduleFile {
	for i := range b.Schedules {
		if b.Schedules[i].Period.Year == ym.Year && b.Schedules[i].Period.Month == ym.Month {
			return &b.Schedules[i]
		}
	}
	return nil
}

// WriteEmployee lays b out under root the way sources.DirSource reads it,
// with the rule tables under root/baremes.
func WriteEmployee(root string, b *sources.Bundle) error {
	if err := WriteTables(filepath.Join(root, "baremes")); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(root, "entreprise.json"), b.Company); err != nil {
		return err
	}
	dir := filepath.Join(root, "employes", b.Employee)
	if err := writeJSON(filepath.Join(dir, "contrat.json"), b.Contract); err != nil {
		return err
	}
	monthFile := func(kind string, p model.FilePeriod) string {
		return filepath.Join(dir, fmt.Sprintf("%04d", p.Year), fmt.Sprintf("%s_%02d.json", kind, p.Month))
	}
	for _, cal := range b.Calendars {
		if err := writeJSON(monthFile("calendrier", cal.Period), cal); err != nil {
			return err
		}
	}
	for _, sched := range b.Schedules {
		if err := writeJSON(monthFile("horaires", sched.Period), sched); err != nil {
			return err
		}
	}
	if b.Cumuls != nil {
		prev := b.YearMonth().Prev()
		if err := writeJSON(monthFile("cumuls", model.FilePeriod{Year: prev.Year, Month: prev.Month}), b.Cumuls); err != nil {
			return err
		}
	}
	if b.Saisies != nil {
		if err := writeJSON(monthFile("saisies", model.FilePeriod{Year: b.Year, Month: b.Month}), b.Saisies); err != nil {
			return err
		}
	}
	return nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
