package sources

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"

	"payroll-engine/internal/baremes"
	"payroll-engine/internal/model"
	"payroll-engine/internal/model/payerr"
)

// Bundle is every document one computation reads, already decoded.
type Bundle struct {
	Employee  string
	Year      int
	Month     int
	Tables    *baremes.Tables
	Contract  *model.Contract
	Company   *model.Company
	Cumuls    *model.CumulsFile // month M-1, nil when absent
	Calendars []model.CalendarFile
	Schedules []model.ScheduleFile
	Saisies   *model.SaisiesFile
}

func (b *Bundle) YearMonth() model.YearMonth {
	return model.YearMonth{Year: b.Year, Month: b.Month}
}

// Source produces the bundle for one employee and month.
type Source interface {
	Load(employee string, ym model.YearMonth) (*Bundle, error)
}

// Validate checks that the documents required for month M are present.
func (b *Bundle) Validate() error {
	if b.Month < 1 || b.Month > 12 {
		return payerr.Newf(payerr.KindConfigInvalid, "month %d out of range", b.Month).WithField("mois")
	}
	if b.Tables == nil {
		return payerr.New(payerr.KindConfigMissing, "rate tables not loaded").WithField("baremes")
	}
	if b.Contract == nil {
		return payerr.New(payerr.KindConfigMissing, "contract not found").WithField("contrat.json")
	}
	if b.Company == nil {
		return payerr.New(payerr.KindConfigMissing, "company parameters not found").WithField("entreprise.json")
	}
	ym := b.YearMonth()
	if !hasCalendar(b.Calendars, ym) {
		return payerr.New(payerr.KindConfigMissing, "planned calendar not found").WithField(fmt.Sprintf("calendrier_%02d.json", ym.Month))
	}
	if !hasSchedule(b.Schedules, ym) {
		return payerr.New(payerr.KindConfigMissing, "actual hours not found").WithField(fmt.Sprintf("horaires_%02d.json", ym.Month))
	}
	return nil
}

func hasCalendar(files []model.CalendarFile, ym model.YearMonth) bool {
	for _, f := range files {
		if f.Period.Year == ym.Year && f.Period.Month == ym.Month {
			return true
		}
	}
	return false
}

func hasSchedule(files []model.ScheduleFile, ym model.YearMonth) bool {
	for _, f := range files {
		if f.Period.Year == ym.Year && f.Period.Month == ym.Month {
			return true
		}
	}
	return false
}

// FromRequest turns an in-memory request into a bundle.
func FromRequest(req *model.CalculationRequest, tables *baremes.Tables) (*Bundle, error) {
	b := &Bundle{
		Employee:  req.Employee,
		Year:      req.Year,
		Month:     req.Month,
		Tables:    tables,
		Contract:  req.Contract,
		Company:   req.Company,
		Cumuls:    req.Cumuls,
		Calendars: req.Calendars,
		Schedules: req.Schedules,
		Saisies:   req.Saisies,
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// DirSource reads the on-disk layout:
//
//	<root>/entreprise.json
//	<root>/employes/<employee>/contrat.json
//	<root>/employes/<employee>/<YYYY>/{cumuls,calendrier,horaires,saisies}_MM.json
type DirSource struct {
	Root   string
	Tables *baremes.Registry
}

func NewDirSource(root string, tables *baremes.Registry) *DirSource {
	return &DirSource{Root: root, Tables: tables}
}

func (s *DirSource) EmployeeDir(employee string) string {
	return filepath.Join(s.Root, "employes", employee)
}

func (s *DirSource) monthFile(employee, kind string, ym model.YearMonth) string {
	return filepath.Join(s.EmployeeDir(employee), fmt.Sprintf("%04d", ym.Year), fmt.Sprintf("%s_%02d.json", kind, ym.Month))
}

func (s *DirSource) Load(employee string, ym model.YearMonth) (*Bundle, error) {
	tables, err := s.Tables.Load()
	if err != nil {
		return nil, err
	}

	b := &Bundle{Employee: employee, Year: ym.Year, Month: ym.Month, Tables: tables}

	b.Company = &model.Company{}
	if err := readJSON(filepath.Join(s.Root, "entreprise.json"), b.Company, true); err != nil {
		return nil, err
	}

	b.Contract = &model.Contract{}
	contractPath := filepath.Join(s.EmployeeDir(employee), "contrat.json")
	if _, statErr := os.Stat(contractPath); errors.Is(statErr, fs.ErrNotExist) {
		contractPath = filepath.Join(s.EmployeeDir(employee), "contract.json")
	}
	if err := readJSON(contractPath, b.Contract, true); err != nil {
		return nil, err
	}

	cumuls := &model.CumulsFile{}
	switch err := readJSON(s.monthFile(employee, "cumuls", ym.Prev()), cumuls, false); {
	case errors.Is(err, fs.ErrNotExist):
		b.Cumuls = nil
	case err != nil:
		return nil, err
	default:
		b.Cumuls = cumuls
	}

	for _, m := range []model.YearMonth{ym.Prev(), ym, ym.Next()} {
		required := m == ym

		cal := model.CalendarFile{}
		switch err := readJSON(s.monthFile(employee, "calendrier", m), &cal, required); {
		case err == nil:
			stampPeriod(&cal.Period, m)
			b.Calendars = append(b.Calendars, cal)
		case required || !errors.Is(err, fs.ErrNotExist):
			return nil, err
		}

		sched := model.ScheduleFile{}
		switch err := readJSON(s.monthFile(employee, "horaires", m), &sched, required); {
		case err == nil:
			stampPeriod(&sched.Period, m)
			b.Schedules = append(b.Schedules, sched)
		case required || !errors.Is(err, fs.ErrNotExist):
			return nil, err
		}
	}

	saisies := &model.SaisiesFile{}
	switch err := readJSON(s.monthFile(employee, "saisies", ym), saisies, false); {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		b.Saisies = saisies
	}

	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// WriteCumuls stores the cumuls computed for month ym as cumuls_MM.json.
func (s *DirSource) WriteCumuls(employee string, ym model.YearMonth, c *model.CumulsFile) error {
	path := s.monthFile(employee, "cumuls", ym)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// stampPeriod fills a missing periode from the file location.
func stampPeriod(p *model.FilePeriod, ym model.YearMonth) {
	if p.Year == 0 {
		p.Year = ym.Year
	}
	if p.Month == 0 {
		p.Month = ym.Month
	}
}

// readJSON returns an error wrapping fs.ErrNotExist for absent optional
// files, and a CONFIG_MISSING error for absent required ones.
func readJSON(path string, v any, required bool) error {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		if required {
			return payerr.Wrap(err, payerr.KindConfigMissing, "required file not found").WithField(filepath.Base(path))
		}
		return err
	}
	if err != nil {
		return payerr.Wrap(err, payerr.KindConfigMissing, "cannot read file").WithField(filepath.Base(path))
	}
	if err := json.Unmarshal(b, v); err != nil {
		return payerr.Wrap(err, payerr.KindConfigInvalid, "malformed JSON").WithField(filepath.Base(path))
	}
	return nil
}
