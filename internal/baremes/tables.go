package baremes

import (
	"math"

	"payroll-engine/internal/money"
)

// Base names the assiette a contribution is computed on.
type Base string

const (
	BaseGross       Base = "brut"
	BaseCeiling     Base = "plafond_ss"
	BaseTranche2    Base = "tranche_2"
	BaseCappedGross Base = "brut_plafonne"
	BaseCET         Base = "assiette_cet"
	BaseCSGNormal   Base = "csg_crds_base_normale"
	BaseCSGOvertime Base = "csg_crds_base_hs"
)

// Contribution ids the engine dispatches on.
const (
	IDMaladie               = "securite_sociale_maladie"
	IDAllocations           = "allocations_familiales"
	IDFNAL                  = "fnal"
	IDCFP                   = "CFP"
	IDApprentissage         = "taxe_apprentissage"
	IDApprentissageSolde    = "taxe_apprentissage_solde"
	IDATMP                  = "at_mp"
	IDCSG                   = "csg"
	IDAPEC                  = "apec"
	IDMutuelle              = "mutuelle"
	IDPrevoyanceCadre       = "prevoyance_cadre"
	IDPrevoyanceNonCadre    = "prevoyance_non_cadre"
	IDRetraiteSecuPlafond   = "retraite_secu_plafond"
	IDRetraiteSecuDeplafond = "retraite_secu_deplafond"
	IDCSA                   = "csa"
	IDAssuranceChomage      = "assurance_chomage"
	IDRetraiteCompT1        = "retraite_comp_t1"
	IDCEGT1                 = "ceg_t1"
)

type Contribution struct {
	ID                    string   `json:"id"`
	Label                 string   `json:"libelle"`
	Base                  Base     `json:"base"`
	Employee              RateSpec `json:"salarial"`
	Employer              RateSpec `json:"patronal"`
	EmployeeAlsaceMoselle *float64 `json:"salarial_Alsace_Moselle,omitempty"`
}

type Smic struct {
	Hourly float64            `json:"horaire"`
	Youth  map[string]float64 `json:"jeunes,omitempty"`
}

// MonthlyLegalHours is 35h x 52 / 12 rounded to the hundredth.
const MonthlyLegalHours = 151.67

// Monthly is the monthly SMIC rounded to the cent, the figure SMIC
// thresholds are expressed against.
func (s Smic) Monthly() float64 {
	return money.Mul(s.Hourly, MonthlyLegalHours)
}

// HourlyForAge applies the youth abatement (moins_17, moins_18) when age is under 18.
func (s Smic) HourlyForAge(age int) float64 {
	switch {
	case age < 17:
		if f, ok := s.Youth["moins_17"]; ok {
			return s.Hourly * f
		}
	case age < 18:
		if f, ok := s.Youth["moins_18"]; ok {
			return s.Hourly * f
		}
	}
	return s.Hourly
}

// Ceilings holds the PSS by periodicity.
type Ceilings struct {
	Annual    float64 `json:"annuel"`
	Quarterly float64 `json:"trimestriel,omitempty"`
	Monthly   float64 `json:"mensuel"`
	Fortnight float64 `json:"quinzaine,omitempty"`
	Weekly    float64 `json:"hebdomadaire,omitempty"`
	Daily     float64 `json:"journalier,omitempty"`
	Hourly    float64 `json:"horaire,omitempty"`
}

type Overtime struct {
	Majorations        Majorations         `json:"majorations"`
	EmployeeReduction  EmployeeReduction   `json:"reduction_salariale"`
	EmployerDeductions []EmployerDeduction `json:"deduction_forfaitaire_patronale"`
}

type Majorations struct {
	HS25 float64 `json:"hs25"`
	HS50 float64 `json:"hs50"`
}

type EmployeeReduction struct {
	Rate    float64 `json:"taux"`
	MaxRate float64 `json:"taux_max"`
}

// Effective returns the rate capped at MaxRate when a cap is set.
func (r EmployeeReduction) Effective() float64 {
	if r.MaxRate > 0 {
		return math.Min(r.Rate, r.MaxRate)
	}
	return r.Rate
}

type EmployerDeduction struct {
	MinHeadcount int     `json:"effectif_min"`
	MaxHeadcount *int    `json:"effectif_max,omitempty"`
	PerHour      float64 `json:"montant_par_heure"`
}

// EmployerDeductionFor returns the per-hour flat deduction for a headcount.
func (o Overtime) EmployerDeductionFor(headcount int) (float64, bool) {
	for _, d := range o.EmployerDeductions {
		if headcount < d.MinHeadcount {
			continue
		}
		if d.MaxHeadcount != nil && headcount > *d.MaxHeadcount {
			continue
		}
		return d.PerHour, true
	}
	return 0, false
}

type WithholdingScale struct {
	Neutral map[string][]WithholdingBracket `json:"bareme_neutre"`
}

type WithholdingBracket struct {
	Ceiling *float64 `json:"plafond"`
	Rate    float64  `json:"taux"`
}

// NeutralRate returns the neutral-grid rate (fraction) for a monthly taxable net.
func (w WithholdingScale) NeutralRate(zone string, netTaxable float64) (float64, bool) {
	brackets := w.Neutral[zone]
	for _, b := range brackets {
		if b.Ceiling == nil || netTaxable < *b.Ceiling {
			return b.Rate, true
		}
	}
	return 0, false
}

type BonusDefinition struct {
	ID          string `json:"id"`
	Label       string `json:"libelle"`
	SocialBased bool   `json:"soumise_a_cotisations"`
	TaxBased    bool   `json:"soumise_a_impot"`
}

type Convention struct {
	IDCC      string          `json:"idcc"`
	Label     string          `json:"libelle"`
	Seniority SeniorityScale  `json:"anciennete"`
	Minima    []MinimumSalary `json:"minima"`
}

const (
	SeniorityBaseMinimum    = "minimum_conventionnel"
	SeniorityBaseSalary     = "salaire_base"
	SeniorityBasePercentage = "pourcentage_salaire_base"
)

type SeniorityScale struct {
	Base       string             `json:"base"`
	Percentage float64            `json:"pourcentage_base,omitempty"`
	Brackets   []SeniorityBracket `json:"paliers"`
}

type SeniorityBracket struct {
	MinYears float64 `json:"annees_min"`
	Rate     float64 `json:"taux"`
}

// RateFor returns the rate of the highest bracket reached.
func (s SeniorityScale) RateFor(years float64) float64 {
	rate := 0.0
	best := -1.0
	for _, b := range s.Brackets {
		if years >= b.MinYears && b.MinYears > best {
			best = b.MinYears
			rate = b.Rate
		}
	}
	return rate
}

type MinimumSalary struct {
	Coefficient float64 `json:"coefficient"`
	Salary      float64 `json:"salaire"`
}

// MinimumFor returns the minimum of the highest coefficient not above coef.
func (c Convention) MinimumFor(coef float64) (float64, bool) {
	found := false
	bestCoef, salary := 0.0, 0.0
	for _, m := range c.Minima {
		if m.Coefficient <= coef && (!found || m.Coefficient > bestCoef) {
			found = true
			bestCoef = m.Coefficient
			salary = m.Salary
		}
	}
	return salary, found
}

// Tables are the read-only rule tables one computation consumes.
type Tables struct {
	Contributions []Contribution
	Smic          Smic
	Ceilings      Ceilings
	Overtime      Overtime
	Withholding   WithholdingScale
	Bonuses       []BonusDefinition
	Conventions   []Convention
}

func (t *Tables) Contribution(id string) (*Contribution, bool) {
	for i := range t.Contributions {
		if t.Contributions[i].ID == id {
			return &t.Contributions[i], true
		}
	}
	return nil, false
}

func (t *Tables) Bonus(id string) (*BonusDefinition, bool) {
	for i := range t.Bonuses {
		if t.Bonuses[i].ID == id {
			return &t.Bonuses[i], true
		}
	}
	return nil, false
}

func (t *Tables) Convention(idcc string) (*Convention, bool) {
	for i := range t.Conventions {
		if t.Conventions[i].IDCC == idcc {
			return &t.Conventions[i], true
		}
	}
	return nil, false
}
