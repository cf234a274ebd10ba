package model

import "time"

const (
	StatusCadre    = "Cadre"
	StatusNonCadre = "Non-Cadre"
)

// Contract mirrors contrat.json.
type Contract struct {
	Employee   Employee         `json:"salarie"`
	Employment Employment       `json:"contrat"`
	Pay        Pay              `json:"remuneration"`
	Specifics  PayrollSpecifics `json:"specificites_paie"`
}

type Employee struct {
	LastName    string      `json:"nom"`
	FirstName   string      `json:"prenom"`
	NIR         string      `json:"nir"`
	BirthDate   string      `json:"date_naissance"`
	BirthPlace  string      `json:"lieu_naissance"`
	Nationality string      `json:"nationalite"`
	Address     Address     `json:"adresse"`
	Bank        BankDetails `json:"coordonnees_bancaires"`
}

type Address struct {
	Street     string `json:"rue"`
	PostalCode string `json:"code_postal"`
	City       string `json:"ville"`
}

type BankDetails struct {
	IBAN string `json:"iban"`
	BIC  string `json:"bic"`
}

type Employment struct {
	HireDate     string      `json:"date_entree"`
	ContractType string      `json:"type_contrat"`
	Status       string      `json:"statut"`
	JobTitle     string      `json:"emploi"`
	TrialPeriod  TrialPeriod `json:"periode_essai"`
	WorkingTime  WorkingTime `json:"temps_travail"`
}

type TrialPeriod struct {
	DurationMonths int    `json:"duree_mois"`
	EndDate        string `json:"date_fin"`
}

type WorkingTime struct {
	PartTime       bool     `json:"is_temps_partiel"`
	WeeklyHours    *float64 `json:"duree_hebdomadaire"`
	ProrateCeiling bool     `json:"proratiser_plafond_ss"`
}

type Pay struct {
	BaseSalary       BaseSalary     `json:"salaire_de_base"`
	Classification   Classification `json:"classification_conventionnelle"`
	VariableElements []Bonus        `json:"elements_variables"`
	BenefitsInKind   BenefitsInKind `json:"avantages_en_nature"`
}

type BaseSalary struct {
	Value *float64 `json:"valeur"`
}

type Classification struct {
	Coefficient float64 `json:"coefficient"`
	IDCC        string  `json:"idcc"`
}

type BenefitsInKind struct {
	Meals   MealBenefit    `json:"repas"`
	Housing HousingBenefit `json:"logement"`
}

type MealBenefit struct {
	PerMonth int `json:"nombre_par_mois"`
}

type HousingBenefit struct {
	Granted bool `json:"beneficie"`
	Rooms   int  `json:"nombre_pieces_principales"`
}

type PayrollSpecifics struct {
	AlsaceMoselle bool             `json:"is_alsace_moselle"`
	Mutuelle      Mutuelle         `json:"mutuelle"`
	Prevoyance    Prevoyance       `json:"prevoyance"`
	Withholding   Withholding      `json:"prelevement_a_la_source"`
	MealVouchers  MealVouchers     `json:"titres_restaurant"`
	Transport     TransportSubsidy `json:"transport"`
}

type Mutuelle struct {
	Member bool           `json:"adhesion"`
	Lines  []MutuelleLine `json:"lignes_specifiques"`
}

type MutuelleLine struct {
	Label            string  `json:"libelle"`
	EmployeeAmount   float64 `json:"montant_salarial"`
	EmployerAmount   float64 `json:"montant_patronal"`
	EmployerCSGBased bool    `json:"part_patronale_soumise_a_csg"`
}

type Prevoyance struct {
	Member bool             `json:"adhesion"`
	Lines  []PrevoyanceLine `json:"lignes_specifiques"`
}

type PrevoyanceLine struct {
	Label         string   `json:"libelle"`
	Base          string   `json:"base"`
	EmployeeRate  float64  `json:"salarial"`
	EmployerRate  float64  `json:"patronal"`
	ForfaitSocial *float64 `json:"forfait_social,omitempty"`
}

type Withholding struct {
	Rate *float64 `json:"taux"` // percent, e.g. 7.5
}

type MealVouchers struct {
	Granted       bool    `json:"beneficie"`
	FaceValue     float64 `json:"valeur_faciale"`
	EmployerShare float64 `json:"part_patronale"`
	PerMonth      int     `json:"nombre_par_mois"`
}

type TransportSubsidy struct {
	MonthlySubscription float64 `json:"abonnement_mensuel_total"`
}

// WeeklyHours returns T_c, or 0 when the contract does not declare it.
func (c *Contract) WeeklyHours() float64 {
	if c.Employment.WorkingTime.WeeklyHours == nil {
		return 0
	}
	return *c.Employment.WorkingTime.WeeklyHours
}

// BaseSalary returns S_b, or 0 when the contract does not declare it.
func (c *Contract) BaseSalary() float64 {
	if c.Pay.BaseSalary.Value == nil {
		return 0
	}
	return *c.Pay.BaseSalary.Value
}

func (c *Contract) IsCadre() bool {
	return c.Employment.Status == StatusCadre
}

func (c *Contract) HireDate() (time.Time, bool) {
	return ParseDate(c.Employment.HireDate)
}
