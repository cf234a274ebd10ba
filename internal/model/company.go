package model

// Company mirrors entreprise.json.
type Company struct {
	Identification CompanyIdentification `json:"identification"`
	Payroll        PayrollParameters     `json:"parametres_paie"`
	Convention     ConventionReference   `json:"convention_collective"`
}

type CompanyIdentification struct {
	Name    string  `json:"raison_sociale"`
	SIRET   string  `json:"siret"`
	Address Address `json:"adresse"`
}

type PayrollParameters struct {
	Headcount      int                   `json:"effectif"`
	SpecificRates  SpecificRates         `json:"taux_specifiques"`
	PayPeriod      PayPeriodRule         `json:"periode_de_paie"`
	BenefitsInKind CompanyBenefitsInKind `json:"avantages_en_nature"`
}

type SpecificRates struct {
	ATMP float64 `json:"taux_at_mp"`
}

// PayPeriodRule selects the occurrence-th reference weekday of the month.
// Weekdays count from Monday = 0.
type PayPeriodRule struct {
	ReferenceWeekday int `json:"jour_de_fin"`
	Occurrence       int `json:"occurrence"`
}

type CompanyBenefitsInKind struct {
	MealValue    float64          `json:"repas_valeur_forfaitaire"`
	HousingScale []HousingBracket `json:"logement_bareme_forfaitaire"`
}

type HousingBracket struct {
	MaxPay       *float64 `json:"remuneration_max"`
	OneRoom      float64  `json:"valeur_1_piece"`
	PerExtraRoom float64  `json:"valeur_par_piece"`
}

type ConventionReference struct {
	IDCC  string `json:"idcc"`
	Label string `json:"libelle"`
}
