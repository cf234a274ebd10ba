package model

// Payslip is the assembled, display-ordered result of one computation.
type Payslip struct {
	Header        Header              `json:"en_tete"`
	Gross         GrossSection        `json:"salaire_brut"`
	Contributions ContributionSection `json:"cotisations"`
	Net           NetSynthesis        `json:"synthese_net"`
	UntaxedBonus  []BonusLine         `json:"primes_non_soumises"`
	NetToPay      float64             `json:"net_a_payer"`
	Footer        Footer              `json:"pied_de_page"`
	Meta          PayslipMeta         `json:"meta"`
}

type Header struct {
	PeriodStart string         `json:"periode_debut"`
	PeriodEnd   string         `json:"periode_fin"`
	Year        int            `json:"annee"`
	Month       int            `json:"mois"`
	Employer    EmployerHeader `json:"employeur"`
	Employee    EmployeeHeader `json:"salarie"`
}

type EmployerHeader struct {
	Name       string  `json:"raison_sociale"`
	SIRET      string  `json:"siret"`
	Address    Address `json:"adresse"`
	Convention string  `json:"convention_collective,omitempty"`
}

type EmployeeHeader struct {
	Name        string  `json:"nom_complet"`
	NIR         string  `json:"nir"`
	JobTitle    string  `json:"emploi"`
	Status      string  `json:"statut"`
	HireDate    string  `json:"date_entree"`
	Coefficient float64 `json:"coefficient,omitempty"`
	WeeklyHours float64 `json:"duree_hebdomadaire"`
	Seniority   float64 `json:"anciennete_annees"`
	Address     Address `json:"adresse"`
}

type GrossSection struct {
	Lines    []GrossLine `json:"lignes"`
	Leave    []GrossLine `json:"conges"`
	Absences []GrossLine `json:"absences"`
	Total    float64     `json:"total"`
}

type ContributionSection struct {
	Main             []ContributionLine `json:"principales"`
	Other            []ContributionLine `json:"autres_contributions"`
	Reliefs          []ContributionLine `json:"allegements"`
	SubtotalEmployee float64            `json:"sous_total_salarial"`
	SubtotalEmployer float64            `json:"sous_total_patronal"`
	CSGNonDeductible []ContributionLine `json:"csg_non_deductible"`
	TotalEmployee    float64            `json:"total_salarial"`
	TotalEmployer    float64            `json:"total_patronal"`
}

type NetSynthesis struct {
	NetSocial          float64 `json:"net_social"`
	CSGNonDeductible   float64 `json:"csg_crds_non_deductible"`
	EmployerMutuelle   float64 `json:"mutuelle_patronale,omitempty"`
	OvertimeExempt     float64 `json:"heures_supp_exonerees,omitempty"`
	NetTaxable         float64 `json:"net_imposable"`
	WithholdingBase    float64 `json:"pas_base"`
	WithholdingRate    float64 `json:"pas_taux"`
	WithholdingNeutral bool    `json:"pas_taux_neutre,omitempty"`
	WithholdingTax     float64 `json:"pas_montant"`
	BenefitsInKind     float64 `json:"avantages_en_nature,omitempty"`
	MealVouchers       float64 `json:"titres_restaurant,omitempty"`
	Transport          float64 `json:"remboursement_transport,omitempty"`
	UntaxedBonuses     float64 `json:"primes_non_soumises,omitempty"`
	Advance            float64 `json:"acompte,omitempty"`
}

type Footer struct {
	EmployerCost   float64 `json:"cout_employeur"`
	LeaveNarrative string  `json:"arbitrage_conges,omitempty"`
	YearToDate     Cumuls  `json:"cumuls_annuels"`
}

type PayslipMeta struct {
	Warnings []CalculationMessage `json:"warnings"`
}
