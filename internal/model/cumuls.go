package model

// CumulsFile mirrors cumuls_MM.json.
type CumulsFile struct {
	Period CumulsPeriod `json:"periode"`
	Totals Cumuls       `json:"cumuls"`
}

type CumulsPeriod struct {
	Year      int `json:"annee_en_cours"`
	LastMonth int `json:"dernier_mois_calcule"`
}

// Cumuls are year-to-date totals. GeneralReduction is stored negative.
type Cumuls struct {
	GrossTotal       float64 `json:"brut_total"`
	PaidHours        float64 `json:"heures_remunerees"`
	GeneralReduction float64 `json:"reduction_generale_patronale"`
	NetTaxable       float64 `json:"net_imposable"`
	WithholdingTax   float64 `json:"impot_preleve_a_la_source"`
	OvertimeHours    float64 `json:"heures_supplementaires_remunerees"`
	ReferenceGross   float64 `json:"brut_reference_n_1"`
}
