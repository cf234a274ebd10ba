package model

// GrossLine is one line of the gross composition. Subtotal lines are
// display markers and never enter totals.
type GrossLine struct {
	Label    string  `json:"libelle"`
	Quantity float64 `json:"quantite,omitempty"`
	Rate     float64 `json:"taux,omitempty"`
	Gain     float64 `json:"gain,omitempty"`
	Loss     float64 `json:"perte,omitempty"`
	Subtotal bool    `json:"sous_total,omitempty"`
}

// ContributionLine is one social contribution. Nil rates mark flat
// (forfaitaire) amounts.
type ContributionLine struct {
	ID             string   `json:"id,omitempty"`
	Label          string   `json:"libelle"`
	Base           *float64 `json:"base"`
	EmployeeRate   *float64 `json:"taux_salarial"`
	EmployeeAmount float64  `json:"montant_salarial"`
	EmployerRate   *float64 `json:"taux_patronal"`
	EmployerAmount float64  `json:"montant_patronal"`
}

// BonusLine is a bonus paid outside gross.
type BonusLine struct {
	ID     string  `json:"prime_id"`
	Label  string  `json:"libelle"`
	Amount float64 `json:"montant"`
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
