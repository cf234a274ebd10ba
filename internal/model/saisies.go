package model

// SaisiesFile mirrors saisies_MM.json.
type SaisiesFile struct {
	Period  FilePeriod `json:"periode"`
	Bonuses []Bonus    `json:"primes"`
	Advance *float64   `json:"acompte,omitempty"`
}

type Bonus struct {
	ID          string  `json:"prime_id"`
	Amount      float64 `json:"montant"`
	SocialBased *bool   `json:"soumise_a_cotisations,omitempty"`
	TaxBased    *bool   `json:"soumise_a_impot,omitempty"`
}

func (s *SaisiesFile) AdvanceAmount() float64 {
	if s == nil || s.Advance == nil {
		return 0
	}
	return *s.Advance
}
