package core

import (
	"strings"
	"time"
)

// FamilyMember is a person in the household. Age, employment status and
// aggregate salary are derived views computed from linked recurring incomes.
type FamilyMember struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	BirthDate time.Time `json:"birth_date"`
	TaxID     string    `json:"tax_id,omitempty"`
}

func (m FamilyMember) Validate() error {
	if strings.TrimSpace(m.ID) == "" {
		return ErrMissingID
	}
	if strings.TrimSpace(m.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

// AgeAt returns the member's age in whole years as of now.
func (m FamilyMember) AgeAt(now time.Time) int {
	if m.BirthDate.IsZero() || m.BirthDate.After(now) {
		return 0
	}
	age := now.Year() - m.BirthDate.Year()
	// Birthday not yet reached this year.
	if now.Month() < m.BirthDate.Month() ||
		(now.Month() == m.BirthDate.Month() && now.Day() < m.BirthDate.Day()) {
		age--
	}
	return age
}
