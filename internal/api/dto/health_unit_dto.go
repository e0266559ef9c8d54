package dto

import (
	"time"

	"github.com/DiogoBrazil/medimage-api/internal/domain"
)

// HealthUnitRequest payload for create and update.
type HealthUnitRequest struct {
	AdminID string `json:"admin_id,omitempty"`
	Name    string `json:"name"`
	CNPJ    string `json:"cnpj"`
	Status  string `json:"status,omitempty"`
}

// HealthUnitResponse is the wire shape of a unit.
type HealthUnitResponse struct {
	ID        string    `json:"id"`
	AdminID   string    `json:"admin_id"`
	Name      string    `json:"name"`
	CNPJ      string    `json:"cnpj"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FromHealthUnit maps a domain unit to its response shape.
func FromHealthUnit(unit *domain.HealthUnit) HealthUnitResponse {
	return HealthUnitResponse{
		ID:        unit.ID,
		AdminID:   unit.AdminID,
		Name:      unit.Name,
		CNPJ:      unit.CNPJ,
		Status:    string(unit.Status),
		CreatedAt: unit.CreatedAt,
		UpdatedAt: unit.UpdatedAt,
	}
}

// FromHealthUnits maps a slice of domain units.
func FromHealthUnits(units []domain.HealthUnit) []HealthUnitResponse {
	result := make([]HealthUnitResponse, len(units))
	for i := range units {
		result[i] = FromHealthUnit(&units[i])
	}
	return result
}
