package domain

import "time"

// UnitStatus represents lifecycle states for a health unit.
type UnitStatus string

const (
	UnitStatusActive   UnitStatus = "active"
	UnitStatusInactive UnitStatus = "inactive"
)

// Valid reports whether the status is a known value.
func (s UnitStatus) Valid() bool {
	return s == UnitStatusActive || s == UnitStatusInactive
}

// HealthUnit is a clinic or hospital owned by one administrator.
type HealthUnit struct {
	ID        string
	AdminID   string
	Name      string
	CNPJ      string
	Status    UnitStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}
