package events

import (
	"time"

	"github.com/DiogoBrazil/medimage-api/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserCreated       EventType = "user_created"
	EventUserUpdated       EventType = "user_updated"
	EventUserDeleted       EventType = "user_deleted"
	EventUserLoggedIn      EventType = "user_logged_in"
	EventAttendanceCreated EventType = "attendance_created"
	EventAttendanceUpdated EventType = "attendance_updated"
	EventAttendanceDeleted EventType = "attendance_deleted"
	EventHealthUnitCreated EventType = "health_unit_created"
	EventHealthUnitDeleted EventType = "health_unit_deleted"
	EventPredictionServed  EventType = "prediction_served"
)

// Actor identifies who performed the action.
type Actor struct {
	UserID  string      `json:"user_id"`
	Profile domain.Role `json:"profile"`
	AdminID string      `json:"admin_id,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SubjectID string      `json:"subject_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// UserPayload payload for account events.
type UserPayload struct {
	Email   string      `json:"email"`
	Profile domain.Role `json:"profile"`
	AdminID string      `json:"admin_id,omitempty"`
}

// AttendancePayload payload for attendance events.
type AttendancePayload struct {
	ModelUsed      domain.ModelKind `json:"model_used"`
	HealthUnitID   string           `json:"health_unit_id"`
	ProfessionalID string           `json:"professional_id"`
}

// HealthUnitPayload payload for health unit events.
type HealthUnitPayload struct {
	Name    string `json:"name"`
	AdminID string `json:"admin_id"`
}

// PredictionPayload payload for served predictions.
type PredictionPayload struct {
	Model     domain.ModelKind `json:"model"`
	Class     string           `json:"class"`
	FromCache bool             `json:"from_cache"`
}
