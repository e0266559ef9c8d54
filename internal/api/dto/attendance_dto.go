package dto

import (
	"time"

	"github.com/DiogoBrazil/medimage-api/internal/domain"
)

// BoundingBoxPayload is a detection rectangle on the wire.
type BoundingBoxPayload struct {
	X            *float64 `json:"x"`
	Y            *float64 `json:"y"`
	Width        *float64 `json:"width"`
	Height       *float64 `json:"height"`
	Observations string   `json:"observations,omitempty"`
}

// Complete reports whether all required box fields were supplied.
func (b BoundingBoxPayload) Complete() bool {
	return b.X != nil && b.Y != nil && b.Width != nil && b.Height != nil
}

// ToDomain converts the payload to the domain shape. Call Complete first.
func (b BoundingBoxPayload) ToDomain() domain.BoundingBox {
	return domain.BoundingBox{
		X:            *b.X,
		Y:            *b.Y,
		Width:        *b.Width,
		Height:       *b.Height,
		Observations: b.Observations,
	}
}

// CreateAttendanceRequest payload for new visit records.
type CreateAttendanceRequest struct {
	HealthUnitID     string               `json:"health_unit_id"`
	ModelUsed        string               `json:"model_used"`
	ModelResult      string               `json:"model_result"`
	ExpectedResult   string               `json:"expected_result,omitempty"`
	CorrectDiagnosis bool                 `json:"correct_diagnosis"`
	ImageBase64      string               `json:"image_base64"`
	Observation      string               `json:"observation,omitempty"`
	BoundingBoxes    []BoundingBoxPayload `json:"bounding_boxes,omitempty"`
}

// UpdateAttendanceRequest payload for changes. Nil pointers are untouched.
type UpdateAttendanceRequest struct {
	HealthUnitID     *string              `json:"health_unit_id,omitempty"`
	ModelResult      *string              `json:"model_result,omitempty"`
	ExpectedResult   *string              `json:"expected_result,omitempty"`
	CorrectDiagnosis *bool                `json:"correct_diagnosis,omitempty"`
	Observation      *string              `json:"observation,omitempty"`
	BoundingBoxes    []BoundingBoxPayload `json:"bounding_boxes,omitempty"`
}

// BoundingBoxResponse is a stored detection rectangle.
type BoundingBoxResponse struct {
	ID           string  `json:"id"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	Observations string  `json:"observations,omitempty"`
}

// AttendanceResponse is the wire shape of a visit record.
type AttendanceResponse struct {
	ID               string                `json:"id"`
	ProfessionalID   string                `json:"professional_id"`
	HealthUnitID     string                `json:"health_unit_id"`
	AdminID          string                `json:"admin_id"`
	ModelUsed        string                `json:"model_used"`
	ModelResult      string                `json:"model_result"`
	ExpectedResult   string                `json:"expected_result,omitempty"`
	CorrectDiagnosis bool                  `json:"correct_diagnosis"`
	ImageBase64      string                `json:"image_base64"`
	Observation      string                `json:"observation,omitempty"`
	BoundingBoxes    []BoundingBoxResponse `json:"bounding_boxes,omitempty"`
	AttendanceDate   time.Time             `json:"attendance_date"`
	UpdatedAt        time.Time             `json:"updated_at"`
}

// FromAttendance maps a domain attendance to its response shape.
func FromAttendance(attendance *domain.Attendance) AttendanceResponse {
	boxes := make([]BoundingBoxResponse, len(attendance.BoundingBoxes))
	for i, box := range attendance.BoundingBoxes {
		boxes[i] = BoundingBoxResponse{
			ID:           box.ID,
			X:            box.X,
			Y:            box.Y,
			Width:        box.Width,
			Height:       box.Height,
			Observations: box.Observations,
		}
	}
	return AttendanceResponse{
		ID:               attendance.ID,
		ProfessionalID:   attendance.ProfessionalID,
		HealthUnitID:     attendance.HealthUnitID,
		AdminID:          attendance.AdminID,
		ModelUsed:        string(attendance.ModelUsed),
		ModelResult:      attendance.ModelResult,
		ExpectedResult:   attendance.ExpectedResult,
		CorrectDiagnosis: attendance.CorrectDiagnosis,
		ImageBase64:      attendance.ImageBase64,
		Observation:      attendance.Observation,
		BoundingBoxes:    boxes,
		AttendanceDate:   attendance.AttendanceDate,
		UpdatedAt:        attendance.UpdatedAt,
	}
}

// FromAttendances maps a slice of domain attendances.
func FromAttendances(attendances []domain.Attendance) []AttendanceResponse {
	result := make([]AttendanceResponse, len(attendances))
	for i := range attendances {
		result[i] = FromAttendance(&attendances[i])
	}
	return result
}
