package domain

import "time"

// ModelKind enumerates the diagnostic models an attendance can reference.
type ModelKind string

const (
	ModelRespiratory  ModelKind = "respiratory"
	ModelTuberculosis ModelKind = "tuberculosis"
	ModelOsteoporosis ModelKind = "osteoporosis"
	ModelBreast       ModelKind = "breast"
)

// ModelKinds lists every supported model, in the order used for messages.
var ModelKinds = []ModelKind{ModelRespiratory, ModelTuberculosis, ModelOsteoporosis, ModelBreast}

// Valid reports whether the model is a known kind.
func (m ModelKind) Valid() bool {
	switch m {
	case ModelRespiratory, ModelTuberculosis, ModelOsteoporosis, ModelBreast:
		return true
	}
	return false
}

// BoundingBox is a detection rectangle attached to a breast-model attendance.
type BoundingBox struct {
	ID           string
	AttendanceID string
	X            float64
	Y            float64
	Width        float64
	Height       float64
	Observations string
}

// Attendance is one patient visit with its AI-assisted diagnosis fields.
// ProfessionalID is the professional who recorded it; AdminID denormalizes
// the owning administrator so tenant filters need no join.
type Attendance struct {
	ID               string
	ProfessionalID   string
	HealthUnitID     string
	AdminID          string
	ModelUsed        ModelKind
	ModelResult      string
	ExpectedResult   string
	CorrectDiagnosis bool
	ImageBase64      string
	Observation      string
	BoundingBoxes    []BoundingBox
	AttendanceDate   time.Time
	UpdatedAt        time.Time
}
