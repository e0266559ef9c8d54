package dto

// PredictionRequest payload carrying the base64-encoded study image.
type PredictionRequest struct {
	Image string `json:"image"`
}
