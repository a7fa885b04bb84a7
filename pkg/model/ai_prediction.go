package model

import "time"

type ReviewStatus string

const (
	ReviewPending      ReviewStatus = "pending"
	ReviewApproved     ReviewStatus = "approved"
	ReviewAutoApproved ReviewStatus = "auto_approved"
	ReviewRejected     ReviewStatus = "rejected"
)

// IsTerminal reports whether no transition may leave the status.
func (s ReviewStatus) IsTerminal() bool {
	switch s {
	case ReviewApproved, ReviewAutoApproved, ReviewRejected:
		return true
	default:
		return false
	}
}

// AIPrediction is one machine-generated assessment of one image, keyed by the image filename
type AIPrediction struct {
	ResourceID string `json:"resource_id" bson:"_id" validate:"required,max=255,resource_name"`

	AircraftClass      string  `json:"aircraft_class" bson:"aircraft_class" validate:"required,max=64,resource_name"`
	AircraftConfidence float64 `json:"aircraft_confidence" bson:"aircraft_confidence" validate:"gte=0,lte=1"`
	AirlineClass       string  `json:"airline_class" bson:"airline_class" validate:"required,max=64"`
	AirlineConfidence  float64 `json:"airline_confidence" bson:"airline_confidence" validate:"gte=0,lte=1"`

	Registration           *string `json:"registration" bson:"registration"`
	RegistrationRegion     string  `json:"registration_region" bson:"registration_region"`
	RegistrationConfidence float64 `json:"registration_confidence" bson:"registration_confidence" validate:"gte=0,lte=1"`

	Clarity           float64 `json:"clarity" bson:"clarity" validate:"gte=0,lte=1"`
	Occlusion         float64 `json:"occlusion" bson:"occlusion" validate:"gte=0,lte=1"`
	QualityConfidence float64 `json:"quality_confidence" bson:"quality_confidence" validate:"gte=0,lte=1"`

	IsNewClass   bool    `json:"is_new_class" bson:"is_new_class"`
	OutlierScore float64 `json:"outlier_score" bson:"outlier_score"`

	ReviewStatus ReviewStatus `json:"review_status" bson:"review_status" validate:"omitempty,oneof=pending approved auto_approved rejected"`
	LabelID      string       `json:"label_id,omitempty" bson:"label_id,omitempty"`
	CreatedAt    time.Time    `json:"created_at" bson:"created_at"`
	ReviewedAt   *time.Time   `json:"reviewed_at,omitempty" bson:"reviewed_at,omitempty"`
}

// MinClassConfidence is the review urgency key for regular predictions
func (p *AIPrediction) MinClassConfidence() float64 {
	return min(p.AircraftConfidence, p.AirlineConfidence)
}

// PredictionSummary is the queue view of a pending prediction
type PredictionSummary struct {
	*AIPrediction
	Position       int  `json:"position"`
	AutoApprovable bool `json:"auto_approvable"`
}
