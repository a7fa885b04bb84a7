package model

import "time"

// Label is the durable annotation materialized from an approved prediction
type Label struct {
	ID               string       `json:"id,omitempty" bson:"_id,omitempty"`
	FileName         string       `json:"file_name" bson:"file_name"`
	OriginalFileName string       `json:"original_file_name" bson:"original_file_name"`
	TypeID           string       `json:"type_id" bson:"type_id"`
	TypeName         string       `json:"type_name" bson:"type_name"`
	AirlineID        string       `json:"airline_id" bson:"airline_id"`
	AirlineName      string       `json:"airline_name" bson:"airline_name"`
	Clarity          float64      `json:"clarity" bson:"clarity"`
	Block            float64      `json:"block" bson:"block"`
	Registration     string       `json:"registration" bson:"registration"`
	RegistrationArea string       `json:"registration_area" bson:"registration_area"`
	ReviewStatus     ReviewStatus `json:"review_status" bson:"review_status"`
	AIApproved       bool         `json:"ai_approved" bson:"ai_approved"`
	CreatedAt        time.Time    `json:"created_at" bson:"created_at"`
}
