package validators

import "go.mongodb.org/mongo-driver/bson"

var unitInterval = bson.M{"bsonType": "double", "minimum": 0, "maximum": 1}

var PredictionValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"_id", "aircraft_class", "aircraft_confidence",
			"airline_class", "airline_confidence", "review_status", "created_at",
		},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":                     bson.M{"bsonType": "string", "maxLength": 255},
			"aircraft_class":          bson.M{"bsonType": "string"},
			"aircraft_confidence":     unitInterval,
			"airline_class":           bson.M{"bsonType": "string"},
			"airline_confidence":      unitInterval,
			"registration":            bson.M{"bsonType": []string{"string", "null"}},
			"registration_region":     bson.M{"bsonType": "string"},
			"registration_confidence": unitInterval,
			"clarity":                 unitInterval,
			"occlusion":               unitInterval,
			"quality_confidence":      unitInterval,
			"is_new_class":            bson.M{"bsonType": "bool"},
			"outlier_score":           bson.M{"bsonType": "double", "minimum": 0},
			"review_status": bson.M{
				"enum": []string{"pending", "approved", "auto_approved", "rejected"},
			},
			"label_id":    bson.M{"bsonType": "string"},
			"created_at":  bson.M{"bsonType": "date"},
			"reviewed_at": bson.M{"bsonType": "date"},
		},
	},
}
