package validators

import "go.mongodb.org/mongo-driver/bson"

var LabelValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"_id", "file_name", "original_file_name", "type_id", "review_status", "created_at"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":                bson.M{"bsonType": "string"},
			"file_name":          bson.M{"bsonType": "string"},
			"original_file_name": bson.M{"bsonType": "string"},
			"type_id":            bson.M{"bsonType": "string"},
			"type_name":          bson.M{"bsonType": "string"},
			"airline_id":         bson.M{"bsonType": "string"},
			"airline_name":       bson.M{"bsonType": "string"},
			"clarity":            bson.M{"bsonType": "double"},
			"block":              bson.M{"bsonType": "double"},
			"registration":       bson.M{"bsonType": "string"},
			"registration_area":  bson.M{"bsonType": "string"},
			"review_status":      bson.M{"enum": []string{"approved", "auto_approved"}},
			"ai_approved":        bson.M{"bsonType": "bool"},
			"created_at":         bson.M{"bsonType": "date"},
		},
	},
}

var LabelCounterValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id", "seq"},
		"properties": bson.M{
			"_id": bson.M{"bsonType": "string"},
			"seq": bson.M{"bsonType": []string{"int", "long"}, "minimum": 1},
		},
	},
}
