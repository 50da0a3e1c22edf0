package validators

import "go.mongodb.org/mongo-driver/bson"

var WorkOrderValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"tenant_id",
			"status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"tenant_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"pending",
					"in_progress",
					"on_hold",
					"completed",
					"cancelled",
				},
			},

			"description": bson.M{
				"bsonType":  "string",
				"maxLength": 2000,
			},

			"vehicle_id": bson.M{
				"bsonType": "string",
			},

			"technician_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"quote_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"scheduled_start": bson.M{
				"bsonType": "date",
			},

			"estimated_hours": bson.M{
				"bsonType": []string{"double", "int"},
				"minimum":  0,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
