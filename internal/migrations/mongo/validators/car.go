package validators

import "go.mongodb.org/mongo-driver/bson"

// Status is optional: older listings were stored without it and read as available.
var CarValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"rentPrice", "createdAt"},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"carName": bson.M{
				"bsonType": "string",
			},

			"description": bson.M{
				"bsonType": "string",
			},

			"category": bson.M{
				"bsonType": "string",
			},

			"rentPrice": bson.M{
				"bsonType": []string{"double", "int", "long", "decimal"},
				"minimum":  0,
			},

			"location": bson.M{
				"bsonType": "string",
			},

			"imageUrl": bson.M{
				"bsonType": "string",
			},

			"providerName": bson.M{
				"bsonType": "string",
			},

			"providerEmail": bson.M{
				"bsonType": "string",
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"available",
					"unavailable",
				},
			},

			"createdAt": bson.M{
				"bsonType": "date",
			},
		},
	},
}
