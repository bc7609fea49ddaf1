package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"carId",
			"userName",
			"userEmail",
			"bookedAt",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"carId": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"userName": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"userEmail": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"location": bson.M{
				"bsonType": "string",
			},

			"bookedAt": bson.M{
				"bsonType": "date",
			},
		},
	},
}
