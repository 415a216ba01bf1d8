package mongodb

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const ReadingsCollection = "readings"

type MongoDB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

func NewMongoDB(ctx context.Context, uri string, dbName string) (*MongoDB, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to MongoDB")
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, errors.Wrap(err, "failed to ping MongoDB")
	}

	db := client.Database(dbName)
	return &MongoDB{Client: client, Database: db}, nil
}

func (m *MongoDB) Close(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}

// SetUpCollections recreates the readings collection with its schema and index.
func SetUpCollections(ctx context.Context, db *mongo.Database) error {
	err := db.Collection(ReadingsCollection).Drop(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to drop readings collection")
	}

	readingValidation := bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": []string{"date", "time", "period", "glucose"},
			"properties": bson.M{
				"date":    bson.M{"bsonType": "date"},
				"time":    bson.M{"bsonType": "string"},
				"period":  bson.M{"bsonType": "string"},
				"glucose": bson.M{"bsonType": "double", "exclusiveMinimum": true, "minimum": 0},
				"notes":   bson.M{"bsonType": "string"},
			},
		},
	}

	opt := options.CreateCollection().SetValidator(readingValidation)
	if err := db.CreateCollection(ctx, ReadingsCollection, opt); err != nil {
		return errors.Wrap(err, "failed to create collection")
	}

	readingsIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "date", Value: 1},
			{Key: "time", Value: 1},
		},
	}
	_, err = db.Collection(ReadingsCollection).Indexes().CreateOne(ctx, readingsIndex)
	if err != nil {
		return errors.Wrap(err, "failed to create index")
	}

	return nil
}
