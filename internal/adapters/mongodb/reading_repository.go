package mongodb

import (
	"context"
	"glucosedash/internal/domain"
	"glucosedash/internal/ports"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ReadingRepository struct {
	collection *mongo.Collection
}

var _ ports.ReadingRepository = (*ReadingRepository)(nil)

func NewReadingRepository(db *MongoDB) *ReadingRepository {
	return &ReadingRepository{
		collection: db.Database.Collection(ReadingsCollection),
	}
}

// SaveReadings inserts readings in one batch and returns how many were stored.
func (r *ReadingRepository) SaveReadings(ctx context.Context, readings []domain.Reading) (int, error) {
	if len(readings) == 0 {
		return 0, nil
	}

	docs := make([]interface{}, len(readings))
	for i, reading := range readings {
		docs[i] = reading
	}

	result, err := r.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err != nil {
		return 0, errors.Wrap(err, "failed to save readings")
	}

	return len(result.InsertedIDs), nil
}

func (r *ReadingRepository) FetchReadings(ctx context.Context) ([]domain.Reading, error) {
	return r.find(ctx, bson.M{})
}

func (r *ReadingRepository) FetchReadingsBetween(ctx context.Context, startDate, endDate time.Time) ([]domain.Reading, error) {
	if endDate.Before(startDate) {
		return nil, errors.Wrapf(domain.ErrInvalidDateRange, "start %s after end %s", startDate.Format(time.DateOnly), endDate.Format(time.DateOnly))
	}

	filter := bson.M{
		"date": bson.M{
			"$gte": startDate,
			"$lte": endDate,
		},
	}
	return r.find(ctx, filter)
}

func (r *ReadingRepository) find(ctx context.Context, filter bson.M) ([]domain.Reading, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "time", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find readings")
	}
	defer cursor.Close(ctx)

	readings := []domain.Reading{}
	if err = cursor.All(ctx, &readings); err != nil {
		return nil, errors.Wrap(err, "failed to parse readings")
	}

	return readings, nil
}
