package repository

import (
	"context"
	"errors"
	"fmt"
	carserrors "rentwheels/internal/cars/errors"
	"rentwheels/pkg/config"
	mongotx "rentwheels/pkg/db/mongo"
	"rentwheels/pkg/model"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Cars"
)

type SortOrder int

const (
	// SortNone keeps natural storage order.
	SortNone SortOrder = iota
	SortNewest
	// SortPriceDesc orders by rentPrice descending; equal prices keep insertion order.
	SortPriceDesc
)

type ListQuery struct {
	ProviderEmail string
	Sort          SortOrder
	Limit         int
}

type CarRepository interface {
	Create(ctx context.Context, car *model.Car) error
	FindByID(ctx context.Context, id string) (*model.Car, error)
	Find(ctx context.Context, query ListQuery) ([]*model.Car, error)
	Update(ctx context.Context, id string, updates *model.CarUpdate) (*mongo.UpdateResult, error)
	Delete(ctx context.Context, id string) error
	// ClaimAvailable flips the car to unavailable only if it is not already.
	// It reports false when another booking holds the car.
	ClaimAvailable(ctx context.Context, id string) (bool, error)
	Release(ctx context.Context, id string) error
}

type mongoCarRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoCarRepository(cfg *config.Config) CarRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoCarRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoCarRepository) Create(ctx context.Context, car *model.Car) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if car.CreatedAt.IsZero() {
		car.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	}
	result, err := r.collection.InsertOne(ctx, car)
	if err != nil {
		return fmt.Errorf("failed to create car: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		car.ID = oid.Hex()
	}
	return nil
}

func (r *mongoCarRepository) FindByID(ctx context.Context, id string) (*model.Car, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", carserrors.ErrInvalidID, id)
	}

	var car model.Car
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&car)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, carserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find car: %w", err)
	}

	return &car, nil
}

func (r *mongoCarRepository) Find(ctx context.Context, query ListQuery) ([]*model.Car, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{}
	if query.ProviderEmail != "" {
		filter["providerEmail"] = query.ProviderEmail
	}

	opts := options.Find()
	switch query.Sort {
	case SortNewest:
		opts.SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	case SortPriceDesc:
		opts.SetSort(bson.D{{Key: "rentPrice", Value: -1}, {Key: "_id", Value: 1}})
	}
	if query.Limit > 0 {
		opts.SetLimit(int64(query.Limit))
	}

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find cars: %w", err)
	}
	defer cursor.Close(ctx)

	cars := []*model.Car{}
	if err = cursor.All(ctx, &cars); err != nil {
		return nil, fmt.Errorf("failed to decode cars: %w", err)
	}

	return cars, nil
}

func (r *mongoCarRepository) Update(ctx context.Context, id string, updates *model.CarUpdate) (*mongo.UpdateResult, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", carserrors.ErrInvalidID, id)
	}

	fields := buildSetFields(updates)
	if len(fields) == 0 {
		return &mongo.UpdateResult{}, nil
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": fields})
	if err != nil {
		return nil, fmt.Errorf("failed to update car: %w", err)
	}

	if result.MatchedCount == 0 {
		return nil, carserrors.ErrNotFound
	}

	return result, nil
}

// reservedFields are never written by a patch, even when sent as extras.
var reservedFields = map[string]struct{}{
	"_id":       {},
	"id":        {},
	"status":    {},
	"createdAt": {},
}

func buildSetFields(u *model.CarUpdate) bson.M {
	fields := bson.M{}
	if u == nil {
		return fields
	}
	for key, value := range u.Extra {
		if _, reserved := reservedFields[key]; reserved || key == "" || key[0] == '$' || strings.Contains(key, ".") {
			continue
		}
		fields[key] = value
	}
	if u.CarName != nil {
		fields["carName"] = *u.CarName
	}
	if u.Description != nil {
		fields["description"] = *u.Description
	}
	if u.Category != nil {
		fields["category"] = *u.Category
	}
	if u.RentPrice != nil {
		fields["rentPrice"] = *u.RentPrice
	}
	if u.Location != nil {
		fields["location"] = *u.Location
	}
	if u.ImageURL != nil {
		fields["imageUrl"] = *u.ImageURL
	}
	if u.ProviderName != nil {
		fields["providerName"] = *u.ProviderName
	}
	if u.ProviderEmail != nil {
		fields["providerEmail"] = *u.ProviderEmail
	}
	return fields
}

func (r *mongoCarRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", carserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete car: %w", err)
	}

	if result.DeletedCount == 0 {
		return carserrors.ErrNotFound
	}

	return nil
}

func (r *mongoCarRepository) ClaimAvailable(ctx context.Context, id string) (bool, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, fmt.Errorf("%w: %s", carserrors.ErrInvalidID, id)
	}

	// The status predicate makes this a compare-and-set: a single-document update is
	// atomic, so of N concurrent claims at most one matches.
	filter := bson.M{
		"_id":    objectID,
		"status": bson.M{"$ne": model.CarUnavailable},
	}
	update := bson.M{"$set": bson.M{"status": model.CarUnavailable}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to claim car: %w", err)
	}

	return result.MatchedCount == 1, nil
}

func (r *mongoCarRepository) Release(ctx context.Context, id string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", carserrors.ErrInvalidID, id)
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{"status": model.CarAvailable}},
	)
	if err != nil {
		return fmt.Errorf("failed to release car: %w", err)
	}

	if result.MatchedCount == 0 {
		return carserrors.ErrNotFound
	}

	return nil
}
