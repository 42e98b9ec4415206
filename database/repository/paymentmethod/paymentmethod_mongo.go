package paymentMethodRepo

import (
	"context"
	"fmt"
	"time"

	"traceaq/database"
	"traceaq/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoPaymentMethodRepo struct {
	coll *mongo.Collection
}

func NewMongoPaymentMethodRepo(db *mongo.Database) PaymentMethodRepository {
	repo := &MongoPaymentMethodRepo{coll: db.Collection("payment_methods")}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func (r *MongoPaymentMethodRepo) ensureIndexes() error {
	ctx, cancel := database.NewContext(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "stripe_payment_method_id", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (r *MongoPaymentMethodRepo) Create(ctx context.Context, pm *models.PaymentMethod) error {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, pm); err != nil {
		if database.IsDuplicate(err) {
			return fmt.Errorf("payment method %s: %w", pm.StripePaymentMethodID, models.ErrConflict)
		}
		return fmt.Errorf("failed to save payment method: %w", err)
	}
	return nil
}

func (r *MongoPaymentMethodRepo) ListByUser(ctx context.Context, userID string) ([]models.PaymentMethod, error) {
	ctx, cancel := database.NewContext(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "is_default", Value: -1}, {Key: "created_at", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment methods: %w", err)
	}
	defer cursor.Close(ctx)

	methods := []models.PaymentMethod{}
	if err := cursor.All(ctx, &methods); err != nil {
		return nil, fmt.Errorf("failed to decode payment methods: %w", err)
	}
	return methods, nil
}

func (r *MongoPaymentMethodRepo) Delete(ctx context.Context, userID, id string) error {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	result, err := r.coll.DeleteOne(ctx, bson.M{"id": id, "user_id": userID})
	if err != nil {
		return fmt.Errorf("failed to delete payment method %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("payment method %s: %w", id, models.ErrNotFound)
	}
	return nil
}

// SetDefault rewrites every method of the user in one pipeline update so exactly one
// ends up flagged.
func (r *MongoPaymentMethodRepo) SetDefault(ctx context.Context, userID, id string) error {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, bson.M{"id": id, "user_id": userID})
	if err != nil {
		return fmt.Errorf("failed to look up payment method %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("payment method %s: %w", id, models.ErrNotFound)
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "is_default", Value: bson.D{{Key: "$eq", Value: bson.A{"$id", id}}}},
		}}},
	}
	if _, err := r.coll.UpdateMany(ctx, bson.M{"user_id": userID}, pipeline); err != nil {
		return fmt.Errorf("failed to set default payment method: %w", err)
	}
	return nil
}
