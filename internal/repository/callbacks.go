package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wavelinknet/darajapay-gobackend/internal/models"
)

type CallbackRepository struct {
	col *mongo.Collection
}

func NewCallbackRepository(db *mongo.Database) *CallbackRepository {
	return &CallbackRepository{col: db.Collection("mpesa_callbacks")}
}

// Save persists a callback result. Results carrying a CheckoutRequestID are
// keyed by it, so a redelivered callback replaces the earlier document;
// results without one get a fresh id every time.
func (r *CallbackRepository) Save(ctx context.Context, res *models.CallbackResult) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if res.CheckoutRequestID != "" {
		res.ID = res.CheckoutRequestID
		_, err := r.col.ReplaceOne(ctx, bson.M{"_id": res.ID}, res, options.Replace().SetUpsert(true))
		if err != nil {
			return fmt.Errorf("failed to save callback result %s: %w", res.ID, err)
		}
		return nil
	}

	res.ID = primitive.NewObjectID().Hex()
	if _, err := r.col.InsertOne(ctx, res); err != nil {
		return fmt.Errorf("failed to save callback result: %w", err)
	}
	return nil
}
