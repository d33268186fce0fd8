package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wavelinknet/darajapay-gobackend/internal/models"
)

type CustomerRepository struct {
	col *mongo.Collection
}

func NewCustomerRepository(db *mongo.Database) *CustomerRepository {
	return &CustomerRepository{col: db.Collection("customers")}
}

// Upsert writes one synced customer, keyed by account number.
func (r *CustomerRepository) Upsert(ctx context.Context, c *models.Customer) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": c.AccountNumber}, c, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert customer %s: %w", c.AccountNumber, err)
	}
	return nil
}
