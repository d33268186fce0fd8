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

type TransactionRepository struct {
	col *mongo.Collection
}

func NewTransactionRepository(db *mongo.Database) *TransactionRepository {
	return &TransactionRepository{col: db.Collection("transactions")}
}

// EnsureIndexes creates the lookup indexes for the transactions collection.
// checkout_request_id is sparse because the field is absent until the gateway
// answers the push submission.
func (r *TransactionRepository) EnsureIndexes(ctx context.Context) error {
	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.M{"checkout_request_id": 1},
			Options: options.Index().SetSparse(true),
		},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
	}
	if _, err := r.col.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create transaction indexes: %w", err)
	}
	return nil
}

// Insert persists a new pending transaction and returns its generated id.
func (r *TransactionRepository) Insert(ctx context.Context, tx *models.PendingTransaction) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now().UTC()
	tx.ID = primitive.NewObjectID().Hex()
	tx.CreatedAt = now
	tx.UpdatedAt = now

	if _, err := r.col.InsertOne(ctx, tx); err != nil {
		return "", fmt.Errorf("failed to insert transaction: %w", err)
	}
	return tx.ID, nil
}

// MarkSubmitted records the outcome of the push submission. An empty
// checkoutRequestID leaves the join key unset.
func (r *TransactionRepository) MarkSubmitted(ctx context.Context, id, status string, respStatus int, respBody map[string]interface{}, checkoutRequestID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	set := bson.M{
		"status":          status,
		"response_status": respStatus,
		"response":        respBody,
		"updated_at":      time.Now().UTC(),
	}
	if checkoutRequestID != "" {
		set["checkout_request_id"] = checkoutRequestID
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update transaction %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkResolved applies the callback verdict to a pending transaction.
func (r *TransactionRepository) MarkResolved(ctx context.Context, id, status string, resultCode *int, resultDesc string, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	set := bson.M{
		"status":      status,
		"result_desc": resultDesc,
		"callback_at": at,
		"updated_at":  time.Now().UTC(),
	}
	if resultCode != nil {
		set["result_code"] = *resultCode
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update transaction %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// FindByCheckoutRequestID returns the first transaction carrying the given
// join key.
func (r *TransactionRepository) FindByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*models.PendingTransaction, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var tx models.PendingTransaction
	err := r.col.FindOne(ctx, bson.M{"checkout_request_id": checkoutRequestID}).Decode(&tx)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transaction by checkout request id: %w", err)
	}
	return &tx, nil
}

// List returns transactions newest first, optionally filtered by status.
func (r *TransactionRepository) List(ctx context.Context, status string) ([]models.PendingTransaction, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	query := bson.M{}
	if status != "" {
		query["status"] = status
	}

	cur, err := r.col.Find(ctx, query, options.Find().SetSort(bson.M{"created_at": -1}))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transactions: %w", err)
	}
	defer cur.Close(ctx)

	var txs []models.PendingTransaction
	if err := cur.All(ctx, &txs); err != nil {
		return nil, fmt.Errorf("failed to decode transactions: %w", err)
	}
	return txs, nil
}

// Get fetches a single transaction by id.
func (r *TransactionRepository) Get(ctx context.Context, id string) (*models.PendingTransaction, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var tx models.PendingTransaction
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&tx)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transaction %s: %w", id, err)
	}
	return &tx, nil
}
