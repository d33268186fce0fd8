package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const darajaSettingsKey = "daraja"

type SettingsRepository struct {
	col *mongo.Collection
}

func NewSettingsRepository(db *mongo.Database) *SettingsRepository {
	return &SettingsRepository{col: db.Collection("settings")}
}

// FetchDarajaSettings loads the fallback credential document. An absent
// document is not an error; the resolver decides what missing config means.
func (r *SettingsRepository) FetchDarajaSettings(ctx context.Context) (map[string]interface{}, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var doc map[string]interface{}
	err := r.col.FindOne(ctx, bson.M{"_id": darajaSettingsKey}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch daraja settings: %w", err)
	}
	return doc, nil
}
