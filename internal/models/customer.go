package models

import "time"

// Customer mirrors one account from the ISP customer-management API.
type Customer struct {
	AccountNumber string    `bson:"_id" json:"accountNumber"`
	FullName      string    `bson:"full_name" json:"fullName"`
	Msisdn        string    `bson:"msisdn" json:"msisdn"`
	Plan          string    `bson:"plan" json:"plan"`
	Status        string    `bson:"status" json:"status"`
	BalanceCents  int64     `bson:"balance_cents" json:"balanceCents"`
	SyncedAt      time.Time `bson:"synced_at" json:"syncedAt"`
}
