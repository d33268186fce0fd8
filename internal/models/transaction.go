package models

import "time"

// Transaction lifecycle statuses. A record is created as StatusInitiated
// before the gateway call, moves to StatusPending or StatusFailed once the
// push submission resolves, and ends as StatusSuccess or StatusFailed when the
// callback is reconciled.
const (
	StatusInitiated = "initiated"
	StatusPending   = "pending"
	StatusSuccess   = "success"
	StatusFailed    = "failed"
)

// PendingTransaction is one STK push attempt. CheckoutRequestID is the join
// key the callback reconciler matches on; it stays unset until the gateway
// answers the push submission.
type PendingTransaction struct {
	ID                string                 `bson:"_id,omitempty" json:"id"`
	UserID            string                 `bson:"user_id,omitempty" json:"uid,omitempty"`
	Msisdn            string                 `bson:"msisdn" json:"msisdn"`
	Amount            int64                  `bson:"amount" json:"amount"`
	AccountRef        string                 `bson:"account_ref" json:"accountRef"`
	Description       string                 `bson:"description" json:"description"`
	Status            string                 `bson:"status" json:"status"`
	CheckoutRequestID string                 `bson:"checkout_request_id,omitempty" json:"checkoutRequestId,omitempty"`
	Request           map[string]interface{} `bson:"request,omitempty" json:"request,omitempty"`
	ResponseStatus    int                    `bson:"response_status,omitempty" json:"responseStatus,omitempty"`
	Response          map[string]interface{} `bson:"response,omitempty" json:"response,omitempty"`
	ResultCode        *int                   `bson:"result_code,omitempty" json:"resultCode,omitempty"`
	ResultDesc        string                 `bson:"result_desc,omitempty" json:"resultDesc,omitempty"`
	CallbackAt        *time.Time             `bson:"callback_at,omitempty" json:"callbackAt,omitempty"`
	CreatedAt         time.Time              `bson:"created_at" json:"createdAt"`
	UpdatedAt         time.Time              `bson:"updated_at" json:"updatedAt"`
}
