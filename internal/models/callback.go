package models

import "time"

// CallbackResult is the append-only log of gateway notifications. Keyed by
// CheckoutRequestID when the notification carried one (a redelivery then
// replaces the same document), otherwise by a generated id so the raw payload
// is never dropped.
type CallbackResult struct {
	ID                string                 `bson:"_id" json:"id"`
	Raw               map[string]interface{} `bson:"raw" json:"raw"`
	CheckoutRequestID string                 `bson:"checkout_request_id,omitempty" json:"checkoutRequestId,omitempty"`
	ResultCode        *int                   `bson:"result_code,omitempty" json:"resultCode,omitempty"`
	ResultDesc        string                 `bson:"result_desc,omitempty" json:"resultDesc,omitempty"`
	ReceivedAt        time.Time              `bson:"received_at" json:"receivedAt"`
}
