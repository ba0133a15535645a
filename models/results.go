package models

// Write results mirror the driver's acknowledgement documents so clients of
// the original API keep seeing the same field names.

type InsertResult struct {
	Acknowledged bool        `json:"acknowledged"`
	InsertedID   interface{} `json:"insertedId"`
}

type UpdateResult struct {
	Acknowledged  bool        `json:"acknowledged"`
	MatchedCount  int64       `json:"matchedCount"`
	ModifiedCount int64       `json:"modifiedCount"`
	UpsertedCount int64       `json:"upsertedCount"`
	UpsertedID    interface{} `json:"upsertedId"`
}

type DeleteResult struct {
	Acknowledged bool  `json:"acknowledged"`
	DeletedCount int64 `json:"deletedCount"`
}

// PaymentConfirmation is the response of confirming a booking payment.
type PaymentConfirmation struct {
	UpdatedBooking UpdateResult `json:"updatedBooking"`
	PaymentInsert  InsertResult `json:"paymentInsert"`
}
