package models

import (
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Payment struct {
	ID            primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Booking       string             `json:"booking" bson:"booking"`
	TransactionID string             `json:"transactionId" bson:"transactionId" binding:"required"`
	Price         float64            `json:"price,omitempty" bson:"price,omitempty"`
	Patient       string             `json:"patient,omitempty" bson:"patient,omitempty"`
	PatientName   string             `json:"patientName,omitempty" bson:"patientName,omitempty"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
	// Extra holds whatever else the client sent, such as the appointment
	// summary or processor metadata. It is stored alongside the known fields.
	Extra map[string]interface{} `json:"-" bson:",inline"`
}

var paymentFields = []string{"_id", "booking", "transactionId", "price", "patient", "patientName", "createdAt"}

// UnmarshalJSON decodes the known fields and keeps the rest in Extra.
func (p *Payment) UnmarshalJSON(data []byte) error {
	type plain Payment
	var typed plain
	if err := json.Unmarshal(data, &typed); err != nil {
		return err
	}
	var rest map[string]interface{}
	if err := json.Unmarshal(data, &rest); err != nil {
		return err
	}
	for _, k := range paymentFields {
		delete(rest, k)
	}
	typed.Extra = nil
	if len(rest) > 0 {
		typed.Extra = rest
	}
	*p = Payment(typed)
	return nil
}
