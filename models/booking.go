package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Booking refers to its Service by name only (Treatment); TreatmentID is
// whatever the client sent and is never dereferenced.
type Booking struct {
	ID            primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	TreatmentID   string             `json:"treatmentId,omitempty" bson:"treatmentId,omitempty"`
	Treatment     string             `json:"treatment" bson:"treatment" binding:"required"`
	Date          string             `json:"date" bson:"date" binding:"required"`
	Slot          string             `json:"slot" bson:"slot" binding:"required"`
	Price         float64            `json:"price,omitempty" bson:"price,omitempty"`
	Patient       string             `json:"patient" bson:"patient" binding:"required"`
	PatientName   string             `json:"patientName,omitempty" bson:"patientName,omitempty"`
	Phone         string             `json:"phone,omitempty" bson:"phone,omitempty"`
	Paid          bool               `json:"paid,omitempty" bson:"paid,omitempty"`
	TransactionID string             `json:"transactionId,omitempty" bson:"transactionId,omitempty"`
}

// BookingKey is the (treatment, date, patient) triple a patient may hold
// at most one booking for.
type BookingKey struct {
	Treatment string
	Date      string
	Patient   string
}

func (b Booking) Key() BookingKey {
	return BookingKey{Treatment: b.Treatment, Date: b.Date, Patient: b.Patient}
}
