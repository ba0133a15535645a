package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Service is a bookable treatment. Slots are opaque strings in display order.
type Service struct {
	ID    primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name  string             `json:"name" bson:"name"`
	Price float64            `json:"price" bson:"price"`
	Slots []string           `json:"slots" bson:"slots"`
}

// ServiceSummary is a Service projected to its name.
type ServiceSummary struct {
	ID   primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name string             `json:"name" bson:"name"`
}
