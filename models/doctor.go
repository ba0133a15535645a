package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type Doctor struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name"`
	Email     string             `json:"email" bson:"email" binding:"required,email"`
	Specialty string             `json:"specialty,omitempty" bson:"specialty,omitempty"`
	Img       string             `json:"img,omitempty" bson:"img,omitempty"`
}
