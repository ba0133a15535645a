package services

import (
	"context"

	"DoctorPortal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func (s *Service) AddDoctor(ctx context.Context, d models.Doctor) (models.InsertResult, error) {
	email, err := requireString("email", d.Email)
	if err != nil {
		return models.InsertResult{}, err
	}
	d.Email = email
	d.ID = primitive.NilObjectID
	res, err := s.store.Doctors.Insert(ctx, d)
	if err != nil {
		s.log.Error("insert doctor", zap.String("email", email), zap.Error(err))
	}
	return res, err
}

func (s *Service) Doctors(ctx context.Context) ([]models.Doctor, error) {
	return s.store.Doctors.List(ctx)
}

func (s *Service) RemoveDoctor(ctx context.Context, email string) (models.DeleteResult, error) {
	res, err := s.store.Doctors.DeleteByEmail(ctx, email)
	if err != nil {
		s.log.Error("delete doctor", zap.String("email", email), zap.Error(err))
	}
	return res, err
}
