package services

import (
	"context"

	"DoctorPortal/models"
	"DoctorPortal/role"

	"go.uber.org/zap"
)

// IsAdmin reports whether the stored user for email has the admin role.
// An unknown email is not an admin.
func (s *Service) IsAdmin(ctx context.Context, email string) (bool, error) {
	u, err := s.store.Users.FindByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	return u.IsAdmin(), nil
}

// MakeAdmin grants the admin role, creating the user record if needed.
func (s *Service) MakeAdmin(ctx context.Context, email string) (models.UpdateResult, error) {
	email, err := requireString("email", email)
	if err != nil {
		return models.UpdateResult{}, err
	}
	res, err := s.store.Users.SetRole(ctx, email, role.Admin)
	if err != nil {
		s.log.Error("set admin role", zap.String("email", email), zap.Error(err))
		return models.UpdateResult{}, err
	}
	s.log.Info("admin role granted", zap.String("email", email))
	return res, nil
}
