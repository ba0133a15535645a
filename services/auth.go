package services

import (
	"context"

	"DoctorPortal/models"

	"go.uber.org/zap"
)

// UserResult is the outcome of saving a user profile plus a fresh token.
type UserResult struct {
	Result models.UpdateResult `json:"result"`
	Token  string              `json:"token"`
}

// fields a profile update may never set
var protectedUserFields = []string{"_id", "email", "role"}

/*
* Drop protected fields from the profile
* Upsert the user by email
* Issue a token for the email
 */
func (s *Service) SaveUser(ctx context.Context, email string, profile map[string]interface{}) (UserResult, error) {
	email, err := requireString("email", email)
	if err != nil {
		return UserResult{}, err
	}
	fields := make(map[string]interface{}, len(profile))
	for k, v := range profile {
		fields[k] = v
	}
	for _, k := range protectedUserFields {
		delete(fields, k)
	}

	res, err := s.store.Users.Upsert(ctx, email, fields)
	if err != nil {
		s.log.Error("upsert user", zap.String("email", email), zap.Error(err))
		return UserResult{}, err
	}
	tok, err := s.tokens.Issue(email)
	if err != nil {
		s.log.Error("issue token", zap.String("email", email), zap.Error(err))
		return UserResult{}, err
	}
	return UserResult{Result: res, Token: tok}, nil
}

func (s *Service) Users(ctx context.Context) ([]models.User, error) {
	return s.store.Users.List(ctx)
}
