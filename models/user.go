package models

import "DoctorPortal/role"

// User is a loose profile document keyed by "email". Only "role" carries
// meaning for the API.
type User map[string]interface{}

func (u User) Email() string {
	s, _ := u["email"].(string)
	return s
}

func (u User) Role() string {
	s, _ := u["role"].(string)
	return s
}

func (u User) IsAdmin() bool {
	return u != nil && u.Role() == role.Admin
}
