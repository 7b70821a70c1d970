package models

import "time"

// User is an identity created or refreshed on every successful login
type User struct {
	UserID      string    `json:"user_id" bson:"_id"`
	Name        string    `json:"name" bson:"name"`
	DisplayName string    `json:"display_name,omitempty" bson:"display_name"`
	Username    string    `json:"username" bson:"username"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
	LastLoginAt time.Time `json:"last_login_at" bson:"last_login_at"`
}

// Identity is what the external identity provider vouches for at login
type Identity struct {
	Subject  string `json:"sub" validate:"required"`
	Name     string `json:"name"`
	Username string `json:"username" validate:"required"`
}

// PublicName returns the display name override, falling back to the provider
// name and finally the user id
func (u *User) PublicName() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	if u.Name != "" {
		return u.Name
	}
	return u.UserID
}
