package models

import "time"

// User is an account created through checkout sign up.
type User struct {
	ID             string    `json:"id" bson:"id" db:"id"`
	Email          string    `json:"email" bson:"email" db:"email"`
	FirstName      string    `json:"firstName" bson:"first_name" db:"first_name"`
	LastName       string    `json:"lastName" bson:"last_name" db:"last_name"`
	DisplayName    string    `json:"displayName" bson:"display_name" db:"display_name"`
	PasswordHash   string    `json:"-" bson:"password_hash" db:"password_hash"`
	MarketingOptIn bool      `json:"marketingOptIn" bson:"marketing_opt_in" db:"marketing_opt_in"`
	CreatedAt      time.Time `json:"createdAt" bson:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" bson:"updated_at" db:"updated_at"`
}

// UserProfile is the non-credential part of a sign up.
type UserProfile struct {
	FirstName      string
	LastName       string
	MarketingOptIn bool
}

// Session is an authenticated session issued by sign in.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}
