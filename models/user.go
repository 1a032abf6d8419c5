package models

import "time"

// User is a car-sharing member. Admins import usage data and manage price
// schemes; regular members pay their own reservations.
type User struct {
	ID           string    `bson:"id" json:"id"`
	Email        string    `bson:"email" json:"email"`
	Name         string    `bson:"name" json:"name"`
	IsAdmin      bool      `bson:"is_admin" json:"is_admin"`
	PasswordHash string    `bson:"password_hash" json:"-"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}
