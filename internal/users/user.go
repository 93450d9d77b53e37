// Package users implements the user domain: the owners of property listings
// and the back-reference list that mirrors each property's creator.
package users

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered account. AllProperties lists, in insertion order, the
// ids of every property the user created.
type User struct {
	ID            uuid.UUID   `json:"id"`
	Name          string      `json:"name"`
	Email         string      `json:"email"`
	Avatar        string      `json:"avatar"`
	AllProperties []uuid.UUID `json:"allProperties"`
	CreatedAt     time.Time   `json:"createdAt"`
}

// RegisterCommand carries the profile the sign-in flow reports for a user.
type RegisterCommand struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar"`
}
