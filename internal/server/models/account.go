// Package models contains the persisted data structures of the auth service.
package models

import "time"

// Account is the identity record stored for each registered user.
// Username and Email are each unique across all accounts; ID and CreatedAt
// are assigned by the store at creation and never change afterwards.
// PasswordHash is opaque to every layer above the store and never leaves
// the server.
type Account struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
