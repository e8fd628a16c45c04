// Package models defines the persistent entities of the gateway.
package models

import "time"

// User is a known identity in the identity directory. PublicKey is the
// external public-key identity string and never changes; rows are created
// on first login and never deleted by this system.
type User struct {
	ID        string
	PublicKey string
	CreatedAt time.Time
}
