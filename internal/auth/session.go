package auth

import "time"

// Identity is what a session token asserts about the signed-in user.
// ID is the stringified users.id, or the provider subject when the user
// record could not be reconciled.
type Identity struct {
	ID      string
	Email   string
	Name    string
	Picture *string
}

// Session is the per-request view of a validated session token.
// ID, Email and Expires are always set; Name defaults to "" and Picture to nil.
type Session struct {
	ID      string    `json:"id"`
	Email   string    `json:"email"`
	Name    string    `json:"name"`
	Picture *string   `json:"picture"`
	Expires time.Time `json:"expires"`

	TokenID string `json:"-"`
}

// OAuthClaims are the identity claims returned by an OAuth provider.
type OAuthClaims struct {
	Provider string
	Subject  string
	Email    string
	Name     string
	Picture  string
}
