package domain

import "time"

// User models one registered SafeStreet account. Name and email are both
// unique across all users and either one is accepted as a login identifier.
type User struct {
	ID              string    `json:"-"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"-"`
	IsEmailVerified bool      `json:"is_email_verified"`
	CreatedAt       time.Time `json:"created_at"`
}

// PublicProfile is the only user representation ever returned to clients.
// The internal id and the password hash stay server-side.
type PublicProfile struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Profile returns the client-facing view of the user.
func (u *User) Profile() PublicProfile {
	return PublicProfile{Name: u.Name, Email: u.Email}
}
