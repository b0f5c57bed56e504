package domain

import "time"

// Login types bound to a user record. A record created through signup is
// "email"; linking a Google identity transitions it to "google" permanently.
const (
	LoginTypeEmail    = "email"
	LoginTypeGoogle   = "google"
	LoginTypeFacebook = "facebook"
)

// DefaultPicture is the avatar assigned to email signups.
const DefaultPicture = "https://www.svgrepo.com/show/384670/account-avatar-profile-user.svg"

// User is one row in the users relation. The ID is assigned by the store on
// creation and never changes, as is CreatedAt. The OTP triple
// (OTP, OTPExpiry, OTPUsed) is written as one unit.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash *string
	LoginType    string
	GoogleID     *string
	Picture      string
	CreatedAt    time.Time
	OTP          *string
	OTPExpiry    *time.Time
	OTPUsed      bool
}

// HasGoogleID reports whether a Google identity is linked.
func (u *User) HasGoogleID() bool {
	return u.GoogleID != nil && *u.GoogleID != ""
}

// SessionUser is the snapshot of a user stored on an authenticated session.
// It carries no credentials.
type SessionUser struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Picture   string    `json:"picture"`
	LoginType string    `json:"login_type"`
	CreatedAt time.Time `json:"created_at"`
}

// Snapshot builds the session snapshot for a user record.
func (u *User) Snapshot() *SessionUser {
	return &SessionUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Picture:   u.Picture,
		LoginType: u.LoginType,
		CreatedAt: u.CreatedAt,
	}
}
