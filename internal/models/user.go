package models

import "time"

// Rôles attribuables à un compte. Les annonces créées par un "user" passent
// par l'approbation d'un "admin".
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User représente un compte du système
type User struct {
	ID                int        `json:"id"`
	Name              string     `json:"name"`
	Email             string     `json:"email"`
	Password          string     `json:"-"` // Ne jamais exposer le hash
	Role              string     `json:"role"`
	EmailVerifiedAt   *time.Time `json:"email_verified_at"`
	VerificationToken *string    `json:"-"`
	ProfilePicture    *string    `json:"profile_picture"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// IsVerified indique si l'email du compte a été vérifié
func (u *User) IsVerified() bool {
	return u.EmailVerifiedAt != nil
}
