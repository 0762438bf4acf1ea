package user

import "time"

// User is the identity row. Email and phone are nullable: an account needs
// at least one of them, enforced at registration time and by the store.
type User struct {
	ID           int64     `json:"id"`
	Email        *string   `json:"email"`
	Phone        *string   `json:"phone"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Public is the client-facing shape. The hash and creation timestamp stay
// server-side.
type Public struct {
	ID    int64   `json:"id"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
	Name  string  `json:"name"`
}

func (u User) Public() Public {
	return Public{
		ID:    u.ID,
		Email: u.Email,
		Phone: u.Phone,
		Name:  u.Name,
	}
}
