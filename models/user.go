package models

import "time"

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"isActive"`
	IsDeleted bool      `json:"isDeleted"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Identity is the slice of a user the cart and order flows care about.
type Identity struct {
	ID        int64
	Email     string
	Role      string
	IsActive  bool
	IsDeleted bool
}

type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
