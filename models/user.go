package models

import "time"

// UserRole соответствует колонке users.role.
type UserRole string

const (
	RoleAdmin  UserRole = "ADMIN"
	RolePlayer UserRole = "PLAYER"
)

// User: учётная запись сотрудника клуба (вход в админку).
type User struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	Name         string    `json:"name" db:"name"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         UserRole  `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
