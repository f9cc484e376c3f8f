package models

import "time"

type User struct {
	ID         int64     `json:"id" db:"id"`
	ExternalID string    `json:"-" db:"external_id"`
	Username   string    `json:"username" db:"username"`
	Email      string    `json:"email" db:"email"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}
