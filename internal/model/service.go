package model

import "time"

// Service is one bookable catalog entry. ServiceID is the stable,
// human-assigned identifier used as the list-row id in the channel
// (e.g. "haircut_men"); ID is the storage key.
type Service struct {
	ID              string    `db:"id" json:"id"`
	ServiceID       string    `db:"service_id" json:"serviceId"`
	Category        string    `db:"category" json:"category"`
	Title           string    `db:"title" json:"title"`
	Description     string    `db:"description" json:"description"`
	DurationMinutes int       `db:"duration_minutes" json:"durationMinutes"`
	Price           int       `db:"price" json:"price"`
	LoyaltyPoints   int       `db:"loyalty_points" json:"loyaltyPoints"`
	IsActive        bool      `db:"is_active" json:"isActive"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time `db:"updated_at" json:"updatedAt"`
}

type CreateServiceParams struct {
	ServiceID       string `json:"serviceId"`
	Category        string `json:"category"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	DurationMinutes int    `json:"durationMinutes"`
	Price           int    `json:"price"`
	LoyaltyPoints   int    `json:"loyaltyPoints"`
}
