package model

import "time"

type Customer struct {
	ID            string     `db:"id" json:"id"`
	PhoneNumber   string     `db:"phone_number" json:"phoneNumber"`
	Name          string     `db:"name" json:"name"`
	LoyaltyPoints int        `db:"loyalty_points" json:"loyaltyPoints"`
	LastVisit     *time.Time `db:"last_visit" json:"lastVisit,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updatedAt"`
}
