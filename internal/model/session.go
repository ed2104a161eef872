package model

import "time"

// Session is the durable record of one customer's in-progress dialogue.
// At most one live session exists per phone number; it is stored as a JSON
// value in Redis under a 24h TTL.
type Session struct {
	PhoneNumber       string     `json:"phoneNumber"`
	UserName          string     `json:"userName"`
	Step              Step       `json:"step"`
	SelectedService   *Service   `json:"selectedService,omitempty"`
	SelectedDate      *time.Time `json:"selectedDate,omitempty"`
	SelectedTimeRange string     `json:"selectedTimeRange,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	ExpiresAt         time.Time  `json:"expiresAt"`
}

// Expired reports whether the session is past its absolute expiry. A session
// past expiry is treated as absent regardless of its step.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
