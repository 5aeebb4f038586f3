package models

import "time"

// EmailLog records one email submitted to the verification gate.
type EmailLog struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Domain    string    `json:"domain"`
	Accepted  bool      `json:"accepted"`
	CreatedAt time.Time `json:"created_at"`
}
