package models

import "time"

// Token is a single-use bearer capability authorizing one resource redemption.
// The record lives in the token store until it is consumed or its TTL passes,
// whichever comes first.
type Token struct {
	Value     string
	CreatedAt time.Time
	ExpireAt  time.Time
}
