package models

// Admin is an operator account for the management endpoints.
type Admin struct {
	ID       int64
	Username string
	PassHash []byte
}
