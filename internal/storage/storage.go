package storage

import "errors"

var (
	ErrTokenNotFound      = errors.New("token not found")
	ErrStoreUnavailable   = errors.New("token store unavailable")
	ErrDomainExists       = errors.New("domain already allowed")
	ErrDomainNotFound     = errors.New("domain not found")
	ErrLogNotFound        = errors.New("email log not found")
	ErrAdminNotFound      = errors.New("admin not found")
	ErrSigningUnavailable = errors.New("signing backend unavailable")
)
