package models

import "time"

// ResourceGrant is a time-limited signed fetch URL for the gated object.
// It is never persisted; the storage backend rejects the URL once ValidFor
// has passed.
type ResourceGrant struct {
	URL      string
	Filename string
	ValidFor time.Duration
}
