package interfaces

import (
	"context"
	"time"
)

// ResourceSigner produces time-limited signed fetch URLs for the gated object
type ResourceSigner interface {
	SignedURL(ctx context.Context, filename string) (string, error)
	GrantTTL() time.Duration
}
