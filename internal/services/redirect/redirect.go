package redirect

import (
	"context"
	"filegate/internal/domain/models"
	"filegate/internal/services/domains"
	"filegate/internal/services/redirect/interfaces"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
)

const (
	domainPlaceholder = "{domain}"
	emailPlaceholder  = "{email}"
)

// Resolver derives redirect targets from validated emails and signed fetch
// URLs for the gated resource.
type Resolver struct {
	log            *slog.Logger
	template       string
	signer         interfaces.ResourceSigner
	filenamePrefix string
	filenameExt    string
}

// New creates an instance of Resolver service
func New(
	log *slog.Logger,
	template string,
	signer interfaces.ResourceSigner,
	filenamePrefix string,
	filenameExt string,
) *Resolver {
	return &Resolver{
		log:            log,
		template:       template,
		signer:         signer,
		filenamePrefix: filenamePrefix,
		filenameExt:    filenameExt,
	}
}

// BaseLabel returns the second-to-last dot-separated label of domain, or the
// whole string when there is only one label. This is a brand-name heuristic,
// not a public-suffix-aware parse: "mail.example.co" yields "example",
// "example.co.uk" yields "co".
func BaseLabel(domain string) string {
	labels := strings.Split(domain, ".")
	if len(labels) > 1 {
		return labels[len(labels)-2]
	}
	return domain
}

// ResolveRedirect substitutes the email and its base domain label into the
// configured template. Substitution is literal: the email is not URL-encoded
// and the result is not validated, callers must treat it as an opaque
// redirect target.
func (r *Resolver) ResolveRedirect(email string) (string, error) {
	domain, err := domains.NormalizeDomain(email)
	if err != nil {
		return "", err
	}

	resolved := strings.Replace(r.template, domainPlaceholder, BaseLabel(domain), 1)
	resolved = strings.Replace(resolved, emailPlaceholder, email, 1)
	return resolved, nil
}

// SignResourceGrant requests a signed fetch URL for the gated object under a
// randomized client-visible filename. The 4-digit suffix is cosmetic, no
// entropy requirement applies to it.
func (r *Resolver) SignResourceGrant(ctx context.Context) (models.ResourceGrant, error) {
	const op = "redirect.SignResourceGrant"

	filename := fmt.Sprintf("%s_%04d.%s", r.filenamePrefix, rand.IntN(10000), r.filenameExt)

	signedURL, err := r.signer.SignedURL(ctx, filename)
	if err != nil {
		r.log.Error("signing resource grant failed",
			slog.String("op", op), slog.Any("error", err))
		return models.ResourceGrant{}, err
	}

	return models.ResourceGrant{
		URL:      signedURL,
		Filename: filename,
		ValidFor: r.signer.GrantTTL(),
	}, nil
}
