package verification

import (
	"context"
	"errors"
	"filegate/internal/domain/models"
	"filegate/internal/services/domains"
	"filegate/internal/services/verification/interfaces"
	"filegate/internal/storage"
	"log/slog"
	"regexp"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidEmail   = errors.New("invalid email format")
	ErrDomainRejected = errors.New("email domain not allowed")
	ErrTokenInvalid   = errors.New("token invalid, expired or already used")
)

// local@domain.tld syntactic shape, checked before any domain or token state
// is touched
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const logWriteTimeout = 5 * time.Second

// Verification orchestrates the gate end to end: token issuance, email
// validation against the domain allowlist, and exactly-once token redemption
// into a signed resource grant.
type Verification struct {
	log      *slog.Logger
	tokens   interfaces.TokenStorage
	gate     interfaces.DomainChecker
	resolver interfaces.RedirectProvider
	emailLog interfaces.EmailLogStorage
}

// New creates an instance of Verification service
func New(
	log *slog.Logger,
	tokens interfaces.TokenStorage,
	gate interfaces.DomainChecker,
	resolver interfaces.RedirectProvider,
	emailLog interfaces.EmailLogStorage,
) *Verification {
	return &Verification{
		log:      log,
		tokens:   tokens,
		gate:     gate,
		resolver: resolver,
		emailLog: emailLog,
	}
}

// IssueToken creates a fresh token record. An empty value means the caller
// wants a server-generated one; either way the issued value is returned.
func (v *Verification) IssueToken(ctx context.Context, value string) (string, error) {
	const op = "verification.IssueToken"
	logger := v.log.With(slog.String("op", op))

	if value == "" {
		value = uuid.NewString()
	}

	if err := v.tokens.Issue(ctx, value); err != nil {
		logger.Error("error issuing token", slog.Any("error", err))
		return "", err
	}
	logger.Info("token issued")
	return value, nil
}

// VerifyEmail checks the submitted email's shape and its domain against the
// allowlist, returning the resolved redirect target on acceptance. The token
// is not touched here: a rejected email leaves it live for another attempt
// within the TTL. Every decision is recorded in the email log without ever
// affecting the outcome.
func (v *Verification) VerifyEmail(ctx context.Context, email string) (string, error) {
	const op = "verification.VerifyEmail"

	if !emailPattern.MatchString(email) {
		return "", ErrInvalidEmail
	}

	domain, err := domains.NormalizeDomain(email)
	if err != nil {
		return "", ErrInvalidEmail
	}
	logger := v.log.With(slog.String("op", op), slog.String("email-provider", domain))

	allowed := v.gate.IsAllowed(ctx, domain)
	v.recordEmail(email, domain, allowed)

	if !allowed {
		logger.Info("email domain rejected")
		return "", ErrDomainRejected
	}

	redirectURL, err := v.resolver.ResolveRedirect(email)
	if err != nil {
		logger.Error("error resolving redirect", slog.Any("error", err))
		return "", err
	}
	logger.Info("email accepted")
	return redirectURL, nil
}

// RedeemToken atomically consumes the token and, only after a successful
// consume, signs a resource grant. A signing failure after the consume is an
// accepted lossy mode: the token stays consumed, the error is logged for
// operators and surfaced as a dependency failure.
func (v *Verification) RedeemToken(ctx context.Context, value string) (models.ResourceGrant, error) {
	const op = "verification.RedeemToken"
	logger := v.log.With(slog.String("op", op))

	if err := v.tokens.ConsumeIfValid(ctx, value); err != nil {
		if errors.Is(err, storage.ErrTokenNotFound) {
			return models.ResourceGrant{}, ErrTokenInvalid
		}
		logger.Error("error consuming token", slog.Any("error", err))
		return models.ResourceGrant{}, err
	}

	grant, err := v.resolver.SignResourceGrant(ctx)
	if err != nil {
		logger.Error("token consumed but grant signing failed", slog.Any("error", err))
		return models.ResourceGrant{}, err
	}
	logger.Info("token redeemed", slog.String("filename", grant.Filename))
	return grant, nil
}

// recordEmail writes the log row in the background; the verification response
// never waits on it or fails because of it.
func (v *Verification) recordEmail(email, domain string, accepted bool) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), logWriteTimeout)
		defer cancel()
		if err := v.emailLog.Save(ctx, email, domain, accepted); err != nil {
			v.log.Error("error saving email log", slog.Any("error", err))
		}
	}()
}
