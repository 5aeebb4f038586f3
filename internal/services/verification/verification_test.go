package verification

import (
	"context"
	"errors"
	"filegate/internal/domain/models"
	"filegate/internal/storage"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTokenStorage struct {
	issued   map[string]bool
	consumes atomic.Int64
}

func newFakeTokenStorage() *fakeTokenStorage {
	return &fakeTokenStorage{issued: make(map[string]bool)}
}

func (s *fakeTokenStorage) Issue(_ context.Context, value string) error {
	s.issued[value] = true
	return nil
}

func (s *fakeTokenStorage) ConsumeIfValid(_ context.Context, value string) error {
	s.consumes.Add(1)
	if !s.issued[value] {
		return storage.ErrTokenNotFound
	}
	delete(s.issued, value)
	return nil
}

type fakeGate struct {
	allowed map[string]bool
}

func (g *fakeGate) IsAllowed(_ context.Context, domain string) bool {
	return g.allowed[domain]
}

type fakeResolver struct {
	signErr error
}

func (r *fakeResolver) ResolveRedirect(email string) (string, error) {
	return "https://resolved.example.net/?e=" + email, nil
}

func (r *fakeResolver) SignResourceGrant(_ context.Context) (models.ResourceGrant, error) {
	if r.signErr != nil {
		return models.ResourceGrant{}, r.signErr
	}
	return models.ResourceGrant{
		URL:      "https://storage.local/bucket/key?X-Amz-Expires=60",
		Filename: "report_0042.pdf",
		ValidFor: time.Minute,
	}, nil
}

type fakeEmailLog struct {
	saved chan models.EmailLog
	err   error
}

func newFakeEmailLog() *fakeEmailLog {
	return &fakeEmailLog{saved: make(chan models.EmailLog, 8)}
}

func (l *fakeEmailLog) Save(_ context.Context, email, domain string, accepted bool) error {
	if l.err != nil {
		return l.err
	}
	l.saved <- models.EmailLog{Email: email, Domain: domain, Accepted: accepted}
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newService(tokens *fakeTokenStorage, gate *fakeGate, resolver *fakeResolver, emailLog *fakeEmailLog) *Verification {
	return New(discardLogger(), tokens, gate, resolver, emailLog)
}

func TestIssueTokenGeneratesValue(t *testing.T) {
	tokens := newFakeTokenStorage()
	svc := newService(tokens, &fakeGate{}, &fakeResolver{}, newFakeEmailLog())

	value, err := svc.IssueToken(context.Background(), "")
	require.NoError(t, err)
	assert.NotEmpty(t, value)
	assert.True(t, tokens.issued[value])
}

func TestIssueTokenKeepsClientValue(t *testing.T) {
	tokens := newFakeTokenStorage()
	svc := newService(tokens, &fakeGate{}, &fakeResolver{}, newFakeEmailLog())

	value, err := svc.IssueToken(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "abc123", value)
	assert.True(t, tokens.issued["abc123"])
}

func TestVerifyEmailInvalidFormat(t *testing.T) {
	tokens := newFakeTokenStorage()
	svc := newService(tokens, &fakeGate{allowed: map[string]bool{"acme.co": true}}, &fakeResolver{}, newFakeEmailLog())

	for _, email := range []string{"plainaddress", "missing@tld", "two words@acme.co", "@acme.co "} {
		_, err := svc.VerifyEmail(context.Background(), email)
		assert.ErrorIs(t, err, ErrInvalidEmail, email)
	}
	// Format failures never reach the token store.
	assert.Equal(t, int64(0), tokens.consumes.Load())
}

func TestVerifyEmailDomainRejected(t *testing.T) {
	tokens := newFakeTokenStorage()
	emailLog := newFakeEmailLog()
	svc := newService(tokens, &fakeGate{allowed: map[string]bool{}}, &fakeResolver{}, emailLog)

	_, err := svc.VerifyEmail(context.Background(), "user@denied.org")
	assert.ErrorIs(t, err, ErrDomainRejected)

	select {
	case entry := <-emailLog.saved:
		assert.Equal(t, "user@denied.org", entry.Email)
		assert.Equal(t, "denied.org", entry.Domain)
		assert.False(t, entry.Accepted)
	case <-time.After(time.Second):
		t.Fatal("rejected email was not logged")
	}
}

// A rejected email must leave token state untouched so the same token can be
// retried with a different address within the TTL.
func TestRejectionPreservesTokens(t *testing.T) {
	tokens := newFakeTokenStorage()
	svc := newService(tokens, &fakeGate{allowed: map[string]bool{"acme.co": true}}, &fakeResolver{}, newFakeEmailLog())
	ctx := context.Background()

	_, err := svc.IssueToken(ctx, "abc123")
	require.NoError(t, err)

	_, err = svc.VerifyEmail(ctx, "user@denied.org")
	assert.ErrorIs(t, err, ErrDomainRejected)
	_, err = svc.VerifyEmail(ctx, "user@denied.org")
	assert.ErrorIs(t, err, ErrDomainRejected)

	assert.Equal(t, int64(0), tokens.consumes.Load())

	_, err = svc.VerifyEmail(ctx, "user@acme.co")
	require.NoError(t, err)

	_, err = svc.RedeemToken(ctx, "abc123")
	require.NoError(t, err)
}

func TestVerifyEmailAccepted(t *testing.T) {
	emailLog := newFakeEmailLog()
	svc := newService(newFakeTokenStorage(), &fakeGate{allowed: map[string]bool{"acme.co": true}}, &fakeResolver{}, emailLog)

	email := gofakeit.Username() + "@acme.co"
	redirectURL, err := svc.VerifyEmail(context.Background(), email)
	require.NoError(t, err)
	assert.Equal(t, "https://resolved.example.net/?e="+email, redirectURL)

	select {
	case entry := <-emailLog.saved:
		assert.True(t, entry.Accepted)
	case <-time.After(time.Second):
		t.Fatal("accepted email was not logged")
	}
}

func TestVerifyEmailLogFailureIsDropped(t *testing.T) {
	emailLog := newFakeEmailLog()
	emailLog.err = errors.New("log table on fire")
	svc := newService(newFakeTokenStorage(), &fakeGate{allowed: map[string]bool{"acme.co": true}}, &fakeResolver{}, emailLog)

	_, err := svc.VerifyEmail(context.Background(), "user@acme.co")
	require.NoError(t, err)
}

func TestRedeemTokenUnknown(t *testing.T) {
	svc := newService(newFakeTokenStorage(), &fakeGate{}, &fakeResolver{}, newFakeEmailLog())

	_, err := svc.RedeemToken(context.Background(), "never-issued")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestRedeemTokenOnce(t *testing.T) {
	tokens := newFakeTokenStorage()
	svc := newService(tokens, &fakeGate{}, &fakeResolver{}, newFakeEmailLog())
	ctx := context.Background()

	_, err := svc.IssueToken(ctx, "abc123")
	require.NoError(t, err)

	grant, err := svc.RedeemToken(ctx, "abc123")
	require.NoError(t, err)
	assert.NotEmpty(t, grant.URL)
	assert.NotEmpty(t, grant.Filename)

	_, err = svc.RedeemToken(ctx, "abc123")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

// Signing failure after a successful consume is an accepted lossy mode: the
// token stays consumed.
func TestRedeemTokenSigningFailureBurnsToken(t *testing.T) {
	tokens := newFakeTokenStorage()
	resolver := &fakeResolver{signErr: storage.ErrSigningUnavailable}
	svc := newService(tokens, &fakeGate{}, resolver, newFakeEmailLog())
	ctx := context.Background()

	_, err := svc.IssueToken(ctx, "abc123")
	require.NoError(t, err)

	_, err = svc.RedeemToken(ctx, "abc123")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTokenInvalid)

	// The consume already happened; a retry sees the token gone.
	_, err = svc.RedeemToken(ctx, "abc123")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
