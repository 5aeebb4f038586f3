package redirect

import (
	"context"
	"errors"
	"filegate/internal/services/domains"
	"io"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSigner struct {
	lastFilename string
	err          error
}

func (f *fakeSigner) SignedURL(_ context.Context, filename string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.lastFilename = filename
	return "https://storage.local/bucket/report.pdf?X-Amz-Expires=60", nil
}

func (f *fakeSigner) GrantTTL() time.Duration {
	return time.Minute
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBaseLabel(t *testing.T) {
	cases := []struct {
		domain string
		want   string
	}{
		{"mail.example.co", "example"},
		{"mail.acme.co", "acme"},
		{"example.com", "example"},
		{"a.b.c.d", "c"},
		// Single label returns itself; no public-suffix awareness is intended.
		{"localhost", "localhost"},
		{"example.co.uk", "co"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, BaseLabel(tc.domain), tc.domain)
	}
}

func TestResolveRedirect(t *testing.T) {
	r := New(discardLogger(), "https://{domain}.example.net/x?e={email}", &fakeSigner{}, "report", "pdf")

	resolved, err := r.ResolveRedirect("user@mail.acme.co")
	require.NoError(t, err)
	assert.Equal(t, "https://acme.example.net/x?e=user@mail.acme.co", resolved)
}

func TestResolveRedirectNoEscaping(t *testing.T) {
	r := New(discardLogger(), "https://example.net/?e={email}", &fakeSigner{}, "report", "pdf")

	resolved, err := r.ResolveRedirect("user+tag@acme.co")
	require.NoError(t, err)
	// The email travels verbatim: substitution is literal, not URL-encoded.
	assert.Equal(t, "https://example.net/?e=user+tag@acme.co", resolved)
}

func TestResolveRedirectMalformedEmail(t *testing.T) {
	r := New(discardLogger(), "https://{domain}.example.net", &fakeSigner{}, "report", "pdf")

	_, err := r.ResolveRedirect("not-an-email")
	assert.ErrorIs(t, err, domains.ErrMalformedEmail)
}

func TestSignResourceGrantFilename(t *testing.T) {
	signer := &fakeSigner{}
	r := New(discardLogger(), "https://example.net", signer, "report", "pdf")

	grant, err := r.SignResourceGrant(context.Background())
	require.NoError(t, err)

	pattern := regexp.MustCompile(`^report_\d{4}\.pdf$`)
	assert.Regexp(t, pattern, grant.Filename)
	assert.Equal(t, grant.Filename, signer.lastFilename)
	assert.Equal(t, time.Minute, grant.ValidFor)
	assert.Equal(t, "https://storage.local/bucket/report.pdf?X-Amz-Expires=60", grant.URL)
}

func TestSignResourceGrantSignerFailure(t *testing.T) {
	signer := &fakeSigner{err: errors.New("credentials rejected")}
	r := New(discardLogger(), "https://example.net", signer, "report", "pdf")

	_, err := r.SignResourceGrant(context.Background())
	assert.Error(t, err)
}
