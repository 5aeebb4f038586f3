package suite

import (
	"context"
	"filegate/internal/config"
	"filegate/internal/domain/models"
	adminhttp "filegate/internal/http/admin"
	gatehttp "filegate/internal/http/gate"
	adminservice "filegate/internal/services/admin"
	"filegate/internal/services/domains"
	"filegate/internal/services/redirect"
	"filegate/internal/services/verification"
	"filegate/internal/storage"
	redisstore "filegate/internal/storage/redis"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"golang.org/x/crypto/bcrypt"
)

const (
	TokenTTL         = time.Minute
	GrantTTL         = time.Minute
	RedirectTemplate = "https://{domain}.portal.example.net/welcome?e={email}"
	FilenamePrefix   = "report"
	FilenameExt      = "pdf"
	AdminUsername    = "operator"
	AdminPassword    = "correct-horse-battery"
)

// Suite wires the whole service against in-process backends: a miniredis
// token store, in-memory relational fakes and a stub URL signer that mimics
// the query shape of a presigned GET.
type Suite struct {
	*testing.T
	Server  *httptest.Server
	Client  *http.Client
	Redis   *miniredis.Miniredis
	Domains *DomainStorage
}

// New creates new test suite
func New(t *testing.T) (context.Context, *Suite) {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	if err != nil {
		t.Fatalf("miniredis port: %v", err)
	}
	tokenStore := redisstore.NewTokenStore(&config.RedisConfig{Host: mr.Host(), Port: port}, TokenTTL)
	t.Cleanup(func() { _ = tokenStore.Close() })

	domainStorage := NewDomainStorage()
	gateService := domains.New(log, domainStorage)
	resolver := redirect.New(log, RedirectTemplate, stubSigner{ttl: GrantTTL}, FilenamePrefix, FilenameExt)
	emailLog := &EmailLogStorage{}
	verificationService := verification.New(log, tokenStore, gateService, resolver, emailLog)

	hash, err := bcrypt.GenerateFromPassword([]byte(AdminPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	adminService := adminservice.New(
		log,
		&AdminStorage{username: AdminUsername, passHash: hash},
		emailLog,
		config.AdminConfig{JWTSecret: "suite-secret", TokenTTL: time.Hour},
	)

	mux := http.NewServeMux()
	gatehttp.New(log, verificationService).Register(mux)
	adminhttp.New(log, adminService, gateService).Register(mux)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	ctx, cancelCtx := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancelCtx)

	return ctx, &Suite{
		T:       t,
		Server:  server,
		Client:  client,
		Redis:   mr,
		Domains: domainStorage,
	}
}

// stubSigner mimics the storage backend's presigned GET URLs closely enough
// for flow assertions: expiry seconds and content disposition travel as query
// parameters.
type stubSigner struct {
	ttl time.Duration
}

func (s stubSigner) SignedURL(_ context.Context, filename string) (string, error) {
	q := url.Values{}
	q.Set("X-Amz-Expires", strconv.Itoa(int(s.ttl.Seconds())))
	q.Set("response-content-disposition", fmt.Sprintf("attachment; filename=%q", filename))
	return "https://storage.test/gated/resource.bin?" + q.Encode(), nil
}

func (s stubSigner) GrantTTL() time.Duration {
	return s.ttl
}

// DomainStorage is an in-memory stand-in for the allowed_domains table.
type DomainStorage struct {
	mu      sync.Mutex
	domains map[string]struct{}
}

func NewDomainStorage() *DomainStorage {
	return &DomainStorage{domains: make(map[string]struct{})}
}

func (s *DomainStorage) IsAllowed(_ context.Context, domain string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.domains[domain]
	return ok, nil
}

func (s *DomainStorage) Add(_ context.Context, domain string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.domains[domain]; ok {
		return storage.ErrDomainExists
	}
	s.domains[domain] = struct{}{}
	return nil
}

func (s *DomainStorage) AddBulk(_ context.Context, list []string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var added int64
	for _, d := range list {
		if _, ok := s.domains[d]; !ok {
			s.domains[d] = struct{}{}
			added++
		}
	}
	return added, nil
}

func (s *DomainStorage) Remove(_ context.Context, domain string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.domains[domain]; !ok {
		return storage.ErrDomainNotFound
	}
	delete(s.domains, domain)
	return nil
}

func (s *DomainStorage) RemoveBulk(_ context.Context, list []string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed int64
	for _, d := range list {
		if _, ok := s.domains[d]; ok {
			delete(s.domains, d)
			removed++
		}
	}
	return removed, nil
}

func (s *DomainStorage) List(_ context.Context, _, _ int, _ string) ([]models.AllowedDomain, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []models.AllowedDomain
	for d := range s.domains {
		result = append(result, models.AllowedDomain{Domain: d})
	}
	return result, int64(len(result)), nil
}

// EmailLogStorage is an in-memory stand-in for the email_logs table.
type EmailLogStorage struct {
	mu   sync.Mutex
	next int64
	logs []models.EmailLog
}

func (s *EmailLogStorage) Save(_ context.Context, email, domain string, accepted bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	s.logs = append(s.logs, models.EmailLog{
		ID: s.next, Email: email, Domain: domain, Accepted: accepted, CreatedAt: time.Now(),
	})
	return nil
}

func (s *EmailLogStorage) List(_ context.Context, offset, limit int, _ string) ([]models.EmailLog, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := int64(len(s.logs))
	if offset > len(s.logs) {
		offset = len(s.logs)
	}
	end := offset + limit
	if end > len(s.logs) {
		end = len(s.logs)
	}
	out := make([]models.EmailLog, end-offset)
	copy(out, s.logs[offset:end])
	return out, total, nil
}

func (s *EmailLogStorage) Remove(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, l := range s.logs {
		if l.ID == id {
			s.logs = append(s.logs[:i], s.logs[i+1:]...)
			return nil
		}
	}
	return storage.ErrLogNotFound
}

func (s *EmailLogStorage) RemoveBulk(_ context.Context, ids []int64) (int64, error) {
	var removed int64
	for _, id := range ids {
		if err := s.Remove(context.Background(), id); err == nil {
			removed++
		}
	}
	return removed, nil
}

// AdminStorage is an in-memory stand-in for the admins table.
type AdminStorage struct {
	username string
	passHash []byte
}

func (s *AdminStorage) Admin(_ context.Context, username string) (models.Admin, error) {
	if username != s.username {
		return models.Admin{}, storage.ErrAdminNotFound
	}
	return models.Admin{ID: 1, Username: s.username, PassHash: s.passHash}, nil
}
