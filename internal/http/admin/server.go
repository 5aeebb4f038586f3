package admin

import (
	"bufio"
	"errors"
	"filegate/internal/http/response"
	"filegate/internal/services/admin"
	"filegate/internal/services/domains"
	"filegate/internal/storage"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
)

const (
	maxBodyBytes   = 1 << 20
	defaultPage    = 1
	defaultSize    = 20
	maxSize        = 100
	maxImportBytes = 4 << 20
)

// Server exposes the management endpoints: operator login, allowlist CRUD
// and email-log housekeeping. Everything except login requires a bearer
// token minted by the admin service.
type Server struct {
	log   *slog.Logger
	admin *admin.Admin
	gate  *domains.Gate
}

// New creates new admin HTTP server
func New(log *slog.Logger, adminService *admin.Admin, gate *domains.Gate) *Server {
	return &Server{log: log, admin: adminService, gate: gate}
}

// Register wires the admin routes onto the provided mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /admin/login", s.handleLogin)

	mux.HandleFunc("GET /admin/domains", s.requireAuth(s.handleDomainList))
	mux.HandleFunc("POST /admin/domains", s.requireAuth(s.handleDomainAdd))
	mux.HandleFunc("POST /admin/domains/bulk", s.requireAuth(s.handleDomainAddBulk))
	mux.HandleFunc("POST /admin/domains/import", s.requireAuth(s.handleDomainImport))
	mux.HandleFunc("DELETE /admin/domains/{domain}", s.requireAuth(s.handleDomainRemove))
	mux.HandleFunc("DELETE /admin/domains", s.requireAuth(s.handleDomainRemoveBulk))

	mux.HandleFunc("GET /admin/logs", s.requireAuth(s.handleLogList))
	mux.HandleFunc("DELETE /admin/logs/{id}", s.requireAuth(s.handleLogRemove))
	mux.HandleFunc("DELETE /admin/logs", s.requireAuth(s.handleLogRemoveBulk))
}

// requireAuth rejects requests without a valid bearer token.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			response.WriteError(w, http.StatusUnauthorized, "authorization required")
			return
		}
		if _, err := s.admin.VerifyToken(token); err != nil {
			response.WriteError(w, http.StatusUnauthorized, "authorization required")
			return
		}
		next(w, r)
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := response.DecodeJSON(w, r, maxBodyBytes, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := s.admin.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, admin.ErrInvalidCredentials) {
			response.WriteError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		response.WriteError(w, http.StatusInternalServerError, "service temporarily unavailable")
		return
	}
	response.WriteJSON(w, http.StatusOK, map[string]string{"token": token})
}

// pageParams reads page/size/q query parameters with defaults and caps.
func pageParams(r *http.Request) (offset, limit int, search string) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = defaultPage
	}
	size, err := strconv.Atoi(r.URL.Query().Get("size"))
	if err != nil || size < 1 {
		size = defaultSize
	}
	if size > maxSize {
		size = maxSize
	}
	return (page - 1) * size, size, r.URL.Query().Get("q")
}

type listResponse struct {
	Items any   `json:"items"`
	Total int64 `json:"total"`
}

func (s *Server) handleDomainList(w http.ResponseWriter, r *http.Request) {
	offset, limit, search := pageParams(r)
	items, total, err := s.gate.List(r.Context(), offset, limit, search)
	if err != nil {
		s.log.Error("error listing domains", slog.Any("error", err))
		response.WriteError(w, http.StatusInternalServerError, "service temporarily unavailable")
		return
	}
	response.WriteJSON(w, http.StatusOK, listResponse{Items: items, Total: total})
}

type domainRequest struct {
	Domain string `json:"domain"`
}

func (s *Server) handleDomainAdd(w http.ResponseWriter, r *http.Request) {
	var req domainRequest
	if err := response.DecodeJSON(w, r, maxBodyBytes, &req); err != nil || strings.TrimSpace(req.Domain) == "" {
		response.WriteError(w, http.StatusBadRequest, "domain is required")
		return
	}

	if err := s.gate.Allow(r.Context(), req.Domain); err != nil {
		if errors.Is(err, storage.ErrDomainExists) {
			response.WriteError(w, http.StatusConflict, "domain already allowed")
			return
		}
		s.log.Error("error adding domain", slog.Any("error", err))
		response.WriteError(w, http.StatusInternalServerError, "service temporarily unavailable")
		return
	}
	w.WriteHeader(http.StatusCreated)
}

type domainBulkRequest struct {
	Domains []string `json:"domains"`
}

type bulkResponse struct {
	Affected int64 `json:"affected"`
}

func (s *Server) handleDomainAddBulk(w http.ResponseWriter, r *http.Request) {
	var req domainBulkRequest
	if err := response.DecodeJSON(w, r, maxBodyBytes, &req); err != nil || len(req.Domains) == 0 {
		response.WriteError(w, http.StatusBadRequest, "domains are required")
		return
	}

	added, err := s.gate.AllowMany(r.Context(), req.Domains)
	if err != nil {
		s.log.Error("error bulk adding domains", slog.Any("error", err))
		response.WriteError(w, http.StatusInternalServerError, "service temporarily unavailable")
		return
	}
	response.WriteJSON(w, http.StatusOK, bulkResponse{Affected: added})
}

// handleDomainImport ingests a plain-text domain list, one per line. Blank
// lines and '#' comments are skipped rather than aborting the batch.
func (s *Server) handleDomainImport(w http.ResponseWriter, r *http.Request) {
	file, _, err := r.FormFile("file")
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, "file upload is required")
		return
	}
	defer func() { _ = file.Close() }()

	var lines []string
	scanner := bufio.NewScanner(http.MaxBytesReader(w, file, maxImportBytes))
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		response.WriteError(w, http.StatusBadRequest, "could not read uploaded file")
		return
	}

	added, err := s.gate.AllowMany(r.Context(), lines)
	if err != nil {
		s.log.Error("error importing domains", slog.Any("error", err))
		response.WriteError(w, http.StatusInternalServerError, "service temporarily unavailable")
		return
	}
	response.WriteJSON(w, http.StatusOK, bulkResponse{Affected: added})
}

func (s *Server) handleDomainRemove(w http.ResponseWriter, r *http.Request) {
	domain := r.PathValue("domain")

	if err := s.gate.Disallow(r.Context(), domain); err != nil {
		if errors.Is(err, storage.ErrDomainNotFound) {
			response.WriteError(w, http.StatusNotFound, "domain not found")
			return
		}
		s.log.Error("error removing domain", slog.Any("error", err))
		response.WriteError(w, http.StatusInternalServerError, "service temporarily unavailable")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDomainRemoveBulk(w http.ResponseWriter, r *http.Request) {
	var req domainBulkRequest
	if err := response.DecodeJSON(w, r, maxBodyBytes, &req); err != nil || len(req.Domains) == 0 {
		response.WriteError(w, http.StatusBadRequest, "domains are required")
		return
	}

	removed, err := s.gate.DisallowMany(r.Context(), req.Domains)
	if err != nil {
		s.log.Error("error bulk removing domains", slog.Any("error", err))
		response.WriteError(w, http.StatusInternalServerError, "service temporarily unavailable")
		return
	}
	response.WriteJSON(w, http.StatusOK, bulkResponse{Affected: removed})
}

func (s *Server) handleLogList(w http.ResponseWriter, r *http.Request) {
	offset, limit, search := pageParams(r)
	items, total, err := s.admin.Logs(r.Context(), offset, limit, search)
	if err != nil {
		s.log.Error("error listing email logs", slog.Any("error", err))
		response.WriteError(w, http.StatusInternalServerError, "service temporarily unavailable")
		return
	}
	response.WriteJSON(w, http.StatusOK, listResponse{Items: items, Total: total})
}

func (s *Server) handleLogRemove(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, "invalid log id")
		return
	}

	if err := s.admin.RemoveLog(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrLogNotFound) {
			response.WriteError(w, http.StatusNotFound, "email log not found")
			return
		}
		s.log.Error("error removing email log", slog.Any("error", err))
		response.WriteError(w, http.StatusInternalServerError, "service temporarily unavailable")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type logBulkRequest struct {
	IDs []int64 `json:"ids"`
}

func (s *Server) handleLogRemoveBulk(w http.ResponseWriter, r *http.Request) {
	var req logBulkRequest
	if err := response.DecodeJSON(w, r, maxBodyBytes, &req); err != nil || len(req.IDs) == 0 {
		response.WriteError(w, http.StatusBadRequest, "ids are required")
		return
	}

	removed, err := s.admin.RemoveLogs(r.Context(), req.IDs)
	if err != nil {
		s.log.Error("error bulk removing email logs", slog.Any("error", err))
		response.WriteError(w, http.StatusInternalServerError, "service temporarily unavailable")
		return
	}
	response.WriteJSON(w, http.StatusOK, bulkResponse{Affected: removed})
}
