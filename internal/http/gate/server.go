package gate

import (
	"errors"
	"filegate/internal/http/response"
	"filegate/internal/services/verification"
	"log/slog"
	"net/http"
)

const maxBodyBytes = 4 << 10

// Server exposes the public gate endpoints: token issuance, email
// verification and token redemption.
type Server struct {
	log          *slog.Logger
	verification *verification.Verification
}

// New creates new gate HTTP server
func New(log *slog.Logger, verificationService *verification.Verification) *Server {
	return &Server{log: log, verification: verificationService}
}

// Register wires the gate routes onto the provided mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /token", s.handleIssue)
	mux.HandleFunc("GET /resource", s.handleRedeem)
	mux.HandleFunc("POST /verify", s.handleVerify)
}

// handleIssue creates a token record. A client-supplied value answers 204;
// without one the server generates the value and returns it.
func (s *Server) handleIssue(w http.ResponseWriter, r *http.Request) {
	value := r.URL.Query().Get("value")
	clientSupplied := value != ""

	issued, err := s.verification.IssueToken(r.Context(), value)
	if err != nil {
		response.WriteError(w, http.StatusInternalServerError, "service temporarily unavailable")
		return
	}

	if clientSupplied {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	response.WriteJSON(w, http.StatusCreated, map[string]string{"token": issued})
}

// handleRedeem consumes the token exactly once and redirects to the signed
// resource URL.
func (s *Server) handleRedeem(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		response.WriteError(w, http.StatusBadRequest, "token parameter is required")
		return
	}

	grant, err := s.verification.RedeemToken(r.Context(), token)
	if err != nil {
		if errors.Is(err, verification.ErrTokenInvalid) {
			response.WriteError(w, http.StatusForbidden, "token invalid or expired")
			return
		}
		response.WriteError(w, http.StatusInternalServerError, "service temporarily unavailable")
		return
	}

	http.Redirect(w, r, grant.URL, http.StatusFound)
}

type verifyRequest struct {
	Email string `json:"email"`
}

type verifyResponse struct {
	Success     bool   `json:"success"`
	RedirectURL string `json:"redirectUrl"`
}

// handleVerify validates the submitted email's shape and domain. Rejections
// use a generic message so the allowlist is not revealed.
func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := response.DecodeJSON(w, r, maxBodyBytes, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	redirectURL, err := s.verification.VerifyEmail(r.Context(), req.Email)
	if err != nil {
		switch {
		case errors.Is(err, verification.ErrInvalidEmail):
			response.WriteError(w, http.StatusBadRequest, "invalid email address")
		case errors.Is(err, verification.ErrDomainRejected):
			response.WriteError(w, http.StatusBadRequest, "not an allowed address")
		default:
			response.WriteError(w, http.StatusInternalServerError, "service temporarily unavailable")
		}
		return
	}

	response.WriteJSON(w, http.StatusOK, verifyResponse{Success: true, RedirectURL: redirectURL})
}
