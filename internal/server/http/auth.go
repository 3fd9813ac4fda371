package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/and161185/smartfit/internal/errs"
)

type verifyRequest struct {
	IDToken string `json:"idToken"`
}

type verifyResponse struct {
	Valid   bool   `json:"valid"`
	UserID  string `json:"userId,omitempty"`
	Message string `json:"message"`
}

func (s *Server) verifyToken(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, verifyResponse{Message: "Invalid token"})
		return
	}
	uid, err := s.auth.VerifyWithIP(r.Context(), req.IDToken, clientIP(r))
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, verifyResponse{Valid: true, UserID: uid, Message: "Token verified successfully"})
	case errors.Is(err, errs.ErrRateLimited):
		writeJSON(w, http.StatusTooManyRequests, verifyResponse{Message: "Too many attempts"})
	case errors.Is(err, errs.ErrUnauthorized):
		s.log.Debug("token rejected", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, verifyResponse{Message: "Invalid token"})
	default:
		writeError(w, r, s.log, err)
	}
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "UP",
		"message": "Authentication service is running",
	})
}
