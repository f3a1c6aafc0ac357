package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dgallion1/deckchat/internal/chat"
)

type credentialRequest struct {
	APIKey string `json:"api_key"`
}

// handleSetCredential stores an explicit API key. An empty key reverts to
// the environment key.
func (s *Server) handleSetCredential(w http.ResponseWriter, r *http.Request) {
	var req credentialRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64*1024)).Decode(&req); err != nil {
		jsonError(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return
	}
	s.session.SetCredential(req.APIKey)
	_, source := s.session.Credential()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"credential_source": source})
}

func (s *Server) handleVerifyCredential(w http.ResponseWriter, r *http.Request) {
	credential, source := s.session.Credential()
	err := s.chat.Verify(r.Context(), credential)
	switch {
	case err == nil:
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"valid": true, "credential_source": source})
	case errors.Is(err, chat.ErrCredentialInvalid):
		jsonError(w, err.Error(), http.StatusUnauthorized)
	default:
		jsonError(w, err.Error(), http.StatusBadGateway)
	}
}
