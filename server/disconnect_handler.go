package server

import "net/http"

type disconnectResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// DisconnectHandler deletes the persisted token set. Disconnect is
// idempotent: deleting an already-absent token still reports success.
func (s *Server) DisconnectHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.tokens.Delete(r.Context())
		writeJSON(w, http.StatusOK, disconnectResponse{
			Success: true,
			Message: msgDisconnected,
		})
	}
}
