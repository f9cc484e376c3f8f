package api

import (
	"net/http"
)

// @Summary      Get current user
// @Description  Returns the user the bearer token resolves to.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  Envelope{data=models.User}
// @Failure      401  {object}  Envelope
// @Router       /me [get]
func (s *Server) GetCurrentUserHandler(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Could not resolve user")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// @Summary      Health check
// @Tags         ops
// @Produce      json
// @Success      200  {object}  Envelope
// @Failure      503  {object}  Envelope
// @Router       /health [get]
func (s *Server) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
