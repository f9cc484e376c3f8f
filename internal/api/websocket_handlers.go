package api

import (
	"net/http"

	"cloud-drive/internal/websocket"

	"go.uber.org/zap"
)

// @Summary      Event stream
// @Description  Upgrades to a websocket that pushes the caller's events as they are journaled. Browsers cannot set headers on the handshake, so the token travels in the query.
// @Tags         events
// @Param        token  query  string  true  "Access token"
// @Success      101
// @Failure      401  {object}  Envelope
// @Router       /ws [get]
func (s *Server) ServeWsHandler(w http.ResponseWriter, r *http.Request) {
	tokenString := r.URL.Query().Get("token")
	if tokenString == "" {
		writeError(w, http.StatusUnauthorized, "Missing token")
		return
	}

	user, err := s.userFromToken(r.Context(), tokenString)
	if err != nil {
		s.handleError(w, r, err, "Failed to resolve user")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err), zap.Int64("user_id", user.ID))
		return
	}

	client := websocket.NewClient(s.wsHub, conn, user.ID)
	if !s.wsHub.Register(r.Context(), client) {
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}
