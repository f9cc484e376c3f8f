package api

import (
	"net/http"

	"cloud-drive/internal/catalog"
	"cloud-drive/internal/models"
)

// @Summary      List trash
// @Tags         trash
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  Envelope{data=[]models.Node}
// @Failure      401  {object}  Envelope
// @Failure      500  {object}  Envelope
// @Router       /trash [get]
func (s *Server) ListTrashHandler(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	nodes, err := s.store.ListTrashed(r.Context(), user.ID)
	if err != nil {
		s.handleError(w, r, err, "Failed to list trash")
		return
	}
	if nodes == nil {
		nodes = []models.Node{}
	}

	writeJSON(w, http.StatusOK, nodes)
}

// @Summary      Empty trash
// @Description  Permanently deletes every trashed node of the user together with its payload.
// @Tags         trash
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  Envelope
// @Failure      401  {object}  Envelope
// @Failure      500  {object}  Envelope
// @Router       /trash [delete]
func (s *Server) PurgeTrashHandler(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	keys, err := s.store.PurgeTrash(r.Context(), user.ID)
	if err != nil {
		s.handleError(w, r, err, "Failed to empty trash")
		return
	}
	s.deletePayloads(r.Context(), keys)

	recordOperation("purge_trash")
	s.notify(r.Context(), user.ID, catalog.EventTrashEmptied, map[string]int{"objects_deleted": len(keys)})
	writeJSON(w, http.StatusOK, map[string]int{"objects_deleted": len(keys)})
}

// @Summary      List starred nodes
// @Tags         nodes
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  Envelope{data=[]models.Node}
// @Failure      401  {object}  Envelope
// @Failure      500  {object}  Envelope
// @Router       /starred [get]
func (s *Server) ListStarredHandler(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	nodes, err := s.store.ListStarred(r.Context(), user.ID)
	if err != nil {
		s.handleError(w, r, err, "Failed to list starred nodes")
		return
	}
	if nodes == nil {
		nodes = []models.Node{}
	}

	writeJSON(w, http.StatusOK, nodes)
}
