package api

import (
	"errors"
	"net/http"
	"strings"

	"cloud-drive/internal/catalog"
	"cloud-drive/internal/models"

	"github.com/go-chi/chi/v5"
)

type ShareNodeRequest struct {
	Username   string `json:"username" validate:"notblank" example:"bob"`
	Permission string `json:"permission" validate:"omitempty,oneof=read write" example:"read" enums:"read,write"`
}

// requireOwner writes a 404 or 403 unless userID owns the node. It must run
// before resolveGrantee.
func (s *Server) requireOwner(w http.ResponseWriter, r *http.Request, nodeID string, userID int64) bool {
	node, err := s.store.GetNode(r.Context(), nodeID)
	if err != nil {
		s.handleError(w, r, err, "Failed to load node")
		return false
	}
	if node.OwnerID != userID {
		s.handleError(w, r, catalog.ErrNotOwner, "Failed to load node")
		return false
	}
	return true
}

// resolveGrantee looks a user up by username.
func (s *Server) resolveGrantee(w http.ResponseWriter, r *http.Request, username string) (*models.User, bool) {
	username = strings.TrimSpace(username)
	if username == "" {
		writeError(w, http.StatusBadRequest, "username is required")
		return nil, false
	}

	grantee, err := s.store.GetUserByUsername(r.Context(), username)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return nil, false
		}
		s.handleError(w, r, err, "Failed to look up user")
		return nil, false
	}
	return grantee, true
}

// @Summary      Share node
// @Description  Grants another user read or write access to a node. Sharing again with the same user updates the permission.
// @Tags         shares
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        nodeId  path      string            true  "Node id"
// @Param        share   body      ShareNodeRequest  true  "Grantee and permission"
// @Success      200     {object}  Envelope{data=models.ShareGrant}
// @Failure      400     {object}  Envelope
// @Failure      401     {object}  Envelope
// @Failure      403     {object}  Envelope
// @Failure      404     {object}  Envelope
// @Router       /nodes/{nodeId}/share [post]
func (s *Server) ShareNodeHandler(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	nodeID, ok := nodeIDParam(w, r)
	if !ok {
		return
	}

	var req ShareNodeRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if req.Permission == "" {
		req.Permission = models.PermissionRead
	}

	if !s.requireOwner(w, r, nodeID, user.ID) {
		return
	}
	grantee, ok := s.resolveGrantee(w, r, req.Username)
	if !ok {
		return
	}

	grant, err := s.store.ShareNode(r.Context(), catalog.ShareNodeParams{
		NodeID:     nodeID,
		OwnerID:    user.ID,
		GranteeID:  grantee.ID,
		Permission: req.Permission,
	})
	if err != nil {
		s.handleError(w, r, err, "Failed to share node")
		return
	}

	recordOperation("share")
	s.notify(r.Context(), grantee.ID, catalog.EventShareReceived, map[string]interface{}{
		"node_id":    nodeID,
		"owner":      user.Username,
		"permission": grant.Permission,
	})
	writeJSON(w, http.StatusOK, grant)
}

// @Summary      Revoke share
// @Tags         shares
// @Security     BearerAuth
// @Param        nodeId    path  string  true  "Node id"
// @Param        username  path  string  true  "Grantee username"
// @Success      204       {null}    nil "No Content"
// @Failure      400       {object}  Envelope
// @Failure      401       {object}  Envelope
// @Failure      403       {object}  Envelope
// @Failure      404       {object}  Envelope
// @Router       /nodes/{nodeId}/share/{username} [delete]
func (s *Server) UnshareNodeHandler(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	nodeID, ok := nodeIDParam(w, r)
	if !ok {
		return
	}

	if !s.requireOwner(w, r, nodeID, user.ID) {
		return
	}
	grantee, ok := s.resolveGrantee(w, r, chi.URLParam(r, "username"))
	if !ok {
		return
	}

	if err := s.store.UnshareNode(r.Context(), user.ID, nodeID, grantee.ID); err != nil {
		s.handleError(w, r, err, "Failed to revoke share")
		return
	}

	recordOperation("unshare")
	s.notify(r.Context(), grantee.ID, catalog.EventShareRevoked, map[string]interface{}{
		"node_id": nodeID,
		"owner":   user.Username,
	})
	w.WriteHeader(http.StatusNoContent)
}

// @Summary      List shared nodes
// @Description  type=with-me lists nodes other users shared with the caller; type=by-me lists the caller's outgoing grants.
// @Tags         shares
// @Produce      json
// @Security     BearerAuth
// @Param        type  query     string  false  "with-me (default) or by-me"  Enums(with-me, by-me)
// @Success      200   {object}  Envelope{data=[]models.SharedNode}
// @Failure      400   {object}  Envelope
// @Failure      401   {object}  Envelope
// @Failure      500   {object}  Envelope
// @Router       /shared [get]
func (s *Server) ListSharedHandler(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var (
		nodes []models.SharedNode
		err   error
	)
	switch r.URL.Query().Get("type") {
	case "", "with-me":
		nodes, err = s.store.ListSharedWithMe(r.Context(), user.ID)
	case "by-me":
		nodes, err = s.store.ListSharedByMe(r.Context(), user.ID)
	default:
		writeError(w, http.StatusBadRequest, "type must be with-me or by-me")
		return
	}
	if err != nil {
		s.handleError(w, r, err, "Failed to list shared nodes")
		return
	}
	if nodes == nil {
		nodes = []models.SharedNode{}
	}

	writeJSON(w, http.StatusOK, nodes)
}
