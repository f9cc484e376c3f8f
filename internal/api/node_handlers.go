package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"cloud-drive/internal/catalog"
	"cloud-drive/internal/models"
	"cloud-drive/internal/storage"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const multipartMemory = 32 << 20

type CreateFolderRequest struct {
	Name     string  `json:"name" validate:"notblank" example:"Docs"`
	ParentID *string `json:"parent_id,omitempty" validate:"omitempty,nodeid" example:"V1StGXR8_Z5jdHi6B-myT"`
}

type UploadURLRequest struct {
	Name        string `json:"name" validate:"notblank" example:"report.pdf"`
	ContentType string `json:"content_type" example:"application/pdf"`
}

type UploadURLResponse struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CompleteUploadRequest records an object uploaded through a signed URL. The
// stored size is read from the object store; size_bytes, when sent, must
// match it.
type CompleteUploadRequest struct {
	Key         string  `json:"key" validate:"required"`
	Name        string  `json:"name" validate:"notblank" example:"report.pdf"`
	ParentID    *string `json:"parent_id,omitempty" validate:"omitempty,nodeid"`
	ContentType string  `json:"content_type,omitempty" example:"application/pdf"`
	SizeBytes   *int64  `json:"size_bytes,omitempty" validate:"omitempty,gte=0" example:"1024"`
}

type DownloadResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

type RenameNodeRequest struct {
	Name string `json:"name" validate:"notblank" example:"Renamed"`
}

type StarNodeRequest struct {
	Starred bool `json:"starred" example:"true"`
}

// nodeIDParam reads and validates the {nodeId} path segment, writing a 400
// when it is malformed.
func nodeIDParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	nodeID := chi.URLParam(r, "nodeId")
	if !catalog.ValidNodeID(nodeID) {
		writeError(w, http.StatusBadRequest, "Invalid node id")
		return "", false
	}
	return nodeID, true
}

// @Summary      List folder contents
// @Description  Lists the active children of a folder, or of the root when parent_id is omitted. Folders come first, then files, each by name.
// @Tags         nodes
// @Produce      json
// @Security     BearerAuth
// @Param        parent_id  query     string  false  "Parent folder id"
// @Success      200        {object}  Envelope{data=[]models.Node}
// @Failure      400        {object}  Envelope
// @Failure      401        {object}  Envelope
// @Failure      500        {object}  Envelope
// @Router       /nodes [get]
func (s *Server) ListNodesHandler(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var parentID *string
	if p := r.URL.Query().Get("parent_id"); p != "" {
		if !catalog.ValidNodeID(p) {
			writeError(w, http.StatusBadRequest, "Invalid parent_id")
			return
		}
		parentID = &p
	}

	nodes, err := s.store.ListChildren(r.Context(), user.ID, parentID)
	if err != nil {
		s.handleError(w, r, err, "Failed to list nodes")
		return
	}
	if nodes == nil {
		nodes = []models.Node{}
	}

	writeJSON(w, http.StatusOK, nodes)
}

// @Summary      Create folder
// @Tags         nodes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        folder  body      CreateFolderRequest  true  "Folder name and parent"
// @Success      201     {object}  Envelope{data=models.Node}
// @Failure      400     {object}  Envelope
// @Failure      401     {object}  Envelope
// @Failure      500     {object}  Envelope
// @Router       /nodes/folder [post]
func (s *Server) CreateFolderHandler(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req CreateFolderRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	node, err := s.store.CreateNode(r.Context(), catalog.CreateNodeParams{
		OwnerID:  user.ID,
		ParentID: req.ParentID,
		Name:     req.Name,
		IsFolder: true,
	})
	if err != nil {
		s.handleError(w, r, err, "Failed to create folder")
		return
	}

	recordOperation("create_folder")
	writeJSON(w, http.StatusCreated, node)
}

// @Summary      Upload file
// @Description  Streams a multipart file to object storage, then records it in the catalog.
// @Tags         nodes
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file       formData  file    true   "File to upload"
// @Param        parent_id  formData  string  false  "Parent folder id"
// @Success      201        {object}  Envelope{data=models.Node}
// @Failure      400        {object}  Envelope
// @Failure      401        {object}  Envelope
// @Failure      413        {object}  Envelope
// @Failure      500        {object}  Envelope
// @Router       /nodes/file [post]
func (s *Server) UploadFileHandler(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	if limit := s.config.Storage.MaxUploadBytes; limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "File is too large")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing file field")
		return
	}
	defer file.Close()

	var parentID *string
	if p := r.FormValue("parent_id"); p != "" {
		if !catalog.ValidNodeID(p) {
			writeError(w, http.StatusBadRequest, "Invalid parent_id")
			return
		}
		parentID = &p
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = catalog.DefaultContentType
	}

	key := storage.GenerateKey(user.ID, header.Filename, time.Now())
	if err := s.storage.Put(r.Context(), key, file, header.Size, contentType); err != nil {
		s.handleError(w, r, err, "Failed to store file")
		return
	}

	node, err := s.store.CreateNode(r.Context(), catalog.CreateNodeParams{
		OwnerID:     user.ID,
		ParentID:    parentID,
		Name:        header.Filename,
		ContentType: contentType,
		SizeBytes:   header.Size,
		StorageKey:  key,
	})
	if err != nil {
		if delErr := s.storage.Delete(r.Context(), key); delErr != nil {
			s.logger.Warn("orphaned object after failed catalog insert",
				zap.String("key", key), zap.Error(delErr))
		}
		s.handleError(w, r, err, "Failed to record file")
		return
	}

	recordOperation("upload")
	writeJSON(w, http.StatusCreated, node)
}

// @Summary      Request an upload URL
// @Description  Generates an object key and a signed URL the client PUTs the payload to. Finish with /nodes/file/complete.
// @Tags         nodes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        upload  body      UploadURLRequest  true  "File name and content type"
// @Success      200     {object}  Envelope{data=UploadURLResponse}
// @Failure      400     {object}  Envelope
// @Failure      401     {object}  Envelope
// @Failure      500     {object}  Envelope
// @Router       /nodes/upload-url [post]
func (s *Server) CreateUploadURLHandler(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req UploadURLRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if req.ContentType == "" {
		req.ContentType = catalog.DefaultContentType
	}

	ttl := s.urlTTL()
	key := storage.GenerateKey(user.ID, req.Name, time.Now())
	url, err := s.storage.SignedPutURL(r.Context(), key, req.ContentType, ttl)
	if err != nil {
		s.handleError(w, r, err, "Failed to sign upload URL")
		return
	}

	writeJSON(w, http.StatusOK, UploadURLResponse{
		Key:       key,
		URL:       url,
		ExpiresAt: time.Now().Add(ttl).UTC(),
	})
}

// @Summary      Complete a signed upload
// @Description  Records a file whose payload was uploaded through a signed URL.
// @Tags         nodes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        upload  body      CompleteUploadRequest  true  "Uploaded object"
// @Success      201     {object}  Envelope{data=models.Node}
// @Failure      400     {object}  Envelope
// @Failure      401     {object}  Envelope
// @Failure      403     {object}  Envelope
// @Failure      500     {object}  Envelope
// @Router       /nodes/file/complete [post]
func (s *Server) CompleteUploadHandler(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req CompleteUploadRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if storage.KeyOwner(req.Key) != strconv.FormatInt(user.ID, 10) {
		writeError(w, http.StatusForbidden, "Object key does not belong to you")
		return
	}

	size, err := s.storage.Size(r.Context(), req.Key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			writeError(w, http.StatusBadRequest, "Object has not been uploaded")
			return
		}
		s.handleError(w, r, err, "Failed to check uploaded object")
		return
	}
	if req.SizeBytes != nil && *req.SizeBytes != size {
		writeError(w, http.StatusBadRequest, "size_bytes does not match the uploaded object")
		return
	}

	node, err := s.store.CreateNode(r.Context(), catalog.CreateNodeParams{
		OwnerID:     user.ID,
		ParentID:    req.ParentID,
		Name:        req.Name,
		ContentType: req.ContentType,
		SizeBytes:   size,
		StorageKey:  req.Key,
	})
	if err != nil {
		s.handleError(w, r, err, "Failed to record file")
		return
	}

	recordOperation("upload")
	writeJSON(w, http.StatusCreated, node)
}

// @Summary      Download file
// @Description  Returns a short-lived signed URL for the file payload. Available to the owner and to users the file is shared with.
// @Tags         nodes
// @Produce      json
// @Security     BearerAuth
// @Param        nodeId  path      string  true  "Node id"
// @Success      200     {object}  Envelope{data=DownloadResponse}
// @Failure      400     {object}  Envelope
// @Failure      401     {object}  Envelope
// @Failure      404     {object}  Envelope
// @Failure      500     {object}  Envelope
// @Router       /nodes/{nodeId}/download [get]
func (s *Server) DownloadFileHandler(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	nodeID, ok := nodeIDParam(w, r)
	if !ok {
		return
	}

	allowed, err := s.store.AuthorizeAccess(r.Context(), nodeID, user.ID)
	if err != nil {
		s.handleError(w, r, err, "Failed to authorize download")
		return
	}
	if !allowed {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}

	node, err := s.store.GetNode(r.Context(), nodeID)
	if err != nil {
		s.handleError(w, r, err, "Failed to load node")
		return
	}
	if node.IsFolder {
		writeError(w, http.StatusBadRequest, "Folders cannot be downloaded")
		return
	}

	exists, err := s.storage.Exists(r.Context(), node.StorageKey)
	if err != nil {
		s.handleError(w, r, err, "Failed to check object")
		return
	}
	if !exists {
		s.logger.Error("catalog entry without payload",
			zap.String("node_id", node.ID), zap.String("key", node.StorageKey))
		writeError(w, http.StatusInternalServerError, "File payload is missing")
		return
	}

	ttl := s.urlTTL()
	url, err := s.storage.SignedGetURL(r.Context(), node.StorageKey, ttl)
	if err != nil {
		s.handleError(w, r, err, "Failed to sign download URL")
		return
	}

	recordOperation("download")
	writeJSON(w, http.StatusOK, DownloadResponse{URL: url, ExpiresAt: time.Now().Add(ttl).UTC()})
}

// @Summary      Rename node
// @Tags         nodes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        nodeId  path      string             true  "Node id"
// @Param        rename  body      RenameNodeRequest  true  "New name"
// @Success      200     {object}  Envelope{data=models.Node}
// @Failure      400     {object}  Envelope
// @Failure      401     {object}  Envelope
// @Failure      403     {object}  Envelope
// @Failure      404     {object}  Envelope
// @Router       /nodes/{nodeId} [patch]
func (s *Server) RenameNodeHandler(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	nodeID, ok := nodeIDParam(w, r)
	if !ok {
		return
	}

	var req RenameNodeRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	node, err := s.store.RenameNode(r.Context(), user.ID, nodeID, req.Name)
	if err != nil {
		s.handleError(w, r, err, "Failed to rename node")
		return
	}

	recordOperation("rename")
	writeJSON(w, http.StatusOK, node)
}

// @Summary      Star or unstar node
// @Tags         nodes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        nodeId  path      string           true  "Node id"
// @Param        star    body      StarNodeRequest  true  "Desired star state"
// @Success      200     {object}  Envelope{data=models.Node}
// @Failure      400     {object}  Envelope
// @Failure      401     {object}  Envelope
// @Failure      403     {object}  Envelope
// @Failure      404     {object}  Envelope
// @Router       /nodes/{nodeId}/star [put]
func (s *Server) StarNodeHandler(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	nodeID, ok := nodeIDParam(w, r)
	if !ok {
		return
	}

	var req StarNodeRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	node, err := s.store.ToggleStar(r.Context(), user.ID, nodeID, req.Starred)
	if err != nil {
		s.handleError(w, r, err, "Failed to update star")
		return
	}

	recordOperation("star")
	writeJSON(w, http.StatusOK, node)
}

// @Summary      Move node to trash
// @Description  Soft-deletes the node and everything beneath it.
// @Tags         nodes
// @Security     BearerAuth
// @Param        nodeId  path  string  true  "Node id"
// @Success      204     {null}    nil "No Content"
// @Failure      400     {object}  Envelope
// @Failure      401     {object}  Envelope
// @Failure      403     {object}  Envelope
// @Failure      404     {object}  Envelope
// @Router       /nodes/{nodeId} [delete]
func (s *Server) DeleteNodeHandler(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	nodeID, ok := nodeIDParam(w, r)
	if !ok {
		return
	}

	if err := s.store.SoftDelete(r.Context(), user.ID, nodeID); err != nil {
		s.handleError(w, r, err, "Failed to move node to trash")
		return
	}

	recordOperation("soft_delete")
	s.notify(r.Context(), user.ID, catalog.EventNodeTrashed, map[string]string{"node_id": nodeID})
	w.WriteHeader(http.StatusNoContent)
}

// @Summary      Restore node from trash
// @Tags         nodes
// @Security     BearerAuth
// @Param        nodeId  path  string  true  "Node id"
// @Success      204     {null}    nil "No Content"
// @Failure      400     {object}  Envelope
// @Failure      401     {object}  Envelope
// @Failure      403     {object}  Envelope
// @Failure      404     {object}  Envelope
// @Router       /nodes/{nodeId}/restore [post]
func (s *Server) RestoreNodeHandler(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	nodeID, ok := nodeIDParam(w, r)
	if !ok {
		return
	}

	if err := s.store.Restore(r.Context(), user.ID, nodeID); err != nil {
		s.handleError(w, r, err, "Failed to restore node")
		return
	}

	recordOperation("restore")
	s.notify(r.Context(), user.ID, catalog.EventNodeRestored, map[string]string{"node_id": nodeID})
	w.WriteHeader(http.StatusNoContent)
}

// @Summary      Delete node permanently
// @Description  Removes the node, its subtree and their payloads. Works on active and trashed nodes.
// @Tags         nodes
// @Security     BearerAuth
// @Param        nodeId  path  string  true  "Node id"
// @Success      204     {null}    nil "No Content"
// @Failure      400     {object}  Envelope
// @Failure      401     {object}  Envelope
// @Failure      403     {object}  Envelope
// @Failure      404     {object}  Envelope
// @Router       /nodes/{nodeId}/permanent [delete]
func (s *Server) PermanentDeleteHandler(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	nodeID, ok := nodeIDParam(w, r)
	if !ok {
		return
	}

	keys, err := s.store.PermanentDelete(r.Context(), user.ID, nodeID)
	if err != nil {
		s.handleError(w, r, err, "Failed to delete node")
		return
	}
	s.deletePayloads(r.Context(), keys)

	recordOperation("permanent_delete")
	s.notify(r.Context(), user.ID, catalog.EventNodePurged, map[string]string{"node_id": nodeID})
	w.WriteHeader(http.StatusNoContent)
}
