package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	"cloud-drive/internal/storage"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// blobKey checks the signed-link query against the wildcard key. It writes
// the error response itself and reports whether the request may proceed.
func (s *Server) blobKey(w http.ResponseWriter, r *http.Request) (string, bool) {
	if s.blobs == nil {
		writeError(w, http.StatusNotFound, "Not found")
		return "", false
	}

	key := chi.URLParam(r, "*")
	q := r.URL.Query()
	err := s.blobs.VerifySignature(r.Method, key, q.Get("expires"), q.Get("signature"), time.Now())
	if err != nil {
		writeError(w, http.StatusForbidden, "Invalid or expired link")
		return "", false
	}
	return key, true
}

// GetBlobHandler serves payloads behind signed links issued by the local
// storage driver.
func (s *Server) GetBlobHandler(w http.ResponseWriter, r *http.Request) {
	key, ok := s.blobKey(w, r)
	if !ok {
		return
	}

	body, err := s.blobs.Get(r.Context(), key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			writeError(w, http.StatusNotFound, "Not found")
			return
		}
		s.handleError(w, r, err, "Failed to read object")
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		s.logger.Warn("blob stream interrupted", zap.String("key", key), zap.Error(err))
	}
}

func (s *Server) PutBlobHandler(w http.ResponseWriter, r *http.Request) {
	key, ok := s.blobKey(w, r)
	if !ok {
		return
	}

	if limit := s.config.Storage.MaxUploadBytes; limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit)
	}

	contentType := r.Header.Get("Content-Type")
	if err := s.blobs.Put(r.Context(), key, r.Body, r.ContentLength, contentType); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "Object is too large")
			return
		}
		s.handleError(w, r, err, "Failed to store object")
		return
	}

	w.WriteHeader(http.StatusCreated)
}
