package api

import (
	"context"
	"io"
	"time"

	"cloud-drive/internal/auth"
	"cloud-drive/internal/catalog"
	"cloud-drive/internal/config"
	"cloud-drive/internal/events"
	"cloud-drive/internal/models"
	"cloud-drive/internal/storage"
	"cloud-drive/internal/websocket"

	gorilla "github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Catalog is the part of *catalog.Store the handlers use.
type Catalog interface {
	Ping(ctx context.Context) error

	CreateNode(ctx context.Context, arg catalog.CreateNodeParams) (*models.Node, error)
	GetNode(ctx context.Context, id string) (*models.Node, error)
	ListChildren(ctx context.Context, ownerID int64, parentID *string) ([]models.Node, error)
	ListStarred(ctx context.Context, ownerID int64) ([]models.Node, error)
	ListTrashed(ctx context.Context, ownerID int64) ([]models.Node, error)
	ToggleStar(ctx context.Context, actorID int64, nodeID string, starred bool) (*models.Node, error)
	RenameNode(ctx context.Context, actorID int64, nodeID string, newName string) (*models.Node, error)
	SoftDelete(ctx context.Context, actorID int64, nodeID string) error
	Restore(ctx context.Context, actorID int64, nodeID string) error
	PermanentDelete(ctx context.Context, actorID int64, nodeID string) ([]string, error)
	PurgeTrash(ctx context.Context, ownerID int64) ([]string, error)
	AuthorizeAccess(ctx context.Context, nodeID string, userID int64) (bool, error)

	ShareNode(ctx context.Context, arg catalog.ShareNodeParams) (*models.ShareGrant, error)
	UnshareNode(ctx context.Context, ownerID int64, nodeID string, granteeID int64) error
	ListSharedWithMe(ctx context.Context, userID int64) ([]models.SharedNode, error)
	ListSharedByMe(ctx context.Context, userID int64) ([]models.SharedNode, error)

	UpsertUser(ctx context.Context, arg catalog.UpsertUserParams) (*models.User, error)
	GetUserByExternalID(ctx context.Context, externalID string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	LogEvent(ctx context.Context, userID int64, eventType string, payload interface{}) (*catalog.Event, error)
	GetEventsSince(ctx context.Context, userID int64, sinceID int64) ([]catalog.Event, error)
}

type TokenVerifier interface {
	Verify(tokenString string) (*auth.Claims, error)
}

// BlobStore is implemented by storage backends whose signed links are served
// by this service under /blobs.
type BlobStore interface {
	VerifySignature(method, key, expires, signature string, now time.Time) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}

type Server struct {
	config   *config.Config
	store    Catalog
	storage  storage.ObjectStore
	blobs    BlobStore
	identity auth.Provider
	verifier TokenVerifier
	events   events.Publisher
	wsHub    *websocket.Hub
	upgrader gorilla.Upgrader
	logger   *zap.Logger
}

type Deps struct {
	Config   *config.Config
	Store    Catalog
	Storage  storage.ObjectStore
	Identity auth.Provider
	Verifier TokenVerifier
	Events   events.Publisher
	Hub      *websocket.Hub
	Logger   *zap.Logger
}

func NewServer(d Deps) *Server {
	s := &Server{
		config:   d.Config,
		store:    d.Store,
		storage:  d.Storage,
		identity: d.Identity,
		verifier: d.Verifier,
		events:   d.Events,
		wsHub:    d.Hub,
		upgrader: websocket.NewUpgrader(d.Config.HTTP.AllowedOrigins),
		logger:   d.Logger,
	}
	if blobs, ok := d.Storage.(BlobStore); ok {
		s.blobs = blobs
	}
	if s.events == nil {
		s.events = events.Nop{}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

func (s *Server) urlTTL() time.Duration {
	if s.config.Storage.URLTTL > 0 {
		return s.config.Storage.URLTTL
	}
	return storage.DefaultURLTTL
}

// notify journals an event for userID and pushes it to live subscribers.
// Failures are logged and never fail the request that caused them.
func (s *Server) notify(ctx context.Context, userID int64, eventType string, payload interface{}) {
	event, err := s.store.LogEvent(ctx, userID, eventType, payload)
	if err != nil {
		s.logger.Error("failed to journal event",
			zap.Error(err),
			zap.Int64("user_id", userID),
			zap.String("event_type", eventType),
		)
		return
	}
	s.events.Publish(event)
}

// deletePayloads removes objects whose catalog rows are already gone. Errors
// leave orphaned objects behind and are only logged.
func (s *Server) deletePayloads(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := s.storage.Delete(ctx, key); err != nil {
			s.logger.Warn("failed to delete object payload", zap.String("key", key), zap.Error(err))
		}
	}
}
