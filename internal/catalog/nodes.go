package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud-drive/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jaevor/go-nanoid"
)

const (
	FolderContentType  = "folder"
	DefaultContentType = "application/octet-stream"
)

const nodeColumns = `id, owner_id, parent_id, name, content_type, size_bytes, storage_key,
	is_folder, is_starred, is_deleted, deleted_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanNode(row rowScanner) (*models.Node, error) {
	var node models.Node
	err := row.Scan(
		&node.ID,
		&node.OwnerID,
		&node.ParentID,
		&node.Name,
		&node.ContentType,
		&node.SizeBytes,
		&node.StorageKey,
		&node.IsFolder,
		&node.IsStarred,
		&node.IsDeleted,
		&node.DeletedAt,
		&node.CreatedAt,
		&node.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &node, nil
}

func collectNodes(rows pgx.Rows) ([]models.Node, error) {
	defer rows.Close()

	nodes := []models.Node{}
	for rows.Next() {
		node, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, *node)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return nodes, nil
}

type CreateNodeParams struct {
	OwnerID     int64
	ParentID    *string
	Name        string
	ContentType string
	SizeBytes   int64
	StorageKey  string
	IsFolder    bool
}

func (p *CreateNodeParams) normalize() error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if strings.ContainsAny(p.Name, "/\x00") {
		return fmt.Errorf("%w: name contains forbidden characters", ErrInvalidInput)
	}

	if p.IsFolder {
		p.SizeBytes = 0
		p.StorageKey = ""
		p.ContentType = FolderContentType
		return nil
	}

	if p.StorageKey == "" {
		return fmt.Errorf("%w: storage key is required for files", ErrInvalidInput)
	}
	if p.SizeBytes < 0 {
		return fmt.Errorf("%w: size must not be negative", ErrInvalidInput)
	}
	if p.ContentType == "" {
		p.ContentType = DefaultContentType
	}
	return nil
}

// CreateNode records a file or folder. The parent, when given, must be an
// active folder of the same owner; it is locked for the duration of the insert
// so a concurrent soft-delete cannot slip in between the check and the write.
func (s *Store) CreateNode(ctx context.Context, arg CreateNodeParams) (*models.Node, error) {
	if err := arg.normalize(); err != nil {
		return nil, err
	}

	var node *models.Node
	err := s.ExecTx(ctx, func(q *Queries) error {
		if arg.ParentID != nil {
			if err := q.checkParent(ctx, arg.OwnerID, *arg.ParentID); err != nil {
				return err
			}
		}

		id, err := q.generateUniqueID(ctx)
		if err != nil {
			return err
		}

		node, err = q.insertNode(ctx, id, arg)
		return err
	})
	if err != nil {
		return nil, err
	}

	return node, nil
}

func (q *Queries) checkParent(ctx context.Context, ownerID int64, parentID string) error {
	query := `SELECT owner_id, is_folder, is_deleted FROM nodes WHERE id = $1 FOR SHARE`

	var parentOwner int64
	var isFolder, isDeleted bool
	err := q.db.QueryRow(ctx, query, parentID).Scan(&parentOwner, &isFolder, &isDeleted)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: parent %s does not exist", ErrInvalidParent, parentID)
		}
		return err
	}

	switch {
	case parentOwner != ownerID:
		return fmt.Errorf("%w: parent %s belongs to another user", ErrInvalidParent, parentID)
	case !isFolder:
		return fmt.Errorf("%w: parent %s is not a folder", ErrInvalidParent, parentID)
	case isDeleted:
		return fmt.Errorf("%w: parent %s is in the trash", ErrInvalidParent, parentID)
	}

	return nil
}

func (q *Queries) generateUniqueID(ctx context.Context) (string, error) {
	maxRetries := 10

	generateID, err := nanoid.Standard(nodeIDLength)
	if err != nil {
		return "", fmt.Errorf("failed to initialize nanoid generator: %w", err)
	}

	for i := 0; i < maxRetries; i++ {
		id := generateID()
		exists, err := q.NodeExists(ctx, id)
		if err != nil {
			return "", fmt.Errorf("failed to check for node existence: %w", err)
		}
		if !exists {
			return id, nil
		}
	}

	return "", fmt.Errorf("failed to generate a unique ID after %d attempts", maxRetries)
}

func (q *Queries) insertNode(ctx context.Context, id string, arg CreateNodeParams) (*models.Node, error) {
	query := `
		INSERT INTO nodes (id, owner_id, parent_id, name, content_type, size_bytes, storage_key, is_folder, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		RETURNING ` + nodeColumns

	now := time.Now()
	row := q.db.QueryRow(ctx, query,
		id,
		arg.OwnerID,
		arg.ParentID,
		arg.Name,
		arg.ContentType,
		arg.SizeBytes,
		arg.StorageKey,
		arg.IsFolder,
		now,
	)

	node, err := scanNode(row)
	if err != nil {
		switch {
		case pgErrorCode(err) == pgForeignKeyViolation:
			return nil, fmt.Errorf("%w: owner %d does not exist", ErrInvalidInput, arg.OwnerID)
		case pgErrorCode(err) == pgUniqueViolation && pgConstraint(err) == storageKeyConstraint:
			return nil, fmt.Errorf("%w: storage key is already recorded", ErrInvalidInput)
		}
		return nil, err
	}

	return node, nil
}

func (q *Queries) NodeExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	query := "SELECT EXISTS(SELECT 1 FROM nodes WHERE id = $1)"
	err := q.db.QueryRow(ctx, query, id).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// GetNode returns the node in any lifecycle state.
func (q *Queries) GetNode(ctx context.Context, id string) (*models.Node, error) {
	query := `SELECT ` + nodeColumns + ` FROM nodes WHERE id = $1`

	node, err := scanNode(q.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return node, nil
}

func (q *Queries) getNodeForUpdate(ctx context.Context, id string) (*models.Node, error) {
	query := `SELECT ` + nodeColumns + ` FROM nodes WHERE id = $1 FOR UPDATE`

	node, err := scanNode(q.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return node, nil
}

// ListChildren lists the active children of parentID (nil for the root),
// folders first and then by name in byte order. A parent that is missing,
// trashed or owned by someone else is reported as ErrNotFound.
func (q *Queries) ListChildren(ctx context.Context, ownerID int64, parentID *string) ([]models.Node, error) {
	if parentID != nil {
		var isFolder bool
		check := `SELECT is_folder FROM nodes WHERE id = $1 AND owner_id = $2 AND NOT is_deleted`
		err := q.db.QueryRow(ctx, check, *parentID, ownerID).Scan(&isFolder)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		if !isFolder {
			return nil, fmt.Errorf("%w: %s is not a folder", ErrInvalidParent, *parentID)
		}
	}

	query := `
		SELECT ` + nodeColumns + `
		FROM nodes
		WHERE owner_id = $1 AND parent_id IS NOT DISTINCT FROM $2 AND NOT is_deleted
		ORDER BY is_folder DESC, name COLLATE "C", id
	`
	rows, err := q.db.Query(ctx, query, ownerID, parentID)
	if err != nil {
		return nil, err
	}

	return collectNodes(rows)
}

func (q *Queries) ListStarred(ctx context.Context, ownerID int64) ([]models.Node, error) {
	query := `
		SELECT ` + nodeColumns + `
		FROM nodes
		WHERE owner_id = $1 AND is_starred AND NOT is_deleted
		ORDER BY updated_at DESC, id
	`
	rows, err := q.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}

	return collectNodes(rows)
}

func (q *Queries) ListTrashed(ctx context.Context, ownerID int64) ([]models.Node, error) {
	query := `
		SELECT ` + nodeColumns + `
		FROM nodes
		WHERE owner_id = $1 AND is_deleted
		ORDER BY deleted_at DESC, id
	`
	rows, err := q.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}

	return collectNodes(rows)
}

func (q *Queries) grantPermission(ctx context.Context, nodeID string, granteeID int64) (string, error) {
	query := `SELECT permission FROM share_grants WHERE node_id = $1 AND grantee_id = $2`

	var permission string
	err := q.db.QueryRow(ctx, query, nodeID, granteeID).Scan(&permission)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return permission, nil
}

// requireOwner hides the node from users who cannot see it at all and
// forbids the operation to grantees.
func (q *Queries) requireOwner(ctx context.Context, node *models.Node, actorID int64) error {
	if node.OwnerID == actorID {
		return nil
	}
	permission, err := q.grantPermission(ctx, node.ID, actorID)
	if err != nil {
		return err
	}
	if permission == "" || node.IsDeleted {
		return ErrNotFound
	}
	return ErrForbidden
}

func (q *Queries) requireWrite(ctx context.Context, node *models.Node, actorID int64) error {
	if node.OwnerID == actorID {
		return nil
	}
	permission, err := q.grantPermission(ctx, node.ID, actorID)
	if err != nil {
		return err
	}
	switch permission {
	case "":
		return ErrNotFound
	case models.PermissionWrite:
		return nil
	default:
		return ErrForbidden
	}
}

// ToggleStar sets the starred flag. Only the owner or a grantee holding write
// permission may change it.
func (q *Queries) ToggleStar(ctx context.Context, actorID int64, nodeID string, starred bool) (*models.Node, error) {
	node, err := q.GetNode(ctx, nodeID)
	if err != nil {
		return nil, err
	}
	if node.IsDeleted {
		return nil, ErrNotFound
	}
	if err := q.requireWrite(ctx, node, actorID); err != nil {
		return nil, err
	}

	query := `
		UPDATE nodes
		SET is_starred = $2, updated_at = $3
		WHERE id = $1 AND NOT is_deleted
		RETURNING ` + nodeColumns

	updated, err := scanNode(q.db.QueryRow(ctx, query, nodeID, starred, time.Now()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return updated, nil
}

func (q *Queries) RenameNode(ctx context.Context, actorID int64, nodeID string, newName string) (*models.Node, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" || strings.ContainsAny(newName, "/\x00") {
		return nil, fmt.Errorf("%w: invalid name", ErrInvalidInput)
	}

	node, err := q.GetNode(ctx, nodeID)
	if err != nil {
		return nil, err
	}
	if node.IsDeleted {
		return nil, ErrNotFound
	}
	if err := q.requireWrite(ctx, node, actorID); err != nil {
		return nil, err
	}

	query := `
		UPDATE nodes
		SET name = $2, updated_at = $3
		WHERE id = $1 AND NOT is_deleted
		RETURNING ` + nodeColumns

	updated, err := scanNode(q.db.QueryRow(ctx, query, nodeID, newName, time.Now()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return updated, nil
}

// SoftDelete moves the node and every active descendant to the trash, all
// stamped with the same deletion time so Restore can bring back exactly that
// subtree. Trashing a node that is already trashed is a no-op.
func (s *Store) SoftDelete(ctx context.Context, actorID int64, nodeID string) error {
	return s.ExecTx(ctx, func(q *Queries) error {
		node, err := q.getNodeForUpdate(ctx, nodeID)
		if err != nil {
			return err
		}
		if err := q.requireOwner(ctx, node, actorID); err != nil {
			return err
		}
		if node.IsDeleted {
			return nil
		}

		if err := q.lockActiveSubtree(ctx, nodeID); err != nil {
			return err
		}

		query := `
			WITH RECURSIVE subtree AS (
				SELECT id FROM nodes WHERE id = $1

				UNION ALL

				SELECT n.id
				FROM nodes n
				INNER JOIN subtree s ON n.parent_id = s.id
				WHERE NOT n.is_deleted
			)
			UPDATE nodes
			SET is_deleted = TRUE, deleted_at = $2
			WHERE id IN (SELECT id FROM subtree) AND NOT is_deleted
		`
		_, err = q.db.Exec(ctx, query, nodeID, time.Now())
		return err
	})
}

const maxSubtreeLockPasses = 5

// lockActiveSubtree takes row locks on the node and its active descendants.
// CreateNode holds FOR SHARE on the parent, so once every folder in the
// subtree is locked no new child can appear under it until the transaction
// ends. Each pass runs with a fresh snapshot and picks up children committed
// while the previous pass waited; it stops when a pass locks nothing new.
func (q *Queries) lockActiveSubtree(ctx context.Context, nodeID string) error {
	query := `
		WITH RECURSIVE subtree AS (
			SELECT id FROM nodes WHERE id = $1

			UNION ALL

			SELECT n.id
			FROM nodes n
			INNER JOIN subtree s ON n.parent_id = s.id
			WHERE NOT n.is_deleted
		)
		SELECT n.id
		FROM nodes n
		INNER JOIN subtree s ON n.id = s.id
		FOR UPDATE OF n
	`

	locked := -1
	for pass := 0; pass < maxSubtreeLockPasses; pass++ {
		rows, err := q.db.Query(ctx, query, nodeID)
		if err != nil {
			return err
		}
		ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
		if err != nil {
			return err
		}
		if len(ids) == locked {
			return nil
		}
		locked = len(ids)
	}

	return fmt.Errorf("subtree of %s kept growing while locking", nodeID)
}

// Restore brings a trashed node back together with the descendants that were
// trashed in the same operation. Restoring an active node is a no-op; a node
// whose parent folder is still trashed cannot be restored.
func (s *Store) Restore(ctx context.Context, actorID int64, nodeID string) error {
	return s.ExecTx(ctx, func(q *Queries) error {
		node, err := q.getNodeForUpdate(ctx, nodeID)
		if err != nil {
			return err
		}
		if err := q.requireOwner(ctx, node, actorID); err != nil {
			return err
		}
		if !node.IsDeleted {
			return nil
		}

		if node.ParentID != nil {
			parent, err := q.GetNode(ctx, *node.ParentID)
			if err != nil {
				return err
			}
			if parent.IsDeleted {
				return ErrParentTrashed
			}
		}

		query := `
			WITH RECURSIVE subtree AS (
				SELECT id FROM nodes WHERE id = $1

				UNION ALL

				SELECT n.id
				FROM nodes n
				INNER JOIN subtree s ON n.parent_id = s.id
				WHERE n.deleted_at = $2
			)
			UPDATE nodes
			SET is_deleted = FALSE, deleted_at = NULL
			WHERE id IN (SELECT id FROM subtree)
		`
		_, err = q.db.Exec(ctx, query, nodeID, node.DeletedAt)
		return err
	})
}

// PermanentDelete removes the node row; the schema cascades the delete to its
// descendants and share grants. The storage keys of every removed file are
// returned so the caller can drop the payloads, which is not part of this
// transaction.
func (s *Store) PermanentDelete(ctx context.Context, actorID int64, nodeID string) ([]string, error) {
	var keys []string
	err := s.ExecTx(ctx, func(q *Queries) error {
		node, err := q.getNodeForUpdate(ctx, nodeID)
		if err != nil {
			return err
		}
		if err := q.requireOwner(ctx, node, actorID); err != nil {
			return err
		}

		keys, err = q.subtreeStorageKeys(ctx, nodeID)
		if err != nil {
			return err
		}

		_, err = q.db.Exec(ctx, `DELETE FROM nodes WHERE id = $1`, nodeID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return keys, nil
}

func (q *Queries) subtreeStorageKeys(ctx context.Context, nodeID string) ([]string, error) {
	query := `
		WITH RECURSIVE subtree AS (
			SELECT id FROM nodes WHERE id = $1

			UNION ALL

			SELECT n.id
			FROM nodes n
			INNER JOIN subtree s ON n.parent_id = s.id
		)
		SELECT storage_key
		FROM nodes
		WHERE id IN (SELECT id FROM subtree) AND NOT is_folder AND storage_key <> ''
	`
	rows, err := q.db.Query(ctx, query, nodeID)
	if err != nil {
		return nil, err
	}
	return collectKeys(rows)
}

// PurgeTrash permanently deletes everything in the owner's trash and returns
// the storage keys of the removed files.
func (s *Store) PurgeTrash(ctx context.Context, ownerID int64) ([]string, error) {
	var keys []string
	err := s.ExecTx(ctx, func(q *Queries) error {
		query := `
			WITH RECURSIVE subtree AS (
				SELECT id FROM nodes WHERE owner_id = $1 AND is_deleted

				UNION

				SELECT n.id
				FROM nodes n
				INNER JOIN subtree s ON n.parent_id = s.id
			)
			SELECT storage_key
			FROM nodes
			WHERE id IN (SELECT id FROM subtree) AND NOT is_folder AND storage_key <> ''
		`
		rows, err := q.db.Query(ctx, query, ownerID)
		if err != nil {
			return err
		}
		keys, err = collectKeys(rows)
		if err != nil {
			return err
		}

		_, err = q.db.Exec(ctx, `DELETE FROM nodes WHERE owner_id = $1 AND is_deleted`, ownerID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return keys, nil
}

func collectKeys(rows pgx.Rows) ([]string, error) {
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return keys, nil
}
