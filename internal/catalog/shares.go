package catalog

import (
	"context"
	"errors"
	"fmt"

	"cloud-drive/internal/models"

	"github.com/jackc/pgx/v5"
)

type ShareNodeParams struct {
	NodeID     string
	OwnerID    int64
	GranteeID  int64
	Permission string
}

// ShareNode grants the grantee access to a node. Sharing the same node with
// the same user again replaces the permission of the existing grant.
func (q *Queries) ShareNode(ctx context.Context, arg ShareNodeParams) (*models.ShareGrant, error) {
	if !models.ValidPermission(arg.Permission) {
		return nil, fmt.Errorf("%w: permission must be %q or %q", ErrInvalidInput, models.PermissionRead, models.PermissionWrite)
	}
	if arg.GranteeID == arg.OwnerID {
		return nil, fmt.Errorf("%w: cannot share a node with its owner", ErrInvalidInput)
	}

	node, err := q.GetNode(ctx, arg.NodeID)
	if err != nil {
		return nil, err
	}
	if node.OwnerID != arg.OwnerID {
		return nil, ErrNotOwner
	}
	if node.IsDeleted {
		return nil, ErrNotFound
	}

	query := `
		INSERT INTO share_grants (node_id, owner_id, grantee_id, permission)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (node_id, grantee_id) DO UPDATE
		SET permission = EXCLUDED.permission, updated_at = NOW()
		RETURNING id, node_id, owner_id, grantee_id, permission, created_at, updated_at
	`
	var grant models.ShareGrant
	err = q.db.QueryRow(ctx, query, arg.NodeID, arg.OwnerID, arg.GranteeID, arg.Permission).Scan(
		&grant.ID,
		&grant.NodeID,
		&grant.OwnerID,
		&grant.GranteeID,
		&grant.Permission,
		&grant.CreatedAt,
		&grant.UpdatedAt,
	)
	if err != nil {
		if pgErrorCode(err) == pgForeignKeyViolation {
			return nil, fmt.Errorf("%w: grantee %d does not exist", ErrNotFound, arg.GranteeID)
		}
		return nil, err
	}

	return &grant, nil
}

func (q *Queries) UnshareNode(ctx context.Context, ownerID int64, nodeID string, granteeID int64) error {
	query := `DELETE FROM share_grants WHERE node_id = $1 AND owner_id = $2 AND grantee_id = $3`
	tag, err := q.db.Exec(ctx, query, nodeID, ownerID, granteeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AuthorizeAccess decides whether userID may read the node. Owners always may,
// including for trashed nodes; grantees only while the node is active. Grants
// on ancestors are not inherited.
func (q *Queries) AuthorizeAccess(ctx context.Context, nodeID string, userID int64) (bool, error) {
	query := `
		SELECT n.owner_id, n.is_deleted,
			EXISTS(SELECT 1 FROM share_grants g WHERE g.node_id = n.id AND g.grantee_id = $2)
		FROM nodes n
		WHERE n.id = $1
	`
	var ownerID int64
	var isDeleted, granted bool
	err := q.db.QueryRow(ctx, query, nodeID, userID).Scan(&ownerID, &isDeleted, &granted)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, ErrNotFound
		}
		return false, err
	}

	if ownerID == userID {
		return true, nil
	}
	return granted && !isDeleted, nil
}

const sharedNodeColumns = `n.id, n.owner_id, n.parent_id, n.name, n.content_type, n.size_bytes, n.storage_key,
	n.is_folder, n.is_starred, n.is_deleted, n.deleted_at, n.created_at, n.updated_at,
	u.id, u.username, g.permission, g.created_at`

func collectSharedNodes(rows pgx.Rows) ([]models.SharedNode, error) {
	defer rows.Close()

	shared := []models.SharedNode{}
	for rows.Next() {
		var s models.SharedNode
		err := rows.Scan(
			&s.Node.ID,
			&s.Node.OwnerID,
			&s.Node.ParentID,
			&s.Node.Name,
			&s.Node.ContentType,
			&s.Node.SizeBytes,
			&s.Node.StorageKey,
			&s.Node.IsFolder,
			&s.Node.IsStarred,
			&s.Node.IsDeleted,
			&s.Node.DeletedAt,
			&s.Node.CreatedAt,
			&s.Node.UpdatedAt,
			&s.Counterpart.ID,
			&s.Counterpart.Username,
			&s.Permission,
			&s.SharedAt,
		)
		if err != nil {
			return nil, err
		}
		shared = append(shared, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return shared, nil
}

// ListSharedWithMe lists active nodes other users shared with userID, the
// counterpart being the owner.
func (q *Queries) ListSharedWithMe(ctx context.Context, userID int64) ([]models.SharedNode, error) {
	query := `
		SELECT ` + sharedNodeColumns + `
		FROM share_grants g
		INNER JOIN nodes n ON n.id = g.node_id
		INNER JOIN users u ON u.id = g.owner_id
		WHERE g.grantee_id = $1 AND NOT n.is_deleted
		ORDER BY g.created_at DESC, g.id DESC
	`
	rows, err := q.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	return collectSharedNodes(rows)
}

// ListSharedByMe lists the grants userID handed out, one entry per grantee.
func (q *Queries) ListSharedByMe(ctx context.Context, userID int64) ([]models.SharedNode, error) {
	query := `
		SELECT ` + sharedNodeColumns + `
		FROM share_grants g
		INNER JOIN nodes n ON n.id = g.node_id
		INNER JOIN users u ON u.id = g.grantee_id
		WHERE g.owner_id = $1 AND NOT n.is_deleted
		ORDER BY g.created_at DESC, g.id DESC
	`
	rows, err := q.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	return collectSharedNodes(rows)
}
