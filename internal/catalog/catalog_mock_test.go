package catalog

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"cloud-drive/internal/models"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"
)

var nodeRowColumns = []string{
	"id", "owner_id", "parent_id", "name", "content_type", "size_bytes", "storage_key",
	"is_folder", "is_starred", "is_deleted", "deleted_at", "created_at", "updated_at",
}

func mockNodeRow(id string, ownerID int64, isDeleted bool) *pgxmock.Rows {
	now := time.Now()
	var deletedAt *time.Time
	if isDeleted {
		deletedAt = &now
	}
	return pgxmock.NewRows(nodeRowColumns).AddRow(
		id, ownerID, (*string)(nil), "file.txt", "text/plain", int64(4), "1/key",
		false, false, isDeleted, deletedAt, now, now,
	)
}

func newMockStore(t *testing.T) (*Store, pgxmock.PgxPoolIface) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewStore(mock), mock
}

func TestCreateNodeRejectsTrashedParent(t *testing.T) {
	store, mock := newMockStore(t)
	parentID := "PPPPPPPPPPPPPPPPPPPPP"

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT owner_id, is_folder, is_deleted FROM nodes").
		WithArgs(parentID).
		WillReturnRows(pgxmock.NewRows([]string{"owner_id", "is_folder", "is_deleted"}).AddRow(int64(1), true, true))
	mock.ExpectRollback()

	_, err := store.CreateNode(context.Background(), CreateNodeParams{OwnerID: 1, ParentID: &parentID, Name: "child", IsFolder: true})
	require.ErrorIs(t, err, ErrInvalidParent)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateNodeValidatesBeforeTouchingDatabase(t *testing.T) {
	store, mock := newMockStore(t)

	_, err := store.CreateNode(context.Background(), CreateNodeParams{OwnerID: 1, Name: "a/b", StorageKey: "k"})
	require.ErrorIs(t, err, ErrInvalidInput)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExecTxBeginFailure(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectBegin().WillReturnError(errors.New("connection refused"))

	err := store.SoftDelete(context.Background(), 1, "NNNNNNNNNNNNNNNNNNNNN")
	require.ErrorContains(t, err, "connection refused")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthorizeAccessBranches(t *testing.T) {
	nodeID := "NNNNNNNNNNNNNNNNNNNNN"
	columns := []string{"owner_id", "is_deleted", "exists"}

	testCases := []struct {
		name      string
		ownerID   int64
		isDeleted bool
		granted   bool
		userID    int64
		expected  bool
	}{
		{name: "owner of trashed node", ownerID: 1, isDeleted: true, userID: 1, expected: true},
		{name: "grantee of active node", ownerID: 1, granted: true, userID: 2, expected: true},
		{name: "grantee of trashed node", ownerID: 1, isDeleted: true, granted: true, userID: 2, expected: false},
		{name: "no grant", ownerID: 1, userID: 3, expected: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			store, mock := newMockStore(t)
			mock.ExpectQuery("SELECT n.owner_id, n.is_deleted").
				WithArgs(nodeID, tc.userID).
				WillReturnRows(pgxmock.NewRows(columns).AddRow(tc.ownerID, tc.isDeleted, tc.granted))

			allowed, err := store.AuthorizeAccess(context.Background(), nodeID, tc.userID)
			require.NoError(t, err)
			require.Equal(t, tc.expected, allowed)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}

	t.Run("missing node", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery("SELECT n.owner_id, n.is_deleted").
			WithArgs(nodeID, int64(1)).
			WillReturnRows(pgxmock.NewRows(columns))

		_, err := store.AuthorizeAccess(context.Background(), nodeID, 1)
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestToggleStarReadGranteeForbidden(t *testing.T) {
	store, mock := newMockStore(t)
	nodeID := "NNNNNNNNNNNNNNNNNNNNN"

	mock.ExpectQuery("FROM nodes WHERE id").
		WithArgs(nodeID).
		WillReturnRows(mockNodeRow(nodeID, 1, false))
	mock.ExpectQuery("SELECT permission FROM share_grants").
		WithArgs(nodeID, int64(2)).
		WillReturnRows(pgxmock.NewRows([]string{"permission"}).AddRow(models.PermissionRead))

	_, err := store.ToggleStar(context.Background(), 2, nodeID, true)
	require.ErrorIs(t, err, ErrForbidden)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleStarTrashedNodeNotFound(t *testing.T) {
	store, mock := newMockStore(t)
	nodeID := "NNNNNNNNNNNNNNNNNNNNN"

	mock.ExpectQuery("FROM nodes WHERE id").
		WithArgs(nodeID).
		WillReturnRows(mockNodeRow(nodeID, 1, true))

	_, err := store.ToggleStar(context.Background(), 1, nodeID, true)
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUnshareNodeWithoutGrant(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("DELETE FROM share_grants").
		WithArgs("NNNNNNNNNNNNNNNNNNNNN", int64(1), int64(2)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := store.UnshareNode(context.Background(), 1, "NNNNNNNNNNNNNNNNNNNNN", 2)
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestShareNodeRejectsNonOwner(t *testing.T) {
	store, mock := newMockStore(t)
	nodeID := "NNNNNNNNNNNNNNNNNNNNN"

	mock.ExpectQuery("FROM nodes WHERE id").
		WithArgs(nodeID).
		WillReturnRows(mockNodeRow(nodeID, 1, false))

	_, err := store.ShareNode(context.Background(), ShareNodeParams{NodeID: nodeID, OwnerID: 5, GranteeID: 6, Permission: models.PermissionRead})
	require.ErrorIs(t, err, ErrNotOwner)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLockActiveSubtreeRepeatsUntilStable(t *testing.T) {
	_, mock := newMockStore(t)
	q := New(mock)
	nodeID := "NNNNNNNNNNNNNNNNNNNNN"

	mock.ExpectQuery("FOR UPDATE OF n").WithArgs(nodeID).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(nodeID).AddRow("child"))
	mock.ExpectQuery("FOR UPDATE OF n").WithArgs(nodeID).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(nodeID).AddRow("child").AddRow("grandchild"))
	mock.ExpectQuery("FOR UPDATE OF n").WithArgs(nodeID).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(nodeID).AddRow("child").AddRow("grandchild"))

	require.NoError(t, q.lockActiveSubtree(context.Background(), nodeID))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLockActiveSubtreeGivesUp(t *testing.T) {
	_, mock := newMockStore(t)
	q := New(mock)
	nodeID := "NNNNNNNNNNNNNNNNNNNNN"

	for pass := 0; pass < maxSubtreeLockPasses; pass++ {
		rows := pgxmock.NewRows([]string{"id"}).AddRow(nodeID)
		for i := 0; i < pass; i++ {
			rows.AddRow(fmt.Sprintf("child-%d", i))
		}
		mock.ExpectQuery("FOR UPDATE OF n").WithArgs(nodeID).WillReturnRows(rows)
	}

	err := q.lockActiveSubtree(context.Background(), nodeID)
	require.ErrorContains(t, err, "kept growing")
	require.NoError(t, mock.ExpectationsWereMet())
}
