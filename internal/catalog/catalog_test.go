package catalog

import (
	"context"
	"fmt"
	"testing"
	"time"

	"cloud-drive/internal/models"

	"github.com/stretchr/testify/require"
)

func createTestUser(t *testing.T, username string) *models.User {
	user, err := testStore.UpsertUser(context.Background(), UpsertUserParams{
		ExternalID: "sub-" + username,
		Username:   username,
		Email:      username + "@example.com",
	})
	require.NoError(t, err)
	return user
}

func createTestFolder(t *testing.T, ownerID int64, parentID *string, name string) *models.Node {
	node, err := testStore.CreateNode(context.Background(), CreateNodeParams{
		OwnerID:  ownerID,
		ParentID: parentID,
		Name:     name,
		IsFolder: true,
	})
	require.NoError(t, err)
	require.NotNil(t, node)
	return node
}

func createTestFile(t *testing.T, ownerID int64, parentID *string, name string, size int64) *models.Node {
	node, err := testStore.CreateNode(context.Background(), CreateNodeParams{
		OwnerID:     ownerID,
		ParentID:    parentID,
		Name:        name,
		ContentType: "application/pdf",
		SizeBytes:   size,
		StorageKey:  fmt.Sprintf("%d/%d-%s", ownerID, time.Now().UnixNano(), name),
	})
	require.NoError(t, err)
	require.NotNil(t, node)
	return node
}

func nodeNames(nodes []models.Node) []string {
	names := make([]string, 0, len(nodes))
	for _, n := range nodes {
		names = append(names, n.Name)
	}
	return names
}

func TestUpsertUser(t *testing.T) {
	ctx := context.Background()

	first, err := testStore.UpsertUser(ctx, UpsertUserParams{ExternalID: "sub-upsert", Username: "upsert_user", Email: "a@example.com"})
	require.NoError(t, err)

	second, err := testStore.UpsertUser(ctx, UpsertUserParams{ExternalID: "sub-upsert", Username: "upsert_user", Email: "b@example.com"})
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, "b@example.com", second.Email)

	byExternal, err := testStore.GetUserByExternalID(ctx, "sub-upsert")
	require.NoError(t, err)
	require.Equal(t, first.ID, byExternal.ID)

	_, err = testStore.UpsertUser(ctx, UpsertUserParams{ExternalID: "sub-other", Username: "upsert_user"})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = testStore.GetUserByUsername(ctx, "nobody_here")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCreateNodeParentInvariant(t *testing.T) {
	ctx := context.Background()
	owner := createTestUser(t, "parent_owner")
	stranger := createTestUser(t, "parent_stranger")

	folder := createTestFolder(t, owner.ID, nil, "Projects")
	file := createTestFile(t, owner.ID, &folder.ID, "plan.txt", 10)
	require.Equal(t, folder.ID, *file.ParentID)
	require.Len(t, file.ID, nodeIDLength)
	require.True(t, ValidNodeID(file.ID))

	t.Run("parent owned by another user", func(t *testing.T) {
		_, err := testStore.CreateNode(ctx, CreateNodeParams{OwnerID: stranger.ID, ParentID: &folder.ID, Name: "x", IsFolder: true})
		require.ErrorIs(t, err, ErrInvalidParent)
	})

	t.Run("parent is a file", func(t *testing.T) {
		_, err := testStore.CreateNode(ctx, CreateNodeParams{OwnerID: owner.ID, ParentID: &file.ID, Name: "x", IsFolder: true})
		require.ErrorIs(t, err, ErrInvalidParent)
	})

	t.Run("parent does not exist", func(t *testing.T) {
		missing := "AAAAAAAAAAAAAAAAAAAAA"
		_, err := testStore.CreateNode(ctx, CreateNodeParams{OwnerID: owner.ID, ParentID: &missing, Name: "x", IsFolder: true})
		require.ErrorIs(t, err, ErrInvalidParent)
	})

	t.Run("parent is trashed", func(t *testing.T) {
		trashed := createTestFolder(t, owner.ID, nil, "Old")
		require.NoError(t, testStore.SoftDelete(ctx, owner.ID, trashed.ID))
		_, err := testStore.CreateNode(ctx, CreateNodeParams{OwnerID: owner.ID, ParentID: &trashed.ID, Name: "x", IsFolder: true})
		require.ErrorIs(t, err, ErrInvalidParent)
	})

	t.Run("invalid input", func(t *testing.T) {
		_, err := testStore.CreateNode(ctx, CreateNodeParams{OwnerID: owner.ID, Name: "   ", IsFolder: true})
		require.ErrorIs(t, err, ErrInvalidInput)

		_, err = testStore.CreateNode(ctx, CreateNodeParams{OwnerID: owner.ID, Name: "f.bin"})
		require.ErrorIs(t, err, ErrInvalidInput)

		_, err = testStore.CreateNode(ctx, CreateNodeParams{OwnerID: owner.ID, Name: "f.bin", StorageKey: "k", SizeBytes: -1})
		require.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("folder shape is normalized", func(t *testing.T) {
		node, err := testStore.CreateNode(ctx, CreateNodeParams{OwnerID: owner.ID, Name: "Shaped", IsFolder: true, SizeBytes: 99, StorageKey: "ignored"})
		require.NoError(t, err)
		require.Zero(t, node.SizeBytes)
		require.Empty(t, node.StorageKey)
		require.Equal(t, FolderContentType, node.ContentType)
	})
}

func TestListChildrenOrdering(t *testing.T) {
	ctx := context.Background()
	owner := createTestUser(t, "order_owner")

	root := createTestFolder(t, owner.ID, nil, "Root")
	createTestFile(t, owner.ID, &root.ID, "b.txt", 1)
	createTestFile(t, owner.ID, &root.ID, "B.txt", 1)
	createTestFolder(t, owner.ID, &root.ID, "zeta")
	createTestFolder(t, owner.ID, &root.ID, "alpha")

	children, err := testStore.ListChildren(ctx, owner.ID, &root.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"alpha", "zeta", "B.txt", "b.txt"}, nodeNames(children))

	other := createTestUser(t, "order_other")
	_, err = testStore.ListChildren(ctx, other.ID, &root.ID)
	require.ErrorIs(t, err, ErrNotFound)

	file := children[2]
	_, err = testStore.ListChildren(ctx, owner.ID, &file.ID)
	require.ErrorIs(t, err, ErrInvalidParent)
}

func TestDocsReportScenario(t *testing.T) {
	ctx := context.Background()
	alice := createTestUser(t, "scenario_a")
	bob := createTestUser(t, "scenario_b")

	docs := createTestFolder(t, alice.ID, nil, "Docs")
	report := createTestFile(t, alice.ID, &docs.ID, "report.pdf", 200000)

	rootChildren, err := testStore.ListChildren(ctx, alice.ID, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"Docs"}, nodeNames(rootChildren))

	docsChildren, err := testStore.ListChildren(ctx, alice.ID, &docs.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"report.pdf"}, nodeNames(docsChildren))
	require.EqualValues(t, 200000, docsChildren[0].SizeBytes)

	_, err = testStore.ShareNode(ctx, ShareNodeParams{NodeID: report.ID, OwnerID: alice.ID, GranteeID: bob.ID, Permission: models.PermissionRead})
	require.NoError(t, err)

	shared, err := testStore.ListSharedWithMe(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, shared, 1)
	require.Equal(t, "report.pdf", shared[0].Node.Name)
	require.Equal(t, alice.ID, shared[0].Counterpart.ID)
	require.Equal(t, "scenario_a", shared[0].Counterpart.Username)

	byMe, err := testStore.ListSharedByMe(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, byMe, 1)
	require.Equal(t, bob.ID, byMe[0].Counterpart.ID)

	allowed, err := testStore.AuthorizeAccess(ctx, report.ID, bob.ID)
	require.NoError(t, err)
	require.True(t, allowed)

	require.NoError(t, testStore.SoftDelete(ctx, alice.ID, report.ID))

	docsChildren, err = testStore.ListChildren(ctx, alice.ID, &docs.ID)
	require.NoError(t, err)
	require.Empty(t, docsChildren)

	trashed, err := testStore.ListTrashed(ctx, alice.ID)
	require.NoError(t, err)
	require.Contains(t, nodeNames(trashed), "report.pdf")

	allowed, err = testStore.AuthorizeAccess(ctx, report.ID, bob.ID)
	require.NoError(t, err)
	require.False(t, allowed)

	shared, err = testStore.ListSharedWithMe(ctx, bob.ID)
	require.NoError(t, err)
	require.Empty(t, shared)

	keys, err := testStore.PermanentDelete(ctx, alice.ID, docs.ID)
	require.NoError(t, err)
	require.Equal(t, []string{report.StorageKey}, keys)

	_, err = testStore.ListChildren(ctx, alice.ID, &docs.ID)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = testStore.GetNode(ctx, report.ID)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = testStore.AuthorizeAccess(ctx, report.ID, bob.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSoftDeleteRestoreIdentity(t *testing.T) {
	ctx := context.Background()
	owner := createTestUser(t, "restore_owner")

	folder := createTestFolder(t, owner.ID, nil, "Photos")
	sub := createTestFolder(t, owner.ID, &folder.ID, "2024")
	file := createTestFile(t, owner.ID, &sub.ID, "beach.jpg", 1234)

	_, err := testStore.ToggleStar(ctx, owner.ID, file.ID, true)
	require.NoError(t, err)
	before, err := testStore.GetNode(ctx, file.ID)
	require.NoError(t, err)

	require.NoError(t, testStore.SoftDelete(ctx, owner.ID, folder.ID))
	require.NoError(t, testStore.SoftDelete(ctx, owner.ID, folder.ID), "soft delete is idempotent")

	trashedFile, err := testStore.GetNode(ctx, file.ID)
	require.NoError(t, err)
	require.True(t, trashedFile.IsDeleted)
	require.NotNil(t, trashedFile.DeletedAt)

	trashedFolder, err := testStore.GetNode(ctx, folder.ID)
	require.NoError(t, err)
	require.True(t, trashedFolder.DeletedAt.Equal(*trashedFile.DeletedAt))

	err = testStore.Restore(ctx, owner.ID, sub.ID)
	require.ErrorIs(t, err, ErrParentTrashed)

	require.NoError(t, testStore.Restore(ctx, owner.ID, folder.ID))
	require.NoError(t, testStore.Restore(ctx, owner.ID, folder.ID), "restoring an active node is a no-op")

	after, err := testStore.GetNode(ctx, file.ID)
	require.NoError(t, err)
	require.False(t, after.IsDeleted)
	require.Nil(t, after.DeletedAt)
	require.Equal(t, before.Name, after.Name)
	require.Equal(t, before.ParentID, after.ParentID)
	require.Equal(t, before.SizeBytes, after.SizeBytes)
	require.Equal(t, before.StorageKey, after.StorageKey)
	require.Equal(t, before.IsStarred, after.IsStarred)
}

func TestRestoreKeepsSeparatelyTrashedChildren(t *testing.T) {
	ctx := context.Background()
	owner := createTestUser(t, "restore_separate")

	folder := createTestFolder(t, owner.ID, nil, "Mixed")
	early := createTestFile(t, owner.ID, &folder.ID, "early.txt", 1)
	late := createTestFile(t, owner.ID, &folder.ID, "late.txt", 1)

	require.NoError(t, testStore.SoftDelete(ctx, owner.ID, early.ID))
	require.NoError(t, testStore.SoftDelete(ctx, owner.ID, folder.ID))
	require.NoError(t, testStore.Restore(ctx, owner.ID, folder.ID))

	children, err := testStore.ListChildren(ctx, owner.ID, &folder.ID)
	require.NoError(t, err)
	require.Equal(t, []string{late.Name}, nodeNames(children))

	stillTrashed, err := testStore.GetNode(ctx, early.ID)
	require.NoError(t, err)
	require.True(t, stillTrashed.IsDeleted)
}

func TestOwnershipChecks(t *testing.T) {
	ctx := context.Background()
	owner := createTestUser(t, "perm_owner")
	reader := createTestUser(t, "perm_reader")
	writer := createTestUser(t, "perm_writer")
	stranger := createTestUser(t, "perm_stranger")

	file := createTestFile(t, owner.ID, nil, "contract.pdf", 5)
	_, err := testStore.ShareNode(ctx, ShareNodeParams{NodeID: file.ID, OwnerID: owner.ID, GranteeID: reader.ID, Permission: models.PermissionRead})
	require.NoError(t, err)
	_, err = testStore.ShareNode(ctx, ShareNodeParams{NodeID: file.ID, OwnerID: owner.ID, GranteeID: writer.ID, Permission: models.PermissionWrite})
	require.NoError(t, err)

	_, err = testStore.ToggleStar(ctx, stranger.ID, file.ID, true)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = testStore.ToggleStar(ctx, reader.ID, file.ID, true)
	require.ErrorIs(t, err, ErrForbidden)

	starred, err := testStore.ToggleStar(ctx, writer.ID, file.ID, true)
	require.NoError(t, err)
	require.True(t, starred.IsStarred)

	renamed, err := testStore.RenameNode(ctx, writer.ID, file.ID, "contract-v2.pdf")
	require.NoError(t, err)
	require.Equal(t, "contract-v2.pdf", renamed.Name)

	require.ErrorIs(t, testStore.SoftDelete(ctx, writer.ID, file.ID), ErrForbidden)
	require.ErrorIs(t, testStore.SoftDelete(ctx, stranger.ID, file.ID), ErrNotFound)

	_, err = testStore.PermanentDelete(ctx, reader.ID, file.ID)
	require.ErrorIs(t, err, ErrForbidden)

	list, err := testStore.ListStarred(ctx, owner.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"contract-v2.pdf"}, nodeNames(list))
}

func TestShareNodeUpsert(t *testing.T) {
	ctx := context.Background()
	owner := createTestUser(t, "upsert_share_owner")
	grantee := createTestUser(t, "upsert_share_grantee")
	file := createTestFile(t, owner.ID, nil, "notes.md", 3)

	first, err := testStore.ShareNode(ctx, ShareNodeParams{NodeID: file.ID, OwnerID: owner.ID, GranteeID: grantee.ID, Permission: models.PermissionRead})
	require.NoError(t, err)
	second, err := testStore.ShareNode(ctx, ShareNodeParams{NodeID: file.ID, OwnerID: owner.ID, GranteeID: grantee.ID, Permission: models.PermissionWrite})
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, models.PermissionWrite, second.Permission)

	var count int
	err = testStore.pool.QueryRow(ctx, `SELECT count(*) FROM share_grants WHERE node_id = $1 AND grantee_id = $2`, file.ID, grantee.ID).Scan(&count)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	t.Run("validation", func(t *testing.T) {
		_, err := testStore.ShareNode(ctx, ShareNodeParams{NodeID: file.ID, OwnerID: owner.ID, GranteeID: grantee.ID, Permission: "admin"})
		require.ErrorIs(t, err, ErrInvalidInput)

		_, err = testStore.ShareNode(ctx, ShareNodeParams{NodeID: file.ID, OwnerID: owner.ID, GranteeID: owner.ID, Permission: models.PermissionRead})
		require.ErrorIs(t, err, ErrInvalidInput)

		_, err = testStore.ShareNode(ctx, ShareNodeParams{NodeID: file.ID, OwnerID: grantee.ID, GranteeID: owner.ID, Permission: models.PermissionRead})
		require.ErrorIs(t, err, ErrNotOwner)

		_, err = testStore.ShareNode(ctx, ShareNodeParams{NodeID: file.ID, OwnerID: owner.ID, GranteeID: 987654321, Permission: models.PermissionRead})
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("unshare revokes access", func(t *testing.T) {
		allowed, err := testStore.AuthorizeAccess(ctx, file.ID, grantee.ID)
		require.NoError(t, err)
		require.True(t, allowed)

		require.NoError(t, testStore.UnshareNode(ctx, owner.ID, file.ID, grantee.ID))
		require.ErrorIs(t, testStore.UnshareNode(ctx, owner.ID, file.ID, grantee.ID), ErrNotFound)

		allowed, err = testStore.AuthorizeAccess(ctx, file.ID, grantee.ID)
		require.NoError(t, err)
		require.False(t, allowed)
	})
}

func TestPurgeTrash(t *testing.T) {
	ctx := context.Background()
	owner := createTestUser(t, "purge_owner")

	keep := createTestFile(t, owner.ID, nil, "keep.txt", 1)
	folder := createTestFolder(t, owner.ID, nil, "Junk")
	inner := createTestFile(t, owner.ID, &folder.ID, "inner.txt", 1)
	loose := createTestFile(t, owner.ID, nil, "loose.txt", 1)

	require.NoError(t, testStore.SoftDelete(ctx, owner.ID, folder.ID))
	require.NoError(t, testStore.SoftDelete(ctx, owner.ID, loose.ID))

	keys, err := testStore.PurgeTrash(ctx, owner.ID)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{inner.StorageKey, loose.StorageKey}, keys)

	trashed, err := testStore.ListTrashed(ctx, owner.ID)
	require.NoError(t, err)
	require.Empty(t, trashed)

	_, err = testStore.GetNode(ctx, keep.ID)
	require.NoError(t, err)
	_, err = testStore.GetNode(ctx, inner.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestEventJournal(t *testing.T) {
	ctx := context.Background()
	user := createTestUser(t, "journal_user")

	first, err := testStore.LogEvent(ctx, user.ID, EventShareReceived, map[string]string{"node_id": "abc"})
	require.NoError(t, err)
	_, err = testStore.LogEvent(ctx, user.ID, EventShareRevoked, map[string]string{"node_id": "abc"})
	require.NoError(t, err)

	events, err := testStore.GetEventsSince(ctx, user.ID, 0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, EventShareReceived, events[0].EventType)
	require.JSONEq(t, `{"node_id":"abc"}`, string(events[0].Payload))

	events, err = testStore.GetEventsSince(ctx, user.ID, first.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, EventShareRevoked, events[0].EventType)
}

func TestCreateNodeRejectsDuplicateStorageKey(t *testing.T) {
	ctx := context.Background()
	owner := createTestUser(t, "dup_key_owner")
	file := createTestFile(t, owner.ID, nil, "original.bin", 2)

	_, err := testStore.CreateNode(ctx, CreateNodeParams{
		OwnerID:     owner.ID,
		Name:        "copy.bin",
		ContentType: "application/octet-stream",
		SizeBytes:   2,
		StorageKey:  file.StorageKey,
	})
	require.ErrorIs(t, err, ErrInvalidInput)

	var count int
	err = testStore.pool.QueryRow(ctx, `SELECT count(*) FROM nodes WHERE storage_key = $1`, file.StorageKey).Scan(&count)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	createTestFolder(t, owner.ID, nil, "empty-key-a")
	createTestFolder(t, owner.ID, nil, "empty-key-b")
}

func TestListStarredMostRecentlyUpdatedFirst(t *testing.T) {
	ctx := context.Background()
	owner := createTestUser(t, "starred_order_owner")
	first := createTestFile(t, owner.ID, nil, "first.txt", 1)
	second := createTestFile(t, owner.ID, nil, "second.txt", 1)
	third := createTestFile(t, owner.ID, nil, "third.txt", 1)

	for _, n := range []*models.Node{first, second, third} {
		_, err := testStore.ToggleStar(ctx, owner.ID, n.ID, true)
		require.NoError(t, err)
		time.Sleep(10 * time.Millisecond)
	}

	starred, err := testStore.ListStarred(ctx, owner.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"third.txt", "second.txt", "first.txt"}, nodeNames(starred))

	_, err = testStore.ToggleStar(ctx, owner.ID, first.ID, true)
	require.NoError(t, err)

	starred, err = testStore.ListStarred(ctx, owner.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"first.txt", "third.txt", "second.txt"}, nodeNames(starred))
}

func TestListTrashedMostRecentlyDeletedFirst(t *testing.T) {
	ctx := context.Background()
	owner := createTestUser(t, "trash_order_owner")
	older := createTestFile(t, owner.ID, nil, "older.txt", 1)
	newer := createTestFile(t, owner.ID, nil, "newer.txt", 1)

	require.NoError(t, testStore.SoftDelete(ctx, owner.ID, newer.ID))
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, testStore.SoftDelete(ctx, owner.ID, older.ID))

	trashed, err := testStore.ListTrashed(ctx, owner.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"older.txt", "newer.txt"}, nodeNames(trashed))
}

func TestListSharedNewestGrantFirst(t *testing.T) {
	ctx := context.Background()
	owner := createTestUser(t, "shared_order_owner")
	grantee := createTestUser(t, "shared_order_grantee")
	first := createTestFile(t, owner.ID, nil, "first.txt", 1)
	second := createTestFile(t, owner.ID, nil, "second.txt", 1)

	share := func(n *models.Node, permission string) {
		_, err := testStore.ShareNode(ctx, ShareNodeParams{NodeID: n.ID, OwnerID: owner.ID, GranteeID: grantee.ID, Permission: permission})
		require.NoError(t, err)
	}
	sharedNames := func(nodes []models.SharedNode) []string {
		names := make([]string, 0, len(nodes))
		for _, n := range nodes {
			names = append(names, n.Node.Name)
		}
		return names
	}

	share(first, models.PermissionRead)
	time.Sleep(10 * time.Millisecond)
	share(second, models.PermissionRead)

	withMe, err := testStore.ListSharedWithMe(ctx, grantee.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"second.txt", "first.txt"}, sharedNames(withMe))

	byMe, err := testStore.ListSharedByMe(ctx, owner.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"second.txt", "first.txt"}, sharedNames(byMe))

	// Changing the permission keeps the original grant time.
	time.Sleep(10 * time.Millisecond)
	share(first, models.PermissionWrite)

	withMe, err = testStore.ListSharedWithMe(ctx, grantee.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"second.txt", "first.txt"}, sharedNames(withMe))
	require.Equal(t, models.PermissionWrite, withMe[1].Permission)

	byMe, err = testStore.ListSharedByMe(ctx, owner.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"second.txt", "first.txt"}, sharedNames(byMe))
}

func TestSoftDeleteCoversChildCreatedConcurrently(t *testing.T) {
	ctx := context.Background()
	owner := createTestUser(t, "concurrent_trash_owner")
	folder := createTestFolder(t, owner.ID, nil, "Projects")
	sub := createTestFolder(t, owner.ID, &folder.ID, "2025")

	tx, err := testStore.pool.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	q := New(tx)
	require.NoError(t, q.checkParent(ctx, owner.ID, sub.ID))
	id, err := q.generateUniqueID(ctx)
	require.NoError(t, err)
	child, err := q.insertNode(ctx, id, CreateNodeParams{OwnerID: owner.ID, ParentID: &sub.ID, Name: "late", IsFolder: true})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		done <- testStore.SoftDelete(ctx, owner.ID, folder.ID)
	}()

	select {
	case err := <-done:
		t.Fatalf("soft delete finished while the parent was locked: %v", err)
	case <-time.After(200 * time.Millisecond):
	}

	require.NoError(t, tx.Commit(ctx))
	require.NoError(t, <-done)

	trashedFolder, err := testStore.GetNode(ctx, folder.ID)
	require.NoError(t, err)
	trashedChild, err := testStore.GetNode(ctx, child.ID)
	require.NoError(t, err)
	require.True(t, trashedChild.IsDeleted)
	require.True(t, trashedChild.DeletedAt.Equal(*trashedFolder.DeletedAt))

	_, err = testStore.CreateNode(ctx, CreateNodeParams{OwnerID: owner.ID, ParentID: &sub.ID, Name: "too-late", IsFolder: true})
	require.ErrorIs(t, err, ErrInvalidParent)
}
