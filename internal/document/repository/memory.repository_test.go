package repository

import (
	"context"
	"errors"
	"testing"

	"jotion/internal/document/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func insert(t *testing.T, repo Repository, id, owner string, parent *string) {
	t.Helper()
	require.NoError(t, repo.Insert(context.Background(), &model.Document{ID: id, Title: id, OwnerID: owner, ParentID: parent}))
}

func TestMemoryListsNewestFirst(t *testing.T) {
	repo := NewMemoryRepository()
	root := "root"
	insert(t, repo, root, "user1", nil)
	insert(t, repo, "a", "user1", &root)
	insert(t, repo, "b", "user1", &root)
	insert(t, repo, "other", "user2", &root)

	children, err := repo.ListByOwnerAndParent(context.Background(), "user1", &root)
	require.NoError(t, err)
	require.Len(t, children, 2)
	assert.Equal(t, "b", children[0].ID)
	assert.Equal(t, "a", children[1].ID)

	top, err := repo.ListByOwnerAndParent(context.Background(), "user1", nil)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, root, top[0].ID)
}

func TestMemoryGetReturnsCopy(t *testing.T) {
	repo := NewMemoryRepository()
	insert(t, repo, "a", "user1", nil)

	doc, err := repo.Get(context.Background(), "a")
	require.NoError(t, err)
	doc.Title = "changed"

	again, err := repo.Get(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "a", again.Title)
}

func TestMemoryRejectsDuplicateID(t *testing.T) {
	repo := NewMemoryRepository()
	insert(t, repo, "a", "user1", nil)
	err := repo.Insert(context.Background(), &model.Document{ID: "a", OwnerID: "user1"})
	assert.Error(t, err)
}

func TestMemorySetArchivedSkipsOtherOwners(t *testing.T) {
	repo := NewMemoryRepository()
	insert(t, repo, "mine", "user1", nil)
	insert(t, repo, "theirs", "user2", nil)

	n, err := repo.SetArchived(context.Background(), "user1", []string{"mine", "theirs", "missing"}, true)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	theirs, err := repo.Get(context.Background(), "theirs")
	require.NoError(t, err)
	assert.False(t, theirs.IsArchived)
}

func TestMemoryPatchMissing(t *testing.T) {
	repo := NewMemoryRepository()
	_, err := repo.Patch(context.Background(), "missing", model.DocumentPatch{ClearIcon: true})
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestMemoryInTxRollsBack(t *testing.T) {
	repo := NewMemoryRepository()
	insert(t, repo, "a", "user1", nil)
	boom := errors.New("boom")

	err := repo.InTx(context.Background(), func(tx Repository) error {
		archived := true
		if _, err := tx.Patch(context.Background(), "a", model.DocumentPatch{IsArchived: &archived}); err != nil {
			return err
		}
		insert(t, tx, "b", "user1", nil)
		return boom
	})
	require.ErrorIs(t, err, boom)

	doc, err := repo.Get(context.Background(), "a")
	require.NoError(t, err)
	assert.False(t, doc.IsArchived)

	_, err = repo.Get(context.Background(), "b")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestMemoryInTxCommits(t *testing.T) {
	repo := NewMemoryRepository()

	err := repo.InTx(context.Background(), func(tx Repository) error {
		insert(t, tx, "a", "user1", nil)
		return tx.InTx(context.Background(), func(inner Repository) error {
			insert(t, inner, "b", "user1", nil)
			return nil
		})
	})
	require.NoError(t, err)

	docs, err := repo.ListByOwner(context.Background(), "user1")
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}
