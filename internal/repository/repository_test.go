package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Tomlord1122/tasklists-backend/internal/database"
	"github.com/Tomlord1122/tasklists-backend/internal/domain"
)

// setupTestDB opens a migrated in-memory database that is closed with the test.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	svc, err := database.NewInMemory(nil)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = svc.Close() })
	return svc.GetDB()
}

func listOrder(t *testing.T, entries ...map[string]any) domain.OrderBatch {
	t.Helper()
	raw, err := json.Marshal(entries)
	require.NoError(t, err)
	batch, err := domain.ParseListOrder(raw)
	require.NoError(t, err)
	return batch
}

func taskOrder(t *testing.T, entries ...map[string]any) domain.OrderBatch {
	t.Helper()
	raw, err := json.Marshal(entries)
	require.NoError(t, err)
	batch, err := domain.ParseTaskOrder(raw)
	require.NoError(t, err)
	return batch
}

func TestListRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Create assigns id and title key", func(t *testing.T) {
		repo := NewGormListRepository(setupTestDB(t))
		list := &domain.List{OwnerID: uuid.New(), Title: "Work"}

		require.NoError(t, repo.Create(ctx, list))
		assert.NotEqual(t, uuid.Nil, list.ID)
		assert.Equal(t, domain.NormalizeTitle("Work"), list.TitleKey)
		assert.False(t, list.CreatedAt.IsZero())
	})

	t.Run("FindByKey hides other owners", func(t *testing.T) {
		repo := NewGormListRepository(setupTestDB(t))
		owner := uuid.New()
		list := &domain.List{OwnerID: owner, Title: "Work"}
		require.NoError(t, repo.Create(ctx, list))

		got, err := repo.FindByKey(ctx, domain.Key{OwnerID: owner, ID: list.ID})
		require.NoError(t, err)
		assert.Equal(t, "Work", got.Title)

		_, err = repo.FindByKey(ctx, domain.Key{OwnerID: uuid.New(), ID: list.ID})
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})

	t.Run("FindAll orders by position and scopes by owner", func(t *testing.T) {
		repo := NewGormListRepository(setupTestDB(t))
		owner := uuid.New()
		for i, title := range []string{"c", "a", "b"} {
			require.NoError(t, repo.Create(ctx, &domain.List{OwnerID: owner, Title: title, Position: []int{2, 0, 1}[i]}))
		}
		require.NoError(t, repo.Create(ctx, &domain.List{OwnerID: uuid.New(), Title: "other"}))

		lists, err := repo.FindAll(ctx, owner)
		require.NoError(t, err)
		require.Len(t, lists, 3)
		assert.Equal(t, []string{"a", "b", "c"}, []string{lists[0].Title, lists[1].Title, lists[2].Title})

		n, err := repo.Count(ctx, domain.ListScope(owner))
		require.NoError(t, err)
		assert.EqualValues(t, 3, n)
	})

	t.Run("FindAll breaks position ties by creation order", func(t *testing.T) {
		repo := NewGormListRepository(setupTestDB(t))
		owner := uuid.New()
		first := &domain.List{OwnerID: owner, Title: "first", Position: 0}
		second := &domain.List{OwnerID: owner, Title: "second", Position: 0}
		require.NoError(t, repo.Create(ctx, first))
		require.NoError(t, repo.Create(ctx, second))

		lists, err := repo.FindAll(ctx, owner)
		require.NoError(t, err)
		require.Len(t, lists, 2)
		assert.Equal(t, first.ID, lists[0].ID)
	})

	t.Run("UpdateTitle", func(t *testing.T) {
		repo := NewGormListRepository(setupTestDB(t))
		owner := uuid.New()
		list := &domain.List{OwnerID: owner, Title: "Work", Position: 4}
		require.NoError(t, repo.Create(ctx, list))

		updated, err := repo.UpdateTitle(ctx, domain.Key{OwnerID: owner, ID: list.ID}, "Office")
		require.NoError(t, err)
		assert.Equal(t, list.ID, updated.ID)
		assert.Equal(t, "Office", updated.Title)
		assert.Equal(t, 4, updated.Position)

		_, err = repo.UpdateTitle(ctx, domain.Key{OwnerID: uuid.New(), ID: list.ID}, "Stolen")
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

		got, err := repo.FindByKey(ctx, domain.Key{OwnerID: owner, ID: list.ID})
		require.NoError(t, err)
		assert.Equal(t, "Office", got.Title)
	})

	t.Run("UpdateTitle collision", func(t *testing.T) {
		repo := NewGormListRepository(setupTestDB(t))
		owner := uuid.New()
		require.NoError(t, repo.Create(ctx, &domain.List{OwnerID: owner, Title: "Home"}))
		work := &domain.List{OwnerID: owner, Title: "Work"}
		require.NoError(t, repo.Create(ctx, work))

		_, err := repo.UpdateTitle(ctx, domain.Key{OwnerID: owner, ID: work.ID}, "home")
		assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
	})

	t.Run("Delete returns the removed list", func(t *testing.T) {
		repo := NewGormListRepository(setupTestDB(t))
		owner := uuid.New()
		list := &domain.List{OwnerID: owner, Title: "Work"}
		require.NoError(t, repo.Create(ctx, list))

		_, err := repo.Delete(ctx, domain.Key{OwnerID: uuid.New(), ID: list.ID})
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

		deleted, err := repo.Delete(ctx, domain.Key{OwnerID: owner, ID: list.ID})
		require.NoError(t, err)
		assert.Equal(t, list.ID, deleted.ID)
		assert.Equal(t, "Work", deleted.Title)

		_, err = repo.Delete(ctx, domain.Key{OwnerID: owner, ID: list.ID})
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})

	t.Run("ApplyOrder skips foreign ids", func(t *testing.T) {
		repo := NewGormListRepository(setupTestDB(t))
		owner, intruder := uuid.New(), uuid.New()
		mine := &domain.List{OwnerID: owner, Title: "mine", Position: 0}
		theirs := &domain.List{OwnerID: intruder, Title: "theirs", Position: 0}
		require.NoError(t, repo.Create(ctx, mine))
		require.NoError(t, repo.Create(ctx, theirs))

		batch := listOrder(t,
			map[string]any{"_id": mine.ID.String(), "position": 5},
			map[string]any{"_id": theirs.ID.String(), "position": 9},
			map[string]any{"_id": uuid.NewString(), "position": 1},
		)
		require.NoError(t, repo.ApplyOrder(ctx, owner, batch))

		got, err := repo.FindByKey(ctx, domain.Key{OwnerID: owner, ID: mine.ID})
		require.NoError(t, err)
		assert.Equal(t, 5, got.Position)

		untouched, err := repo.FindByKey(ctx, domain.Key{OwnerID: intruder, ID: theirs.ID})
		require.NoError(t, err)
		assert.Equal(t, 0, untouched.Position)
	})

	t.Run("ApplyOrder honours cancellation", func(t *testing.T) {
		repo := NewGormListRepository(setupTestDB(t))
		owner := uuid.New()
		list := &domain.List{OwnerID: owner, Title: "Work"}
		require.NoError(t, repo.Create(ctx, list))

		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		err := repo.ApplyOrder(cancelled, owner, listOrder(t, map[string]any{"_id": list.ID.String(), "position": 3}))
		assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
	})
}

func TestTaskRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("FindAll groups by list", func(t *testing.T) {
		repo := NewGormTaskRepository(setupTestDB(t))
		owner := uuid.New()
		lists := []uuid.UUID{uuid.New(), uuid.New()}
		for i := 0; i < 6; i++ {
			task := &domain.Task{OwnerID: owner, ListID: lists[i%2], Title: fmt.Sprintf("task %d", i), Position: 5 - i}
			require.NoError(t, repo.Create(ctx, task))
		}

		tasks, err := repo.FindAll(ctx, owner)
		require.NoError(t, err)
		require.Len(t, tasks, 6)
		for i := 1; i < len(tasks); i++ {
			prev, cur := tasks[i-1], tasks[i]
			if prev.ListID == cur.ListID {
				assert.LessOrEqual(t, prev.Position, cur.Position)
			} else {
				assert.Less(t, prev.ListID.String(), cur.ListID.String())
			}
		}

		inList, err := repo.FindInScope(ctx, domain.TaskScope(owner, lists[0]))
		require.NoError(t, err)
		assert.Len(t, inList, 3)

		n, err := repo.Count(ctx, domain.TaskScope(owner, lists[1]))
		require.NoError(t, err)
		assert.EqualValues(t, 3, n)
	})

	t.Run("Update applies only given fields", func(t *testing.T) {
		repo := NewGormTaskRepository(setupTestDB(t))
		owner := uuid.New()
		task := &domain.Task{OwnerID: owner, ListID: uuid.New(), Title: "Buy milk", Description: "2L"}
		require.NoError(t, repo.Create(ctx, task))
		key := domain.Key{OwnerID: owner, ID: task.ID}

		desc := "semi-skimmed"
		updated, err := repo.Update(ctx, key, TaskChanges{Description: &desc})
		require.NoError(t, err)
		assert.Equal(t, "Buy milk", updated.Title)
		assert.Equal(t, "semi-skimmed", updated.Description)

		unchanged, err := repo.Update(ctx, key, TaskChanges{})
		require.NoError(t, err)
		assert.Equal(t, "semi-skimmed", unchanged.Description)

		_, err = repo.Update(ctx, domain.Key{OwnerID: uuid.New(), ID: task.ID}, TaskChanges{Description: &desc})
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})

	t.Run("DeleteInScope only touches one list of one owner", func(t *testing.T) {
		repo := NewGormTaskRepository(setupTestDB(t))
		owner, other := uuid.New(), uuid.New()
		doomed, kept := uuid.New(), uuid.New()
		require.NoError(t, repo.Create(ctx, &domain.Task{OwnerID: owner, ListID: doomed, Title: "a"}))
		require.NoError(t, repo.Create(ctx, &domain.Task{OwnerID: owner, ListID: doomed, Title: "b"}))
		require.NoError(t, repo.Create(ctx, &domain.Task{OwnerID: owner, ListID: kept, Title: "c"}))
		require.NoError(t, repo.Create(ctx, &domain.Task{OwnerID: other, ListID: doomed, Title: "d"}))

		n, err := repo.DeleteInScope(ctx, domain.TaskScope(owner, doomed))
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)

		left, err := repo.FindAll(ctx, owner)
		require.NoError(t, err)
		require.Len(t, left, 1)
		assert.Equal(t, kept, left[0].ListID)

		theirs, err := repo.FindAll(ctx, other)
		require.NoError(t, err)
		assert.Len(t, theirs, 1)

		_, err = repo.DeleteInScope(ctx, domain.ListScope(owner))
		assert.Error(t, err)
	})

	t.Run("ApplyOrder moves tasks between lists", func(t *testing.T) {
		repo := NewGormTaskRepository(setupTestDB(t))
		owner := uuid.New()
		from, to := uuid.New(), uuid.New()
		task := &domain.Task{OwnerID: owner, ListID: from, Title: "t1", Position: 2}
		require.NoError(t, repo.Create(ctx, task))

		batch := taskOrder(t, map[string]any{"_id": task.ID.String(), "listID": to.String(), "position": 0})
		require.NoError(t, repo.ApplyOrder(ctx, owner, batch))

		got, err := repo.FindByKey(ctx, domain.Key{OwnerID: owner, ID: task.ID})
		require.NoError(t, err)
		assert.Equal(t, to, got.ListID)
		assert.Equal(t, 0, got.Position)
	})
}
