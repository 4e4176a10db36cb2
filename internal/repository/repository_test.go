package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"tasky/internal/db"
	"tasky/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gormDB, err := db.OpenInMemory()
	require.NoError(t, err)
	return gormDB
}

func strPtr(s string) *string { return &s }

func TestUserRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t))

	user := &model.User{Name: "Ada", Email: "ada@example.com", ProfilePicture: strPtr("https://img/ada.png")}
	require.NoError(t, repo.Create(ctx, user))
	assert.NotZero(t, user.ID)

	byEmail, err := repo.FindByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
	assert.Equal(t, "https://img/ada.png", *byEmail.ProfilePicture)

	_, err = repo.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = repo.FindByID(ctx, user.ID+100)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository_EmailIsUnique(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t))

	require.NoError(t, repo.Create(ctx, &model.User{Email: "dup@example.com"}))
	assert.Error(t, repo.Create(ctx, &model.User{Email: "dup@example.com"}))

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestUserRepository_Update(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t))

	user := &model.User{Name: "Old", Email: "u@example.com"}
	require.NoError(t, repo.Create(ctx, user))

	user.Name = "New"
	user.ProfilePicture = strPtr("https://img/new.png")
	require.NoError(t, repo.Update(ctx, user))

	got, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "New", got.Name)
	assert.Equal(t, "https://img/new.png", *got.ProfilePicture)
}

func TestUserRepository_DeleteRemovesTasks(t *testing.T) {
	ctx := context.Background()
	gormDB := newTestDB(t)
	users := NewUserRepository(gormDB)
	tasks := NewTaskRepository(gormDB)

	user := &model.User{Email: "gone@example.com"}
	require.NoError(t, users.Create(ctx, user))
	require.NoError(t, tasks.Create(ctx, &model.Task{Name: "a", Status: model.TaskStatusPending, UserID: user.ID}))

	withTasks, err := users.FindByIDWithTasks(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, withTasks.Tasks, 1)

	require.NoError(t, users.Delete(ctx, user.ID))

	remaining, err := tasks.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	assert.ErrorIs(t, users.Delete(ctx, user.ID), gorm.ErrRecordNotFound)
}

func TestTaskRepository_ListByUserOrdering(t *testing.T) {
	ctx := context.Background()
	gormDB := newTestDB(t)
	users := NewUserRepository(gormDB)
	repo := NewTaskRepository(gormDB)

	owner := &model.User{Email: "owner@example.com"}
	other := &model.User{Email: "other@example.com"}
	require.NoError(t, users.Create(ctx, owner))
	require.NoError(t, users.Create(ctx, other))

	late := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)
	early := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Create(ctx, &model.Task{Name: "undated", Status: model.TaskStatusPending, UserID: owner.ID}))
	require.NoError(t, repo.Create(ctx, &model.Task{Name: "late", Status: model.TaskStatusPending, EventDate: &late, UserID: owner.ID}))
	require.NoError(t, repo.Create(ctx, &model.Task{Name: "early", Status: model.TaskStatusCompleted, EventDate: &early, UserID: owner.ID}))
	require.NoError(t, repo.Create(ctx, &model.Task{Name: "not mine", Status: model.TaskStatusPending, UserID: other.ID}))

	list, err := repo.ListByUser(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"early", "late", "undated"}, []string{list[0].Name, list[1].Name, list[2].Name})
}

func TestTaskRepository_UpdateFieldsLeavesOthersUnchanged(t *testing.T) {
	ctx := context.Background()
	gormDB := newTestDB(t)
	users := NewUserRepository(gormDB)
	repo := NewTaskRepository(gormDB)

	owner := &model.User{Email: "owner@example.com"}
	require.NoError(t, users.Create(ctx, owner))
	task := &model.Task{Name: "draft", Status: model.TaskStatusPending, UserID: owner.ID}
	require.NoError(t, repo.Create(ctx, task))

	require.NoError(t, repo.UpdateFields(ctx, task.ID, map[string]interface{}{"status": model.TaskStatusInProgress}))

	got, err := repo.FindByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "draft", got.Name)
	assert.Equal(t, model.TaskStatusInProgress, got.Status)

	require.NoError(t, repo.UpdateFields(ctx, task.ID, nil))
}

func TestTaskRepository_DeleteScopedToOwner(t *testing.T) {
	ctx := context.Background()
	gormDB := newTestDB(t)
	users := NewUserRepository(gormDB)
	repo := NewTaskRepository(gormDB)

	owner := &model.User{Email: "owner@example.com"}
	intruder := &model.User{Email: "intruder@example.com"}
	require.NoError(t, users.Create(ctx, owner))
	require.NoError(t, users.Create(ctx, intruder))
	task := &model.Task{Name: "keep", Status: model.TaskStatusPending, UserID: owner.ID}
	require.NoError(t, repo.Create(ctx, task))

	assert.ErrorIs(t, repo.Delete(ctx, task.ID, intruder.ID), gorm.ErrRecordNotFound)
	_, err := repo.FindByID(ctx, task.ID)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, task.ID, owner.ID))
	assert.ErrorIs(t, repo.Delete(ctx, task.ID, owner.ID), gorm.ErrRecordNotFound)
}

func TestTaskRepository_ForeignKeyEnforced(t *testing.T) {
	repo := NewTaskRepository(newTestDB(t))
	err := repo.Create(context.Background(), &model.Task{Name: "orphan", Status: model.TaskStatusPending, UserID: 999})
	assert.Error(t, err)
}
