package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskmaster/todo/internal/domain/entities"
)

const (
	aliceID = "5f0c4a1e-8a6b-4f0e-9a57-2b8f2f4a9c10"
	bobID   = "9b1d7c2e-3f4a-4b5c-8d6e-7f8091a2b3c4"
	taskID  = "c3a1e2f4-5b6c-4d7e-8f90-a1b2c3d4e5f6"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Create", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewUserRepository(db)

		mock.ExpectExec(`INSERT INTO users`).
			WithArgs(sqlmock.AnyArg(), "alice", "hash", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		user := &entities.User{Username: "alice", PasswordHash: "hash", CreatedAt: time.Now()}
		require.NoError(t, repo.Create(ctx, user))
		assert.NotEmpty(t, user.ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("CreateDuplicate", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewUserRepository(db)

		mock.ExpectExec(`INSERT INTO users`).
			WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

		err := repo.Create(ctx, &entities.User{Username: "alice", PasswordHash: "hash"})
		assert.True(t, errors.Is(err, entities.ErrDuplicateUser))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("GetByUsernameMissing", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewUserRepository(db)

		mock.ExpectQuery(`SELECT id, username, password_hash, created_at FROM users WHERE username = \$1`).
			WithArgs("ghost").
			WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "created_at"}))

		_, err := repo.GetByUsername(ctx, "ghost")
		assert.True(t, errors.Is(err, entities.ErrNotFound))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("GetByIDMalformed", func(t *testing.T) {
		db, _ := newMock(t)
		repo := NewUserRepository(db)

		_, err := repo.GetByID(ctx, "42")
		assert.True(t, errors.Is(err, entities.ErrValidation))
	})
}

func TestTaskRepositoryList(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	columns := []string{"id", "user_id", "title", "description", "category", "priority", "due_date", "completed", "created_at", "updated_at"}

	t.Run("OwnerOnly", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewTaskRepository(db)

		mock.ExpectQuery(`SELECT .* FROM tasks WHERE user_id = \$1 ORDER BY created_at DESC`).
			WithArgs(aliceID).
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow(taskID, aliceID, "Buy milk", "", "general", "medium", nil, false, now, now))

		tasks, err := repo.List(ctx, aliceID, entities.TaskFilter{})
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, entities.ID(taskID), tasks[0].ID)
		assert.Equal(t, entities.PriorityMedium, tasks[0].Priority)
		assert.Nil(t, tasks[0].DueDate)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("AllFilters", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewTaskRepository(db)

		mock.ExpectQuery(`SELECT .* FROM tasks WHERE user_id = \$1 AND category = \$2 AND completed = \$3 AND title ILIKE \$4 ORDER BY created_at DESC`).
			WithArgs(aliceID, "work", true, `%50\%%`).
			WillReturnRows(sqlmock.NewRows(columns))

		tasks, err := repo.List(ctx, aliceID, entities.TaskFilter{
			Category: "work",
			Status:   entities.TaskStatusCompleted,
			Search:   "50%",
		})
		require.NoError(t, err)
		assert.NotNil(t, tasks)
		assert.Empty(t, tasks)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTaskRepositoryUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("EmptyPatchTouchesUpdatedAt", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewTaskRepository(db)

		mock.ExpectExec(`UPDATE tasks SET updated_at = \$1 WHERE id = \$2 AND user_id = \$3`).
			WithArgs(sqlmock.AnyArg(), taskID, aliceID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Update(ctx, aliceID, taskID, entities.TaskPatch{UpdatedAt: time.Now()}))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("OtherOwner", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewTaskRepository(db)

		done := true
		mock.ExpectExec(`UPDATE tasks SET updated_at = \$1, completed = \$2 WHERE id = \$3 AND user_id = \$4`).
			WithArgs(sqlmock.AnyArg(), true, taskID, bobID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Update(ctx, bobID, taskID, entities.TaskPatch{Completed: &done, UpdatedAt: time.Now()})
		assert.True(t, errors.Is(err, entities.ErrNotFound))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("MalformedID", func(t *testing.T) {
		db, _ := newMock(t)
		repo := NewTaskRepository(db)

		err := repo.Update(ctx, aliceID, "64b7f0c2e1d3a4b5c6d7e8f9", entities.TaskPatch{})
		assert.True(t, errors.Is(err, entities.ErrValidation))
	})
}

func TestTaskRepositoryDelete(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTaskRepository(db)

	mock.ExpectExec(`DELETE FROM tasks WHERE id = \$1 AND user_id = \$2`).
		WithArgs(taskID, bobID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), bobID, taskID)
	assert.True(t, errors.Is(err, entities.ErrNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepositoryStats(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTaskRepository(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) AS total, .* FROM tasks WHERE user_id = \$2`).
		WithArgs(sqlmock.AnyArg(), aliceID).
		WillReturnRows(sqlmock.NewRows([]string{"total", "completed", "overdue"}).AddRow(5, 2, 1))

	mock.ExpectQuery(`SELECT category, COUNT\(\*\) AS count FROM tasks WHERE user_id = \$1 GROUP BY category ORDER BY category`).
		WithArgs(aliceID).
		WillReturnRows(sqlmock.NewRows([]string{"category", "count"}).
			AddRow("general", 3).
			AddRow("work", 2))

	stats, err := repo.Stats(context.Background(), aliceID, time.Now())
	require.NoError(t, err)

	assert.Equal(t, int64(5), stats.Total)
	assert.Equal(t, int64(2), stats.Completed)
	assert.Equal(t, int64(3), stats.Pending)
	assert.Equal(t, int64(1), stats.Overdue)
	assert.Equal(t, stats.Total, stats.Completed+stats.Pending)
	assert.Equal(t, []entities.CategoryCount{{Category: "general", Count: 3}, {Category: "work", Count: 2}}, stats.ByCategory)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryRepository(t *testing.T) {
	ctx := context.Background()
	db, mock := newMock(t)
	repo := NewCategoryRepository(db)

	mock.ExpectExec(`INSERT INTO categories`).
		WithArgs(sqlmock.AnyArg(), aliceID, "Work", "#ff0000", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	category := &entities.Category{UserID: aliceID, Name: "Work", Color: "#ff0000", CreatedAt: time.Now()}
	require.NoError(t, repo.Create(ctx, category))
	assert.NotEmpty(t, category.ID)

	mock.ExpectQuery(`SELECT id, user_id, name, color, created_at FROM categories WHERE user_id = \$1 ORDER BY name`).
		WithArgs(aliceID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "color", "created_at"}).
			AddRow(string(category.ID), aliceID, "Work", "#ff0000", time.Now()))

	categories, err := repo.List(ctx, aliceID)
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, "Work", categories[0].Name)
	require.NoError(t, mock.ExpectationsWereMet())
}
