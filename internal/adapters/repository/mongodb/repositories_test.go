package mongodb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/taskmaster/todo/internal/domain/entities"
)

func TestRepositoriesAgainstMockDeployment(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("duplicate username", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error",
		}))

		repo := NewUserRepository(mt.DB)
		err := repo.Create(ctx, &entities.User{Username: "alice", PasswordHash: "x", CreatedAt: time.Now()})
		assert.True(t, errors.Is(err, entities.ErrDuplicateUser))
	})

	mt.Run("create task assigns id", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		repo := NewTaskRepository(mt.DB)
		task := &entities.Task{UserID: "u1", Title: "Buy milk"}
		require.NoError(t, repo.Create(ctx, task))

		_, err := primitive.ObjectIDFromHex(string(task.ID))
		assert.NoError(t, err)
	})

	mt.Run("get task owned by someone else", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "todo_db.tasks", mtest.FirstBatch))

		repo := NewTaskRepository(mt.DB)
		_, err := repo.GetByID(ctx, "u2", hexID(primitive.NewObjectID()))
		assert.True(t, errors.Is(err, entities.ErrNotFound))
	})

	mt.Run("list tasks", func(mt *mtest.T) {
		oid := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "todo_db.tasks", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: oid},
			{Key: "user_id", Value: "u1"},
			{Key: "title", Value: "Buy milk"},
			{Key: "category", Value: "general"},
			{Key: "priority", Value: "medium"},
			{Key: "completed", Value: false},
		}))

		repo := NewTaskRepository(mt.DB)
		tasks, err := repo.List(ctx, "u1", entities.TaskFilter{})
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, hexID(oid), tasks[0].ID)
		assert.Equal(t, "Buy milk", tasks[0].Title)
	})

	mt.Run("update unmatched", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		repo := NewTaskRepository(mt.DB)
		err := repo.Update(ctx, "u2", hexID(primitive.NewObjectID()), entities.TaskPatch{UpdatedAt: time.Now()})
		assert.True(t, errors.Is(err, entities.ErrNotFound))
	})

	mt.Run("delete unmatched", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		repo := NewTaskRepository(mt.DB)
		err := repo.Delete(ctx, "u2", hexID(primitive.NewObjectID()))
		assert.True(t, errors.Is(err, entities.ErrNotFound))
	})

	mt.Run("stats", func(mt *mtest.T) {
		count := func(n int32) bson.D {
			return mtest.CreateCursorResponse(0, "todo_db.tasks", mtest.FirstBatch, bson.D{{Key: "n", Value: n}})
		}
		mt.AddMockResponses(
			count(3),
			count(1),
			count(1),
			mtest.CreateCursorResponse(0, "todo_db.tasks", mtest.FirstBatch,
				bson.D{{Key: "_id", Value: "general"}, {Key: "count", Value: int32(2)}},
				bson.D{{Key: "_id", Value: "home"}, {Key: "count", Value: int32(1)}},
			),
		)

		repo := NewTaskRepository(mt.DB)
		stats, err := repo.Stats(ctx, "u1", time.Now())
		require.NoError(t, err)
		assert.Equal(t, int64(3), stats.Total)
		assert.Equal(t, int64(1), stats.Completed)
		assert.Equal(t, int64(2), stats.Pending)
		assert.Equal(t, int64(1), stats.Overdue)
		assert.Equal(t, []entities.CategoryCount{
			{Category: "general", Count: 2},
			{Category: "home", Count: 1},
		}, stats.ByCategory)
	})

	mt.Run("stats without tasks", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "todo_db.tasks", mtest.FirstBatch),
			mtest.CreateCursorResponse(0, "todo_db.tasks", mtest.FirstBatch),
			mtest.CreateCursorResponse(0, "todo_db.tasks", mtest.FirstBatch),
			mtest.CreateCursorResponse(0, "todo_db.tasks", mtest.FirstBatch),
		)

		repo := NewTaskRepository(mt.DB)
		stats, err := repo.Stats(ctx, "u1", time.Now())
		require.NoError(t, err)
		assert.Zero(t, stats.Total)
		assert.Zero(t, stats.Overdue)
		assert.NotNil(t, stats.ByCategory)
		assert.Empty(t, stats.ByCategory)
	})

	mt.Run("create category assigns id", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		repo := NewCategoryRepository(mt.DB)
		category := &entities.Category{UserID: "u1", Name: "Work", Color: "#3b82f6", CreatedAt: time.Now()}
		require.NoError(t, repo.Create(ctx, category))

		_, err := primitive.ObjectIDFromHex(string(category.ID))
		assert.NoError(t, err)
	})

	mt.Run("list categories", func(mt *mtest.T) {
		home, work := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "todo_db.categories", mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: home},
				{Key: "user_id", Value: "u1"},
				{Key: "name", Value: "Home"},
				{Key: "color", Value: "#10b981"},
			},
			bson.D{
				{Key: "_id", Value: work},
				{Key: "user_id", Value: "u1"},
				{Key: "name", Value: "Work"},
				{Key: "color", Value: "#3b82f6"},
			},
		))

		repo := NewCategoryRepository(mt.DB)
		categories, err := repo.List(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, categories, 2)
		assert.Equal(t, hexID(home), categories[0].ID)
		assert.Equal(t, "Home", categories[0].Name)
		assert.Equal(t, "#10b981", categories[0].Color)
		assert.Equal(t, entities.ID("u1"), categories[1].UserID)
	})

	mt.Run("list categories failure", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Message: "bad query",
		}))

		repo := NewCategoryRepository(mt.DB)
		_, err := repo.List(ctx, "u1")
		assert.Error(t, err)
	})

	mt.Run("malformed id never reaches the server", func(mt *mtest.T) {
		repo := NewTaskRepository(mt.DB)
		err := repo.Delete(ctx, "u1", "zzz")
		assert.True(t, errors.Is(err, entities.ErrValidation))
	})
}
