package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskmaster/todo/internal/adapters/repository/memory"
	"github.com/taskmaster/todo/internal/domain/entities"
	"github.com/taskmaster/todo/internal/infrastructure/logger"
	"github.com/taskmaster/todo/internal/ports"
)

func TestCategoryService(t *testing.T) {
	ctx := context.Background()
	svc := NewCategoryService(memory.NewStore().Repositories().Categories, logger.NewNop())

	created, err := svc.CreateCategory(ctx, "alice", ports.CreateCategoryRequest{Name: "Work"})
	require.NoError(t, err)
	assert.Equal(t, entities.DefaultCategoryColor, created.Color)
	assert.NotEmpty(t, created.ID)

	_, err = svc.CreateCategory(ctx, "alice", ports.CreateCategoryRequest{Name: "Home", Color: strPtr("#10b981")})
	require.NoError(t, err)

	_, err = svc.CreateCategory(ctx, "alice", ports.CreateCategoryRequest{Name: " "})
	assert.True(t, errors.Is(err, entities.ErrValidation))

	_, err = svc.CreateCategory(ctx, "alice", ports.CreateCategoryRequest{Name: "Bad", Color: strPtr("red")})
	assert.True(t, errors.Is(err, entities.ErrValidation))

	categories, err := svc.ListCategories(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "#10b981", categories[0].Color)

	others, err := svc.ListCategories(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, others)
}

func TestCategoryServiceColor(t *testing.T) {
	ctx := context.Background()
	svc := NewCategoryService(memory.NewStore().Repositories().Categories, logger.NewNop())

	short, err := svc.CreateCategory(ctx, "alice", ports.CreateCategoryRequest{Name: "Short", Color: strPtr("#abc")})
	require.NoError(t, err)
	assert.Equal(t, "#abc", short.Color)

	empty, err := svc.CreateCategory(ctx, "alice", ports.CreateCategoryRequest{Name: "Empty", Color: strPtr("")})
	require.NoError(t, err)
	assert.Equal(t, entities.DefaultCategoryColor, empty.Color)

	for _, color := range []string{"#12", "10b981", "#gggggg", "#1234567"} {
		_, err := svc.CreateCategory(ctx, "alice", ports.CreateCategoryRequest{Name: "Bad", Color: strPtr(color)})
		assert.Truef(t, errors.Is(err, entities.ErrValidation), "color %q", color)
	}
}
