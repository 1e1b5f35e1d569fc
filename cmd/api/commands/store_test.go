package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskmaster/todo/internal/infrastructure/config"
	"github.com/taskmaster/todo/internal/infrastructure/logger"
)

func TestOpenStoreMemory(t *testing.T) {
	cfg := &config.Config{Store: config.StoreConfig{Driver: config.StoreMemory}}

	repos, closeStore, err := openStore(context.Background(), cfg, logger.NewNop())
	require.NoError(t, err)
	defer closeStore()

	assert.NotNil(t, repos.Users)
	assert.NotNil(t, repos.Tasks)
	assert.NotNil(t, repos.Categories)
	assert.NoError(t, repos.Health.HealthCheck(context.Background()))
}

func TestOpenStoreUnknownDriver(t *testing.T) {
	cfg := &config.Config{Store: config.StoreConfig{Driver: "cassandra"}}

	_, _, err := openStore(context.Background(), cfg, logger.NewNop())
	assert.Error(t, err)
}
