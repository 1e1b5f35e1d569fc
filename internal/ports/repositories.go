package ports

import (
	"context"
	"time"

	"github.com/taskmaster/todo/internal/domain/entities"
)

// UserRepository persists accounts. Create must report a taken username as
// entities.ErrDuplicateUser; lookups report a missing user as entities.ErrNotFound.
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id entities.ID) (*entities.User, error)
	GetByUsername(ctx context.Context, username string) (*entities.User, error)
}

// TaskRepository persists tasks. Every method is scoped to the owning user;
// a task owned by someone else is indistinguishable from a missing one.
type TaskRepository interface {
	Create(ctx context.Context, task *entities.Task) error
	GetByID(ctx context.Context, userID, id entities.ID) (*entities.Task, error)
	List(ctx context.Context, userID entities.ID, filter entities.TaskFilter) ([]*entities.Task, error)
	Update(ctx context.Context, userID, id entities.ID, patch entities.TaskPatch) error
	Delete(ctx context.Context, userID, id entities.ID) error
	Stats(ctx context.Context, userID entities.ID, now time.Time) (*entities.TaskStats, error)
}

// CategoryRepository persists user categories
type CategoryRepository interface {
	Create(ctx context.Context, category *entities.Category) error
	List(ctx context.Context, userID entities.ID) ([]*entities.Category, error)
}

// HealthChecker is implemented by store backends that hold a connection.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Repositories bundles the stores a server needs.
type Repositories struct {
	Users      UserRepository
	Tasks      TaskRepository
	Categories CategoryRepository
	Health     HealthChecker
}
