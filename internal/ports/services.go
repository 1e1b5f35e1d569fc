package ports

import (
	"context"

	"github.com/taskmaster/todo/internal/domain/entities"
)

// AuthService handles registration, login and token verification
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	ValidateToken(tokenString string) (*Claims, error)
}

// TaskService handles the owner-scoped task operations
type TaskService interface {
	CreateTask(ctx context.Context, userID entities.ID, req CreateTaskRequest) (*entities.Task, error)
	GetTask(ctx context.Context, userID, id entities.ID) (*entities.Task, error)
	ListTasks(ctx context.Context, userID entities.ID, filter entities.TaskFilter) ([]*entities.Task, error)
	UpdateTask(ctx context.Context, userID, id entities.ID, req UpdateTaskRequest) error
	DeleteTask(ctx context.Context, userID, id entities.ID) error
	GetStats(ctx context.Context, userID entities.ID) (*entities.TaskStats, error)
}

// CategoryService handles user categories
type CategoryService interface {
	CreateCategory(ctx context.Context, userID entities.ID, req CreateCategoryRequest) (*entities.Category, error)
	ListCategories(ctx context.Context, userID entities.ID) ([]*entities.Category, error)
}

// Request/Response Types

// Auth related types
type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=100"`
	Password string `json:"password" validate:"required"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	Username    string `json:"username"`
}

// Claims is the verified identity carried by an access token
type Claims struct {
	UserID   entities.ID
	Username string
}

// Task related types
type CreateTaskRequest struct {
	Title       string             `json:"title" validate:"required,max=500"`
	Description *string            `json:"description"`
	Category    *string            `json:"category" validate:"omitempty,max=100"`
	Priority    *entities.Priority `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate     *string            `json:"due_date"`
}

// UpdateTaskRequest only carries the fields the client sent. An empty
// due_date string clears the due date.
type UpdateTaskRequest struct {
	Title       *string            `json:"title" validate:"omitempty,max=500"`
	Description *string            `json:"description"`
	Category    *string            `json:"category" validate:"omitempty,max=100"`
	Priority    *entities.Priority `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate     *string            `json:"due_date"`
	Completed   *bool              `json:"completed"`
}

// Category related types
type CreateCategoryRequest struct {
	Name  string  `json:"name" validate:"required,max=100"`
	Color *string `json:"color" validate:"omitempty,hexcolor"`
}
