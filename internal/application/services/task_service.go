package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/taskmaster/todo/internal/domain/entities"
	"github.com/taskmaster/todo/internal/infrastructure/logger"
	"github.com/taskmaster/todo/internal/ports"
)

// TaskService handles task-related operations. Every call is scoped to the
// user id taken from the verified token.
type TaskService struct {
	taskRepo ports.TaskRepository
	logger   *logger.Logger
	now      func() time.Time
}

// NewTaskService creates a new task service
func NewTaskService(taskRepo ports.TaskRepository, logger *logger.Logger) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
		logger:   logger.WithComponent("tasks"),
		now:      time.Now,
	}
}

// CreateTask creates a new task with defaults for the omitted fields
func (s *TaskService) CreateTask(ctx context.Context, userID entities.ID, req ports.CreateTaskRequest) (*entities.Task, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", entities.ErrValidation)
	}

	now := s.now().UTC()
	task := &entities.Task{
		UserID:      userID,
		Title:       title,
		Description: "",
		Category:    entities.DefaultCategory,
		Priority:    entities.DefaultPriority,
		Completed:   false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Category != nil {
		task.Category = categoryOrDefault(*req.Category)
	}
	if req.Priority != nil && *req.Priority != "" {
		priority, err := parsePriority(*req.Priority)
		if err != nil {
			return nil, err
		}
		task.Priority = priority
	}
	if req.DueDate != nil && strings.TrimSpace(*req.DueDate) != "" {
		due, err := entities.ParseDueDate(*req.DueDate)
		if err != nil {
			return nil, err
		}
		task.DueDate = &due
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.logger.Infow("Task created successfully", "task_id", task.ID, "user_id", userID)

	return task, nil
}

// GetTask retrieves a task owned by userID
func (s *TaskService) GetTask(ctx context.Context, userID, id entities.ID) (*entities.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, taskError(err, "failed to get task")
	}
	return task, nil
}

// ListTasks retrieves the user's tasks, most recent first
func (s *TaskService) ListTasks(ctx context.Context, userID entities.ID, filter entities.TaskFilter) ([]*entities.Task, error) {
	tasks, err := s.taskRepo.List(ctx, userID, filter.Normalize())
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// UpdateTask overwrites only the supplied fields and always refreshes updated_at
func (s *TaskService) UpdateTask(ctx context.Context, userID, id entities.ID, req ports.UpdateTaskRequest) error {
	patch := entities.TaskPatch{
		Description: req.Description,
		Completed:   req.Completed,
		UpdatedAt:   s.now().UTC(),
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return fmt.Errorf("%w: title must not be empty", entities.ErrValidation)
		}
		patch.Title = &title
	}
	if req.Category != nil {
		category := categoryOrDefault(*req.Category)
		patch.Category = &category
	}
	if req.Priority != nil {
		priority, err := parsePriority(*req.Priority)
		if err != nil {
			return err
		}
		patch.Priority = &priority
	}
	if req.DueDate != nil {
		if strings.TrimSpace(*req.DueDate) == "" {
			patch.ClearDueDate = true
		} else {
			due, err := entities.ParseDueDate(*req.DueDate)
			if err != nil {
				return err
			}
			patch.DueDate = &due
		}
	}

	if err := s.taskRepo.Update(ctx, userID, id, patch); err != nil {
		return taskError(err, "failed to update task")
	}

	s.logger.Infow("Task updated successfully", "task_id", id, "user_id", userID)

	return nil
}

// DeleteTask deletes a task owned by userID
func (s *TaskService) DeleteTask(ctx context.Context, userID, id entities.ID) error {
	if err := s.taskRepo.Delete(ctx, userID, id); err != nil {
		return taskError(err, "failed to delete task")
	}

	s.logger.Infow("Task deleted successfully", "task_id", id, "user_id", userID)

	return nil
}

// GetStats aggregates the user's tasks
func (s *TaskService) GetStats(ctx context.Context, userID entities.ID) (*entities.TaskStats, error) {
	stats, err := s.taskRepo.Stats(ctx, userID, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to compute stats: %w", err)
	}
	if stats.ByCategory == nil {
		stats.ByCategory = []entities.CategoryCount{}
	}
	return stats, nil
}

func categoryOrDefault(category string) string {
	category = strings.TrimSpace(category)
	if category == "" {
		return entities.DefaultCategory
	}
	return category
}

func parsePriority(p entities.Priority) (entities.Priority, error) {
	switch p {
	case entities.PriorityLow, entities.PriorityMedium, entities.PriorityHigh:
		return p, nil
	}
	return "", fmt.Errorf("%w: priority must be one of low, medium, high", entities.ErrValidation)
}

// taskError keeps the error kinds the HTTP layer maps and wraps the rest.
func taskError(err error, msg string) error {
	if errors.Is(err, entities.ErrNotFound) {
		return fmt.Errorf("%w: task not found", entities.ErrNotFound)
	}
	if errors.Is(err, entities.ErrValidation) {
		return err
	}
	return fmt.Errorf("%s: %w", msg, err)
}
