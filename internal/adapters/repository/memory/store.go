// Package memory keeps every record in process memory. It backs the
// "memory" store driver used for local development and tests; nothing
// survives a restart.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/taskmaster/todo/internal/domain/entities"
	"github.com/taskmaster/todo/internal/ports"
)

// Store holds users, tasks and categories behind one lock
type Store struct {
	mu         sync.RWMutex
	users      map[entities.ID]*entities.User
	usernames  map[string]entities.ID
	tasks      map[entities.ID]*entities.Task
	categories map[entities.ID]*entities.Category
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		users:      make(map[entities.ID]*entities.User),
		usernames:  make(map[string]entities.ID),
		tasks:      make(map[entities.ID]*entities.Task),
		categories: make(map[entities.ID]*entities.Category),
	}
}

// Repositories exposes the store through the repository ports
func (s *Store) Repositories() ports.Repositories {
	return ports.Repositories{
		Users:      (*userRepository)(s),
		Tasks:      (*taskRepository)(s),
		Categories: (*categoryRepository)(s),
		Health:     s,
	}
}

// HealthCheck always succeeds
func (s *Store) HealthCheck(ctx context.Context) error {
	return ctx.Err()
}

func newID() entities.ID {
	return entities.ID(uuid.NewString())
}

func checkID(id entities.ID, kind string) error {
	if _, err := uuid.Parse(string(id)); err != nil {
		return fmt.Errorf("%w: invalid %s id", entities.ErrValidation, kind)
	}
	return nil
}

type userRepository Store

func (r *userRepository) Create(ctx context.Context, user *entities.User) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.usernames[user.Username]; taken {
		return entities.ErrDuplicateUser
	}

	user.ID = newID()
	stored := *user
	s.users[user.ID] = &stored
	s.usernames[user.Username] = user.ID
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id entities.ID) (*entities.User, error) {
	if err := checkID(id, "user"); err != nil {
		return nil, err
	}

	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, entities.ErrNotFound
	}
	found := *user
	return &found, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*entities.User, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usernames[username]
	if !ok {
		return nil, entities.ErrNotFound
	}
	found := *s.users[id]
	return &found, nil
}

type taskRepository Store

func (r *taskRepository) Create(ctx context.Context, task *entities.Task) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	task.ID = newID()
	s.tasks[task.ID] = copyTask(task)
	return nil
}

// owned returns the stored task when userID owns it. Callers hold the lock.
func (r *taskRepository) owned(userID, id entities.ID) (*entities.Task, error) {
	if err := checkID(id, "task"); err != nil {
		return nil, err
	}
	task, ok := r.tasks[id]
	if !ok || task.UserID != userID {
		return nil, entities.ErrNotFound
	}
	return task, nil
}

func (r *taskRepository) GetByID(ctx context.Context, userID, id entities.ID) (*entities.Task, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, err := r.owned(userID, id)
	if err != nil {
		return nil, err
	}
	return copyTask(task), nil
}

func (r *taskRepository) List(ctx context.Context, userID entities.ID, filter entities.TaskFilter) ([]*entities.Task, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := []*entities.Task{}
	for _, task := range s.tasks {
		if task.UserID == userID && filter.Matches(task) {
			tasks = append(tasks, copyTask(task))
		}
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		if tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].ID > tasks[j].ID
		}
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
	return tasks, nil
}

func (r *taskRepository) Update(ctx context.Context, userID, id entities.ID, patch entities.TaskPatch) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	task, err := r.owned(userID, id)
	if err != nil {
		return err
	}
	patch.Apply(task)
	return nil
}

func (r *taskRepository) Delete(ctx context.Context, userID, id entities.ID) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := r.owned(userID, id); err != nil {
		return err
	}
	delete(s.tasks, id)
	return nil
}

func (r *taskRepository) Stats(ctx context.Context, userID entities.ID, now time.Time) (*entities.TaskStats, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &entities.TaskStats{ByCategory: []entities.CategoryCount{}}
	counts := make(map[string]int64)

	for _, task := range s.tasks {
		if task.UserID != userID {
			continue
		}
		stats.Total++
		if task.Completed {
			stats.Completed++
		}
		if task.IsOverdue(now) {
			stats.Overdue++
		}
		counts[task.Category]++
	}
	stats.Pending = stats.Total - stats.Completed

	for category, count := range counts {
		stats.ByCategory = append(stats.ByCategory, entities.CategoryCount{Category: category, Count: count})
	}
	sort.Slice(stats.ByCategory, func(i, j int) bool {
		return stats.ByCategory[i].Category < stats.ByCategory[j].Category
	})

	return stats, nil
}

type categoryRepository Store

func (r *categoryRepository) Create(ctx context.Context, category *entities.Category) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	category.ID = newID()
	stored := *category
	s.categories[category.ID] = &stored
	return nil
}

func (r *categoryRepository) List(ctx context.Context, userID entities.ID) ([]*entities.Category, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()

	categories := []*entities.Category{}
	for _, category := range s.categories {
		if category.UserID == userID {
			found := *category
			categories = append(categories, &found)
		}
	}
	sort.Slice(categories, func(i, j int) bool {
		return categories[i].Name < categories[j].Name
	})
	return categories, nil
}

func copyTask(t *entities.Task) *entities.Task {
	c := *t
	if t.DueDate != nil {
		due := *t.DueDate
		c.DueDate = &due
	}
	return &c
}
