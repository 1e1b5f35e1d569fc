package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/taskmaster/todo/internal/domain/entities"
	"github.com/taskmaster/todo/internal/ports"
)

const uniqueViolation = "23505"

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var taskColumns = []string{
	"id", "user_id", "title", "description", "category", "priority",
	"due_date", "completed", "created_at", "updated_at",
}

// NewRepositories builds every repository over one connection pool
func NewRepositories(db *sqlx.DB) ports.Repositories {
	return ports.Repositories{
		Users:      NewUserRepository(db),
		Tasks:      NewTaskRepository(db),
		Categories: NewCategoryRepository(db),
	}
}

// parseID checks that id is a UUID and returns its canonical text form
func parseID(id entities.ID, kind string) (string, error) {
	parsed, err := uuid.Parse(string(id))
	if err != nil {
		return "", fmt.Errorf("%w: invalid %s id", entities.ErrValidation, kind)
	}
	return parsed.String(), nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// UserRepositoryImpl implements the UserRepository interface
type UserRepositoryImpl struct {
	db *sqlx.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlx.DB) ports.UserRepository {
	return &UserRepositoryImpl{db: db}
}

func (r *UserRepositoryImpl) Create(ctx context.Context, user *entities.User) error {
	query := `
		INSERT INTO users (id, username, password_hash, created_at)
		VALUES ($1, $2, $3, $4)`

	id := uuid.New()
	_, err := r.db.ExecContext(ctx, query, id, user.Username, user.PasswordHash, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return entities.ErrDuplicateUser
		}
		return fmt.Errorf("create user: %w", err)
	}

	user.ID = entities.ID(id.String())
	return nil
}

func (r *UserRepositoryImpl) GetByID(ctx context.Context, id entities.ID) (*entities.User, error) {
	uid, err := parseID(id, "user")
	if err != nil {
		return nil, err
	}

	query := `SELECT id, username, password_hash, created_at FROM users WHERE id = $1`
	return r.get(ctx, query, uid)
}

func (r *UserRepositoryImpl) GetByUsername(ctx context.Context, username string) (*entities.User, error) {
	query := `SELECT id, username, password_hash, created_at FROM users WHERE username = $1`
	return r.get(ctx, query, username)
}

func (r *UserRepositoryImpl) get(ctx context.Context, query string, arg interface{}) (*entities.User, error) {
	var user entities.User
	err := r.db.GetContext(ctx, &user, query, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

// TaskRepositoryImpl implements the TaskRepository interface
type TaskRepositoryImpl struct {
	db *sqlx.DB
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *sqlx.DB) ports.TaskRepository {
	return &TaskRepositoryImpl{db: db}
}

func (r *TaskRepositoryImpl) Create(ctx context.Context, task *entities.Task) error {
	uid, err := parseID(task.UserID, "user")
	if err != nil {
		return err
	}

	query := `
		INSERT INTO tasks (id, user_id, title, description, category, priority,
			due_date, completed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	id := uuid.New()
	_, err = r.db.ExecContext(ctx, query,
		id, uid, task.Title, task.Description, task.Category, string(task.Priority),
		task.DueDate, task.Completed, task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}

	task.ID = entities.ID(id.String())
	return nil
}

func (r *TaskRepositoryImpl) GetByID(ctx context.Context, userID, id entities.ID) (*entities.Task, error) {
	owner, taskID, err := parseOwned(userID, id)
	if err != nil {
		return nil, err
	}

	query, args, err := psql.Select(taskColumns...).
		From("tasks").
		Where(squirrel.Eq{"id": taskID, "user_id": owner}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get task query: %w", err)
	}

	var task entities.Task
	if err := r.db.GetContext(ctx, &task, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrNotFound
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return &task, nil
}

func (r *TaskRepositoryImpl) List(ctx context.Context, userID entities.ID, filter entities.TaskFilter) ([]*entities.Task, error) {
	owner, err := parseID(userID, "user")
	if err != nil {
		return nil, err
	}

	builder := psql.Select(taskColumns...).
		From("tasks").
		Where(squirrel.Eq{"user_id": owner})

	if filter.Category != "" {
		builder = builder.Where(squirrel.Eq{"category": filter.Category})
	}

	switch filter.Status {
	case entities.TaskStatusCompleted:
		builder = builder.Where(squirrel.Eq{"completed": true})
	case entities.TaskStatusPending:
		builder = builder.Where(squirrel.Eq{"completed": false})
	}

	if filter.Search != "" {
		builder = builder.Where(squirrel.ILike{"title": "%" + likeEscaper.Replace(filter.Search) + "%"})
	}

	query, args, err := builder.OrderBy("created_at DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list tasks query: %w", err)
	}

	tasks := []*entities.Task{}
	if err := r.db.SelectContext(ctx, &tasks, query, args...); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepositoryImpl) Update(ctx context.Context, userID, id entities.ID, patch entities.TaskPatch) error {
	owner, taskID, err := parseOwned(userID, id)
	if err != nil {
		return err
	}

	builder := psql.Update("tasks").Set("updated_at", patch.UpdatedAt)

	if patch.Title != nil {
		builder = builder.Set("title", *patch.Title)
	}
	if patch.Description != nil {
		builder = builder.Set("description", *patch.Description)
	}
	if patch.Category != nil {
		builder = builder.Set("category", *patch.Category)
	}
	if patch.Priority != nil {
		builder = builder.Set("priority", string(*patch.Priority))
	}
	if patch.ClearDueDate {
		builder = builder.Set("due_date", nil)
	} else if patch.DueDate != nil {
		builder = builder.Set("due_date", *patch.DueDate)
	}
	if patch.Completed != nil {
		builder = builder.Set("completed", *patch.Completed)
	}

	query, args, err := builder.Where(squirrel.Eq{"id": taskID, "user_id": owner}).ToSql()
	if err != nil {
		return fmt.Errorf("build update task query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return requireRow(result)
}

func (r *TaskRepositoryImpl) Delete(ctx context.Context, userID, id entities.ID) error {
	owner, taskID, err := parseOwned(userID, id)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, taskID, owner)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return requireRow(result)
}

func (r *TaskRepositoryImpl) Stats(ctx context.Context, userID entities.ID, now time.Time) (*entities.TaskStats, error) {
	owner, err := parseID(userID, "user")
	if err != nil {
		return nil, err
	}

	query, args, err := psql.Select(
		"COUNT(*) AS total",
		"COUNT(*) FILTER (WHERE completed) AS completed",
	).
		Column(squirrel.Expr("COUNT(*) FILTER (WHERE NOT completed AND due_date < ?) AS overdue", now)).
		From("tasks").
		Where(squirrel.Eq{"user_id": owner}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build stats query: %w", err)
	}

	var counts struct {
		Total     int64 `db:"total"`
		Completed int64 `db:"completed"`
		Overdue   int64 `db:"overdue"`
	}
	if err := r.db.GetContext(ctx, &counts, query, args...); err != nil {
		return nil, fmt.Errorf("count tasks: %w", err)
	}

	query, args, err = psql.Select("category", "COUNT(*) AS count").
		From("tasks").
		Where(squirrel.Eq{"user_id": owner}).
		GroupBy("category").
		OrderBy("category").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build category stats query: %w", err)
	}

	byCategory := []entities.CategoryCount{}
	if err := r.db.SelectContext(ctx, &byCategory, query, args...); err != nil {
		return nil, fmt.Errorf("group tasks by category: %w", err)
	}

	return &entities.TaskStats{
		Total:      counts.Total,
		Completed:  counts.Completed,
		Pending:    counts.Total - counts.Completed,
		Overdue:    counts.Overdue,
		ByCategory: byCategory,
	}, nil
}

func parseOwned(userID, id entities.ID) (string, string, error) {
	owner, err := parseID(userID, "user")
	if err != nil {
		return "", "", err
	}
	taskID, err := parseID(id, "task")
	if err != nil {
		return "", "", err
	}
	return owner, taskID, nil
}

func requireRow(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return entities.ErrNotFound
	}
	return nil
}

// CategoryRepositoryImpl implements the CategoryRepository interface
type CategoryRepositoryImpl struct {
	db *sqlx.DB
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *sqlx.DB) ports.CategoryRepository {
	return &CategoryRepositoryImpl{db: db}
}

func (r *CategoryRepositoryImpl) Create(ctx context.Context, category *entities.Category) error {
	owner, err := parseID(category.UserID, "user")
	if err != nil {
		return err
	}

	query := `
		INSERT INTO categories (id, user_id, name, color, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	id := uuid.New()
	if _, err := r.db.ExecContext(ctx, query, id, owner, category.Name, category.Color, category.CreatedAt); err != nil {
		return fmt.Errorf("create category: %w", err)
	}

	category.ID = entities.ID(id.String())
	return nil
}

func (r *CategoryRepositoryImpl) List(ctx context.Context, userID entities.ID) ([]*entities.Category, error) {
	owner, err := parseID(userID, "user")
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, user_id, name, color, created_at
		FROM categories
		WHERE user_id = $1
		ORDER BY name`

	categories := []*entities.Category{}
	if err := r.db.SelectContext(ctx, &categories, query, owner); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}
