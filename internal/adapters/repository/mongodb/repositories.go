package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/taskmaster/todo/internal/domain/entities"
	"github.com/taskmaster/todo/internal/ports"
)

// EnsureIndexes creates the indexes the repositories rely on. The unique
// username index is what makes concurrent registrations safe.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create users index: %w", err)
	}

	_, err = db.Collection(tasksCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("create tasks indexes: %w", err)
	}

	_, err = db.Collection(categoriesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create categories index: %w", err)
	}

	return nil
}

// NewRepositories builds every repository over one database
func NewRepositories(db *mongo.Database) ports.Repositories {
	return ports.Repositories{
		Users:      NewUserRepository(db),
		Tasks:      NewTaskRepository(db),
		Categories: NewCategoryRepository(db),
	}
}

// UserRepositoryImpl implements ports.UserRepository
type UserRepositoryImpl struct {
	coll *mongo.Collection
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *mongo.Database) ports.UserRepository {
	return &UserRepositoryImpl{coll: db.Collection(usersCollection)}
}

func (r *UserRepositoryImpl) Create(ctx context.Context, user *entities.User) error {
	doc := userDocument{
		Username:     user.Username,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
	}

	result, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return entities.ErrDuplicateUser
		}
		return fmt.Errorf("create user: %w", err)
	}

	user.ID = hexID(result.InsertedID.(primitive.ObjectID))
	return nil
}

func (r *UserRepositoryImpl) GetByID(ctx context.Context, id entities.ID) (*entities.User, error) {
	oid, err := objectID(id, "user")
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.D{{Key: "_id", Value: oid}})
}

func (r *UserRepositoryImpl) GetByUsername(ctx context.Context, username string) (*entities.User, error) {
	return r.findOne(ctx, bson.D{{Key: "username", Value: username}})
}

func (r *UserRepositoryImpl) findOne(ctx context.Context, query bson.D) (*entities.User, error) {
	var doc userDocument
	if err := r.coll.FindOne(ctx, query).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, entities.ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.toEntity(), nil
}

// TaskRepositoryImpl implements ports.TaskRepository
type TaskRepositoryImpl struct {
	coll *mongo.Collection
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *mongo.Database) ports.TaskRepository {
	return &TaskRepositoryImpl{coll: db.Collection(tasksCollection)}
}

func (r *TaskRepositoryImpl) Create(ctx context.Context, task *entities.Task) error {
	result, err := r.coll.InsertOne(ctx, newTaskDocument(task))
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}

	task.ID = hexID(result.InsertedID.(primitive.ObjectID))
	return nil
}

func (r *TaskRepositoryImpl) GetByID(ctx context.Context, userID, id entities.ID) (*entities.Task, error) {
	query, err := ownedTask(userID, id)
	if err != nil {
		return nil, err
	}

	var doc taskDocument
	if err := r.coll.FindOne(ctx, query).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, entities.ErrNotFound
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return doc.toEntity(), nil
}

func (r *TaskRepositoryImpl) List(ctx context.Context, userID entities.ID, filter entities.TaskFilter) ([]*entities.Task, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.coll.Find(ctx, taskFilterDocument(userID, filter), opts)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	var docs []taskDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}

	tasks := make([]*entities.Task, 0, len(docs))
	for i := range docs {
		tasks = append(tasks, docs[i].toEntity())
	}
	return tasks, nil
}

func (r *TaskRepositoryImpl) Update(ctx context.Context, userID, id entities.ID, patch entities.TaskPatch) error {
	query, err := ownedTask(userID, id)
	if err != nil {
		return err
	}

	result, err := r.coll.UpdateOne(ctx, query, taskUpdateDocument(patch))
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if result.MatchedCount == 0 {
		return entities.ErrNotFound
	}
	return nil
}

func (r *TaskRepositoryImpl) Delete(ctx context.Context, userID, id entities.ID) error {
	query, err := ownedTask(userID, id)
	if err != nil {
		return err
	}

	result, err := r.coll.DeleteOne(ctx, query)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if result.DeletedCount == 0 {
		return entities.ErrNotFound
	}
	return nil
}

func (r *TaskRepositoryImpl) Stats(ctx context.Context, userID entities.ID, now time.Time) (*entities.TaskStats, error) {
	owner := string(userID)
	stats := &entities.TaskStats{ByCategory: []entities.CategoryCount{}}

	var err error
	if stats.Total, err = r.coll.CountDocuments(ctx, bson.D{{Key: "user_id", Value: owner}}); err != nil {
		return nil, fmt.Errorf("count tasks: %w", err)
	}

	stats.Completed, err = r.coll.CountDocuments(ctx, bson.D{
		{Key: "user_id", Value: owner},
		{Key: "completed", Value: true},
	})
	if err != nil {
		return nil, fmt.Errorf("count completed tasks: %w", err)
	}
	stats.Pending = stats.Total - stats.Completed

	stats.Overdue, err = r.coll.CountDocuments(ctx, bson.D{
		{Key: "user_id", Value: owner},
		{Key: "completed", Value: false},
		{Key: "due_date", Value: bson.D{{Key: "$lt", Value: now}}},
	})
	if err != nil {
		return nil, fmt.Errorf("count overdue tasks: %w", err)
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "user_id", Value: owner}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$category"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("group tasks by category: %w", err)
	}

	var groups []categoryCountDocument
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, fmt.Errorf("decode category counts: %w", err)
	}
	for _, g := range groups {
		stats.ByCategory = append(stats.ByCategory, entities.CategoryCount{Category: g.Category, Count: g.Count})
	}

	return stats, nil
}

func ownedTask(userID, id entities.ID) (bson.D, error) {
	oid, err := objectID(id, "task")
	if err != nil {
		return nil, err
	}
	return bson.D{
		{Key: "_id", Value: oid},
		{Key: "user_id", Value: string(userID)},
	}, nil
}

// CategoryRepositoryImpl implements ports.CategoryRepository
type CategoryRepositoryImpl struct {
	coll *mongo.Collection
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *mongo.Database) ports.CategoryRepository {
	return &CategoryRepositoryImpl{coll: db.Collection(categoriesCollection)}
}

func (r *CategoryRepositoryImpl) Create(ctx context.Context, category *entities.Category) error {
	doc := categoryDocument{
		UserID:    string(category.UserID),
		Name:      category.Name,
		Color:     category.Color,
		CreatedAt: category.CreatedAt,
	}

	result, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}

	category.ID = hexID(result.InsertedID.(primitive.ObjectID))
	return nil
}

func (r *CategoryRepositoryImpl) List(ctx context.Context, userID entities.ID) ([]*entities.Category, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := r.coll.Find(ctx, bson.D{{Key: "user_id", Value: string(userID)}}, opts)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	var docs []categoryDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}

	categories := make([]*entities.Category, 0, len(docs))
	for i := range docs {
		categories = append(categories, docs[i].toEntity())
	}
	return categories, nil
}
