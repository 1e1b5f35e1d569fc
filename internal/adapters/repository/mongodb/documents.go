package mongodb

import (
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/taskmaster/todo/internal/domain/entities"
)

const (
	usersCollection      = "users"
	tasksCollection      = "tasks"
	categoriesCollection = "categories"
)

type userDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Username     string             `bson:"username"`
	PasswordHash string             `bson:"password_hash"`
	CreatedAt    time.Time          `bson:"created_at"`
}

type taskDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	UserID      string             `bson:"user_id"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Category    string             `bson:"category"`
	Priority    string             `bson:"priority"`
	DueDate     *time.Time         `bson:"due_date"`
	Completed   bool               `bson:"completed"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

type categoryDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    string             `bson:"user_id"`
	Name      string             `bson:"name"`
	Color     string             `bson:"color"`
	CreatedAt time.Time          `bson:"created_at"`
}

type categoryCountDocument struct {
	Category string `bson:"_id"`
	Count    int64  `bson:"count"`
}

// objectID decodes an opaque id into an ObjectID.
func objectID(id entities.ID, kind string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(string(id))
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: invalid %s id", entities.ErrValidation, kind)
	}
	return oid, nil
}

func hexID(oid primitive.ObjectID) entities.ID {
	return entities.ID(oid.Hex())
}

func (d *userDocument) toEntity() *entities.User {
	return &entities.User{
		ID:           hexID(d.ID),
		Username:     d.Username,
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt.UTC(),
	}
}

func newTaskDocument(t *entities.Task) *taskDocument {
	return &taskDocument{
		UserID:      string(t.UserID),
		Title:       t.Title,
		Description: t.Description,
		Category:    t.Category,
		Priority:    string(t.Priority),
		DueDate:     t.DueDate,
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func (d *taskDocument) toEntity() *entities.Task {
	task := &entities.Task{
		ID:          hexID(d.ID),
		UserID:      entities.ID(d.UserID),
		Title:       d.Title,
		Description: d.Description,
		Category:    d.Category,
		Priority:    entities.Priority(d.Priority),
		Completed:   d.Completed,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
	if d.DueDate != nil {
		due := d.DueDate.UTC()
		task.DueDate = &due
	}
	return task
}

func (d *categoryDocument) toEntity() *entities.Category {
	return &entities.Category{
		ID:        hexID(d.ID),
		UserID:    entities.ID(d.UserID),
		Name:      d.Name,
		Color:     d.Color,
		CreatedAt: d.CreatedAt.UTC(),
	}
}

// taskFilterDocument builds the owner-scoped query for a task listing.
func taskFilterDocument(userID entities.ID, filter entities.TaskFilter) bson.D {
	query := bson.D{{Key: "user_id", Value: string(userID)}}

	if filter.Category != "" {
		query = append(query, bson.E{Key: "category", Value: filter.Category})
	}

	switch filter.Status {
	case entities.TaskStatusCompleted:
		query = append(query, bson.E{Key: "completed", Value: true})
	case entities.TaskStatusPending:
		query = append(query, bson.E{Key: "completed", Value: false})
	}

	if filter.Search != "" {
		query = append(query, bson.E{Key: "title", Value: primitive.Regex{
			Pattern: regexp.QuoteMeta(filter.Search),
			Options: "i",
		}})
	}

	return query
}

// taskUpdateDocument turns a patch into a $set update.
func taskUpdateDocument(patch entities.TaskPatch) bson.D {
	set := bson.D{{Key: "updated_at", Value: patch.UpdatedAt}}

	if patch.Title != nil {
		set = append(set, bson.E{Key: "title", Value: *patch.Title})
	}
	if patch.Description != nil {
		set = append(set, bson.E{Key: "description", Value: *patch.Description})
	}
	if patch.Category != nil {
		set = append(set, bson.E{Key: "category", Value: *patch.Category})
	}
	if patch.Priority != nil {
		set = append(set, bson.E{Key: "priority", Value: string(*patch.Priority)})
	}
	if patch.ClearDueDate {
		set = append(set, bson.E{Key: "due_date", Value: nil})
	} else if patch.DueDate != nil {
		set = append(set, bson.E{Key: "due_date", Value: *patch.DueDate})
	}
	if patch.Completed != nil {
		set = append(set, bson.E{Key: "completed", Value: *patch.Completed})
	}

	return bson.D{{Key: "$set", Value: set}}
}
