package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/taskmaster/todo/internal/domain/entities"
	"github.com/taskmaster/todo/internal/infrastructure/logger"
	"github.com/taskmaster/todo/internal/ports"
)

// CategoryService handles category-related operations
type CategoryService struct {
	categoryRepo ports.CategoryRepository
	validate     *validator.Validate
	logger       *logger.Logger
	now          func() time.Time
}

// NewCategoryService creates a new category service
func NewCategoryService(categoryRepo ports.CategoryRepository, logger *logger.Logger) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		validate:     validator.New(),
		logger:       logger.WithComponent("categories"),
		now:          time.Now,
	}
}

// CreateCategory creates a category, defaulting the color
func (s *CategoryService) CreateCategory(ctx context.Context, userID entities.ID, req ports.CreateCategoryRequest) (*entities.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", entities.ErrValidation)
	}

	color := entities.DefaultCategoryColor
	if req.Color != nil && *req.Color != "" {
		if err := s.validate.Var(*req.Color, "hexcolor"); err != nil {
			return nil, fmt.Errorf("%w: color must be a hex color", entities.ErrValidation)
		}
		color = *req.Color
	}

	category := &entities.Category{
		UserID:    userID,
		Name:      name,
		Color:     color,
		CreatedAt: s.now().UTC(),
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.logger.Infow("Category created successfully", "category_id", category.ID, "user_id", userID)

	return category, nil
}

// ListCategories returns the user's categories
func (s *CategoryService) ListCategories(ctx context.Context, userID entities.ID) ([]*entities.Category, error) {
	categories, err := s.categoryRepo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}
