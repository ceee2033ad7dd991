package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"task-tracker/internal/model"
	"task-tracker/internal/validation"
)

// CategoryService provides helpers around categories.
type CategoryService struct {
	repo CategoryStore
}

func NewCategoryService(repo CategoryStore) *CategoryService {
	return &CategoryService{repo: repo}
}

func (s *CategoryService) AddCategory(ctx context.Context, category *model.Category) error {
	category.Name = strings.TrimSpace(category.Name)
	if err := validation.ValidateCategory(*category); err != nil {
		return err
	}
	category.ID = uuid.NewString()
	return s.repo.Add(ctx, category)
}

func (s *CategoryService) UpdateCategory(ctx context.Context, category *model.Category) error {
	category.Name = strings.TrimSpace(category.Name)
	if err := validation.ValidateCategory(*category); err != nil {
		return err
	}
	return s.repo.Update(ctx, category)
}

func (s *CategoryService) DeleteCategory(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *CategoryService) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *CategoryService) ListCategories(ctx context.Context) ([]model.Category, error) {
	return s.repo.GetAll(ctx)
}

// Names maps category ids to names.
func (s *CategoryService) Names(ctx context.Context) (map[string]string, error) {
	categories, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	return names, nil
}
