package repository

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"task-tracker/internal/model"
)

// CategoryRepository manages task categories.
type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) Add(ctx context.Context, category *model.Category) (err error) {
	ctx, span := tracer.Start(ctx, "CategoryRepository.Add", trace.WithAttributes(attribute.String("category.id", category.ID)))
	defer func() { finish(span, err) }()

	if err := r.db.WithContext(ctx).Omit("Tasks").Create(category).Error; err != nil {
		return persistenceErr("create category", err)
	}
	return nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id string) (_ *model.Category, err error) {
	ctx, span := tracer.Start(ctx, "CategoryRepository.GetByID", trace.WithAttributes(attribute.String("category.id", id)))
	defer func() { finish(span, err) }()

	var category model.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrCategoryNotFound
		}
		return nil, persistenceErr("find category", err)
	}
	return &category, nil
}

func (r *CategoryRepository) GetAll(ctx context.Context) (_ []model.Category, err error) {
	ctx, span := tracer.Start(ctx, "CategoryRepository.GetAll")
	defer func() { finish(span, err) }()

	var categories []model.Category
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, persistenceErr("list categories", err)
	}
	return categories, nil
}

func (r *CategoryRepository) Update(ctx context.Context, category *model.Category) (err error) {
	ctx, span := tracer.Start(ctx, "CategoryRepository.Update", trace.WithAttributes(attribute.String("category.id", category.ID)))
	defer func() { finish(span, err) }()

	result := r.db.WithContext(ctx).Model(&model.Category{}).
		Where("id = ?", category.ID).
		Select("name", "description").
		Updates(category)
	if result.Error != nil {
		return persistenceErr("update category", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrCategoryNotFound
	}
	return nil
}

// Delete removes a category and detaches the tasks that referenced it.
func (r *CategoryRepository) Delete(ctx context.Context, id string) (err error) {
	ctx, span := tracer.Start(ctx, "CategoryRepository.Delete", trace.WithAttributes(attribute.String("category.id", id)))
	defer func() { finish(span, err) }()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Task{}).Where("category_id = ?", id).Update("category_id", nil).Error; err != nil {
			return persistenceErr("detach category tasks", err)
		}
		result := tx.Delete(&model.Category{}, "id = ?", id)
		if result.Error != nil {
			return persistenceErr("delete category", result.Error)
		}
		if result.RowsAffected == 0 {
			return model.ErrCategoryNotFound
		}
		return nil
	})
}
