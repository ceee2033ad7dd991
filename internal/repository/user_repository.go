package repository

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"task-tracker/internal/model"
)

// UserRepository handles CRUD for users.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Add(ctx context.Context, user *model.User) (err error) {
	ctx, span := tracer.Start(ctx, "UserRepository.Add", trace.WithAttributes(attribute.String("user.id", user.ID)))
	defer func() { finish(span, err) }()

	user.CreatedAt = user.CreatedAt.UTC()
	user.LastLoginAt = utc(user.LastLoginAt)
	if err := r.db.WithContext(ctx).Omit("Tasks").Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("create user: %w", model.ErrConflict)
		}
		return persistenceErr("create user", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.first(ctx, "UserRepository.GetByID", "id = ?", id)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.first(ctx, "UserRepository.GetByUsername", "username = ?", username)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.first(ctx, "UserRepository.GetByEmail", "email = ?", email)
}

func (r *UserRepository) first(ctx context.Context, op, where string, arg string) (_ *model.User, err error) {
	ctx, span := tracer.Start(ctx, op)
	defer func() { finish(span, err) }()

	var user model.User
	if err := r.db.WithContext(ctx).First(&user, where, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrUserNotFound
		}
		return nil, persistenceErr("find user", err)
	}
	return &user, nil
}

func (r *UserRepository) GetAll(ctx context.Context) (_ []model.User, err error) {
	ctx, span := tracer.Start(ctx, "UserRepository.GetAll")
	defer func() { finish(span, err) }()

	var users []model.User
	if err := r.db.WithContext(ctx).Order("username ASC").Find(&users).Error; err != nil {
		return nil, persistenceErr("list users", err)
	}
	return users, nil
}

func (r *UserRepository) Update(ctx context.Context, user *model.User) (err error) {
	ctx, span := tracer.Start(ctx, "UserRepository.Update", trace.WithAttributes(attribute.String("user.id", user.ID)))
	defer func() { finish(span, err) }()

	user.LastLoginAt = utc(user.LastLoginAt)
	result := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", user.ID).
		Select("username", "email", "password_hash", "last_login_at").
		Updates(user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("update user: %w", model.ErrConflict)
		}
		return persistenceErr("update user", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) (err error) {
	ctx, span := tracer.Start(ctx, "UserRepository.Delete", trace.WithAttributes(attribute.String("user.id", id)))
	defer func() { finish(span, err) }()

	result := r.db.WithContext(ctx).Delete(&model.User{}, "id = ?", id)
	if result.Error != nil {
		return persistenceErr("delete user", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, "username = ?", username)
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "email = ?", email)
}

func (r *UserRepository) exists(ctx context.Context, where, arg string) (_ bool, err error) {
	ctx, span := tracer.Start(ctx, "UserRepository.Exists")
	defer func() { finish(span, err) }()

	var count int64
	if err := r.db.WithContext(ctx).Model(&model.User{}).Where(where, arg).Count(&count).Error; err != nil {
		return false, persistenceErr("count users", err)
	}
	return count > 0, nil
}
