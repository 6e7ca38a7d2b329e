package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/accountabro/backend/internal/model"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrDuplicateSlug    = errors.New("category slug already exists")
)

type CategoryRepository interface {
	Create(ctx context.Context, category *model.Category) error
	ByID(ctx context.Context, id string) (*model.Category, error)
	BySlug(ctx context.Context, slug string) (*model.Category, error)
	List(ctx context.Context) ([]*model.Category, error)
}

type categoryRepository struct {
	db sqlx.ExtContext
}

func NewCategoryRepository(db sqlx.ExtContext) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, category *model.Category) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO goal_categories (id, slug, name, is_sensitive, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, category.ID, category.Slug, category.Name, category.IsSensitive, category.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateSlug
	}
	return err
}

func (r *categoryRepository) ByID(ctx context.Context, id string) (*model.Category, error) {
	category := &model.Category{}
	err := sqlx.GetContext(ctx, r.db, category, `SELECT * FROM goal_categories WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, err
	}
	return category, nil
}

func (r *categoryRepository) BySlug(ctx context.Context, slug string) (*model.Category, error) {
	category := &model.Category{}
	err := sqlx.GetContext(ctx, r.db, category, `SELECT * FROM goal_categories WHERE slug = $1`, slug)
	if err == sql.ErrNoRows {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, err
	}
	return category, nil
}

func (r *categoryRepository) List(ctx context.Context) ([]*model.Category, error) {
	var categories []*model.Category
	err := sqlx.SelectContext(ctx, r.db, &categories, `SELECT * FROM goal_categories ORDER BY slug`)
	return categories, err
}
