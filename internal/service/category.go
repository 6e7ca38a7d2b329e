package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/accountabro/backend/internal/model"
	"github.com/accountabro/backend/internal/repository"
	"github.com/accountabro/backend/internal/validation"
)

type CategoryService struct {
	repo  repository.CategoryRepository
	clock Clock
}

func NewCategoryService(repo repository.CategoryRepository, clock Clock) *CategoryService {
	return &CategoryService{repo: repo, clock: clock}
}

func (s *CategoryService) Create(ctx context.Context, slug, name string, sensitive bool) (*model.Category, error) {
	slug = validation.Normalize(slug)
	if err := validation.ValidateSlug(slug); err != nil {
		return nil, err
	}
	name = validation.Normalize(name)
	if err := validation.ValidateCategoryName(name); err != nil {
		return nil, err
	}

	category := &model.Category{
		ID:          uuid.New().String(),
		Slug:        slug,
		Name:        name,
		IsSensitive: sensitive,
		CreatedAt:   s.clock.Now(),
	}

	err := s.repo.Create(ctx, category)
	if errors.Is(err, repository.ErrDuplicateSlug) {
		return nil, ErrDuplicateSlug
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	slog.Info("category created", "category_id", category.ID, "slug", slug)
	return category, nil
}

func (s *CategoryService) BySlug(ctx context.Context, slug string) (*model.Category, error) {
	category, err := s.repo.BySlug(ctx, slug)
	if errors.Is(err, repository.ErrCategoryNotFound) {
		return nil, fmt.Errorf("category %q: %w", slug, ErrNotFound)
	}
	return category, err
}

func (s *CategoryService) List(ctx context.Context) ([]*model.Category, error) {
	categories, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	if categories == nil {
		categories = []*model.Category{}
	}
	return categories, nil
}
