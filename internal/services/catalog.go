package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/barhand/barhand-backend/internal/data/repos/catalog"
	types "github.com/barhand/barhand-backend/internal/domain"
	"github.com/barhand/barhand-backend/internal/pkg/apperr"
	"github.com/barhand/barhand-backend/internal/pkg/logger"
)

// IngredientDetail is an ingredient with its directly-assigned categories.
type IngredientDetail struct {
	Ingredient *types.Ingredient `json:"ingredient"`
	Categories []*types.Category `json:"categories"`
}

// CatalogService serves read access to the category tree and the ingredient
// catalog. Mutations live in HierarchyService and SuggestionService.
type CatalogService interface {
	ListCategories(ctx context.Context) ([]*types.Category, error)
	TopLevelCategories(ctx context.Context) ([]*types.Category, error)
	GetCategory(ctx context.Context, slug string) (*types.Category, error)
	Ancestors(ctx context.Context, categoryID uuid.UUID) ([]*types.Category, error)
	Descendants(ctx context.Context, categoryID uuid.UUID) ([]*types.Category, error)
	Children(ctx context.Context, categoryID uuid.UUID) ([]*types.Category, error)

	ListIngredients(ctx context.Context) ([]*types.Ingredient, error)
	GetIngredient(ctx context.Context, id uuid.UUID) (*IngredientDetail, error)
}

type catalogService struct {
	categories  catalog.CategoryRepo
	closure     catalog.CategoryClosureRepo
	ingredients catalog.IngredientRepo
	log         *logger.Logger
}

func NewCatalogService(
	categories catalog.CategoryRepo,
	closure catalog.CategoryClosureRepo,
	ingredients catalog.IngredientRepo,
	baseLog *logger.Logger,
) CatalogService {
	return &catalogService{
		categories:  categories,
		closure:     closure,
		ingredients: ingredients,
		log:         baseLog.With("service", "CatalogService"),
	}
}

func (s *catalogService) ListCategories(ctx context.Context) ([]*types.Category, error) {
	return s.categories.List(ctx, nil)
}

func (s *catalogService) TopLevelCategories(ctx context.Context) ([]*types.Category, error) {
	return s.closure.TopLevelCategories(ctx, nil)
}

func (s *catalogService) GetCategory(ctx context.Context, slug string) (*types.Category, error) {
	cat, err := s.categories.GetBySlug(ctx, nil, slug)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, apperr.NotFound(fmt.Sprintf("category %q", slug))
	}
	return cat, nil
}

func (s *catalogService) Ancestors(ctx context.Context, categoryID uuid.UUID) ([]*types.Category, error) {
	if err := s.requireCategory(ctx, categoryID); err != nil {
		return nil, err
	}
	return s.closure.Ancestors(ctx, nil, categoryID, false)
}

func (s *catalogService) Descendants(ctx context.Context, categoryID uuid.UUID) ([]*types.Category, error) {
	if err := s.requireCategory(ctx, categoryID); err != nil {
		return nil, err
	}
	return s.closure.Descendants(ctx, nil, categoryID, false)
}

func (s *catalogService) Children(ctx context.Context, categoryID uuid.UUID) ([]*types.Category, error) {
	if err := s.requireCategory(ctx, categoryID); err != nil {
		return nil, err
	}
	return s.closure.DirectChildren(ctx, nil, categoryID)
}

func (s *catalogService) requireCategory(ctx context.Context, categoryID uuid.UUID) error {
	cat, err := s.categories.GetByID(ctx, nil, categoryID)
	if err != nil {
		return err
	}
	if cat == nil {
		return apperr.NotFound(fmt.Sprintf("category %s", categoryID))
	}
	return nil
}

func (s *catalogService) ListIngredients(ctx context.Context) ([]*types.Ingredient, error) {
	return s.ingredients.List(ctx, nil)
}

func (s *catalogService) GetIngredient(ctx context.Context, id uuid.UUID) (*IngredientDetail, error) {
	ing, err := s.ingredients.GetByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if ing == nil {
		return nil, apperr.NotFound(fmt.Sprintf("ingredient %s", id))
	}
	cats, err := s.ingredients.CategoriesFor(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	return &IngredientDetail{Ingredient: ing, Categories: cats}, nil
}
