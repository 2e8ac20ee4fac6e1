package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/barhand/barhand-backend/internal/data/repos/catalog"
	reciperepo "github.com/barhand/barhand-backend/internal/data/repos/recipes"
	types "github.com/barhand/barhand-backend/internal/domain"
	"github.com/barhand/barhand-backend/internal/pkg/apperr"
	"github.com/barhand/barhand-backend/internal/pkg/logger"
)

type RecipeService interface {
	// List filters by case-insensitive substring search and, when categoryID
	// is set, to recipes using any ingredient under that category subtree.
	List(ctx context.Context, search string, categoryID *uuid.UUID) ([]*types.Recipe, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Recipe, error)
	GetBySlug(ctx context.Context, slug string) (*types.Recipe, error)
}

type recipeService struct {
	recipes     reciperepo.RecipeRepo
	ingredients catalog.IngredientRepo
	closure     catalog.CategoryClosureRepo
	log         *logger.Logger
}

func NewRecipeService(
	recipes reciperepo.RecipeRepo,
	ingredients catalog.IngredientRepo,
	closure catalog.CategoryClosureRepo,
	baseLog *logger.Logger,
) RecipeService {
	return &recipeService{
		recipes:     recipes,
		ingredients: ingredients,
		closure:     closure,
		log:         baseLog.With("service", "RecipeService"),
	}
}

func (s *recipeService) List(ctx context.Context, search string, categoryID *uuid.UUID) ([]*types.Recipe, error) {
	recipes, err := s.recipes.Search(ctx, nil, search)
	if err != nil {
		return nil, err
	}
	if categoryID == nil {
		return recipes, nil
	}

	subtree, err := s.closure.DescendantIDsOf(ctx, nil, []uuid.UUID{*categoryID})
	if err != nil {
		return nil, err
	}
	matching, err := s.ingredients.IDsWithAnyCategory(ctx, nil, subtree)
	if err != nil {
		return nil, err
	}
	inCategory := make(map[uuid.UUID]bool, len(matching))
	for _, id := range matching {
		inCategory[id] = true
	}

	out := make([]*types.Recipe, 0, len(recipes))
	for _, rec := range recipes {
		for _, line := range rec.Lines {
			if inCategory[line.IngredientID] {
				out = append(out, rec)
				break
			}
		}
	}
	return out, nil
}

func (s *recipeService) Get(ctx context.Context, id uuid.UUID) (*types.Recipe, error) {
	rec, err := s.recipes.GetByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, apperr.NotFound(fmt.Sprintf("recipe %s", id))
	}
	return rec, nil
}

func (s *recipeService) GetBySlug(ctx context.Context, slug string) (*types.Recipe, error) {
	rec, err := s.recipes.GetBySlug(ctx, nil, slug)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, apperr.NotFound(fmt.Sprintf("recipe %q", slug))
	}
	return rec, nil
}
