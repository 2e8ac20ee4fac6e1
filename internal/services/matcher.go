package services

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/barhand/barhand-backend/internal/clients/redis"
	"github.com/barhand/barhand-backend/internal/data/repos/catalog"
	invrepo "github.com/barhand/barhand-backend/internal/data/repos/inventory"
	reciperepo "github.com/barhand/barhand-backend/internal/data/repos/recipes"
	types "github.com/barhand/barhand-backend/internal/domain"
	"github.com/barhand/barhand-backend/internal/pkg/logger"
)

// MatchSets splits a user's satisfiable ingredients by why they matched:
// exact in-stock hits versus category-distance substitutions. The union is
// the full satisfiable set.
type MatchSets struct {
	ExactIDs    []uuid.UUID `json:"exact_ids"`
	CategoryIDs []uuid.UUID `json:"category_ids"`
}

func (m *MatchSets) All() []uuid.UUID {
	out := make([]uuid.UUID, 0, len(m.ExactIDs)+len(m.CategoryIDs))
	out = append(out, m.ExactIDs...)
	out = append(out, m.CategoryIDs...)
	return out
}

// MatcherService answers "what can this user make" for a given category
// tolerance. maxDepth is clamped, never rejected: 0 means exact inventory
// matches only, higher values generalize each in-stock ingredient's
// categories maxDepth-1 levels up the hierarchy and back down to siblings.
type MatcherService interface {
	MatchSets(ctx context.Context, userID uuid.UUID, maxDepth int) (*MatchSets, error)
	MakeableRecipes(ctx context.Context, userID uuid.UUID, maxDepth int) ([]*types.Recipe, error)
}

type matcherService struct {
	inventory   invrepo.UserInventoryRepo
	ingredients catalog.IngredientRepo
	closure     catalog.CategoryClosureRepo
	recipes     reciperepo.RecipeRepo
	cache       redis.MatchCache
	depthClamp  int
	log         *logger.Logger
}

func NewMatcherService(
	inventory invrepo.UserInventoryRepo,
	ingredients catalog.IngredientRepo,
	closure catalog.CategoryClosureRepo,
	recipes reciperepo.RecipeRepo,
	cache redis.MatchCache,
	depthClamp int,
	baseLog *logger.Logger,
) MatcherService {
	if depthClamp <= 0 {
		depthClamp = 5
	}
	return &matcherService{
		inventory:   inventory,
		ingredients: ingredients,
		closure:     closure,
		recipes:     recipes,
		cache:       cache,
		depthClamp:  depthClamp,
		log:         baseLog.With("service", "MatcherService"),
	}
}

func (s *matcherService) clamp(maxDepth int) int {
	if maxDepth < 0 {
		return 0
	}
	if maxDepth > s.depthClamp {
		return s.depthClamp
	}
	return maxDepth
}

func (s *matcherService) MatchSets(ctx context.Context, userID uuid.UUID, maxDepth int) (*MatchSets, error) {
	maxDepth = s.clamp(maxDepth)

	if s.cache != nil {
		var cached MatchSets
		ok, err := s.cache.Get(ctx, userID, maxDepth, &cached)
		if err != nil {
			s.log.Warn("Match-set cache read failed", "error", err)
		} else if ok {
			return &cached, nil
		}
	}

	sets, err := s.computeMatchSets(ctx, userID, maxDepth)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, userID, maxDepth, sets); err != nil {
			s.log.Warn("Match-set cache write failed", "error", err)
		}
	}
	return sets, nil
}

func (s *matcherService) computeMatchSets(ctx context.Context, userID uuid.UUID, maxDepth int) (*MatchSets, error) {
	exact, err := s.inventory.InStockIngredientIDs(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	sets := &MatchSets{ExactIDs: sortedIDs(exact), CategoryIDs: []uuid.UUID{}}
	if len(exact) == 0 || maxDepth == 0 {
		return sets, nil
	}

	// Generalize up: directly-assigned categories of in-stock ingredients,
	// then their ancestors within maxDepth-1 levels.
	leafCategories, err := s.ingredients.CategoryIDsFor(ctx, nil, exact)
	if err != nil {
		return nil, err
	}
	if len(leafCategories) == 0 {
		return sets, nil
	}
	ancestors, err := s.closure.AncestorIDsWithin(ctx, nil, leafCategories, maxDepth-1)
	if err != nil {
		return nil, err
	}

	// Expand back down so sibling categories under a shared ancestor match.
	satisfiableCategories, err := s.closure.DescendantIDsOf(ctx, nil, ancestors)
	if err != nil {
		return nil, err
	}
	categoryMatched, err := s.ingredients.IDsWithAnyCategory(ctx, nil, satisfiableCategories)
	if err != nil {
		return nil, err
	}

	inExact := make(map[uuid.UUID]bool, len(exact))
	for _, id := range exact {
		inExact[id] = true
	}
	var categoryOnly []uuid.UUID
	for _, id := range categoryMatched {
		if !inExact[id] {
			categoryOnly = append(categoryOnly, id)
		}
	}
	sets.CategoryIDs = sortedIDs(categoryOnly)
	return sets, nil
}

func (s *matcherService) MakeableRecipes(ctx context.Context, userID uuid.UUID, maxDepth int) ([]*types.Recipe, error) {
	sets, err := s.MatchSets(ctx, userID, maxDepth)
	if err != nil {
		return nil, err
	}
	// Empty inventory is a normal outcome, not an error.
	if len(sets.ExactIDs) == 0 {
		return []*types.Recipe{}, nil
	}
	recipes, err := s.recipes.MakeableByIngredientIDs(ctx, nil, sets.All())
	if err != nil {
		return nil, err
	}
	if recipes == nil {
		recipes = []*types.Recipe{}
	}
	return recipes, nil
}

func sortedIDs(ids []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, len(ids))
	copy(out, ids)
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}
