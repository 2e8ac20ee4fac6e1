package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/barhand/barhand-backend/internal/clients/redis"
	"github.com/barhand/barhand-backend/internal/data/repos/catalog"
	invrepo "github.com/barhand/barhand-backend/internal/data/repos/inventory"
	types "github.com/barhand/barhand-backend/internal/domain"
	"github.com/barhand/barhand-backend/internal/pkg/apperr"
	"github.com/barhand/barhand-backend/internal/pkg/logger"
)

// InventoryItem is one user-inventory row joined with its ingredient.
type InventoryItem struct {
	IngredientID uuid.UUID `json:"ingredient_id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	InStock      bool      `json:"in_stock"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type InventoryStats struct {
	InStock          int64 `json:"in_stock"`
	TotalIngredients int64 `json:"total_ingredients"`
}

type InventoryService interface {
	SetInStock(ctx context.Context, userID, ingredientID uuid.UUID, inStock bool) (*types.UserInventory, error)
	List(ctx context.Context, userID uuid.UUID) ([]*InventoryItem, error)
	Stats(ctx context.Context, userID uuid.UUID) (*InventoryStats, error)
}

type inventoryService struct {
	inventory   invrepo.UserInventoryRepo
	ingredients catalog.IngredientRepo
	cache       redis.MatchCache
	log         *logger.Logger
}

func NewInventoryService(
	inventory invrepo.UserInventoryRepo,
	ingredients catalog.IngredientRepo,
	cache redis.MatchCache,
	baseLog *logger.Logger,
) InventoryService {
	return &inventoryService{
		inventory:   inventory,
		ingredients: ingredients,
		cache:       cache,
		log:         baseLog.With("service", "InventoryService"),
	}
}

func (s *inventoryService) SetInStock(ctx context.Context, userID, ingredientID uuid.UUID, inStock bool) (*types.UserInventory, error) {
	ing, err := s.ingredients.GetByID(ctx, nil, ingredientID)
	if err != nil {
		return nil, err
	}
	if ing == nil {
		return nil, apperr.NotFound(fmt.Sprintf("ingredient %s", ingredientID))
	}

	row, err := s.inventory.Upsert(ctx, nil, userID, ingredientID, inStock)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		cctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := s.cache.InvalidateUser(cctx, userID); err != nil {
			s.log.Warn("Match-set cache invalidation failed", "user_id", userID, "error", err)
		}
	}
	return row, nil
}

func (s *inventoryService) List(ctx context.Context, userID uuid.UUID) ([]*InventoryItem, error) {
	rows, err := s.inventory.ListByUser(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []*InventoryItem{}, nil
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.IngredientID)
	}
	ingredients, err := s.ingredients.GetByIDs(ctx, nil, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*types.Ingredient, len(ingredients))
	for _, ing := range ingredients {
		byID[ing.ID] = ing
	}

	out := make([]*InventoryItem, 0, len(rows))
	for _, r := range rows {
		ing := byID[r.IngredientID]
		if ing == nil {
			continue
		}
		out = append(out, &InventoryItem{
			IngredientID: r.IngredientID,
			Name:         ing.Name,
			Slug:         ing.Slug,
			InStock:      r.InStock,
			UpdatedAt:    r.UpdatedAt,
		})
	}
	return out, nil
}

func (s *inventoryService) Stats(ctx context.Context, userID uuid.UUID) (*InventoryStats, error) {
	inStock, err := s.inventory.CountInStock(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	total, err := s.ingredients.Count(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &InventoryStats{InStock: inStock, TotalIngredients: total}, nil
}
