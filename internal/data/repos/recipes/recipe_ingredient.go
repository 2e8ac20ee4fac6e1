package recipes

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/barhand/barhand-backend/internal/domain"
	"github.com/barhand/barhand-backend/internal/pkg/logger"
)

type RecipeIngredientRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.RecipeIngredient) ([]*types.RecipeIngredient, error)
	ListByRecipe(ctx context.Context, tx *gorm.DB, recipeID uuid.UUID) ([]*types.RecipeIngredient, error)
	DeleteByRecipe(ctx context.Context, tx *gorm.DB, recipeID uuid.UUID) error
}

type recipeIngredientRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRecipeIngredientRepo(db *gorm.DB, baseLog *logger.Logger) RecipeIngredientRepo {
	return &recipeIngredientRepo{db: db, log: baseLog.With("repo", "RecipeIngredientRepo")}
}

func (r *recipeIngredientRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.RecipeIngredient) ([]*types.RecipeIngredient, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.RecipeIngredient{}, nil
	}
	if err := t.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *recipeIngredientRepo) ListByRecipe(ctx context.Context, tx *gorm.DB, recipeID uuid.UUID) ([]*types.RecipeIngredient, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.RecipeIngredient
	err := t.WithContext(ctx).
		Where("recipe_id = ?", recipeID).
		Order("position ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *recipeIngredientRepo) DeleteByRecipe(ctx context.Context, tx *gorm.DB, recipeID uuid.UUID) error {
	t := tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(ctx).
		Where("recipe_id = ?", recipeID).
		Delete(&types.RecipeIngredient{}).Error
}
