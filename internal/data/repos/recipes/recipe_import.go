package recipes

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/barhand/barhand-backend/internal/domain"
	"github.com/barhand/barhand-backend/internal/pkg/logger"
)

type RecipeImportRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.RecipeImport) (*types.RecipeImport, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.RecipeImport, error)
	ListByStatus(ctx context.Context, tx *gorm.DB, status string) ([]*types.RecipeImport, error)
	Update(ctx context.Context, tx *gorm.DB, row *types.RecipeImport) error
}

type recipeImportRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRecipeImportRepo(db *gorm.DB, baseLog *logger.Logger) RecipeImportRepo {
	return &recipeImportRepo{db: db, log: baseLog.With("repo", "RecipeImportRepo")}
}

func (r *recipeImportRepo) Create(ctx context.Context, tx *gorm.DB, row *types.RecipeImport) (*types.RecipeImport, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if err := t.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *recipeImportRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.RecipeImport, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.RecipeImport
	if id == uuid.Nil {
		return nil, nil
	}
	if err := t.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *recipeImportRepo) ListByStatus(ctx context.Context, tx *gorm.DB, status string) ([]*types.RecipeImport, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	q := t.WithContext(ctx).Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []*types.RecipeImport
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *recipeImportRepo) Update(ctx context.Context, tx *gorm.DB, row *types.RecipeImport) error {
	t := tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(ctx).Save(row).Error
}
