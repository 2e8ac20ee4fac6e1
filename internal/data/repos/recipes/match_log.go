package recipes

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/barhand/barhand-backend/internal/domain"
	"github.com/barhand/barhand-backend/internal/pkg/logger"
)

type IngredientMatchLogRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.IngredientMatchLog) ([]*types.IngredientMatchLog, error)
	ListByImport(ctx context.Context, tx *gorm.DB, importID uuid.UUID) ([]*types.IngredientMatchLog, error)
}

type ingredientMatchLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewIngredientMatchLogRepo(db *gorm.DB, baseLog *logger.Logger) IngredientMatchLogRepo {
	return &ingredientMatchLogRepo{db: db, log: baseLog.With("repo", "IngredientMatchLogRepo")}
}

func (r *ingredientMatchLogRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.IngredientMatchLog) ([]*types.IngredientMatchLog, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.IngredientMatchLog{}, nil
	}
	if err := t.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ingredientMatchLogRepo) ListByImport(ctx context.Context, tx *gorm.DB, importID uuid.UUID) ([]*types.IngredientMatchLog, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.IngredientMatchLog
	err := t.WithContext(ctx).
		Where("recipe_import_id = ?", importID).
		Order("created_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
