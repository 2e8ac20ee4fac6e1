package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/barhand/barhand-backend/internal/domain"
	"github.com/barhand/barhand-backend/internal/pkg/logger"
)

type CategorySuggestionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.CategorySuggestion) ([]*types.CategorySuggestion, error)

	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.CategorySuggestion, error)
	// GetByIDForUpdate locks the row for the span of tx.
	GetByIDForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.CategorySuggestion, error)
	PendingExists(ctx context.Context, tx *gorm.DB, ingredientID, categoryID uuid.UUID) (bool, error)
	ListPending(ctx context.Context, tx *gorm.DB) ([]*types.CategorySuggestion, error)
	ListByIngredient(ctx context.Context, tx *gorm.DB, ingredientID uuid.UUID) ([]*types.CategorySuggestion, error)

	Update(ctx context.Context, tx *gorm.DB, row *types.CategorySuggestion) error
}

type categorySuggestionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCategorySuggestionRepo(db *gorm.DB, baseLog *logger.Logger) CategorySuggestionRepo {
	return &categorySuggestionRepo{db: db, log: baseLog.With("repo", "CategorySuggestionRepo")}
}

func (r *categorySuggestionRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.CategorySuggestion) ([]*types.CategorySuggestion, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.CategorySuggestion{}, nil
	}
	if err := t.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *categorySuggestionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.CategorySuggestion, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.CategorySuggestion
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

func (r *categorySuggestionRepo) GetByIDForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.CategorySuggestion, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.CategorySuggestion
	if id == uuid.Nil {
		return nil, nil
	}
	q := t.WithContext(ctx)
	// sqlite (test driver) has no row locks; the per-test transaction is
	// exclusive anyway.
	if t.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := q.Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *categorySuggestionRepo) PendingExists(ctx context.Context, tx *gorm.DB, ingredientID, categoryID uuid.UUID) (bool, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var count int64
	err := t.WithContext(ctx).
		Model(&types.CategorySuggestion{}).
		Where("ingredient_id = ? AND category_id = ? AND status = ?", ingredientID, categoryID, types.SuggestionStatusPending).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *categorySuggestionRepo) ListPending(ctx context.Context, tx *gorm.DB) ([]*types.CategorySuggestion, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.CategorySuggestion
	err := t.WithContext(ctx).
		Where("status = ?", types.SuggestionStatusPending).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *categorySuggestionRepo) ListByIngredient(ctx context.Context, tx *gorm.DB, ingredientID uuid.UUID) ([]*types.CategorySuggestion, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.CategorySuggestion
	err := t.WithContext(ctx).
		Where("ingredient_id = ?", ingredientID).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *categorySuggestionRepo) Update(ctx context.Context, tx *gorm.DB, row *types.CategorySuggestion) error {
	t := tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(ctx).Save(row).Error
}
