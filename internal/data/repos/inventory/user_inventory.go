package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/barhand/barhand-backend/internal/domain"
	"github.com/barhand/barhand-backend/internal/pkg/logger"
)

type UserInventoryRepo interface {
	// Upsert sets the in_stock flag for (userID, ingredientID), creating the
	// row if it does not exist.
	Upsert(ctx context.Context, tx *gorm.DB, userID, ingredientID uuid.UUID, inStock bool) (*types.UserInventory, error)

	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.UserInventory, error)
	InStockIngredientIDs(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]uuid.UUID, error)
	CountInStock(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error)
}

type userInventoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserInventoryRepo(db *gorm.DB, baseLog *logger.Logger) UserInventoryRepo {
	return &userInventoryRepo{db: db, log: baseLog.With("repo", "UserInventoryRepo")}
}

func (r *userInventoryRepo) Upsert(ctx context.Context, tx *gorm.DB, userID, ingredientID uuid.UUID, inStock bool) (*types.UserInventory, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var existing []*types.UserInventory
	err := t.WithContext(ctx).
		Where("user_id = ? AND ingredient_id = ?", userID, ingredientID).
		Limit(1).Find(&existing).Error
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		row := existing[0]
		row.InStock = inStock
		row.UpdatedAt = time.Now()
		if err := t.WithContext(ctx).Save(row).Error; err != nil {
			return nil, err
		}
		return row, nil
	}
	row := &types.UserInventory{
		ID:           uuid.New(),
		UserID:       userID,
		IngredientID: ingredientID,
		InStock:      inStock,
		UpdatedAt:    time.Now(),
	}
	if err := t.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *userInventoryRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.UserInventory, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.UserInventory
	err := t.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *userInventoryRepo) InStockIngredientIDs(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]uuid.UUID, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []uuid.UUID
	err := t.WithContext(ctx).
		Raw("SELECT ingredient_id FROM user_inventory WHERE user_id = ? AND in_stock = ?", userID, true).
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *userInventoryRepo) CountInStock(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var count int64
	err := t.WithContext(ctx).
		Model(&types.UserInventory{}).
		Where("user_id = ? AND in_stock = ?", userID, true).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
