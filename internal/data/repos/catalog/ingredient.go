package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/barhand/barhand-backend/internal/domain"
	"github.com/barhand/barhand-backend/internal/pkg/logger"
)

type IngredientRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.Ingredient) ([]*types.Ingredient, error)

	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Ingredient, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Ingredient, error)
	GetByNameIExact(ctx context.Context, tx *gorm.DB, name string) (*types.Ingredient, error)
	GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*types.Ingredient, error)
	List(ctx context.Context, tx *gorm.DB) ([]*types.Ingredient, error)
	ListNeedingCategorization(ctx context.Context, tx *gorm.DB, limit int) ([]*types.Ingredient, error)
	Count(ctx context.Context, tx *gorm.DB) (int64, error)

	// AddCategory assigns categoryID to the ingredient; assigning an
	// already-present category is a no-op.
	AddCategory(ctx context.Context, tx *gorm.DB, ingredientID, categoryID uuid.UUID) error
	CategoriesFor(ctx context.Context, tx *gorm.DB, ingredientID uuid.UUID) ([]*types.Category, error)
	// CategoryIDsFor returns the distinct directly-assigned category IDs of
	// the given ingredients.
	CategoryIDsFor(ctx context.Context, tx *gorm.DB, ingredientIDs []uuid.UUID) ([]uuid.UUID, error)
	// IDsWithAnyCategory returns the distinct ingredients directly assigned
	// to any of the given categories.
	IDsWithAnyCategory(ctx context.Context, tx *gorm.DB, categoryIDs []uuid.UUID) ([]uuid.UUID, error)

	SetNeedsCategorization(ctx context.Context, tx *gorm.DB, id uuid.UUID, needs bool) error
}

type ingredientRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewIngredientRepo(db *gorm.DB, baseLog *logger.Logger) IngredientRepo {
	return &ingredientRepo{db: db, log: baseLog.With("repo", "IngredientRepo")}
}

func (r *ingredientRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Ingredient) ([]*types.Ingredient, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Ingredient{}, nil
	}
	if err := t.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ingredientRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Ingredient, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	rows, err := r.GetByIDs(ctx, tx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *ingredientRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Ingredient, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Ingredient
	if len(ids) == 0 {
		return out, nil
	}
	if err := t.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ingredientRepo) GetByNameIExact(ctx context.Context, tx *gorm.DB, name string) (*types.Ingredient, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Ingredient
	if name == "" {
		return nil, nil
	}
	if err := t.WithContext(ctx).Where("LOWER(name) = LOWER(?)", name).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *ingredientRepo) GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*types.Ingredient, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Ingredient
	if slug == "" {
		return nil, nil
	}
	if err := t.WithContext(ctx).Where("slug = ?", slug).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *ingredientRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.Ingredient, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Ingredient
	if err := t.WithContext(ctx).Order("name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ingredientRepo) ListNeedingCategorization(ctx context.Context, tx *gorm.DB, limit int) ([]*types.Ingredient, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	q := t.WithContext(ctx).Where("needs_categorization = ?", true).Order("name ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []*types.Ingredient
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ingredientRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var count int64
	if err := t.WithContext(ctx).Model(&types.Ingredient{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ingredientRepo) AddCategory(ctx context.Context, tx *gorm.DB, ingredientID, categoryID uuid.UUID) error {
	t := tx
	if t == nil {
		t = r.db
	}
	row := &types.IngredientCategory{IngredientID: ingredientID, CategoryID: categoryID}
	return t.WithContext(ctx).
		Where("ingredient_id = ? AND category_id = ?", ingredientID, categoryID).
		FirstOrCreate(row).Error
}

func (r *ingredientRepo) CategoriesFor(ctx context.Context, tx *gorm.DB, ingredientID uuid.UUID) ([]*types.Category, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Category
	err := t.WithContext(ctx).
		Table("category").
		Joins("JOIN ingredient_category ic ON ic.category_id = category.id").
		Where("ic.ingredient_id = ?", ingredientID).
		Order("category.name ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ingredientRepo) CategoryIDsFor(ctx context.Context, tx *gorm.DB, ingredientIDs []uuid.UUID) ([]uuid.UUID, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []uuid.UUID
	if len(ingredientIDs) == 0 {
		return out, nil
	}
	err := t.WithContext(ctx).
		Raw("SELECT DISTINCT category_id FROM ingredient_category WHERE ingredient_id IN ?", ingredientIDs).
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ingredientRepo) IDsWithAnyCategory(ctx context.Context, tx *gorm.DB, categoryIDs []uuid.UUID) ([]uuid.UUID, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []uuid.UUID
	if len(categoryIDs) == 0 {
		return out, nil
	}
	err := t.WithContext(ctx).
		Raw("SELECT DISTINCT ingredient_id FROM ingredient_category WHERE category_id IN ?", categoryIDs).
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ingredientRepo) SetNeedsCategorization(ctx context.Context, tx *gorm.DB, id uuid.UUID, needs bool) error {
	t := tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(ctx).
		Model(&types.Ingredient{}).
		Where("id = ?", id).
		Update("needs_categorization", needs).Error
}
