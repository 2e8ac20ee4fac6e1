package recipes

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/barhand/barhand-backend/internal/domain"
	"github.com/barhand/barhand-backend/internal/pkg/logger"
)

type RecipeRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.Recipe) ([]*types.Recipe, error)
	Update(ctx context.Context, tx *gorm.DB, row *types.Recipe) error

	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Recipe, error)
	GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*types.Recipe, error)
	GetByNameIExact(ctx context.Context, tx *gorm.DB, name string) (*types.Recipe, error)
	SlugExists(ctx context.Context, tx *gorm.DB, slug string) (bool, error)
	Search(ctx context.Context, tx *gorm.DB, query string) ([]*types.Recipe, error)

	// MakeableByIngredientIDs returns recipes having at least one
	// non-optional line where every non-optional line's ingredient is in
	// satisfiableIDs, ordered by name.
	MakeableByIngredientIDs(ctx context.Context, tx *gorm.DB, satisfiableIDs []uuid.UUID) ([]*types.Recipe, error)
}

type recipeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRecipeRepo(db *gorm.DB, baseLog *logger.Logger) RecipeRepo {
	return &recipeRepo{db: db, log: baseLog.With("repo", "RecipeRepo")}
}

func (r *recipeRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Recipe) ([]*types.Recipe, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Recipe{}, nil
	}
	if err := t.WithContext(ctx).Omit("Lines").Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *recipeRepo) Update(ctx context.Context, tx *gorm.DB, row *types.Recipe) error {
	t := tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(ctx).Omit("Lines").Save(row).Error
}

func (r *recipeRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Recipe, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Recipe
	if id == uuid.Nil {
		return nil, nil
	}
	err := t.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("id = ?", id).Limit(1).Find(&out).Error
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *recipeRepo) GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*types.Recipe, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Recipe
	if slug == "" {
		return nil, nil
	}
	err := t.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("slug = ?", slug).Limit(1).Find(&out).Error
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *recipeRepo) GetByNameIExact(ctx context.Context, tx *gorm.DB, name string) (*types.Recipe, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Recipe
	if name == "" {
		return nil, nil
	}
	err := t.WithContext(ctx).
		Where("LOWER(name) = LOWER(?)", name).Limit(1).Find(&out).Error
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *recipeRepo) SlugExists(ctx context.Context, tx *gorm.DB, slug string) (bool, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var count int64
	err := t.WithContext(ctx).
		Model(&types.Recipe{}).
		Where("slug = ?", slug).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *recipeRepo) Search(ctx context.Context, tx *gorm.DB, query string) ([]*types.Recipe, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	q := t.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Order("name ASC")
	if s := strings.TrimSpace(query); s != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(s)+"%")
	}
	var out []*types.Recipe
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *recipeRepo) MakeableByIngredientIDs(ctx context.Context, tx *gorm.DB, satisfiableIDs []uuid.UUID) ([]*types.Recipe, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Recipe
	if len(satisfiableIDs) == 0 {
		return out, nil
	}
	sub := t.Table("recipe_ingredient ri").
		Select("ri.recipe_id").
		Where("ri.optional = ?", false).
		Group("ri.recipe_id").
		Having("SUM(CASE WHEN ri.ingredient_id IN ? THEN 0 ELSE 1 END) = 0", satisfiableIDs)
	err := t.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("id IN (?)", sub).
		Order("name ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
