package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/barhand/barhand-backend/internal/domain"
	"github.com/barhand/barhand-backend/internal/pkg/logger"
)

// CategoryClosureRepo exposes the closure-table primitives. All reads are
// single queries over the materialized closure; correctness depends on the
// hierarchy service keeping the table exhaustive on every mutation.
type CategoryClosureRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.CategoryClosure) error

	// Ancestors returns the ancestor chain of categoryID ordered by
	// increasing depth (self first when includeSelf).
	Ancestors(ctx context.Context, tx *gorm.DB, categoryID uuid.UUID, includeSelf bool) ([]*types.Category, error)
	// AncestorLinks returns the raw closure rows for categoryID ordered by depth.
	AncestorLinks(ctx context.Context, tx *gorm.DB, categoryID uuid.UUID) ([]*types.CategoryClosure, error)
	Descendants(ctx context.Context, tx *gorm.DB, categoryID uuid.UUID, includeSelf bool) ([]*types.Category, error)
	// DescendantLinks returns the closure rows whose ancestor is ancestorID.
	DescendantLinks(ctx context.Context, tx *gorm.DB, ancestorID uuid.UUID) ([]*types.CategoryClosure, error)
	DirectChildren(ctx context.Context, tx *gorm.DB, categoryID uuid.UUID) ([]*types.Category, error)
	// IsTopLevel is true iff the category's only closure row is its self row.
	IsTopLevel(ctx context.Context, tx *gorm.DB, categoryID uuid.UUID) (bool, error)
	TopLevelCategories(ctx context.Context, tx *gorm.DB) ([]*types.Category, error)

	HasParentEdge(ctx context.Context, tx *gorm.DB, categoryID, parentID uuid.UUID) (bool, error)
	// PairsFor returns every existing closure row whose category is in
	// categoryIDs, for duplicate-free bulk inserts during reparenting.
	PairsFor(ctx context.Context, tx *gorm.DB, categoryIDs []uuid.UUID) ([]*types.CategoryClosure, error)

	// AncestorIDsWithin returns the distinct ancestors of the given
	// categories at depth <= maxDepth (depth measured from each category).
	AncestorIDsWithin(ctx context.Context, tx *gorm.DB, categoryIDs []uuid.UUID, maxDepth int) ([]uuid.UUID, error)
	// DescendantIDsOf returns the distinct categories having any of the
	// given ancestors (self rows included).
	DescendantIDsOf(ctx context.Context, tx *gorm.DB, ancestorIDs []uuid.UUID) ([]uuid.UUID, error)

	CountAll(ctx context.Context, tx *gorm.DB) (int64, error)
}

type categoryClosureRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCategoryClosureRepo(db *gorm.DB, baseLog *logger.Logger) CategoryClosureRepo {
	return &categoryClosureRepo{db: db, log: baseLog.With("repo", "CategoryClosureRepo")}
}

func (r *categoryClosureRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.CategoryClosure) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return nil
	}
	return t.WithContext(ctx).Create(&rows).Error
}

func (r *categoryClosureRepo) Ancestors(ctx context.Context, tx *gorm.DB, categoryID uuid.UUID, includeSelf bool) ([]*types.Category, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	minDepth := 1
	if includeSelf {
		minDepth = 0
	}
	var out []*types.Category
	err := t.WithContext(ctx).
		Table("category").
		Joins("JOIN category_closure cc ON cc.ancestor_id = category.id").
		Where("cc.category_id = ? AND cc.depth >= ?", categoryID, minDepth).
		Order("cc.depth ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *categoryClosureRepo) AncestorLinks(ctx context.Context, tx *gorm.DB, categoryID uuid.UUID) ([]*types.CategoryClosure, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.CategoryClosure
	err := t.WithContext(ctx).
		Where("category_id = ?", categoryID).
		Order("depth ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *categoryClosureRepo) Descendants(ctx context.Context, tx *gorm.DB, categoryID uuid.UUID, includeSelf bool) ([]*types.Category, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	minDepth := 1
	if includeSelf {
		minDepth = 0
	}
	var out []*types.Category
	err := t.WithContext(ctx).
		Table("category").
		Joins("JOIN category_closure cc ON cc.category_id = category.id").
		Where("cc.ancestor_id = ? AND cc.depth >= ?", categoryID, minDepth).
		Order("cc.depth ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *categoryClosureRepo) DescendantLinks(ctx context.Context, tx *gorm.DB, ancestorID uuid.UUID) ([]*types.CategoryClosure, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.CategoryClosure
	err := t.WithContext(ctx).
		Where("ancestor_id = ?", ancestorID).
		Order("depth ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *categoryClosureRepo) DirectChildren(ctx context.Context, tx *gorm.DB, categoryID uuid.UUID) ([]*types.Category, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Category
	err := t.WithContext(ctx).
		Table("category").
		Joins("JOIN category_closure cc ON cc.category_id = category.id").
		Where("cc.ancestor_id = ? AND cc.depth = 1", categoryID).
		Order("category.name ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *categoryClosureRepo) IsTopLevel(ctx context.Context, tx *gorm.DB, categoryID uuid.UUID) (bool, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var count int64
	err := t.WithContext(ctx).
		Model(&types.CategoryClosure{}).
		Where("category_id = ?", categoryID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count == 1, nil
}

func (r *categoryClosureRepo) TopLevelCategories(ctx context.Context, tx *gorm.DB) ([]*types.Category, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Category
	err := t.WithContext(ctx).
		Table("category").
		Where("id IN (?)", t.Table("category_closure").
			Select("category_id").
			Group("category_id").
			Having("COUNT(*) = 1")).
		Order("name ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *categoryClosureRepo) HasParentEdge(ctx context.Context, tx *gorm.DB, categoryID, parentID uuid.UUID) (bool, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var count int64
	err := t.WithContext(ctx).
		Model(&types.CategoryClosure{}).
		Where("category_id = ? AND ancestor_id = ? AND depth = 1", categoryID, parentID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *categoryClosureRepo) PairsFor(ctx context.Context, tx *gorm.DB, categoryIDs []uuid.UUID) ([]*types.CategoryClosure, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.CategoryClosure
	if len(categoryIDs) == 0 {
		return out, nil
	}
	err := t.WithContext(ctx).
		Where("category_id IN ?", categoryIDs).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *categoryClosureRepo) AncestorIDsWithin(ctx context.Context, tx *gorm.DB, categoryIDs []uuid.UUID, maxDepth int) ([]uuid.UUID, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []uuid.UUID
	if len(categoryIDs) == 0 || maxDepth < 0 {
		return out, nil
	}
	err := t.WithContext(ctx).
		Raw("SELECT DISTINCT ancestor_id FROM category_closure WHERE category_id IN ? AND depth <= ?", categoryIDs, maxDepth).
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *categoryClosureRepo) DescendantIDsOf(ctx context.Context, tx *gorm.DB, ancestorIDs []uuid.UUID) ([]uuid.UUID, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []uuid.UUID
	if len(ancestorIDs) == 0 {
		return out, nil
	}
	err := t.WithContext(ctx).
		Raw("SELECT DISTINCT category_id FROM category_closure WHERE ancestor_id IN ?", ancestorIDs).
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *categoryClosureRepo) CountAll(ctx context.Context, tx *gorm.DB) (int64, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var count int64
	err := t.WithContext(ctx).Model(&types.CategoryClosure{}).Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
