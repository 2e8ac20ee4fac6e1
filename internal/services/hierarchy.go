package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/barhand/barhand-backend/internal/clients/redis"
	"github.com/barhand/barhand-backend/internal/data/repos/catalog"
	types "github.com/barhand/barhand-backend/internal/domain"
	"github.com/barhand/barhand-backend/internal/pkg/apperr"
	"github.com/barhand/barhand-backend/internal/pkg/logger"
	"github.com/barhand/barhand-backend/internal/utils"
)

const categorySlugMaxLen = 120

// errDryRunRollback aborts a FixHierarchy transaction after a dry run so the
// store is left untouched. Never returned to callers.
var errDryRunRollback = errors.New("hierarchy dry run rollback")

// ReparentStats reports what one reparent operation touched.
type ReparentStats struct {
	Reparented   int `json:"reparented"`
	ClosureAdded int `json:"closure_rows_added"`
}

func (s *ReparentStats) add(o *ReparentStats) {
	s.Reparented += o.Reparented
	s.ClosureAdded += o.ClosureAdded
}

// FixHierarchyReport summarizes a bulk corrective run.
type FixHierarchyReport struct {
	DryRun         bool     `json:"dry_run"`
	ParentsCreated []string `json:"parents_created"`
	Missing        []string `json:"missing"`
	Reparented     int      `json:"reparented"`
	ClosureAdded   int      `json:"closure_rows_added"`
}

// HierarchyService maintains the category closure table. Reparenting is
// designed for one-time corrective bulk operations: it never removes closure
// rows, so reparenting the same category twice to different parents leaves
// stale ancestor rows from the first position behind.
type HierarchyService interface {
	CreateTopLevel(ctx context.Context, name, description string) (*types.Category, error)
	Reparent(ctx context.Context, categoryID, newParentID uuid.UUID) (*ReparentStats, error)
	// FixHierarchy reparents children (by case-insensitive name) under their
	// listed parent, creating missing top-level parents. With dryRun the
	// whole transaction is rolled back and only the report is returned.
	FixHierarchy(ctx context.Context, plan map[string][]string, dryRun bool) (*FixHierarchyReport, error)
}

type hierarchyService struct {
	db         *gorm.DB
	categories catalog.CategoryRepo
	closure    catalog.CategoryClosureRepo
	cache      redis.MatchCache
	log        *logger.Logger
}

func NewHierarchyService(
	db *gorm.DB,
	categories catalog.CategoryRepo,
	closure catalog.CategoryClosureRepo,
	cache redis.MatchCache,
	baseLog *logger.Logger,
) HierarchyService {
	return &hierarchyService{
		db:         db,
		categories: categories,
		closure:    closure,
		cache:      cache,
		log:        baseLog.With("service", "HierarchyService"),
	}
}

func (s *hierarchyService) CreateTopLevel(ctx context.Context, name, description string) (*types.Category, error) {
	if name == "" {
		return nil, apperr.Validation("category name required")
	}

	cat := &types.Category{
		ID:          uuid.New(),
		Name:        name,
		Slug:        utils.Slugify(name, categorySlugMaxLen),
		Description: description,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.createTopLevelInTx(ctx, tx, cat)
	})
	if err != nil {
		if apperr.IsUniqueViolation(err) {
			return nil, apperr.Conflict(fmt.Sprintf("category %q already exists", name))
		}
		return nil, err
	}

	s.log.Info("Created top-level category", "category_id", cat.ID, "name", cat.Name)
	return cat, nil
}

func (s *hierarchyService) createTopLevelInTx(ctx context.Context, tx *gorm.DB, cat *types.Category) error {
	if _, err := s.categories.Create(ctx, tx, []*types.Category{cat}); err != nil {
		return err
	}
	self := &types.CategoryClosure{CategoryID: cat.ID, AncestorID: cat.ID, Depth: 0}
	return s.closure.Create(ctx, tx, []*types.CategoryClosure{self})
}

func (s *hierarchyService) Reparent(ctx context.Context, categoryID, newParentID uuid.UUID) (*ReparentStats, error) {
	var stats *ReparentStats
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		stats, err = s.reparentInTx(ctx, tx, categoryID, newParentID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if stats.ClosureAdded > 0 {
		s.invalidateMatchSets(ctx)
	}
	return stats, nil
}

// reparentInTx relinks categoryID (and its whole subtree) under newParentID.
// Inserts are idempotent: an existing (category, ancestor) pair is never
// overwritten, so re-running the operation adds nothing.
func (s *hierarchyService) reparentInTx(ctx context.Context, tx *gorm.DB, categoryID, newParentID uuid.UUID) (*ReparentStats, error) {
	if categoryID == newParentID {
		return nil, apperr.Validation("category cannot be its own parent")
	}

	cat, err := s.categories.GetByID(ctx, tx, categoryID)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, apperr.NotFound(fmt.Sprintf("category %s", categoryID))
	}
	parent, err := s.categories.GetByID(ctx, tx, newParentID)
	if err != nil {
		return nil, err
	}
	if parent == nil {
		return nil, apperr.NotFound(fmt.Sprintf("parent category %s", newParentID))
	}

	already, err := s.closure.HasParentEdge(ctx, tx, categoryID, newParentID)
	if err != nil {
		return nil, err
	}
	if already {
		return &ReparentStats{}, nil
	}

	// Subtree of C, depths relative to C (self row at 0).
	descendants, err := s.closure.DescendantLinks(ctx, tx, categoryID)
	if err != nil {
		return nil, err
	}
	// P's ancestor chain, depths relative to P (self row at 0).
	parentChain, err := s.closure.AncestorLinks(ctx, tx, newParentID)
	if err != nil {
		return nil, err
	}

	descendantIDs := make([]uuid.UUID, 0, len(descendants))
	for _, d := range descendants {
		descendantIDs = append(descendantIDs, d.CategoryID)
	}
	existing, err := s.closure.PairsFor(ctx, tx, descendantIDs)
	if err != nil {
		return nil, err
	}
	type pair struct{ category, ancestor uuid.UUID }
	seen := make(map[pair]bool, len(existing))
	for _, row := range existing {
		seen[pair{row.CategoryID, row.AncestorID}] = true
	}

	var newRows []*types.CategoryClosure
	for _, d := range descendants {
		base := d.Depth
		for _, a := range parentChain {
			p := pair{d.CategoryID, a.AncestorID}
			if seen[p] {
				continue
			}
			seen[p] = true
			newRows = append(newRows, &types.CategoryClosure{
				CategoryID: d.CategoryID,
				AncestorID: a.AncestorID,
				Depth:      base + 1 + a.Depth,
			})
		}
	}

	if err := s.closure.Create(ctx, tx, newRows); err != nil {
		return nil, err
	}

	s.log.Info("Reparented category",
		"category", cat.Name,
		"parent", parent.Name,
		"subtree_size", len(descendants),
		"closure_rows_added", len(newRows),
	)
	return &ReparentStats{Reparented: len(descendants), ClosureAdded: len(newRows)}, nil
}

func (s *hierarchyService) FixHierarchy(ctx context.Context, plan map[string][]string, dryRun bool) (*FixHierarchyReport, error) {
	if len(plan) == 0 {
		return nil, apperr.Validation("empty hierarchy plan")
	}

	report := &FixHierarchyReport{
		DryRun:         dryRun,
		ParentsCreated: []string{},
		Missing:        []string{},
	}

	parents := make([]string, 0, len(plan))
	for name := range plan {
		parents = append(parents, name)
	}
	sort.Strings(parents)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, parentName := range parents {
			parent, err := s.categories.GetByNameIExact(ctx, tx, parentName)
			if err != nil {
				return err
			}
			if parent == nil {
				parent = &types.Category{
					ID:   uuid.New(),
					Name: parentName,
					Slug: utils.Slugify(parentName, categorySlugMaxLen),
				}
				if err := s.createTopLevelInTx(ctx, tx, parent); err != nil {
					return err
				}
				report.ParentsCreated = append(report.ParentsCreated, parentName)
			}

			for _, childName := range plan[parentName] {
				child, err := s.categories.GetByNameIExact(ctx, tx, childName)
				if err != nil {
					return err
				}
				if child == nil {
					report.Missing = append(report.Missing, childName)
					continue
				}
				stats, err := s.reparentInTx(ctx, tx, child.ID, parent.ID)
				if err != nil {
					return err
				}
				report.Reparented += stats.Reparented
				report.ClosureAdded += stats.ClosureAdded
			}
		}
		if dryRun {
			// Returning the sentinel rolls the transaction back while the
			// populated report survives in the closure.
			return errDryRunRollback
		}
		return nil
	})
	if err != nil && !errors.Is(err, errDryRunRollback) {
		return nil, err
	}

	if dryRun {
		s.log.Info("Hierarchy fix dry run",
			"parents_created", len(report.ParentsCreated),
			"closure_rows_added", report.ClosureAdded,
		)
		return report, nil
	}

	if report.ClosureAdded > 0 || len(report.ParentsCreated) > 0 {
		s.invalidateMatchSets(ctx)
	}
	return report, nil
}

func (s *hierarchyService) invalidateMatchSets(ctx context.Context) {
	if s.cache == nil {
		return
	}
	cctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := s.cache.InvalidateAll(cctx); err != nil {
		s.log.Warn("Match-set cache invalidation failed", "error", err)
	}
}
