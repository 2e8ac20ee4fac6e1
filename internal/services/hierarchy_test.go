package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/barhand/barhand-backend/internal/data/repos/catalog"
	"github.com/barhand/barhand-backend/internal/data/repos/testutil"
	"github.com/barhand/barhand-backend/internal/pkg/apperr"
	"github.com/barhand/barhand-backend/internal/services"
)

type hierarchyFixture struct {
	svc        services.HierarchyService
	categories catalog.CategoryRepo
	closure    catalog.CategoryClosureRepo
}

func newHierarchyFixture(t *testing.T, tx *gorm.DB) hierarchyFixture {
	t.Helper()
	log := testutil.Logger(t)
	categories := catalog.NewCategoryRepo(tx, log)
	closure := catalog.NewCategoryClosureRepo(tx, log)
	return hierarchyFixture{
		svc:        services.NewHierarchyService(tx, categories, closure, nil, log),
		categories: categories,
		closure:    closure,
	}
}

func TestCreateTopLevelWritesSelfRow(t *testing.T) {
	tx := testutil.Tx(t)
	f := newHierarchyFixture(t, tx)
	ctx := context.Background()

	cat, err := f.svc.CreateTopLevel(ctx, "SPIRITS", "base spirits")
	if err != nil {
		t.Fatalf("CreateTopLevel: %v", err)
	}
	if cat.Slug != "spirits" {
		t.Fatalf("slug: got %q, want %q", cat.Slug, "spirits")
	}

	top, err := f.closure.IsTopLevel(ctx, nil, cat.ID)
	if err != nil {
		t.Fatalf("IsTopLevel: %v", err)
	}
	if !top {
		t.Fatalf("a fresh category must have exactly its self closure row")
	}

	if _, err := f.svc.CreateTopLevel(ctx, "SPIRITS", ""); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("duplicate name: got %v, want conflict", err)
	}
}

func TestReparentRelinksSubtree(t *testing.T) {
	tx := testutil.Tx(t)
	f := newHierarchyFixture(t, tx)
	ctx := context.Background()

	spirits := testutil.SeedCategory(t, tx, "SPIRITS")
	gin := testutil.SeedCategory(t, tx, "GIN")
	london := testutil.SeedChildCategory(t, tx, "LONDON DRY GIN", gin)

	stats, err := f.svc.Reparent(ctx, gin.ID, spirits.ID)
	if err != nil {
		t.Fatalf("Reparent: %v", err)
	}
	// GIN gains SPIRITS at depth 1, LONDON DRY GIN gains it at depth 2.
	if stats.Reparented != 2 || stats.ClosureAdded != 2 {
		t.Fatalf("stats: got %+v, want 2 reparented, 2 rows added", stats)
	}

	links, err := f.closure.AncestorLinks(ctx, nil, london.ID)
	if err != nil {
		t.Fatalf("AncestorLinks: %v", err)
	}
	if len(links) != 3 {
		t.Fatalf("want 3 ancestor rows for LONDON DRY GIN, got %d", len(links))
	}
	if links[2].AncestorID != spirits.ID || links[2].Depth != 2 {
		t.Fatalf("deepest ancestor: got (%s, %d), want (SPIRITS, 2)", links[2].AncestorID, links[2].Depth)
	}
}

func TestReparentIsIdempotent(t *testing.T) {
	tx := testutil.Tx(t)
	f := newHierarchyFixture(t, tx)
	ctx := context.Background()

	spirits := testutil.SeedCategory(t, tx, "SPIRITS")
	gin := testutil.SeedCategory(t, tx, "GIN")

	if _, err := f.svc.Reparent(ctx, gin.ID, spirits.ID); err != nil {
		t.Fatalf("first Reparent: %v", err)
	}
	before, err := f.closure.CountAll(ctx, nil)
	if err != nil {
		t.Fatalf("CountAll: %v", err)
	}

	stats, err := f.svc.Reparent(ctx, gin.ID, spirits.ID)
	if err != nil {
		t.Fatalf("second Reparent: %v", err)
	}
	if stats.Reparented != 0 || stats.ClosureAdded != 0 {
		t.Fatalf("second run must be a no-op, got %+v", stats)
	}

	after, err := f.closure.CountAll(ctx, nil)
	if err != nil {
		t.Fatalf("CountAll: %v", err)
	}
	if before != after {
		t.Fatalf("closure row count changed on re-run: %d -> %d", before, after)
	}
}

func TestReparentRejectsSelfAndUnknown(t *testing.T) {
	tx := testutil.Tx(t)
	f := newHierarchyFixture(t, tx)
	ctx := context.Background()

	gin := testutil.SeedCategory(t, tx, "GIN")

	if _, err := f.svc.Reparent(ctx, gin.ID, gin.ID); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("self-parent: got %v, want validation error", err)
	}
	if _, err := f.svc.Reparent(ctx, gin.ID, uuid.New()); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("unknown parent: got %v, want not found", err)
	}
	if _, err := f.svc.Reparent(ctx, uuid.New(), gin.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("unknown category: got %v, want not found", err)
	}
}

func TestFixHierarchyDryRunLeavesNoTrace(t *testing.T) {
	tx := testutil.Tx(t)
	f := newHierarchyFixture(t, tx)
	ctx := context.Background()

	testutil.SeedCategory(t, tx, "GIN")
	before, err := f.closure.CountAll(ctx, nil)
	if err != nil {
		t.Fatalf("CountAll: %v", err)
	}

	report, err := f.svc.FixHierarchy(ctx, map[string][]string{"SPIRITS": {"GIN", "VODKA"}}, true)
	if err != nil {
		t.Fatalf("FixHierarchy dry run: %v", err)
	}
	if !report.DryRun {
		t.Fatalf("report must be flagged as dry run")
	}
	if len(report.ParentsCreated) != 1 || report.ParentsCreated[0] != "SPIRITS" {
		t.Fatalf("ParentsCreated: got %v, want [SPIRITS]", report.ParentsCreated)
	}
	if len(report.Missing) != 1 || report.Missing[0] != "VODKA" {
		t.Fatalf("Missing: got %v, want [VODKA]", report.Missing)
	}
	if report.Reparented == 0 {
		t.Fatalf("dry run must still report the work it would do")
	}

	after, err := f.closure.CountAll(ctx, nil)
	if err != nil {
		t.Fatalf("CountAll: %v", err)
	}
	if before != after {
		t.Fatalf("dry run changed closure rows: %d -> %d", before, after)
	}
	parent, err := f.categories.GetByNameIExact(ctx, nil, "SPIRITS")
	if err != nil {
		t.Fatalf("GetByNameIExact: %v", err)
	}
	if parent != nil {
		t.Fatalf("dry run must not persist the created parent")
	}
}

func TestFixHierarchyApplies(t *testing.T) {
	tx := testutil.Tx(t)
	f := newHierarchyFixture(t, tx)
	ctx := context.Background()

	gin := testutil.SeedCategory(t, tx, "GIN")

	report, err := f.svc.FixHierarchy(ctx, map[string][]string{"SPIRITS": {"gin"}}, false)
	if err != nil {
		t.Fatalf("FixHierarchy: %v", err)
	}
	if len(report.ParentsCreated) != 1 || report.ClosureAdded != 1 {
		t.Fatalf("report: got %+v, want one parent created and one closure row", report)
	}

	parent, err := f.categories.GetByNameIExact(ctx, nil, "SPIRITS")
	if err != nil {
		t.Fatalf("GetByNameIExact: %v", err)
	}
	if parent == nil {
		t.Fatalf("parent SPIRITS must exist after apply")
	}
	edge, err := f.closure.HasParentEdge(ctx, nil, gin.ID, parent.ID)
	if err != nil {
		t.Fatalf("HasParentEdge: %v", err)
	}
	if !edge {
		t.Fatalf("child lookup is case-insensitive: gin must sit under SPIRITS")
	}
}
