package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/barhand/barhand-backend/internal/data/repos/catalog"
	"github.com/barhand/barhand-backend/internal/data/repos/testutil"
	types "github.com/barhand/barhand-backend/internal/domain"
	"github.com/barhand/barhand-backend/internal/pkg/apperr"
	"github.com/barhand/barhand-backend/internal/services"
)

type suggestionFixture struct {
	svc         services.SuggestionService
	ingredients catalog.IngredientRepo

	admin      *types.User
	ingredient *types.Ingredient
	category   *types.Category
	suggestion *types.CategorySuggestion
}

func newSuggestionFixture(t *testing.T, tx *gorm.DB) suggestionFixture {
	t.Helper()
	log := testutil.Logger(t)

	f := suggestionFixture{
		admin:    testutil.SeedUser(t, tx, "admin@example.com", true),
		category: testutil.SeedCategory(t, tx, "GIN"),
	}
	f.ingredient = testutil.SeedIngredient(t, tx, "Tanqueray Gin")
	if err := tx.Model(f.ingredient).Update("needs_categorization", true).Error; err != nil {
		t.Fatalf("flag ingredient: %v", err)
	}
	f.suggestion = &types.CategorySuggestion{
		ID:           uuid.New(),
		IngredientID: f.ingredient.ID,
		CategoryID:   f.category.ID,
		Status:       types.SuggestionStatusPending,
		Confidence:   0.92,
		Reasoning:    "London dry gin brand",
		CreatedAt:    time.Now(),
	}
	if err := tx.Create(f.suggestion).Error; err != nil {
		t.Fatalf("seed suggestion: %v", err)
	}

	f.ingredients = catalog.NewIngredientRepo(tx, log)
	f.svc = services.NewSuggestionService(tx,
		catalog.NewCategorySuggestionRepo(tx, log), f.ingredients, log)
	return f
}

func TestApproveAssignsCategoryAndClearsFlag(t *testing.T) {
	tx := testutil.Tx(t)
	f := newSuggestionFixture(t, tx)
	ctx := context.Background()

	out, err := f.svc.Approve(ctx, f.suggestion.ID, f.admin.ID)
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if out.Status != types.SuggestionStatusApproved {
		t.Fatalf("status: got %q, want approved", out.Status)
	}
	if out.ReviewedAt == nil || out.ReviewedByID == nil || *out.ReviewedByID != f.admin.ID {
		t.Fatalf("review metadata missing: %+v", out)
	}

	cats, err := f.ingredients.CategoriesFor(ctx, nil, f.ingredient.ID)
	if err != nil {
		t.Fatalf("CategoriesFor: %v", err)
	}
	if len(cats) != 1 || cats[0].ID != f.category.ID {
		t.Fatalf("ingredient categories after approval: got %d, want [GIN]", len(cats))
	}

	ing, err := f.ingredients.GetByID(ctx, nil, f.ingredient.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if ing.NeedsCategorization {
		t.Fatalf("needs_categorization must clear on approval")
	}
}

func TestApproveIsTerminal(t *testing.T) {
	tx := testutil.Tx(t)
	f := newSuggestionFixture(t, tx)
	ctx := context.Background()

	if _, err := f.svc.Approve(ctx, f.suggestion.ID, f.admin.ID); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if _, err := f.svc.Approve(ctx, f.suggestion.ID, f.admin.ID); !errors.Is(err, apperr.ErrInvariant) {
		t.Fatalf("second approve: got %v, want invariant violation", err)
	}
	if _, err := f.svc.Reject(ctx, f.suggestion.ID, f.admin.ID); !errors.Is(err, apperr.ErrInvariant) {
		t.Fatalf("reject after approve: got %v, want invariant violation", err)
	}
}

func TestRejectLeavesIngredientUntouched(t *testing.T) {
	tx := testutil.Tx(t)
	f := newSuggestionFixture(t, tx)
	ctx := context.Background()

	out, err := f.svc.Reject(ctx, f.suggestion.ID, f.admin.ID)
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if out.Status != types.SuggestionStatusRejected {
		t.Fatalf("status: got %q, want rejected", out.Status)
	}

	cats, err := f.ingredients.CategoriesFor(ctx, nil, f.ingredient.ID)
	if err != nil {
		t.Fatalf("CategoriesFor: %v", err)
	}
	if len(cats) != 0 {
		t.Fatalf("rejection must not assign categories, got %d", len(cats))
	}
	ing, err := f.ingredients.GetByID(ctx, nil, f.ingredient.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !ing.NeedsCategorization {
		t.Fatalf("needs_categorization must survive a rejection")
	}
}

func TestApproveUnknownSuggestion(t *testing.T) {
	tx := testutil.Tx(t)
	f := newSuggestionFixture(t, tx)

	if _, err := f.svc.Approve(context.Background(), uuid.New(), f.admin.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("unknown suggestion: got %v, want not found", err)
	}
}

func TestListPendingExcludesReviewed(t *testing.T) {
	tx := testutil.Tx(t)
	f := newSuggestionFixture(t, tx)
	ctx := context.Background()

	pending, err := f.svc.ListPending(ctx)
	if err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("want the seeded pending suggestion, got %d", len(pending))
	}

	if _, err := f.svc.Reject(ctx, f.suggestion.ID, f.admin.ID); err != nil {
		t.Fatalf("Reject: %v", err)
	}
	pending, err = f.svc.ListPending(ctx)
	if err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("reviewed suggestions must drop out of the pending list, got %d", len(pending))
	}
}
