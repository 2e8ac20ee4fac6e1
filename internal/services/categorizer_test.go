package services_test

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/barhand/barhand-backend/internal/data/repos/catalog"
	"github.com/barhand/barhand-backend/internal/data/repos/testutil"
	types "github.com/barhand/barhand-backend/internal/domain"
	"github.com/barhand/barhand-backend/internal/services"
)

// scriptedLLM returns queued structured responses in order.
type scriptedLLM struct {
	responses []map[string]any
	calls     int
}

func (s *scriptedLLM) GenerateJSON(_ context.Context, _, _ string, _ map[string]any) (map[string]any, error) {
	if s.calls >= len(s.responses) {
		return map[string]any{"category_slug": nil, "confidence": 0.0, "reasoning": "out of script"}, nil
	}
	out := s.responses[s.calls]
	s.calls++
	return out, nil
}

func (s *scriptedLLM) GenerateJSONWithImages(ctx context.Context, system, user string, _ [][]byte, schema map[string]any) (map[string]any, error) {
	return s.GenerateJSON(ctx, system, user, schema)
}

func (s *scriptedLLM) GenerateText(context.Context, string, string) (string, error) {
	return "", nil
}

func pick(slug string, confidence float64) map[string]any {
	return map[string]any{"category_slug": slug, "confidence": confidence, "reasoning": "scripted"}
}

type categorizerFixture struct {
	svc         services.CategorizerService
	llm         *scriptedLLM
	suggestions catalog.CategorySuggestionRepo

	spirits *types.Category
	gin     *types.Category
	tanq    *types.Ingredient
}

func newCategorizerFixture(t *testing.T, tx *gorm.DB, llm *scriptedLLM) categorizerFixture {
	t.Helper()
	log := testutil.Logger(t)

	f := categorizerFixture{llm: llm}
	f.spirits = testutil.SeedCategory(t, tx, "SPIRITS")
	f.gin = testutil.SeedChildCategory(t, tx, "GIN", f.spirits)
	f.tanq = testutil.SeedIngredient(t, tx, "Tanqueray Gin")
	if err := tx.Model(f.tanq).Update("needs_categorization", true).Error; err != nil {
		t.Fatalf("flag ingredient: %v", err)
	}

	f.suggestions = catalog.NewCategorySuggestionRepo(tx, log)
	f.svc = services.NewCategorizerService(llm,
		catalog.NewCategoryRepo(tx, log),
		catalog.NewCategoryClosureRepo(tx, log),
		catalog.NewIngredientRepo(tx, log),
		f.suggestions,
		0.3, 5, log)
	return f
}

func TestCategorizeDrillsDownToLeaf(t *testing.T) {
	tx := testutil.Tx(t)
	f := newCategorizerFixture(t, tx, &scriptedLLM{responses: []map[string]any{
		pick("spirits", 0.8),
		pick("gin", 0.95),
	}})
	ctx := context.Background()

	sug, err := f.svc.CategorizeIngredient(ctx, f.tanq.ID)
	if err != nil {
		t.Fatalf("CategorizeIngredient: %v", err)
	}
	if sug == nil {
		t.Fatalf("expected a suggestion")
	}
	if sug.CategoryID != f.gin.ID {
		t.Fatalf("drill-down must land on the leaf: got %s, want GIN", sug.CategoryID)
	}
	if sug.Confidence != 0.95 {
		t.Fatalf("confidence follows the final pick: got %v", sug.Confidence)
	}
	if sug.Status != types.SuggestionStatusPending {
		t.Fatalf("suggestions are created pending, got %q", sug.Status)
	}
	// Top-level pick plus one refinement; GIN has no children to descend into.
	if f.llm.calls != 2 {
		t.Fatalf("model calls: got %d, want 2", f.llm.calls)
	}
}

func TestCategorizeParentSentinelStaysAtCurrentLevel(t *testing.T) {
	tx := testutil.Tx(t)
	f := newCategorizerFixture(t, tx, &scriptedLLM{responses: []map[string]any{
		pick("spirits", 0.8),
		pick("parent", 0.7),
	}})

	sug, err := f.svc.CategorizeIngredient(context.Background(), f.tanq.ID)
	if err != nil {
		t.Fatalf("CategorizeIngredient: %v", err)
	}
	if sug == nil || sug.CategoryID != f.spirits.ID {
		t.Fatalf("the parent sentinel keeps the current category, got %+v", sug)
	}
	if sug.Confidence != 0.8 {
		t.Fatalf("sentinel refinements must not override confidence, got %v", sug.Confidence)
	}
}

func TestCategorizeLowConfidenceCreatesNothing(t *testing.T) {
	tx := testutil.Tx(t)
	f := newCategorizerFixture(t, tx, &scriptedLLM{responses: []map[string]any{
		pick("spirits", 0.8),
		pick("gin", 0.1),
	}})
	ctx := context.Background()

	sug, err := f.svc.CategorizeIngredient(ctx, f.tanq.ID)
	if err != nil {
		t.Fatalf("CategorizeIngredient: %v", err)
	}
	if sug != nil {
		t.Fatalf("confidence below the floor must not create a suggestion")
	}
	rows, err := f.suggestions.ListByIngredient(ctx, nil, f.tanq.ID)
	if err != nil {
		t.Fatalf("ListByIngredient: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("no suggestion rows expected, got %d", len(rows))
	}
}

func TestCategorizeNoMatch(t *testing.T) {
	tx := testutil.Tx(t)
	f := newCategorizerFixture(t, tx, &scriptedLLM{responses: []map[string]any{
		{"category_slug": nil, "confidence": 0.9, "reasoning": "not a drink ingredient"},
	}})

	sug, err := f.svc.CategorizeIngredient(context.Background(), f.tanq.ID)
	if err != nil {
		t.Fatalf("CategorizeIngredient: %v", err)
	}
	if sug != nil {
		t.Fatalf("a null pick means no suggestion, got %+v", sug)
	}
}

func TestCategorizeUnknownSlugIsSafe(t *testing.T) {
	tx := testutil.Tx(t)
	f := newCategorizerFixture(t, tx, &scriptedLLM{responses: []map[string]any{
		pick("made-up-slug", 0.9),
	}})

	sug, err := f.svc.CategorizeIngredient(context.Background(), f.tanq.ID)
	if err != nil {
		t.Fatalf("hallucinated slugs must not error: %v", err)
	}
	if sug != nil {
		t.Fatalf("hallucinated slugs must not create suggestions")
	}
}

func TestCategorizeSkipsWhenPendingExists(t *testing.T) {
	tx := testutil.Tx(t)
	f := newCategorizerFixture(t, tx, &scriptedLLM{responses: []map[string]any{
		pick("spirits", 0.8),
		pick("gin", 0.9),
		pick("spirits", 0.8),
		pick("gin", 0.9),
	}})
	ctx := context.Background()

	first, err := f.svc.CategorizeIngredient(ctx, f.tanq.ID)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first == nil {
		t.Fatalf("first run must create a suggestion")
	}
	second, err := f.svc.CategorizeIngredient(ctx, f.tanq.ID)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second != nil {
		t.Fatalf("an existing pending pair must suppress duplicates")
	}

	rows, err := f.suggestions.ListByIngredient(ctx, nil, f.tanq.ID)
	if err != nil {
		t.Fatalf("ListByIngredient: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("suggestion rows: got %d, want 1", len(rows))
	}
}
