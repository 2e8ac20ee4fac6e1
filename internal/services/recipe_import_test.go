package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/barhand/barhand-backend/internal/data/repos/catalog"
	reciperepo "github.com/barhand/barhand-backend/internal/data/repos/recipes"
	"github.com/barhand/barhand-backend/internal/data/repos/testutil"
	types "github.com/barhand/barhand-backend/internal/domain"
	"github.com/barhand/barhand-backend/internal/pkg/apperr"
	"github.com/barhand/barhand-backend/internal/services"
)

type fakeOcr struct {
	text string
	err  error
}

func (f *fakeOcr) Transcribe(context.Context, []byte) (string, error) { return f.text, f.err }

type fakeParser struct {
	recipes []services.ParsedRecipe
	err     error
}

func (f *fakeParser) Parse(context.Context, string) ([]services.ParsedRecipe, error) {
	return f.recipes, f.err
}

type importFixture struct {
	svc     services.RecipeImportService
	imports reciperepo.RecipeImportRepo
	recipes reciperepo.RecipeRepo
}

func newImportFixture(t *testing.T, tx *gorm.DB, ocr *fakeOcr, parser *fakeParser) importFixture {
	t.Helper()
	log := testutil.Logger(t)

	imports := reciperepo.NewRecipeImportRepo(tx, log)
	recipes := reciperepo.NewRecipeRepo(tx, log)
	matchLogs := reciperepo.NewIngredientMatchLogRepo(tx, log)
	matcher := services.NewIngredientMatchService(
		catalog.NewIngredientRepo(tx, log), matchLogs, &fakeVerifier{}, 0.6, 3, log)

	svc := services.NewRecipeImportService(tx, imports, recipes,
		reciperepo.NewRecipeIngredientRepo(tx, log), matchLogs, matcher, ocr, parser, log)
	return importFixture{svc: svc, imports: imports, recipes: recipes}
}

func seedParsedImport(t *testing.T, tx *gorm.DB, recipes ...services.ParsedRecipe) *types.RecipeImport {
	t.Helper()
	raw, err := json.Marshal(map[string]any{"recipes": recipes})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	imp := &types.RecipeImport{
		ID:         uuid.New(),
		Status:     types.ImportStatusPending,
		SourceName: "test-book",
		OCRText:    "page text",
		ParsedData: datatypes.JSON(raw),
	}
	if err := tx.Create(imp).Error; err != nil {
		t.Fatalf("seed import: %v", err)
	}
	return imp
}

func ginSourParsed() services.ParsedRecipe {
	page := 42
	return services.ParsedRecipe{
		Name: "Gin Sour",
		Page: &page,
		Ingredients: []services.ParsedIngredient{
			{Amount: "2", Unit: "ounces", Name: "Beefeater Gin"},
			{Amount: "3/4", Unit: "oz", Name: "Lemon Juice"},
			{Amount: "", Unit: "dashes", Name: "Angostura Bitters"},
		},
		Method:  "Shake with ice, strain.",
		Garnish: "lemon twist",
	}
}

func TestParseImageCreatesPendingImport(t *testing.T) {
	tx := testutil.Tx(t)
	f := newImportFixture(t, tx,
		&fakeOcr{text: "GIN SOUR\n2 oz gin..."},
		&fakeParser{recipes: []services.ParsedRecipe{ginSourParsed()}})
	ctx := context.Background()

	imp, err := f.svc.ParseImage(ctx, []byte{0xff, 0xd8}, "classic-cocktails")
	if err != nil {
		t.Fatalf("ParseImage: %v", err)
	}
	if imp.Status != types.ImportStatusPending {
		t.Fatalf("imports start pending, got %q", imp.Status)
	}
	if imp.OCRText == "" || len(imp.ParsedData) == 0 {
		t.Fatalf("import must retain the OCR text and the parsed payload")
	}

	if _, err := f.svc.ParseImage(ctx, nil, "x"); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("empty image: got %v, want validation error", err)
	}
}

func TestApproveImportMaterializesRecipe(t *testing.T) {
	tx := testutil.Tx(t)
	f := newImportFixture(t, tx, &fakeOcr{}, &fakeParser{})
	ctx := context.Background()

	testutil.SeedIngredient(t, tx, "Lemon Juice")
	imp := seedParsedImport(t, tx, ginSourParsed())

	rec, err := f.svc.ApproveImport(ctx, imp.ID, 0, "Classic Cocktails")
	if err != nil {
		t.Fatalf("ApproveImport: %v", err)
	}
	if rec.Slug != "gin-sour" || rec.Source != "Classic Cocktails" {
		t.Fatalf("recipe: got slug=%q source=%q", rec.Slug, rec.Source)
	}

	stored, err := f.recipes.GetByID(ctx, nil, rec.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(stored.Lines) != 3 {
		t.Fatalf("lines: got %d, want 3", len(stored.Lines))
	}
	first := stored.Lines[0]
	if first.Unit != "oz" {
		t.Fatalf("unit normalization: got %q, want oz", first.Unit)
	}
	if first.Amount == nil || *first.Amount != 2 {
		t.Fatalf("amount: got %v, want 2", first.Amount)
	}
	if stored.Lines[2].Amount != nil {
		t.Fatalf("blank amounts stay nil, got %v", *stored.Lines[2].Amount)
	}

	// Existing catalog rows are reused, unseen names are created.
	var ingCount int64
	if err := tx.Model(&types.Ingredient{}).Count(&ingCount).Error; err != nil {
		t.Fatalf("count ingredients: %v", err)
	}
	if ingCount != 3 {
		t.Fatalf("ingredients after approval: got %d, want 3", ingCount)
	}

	got, err := f.svc.GetImport(ctx, imp.ID)
	if err != nil {
		t.Fatalf("GetImport: %v", err)
	}
	if got.Status != types.ImportStatusApproved || got.RecipeID == nil || *got.RecipeID != rec.ID {
		t.Fatalf("import after approval: %+v", got)
	}
}

func TestApproveImportIsTerminal(t *testing.T) {
	tx := testutil.Tx(t)
	f := newImportFixture(t, tx, &fakeOcr{}, &fakeParser{})
	ctx := context.Background()

	imp := seedParsedImport(t, tx, ginSourParsed())
	if _, err := f.svc.ApproveImport(ctx, imp.ID, 0, ""); err != nil {
		t.Fatalf("ApproveImport: %v", err)
	}
	if _, err := f.svc.ApproveImport(ctx, imp.ID, 0, ""); !errors.Is(err, apperr.ErrInvariant) {
		t.Fatalf("second approve: got %v, want invariant violation", err)
	}
	if _, err := f.svc.RejectImport(ctx, imp.ID); !errors.Is(err, apperr.ErrInvariant) {
		t.Fatalf("reject after approve: got %v, want invariant violation", err)
	}
}

func TestApproveImportValidatesIndex(t *testing.T) {
	tx := testutil.Tx(t)
	f := newImportFixture(t, tx, &fakeOcr{}, &fakeParser{})
	ctx := context.Background()

	imp := seedParsedImport(t, tx, ginSourParsed())
	if _, err := f.svc.ApproveImport(ctx, imp.ID, 5, ""); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("out-of-range index: got %v, want validation error", err)
	}
	if _, err := f.svc.ApproveImport(ctx, uuid.New(), 0, ""); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("unknown import: got %v, want not found", err)
	}
}

func TestApproveImportUpdatesExistingRecipe(t *testing.T) {
	tx := testutil.Tx(t)
	f := newImportFixture(t, tx, &fakeOcr{}, &fakeParser{})
	ctx := context.Background()

	old := testutil.SeedIngredient(t, tx, "Old Tom Gin")
	existing := testutil.SeedRecipe(t, tx, "Gin Sour", testutil.RecipeLine{Ingredient: old})

	imp := seedParsedImport(t, tx, ginSourParsed())
	rec, err := f.svc.ApproveImport(ctx, imp.ID, 0, "")
	if err != nil {
		t.Fatalf("ApproveImport: %v", err)
	}
	if rec.ID != existing.ID {
		t.Fatalf("a same-name recipe must be updated in place, not duplicated")
	}

	stored, err := f.recipes.GetByID(ctx, nil, rec.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(stored.Lines) != 3 {
		t.Fatalf("lines must be replaced wholesale: got %d, want 3", len(stored.Lines))
	}
	for _, ln := range stored.Lines {
		if ln.IngredientID == old.ID {
			t.Fatalf("replaced lines must not survive the update")
		}
	}
}

func TestRejectImport(t *testing.T) {
	tx := testutil.Tx(t)
	f := newImportFixture(t, tx, &fakeOcr{}, &fakeParser{})
	ctx := context.Background()

	imp := seedParsedImport(t, tx, ginSourParsed())
	out, err := f.svc.RejectImport(ctx, imp.ID)
	if err != nil {
		t.Fatalf("RejectImport: %v", err)
	}
	if out.Status != types.ImportStatusRejected {
		t.Fatalf("status: got %q, want rejected", out.Status)
	}
	var recipeCount int64
	if err := tx.Model(&types.Recipe{}).Count(&recipeCount).Error; err != nil {
		t.Fatalf("count recipes: %v", err)
	}
	if recipeCount != 0 {
		t.Fatalf("rejection must not create recipes, got %d", recipeCount)
	}
}
