package services_test

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/barhand/barhand-backend/internal/data/repos/catalog"
	invrepo "github.com/barhand/barhand-backend/internal/data/repos/inventory"
	reciperepo "github.com/barhand/barhand-backend/internal/data/repos/recipes"
	"github.com/barhand/barhand-backend/internal/data/repos/testutil"
	types "github.com/barhand/barhand-backend/internal/domain"
	"github.com/barhand/barhand-backend/internal/services"
)

// matcherFixture is the gin-shelf scenario used throughout: a user who owns
// Beefeater and lemon juice, with Tanqueray a sibling product and Plymouth a
// cousin one category level further out.
type matcherFixture struct {
	svc services.MatcherService

	user *types.User

	beefeater  *types.Ingredient
	tanqueray  *types.Ingredient
	plymouth   *types.Ingredient
	lemonJuice *types.Ingredient

	ginSour      *types.Recipe
	navyMartini  *types.Recipe
	houseSour    *types.Recipe
	garnishBoard *types.Recipe
}

func newMatcherFixture(t *testing.T, tx *gorm.DB) matcherFixture {
	t.Helper()
	log := testutil.Logger(t)

	spirits := testutil.SeedCategory(t, tx, "SPIRITS")
	gin := testutil.SeedChildCategory(t, tx, "GIN", spirits)
	london := testutil.SeedChildCategory(t, tx, "LONDON DRY GIN", gin)
	navy := testutil.SeedChildCategory(t, tx, "NAVY STRENGTH GIN", gin)
	citrus := testutil.SeedCategory(t, tx, "CITRUS")

	f := matcherFixture{
		user:       testutil.SeedUser(t, tx, "matcher@example.com", false),
		beefeater:  testutil.SeedIngredient(t, tx, "Beefeater Gin", london),
		tanqueray:  testutil.SeedIngredient(t, tx, "Tanqueray Gin", london),
		plymouth:   testutil.SeedIngredient(t, tx, "Plymouth Navy Strength", navy),
		lemonJuice: testutil.SeedIngredient(t, tx, "Lemon Juice", citrus),
	}
	violet := testutil.SeedIngredient(t, tx, "Creme de Violette")

	// Calls for the sibling brand, not the one in stock.
	f.ginSour = testutil.SeedRecipe(t, tx, "Gin Sour",
		testutil.RecipeLine{Ingredient: f.tanqueray},
		testutil.RecipeLine{Ingredient: f.lemonJuice},
	)
	f.navyMartini = testutil.SeedRecipe(t, tx, "Navy Martini",
		testutil.RecipeLine{Ingredient: f.plymouth},
		testutil.RecipeLine{Ingredient: f.lemonJuice},
	)
	// Satisfiable from exact stock; the violette line is optional.
	f.houseSour = testutil.SeedRecipe(t, tx, "House Sour",
		testutil.RecipeLine{Ingredient: f.beefeater},
		testutil.RecipeLine{Ingredient: f.lemonJuice},
		testutil.RecipeLine{Ingredient: violet, Optional: true},
	)
	f.garnishBoard = testutil.SeedRecipe(t, tx, "Garnish Board",
		testutil.RecipeLine{Ingredient: f.lemonJuice, Optional: true},
	)

	testutil.SeedInventory(t, tx, f.user.ID, f.beefeater, true)
	testutil.SeedInventory(t, tx, f.user.ID, f.lemonJuice, true)
	testutil.SeedInventory(t, tx, f.user.ID, f.plymouth, false)

	f.svc = services.NewMatcherService(
		invrepo.NewUserInventoryRepo(tx, log),
		catalog.NewIngredientRepo(tx, log),
		catalog.NewCategoryClosureRepo(tx, log),
		reciperepo.NewRecipeRepo(tx, log),
		nil, 5, log)
	return f
}

func recipeNames(recipes []*types.Recipe) []string {
	out := make([]string, 0, len(recipes))
	for _, r := range recipes {
		out = append(out, r.Name)
	}
	return out
}

func sameNames(got []*types.Recipe, want ...string) bool {
	if len(got) != len(want) {
		return false
	}
	for i, r := range got {
		if r.Name != want[i] {
			return false
		}
	}
	return true
}

func TestMatchSetsDepthZeroIsExactOnly(t *testing.T) {
	tx := testutil.Tx(t)
	f := newMatcherFixture(t, tx)
	ctx := context.Background()

	sets, err := f.svc.MatchSets(ctx, f.user.ID, 0)
	if err != nil {
		t.Fatalf("MatchSets: %v", err)
	}
	if len(sets.ExactIDs) != 2 {
		t.Fatalf("exact set: got %d ids, want Beefeater and lemon juice", len(sets.ExactIDs))
	}
	if containsID(sets.ExactIDs, f.plymouth.ID) {
		t.Fatalf("out-of-stock rows must never match")
	}
	if len(sets.CategoryIDs) != 0 {
		t.Fatalf("depth 0 must not add category matches, got %v", sets.CategoryIDs)
	}

	recipes, err := f.svc.MakeableRecipes(ctx, f.user.ID, 0)
	if err != nil {
		t.Fatalf("MakeableRecipes: %v", err)
	}
	if !sameNames(recipes, "House Sour") {
		t.Fatalf("depth 0 recipes: got %v, want [House Sour]", recipeNames(recipes))
	}
}

func TestMatchSetsDepthOneAddsSiblingProducts(t *testing.T) {
	tx := testutil.Tx(t)
	f := newMatcherFixture(t, tx)
	ctx := context.Background()

	sets, err := f.svc.MatchSets(ctx, f.user.ID, 1)
	if err != nil {
		t.Fatalf("MatchSets: %v", err)
	}
	if !containsID(sets.CategoryIDs, f.tanqueray.ID) {
		t.Fatalf("a sibling under LONDON DRY GIN must match at depth 1")
	}
	if containsID(sets.CategoryIDs, f.plymouth.ID) {
		t.Fatalf("NAVY STRENGTH GIN is two hops away, must not match at depth 1")
	}
	if containsID(sets.CategoryIDs, f.beefeater.ID) {
		t.Fatalf("exact matches must not repeat in the category set")
	}

	recipes, err := f.svc.MakeableRecipes(ctx, f.user.ID, 1)
	if err != nil {
		t.Fatalf("MakeableRecipes: %v", err)
	}
	if !sameNames(recipes, "Gin Sour", "House Sour") {
		t.Fatalf("depth 1 recipes: got %v, want [Gin Sour, House Sour]", recipeNames(recipes))
	}
}

func TestMatchSetsDepthTwoReachesCousinCategories(t *testing.T) {
	tx := testutil.Tx(t)
	f := newMatcherFixture(t, tx)
	ctx := context.Background()

	sets, err := f.svc.MatchSets(ctx, f.user.ID, 2)
	if err != nil {
		t.Fatalf("MatchSets: %v", err)
	}
	if !containsID(sets.CategoryIDs, f.tanqueray.ID) || !containsID(sets.CategoryIDs, f.plymouth.ID) {
		t.Fatalf("depth 2 must reach both LONDON DRY and NAVY STRENGTH products, got %v", sets.CategoryIDs)
	}

	recipes, err := f.svc.MakeableRecipes(ctx, f.user.ID, 2)
	if err != nil {
		t.Fatalf("MakeableRecipes: %v", err)
	}
	if !sameNames(recipes, "Gin Sour", "House Sour", "Navy Martini") {
		t.Fatalf("depth 2 recipes: got %v", recipeNames(recipes))
	}
}

func TestMatchSetsWidenMonotonically(t *testing.T) {
	tx := testutil.Tx(t)
	f := newMatcherFixture(t, tx)
	ctx := context.Background()

	prev := 0
	for depth := 0; depth <= 3; depth++ {
		sets, err := f.svc.MatchSets(ctx, f.user.ID, depth)
		if err != nil {
			t.Fatalf("MatchSets(%d): %v", depth, err)
		}
		total := len(sets.ExactIDs) + len(sets.CategoryIDs)
		if total < prev {
			t.Fatalf("match set shrank from %d to %d at depth %d", prev, total, depth)
		}
		prev = total
	}
}

func TestMatchSetsClampOutOfRangeDepth(t *testing.T) {
	tx := testutil.Tx(t)
	f := newMatcherFixture(t, tx)
	ctx := context.Background()

	atClamp, err := f.svc.MatchSets(ctx, f.user.ID, 5)
	if err != nil {
		t.Fatalf("MatchSets(5): %v", err)
	}
	beyond, err := f.svc.MatchSets(ctx, f.user.ID, 99)
	if err != nil {
		t.Fatalf("MatchSets(99): %v", err)
	}
	if len(beyond.CategoryIDs) != len(atClamp.CategoryIDs) {
		t.Fatalf("depth beyond the clamp must equal the clamp: %d vs %d",
			len(beyond.CategoryIDs), len(atClamp.CategoryIDs))
	}

	negative, err := f.svc.MatchSets(ctx, f.user.ID, -3)
	if err != nil {
		t.Fatalf("MatchSets(-3): %v", err)
	}
	if len(negative.CategoryIDs) != 0 {
		t.Fatalf("negative depth clamps to 0, got category matches %v", negative.CategoryIDs)
	}
}

func TestOptionalOnlyRecipeIsNeverMakeable(t *testing.T) {
	tx := testutil.Tx(t)
	f := newMatcherFixture(t, tx)
	ctx := context.Background()

	recipes, err := f.svc.MakeableRecipes(ctx, f.user.ID, 5)
	if err != nil {
		t.Fatalf("MakeableRecipes: %v", err)
	}
	for _, r := range recipes {
		if r.ID == f.garnishBoard.ID {
			t.Fatalf("a recipe with only optional lines must never be makeable")
		}
	}
}

func TestEmptyInventoryShortCircuits(t *testing.T) {
	tx := testutil.Tx(t)
	f := newMatcherFixture(t, tx)
	ctx := context.Background()

	empty := testutil.SeedUser(t, tx, "empty-shelf@example.com", false)

	sets, err := f.svc.MatchSets(ctx, empty.ID, 3)
	if err != nil {
		t.Fatalf("MatchSets: %v", err)
	}
	if len(sets.ExactIDs) != 0 || len(sets.CategoryIDs) != 0 {
		t.Fatalf("empty inventory must produce empty sets, got %+v", sets)
	}

	recipes, err := f.svc.MakeableRecipes(ctx, empty.ID, 3)
	if err != nil {
		t.Fatalf("MakeableRecipes: %v", err)
	}
	if recipes == nil || len(recipes) != 0 {
		t.Fatalf("empty inventory yields an empty (non-nil) recipe list, got %v", recipes)
	}
}

func TestMakeableRecipesIgnoresUnrelatedUsers(t *testing.T) {
	tx := testutil.Tx(t)
	f := newMatcherFixture(t, tx)
	ctx := context.Background()

	other := testutil.SeedUser(t, tx, "other-shelf@example.com", false)
	testutil.SeedInventory(t, tx, other.ID, f.plymouth, true)

	sets, err := f.svc.MatchSets(ctx, f.user.ID, 0)
	if err != nil {
		t.Fatalf("MatchSets: %v", err)
	}
	if containsID(sets.ExactIDs, f.plymouth.ID) {
		t.Fatalf("another user's stock must not leak into the match set")
	}
}
