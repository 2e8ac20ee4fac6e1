package services_test

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/barhand/barhand-backend/internal/data/repos/catalog"
	reciperepo "github.com/barhand/barhand-backend/internal/data/repos/recipes"
	"github.com/barhand/barhand-backend/internal/data/repos/testutil"
	types "github.com/barhand/barhand-backend/internal/domain"
	"github.com/barhand/barhand-backend/internal/services"
)

// fakeVerifier answers from a script keyed by candidate name and counts
// calls.
type fakeVerifier struct {
	answers map[string]bool
	err     error
	calls   int
}

func (f *fakeVerifier) SameProduct(_ context.Context, _, candidateName string) (bool, error) {
	f.calls++
	if f.err != nil {
		return false, f.err
	}
	return f.answers[candidateName], nil
}

type matchFixture struct {
	svc       services.IngredientMatchService
	verifier  *fakeVerifier
	matchLogs reciperepo.IngredientMatchLogRepo
}

func newMatchFixture(t *testing.T, tx *gorm.DB, verifier *fakeVerifier) matchFixture {
	t.Helper()
	log := testutil.Logger(t)
	matchLogs := reciperepo.NewIngredientMatchLogRepo(tx, log)
	svc := services.NewIngredientMatchService(
		catalog.NewIngredientRepo(tx, log), matchLogs, verifier, 0.6, 3, log)
	return matchFixture{svc: svc, verifier: verifier, matchLogs: matchLogs}
}

func lastLogStatus(t *testing.T, tx *gorm.DB) string {
	t.Helper()
	var rows []*types.IngredientMatchLog
	if err := tx.Order("created_at ASC").Find(&rows).Error; err != nil {
		t.Fatalf("load match logs: %v", err)
	}
	if len(rows) == 0 {
		t.Fatalf("expected at least one match log row")
	}
	return rows[len(rows)-1].Status
}

func TestExactNameMatchSkipsVerifier(t *testing.T) {
	tx := testutil.Tx(t)
	f := newMatchFixture(t, tx, &fakeVerifier{})
	ctx := context.Background()

	seeded := testutil.SeedIngredient(t, tx, "Beefeater Gin")

	ing, created, err := f.svc.FindOrCreateIngredient(ctx, tx, "beefeater gin", nil)
	if err != nil {
		t.Fatalf("FindOrCreateIngredient: %v", err)
	}
	if created || ing.ID != seeded.ID {
		t.Fatalf("case-insensitive name hit must return the existing row")
	}
	if f.verifier.calls != 0 {
		t.Fatalf("exact hits must not consult the verifier, got %d calls", f.verifier.calls)
	}
	if got := lastLogStatus(t, tx); got != types.MatchStatusExact {
		t.Fatalf("log status: got %q, want exact", got)
	}
}

func TestSlugMatchBeforeFuzzy(t *testing.T) {
	tx := testutil.Tx(t)
	f := newMatchFixture(t, tx, &fakeVerifier{})
	ctx := context.Background()

	seeded := testutil.SeedIngredient(t, tx, "Lemon Juice")

	ing, created, err := f.svc.FindOrCreateIngredient(ctx, tx, "Lemon  Juice!", nil)
	if err != nil {
		t.Fatalf("FindOrCreateIngredient: %v", err)
	}
	if created || ing.ID != seeded.ID {
		t.Fatalf("slug normalization must find the existing row")
	}
	if f.verifier.calls != 0 {
		t.Fatalf("slug hits must not consult the verifier")
	}
	if got := lastLogStatus(t, tx); got != types.MatchStatusSlug {
		t.Fatalf("log status: got %q, want slug", got)
	}
}

func TestFuzzyMatchNeedsVerifierConfirmation(t *testing.T) {
	tx := testutil.Tx(t)
	f := newMatchFixture(t, tx, &fakeVerifier{answers: map[string]bool{"Angostura Bitters": true}})
	ctx := context.Background()

	seeded := testutil.SeedIngredient(t, tx, "Angostura Bitters")

	ing, created, err := f.svc.FindOrCreateIngredient(ctx, tx, "Angostura Bitter", nil)
	if err != nil {
		t.Fatalf("FindOrCreateIngredient: %v", err)
	}
	if created || ing.ID != seeded.ID {
		t.Fatalf("confirmed fuzzy candidate must resolve to the existing row")
	}
	if f.verifier.calls != 1 {
		t.Fatalf("verifier calls: got %d, want 1", f.verifier.calls)
	}
	if got := lastLogStatus(t, tx); got != types.MatchStatusFuzzy {
		t.Fatalf("log status: got %q, want fuzzy", got)
	}
}

func TestFuzzyRejectionCreatesNewIngredient(t *testing.T) {
	tx := testutil.Tx(t)
	f := newMatchFixture(t, tx, &fakeVerifier{answers: map[string]bool{}})
	ctx := context.Background()

	testutil.SeedIngredient(t, tx, "Beefeater Gin")

	ing, created, err := f.svc.FindOrCreateIngredient(ctx, tx, "Beefeater Dry Gin", nil)
	if err != nil {
		t.Fatalf("FindOrCreateIngredient: %v", err)
	}
	if !created {
		t.Fatalf("unconfirmed candidates must fall through to a new ingredient")
	}
	if f.verifier.calls == 0 {
		t.Fatalf("a candidate above the threshold must be put to the verifier")
	}
	if !ing.NeedsCategorization {
		t.Fatalf("new ingredients start uncategorized")
	}
	if got := lastLogStatus(t, tx); got != types.MatchStatusNew {
		t.Fatalf("log status: got %q, want new", got)
	}
}

func TestVerifierFailureFallsBackToNew(t *testing.T) {
	tx := testutil.Tx(t)
	f := newMatchFixture(t, tx, &fakeVerifier{err: errors.New("model unreachable")})
	ctx := context.Background()

	testutil.SeedIngredient(t, tx, "Angostura Bitters")

	ing, created, err := f.svc.FindOrCreateIngredient(ctx, tx, "Angostura Bitter", nil)
	if err != nil {
		t.Fatalf("verifier failure must not fail the call: %v", err)
	}
	if !created {
		t.Fatalf("verifier failure must degrade to creating a new ingredient")
	}
	if ing.Name != "Angostura Bitter" {
		t.Fatalf("created name: got %q", ing.Name)
	}
}

func TestDistantNamesSkipVerifierEntirely(t *testing.T) {
	tx := testutil.Tx(t)
	f := newMatchFixture(t, tx, &fakeVerifier{})
	ctx := context.Background()

	testutil.SeedIngredient(t, tx, "Lime Juice")

	_, created, err := f.svc.FindOrCreateIngredient(ctx, tx, "Yellow Chartreuse", nil)
	if err != nil {
		t.Fatalf("FindOrCreateIngredient: %v", err)
	}
	if !created {
		t.Fatalf("a name below the similarity threshold must be created as new")
	}
	if f.verifier.calls != 0 {
		t.Fatalf("no candidates above threshold, verifier must stay untouched")
	}
}

func TestEmptyNameRejected(t *testing.T) {
	tx := testutil.Tx(t)
	f := newMatchFixture(t, tx, &fakeVerifier{})

	if _, _, err := f.svc.FindOrCreateIngredient(context.Background(), tx, "   ", nil); err == nil {
		t.Fatalf("blank names must be rejected")
	}
}
