package services

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/barhand/barhand-backend/internal/data/repos/catalog"
	reciperepo "github.com/barhand/barhand-backend/internal/data/repos/recipes"
	types "github.com/barhand/barhand-backend/internal/domain"
	"github.com/barhand/barhand-backend/internal/pkg/apperr"
	"github.com/barhand/barhand-backend/internal/pkg/logger"
	"github.com/barhand/barhand-backend/internal/utils"
)

const ingredientSlugMaxLen = 120

// IngredientMatchService decides whether a freshly extracted ingredient name
// refers to an existing catalog entry. Decision order: exact case-insensitive
// name, slug, fuzzy similarity confirmed by the semantic verifier, new
// ingredient. Every decision is recorded in ingredient_match_log.
type IngredientMatchService interface {
	// FindOrCreateIngredient returns the matched or created ingredient and
	// whether it was created. Verifier failure degrades to creating a new
	// ingredient; it never blocks the caller.
	FindOrCreateIngredient(ctx context.Context, tx *gorm.DB, name string, importID *uuid.UUID) (*types.Ingredient, bool, error)
}

type matchCandidate struct {
	IngredientID uuid.UUID `json:"ingredient_id"`
	Name         string    `json:"name"`
	Ratio        float64   `json:"ratio"`
	Confirmed    *bool     `json:"confirmed,omitempty"`
}

type ingredientMatchService struct {
	ingredients catalog.IngredientRepo
	matchLogs   reciperepo.IngredientMatchLogRepo
	verifier    NameMatchVerifier
	threshold   float64
	topN        int
	log         *logger.Logger
}

func NewIngredientMatchService(
	ingredients catalog.IngredientRepo,
	matchLogs reciperepo.IngredientMatchLogRepo,
	verifier NameMatchVerifier,
	threshold float64,
	topN int,
	baseLog *logger.Logger,
) IngredientMatchService {
	if threshold <= 0 {
		threshold = 0.6
	}
	if topN <= 0 {
		topN = 3
	}
	return &ingredientMatchService{
		ingredients: ingredients,
		matchLogs:   matchLogs,
		verifier:    verifier,
		threshold:   threshold,
		topN:        topN,
		log:         baseLog.With("service", "IngredientMatchService"),
	}
}

func (s *ingredientMatchService) FindOrCreateIngredient(ctx context.Context, tx *gorm.DB, name string, importID *uuid.UUID) (*types.Ingredient, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false, apperr.Validation("ingredient name required")
	}

	// Exact name hit short-circuits everything, including the verifier.
	existing, err := s.ingredients.GetByNameIExact(ctx, tx, name)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		s.writeLog(ctx, tx, importID, name, types.MatchStatusExact, &existing.ID, nil)
		return existing, false, nil
	}

	slug := utils.Slugify(name, ingredientSlugMaxLen)
	existing, err = s.ingredients.GetBySlug(ctx, tx, slug)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		s.writeLog(ctx, tx, importID, name, types.MatchStatusSlug, &existing.ID, nil)
		return existing, false, nil
	}

	candidates, err := s.fuzzyCandidates(ctx, tx, name)
	if err != nil {
		return nil, false, err
	}

	for i := range candidates {
		ok, err := s.verifier.SameProduct(ctx, name, candidates[i].Name)
		if err != nil {
			// Don't guess: an unreachable verifier means no fuzzy match.
			s.log.Warn("Name match verification failed, treating as new ingredient",
				"input", name, "candidate", candidates[i].Name, "error", err)
			break
		}
		candidates[i].Confirmed = &ok
		if ok {
			matched, err := s.ingredients.GetByID(ctx, tx, candidates[i].IngredientID)
			if err != nil {
				return nil, false, err
			}
			s.writeLog(ctx, tx, importID, name, types.MatchStatusFuzzy, &matched.ID, candidates)
			s.log.Info("Fuzzy-matched ingredient",
				"input", name, "matched", matched.Name, "ratio", candidates[i].Ratio)
			return matched, false, nil
		}
	}

	created := &types.Ingredient{
		ID:                  uuid.New(),
		Name:                name,
		Slug:                slug,
		NeedsCategorization: true,
	}
	if _, err := s.ingredients.Create(ctx, tx, []*types.Ingredient{created}); err != nil {
		return nil, false, err
	}
	s.writeLog(ctx, tx, importID, name, types.MatchStatusNew, &created.ID, candidates)
	s.log.Info("Created new ingredient", "name", name)
	return created, true, nil
}

// fuzzyCandidates ranks the whole catalog by normalized edit-distance ratio
// and keeps the top N at or above the threshold.
func (s *ingredientMatchService) fuzzyCandidates(ctx context.Context, tx *gorm.DB, name string) ([]matchCandidate, error) {
	all, err := s.ingredients.List(ctx, tx)
	if err != nil {
		return nil, err
	}
	var out []matchCandidate
	for _, ing := range all {
		ratio := similarityRatio(name, ing.Name)
		if ratio >= s.threshold {
			out = append(out, matchCandidate{IngredientID: ing.ID, Name: ing.Name, Ratio: ratio})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ratio > out[j].Ratio })
	if len(out) > s.topN {
		out = out[:s.topN]
	}
	return out, nil
}

func (s *ingredientMatchService) writeLog(ctx context.Context, tx *gorm.DB, importID *uuid.UUID, name, status string, ingredientID *uuid.UUID, candidates []matchCandidate) {
	row := &types.IngredientMatchLog{
		ID:             uuid.New(),
		RecipeImportID: importID,
		InputName:      name,
		Status:         status,
		IngredientID:   ingredientID,
		CreatedAt:      time.Now(),
	}
	if len(candidates) > 0 {
		if raw, err := json.Marshal(candidates); err == nil {
			row.Candidates = datatypes.JSON(raw)
		}
	}
	if _, err := s.matchLogs.Create(ctx, tx, []*types.IngredientMatchLog{row}); err != nil {
		s.log.Warn("Failed to write ingredient match log", "input", name, "error", err)
	}
}

// similarityRatio is 1 - levenshtein/maxLen over the lowercased names,
// normalized to [0,1].
func similarityRatio(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == b {
		return 1
	}
	ra, rb := []rune(a), []rune(b)
	longest := len(ra)
	if len(rb) > longest {
		longest = len(rb)
	}
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein(ra, rb))/float64(longest)
}

func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = minOf(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func minOf(vals ...int) int {
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
