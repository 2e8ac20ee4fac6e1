package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/barhand/barhand-backend/internal/clients/ollama"
	"github.com/barhand/barhand-backend/internal/data/repos/catalog"
	types "github.com/barhand/barhand-backend/internal/domain"
	"github.com/barhand/barhand-backend/internal/pkg/apperr"
	"github.com/barhand/barhand-backend/internal/pkg/logger"
)

const categorizeWorkers = 4

var categorySchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"category_slug": map[string]any{"type": []string{"string", "null"}},
		"confidence":    map[string]any{"type": "number"},
		"reasoning":     map[string]any{"type": "string"},
	},
	"required": []string{"category_slug", "confidence", "reasoning"},
}

const topLevelPrompt = `You are categorizing cocktail ingredients. Select the BEST matching top-level category.

Ingredient: %s

Available categories (format: "slug: Name"):
%s

Instructions:
- Pick the single best matching category based on what this ingredient IS
- Consider: Is it a spirit? A liqueur? A mixer? Fresh produce? A sweetener?
- IMPORTANT: Return ONLY the slug (the part before the colon), not the name
- If the ingredient doesn't fit any category, set category_slug to null
- Confidence should be 0.0-1.0 (1.0 = certain, 0.5 = unsure)

Return JSON with: category_slug (the slug EXACTLY as shown, or null), confidence, reasoning`

const subcategoryPrompt = `You are refining the category for a cocktail ingredient.
We've determined this ingredient belongs to: %s

Ingredient: %s

Available subcategories (format: "slug: Name"):
%s

Instructions:
- Pick the most SPECIFIC matching subcategory from the list above
- IMPORTANT: Return ONLY the slug (the part before the colon), exactly as shown
- If none of the subcategories fit, set category_slug to "parent" to stay at current level
- Be as specific as possible

Return JSON with: category_slug (exact slug from list, or "parent"), confidence, reasoning`

// CategorizeReport summarizes one bulk categorization run.
type CategorizeReport struct {
	Processed int      `json:"processed"`
	Suggested int      `json:"suggested"`
	Skipped   int      `json:"skipped"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors,omitempty"`
}

// CategorizerService proposes category assignments for ingredients using
// hierarchical drill-down: pick the best top-level category, then refine
// through subcategories until the model stops or a leaf is reached. Results
// land as pending suggestions for admin review, never as direct assignments.
type CategorizerService interface {
	// CategorizeIngredient returns the created suggestion, or nil when no
	// suggestion was warranted (no match, low confidence, or a pending
	// suggestion for the same pair already exists).
	CategorizeIngredient(ctx context.Context, ingredientID uuid.UUID) (*types.CategorySuggestion, error)
	CategorizePending(ctx context.Context, limit int) (*CategorizeReport, error)
}

type categorizerService struct {
	llm           ollama.Client
	categories    catalog.CategoryRepo
	closure       catalog.CategoryClosureRepo
	ingredients   catalog.IngredientRepo
	suggestions   catalog.CategorySuggestionRepo
	minConfidence float64
	maxDrillDepth int
	log           *logger.Logger
}

func NewCategorizerService(
	llm ollama.Client,
	categories catalog.CategoryRepo,
	closure catalog.CategoryClosureRepo,
	ingredients catalog.IngredientRepo,
	suggestions catalog.CategorySuggestionRepo,
	minConfidence float64,
	maxDrillDepth int,
	baseLog *logger.Logger,
) CategorizerService {
	if minConfidence <= 0 {
		minConfidence = 0.3
	}
	if maxDrillDepth <= 0 {
		maxDrillDepth = 5
	}
	return &categorizerService{
		llm:           llm,
		categories:    categories,
		closure:       closure,
		ingredients:   ingredients,
		suggestions:   suggestions,
		minConfidence: minConfidence,
		maxDrillDepth: maxDrillDepth,
		log:           baseLog.With("service", "CategorizerService"),
	}
}

func (s *categorizerService) CategorizeIngredient(ctx context.Context, ingredientID uuid.UUID) (*types.CategorySuggestion, error) {
	ing, err := s.ingredients.GetByID(ctx, nil, ingredientID)
	if err != nil {
		return nil, err
	}
	if ing == nil {
		return nil, apperr.NotFound(fmt.Sprintf("ingredient %s", ingredientID))
	}

	category, confidence, reasoning, err := s.suggestCategory(ctx, ing)
	if err != nil {
		return nil, err
	}
	if category == nil {
		s.log.Info("No category match", "ingredient", ing.Name, "reasoning", reasoning)
		return nil, nil
	}
	if confidence < s.minConfidence {
		s.log.Info("Confidence below threshold, no suggestion created",
			"ingredient", ing.Name, "category", category.Name, "confidence", confidence)
		return nil, nil
	}

	exists, err := s.suggestions.PendingExists(ctx, nil, ing.ID, category.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		s.log.Info("Pending suggestion already exists",
			"ingredient", ing.Name, "category", category.Name)
		return nil, nil
	}

	sug := &types.CategorySuggestion{
		ID:           uuid.New(),
		IngredientID: ing.ID,
		CategoryID:   category.ID,
		Status:       types.SuggestionStatusPending,
		Confidence:   confidence,
		Reasoning:    reasoning,
		CreatedAt:    time.Now(),
	}
	if _, err := s.suggestions.Create(ctx, nil, []*types.CategorySuggestion{sug}); err != nil {
		// A concurrent run may have created the same pending pair.
		if apperr.IsUniqueViolation(err) {
			s.log.Info("Pending suggestion created concurrently",
				"ingredient", ing.Name, "category", category.Name)
			return nil, nil
		}
		return nil, err
	}

	s.log.Info("Created category suggestion",
		"ingredient", ing.Name, "category", category.Name, "confidence", confidence)
	return sug, nil
}

func (s *categorizerService) suggestCategory(ctx context.Context, ing *types.Ingredient) (*types.Category, float64, string, error) {
	topLevel, err := s.closure.TopLevelCategories(ctx, nil)
	if err != nil {
		return nil, 0, "", err
	}
	if len(topLevel) == 0 {
		return nil, 0, "no categories available", nil
	}

	prompt := fmt.Sprintf(topLevelPrompt, ing.Name, formatCategoryList(topLevel))
	slug, confidence, reasoning, err := s.askForCategory(ctx, prompt)
	if err != nil {
		return nil, 0, "", err
	}
	if slug == "" {
		return nil, confidence, reasoning, nil
	}

	current, err := s.categories.GetBySlug(ctx, nil, slug)
	if err != nil {
		return nil, 0, "", err
	}
	if current == nil {
		s.log.Warn("Model returned unknown category slug", "slug", slug)
		return nil, 0, fmt.Sprintf("unknown category: %s", slug), nil
	}

	for depth := 0; depth < s.maxDrillDepth; depth++ {
		children, err := s.closure.DirectChildren(ctx, nil, current.ID)
		if err != nil {
			return nil, 0, "", err
		}
		if len(children) == 0 {
			break
		}

		prompt := fmt.Sprintf(subcategoryPrompt, current.Name, ing.Name, formatCategoryList(children))
		subSlug, subConfidence, subReasoning, err := s.askForCategory(ctx, prompt)
		if err != nil {
			return nil, 0, "", err
		}
		if subSlug == "" || subSlug == "parent" {
			if subReasoning != "" {
				reasoning = subReasoning
			}
			break
		}

		next, err := s.categories.GetBySlug(ctx, nil, subSlug)
		if err != nil {
			return nil, 0, "", err
		}
		if next == nil {
			s.log.Warn("Model returned unknown subcategory slug", "slug", subSlug)
			break
		}
		current = next
		confidence = subConfidence
		reasoning = subReasoning
	}

	return current, confidence, reasoning, nil
}

func (s *categorizerService) askForCategory(ctx context.Context, prompt string) (slug string, confidence float64, reasoning string, err error) {
	obj, err := s.llm.GenerateJSON(ctx, "", prompt, categorySchema)
	if err != nil {
		return "", 0, "", fmt.Errorf("categorization call failed: %w", err)
	}
	if v, ok := obj["category_slug"].(string); ok {
		slug = strings.TrimSpace(v)
	}
	if v, ok := obj["confidence"].(float64); ok {
		confidence = v
	}
	if v, ok := obj["reasoning"].(string); ok {
		reasoning = v
	}
	return slug, confidence, reasoning, nil
}

func formatCategoryList(categories []*types.Category) string {
	lines := make([]string, 0, len(categories))
	for _, c := range categories {
		lines = append(lines, fmt.Sprintf("- %s: %s", c.Slug, c.Name))
	}
	return strings.Join(lines, "\n")
}

func (s *categorizerService) CategorizePending(ctx context.Context, limit int) (*CategorizeReport, error) {
	pending, err := s.ingredients.ListNeedingCategorization(ctx, nil, limit)
	if err != nil {
		return nil, err
	}

	report := &CategorizeReport{}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(categorizeWorkers)
	for _, ing := range pending {
		g.Go(func() error {
			sug, err := s.CategorizeIngredient(gctx, ing.ID)
			mu.Lock()
			defer mu.Unlock()
			report.Processed++
			switch {
			case err != nil:
				// Capability failures are per-item, never abort the batch.
				report.Failed++
				report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", ing.Name, err))
			case sug != nil:
				report.Suggested++
			default:
				report.Skipped++
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.log.Info("Bulk categorization finished",
		"processed", report.Processed,
		"suggested", report.Suggested,
		"skipped", report.Skipped,
		"failed", report.Failed,
	)
	return report, nil
}
