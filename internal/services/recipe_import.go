package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	reciperepo "github.com/barhand/barhand-backend/internal/data/repos/recipes"
	types "github.com/barhand/barhand-backend/internal/domain"
	"github.com/barhand/barhand-backend/internal/pkg/apperr"
	"github.com/barhand/barhand-backend/internal/pkg/logger"
	"github.com/barhand/barhand-backend/internal/utils"
)

const recipeSlugMaxLen = 120

type parsedImportPayload struct {
	Recipes []ParsedRecipe `json:"recipes"`
}

// RecipeImportService runs the image-to-recipe pipeline: OCR a photographed
// book page, parse it into structured recipes, hold the result for review,
// and on approval materialize one parsed recipe into the catalog.
type RecipeImportService interface {
	ParseImage(ctx context.Context, img []byte, sourceName string) (*types.RecipeImport, error)
	GetImport(ctx context.Context, importID uuid.UUID) (*types.RecipeImport, error)
	ListImports(ctx context.Context, status string) ([]*types.RecipeImport, error)
	// ApproveImport creates or updates the recipe at recipeIndex of the
	// parsed payload in a single transaction, resolving every ingredient
	// name through the fuzzy matcher.
	ApproveImport(ctx context.Context, importID uuid.UUID, recipeIndex int, source string) (*types.Recipe, error)
	RejectImport(ctx context.Context, importID uuid.UUID) (*types.RecipeImport, error)
	MatchLogs(ctx context.Context, importID uuid.UUID) ([]*types.IngredientMatchLog, error)
}

type recipeImportService struct {
	db          *gorm.DB
	imports     reciperepo.RecipeImportRepo
	recipes     reciperepo.RecipeRepo
	recipeLines reciperepo.RecipeIngredientRepo
	matchLogs   reciperepo.IngredientMatchLogRepo
	matcher     IngredientMatchService
	ocr         OcrTranscriber
	parser      RecipeTextParser
	log         *logger.Logger
}

func NewRecipeImportService(
	db *gorm.DB,
	imports reciperepo.RecipeImportRepo,
	recipes reciperepo.RecipeRepo,
	recipeLines reciperepo.RecipeIngredientRepo,
	matchLogs reciperepo.IngredientMatchLogRepo,
	matcher IngredientMatchService,
	ocr OcrTranscriber,
	parser RecipeTextParser,
	baseLog *logger.Logger,
) RecipeImportService {
	return &recipeImportService{
		db:          db,
		imports:     imports,
		recipes:     recipes,
		recipeLines: recipeLines,
		matchLogs:   matchLogs,
		matcher:     matcher,
		ocr:         ocr,
		parser:      parser,
		log:         baseLog.With("service", "RecipeImportService"),
	}
}

func (s *recipeImportService) ParseImage(ctx context.Context, img []byte, sourceName string) (*types.RecipeImport, error) {
	if len(img) == 0 {
		return nil, apperr.Validation("image required")
	}

	text, err := s.ocr.Transcribe(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("transcribe page: %w", err)
	}
	parsed, err := s.parser.Parse(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("parse page text: %w", err)
	}

	raw, err := json.Marshal(parsedImportPayload{Recipes: parsed})
	if err != nil {
		return nil, err
	}
	imp := &types.RecipeImport{
		ID:         uuid.New(),
		Status:     types.ImportStatusPending,
		SourceName: sourceName,
		OCRText:    text,
		ParsedData: datatypes.JSON(raw),
		CreatedAt:  time.Now(),
	}
	if _, err := s.imports.Create(ctx, nil, imp); err != nil {
		return nil, err
	}

	s.log.Info("Parsed recipe image",
		"import_id", imp.ID, "source", sourceName, "recipes", len(parsed))
	return imp, nil
}

func (s *recipeImportService) GetImport(ctx context.Context, importID uuid.UUID) (*types.RecipeImport, error) {
	imp, err := s.imports.GetByID(ctx, nil, importID)
	if err != nil {
		return nil, err
	}
	if imp == nil {
		return nil, apperr.NotFound(fmt.Sprintf("import %s", importID))
	}
	return imp, nil
}

func (s *recipeImportService) ListImports(ctx context.Context, status string) ([]*types.RecipeImport, error) {
	return s.imports.ListByStatus(ctx, nil, status)
}

func (s *recipeImportService) ApproveImport(ctx context.Context, importID uuid.UUID, recipeIndex int, source string) (*types.Recipe, error) {
	var out *types.Recipe
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		imp, err := s.imports.GetByID(ctx, tx, importID)
		if err != nil {
			return err
		}
		if imp == nil {
			return apperr.NotFound(fmt.Sprintf("import %s", importID))
		}
		if imp.Status == types.ImportStatusApproved {
			return apperr.Invariant("import already approved")
		}

		var payload parsedImportPayload
		if len(imp.ParsedData) > 0 {
			if err := json.Unmarshal(imp.ParsedData, &payload); err != nil {
				return fmt.Errorf("decode parsed data: %w", err)
			}
		}
		if len(payload.Recipes) == 0 {
			return apperr.Invariant("no recipes in parsed data")
		}
		if recipeIndex < 0 || recipeIndex >= len(payload.Recipes) {
			return apperr.Validation(fmt.Sprintf("recipe index %d out of range", recipeIndex))
		}
		data := payload.Recipes[recipeIndex]

		existing, err := s.recipes.GetByNameIExact(ctx, tx, data.Name)
		if err != nil {
			return err
		}
		if existing != nil {
			out, err = s.updateRecipe(ctx, tx, existing, data, imp.ID)
		} else {
			out, err = s.createRecipe(ctx, tx, data, source, imp.ID)
		}
		if err != nil {
			return err
		}

		now := time.Now()
		imp.Status = types.ImportStatusApproved
		imp.RecipeID = &out.ID
		imp.ApprovedAt = &now
		return s.imports.Update(ctx, tx, imp)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Approved recipe import",
		"import_id", importID, "recipe_id", out.ID, "name", out.Name)
	return out, nil
}

func (s *recipeImportService) createRecipe(ctx context.Context, tx *gorm.DB, data ParsedRecipe, source string, importID uuid.UUID) (*types.Recipe, error) {
	slug, err := s.uniqueSlug(ctx, tx, utils.Slugify(data.Name, recipeSlugMaxLen))
	if err != nil {
		return nil, err
	}
	rec := &types.Recipe{
		ID:      uuid.New(),
		Name:    data.Name,
		Slug:    slug,
		Source:  source,
		Page:    data.Page,
		Method:  data.Method,
		Garnish: data.Garnish,
	}
	if _, err := s.recipes.Create(ctx, tx, []*types.Recipe{rec}); err != nil {
		return nil, err
	}
	if err := s.createLines(ctx, tx, rec.ID, data.Ingredients, importID); err != nil {
		return nil, err
	}
	return rec, nil
}

// updateRecipe refreshes the non-empty fields and replaces all lines.
func (s *recipeImportService) updateRecipe(ctx context.Context, tx *gorm.DB, rec *types.Recipe, data ParsedRecipe, importID uuid.UUID) (*types.Recipe, error) {
	if data.Page != nil {
		rec.Page = data.Page
	}
	if data.Method != "" {
		rec.Method = data.Method
	}
	if data.Garnish != "" {
		rec.Garnish = data.Garnish
	}
	rec.Lines = nil
	if err := s.recipes.Update(ctx, tx, rec); err != nil {
		return nil, err
	}
	if err := s.recipeLines.DeleteByRecipe(ctx, tx, rec.ID); err != nil {
		return nil, err
	}
	if err := s.createLines(ctx, tx, rec.ID, data.Ingredients, importID); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *recipeImportService) createLines(ctx context.Context, tx *gorm.DB, recipeID uuid.UUID, lines []ParsedIngredient, importID uuid.UUID) error {
	rows := make([]*types.RecipeIngredient, 0, len(lines))
	for i, ln := range lines {
		ing, _, err := s.matcher.FindOrCreateIngredient(ctx, tx, ln.Name, &importID)
		if err != nil {
			return err
		}
		rows = append(rows, &types.RecipeIngredient{
			ID:           uuid.New(),
			RecipeID:     recipeID,
			IngredientID: ing.ID,
			Amount:       ParseAmount(ln.Amount),
			Unit:         NormalizeUnit(ln.Unit),
			Position:     i,
		})
	}
	_, err := s.recipeLines.Create(ctx, tx, rows)
	return err
}

func (s *recipeImportService) uniqueSlug(ctx context.Context, tx *gorm.DB, base string) (string, error) {
	slug := base
	for counter := 1; ; counter++ {
		exists, err := s.recipes.SlugExists(ctx, tx, slug)
		if err != nil {
			return "", err
		}
		if !exists {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, counter)
	}
}

func (s *recipeImportService) RejectImport(ctx context.Context, importID uuid.UUID) (*types.RecipeImport, error) {
	imp, err := s.imports.GetByID(ctx, nil, importID)
	if err != nil {
		return nil, err
	}
	if imp == nil {
		return nil, apperr.NotFound(fmt.Sprintf("import %s", importID))
	}
	if imp.Status == types.ImportStatusApproved {
		return nil, apperr.Invariant("import already approved")
	}
	imp.Status = types.ImportStatusRejected
	if err := s.imports.Update(ctx, nil, imp); err != nil {
		return nil, err
	}
	s.log.Info("Rejected recipe import", "import_id", importID)
	return imp, nil
}

func (s *recipeImportService) MatchLogs(ctx context.Context, importID uuid.UUID) ([]*types.IngredientMatchLog, error) {
	return s.matchLogs.ListByImport(ctx, nil, importID)
}
