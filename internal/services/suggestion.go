package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/barhand/barhand-backend/internal/data/repos/catalog"
	types "github.com/barhand/barhand-backend/internal/domain"
	"github.com/barhand/barhand-backend/internal/pkg/apperr"
	"github.com/barhand/barhand-backend/internal/pkg/logger"
)

// SuggestionService reviews LLM-proposed category assignments. Approve and
// reject are terminal; both record the acting admin and a timestamp.
type SuggestionService interface {
	Approve(ctx context.Context, suggestionID, actorID uuid.UUID) (*types.CategorySuggestion, error)
	Reject(ctx context.Context, suggestionID, actorID uuid.UUID) (*types.CategorySuggestion, error)
	ListPending(ctx context.Context) ([]*types.CategorySuggestion, error)
	ListByIngredient(ctx context.Context, ingredientID uuid.UUID) ([]*types.CategorySuggestion, error)
}

type suggestionService struct {
	db          *gorm.DB
	suggestions catalog.CategorySuggestionRepo
	ingredients catalog.IngredientRepo
	log         *logger.Logger
}

func NewSuggestionService(
	db *gorm.DB,
	suggestions catalog.CategorySuggestionRepo,
	ingredients catalog.IngredientRepo,
	baseLog *logger.Logger,
) SuggestionService {
	return &suggestionService{
		db:          db,
		suggestions: suggestions,
		ingredients: ingredients,
		log:         baseLog.With("service", "SuggestionService"),
	}
}

func (s *suggestionService) Approve(ctx context.Context, suggestionID, actorID uuid.UUID) (*types.CategorySuggestion, error) {
	var out *types.CategorySuggestion
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sug, err := s.pendingForUpdate(ctx, tx, suggestionID)
		if err != nil {
			return err
		}

		// Union semantics: assigning an already-present category is a no-op.
		if err := s.ingredients.AddCategory(ctx, tx, sug.IngredientID, sug.CategoryID); err != nil {
			return err
		}
		if err := s.ingredients.SetNeedsCategorization(ctx, tx, sug.IngredientID, false); err != nil {
			return err
		}

		now := time.Now()
		sug.Status = types.SuggestionStatusApproved
		sug.ReviewedAt = &now
		sug.ReviewedByID = &actorID
		if err := s.suggestions.Update(ctx, tx, sug); err != nil {
			return err
		}
		out = sug
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Approved category suggestion",
		"suggestion_id", out.ID,
		"ingredient_id", out.IngredientID,
		"category_id", out.CategoryID,
		"actor_id", actorID,
	)
	return out, nil
}

func (s *suggestionService) Reject(ctx context.Context, suggestionID, actorID uuid.UUID) (*types.CategorySuggestion, error) {
	var out *types.CategorySuggestion
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sug, err := s.pendingForUpdate(ctx, tx, suggestionID)
		if err != nil {
			return err
		}
		now := time.Now()
		sug.Status = types.SuggestionStatusRejected
		sug.ReviewedAt = &now
		sug.ReviewedByID = &actorID
		if err := s.suggestions.Update(ctx, tx, sug); err != nil {
			return err
		}
		out = sug
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Rejected category suggestion", "suggestion_id", out.ID, "actor_id", actorID)
	return out, nil
}

func (s *suggestionService) pendingForUpdate(ctx context.Context, tx *gorm.DB, suggestionID uuid.UUID) (*types.CategorySuggestion, error) {
	sug, err := s.suggestions.GetByIDForUpdate(ctx, tx, suggestionID)
	if err != nil {
		return nil, err
	}
	if sug == nil {
		return nil, apperr.NotFound(fmt.Sprintf("suggestion %s", suggestionID))
	}
	if sug.Status != types.SuggestionStatusPending {
		return nil, apperr.Invariant(fmt.Sprintf("suggestion %s is %s, not pending", suggestionID, sug.Status))
	}
	return sug, nil
}

func (s *suggestionService) ListPending(ctx context.Context) ([]*types.CategorySuggestion, error) {
	return s.suggestions.ListPending(ctx, nil)
}

func (s *suggestionService) ListByIngredient(ctx context.Context, ingredientID uuid.UUID) ([]*types.CategorySuggestion, error) {
	return s.suggestions.ListByIngredient(ctx, nil, ingredientID)
}
