package domain

import (
	"github.com/barhand/barhand-backend/internal/domain/catalog"
	"github.com/barhand/barhand-backend/internal/domain/inventory"
	"github.com/barhand/barhand-backend/internal/domain/recipes"
	"github.com/barhand/barhand-backend/internal/domain/user"
)

type User = user.User

type Category = catalog.Category
type CategoryClosure = catalog.CategoryClosure
type Ingredient = catalog.Ingredient
type IngredientCategory = catalog.IngredientCategory
type CategorySuggestion = catalog.CategorySuggestion

type Recipe = recipes.Recipe
type RecipeIngredient = recipes.RecipeIngredient
type RecipeImport = recipes.RecipeImport
type IngredientMatchLog = recipes.IngredientMatchLog

type UserInventory = inventory.UserInventory

const (
	SuggestionStatusPending  = catalog.SuggestionStatusPending
	SuggestionStatusApproved = catalog.SuggestionStatusApproved
	SuggestionStatusRejected = catalog.SuggestionStatusRejected

	ImportStatusPending  = recipes.ImportStatusPending
	ImportStatusApproved = recipes.ImportStatusApproved
	ImportStatusRejected = recipes.ImportStatusRejected

	MatchStatusExact = recipes.MatchStatusExact
	MatchStatusSlug  = recipes.MatchStatusSlug
	MatchStatusFuzzy = recipes.MatchStatusFuzzy
	MatchStatusNew   = recipes.MatchStatusNew
)
