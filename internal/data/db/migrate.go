package db

import (
	types "github.com/barhand/barhand-backend/internal/domain"
	"gorm.io/gorm"
)

func (s *PostgresService) AutoMigrateAll() error {
	return AutoMigrateAll(s.db)
}

func AutoMigrateAll(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&types.User{},

		&types.Category{},
		&types.CategoryClosure{},
		&types.Ingredient{},
		&types.IngredientCategory{},
		&types.CategorySuggestion{},

		&types.Recipe{},
		&types.RecipeIngredient{},
		&types.RecipeImport{},
		&types.IngredientMatchLog{},

		&types.UserInventory{},
	)
}
