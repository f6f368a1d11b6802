package database

import (
	"gorm.io/gorm"

	"github.com/foodgram-app/backend/internal/models"
)

// Migrate brings the schema up to date. Table order matters: join entities
// reference users, recipes, tags and ingredients.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Tag{},
		&models.Ingredient{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.Favorite{},
		&models.ShoppingCart{},
		&models.Subscription{},
	)
}
