package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/foodgram-app/backend/internal/apperrors"
	"github.com/foodgram-app/backend/internal/models"
)

// Actor identifies the user performing a mutation, with enough information
// for ownership checks.
type Actor struct {
	UserID uint
	Role   models.Role
}

func (a Actor) canMutate(r *models.Recipe) bool {
	return a.UserID == r.AuthorID || a.Role == models.RoleModerator || a.Role == models.RoleAdmin
}

// IngredientAmount is one (ingredient, quantity) entry of a submitted recipe.
type IngredientAmount struct {
	IngredientID uint
	Amount       int
}

// RecipeInput is a full recipe payload for create.
type RecipeInput struct {
	Name        string
	Text        string
	ImageURL    string
	CookingTime int
	TagIDs      []uint
	Ingredients []IngredientAmount
}

// RecipeUpdateInput carries partial updates. Nil fields are left untouched;
// a present TagIDs or Ingredients list replaces the whole set.
type RecipeUpdateInput struct {
	Name        *string
	Text        *string
	ImageURL    *string
	CookingTime *int
	TagIDs      *[]uint
	Ingredients *[]IngredientAmount
}

// RecipeFilter selects recipes for listing. UserID is the requesting user;
// Favorited and InCart are ignored when it is nil.
type RecipeFilter struct {
	AuthorID  *uint
	TagSlugs  []string
	Favorited bool
	InCart    bool
	UserID    *uint
	Page      int
	Limit     int
}

// RecipeService persists recipes together with their tag sets and weighted
// ingredient lists.
type RecipeService struct {
	db *gorm.DB
}

func NewRecipeService(db *gorm.DB) *RecipeService {
	return &RecipeService{db: db}
}

// CreateRecipe validates the payload and persists the recipe, its tag
// associations and its ingredient rows as a single transaction.
func (s *RecipeService) CreateRecipe(ctx context.Context, authorID uint, input RecipeInput) (*models.Recipe, error) {
	if input.Name == "" {
		return nil, apperrors.Validation("name", "name is required")
	}
	if input.CookingTime <= 0 {
		return nil, apperrors.Validation("cooking_time", "cooking_time must be greater than 0")
	}
	if len(input.Ingredients) == 0 {
		return nil, apperrors.Validation("ingredients", "at least one ingredient is required")
	}
	if len(input.TagIDs) == 0 {
		return nil, apperrors.Validation("tags", "at least one tag is required")
	}

	recipe := models.Recipe{
		AuthorID:    authorID,
		Name:        input.Name,
		Text:        input.Text,
		ImageURL:    input.ImageURL,
		CookingTime: input.CookingTime,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows, err := s.buildIngredientRows(tx, input.Ingredients)
		if err != nil {
			return err
		}

		tags, err := s.resolveTags(tx, input.TagIDs)
		if err != nil {
			return err
		}

		if err := tx.Create(&recipe).Error; err != nil {
			return fmt.Errorf("failed to create recipe: %w", err)
		}

		if err := tx.Model(&recipe).Association("Tags").Replace(&tags); err != nil {
			return fmt.Errorf("failed to assign tags: %w", err)
		}

		for i := range rows {
			rows[i].RecipeID = recipe.ID
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to create recipe ingredients: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetRecipe(ctx, recipe.ID)
}

// UpdateRecipe applies a partial update. When the ingredient list is present
// the stored set is discarded and replaced wholesale, never merged.
func (s *RecipeService) UpdateRecipe(ctx context.Context, recipeID uint, actor Actor, input RecipeUpdateInput) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("recipe not found")
		}
		return nil, fmt.Errorf("failed to find recipe: %w", err)
	}

	if !actor.canMutate(&recipe) {
		return nil, apperrors.Permission("you do not have sufficient rights to modify this recipe")
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, apperrors.Validation("name", "name cannot be empty")
		}
		recipe.Name = *input.Name
	}
	if input.Text != nil {
		recipe.Text = *input.Text
	}
	if input.ImageURL != nil {
		recipe.ImageURL = *input.ImageURL
	}
	if input.CookingTime != nil {
		if *input.CookingTime <= 0 {
			return nil, apperrors.Validation("cooking_time", "cooking_time must be greater than 0")
		}
		recipe.CookingTime = *input.CookingTime
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&recipe).Error; err != nil {
			return fmt.Errorf("failed to update recipe: %w", err)
		}

		if input.TagIDs != nil {
			tags, err := s.resolveTags(tx, *input.TagIDs)
			if err != nil {
				return err
			}
			if err := tx.Model(&recipe).Association("Tags").Replace(&tags); err != nil {
				return fmt.Errorf("failed to replace tags: %w", err)
			}
		}

		if input.Ingredients != nil {
			rows, err := s.buildIngredientRows(tx, *input.Ingredients)
			if err != nil {
				return err
			}
			if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
				return fmt.Errorf("failed to clear recipe ingredients: %w", err)
			}
			for i := range rows {
				rows[i].RecipeID = recipe.ID
			}
			if len(rows) > 0 {
				if err := tx.Create(&rows).Error; err != nil {
					return fmt.Errorf("failed to replace recipe ingredients: %w", err)
				}
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetRecipe(ctx, recipe.ID)
}

// GetRecipe retrieves one recipe with its author, tags and ingredient rows.
func (s *RecipeService) GetRecipe(ctx context.Context, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients.Ingredient").
		First(&recipe, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("recipe not found")
		}
		return nil, fmt.Errorf("failed to find recipe: %w", err)
	}
	return &recipe, nil
}

// DeleteRecipe removes a recipe and its dependent rows after an ownership
// check.
func (s *RecipeService) DeleteRecipe(ctx context.Context, recipeID uint, actor Actor) error {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("recipe not found")
		}
		return fmt.Errorf("failed to find recipe: %w", err)
	}

	if !actor.canMutate(&recipe) {
		return apperrors.Permission("you do not have sufficient rights to delete this recipe")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&recipe).Association("Tags").Clear(); err != nil {
			return fmt.Errorf("failed to clear recipe tags: %w", err)
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return fmt.Errorf("failed to delete recipe ingredients: %w", err)
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.Favorite{}).Error; err != nil {
			return fmt.Errorf("failed to delete favorites: %w", err)
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.ShoppingCart{}).Error; err != nil {
			return fmt.Errorf("failed to delete cart entries: %w", err)
		}
		if err := tx.Delete(&recipe).Error; err != nil {
			return fmt.Errorf("failed to delete recipe: %w", err)
		}
		return nil
	})
}

// ListRecipes returns the filtered, duplicate-free recipe collection ordered
// by publication date descending, plus the total count before pagination.
func (s *RecipeService) ListRecipes(ctx context.Context, filter RecipeFilter) ([]models.Recipe, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Recipe{})

	if filter.AuthorID != nil {
		query = query.Where("recipes.author_id = ?", *filter.AuthorID)
	}

	// OR-semantics over slugs; the IN-subquery keeps recipes matching
	// several tags from appearing twice.
	if len(filter.TagSlugs) > 0 {
		tagged := s.db.Table("recipe_tags").
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", filter.TagSlugs)
		query = query.Where("recipes.id IN (?)", tagged)
	}

	if filter.UserID != nil {
		if filter.Favorited {
			query = query.Where("recipes.id IN (?)",
				s.db.Table("favorites").Select("recipe_id").Where("user_id = ?", *filter.UserID))
		}
		if filter.InCart {
			query = query.Where("recipes.id IN (?)",
				s.db.Table("shopping_carts").Select("recipe_id").Where("user_id = ?", *filter.UserID))
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count recipes: %w", err)
	}

	if filter.Page > 0 && filter.Limit > 0 {
		query = query.Offset((filter.Page - 1) * filter.Limit).Limit(filter.Limit)
	}

	var recipes []models.Recipe
	err := query.
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients.Ingredient").
		Order("recipes.created_at DESC, recipes.id DESC").
		Find(&recipes).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list recipes: %w", err)
	}

	return recipes, total, nil
}

// buildIngredientRows validates a submitted (ingredient, amount) list and
// resolves it to join rows. Duplicate ingredient ids in one submission are
// rejected rather than silently collapsed.
func (s *RecipeService) buildIngredientRows(tx *gorm.DB, items []IngredientAmount) ([]models.RecipeIngredient, error) {
	seen := make(map[uint]bool, len(items))
	ids := make([]uint, 0, len(items))
	for _, item := range items {
		if item.Amount <= 0 {
			return nil, apperrors.Validation("ingredients", "amount must be greater than 0")
		}
		if seen[item.IngredientID] {
			return nil, apperrors.Validation("ingredients",
				fmt.Sprintf("ingredient %d is listed more than once", item.IngredientID))
		}
		seen[item.IngredientID] = true
		ids = append(ids, item.IngredientID)
	}

	var found []models.Ingredient
	if err := tx.Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, fmt.Errorf("failed to look up ingredients: %w", err)
	}
	if len(found) != len(ids) {
		exists := make(map[uint]bool, len(found))
		for _, ing := range found {
			exists[ing.ID] = true
		}
		for _, id := range ids {
			if !exists[id] {
				return nil, apperrors.Validation("ingredients",
					fmt.Sprintf("ingredient %d does not exist", id))
			}
		}
	}

	rows := make([]models.RecipeIngredient, 0, len(items))
	for _, item := range items {
		rows = append(rows, models.RecipeIngredient{
			IngredientID: item.IngredientID,
			Amount:       item.Amount,
		})
	}
	return rows, nil
}

func (s *RecipeService) resolveTags(tx *gorm.DB, tagIDs []uint) ([]models.Tag, error) {
	var tags []models.Tag
	if err := tx.Where("id IN ?", tagIDs).Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("failed to look up tags: %w", err)
	}
	if len(tags) != len(uniqueIDs(tagIDs)) {
		exists := make(map[uint]bool, len(tags))
		for _, tag := range tags {
			exists[tag.ID] = true
		}
		for _, id := range tagIDs {
			if !exists[id] {
				return nil, apperrors.Validation("tags", fmt.Sprintf("tag %d does not exist", id))
			}
		}
	}
	return tags, nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
