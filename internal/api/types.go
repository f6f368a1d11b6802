package api

import (
	"github.com/foodgram-app/backend/internal/models"
	"github.com/foodgram-app/backend/internal/service"
)

type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Username  string `json:"username" binding:"required"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Password  string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RecipeIngredientRequest struct {
	ID     uint `json:"id" binding:"required"`
	Amount int  `json:"amount" binding:"required"`
}

type CreateRecipeRequest struct {
	Name        string                    `json:"name" binding:"required"`
	Text        string                    `json:"text"`
	Image       string                    `json:"image"`
	CookingTime int                       `json:"cooking_time" binding:"required"`
	Tags        []uint                    `json:"tags" binding:"required"`
	Ingredients []RecipeIngredientRequest `json:"ingredients" binding:"required"`
}

// UpdateRecipeRequest is a partial payload: absent fields are untouched, a
// present tags or ingredients list replaces the stored set.
type UpdateRecipeRequest struct {
	Name        *string                    `json:"name"`
	Text        *string                    `json:"text"`
	Image       *string                    `json:"image"`
	CookingTime *int                       `json:"cooking_time"`
	Tags        *[]uint                    `json:"tags"`
	Ingredients *[]RecipeIngredientRequest `json:"ingredients"`
}

type UserResponse struct {
	ID           uint   `json:"id"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
}

type RecipeIngredientResponse struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

type RecipeResponse struct {
	ID               uint                       `json:"id"`
	Tags             []models.Tag               `json:"tags"`
	Author           UserResponse               `json:"author"`
	Ingredients      []RecipeIngredientResponse `json:"ingredients"`
	IsFavorited      bool                       `json:"is_favorited"`
	IsInShoppingCart bool                       `json:"is_in_shopping_cart"`
	Name             string                     `json:"name"`
	Image            string                     `json:"image"`
	Text             string                     `json:"text"`
	CookingTime      int                        `json:"cooking_time"`
}

// RecipeSummary is the short representation returned by the toggle
// endpoints and nested in subscription listings.
type RecipeSummary struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

type SubscriptionResponse struct {
	UserResponse
	Recipes      []RecipeSummary `json:"recipes"`
	RecipesCount int64           `json:"recipes_count"`
}

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// relationSets carries the requesting user's relation membership, used to
// decorate responses. All sets are empty for anonymous requesters.
type relationSets struct {
	favorited  map[uint]bool
	inCart     map[uint]bool
	subscribed map[uint]bool
}

func newUserResponse(user *models.User, subscribed bool) UserResponse {
	return UserResponse{
		ID:           user.ID,
		Email:        user.Email,
		Username:     user.Username,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		IsSubscribed: subscribed,
	}
}

func newRecipeSummary(recipe *models.Recipe) RecipeSummary {
	return RecipeSummary{
		ID:          recipe.ID,
		Name:        recipe.Name,
		Image:       recipe.ImageURL,
		CookingTime: recipe.CookingTime,
	}
}

func newRecipeResponse(recipe *models.Recipe, sets relationSets) RecipeResponse {
	ingredients := make([]RecipeIngredientResponse, 0, len(recipe.Ingredients))
	for _, row := range recipe.Ingredients {
		ingredients = append(ingredients, RecipeIngredientResponse{
			ID:              row.IngredientID,
			Name:            row.Ingredient.Name,
			MeasurementUnit: row.Ingredient.MeasurementUnit,
			Amount:          row.Amount,
		})
	}

	tags := recipe.Tags
	if tags == nil {
		tags = []models.Tag{}
	}

	return RecipeResponse{
		ID:               recipe.ID,
		Tags:             tags,
		Author:           newUserResponse(&recipe.Author, sets.subscribed[recipe.AuthorID]),
		Ingredients:      ingredients,
		IsFavorited:      sets.favorited[recipe.ID],
		IsInShoppingCart: sets.inCart[recipe.ID],
		Name:             recipe.Name,
		Image:            recipe.ImageURL,
		Text:             recipe.Text,
		CookingTime:      recipe.CookingTime,
	}
}

func toIngredientAmounts(items []RecipeIngredientRequest) []service.IngredientAmount {
	out := make([]service.IngredientAmount, 0, len(items))
	for _, item := range items {
		out = append(out, service.IngredientAmount{
			IngredientID: item.ID,
			Amount:       item.Amount,
		})
	}
	return out
}
