package api_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodgram-app/backend/internal/models"
	"github.com/foodgram-app/backend/internal/testhelpers"
)

func recipePayload(tag *models.Tag, ingredients ...map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"name":         "Pancakes",
		"text":         "Whisk and fry",
		"image":        "https://example.com/pancakes.png",
		"cooking_time": 20,
		"tags":         []uint{tag.ID},
		"ingredients":  ingredients,
	}
}

func TestCreateRecipeEndpoint(t *testing.T) {
	env := newTestEnv(t)

	author := testhelpers.CreateUser(t, env.db, models.RoleUser)
	token := env.login(t, author)
	tag := testhelpers.CreateTag(t, env.db, "breakfast")
	flour := testhelpers.CreateIngredient(t, env.db, "flour", "g")

	t.Run("success", func(t *testing.T) {
		payload := recipePayload(tag,
			map[string]interface{}{"id": flour.ID, "amount": 200})
		w := env.do(t, http.MethodPost, "/api/v1/recipes", token, payload)
		requireStatus(t, w, http.StatusCreated)

		var body map[string]interface{}
		decodeBody(t, w, &body)
		assert.Equal(t, "Pancakes", body["name"])
		assert.Equal(t, author.Username, body["author"].(map[string]interface{})["username"])
		assert.Len(t, body["ingredients"], 1)
	})

	t.Run("requires authentication", func(t *testing.T) {
		payload := recipePayload(tag,
			map[string]interface{}{"id": flour.ID, "amount": 200})
		w := env.do(t, http.MethodPost, "/api/v1/recipes", "", payload)
		requireStatus(t, w, http.StatusUnauthorized)
	})

	t.Run("duplicate ingredient rejected", func(t *testing.T) {
		payload := recipePayload(tag,
			map[string]interface{}{"id": flour.ID, "amount": 100},
			map[string]interface{}{"id": flour.ID, "amount": 200})
		w := env.do(t, http.MethodPost, "/api/v1/recipes", token, payload)
		requireStatus(t, w, http.StatusBadRequest)
	})
}

func TestUpdateRecipeEndpoint(t *testing.T) {
	env := newTestEnv(t)

	author := testhelpers.CreateUser(t, env.db, models.RoleUser)
	stranger := testhelpers.CreateUser(t, env.db, models.RoleUser)
	moderator := testhelpers.CreateUser(t, env.db, models.RoleModerator)
	tag := testhelpers.CreateTag(t, env.db, "dinner")
	rice := testhelpers.CreateIngredient(t, env.db, "rice", "g")
	recipe := testhelpers.CreateRecipe(t, env.db, author, []*models.Tag{tag},
		testhelpers.Amount{Ingredient: rice, Value: 150})
	path := fmt.Sprintf("/api/v1/recipes/%d", recipe.ID)

	t.Run("author can rename", func(t *testing.T) {
		w := env.do(t, http.MethodPatch, path, env.login(t, author),
			map[string]string{"name": "Risotto"})
		requireStatus(t, w, http.StatusOK)

		var body map[string]interface{}
		decodeBody(t, w, &body)
		assert.Equal(t, "Risotto", body["name"])
		assert.EqualValues(t, 30, body["cooking_time"])
	})

	t.Run("stranger is forbidden", func(t *testing.T) {
		w := env.do(t, http.MethodPatch, path, env.login(t, stranger),
			map[string]string{"name": "Mine now"})
		requireStatus(t, w, http.StatusForbidden)
	})

	t.Run("moderator may edit", func(t *testing.T) {
		w := env.do(t, http.MethodPatch, path, env.login(t, moderator),
			map[string]string{"name": "Moderated"})
		requireStatus(t, w, http.StatusOK)
	})

	t.Run("missing recipe", func(t *testing.T) {
		w := env.do(t, http.MethodPatch, "/api/v1/recipes/9999", env.login(t, author),
			map[string]string{"name": "Ghost"})
		requireStatus(t, w, http.StatusNotFound)
	})
}

func TestDeleteRecipeEndpoint(t *testing.T) {
	env := newTestEnv(t)

	author := testhelpers.CreateUser(t, env.db, models.RoleUser)
	tag := testhelpers.CreateTag(t, env.db, "snack")
	corn := testhelpers.CreateIngredient(t, env.db, "corn", "g")
	recipe := testhelpers.CreateRecipe(t, env.db, author, []*models.Tag{tag},
		testhelpers.Amount{Ingredient: corn, Value: 50})
	token := env.login(t, author)
	path := fmt.Sprintf("/api/v1/recipes/%d", recipe.ID)

	w := env.do(t, http.MethodDelete, path, token, nil)
	requireStatus(t, w, http.StatusNoContent)

	w = env.do(t, http.MethodGet, path, "", nil)
	requireStatus(t, w, http.StatusNotFound)
}

func TestListRecipesEndpoint(t *testing.T) {
	env := newTestEnv(t)

	author := testhelpers.CreateUser(t, env.db, models.RoleUser)
	reader := testhelpers.CreateUser(t, env.db, models.RoleUser)
	tag := testhelpers.CreateTag(t, env.db, "lunch")
	beans := testhelpers.CreateIngredient(t, env.db, "beans", "g")
	liked := testhelpers.CreateRecipe(t, env.db, author, []*models.Tag{tag},
		testhelpers.Amount{Ingredient: beans, Value: 100})
	testhelpers.CreateRecipe(t, env.db, author, []*models.Tag{tag},
		testhelpers.Amount{Ingredient: beans, Value: 100})
	require.NoError(t, env.db.Create(&models.Favorite{UserID: reader.ID, RecipeID: liked.ID}).Error)

	type listBody struct {
		Recipes []struct {
			ID          uint `json:"id"`
			IsFavorited bool `json:"is_favorited"`
		} `json:"recipes"`
		Pagination struct {
			Total int64 `json:"total"`
		} `json:"pagination"`
	}

	t.Run("anonymous listing", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/v1/recipes", "", nil)
		requireStatus(t, w, http.StatusOK)

		var body listBody
		decodeBody(t, w, &body)
		assert.EqualValues(t, 2, body.Pagination.Total)
		for _, r := range body.Recipes {
			assert.False(t, r.IsFavorited)
		}
	})

	t.Run("favorited filter for authenticated reader", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/v1/recipes?is_favorited=1", env.login(t, reader), nil)
		requireStatus(t, w, http.StatusOK)

		var body listBody
		decodeBody(t, w, &body)
		require.Len(t, body.Recipes, 1)
		assert.Equal(t, liked.ID, body.Recipes[0].ID)
		assert.True(t, body.Recipes[0].IsFavorited)
	})

	t.Run("favorited filter ignored for anonymous callers", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/v1/recipes?is_favorited=1", "", nil)
		requireStatus(t, w, http.StatusOK)

		var body listBody
		decodeBody(t, w, &body)
		assert.EqualValues(t, 2, body.Pagination.Total)
	})
}

func TestFavoriteEndpoints(t *testing.T) {
	env := newTestEnv(t)

	author := testhelpers.CreateUser(t, env.db, models.RoleUser)
	reader := testhelpers.CreateUser(t, env.db, models.RoleUser)
	tag := testhelpers.CreateTag(t, env.db, "dessert")
	sugar := testhelpers.CreateIngredient(t, env.db, "sugar", "g")
	recipe := testhelpers.CreateRecipe(t, env.db, author, []*models.Tag{tag},
		testhelpers.Amount{Ingredient: sugar, Value: 30})
	token := env.login(t, reader)
	path := fmt.Sprintf("/api/v1/recipes/%d/favorite", recipe.ID)

	w := env.do(t, http.MethodPost, path, token, nil)
	requireStatus(t, w, http.StatusCreated)

	var body map[string]interface{}
	decodeBody(t, w, &body)
	assert.Equal(t, recipe.Name, body["name"])

	w = env.do(t, http.MethodPost, path, token, nil)
	requireStatus(t, w, http.StatusConflict)

	w = env.do(t, http.MethodDelete, path, token, nil)
	requireStatus(t, w, http.StatusNoContent)

	w = env.do(t, http.MethodDelete, path, token, nil)
	requireStatus(t, w, http.StatusNotFound)
}

func TestShoppingCartEndpoints(t *testing.T) {
	env := newTestEnv(t)

	author := testhelpers.CreateUser(t, env.db, models.RoleUser)
	reader := testhelpers.CreateUser(t, env.db, models.RoleUser)
	tag := testhelpers.CreateTag(t, env.db, "dinner")
	pasta := testhelpers.CreateIngredient(t, env.db, "pasta", "g")
	cheese := testhelpers.CreateIngredient(t, env.db, "cheese", "g")
	first := testhelpers.CreateRecipe(t, env.db, author, []*models.Tag{tag},
		testhelpers.Amount{Ingredient: pasta, Value: 200},
		testhelpers.Amount{Ingredient: cheese, Value: 50})
	second := testhelpers.CreateRecipe(t, env.db, author, []*models.Tag{tag},
		testhelpers.Amount{Ingredient: pasta, Value: 100})
	token := env.login(t, reader)

	for _, r := range []*models.Recipe{first, second} {
		w := env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/recipes/%d/shopping_cart", r.ID), token, nil)
		requireStatus(t, w, http.StatusCreated)
	}

	t.Run("download produces a PDF attachment", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/v1/recipes/download_shopping_cart", token, nil)
		requireStatus(t, w, http.StatusOK)
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
		require.Greater(t, w.Body.Len(), 4)
		assert.Equal(t, "%PDF", w.Body.String()[:4])
	})

	t.Run("download with an empty cart still succeeds", func(t *testing.T) {
		other := testhelpers.CreateUser(t, env.db, models.RoleUser)
		w := env.do(t, http.MethodGet, "/api/v1/recipes/download_shopping_cart", env.login(t, other), nil)
		requireStatus(t, w, http.StatusOK)
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	})

	t.Run("download requires authentication", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/v1/recipes/download_shopping_cart", "", nil)
		requireStatus(t, w, http.StatusUnauthorized)
	})
}
