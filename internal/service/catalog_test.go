package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodgram-app/backend/internal/apperrors"
	"github.com/foodgram-app/backend/internal/models"
	"github.com/foodgram-app/backend/internal/service"
	"github.com/foodgram-app/backend/internal/testhelpers"
)

func TestTags(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	svc := service.NewCatalogService(db)
	ctx := context.Background()

	breakfast := testhelpers.CreateTag(t, db, "breakfast")
	testhelpers.CreateTag(t, db, "dinner")

	tags, err := svc.ListTags(ctx)
	require.NoError(t, err)
	assert.Len(t, tags, 2)

	tag, err := svc.GetTag(ctx, breakfast.ID)
	require.NoError(t, err)
	assert.Equal(t, "breakfast", tag.Slug)

	_, err = svc.GetTag(ctx, 9999)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestSearchIngredients(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	svc := service.NewCatalogService(db)
	ctx := context.Background()

	testhelpers.CreateIngredient(t, db, "Potato", "kg")
	testhelpers.CreateIngredient(t, db, "potato starch", "g")
	testhelpers.CreateIngredient(t, db, "sweet potato", "kg")
	testhelpers.CreateIngredient(t, db, "carrot", "kg")

	t.Run("prefix match is case insensitive", func(t *testing.T) {
		found, err := svc.SearchIngredients(ctx, "pot")
		require.NoError(t, err)
		require.Len(t, found, 2)
		for _, ing := range found {
			assert.NotEqual(t, "sweet potato", ing.Name)
		}
	})

	t.Run("empty prefix returns everything", func(t *testing.T) {
		found, err := svc.SearchIngredients(ctx, "")
		require.NoError(t, err)
		assert.Len(t, found, 4)
	})

	t.Run("no match", func(t *testing.T) {
		found, err := svc.SearchIngredients(ctx, "zucchini")
		require.NoError(t, err)
		assert.Empty(t, found)
	})
}

func TestGetIngredient(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	svc := service.NewCatalogService(db)
	ctx := context.Background()

	onion := testhelpers.CreateIngredient(t, db, "onion", "pcs")

	ing, err := svc.GetIngredient(ctx, onion.ID)
	require.NoError(t, err)
	assert.Equal(t, "onion", ing.Name)
	assert.Equal(t, "pcs", ing.MeasurementUnit)

	_, err = svc.GetIngredient(ctx, 9999)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestUserService(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	svc := service.NewUserService(db)
	ctx := context.Background()

	author := testhelpers.CreateUser(t, db, models.RoleUser)
	testhelpers.CreateUser(t, db, models.RoleUser)
	tag := testhelpers.CreateTag(t, db, "vegan")
	beans := testhelpers.CreateIngredient(t, db, "beans", "g")
	for i := 0; i < 3; i++ {
		testhelpers.CreateRecipe(t, db, author, []*models.Tag{tag},
			testhelpers.Amount{Ingredient: beans, Value: 100})
	}

	t.Run("get", func(t *testing.T) {
		got, err := svc.GetUser(ctx, author.ID)
		require.NoError(t, err)
		assert.Equal(t, author.Username, got.Username)

		_, err = svc.GetUser(ctx, 9999)
		assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
	})

	t.Run("list with pagination", func(t *testing.T) {
		users, total, err := svc.ListUsers(ctx, 1, 1)
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
		assert.Len(t, users, 1)
	})

	t.Run("recipes by author with limit", func(t *testing.T) {
		recipes, total, err := svc.RecipesByAuthor(ctx, author.ID, 2)
		require.NoError(t, err)
		assert.EqualValues(t, 3, total)
		assert.Len(t, recipes, 2)
	})
}
