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

func TestFavorites(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	svc := service.NewRelationService(db)
	ctx := context.Background()

	user := testhelpers.CreateUser(t, db, models.RoleUser)
	author := testhelpers.CreateUser(t, db, models.RoleUser)
	tag := testhelpers.CreateTag(t, db, "dinner")
	rice := testhelpers.CreateIngredient(t, db, "rice", "g")
	recipe := testhelpers.CreateRecipe(t, db, author, []*models.Tag{tag},
		testhelpers.Amount{Ingredient: rice, Value: 200})

	t.Run("add", func(t *testing.T) {
		got, err := svc.AddFavorite(ctx, user.ID, recipe.ID)
		require.NoError(t, err)
		assert.Equal(t, recipe.ID, got.ID)
	})

	t.Run("second add conflicts and leaves one row", func(t *testing.T) {
		_, err := svc.AddFavorite(ctx, user.ID, recipe.ID)
		assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))

		var count int64
		require.NoError(t, db.Model(&models.Favorite{}).
			Where("user_id = ? AND recipe_id = ?", user.ID, recipe.ID).
			Count(&count).Error)
		assert.EqualValues(t, 1, count)
	})

	t.Run("unknown recipe", func(t *testing.T) {
		_, err := svc.AddFavorite(ctx, user.ID, 9999)
		assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
	})

	t.Run("remove", func(t *testing.T) {
		require.NoError(t, svc.RemoveFavorite(ctx, user.ID, recipe.ID))
	})

	t.Run("remove missing", func(t *testing.T) {
		err := svc.RemoveFavorite(ctx, user.ID, recipe.ID)
		assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
	})
}

func TestShoppingCartRelations(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	svc := service.NewRelationService(db)
	ctx := context.Background()

	user := testhelpers.CreateUser(t, db, models.RoleUser)
	author := testhelpers.CreateUser(t, db, models.RoleUser)
	tag := testhelpers.CreateTag(t, db, "lunch")
	pasta := testhelpers.CreateIngredient(t, db, "pasta", "g")
	recipe := testhelpers.CreateRecipe(t, db, author, []*models.Tag{tag},
		testhelpers.Amount{Ingredient: pasta, Value: 150})

	_, err := svc.AddToCart(ctx, user.ID, recipe.ID)
	require.NoError(t, err)

	_, err = svc.AddToCart(ctx, user.ID, recipe.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))

	set, err := svc.CartRecipeSet(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, set[recipe.ID])

	require.NoError(t, svc.RemoveFromCart(ctx, user.ID, recipe.ID))

	err = svc.RemoveFromCart(ctx, user.ID, recipe.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestSubscriptions(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	svc := service.NewRelationService(db)
	ctx := context.Background()

	reader := testhelpers.CreateUser(t, db, models.RoleUser)
	author := testhelpers.CreateUser(t, db, models.RoleUser)
	other := testhelpers.CreateUser(t, db, models.RoleUser)

	t.Run("subscribe", func(t *testing.T) {
		got, err := svc.Subscribe(ctx, reader.ID, author.ID)
		require.NoError(t, err)
		assert.Equal(t, author.ID, got.ID)

		subscribed, err := svc.IsSubscribed(ctx, reader.ID, author.ID)
		require.NoError(t, err)
		assert.True(t, subscribed)
	})

	t.Run("duplicate subscription conflicts", func(t *testing.T) {
		_, err := svc.Subscribe(ctx, reader.ID, author.ID)
		assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
	})

	t.Run("self subscription rejected", func(t *testing.T) {
		_, err := svc.Subscribe(ctx, reader.ID, reader.ID)
		assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	})

	t.Run("unknown author", func(t *testing.T) {
		_, err := svc.Subscribe(ctx, reader.ID, 9999)
		assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
	})

	t.Run("listing", func(t *testing.T) {
		_, err := svc.Subscribe(ctx, reader.ID, other.ID)
		require.NoError(t, err)

		authors, total, err := svc.Subscriptions(ctx, reader.ID, 1, 10)
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
		assert.Len(t, authors, 2)
	})

	t.Run("unsubscribe", func(t *testing.T) {
		require.NoError(t, svc.Unsubscribe(ctx, reader.ID, author.ID))

		subscribed, err := svc.IsSubscribed(ctx, reader.ID, author.ID)
		require.NoError(t, err)
		assert.False(t, subscribed)
	})

	t.Run("unsubscribe without subscription", func(t *testing.T) {
		err := svc.Unsubscribe(ctx, reader.ID, author.ID)
		assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
	})
}

func TestRelationSets(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	svc := service.NewRelationService(db)
	ctx := context.Background()

	user := testhelpers.CreateUser(t, db, models.RoleUser)
	author := testhelpers.CreateUser(t, db, models.RoleUser)
	tag := testhelpers.CreateTag(t, db, "snack")
	corn := testhelpers.CreateIngredient(t, db, "corn", "g")
	liked := testhelpers.CreateRecipe(t, db, author, []*models.Tag{tag},
		testhelpers.Amount{Ingredient: corn, Value: 100})
	ignored := testhelpers.CreateRecipe(t, db, author, []*models.Tag{tag},
		testhelpers.Amount{Ingredient: corn, Value: 100})

	_, err := svc.AddFavorite(ctx, user.ID, liked.ID)
	require.NoError(t, err)
	_, err = svc.Subscribe(ctx, user.ID, author.ID)
	require.NoError(t, err)

	favorites, err := svc.FavoriteRecipeSet(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, favorites[liked.ID])
	assert.False(t, favorites[ignored.ID])

	authors, err := svc.SubscribedAuthorSet(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, authors[author.ID])
}
