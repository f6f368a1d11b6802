package testhelpers

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/foodgram-app/backend/internal/models"
)

// TestPassword is the plaintext behind every fixture user's hash.
const TestPassword = "testpassword123"

var seq int

func next() int {
	seq++
	return seq
}

// CreateUser inserts a user with a unique email/username and the given role.
func CreateUser(t *testing.T, db *gorm.DB, role models.Role) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	require.NoError(t, err)

	n := next()
	user := &models.User{
		Email:        fmt.Sprintf("user%d@example.com", n),
		Username:     fmt.Sprintf("user%d", n),
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: string(hash),
		Role:         role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateTag inserts a tag whose name, color and slug derive from slug.
func CreateTag(t *testing.T, db *gorm.DB, slug string) *models.Tag {
	t.Helper()

	tag := &models.Tag{
		Name:  slug,
		Color: fmt.Sprintf("#%06d", next()),
		Slug:  slug,
	}
	require.NoError(t, db.Create(tag).Error)
	return tag
}

// CreateIngredient inserts an ingredient.
func CreateIngredient(t *testing.T, db *gorm.DB, name, unit string) *models.Ingredient {
	t.Helper()

	ingredient := &models.Ingredient{Name: name, MeasurementUnit: unit}
	require.NoError(t, db.Create(ingredient).Error)
	return ingredient
}

// Amount pairs an ingredient with a quantity for CreateRecipe.
type Amount struct {
	Ingredient *models.Ingredient
	Value      int
}

// CreateRecipe inserts a recipe with its tag and ingredient rows directly,
// bypassing the service layer.
func CreateRecipe(t *testing.T, db *gorm.DB, author *models.User, tags []*models.Tag, amounts ...Amount) *models.Recipe {
	t.Helper()

	recipe := &models.Recipe{
		AuthorID:    author.ID,
		Name:        fmt.Sprintf("Recipe %d", next()),
		Text:        "Test description",
		CookingTime: 30,
	}
	require.NoError(t, db.Create(recipe).Error)

	for _, tag := range tags {
		require.NoError(t, db.Model(recipe).Association("Tags").Append(tag))
	}

	for _, a := range amounts {
		row := models.RecipeIngredient{
			RecipeID:     recipe.ID,
			IngredientID: a.Ingredient.ID,
			Amount:       a.Value,
		}
		require.NoError(t, db.Create(&row).Error)
	}

	return recipe
}
