package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/foodgram-app/backend/internal/apperrors"
	"github.com/foodgram-app/backend/internal/models"
)

// RelationService implements the toggle relations: favorites, shopping cart
// entries and author subscriptions. Each add is guarded by a pre-check and,
// authoritatively, by the store's unique pair constraint: the loser of a
// concurrent duplicate-add race gets a conflict, not a silent duplicate.
type RelationService struct {
	db *gorm.DB
}

func NewRelationService(db *gorm.DB) *RelationService {
	return &RelationService{db: db}
}

// AddFavorite marks a recipe as favorited and returns it.
func (s *RelationService) AddFavorite(ctx context.Context, userID, recipeID uint) (*models.Recipe, error) {
	return s.addRecipeRelation(ctx, userID, recipeID, "favorites",
		func() error {
			return s.db.WithContext(ctx).Create(&models.Favorite{UserID: userID, RecipeID: recipeID}).Error
		})
}

// RemoveFavorite deletes the (user, recipe) favorite pair. Removing a pair
// that was never added is a not-found, mirroring DELETE on a missing resource.
func (s *RelationService) RemoveFavorite(ctx context.Context, userID, recipeID uint) error {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&models.Favorite{})
	if res.Error != nil {
		return fmt.Errorf("failed to remove favorite: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("recipe is not in your favorites")
	}
	return nil
}

// AddToCart puts a recipe into the user's shopping cart and returns it.
func (s *RelationService) AddToCart(ctx context.Context, userID, recipeID uint) (*models.Recipe, error) {
	return s.addRecipeRelation(ctx, userID, recipeID, "shopping cart",
		func() error {
			return s.db.WithContext(ctx).Create(&models.ShoppingCart{UserID: userID, RecipeID: recipeID}).Error
		})
}

// RemoveFromCart deletes the (user, recipe) cart pair.
func (s *RelationService) RemoveFromCart(ctx context.Context, userID, recipeID uint) error {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&models.ShoppingCart{})
	if res.Error != nil {
		return fmt.Errorf("failed to remove cart entry: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("recipe is not in your shopping cart")
	}
	return nil
}

// Subscribe makes userID a follower of authorID and returns the author.
// Self-subscription is rejected here and by the table's check constraint.
func (s *RelationService) Subscribe(ctx context.Context, userID, authorID uint) (*models.User, error) {
	if userID == authorID {
		return nil, apperrors.Validation("author", "you cannot subscribe to yourself")
	}

	var author models.User
	if err := s.db.WithContext(ctx).First(&author, authorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("user not found")
		}
		return nil, fmt.Errorf("failed to find author: %w", err)
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check subscription: %w", err)
	}
	if count > 0 {
		return nil, apperrors.Conflict("you are already subscribed to this author")
	}

	if err := s.db.WithContext(ctx).Create(&models.Subscription{UserID: userID, AuthorID: authorID}).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Conflict("you are already subscribed to this author")
		}
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}

	return &author, nil
}

// Unsubscribe deletes the (follower, author) pair.
func (s *RelationService) Unsubscribe(ctx context.Context, userID, authorID uint) error {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&models.Subscription{})
	if res.Error != nil {
		return fmt.Errorf("failed to remove subscription: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("you are not subscribed to this author")
	}
	return nil
}

// Subscriptions lists the authors the user follows, in subscription order,
// with the total count before pagination.
func (s *RelationService) Subscriptions(ctx context.Context, userID uint, page, limit int) ([]models.User, int64, error) {
	base := s.db.WithContext(ctx).Model(&models.User{}).
		Joins("JOIN subscriptions ON subscriptions.author_id = users.id").
		Where("subscriptions.user_id = ?", userID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count subscriptions: %w", err)
	}

	query := base.Order("subscriptions.id")
	if page > 0 && limit > 0 {
		query = query.Offset((page - 1) * limit).Limit(limit)
	}

	var authors []models.User
	if err := query.Find(&authors).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	return authors, total, nil
}

// IsSubscribed reports whether userID follows authorID.
func (s *RelationService) IsSubscribed(ctx context.Context, userID, authorID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check subscription: %w", err)
	}
	return count > 0, nil
}

// FavoriteRecipeSet returns the ids of recipes the user has favorited.
func (s *RelationService) FavoriteRecipeSet(ctx context.Context, userID uint) (map[uint]bool, error) {
	return s.idSet(ctx, &models.Favorite{}, "recipe_id", userID)
}

// CartRecipeSet returns the ids of recipes in the user's shopping cart.
func (s *RelationService) CartRecipeSet(ctx context.Context, userID uint) (map[uint]bool, error) {
	return s.idSet(ctx, &models.ShoppingCart{}, "recipe_id", userID)
}

// SubscribedAuthorSet returns the ids of authors the user follows.
func (s *RelationService) SubscribedAuthorSet(ctx context.Context, userID uint) (map[uint]bool, error) {
	return s.idSet(ctx, &models.Subscription{}, "author_id", userID)
}

func (s *RelationService) idSet(ctx context.Context, model interface{}, column string, userID uint) (map[uint]bool, error) {
	var ids []uint
	err := s.db.WithContext(ctx).Model(model).
		Where("user_id = ?", userID).
		Pluck(column, &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load %s set: %w", column, err)
	}
	set := make(map[uint]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

func (s *RelationService) addRecipeRelation(ctx context.Context, userID, recipeID uint, relation string, insert func() error) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("recipe not found")
		}
		return nil, fmt.Errorf("failed to find recipe: %w", err)
	}

	if err := insert(); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Conflict(fmt.Sprintf("recipe already exists in your %s", relation))
		}
		return nil, fmt.Errorf("failed to add recipe to %s: %w", relation, err)
	}

	return &recipe, nil
}
