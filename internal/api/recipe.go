package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/foodgram-app/backend/internal/apperrors"
	"github.com/foodgram-app/backend/internal/middleware"
	"github.com/foodgram-app/backend/internal/models"
	"github.com/foodgram-app/backend/internal/service"
)

type RecipeHandler struct {
	recipes   *service.RecipeService
	relations *service.RelationService
	shopping  *service.ShoppingListService
	images    *service.ImageService
	auth      middleware.TokenValidator
}

func NewRecipeHandler(
	recipes *service.RecipeService,
	relations *service.RelationService,
	shopping *service.ShoppingListService,
	images *service.ImageService,
	auth middleware.TokenValidator,
) *RecipeHandler {
	return &RecipeHandler{
		recipes:   recipes,
		relations: relations,
		shopping:  shopping,
		images:    images,
		auth:      auth,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", middleware.AuthOptional(h.auth), h.ListRecipes)
		recipes.GET("/download_shopping_cart", middleware.AuthRequired(h.auth), h.DownloadShoppingCart)
		recipes.GET("/:id", middleware.AuthOptional(h.auth), h.GetRecipe)
		recipes.POST("", middleware.AuthRequired(h.auth), h.CreateRecipe)
		recipes.PATCH("/:id", middleware.AuthRequired(h.auth), h.UpdateRecipe)
		recipes.DELETE("/:id", middleware.AuthRequired(h.auth), h.DeleteRecipe)
		recipes.POST("/:id/favorite", middleware.AuthRequired(h.auth), h.Favorite)
		recipes.DELETE("/:id/favorite", middleware.AuthRequired(h.auth), h.Unfavorite)
		recipes.POST("/:id/shopping_cart", middleware.AuthRequired(h.auth), h.AddToCart)
		recipes.DELETE("/:id/shopping_cart", middleware.AuthRequired(h.auth), h.RemoveFromCart)
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	params := getPagination(c)

	filter := service.RecipeFilter{
		TagSlugs: c.QueryArray("tags"),
		Page:     params.Page,
		Limit:    params.Limit,
	}

	if authorStr := c.Query("author"); authorStr != "" {
		authorID, err := strconv.ParseUint(authorStr, 10, 32)
		if err != nil {
			respondError(c, apperrors.Validation("author", "must be a positive integer"))
			return
		}
		id := uint(authorID)
		filter.AuthorID = &id
	}

	// Scoped boolean filters only apply for authenticated requesters;
	// anonymous callers get the unfiltered collection.
	if userID, ok := middleware.GetUserID(c); ok {
		filter.UserID = &userID
		filter.Favorited = c.Query("is_favorited") == "1"
		filter.InCart = c.Query("is_in_shopping_cart") == "1"
	}

	recipes, total, err := h.recipes.ListRecipes(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	sets, err := h.loadRelationSets(c)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]RecipeResponse, 0, len(recipes))
	for i := range recipes {
		out = append(out, newRecipeResponse(&recipes[i], sets))
	}

	c.JSON(http.StatusOK, gin.H{
		"recipes":    out,
		"pagination": Pagination{Page: params.Page, Limit: params.Limit, Total: total},
	})
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	recipe, err := h.recipes.GetRecipe(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	sets, err := h.loadRelationSets(c)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newRecipeResponse(recipe, sets))
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req CreateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.Validation("", err.Error()))
		return
	}

	userID, _ := middleware.GetUserID(c)

	imageURL, err := h.images.Store(c.Request.Context(), req.Image)
	if err != nil {
		respondError(c, err)
		return
	}

	recipe, err := h.recipes.CreateRecipe(c.Request.Context(), userID, service.RecipeInput{
		Name:        req.Name,
		Text:        req.Text,
		ImageURL:    imageURL,
		CookingTime: req.CookingTime,
		TagIDs:      req.Tags,
		Ingredients: toIngredientAmounts(req.Ingredients),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	sets, err := h.loadRelationSets(c)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newRecipeResponse(recipe, sets))
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req UpdateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.Validation("", err.Error()))
		return
	}

	input := service.RecipeUpdateInput{
		Name:        req.Name,
		Text:        req.Text,
		CookingTime: req.CookingTime,
		TagIDs:      req.Tags,
	}

	if req.Image != nil {
		imageURL, err := h.images.Store(c.Request.Context(), *req.Image)
		if err != nil {
			respondError(c, err)
			return
		}
		input.ImageURL = &imageURL
	}

	if req.Ingredients != nil {
		amounts := toIngredientAmounts(*req.Ingredients)
		input.Ingredients = &amounts
	}

	recipe, err := h.recipes.UpdateRecipe(c.Request.Context(), id, actorFrom(c), input)
	if err != nil {
		respondError(c, err)
		return
	}

	sets, err := h.loadRelationSets(c)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newRecipeResponse(recipe, sets))
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.recipes.DeleteRecipe(c.Request.Context(), id, actorFrom(c)); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) Favorite(c *gin.Context) {
	h.addRelation(c, h.relations.AddFavorite)
}

func (h *RecipeHandler) Unfavorite(c *gin.Context) {
	h.removeRelation(c, h.relations.RemoveFavorite)
}

func (h *RecipeHandler) AddToCart(c *gin.Context) {
	h.addRelation(c, h.relations.AddToCart)
}

func (h *RecipeHandler) RemoveFromCart(c *gin.Context) {
	h.removeRelation(c, h.relations.RemoveFromCart)
}

func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	items, err := h.shopping.Aggregate(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	pdf, err := service.RenderShoppingListPDF(items)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="shopping_list.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// addRelation runs one of the toggle adds and returns the recipe summary
// with 201, per the toggle contract.
func (h *RecipeHandler) addRelation(c *gin.Context, add func(ctx context.Context, userID, recipeID uint) (*models.Recipe, error)) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	userID, _ := middleware.GetUserID(c)

	recipe, err := add(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newRecipeSummary(recipe))
}

func (h *RecipeHandler) removeRelation(c *gin.Context, remove func(ctx context.Context, userID, recipeID uint) error) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	userID, _ := middleware.GetUserID(c)

	if err := remove(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) loadRelationSets(c *gin.Context) (relationSets, error) {
	sets := relationSets{
		favorited:  map[uint]bool{},
		inCart:     map[uint]bool{},
		subscribed: map[uint]bool{},
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		return sets, nil
	}

	ctx := c.Request.Context()
	var err error
	if sets.favorited, err = h.relations.FavoriteRecipeSet(ctx, userID); err != nil {
		return sets, err
	}
	if sets.inCart, err = h.relations.CartRecipeSet(ctx, userID); err != nil {
		return sets, err
	}
	if sets.subscribed, err = h.relations.SubscribedAuthorSet(ctx, userID); err != nil {
		return sets, err
	}
	return sets, nil
}

func actorFrom(c *gin.Context) service.Actor {
	userID, _ := middleware.GetUserID(c)
	return service.Actor{
		UserID: userID,
		Role:   middleware.GetRole(c),
	}
}
