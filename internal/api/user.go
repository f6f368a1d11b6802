package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/foodgram-app/backend/internal/middleware"
	"github.com/foodgram-app/backend/internal/models"
	"github.com/foodgram-app/backend/internal/service"
)

type UserHandler struct {
	users     *service.UserService
	relations *service.RelationService
	auth      middleware.TokenValidator
}

func NewUserHandler(users *service.UserService, relations *service.RelationService, auth middleware.TokenValidator) *UserHandler {
	return &UserHandler{users: users, relations: relations, auth: auth}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.GET("", middleware.AuthOptional(h.auth), h.ListUsers)
		users.GET("/me", middleware.AuthRequired(h.auth), h.Me)
		users.GET("/subscriptions", middleware.AuthRequired(h.auth), h.Subscriptions)
		users.GET("/:id", middleware.AuthOptional(h.auth), h.GetUser)
		users.POST("/:id/subscribe", middleware.AuthRequired(h.auth), h.Subscribe)
		users.DELETE("/:id/subscribe", middleware.AuthRequired(h.auth), h.Unsubscribe)
	}
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	params := getPagination(c)

	users, total, err := h.users.ListUsers(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	subscribed := map[uint]bool{}
	if userID, ok := middleware.GetUserID(c); ok {
		subscribed, err = h.relations.SubscribedAuthorSet(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err)
			return
		}
	}

	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, newUserResponse(&users[i], subscribed[users[i].ID]))
	}

	c.JSON(http.StatusOK, gin.H{
		"users":      out,
		"pagination": Pagination{Page: params.Page, Limit: params.Limit, Total: total},
	})
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	user, err := h.users.GetUser(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	subscribed := false
	if userID, ok := middleware.GetUserID(c); ok {
		subscribed, err = h.relations.IsSubscribed(c.Request.Context(), userID, user.ID)
		if err != nil {
			respondError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, newUserResponse(user, subscribed))
}

func (h *UserHandler) Me(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	user, err := h.users.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newUserResponse(user, false))
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	authorID, ok := parseID(c, "id")
	if !ok {
		return
	}
	userID, _ := middleware.GetUserID(c)

	author, err := h.relations.Subscribe(c.Request.Context(), userID, authorID)
	if err != nil {
		respondError(c, err)
		return
	}

	resp, err := h.subscriptionResponse(c, author, recipesLimit(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	authorID, ok := parseID(c, "id")
	if !ok {
		return
	}
	userID, _ := middleware.GetUserID(c)

	if err := h.relations.Unsubscribe(c.Request.Context(), userID, authorID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *UserHandler) Subscriptions(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	params := getPagination(c)
	limit := recipesLimit(c)

	authors, total, err := h.relations.Subscriptions(c.Request.Context(), userID, params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]SubscriptionResponse, 0, len(authors))
	for i := range authors {
		resp, err := h.subscriptionResponse(c, &authors[i], limit)
		if err != nil {
			respondError(c, err)
			return
		}
		out = append(out, resp)
	}

	c.JSON(http.StatusOK, gin.H{
		"subscriptions": out,
		"pagination":    Pagination{Page: params.Page, Limit: params.Limit, Total: total},
	})
}

// subscriptionResponse builds the author representation enriched with their
// recipes (optionally truncated by recipes_limit) and recipe count.
func (h *UserHandler) subscriptionResponse(c *gin.Context, author *models.User, limit int) (SubscriptionResponse, error) {
	recipes, count, err := h.users.RecipesByAuthor(c.Request.Context(), author.ID, limit)
	if err != nil {
		return SubscriptionResponse{}, err
	}

	summaries := make([]RecipeSummary, 0, len(recipes))
	for i := range recipes {
		summaries = append(summaries, newRecipeSummary(&recipes[i]))
	}

	return SubscriptionResponse{
		UserResponse: newUserResponse(author, true),
		Recipes:      summaries,
		RecipesCount: count,
	}, nil
}

func recipesLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.Query("recipes_limit"))
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}
