package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/foodgram-app/backend/internal/admin"
	"github.com/foodgram-app/backend/internal/apperrors"
	"github.com/foodgram-app/backend/internal/middleware"
	"github.com/foodgram-app/backend/internal/models"
)

// AdminHandler serves the registry-backed moderation endpoints. Admin role only.
type AdminHandler struct {
	registry *admin.Registry
	auth     middleware.TokenValidator
}

func NewAdminHandler(registry *admin.Registry, auth middleware.TokenValidator) *AdminHandler {
	return &AdminHandler{registry: registry, auth: auth}
}

func (h *AdminHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/admin", middleware.AuthRequired(h.auth), requireAdmin())
	{
		group.GET("/entities", h.ListEntities)
		group.GET("/:entity", h.ListRows)
	}
}

func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if middleware.GetRole(c) != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden,
				apperrors.Permission("admin role required"))
			return
		}
		c.Next()
	}
}

func (h *AdminHandler) ListEntities(c *gin.Context) {
	entities := h.registry.Entities()
	out := make([]gin.H, 0, len(entities))
	for _, e := range entities {
		out = append(out, gin.H{
			"name":           e.Name,
			"display_fields": e.DisplayFields,
			"search_fields":  e.SearchFields,
		})
	}
	c.JSON(http.StatusOK, gin.H{"entities": out})
}

func (h *AdminHandler) ListRows(c *gin.Context) {
	entity, ok := h.registry.Lookup(c.Param("entity"))
	if !ok {
		respondError(c, apperrors.NotFound("unknown entity"))
		return
	}

	rows, err := h.registry.List(c.Request.Context(), entity, c.Query("search"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{entity.Name: rows})
}
