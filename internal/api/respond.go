package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/foodgram-app/backend/internal/apperrors"
)

// respondError maps an application error kind to its HTTP status and writes
// the error's stable code and message as the JSON body.
func respondError(c *gin.Context, err error) {
	appErr := apperrors.As(err)

	status := http.StatusInternalServerError
	switch appErr.Kind {
	case apperrors.KindValidation:
		status = http.StatusBadRequest
	case apperrors.KindConflict:
		status = http.StatusConflict
	case apperrors.KindNotFound:
		status = http.StatusNotFound
	case apperrors.KindPermission:
		status = http.StatusForbidden
	case apperrors.KindUnauthorized:
		status = http.StatusUnauthorized
	}

	if status == http.StatusInternalServerError {
		// Internal detail stays in the log, not the response body.
		c.JSON(status, apperrors.Internal("internal server error"))
		_ = c.Error(err)
		return
	}

	c.JSON(status, appErr)
}

const (
	defaultPageSize = 6
	maxPageSize     = 100
)

type paginationParams struct {
	Page  int
	Limit int
}

func getPagination(c *gin.Context) paginationParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > maxPageSize {
		limit = defaultPageSize
	}

	return paginationParams{Page: page, Limit: limit}
}

func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		respondError(c, apperrors.Validation(name, "must be a positive integer"))
		return 0, false
	}
	return uint(id), true
}
