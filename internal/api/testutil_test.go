package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/foodgram-app/backend/internal/admin"
	"github.com/foodgram-app/backend/internal/api"
	"github.com/foodgram-app/backend/internal/models"
	"github.com/foodgram-app/backend/internal/router"
	"github.com/foodgram-app/backend/internal/service"
	"github.com/foodgram-app/backend/internal/testhelpers"
)

type testEnv struct {
	db     *gorm.DB
	router *gin.Engine
	auth   *service.AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.NewSQLiteDB(t)

	authSvc := service.NewAuthService(db, nil, "test-secret-key")
	userSvc := service.NewUserService(db)
	recipeSvc := service.NewRecipeService(db)
	relationSvc := service.NewRelationService(db)
	shoppingSvc := service.NewShoppingListService(db)
	catalogSvc := service.NewCatalogService(db)
	imageSvc := service.NewImageService(nil, t.TempDir())

	r := router.Setup(
		api.NewAuthHandler(authSvc, userSvc),
		api.NewUserHandler(userSvc, relationSvc, authSvc),
		api.NewRecipeHandler(recipeSvc, relationSvc, shoppingSvc, imageSvc, authSvc),
		api.NewCatalogHandler(catalogSvc),
		api.NewAdminHandler(admin.New(db), authSvc),
	)

	return &testEnv{db: db, router: r, auth: authSvc}
}

// login issues a token for a fixture user.
func (e *testEnv) login(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := e.auth.Login(context.Background(), user.Email, testhelpers.TestPassword)
	require.NoError(t, err)
	return token
}

// do performs a request against the test router. A non-empty token is sent
// as a bearer Authorization header; a non-nil body is sent as JSON.
func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out),
		"body: %s", w.Body.String())
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, w.Code, "body: %s", w.Body.String())
}
