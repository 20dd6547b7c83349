package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/user-auth-service/internal/config"
	"github.com/iliyamo/user-auth-service/internal/handler"
	"github.com/iliyamo/user-auth-service/internal/model"
	"github.com/iliyamo/user-auth-service/internal/router"
	"github.com/iliyamo/user-auth-service/internal/store"
)

// testEnv is a fully wired service instance backed by empty stores.  Rate
// limiting and caching are disabled (nil middleware), matching a deployment
// without Redis.
type testEnv struct {
	e        *echo.Echo
	users    *store.UserStore
	products *store.ProductStore
	cfg      config.Config
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := config.Config{
		Env:            "test",
		Port:           "0",
		JWTSecret:      "test-secret",
		AccessTTLMin:   15,
		RefreshTTLDays: 7,
		BcryptCost:     4, // keep the hashing cheap in tests
	}
	users := store.NewUserStore(cfg.BcryptCost)
	products := store.NewProductStore()

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users), users, cfg.JWTSecret, nil)
	router.RegisterUsers(e, handler.NewUserHandler(users), users, cfg.JWTSecret)
	router.RegisterProducts(e, handler.NewProductHandler(products), users, cfg.JWTSecret, nil)

	return &testEnv{e: e, users: users, products: products, cfg: cfg}
}

// do performs a JSON request against the test server.  An empty token means
// no Authorization header.
func (env *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

// envelope mirrors the response wrapper used by every endpoint.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Count   int             `json:"count"`
	Data    json.RawMessage `json:"data"`
	Errors  []string        `json:"errors"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

type tokensJSON struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type authDataJSON struct {
	User   model.UserJSON `json:"user"`
	Tokens tokensJSON     `json:"tokens"`
}

func decodeAuthData(t *testing.T, rec *httptest.ResponseRecorder) authDataJSON {
	t.Helper()
	env := decode(t, rec)
	var data authDataJSON
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return data
}

// register creates an account through the HTTP surface and returns the
// response payload with its token pair.
func (env *testEnv) register(t *testing.T, name, email, password string) authDataJSON {
	t.Helper()
	rec := env.do(t, "POST", "/api/auth/register", "", map[string]interface{}{
		"name": name, "email": email, "password": password, "age": 25, "city": "Springfield",
	})
	require.Equal(t, 201, rec.Code, rec.Body.String())
	return decodeAuthData(t, rec)
}

// login starts a fresh session for existing credentials.
func (env *testEnv) login(t *testing.T, email, password string) authDataJSON {
	t.Helper()
	rec := env.do(t, "POST", "/api/auth/login", "", map[string]string{
		"email": email, "password": password,
	})
	require.Equal(t, 200, rec.Code, rec.Body.String())
	return decodeAuthData(t, rec)
}

// seedAdmin inserts an admin directly into the store and logs it in.
func (env *testEnv) seedAdmin(t *testing.T) authDataJSON {
	t.Helper()
	_, err := env.users.Create(&model.User{
		Name:     "Admin User",
		Email:    "admin@example.com",
		Password: "Admin123!",
		Age:      30,
		City:     "New York",
		Role:     model.RoleAdmin,
		IsActive: true,
	})
	require.NoError(t, err)
	return env.login(t, "admin@example.com", "Admin123!")
}
