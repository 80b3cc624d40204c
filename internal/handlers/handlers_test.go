package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ishu34311-maker/Sales/internal/hash"
	"github.com/ishu34311-maker/Sales/internal/models"
	"github.com/ishu34311-maker/Sales/internal/mykafka"
	"github.com/ishu34311-maker/Sales/internal/store"
)

type testEnv struct {
	T  *testing.T
	E  *echo.Echo
	St *store.Store
	A  *AuthHandler
	Ad *AdminHandler
	Sh *ShopHandler
}

func InitTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.CartItem{},
		&models.RefreshToken{},
	); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	return db
}

func newTestEnv(t *testing.T) *testEnv {
	db := InitTestDB(t)
	st := store.New(db)

	env := &testEnv{
		T:  t,
		E:  echo.New(),
		St: st,
	}

	env.A = &AuthHandler{
		Store:         st,
		AdminUsername: "test_admin",
		AdminPassword: "test_admin_password",
		JWTSecret:     []byte("test_jwt_secret"),
		RefreshSecret: []byte("test_refresh_secret"),
		Producer:      &mykafka.Producer{},
	}
	env.Ad = &AdminHandler{Store: st, Producer: &mykafka.Producer{}}
	env.Sh = &ShopHandler{Store: st, Producer: &mykafka.Producer{}}

	return env
}

func (env *testEnv) doJSONRequest(method, path string, body interface{}, cookies ...*http.Cookie) (*httptest.ResponseRecorder, echo.Context) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	return rec, c
}

// asUser fakes what the auth middleware stores on the context.
func asUser(c echo.Context, username, role string) {
	c.Set("username", username)
	c.Set("role", role)
}

func registerUser(t *testing.T, env *testEnv, username, password string) {
	passwordHash, err := hash.HashPassword(password)
	require.NoError(t, err)
	_, err = env.St.AddUser(context.Background(), username, passwordHash)
	require.NoError(t, err)
}
