package token

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ishu34311-maker/Sales/internal/models"
)

var (
	testJWTSecret     = []byte("test_jwt_secret")
	testRefreshSecret = []byte("test_refresh_secret")
)

func newTestService(t *testing.T) *TokenService {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	if err := db.AutoMigrate(&models.RefreshToken{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}
	return &TokenService{DB: db, JWTSecret: testJWTSecret, RefreshSecret: testRefreshSecret}
}

func jwtWithExp(username, role string, exp time.Time) string {
	claims := jwt.MapClaims{"sub": username, "role": role, "exp": exp.Unix()}
	signed, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testJWTSecret)
	return signed
}

func TestRotateToken(t *testing.T) {
	svc := newTestService(t)

	refresh, err := SignRefreshToken("alice", "user", testRefreshSecret)
	require.NoError(t, err)
	require.NoError(t, SaveRefreshToken(svc.DB, refresh, "alice", "user"))

	access, newRefresh, role, err := svc.RotateToken(refresh)
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, newRefresh)
	require.NotEqual(t, refresh, newRefresh)
	require.Equal(t, "user", role)

	var old models.RefreshToken
	require.NoError(t, svc.DB.Where("token = ?", refresh).First(&old).Error)
	require.True(t, old.Revoked)
}

func TestRotateRevokedToken(t *testing.T) {
	svc := newTestService(t)

	refresh, err := SignRefreshToken("alice", "user", testRefreshSecret)
	require.NoError(t, err)
	require.NoError(t, SaveRefreshToken(svc.DB, refresh, "alice", "user"))
	require.NoError(t, svc.RevokeRefresh(refresh))

	_, _, _, err = svc.RotateToken(refresh)
	require.Error(t, err)
}

func TestRotateUnknownToken(t *testing.T) {
	svc := newTestService(t)

	refresh, err := SignRefreshToken("alice", "user", testRefreshSecret)
	require.NoError(t, err)

	_, _, _, err = svc.RotateToken(refresh)
	require.Error(t, err)
}

func doRequest(t *testing.T, svc *TokenService, mw echo.MiddlewareFunc, cookies ...*http.Cookie) (*httptest.ResponseRecorder, echo.Context, error) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	return rec, c, handler(c)
}

func TestAutoRefreshMiddleware(t *testing.T) {
	svc := newTestService(t)

	access, err := SignAccessToken("alice", "user", testJWTSecret)
	require.NoError(t, err)

	ck := &http.Cookie{Name: "accessToken", Value: access, Path: "/"}
	rec, c, err := doRequest(t, svc, svc.AutoRefreshMiddleware, ck)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "alice", c.Get("username"))
	require.Equal(t, "user", c.Get("role"))
}

func TestAutoRefreshMiddlewareNoCookies(t *testing.T) {
	svc := newTestService(t)

	_, _, err := doRequest(t, svc, svc.AutoRefreshMiddleware)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestAutoRefreshMiddlewareRotatesExpiredAccess(t *testing.T) {
	svc := newTestService(t)

	// expired access token forces the refresh path
	expired := jwtWithExp("alice", "user", time.Now().Add(-time.Minute))

	refresh, err := SignRefreshToken("alice", "user", testRefreshSecret)
	require.NoError(t, err)
	require.NoError(t, SaveRefreshToken(svc.DB, refresh, "alice", "user"))

	ckA := &http.Cookie{Name: "accessToken", Value: expired, Path: "/"}
	ckR := &http.Cookie{Name: "refreshToken", Value: refresh, Path: "/"}
	rec, c, err := doRequest(t, svc, svc.AutoRefreshMiddleware, ckA, ckR)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "alice", c.Get("username"))

	names := make([]string, 0)
	for _, ck := range rec.Result().Cookies() {
		names = append(names, ck.Name)
	}
	require.Contains(t, names, "accessToken")
	require.Contains(t, names, "refreshToken")
}

func TestAdminMiddlewareRejectsUserRole(t *testing.T) {
	svc := newTestService(t)

	access, err := SignAccessToken("alice", "user", testJWTSecret)
	require.NoError(t, err)

	ck := &http.Cookie{Name: "accessToken", Value: access, Path: "/"}
	_, _, err = doRequest(t, svc, svc.AutoRefreshMiddlewareAdmin, ck)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusForbidden, he.Code)
}

func TestAdminMiddlewareAcceptsAdmin(t *testing.T) {
	svc := newTestService(t)

	access, err := SignAccessToken("boss", "admin", testJWTSecret)
	require.NoError(t, err)

	ck := &http.Cookie{Name: "accessToken", Value: access, Path: "/"}
	rec, c, err := doRequest(t, svc, svc.AutoRefreshMiddlewareAdmin, ck)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "boss", c.Get("username"))
	require.Equal(t, "admin", c.Get("role"))
}
