package handlers

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/ishu34311-maker/Sales/internal/hash"
	"github.com/ishu34311-maker/Sales/internal/models"
	"github.com/ishu34311-maker/Sales/internal/mykafka"
	"github.com/ishu34311-maker/Sales/internal/service/token"
	"github.com/ishu34311-maker/Sales/internal/store"
)

// AdminActions is the action selector shown after a successful admin login.
var AdminActions = []string{"Create User", "Add Product", "View Sales Report"}

type AuthHandler struct {
	Store         *store.Store
	AdminUsername string
	AdminPassword string
	JWTSecret     []byte
	RefreshSecret []byte
	Producer      *mykafka.Producer
}

// Login authenticates either role. The admin identity is the configured
// pair, it never lives in the users table.
func (h *AuthHandler) Login(c echo.Context) error {
	var req struct {
		Role     string `json:"role"`
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}

	ctx := c.Request().Context()

	if strings.EqualFold(req.Role, "admin") {
		userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(h.AdminUsername))
		passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.AdminPassword))
		if userOK&passOK != 1 {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Admin credentials!")
		}

		if err := h.setSession(c, req.Username, "admin"); err != nil {
			return err
		}

		publish(c, h.Producer, "user_events", req.Username, map[string]any{
			"type":     "admin_logged_in",
			"username": req.Username,
		})

		return c.JSON(http.StatusOK, echo.Map{
			"message":  "Welcome Admin!",
			"is_admin": true,
			"actions":  AdminActions,
		})
	}

	user, err := h.Store.GetUser(ctx, req.Username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid username or password.")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid username or password.")
	}

	if err := h.setSession(c, user.Username, user.Role); err != nil {
		return err
	}

	publish(c, h.Producer, "user_events", user.Username, map[string]any{
		"type":     "user_logged_in",
		"username": user.Username,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"message":  "Welcome " + user.Username + "!",
		"is_admin": false,
	})
}

func (h *AuthHandler) setSession(c echo.Context, username, role string) error {
	access, err := token.SignAccessToken(username, role, h.JWTSecret)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not create access token")
	}

	refresh, err := token.SignRefreshToken(username, role, h.RefreshSecret)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not create refresh token")
	}

	if err := token.SaveRefreshToken(h.Store.DB, refresh, username, role); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	c.SetCookie(token.CreateCookie("accessToken", access, "/", time.Now().Add(15*time.Minute)))
	c.SetCookie(token.CreateCookie("refreshToken", refresh, "/", time.Now().Add(7*24*time.Hour)))
	return nil
}

func (h *AuthHandler) LogOut(c echo.Context) error {
	refreshCookie, err := c.Cookie("refreshToken")
	if err != nil {
		return c.JSON(http.StatusBadRequest, err)
	}

	result := h.Store.DB.Model(&models.RefreshToken{}).
		Where("token = ?", refreshCookie.Value).
		Update("revoked", true)

	if result.Error != nil && !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": result.Error.Error(),
		})
	}

	expired := time.Now().Add(-1 * time.Hour)

	c.SetCookie(token.CreateCookie("accessToken", "/", "/", expired))
	c.SetCookie(token.CreateCookie("refreshToken", "/", "/", expired))
	return c.JSON(http.StatusOK, echo.Map{
		"message": "logged out",
	})
}

func (h *AuthHandler) About(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"info": "This is a Fast Food Store Management System.",
	})
}
