package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"fitpack_admin/web/templates/pages"
)

// SessionIssuer turns an ID token into a session cookie; *auth.Client
// satisfies it
type SessionIssuer interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
	VerifySessionCookie(ctx context.Context, sessionCookie string) (*auth.Token, error)
	SessionCookie(ctx context.Context, idToken string, expiresIn time.Duration) (string, error)
}

// StateForgetter drops a session's dashboard state
type StateForgetter interface {
	Forget(ctx context.Context, sessionID string) error
}

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	client     SessionIssuer
	states     StateForgetter
	login      pages.LoginProps
	sessionTTL time.Duration
	secure     bool
	log        *zap.Logger
}

// NewAuthHandler creates a new AuthHandler. client may be nil when
// Firebase is not configured.
func NewAuthHandler(client SessionIssuer, states StateForgetter, login pages.LoginProps, sessionTTL time.Duration, secure bool, log *zap.Logger) *AuthHandler {
	return &AuthHandler{client: client, states: states, login: login, sessionTTL: sessionTTL, secure: secure, log: log}
}

// LoginPage renders the login page
func (h *AuthHandler) LoginPage(c echo.Context) error {
	props := h.login
	if c.QueryParam("error") == "auth_not_configured" {
		props.Error = "Authentication is not configured on this server."
	}
	return pages.Login(props).Render(c.Request().Context(), c.Response())
}

// HandleLogin verifies the Firebase ID token and creates a session cookie
func (h *AuthHandler) HandleLogin(c echo.Context) error {
	if h.client == nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Firebase not initialized",
		})
	}

	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		return c.JSON(http.StatusUnauthorized, map[string]string{
			"error": "Missing authorization header",
		})
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader {
		return c.JSON(http.StatusUnauthorized, map[string]string{
			"error": "Invalid authorization format",
		})
	}

	ctx := c.Request().Context()
	if _, err := h.client.VerifyIDToken(ctx, tokenString); err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{
			"error": "Invalid token",
		})
	}

	cookieValue, err := h.client.SessionCookie(ctx, tokenString, h.sessionTTL)
	if err != nil {
		h.log.Error("create session cookie", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to create session",
		})
	}

	c.SetCookie(&http.Cookie{
		Name:     "session",
		Value:    cookieValue,
		MaxAge:   int(h.sessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	})

	return c.JSON(http.StatusOK, map[string]string{
		"status": "success",
	})
}

// HandleLogout clears the session cookie and the dashboard state behind it
func (h *AuthHandler) HandleLogout(c echo.Context) error {
	if cookie, err := c.Cookie("session"); err == nil && cookie.Value != "" && h.client != nil {
		ctx := c.Request().Context()
		if token, err := h.client.VerifySessionCookie(ctx, cookie.Value); err == nil {
			if err := h.states.Forget(ctx, token.UID); err != nil {
				h.log.Warn("forget dashboard state", zap.String("uid", token.UID), zap.Error(err))
			}
		}
	}

	c.SetCookie(&http.Cookie{
		Name:     "session",
		Value:    "",
		MaxAge:   -1,
		HttpOnly: true,
		Path:     "/",
	})

	return c.JSON(http.StatusOK, map[string]string{
		"status": "logged out",
	})
}
