package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"fitpack_admin/internal/models"
)

// SessionVerifier checks Firebase session cookies; *auth.Client satisfies it
type SessionVerifier interface {
	VerifySessionCookie(ctx context.Context, sessionCookie string) (*auth.Token, error)
}

// IDTokenVerifier checks Firebase ID tokens; *auth.Client satisfies it
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// UserResolver maps a verified e-mail to the local account
type UserResolver interface {
	UserByEmail(ctx context.Context, email string) (*models.User, error)
}

const sessionCookie = "session"

func clearSession(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		MaxAge:   -1,
		HttpOnly: true,
		Path:     "/",
	})
}

// RequireAuth returns a middleware that verifies Firebase session cookies
// and resolves the local user behind them.
func RequireAuth(verifier SessionVerifier, users UserResolver, log *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if verifier == nil {
				return c.Redirect(http.StatusTemporaryRedirect, "/login?error=auth_not_configured")
			}

			cookie, err := c.Cookie(sessionCookie)
			if err != nil || cookie.Value == "" {
				return c.Redirect(http.StatusTemporaryRedirect, "/login")
			}

			token, err := verifier.VerifySessionCookie(c.Request().Context(), cookie.Value)
			if err != nil {
				clearSession(c)
				return c.Redirect(http.StatusTemporaryRedirect, "/login")
			}

			c.Set("userUID", token.UID)
			email, _ := token.Claims["email"].(string)
			if email != "" {
				c.Set("userEmail", email)
			}
			if name, ok := token.Claims["name"].(string); ok {
				c.Set("userName", name)
			}

			if email == "" {
				return echo.NewHTTPError(http.StatusForbidden, "Your account has no e-mail address.")
			}
			user, err := users.UserByEmail(c.Request().Context(), email)
			if err != nil {
				log.Warn("resolve session user", zap.String("uid", token.UID), zap.Error(err))
				return echo.NewHTTPError(http.StatusForbidden, "No account is registered for "+email+".")
			}
			c.Set("userID", user.ID)
			c.Set("isAdmin", user.IsAdmin)

			return next(c)
		}
	}
}

// RequireAdmin rejects authenticated users without the admin flag
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if admin, _ := c.Get("isAdmin").(bool); !admin {
			return echo.NewHTTPError(http.StatusForbidden)
		}
		return next(c)
	}
}

var errMissingBearer = errors.New("missing bearer token")

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get(echo.HeaderAuthorization)
	token := strings.TrimPrefix(header, "Bearer ")
	if header == "" || token == header || strings.TrimSpace(token) == "" {
		return "", errMissingBearer
	}
	return token, nil
}

// RequireToken guards JSON APIs with a Firebase ID token in the
// Authorization header.
func RequireToken(verifier IDTokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			unauthenticated := map[string]string{"message": "Unauthenticated."}
			if verifier == nil {
				return c.JSON(http.StatusUnauthorized, unauthenticated)
			}
			raw, err := bearerToken(c.Request())
			if err != nil {
				return c.JSON(http.StatusUnauthorized, unauthenticated)
			}
			token, err := verifier.VerifyIDToken(c.Request().Context(), raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, unauthenticated)
			}

			c.Set("userUID", token.UID)
			if email, ok := token.Claims["email"].(string); ok {
				c.Set("userEmail", email)
			}
			return next(c)
		}
	}
}
