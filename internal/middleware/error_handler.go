package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"fitpack_admin/web/templates/pages"
	"fitpack_admin/web/templates/shared"
)

// NewErrorHandler creates a custom error handler for Echo. API routes get
// JSON, pages get the error template.
func NewErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		errorTitle := "Internal Server Error"
		errorMessage := ""

		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if msg, ok := he.Message.(string); ok && msg != "" && msg != http.StatusText(code) {
				errorMessage = msg
			}
		}

		switch code {
		case http.StatusNotFound:
			errorTitle = "Page Not Found"
			if errorMessage == "" {
				errorMessage = "The page you're looking for doesn't exist."
			}
		case http.StatusForbidden:
			errorTitle = "Access Denied"
			if errorMessage == "" {
				errorMessage = "You don't have permission to access this resource."
			}
		case http.StatusUnauthorized:
			errorTitle = "Unauthorized"
			if errorMessage == "" {
				errorMessage = "Please log in to continue."
			}
		case http.StatusBadRequest:
			errorTitle = "Bad Request"
			if errorMessage == "" {
				errorMessage = "The request could not be processed."
			}
		case http.StatusRequestEntityTooLarge:
			errorTitle = "Upload Too Large"
			if errorMessage == "" {
				errorMessage = "The uploaded file is too large."
			}
		default:
			if errorMessage == "" || code >= http.StatusInternalServerError {
				errorMessage = "Something went wrong. Please try again later."
			}
		}

		if code >= http.StatusInternalServerError {
			log.Error("request failed", zap.String("path", c.Request().URL.Path), zap.Error(err))
		} else {
			log.Debug("request rejected", zap.Int("status", code), zap.Error(err))
		}

		path := c.Request().URL.Path
		if strings.HasPrefix(path, "/api/") {
			if jsonErr := c.JSON(code, map[string]string{"message": errorMessage}); jsonErr != nil {
				log.Error("write error response", zap.Error(jsonErr))
			}
			return
		}

		userEmail, _ := c.Get("userEmail").(string)
		userUID, _ := c.Get("userUID").(string)

		props := pages.ErrorPageProps{
			Title:        errorTitle,
			Breadcrumbs:  shared.Trail(shared.Breadcrumb{Title: "Error"}),
			UserEmail:    userEmail,
			UserUID:      userUID,
			ErrorTitle:   errorTitle,
			ErrorMessage: errorMessage,
		}

		c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
		c.Response().WriteHeader(code)

		isPublic := strings.HasPrefix(path, "/login") || strings.HasPrefix(path, "/auth") || strings.HasPrefix(path, "/storage")
		var renderErr error
		if isPublic {
			renderErr = pages.PublicErrorPage(props).Render(c.Request().Context(), c.Response())
		} else {
			renderErr = pages.ErrorPage(props).Render(c.Request().Context(), c.Response())
		}
		if renderErr != nil {
			log.Error("render error page", zap.Error(fmt.Errorf("failed to render error page: %w", renderErr)))
			_, _ = c.Response().Write([]byte(errorMessage))
		}
	}
}
