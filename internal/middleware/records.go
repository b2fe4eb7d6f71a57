package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/pupil-dashboard/internal/service"
	appErrors "github.com/noah-isme/pupil-dashboard/pkg/errors"
)

// Credential cookie names shared with the browser.
const (
	CookiePupilCode   = "pupilCode"
	CookieDateOfBirth = "dateOfBirth"
)

// Gin context keys set for protected routes.
const (
	// ContextClientKey stores the logged-in records client.
	ContextClientKey = "recordsClient"
	// ContextScopeKey stores the pupil's dashboard view scope.
	ContextScopeKey = "viewScope"
)

// Login redirect targets.
const (
	LoginPath               = "/login"
	loginInvalidCredentials = "invalid_credentials"
	loginServerError        = "server_error"
)

type sessionOpener interface {
	Open(ctx context.Context, pupilCode, dateOfBirth string) (service.RecordsClient, error)
}

// Records opens an upstream session from the credential cookies before every
// protected route. Missing cookies or a refused login send the browser to /login.
func Records(sessions sessionOpener, secure bool, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		pupilCode, codeErr := c.Cookie(CookiePupilCode)
		dateOfBirth, dobErr := c.Cookie(CookieDateOfBirth)
		if codeErr != nil || dobErr != nil || pupilCode == "" || dateOfBirth == "" {
			c.Redirect(http.StatusFound, LoginPath)
			c.Abort()
			return
		}

		client, err := sessions.Open(c.Request.Context(), pupilCode, dateOfBirth)
		if err != nil {
			if errors.Is(err, appErrors.ErrInvalidCredentials) || errors.Is(err, appErrors.ErrUnauthorized) {
				ClearCredentialCookies(c, secure)
				c.Redirect(http.StatusFound, loginURL(loginInvalidCredentials))
			} else {
				logger.Error("open records session", zap.String("path", c.Request.URL.Path), zap.Error(err))
				c.Redirect(http.StatusFound, loginURL(loginServerError))
			}
			c.Abort()
			return
		}

		c.Set(ContextClientKey, client)
		c.Set(ContextScopeKey, service.ViewScope(pupilCode))
		c.Next()
	}
}

// SetCredentialCookies stores the pair for later requests. A zero rememberFor
// makes them session cookies.
func SetCredentialCookies(c *gin.Context, pupilCode, dateOfBirth string, rememberFor time.Duration, secure bool) {
	maxAge := 0
	if rememberFor > 0 {
		maxAge = int(rememberFor.Seconds())
	}
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(CookiePupilCode, pupilCode, maxAge, "/", "", secure, false)
	c.SetCookie(CookieDateOfBirth, dateOfBirth, maxAge, "/", "", secure, false)
}

// ClearCredentialCookies expires both cookies.
func ClearCredentialCookies(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(CookiePupilCode, "", -1, "/", "", secure, false)
	c.SetCookie(CookieDateOfBirth, "", -1, "/", "", secure, false)
}

// HasCredentialCookies reports whether both cookies are present and non-empty.
func HasCredentialCookies(c *gin.Context) bool {
	code, err := c.Cookie(CookiePupilCode)
	if err != nil || code == "" {
		return false
	}
	dob, err := c.Cookie(CookieDateOfBirth)
	return err == nil && dob != ""
}

func loginURL(reason string) string {
	return LoginPath + "?" + url.Values{"error": {reason}}.Encode()
}
