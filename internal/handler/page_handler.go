package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/pupil-dashboard/internal/dto"
	"github.com/noah-isme/pupil-dashboard/internal/middleware"
	appErrors "github.com/noah-isme/pupil-dashboard/pkg/errors"
)

var loginErrors = map[string]string{
	"invalid_credentials": appErrors.ErrInvalidCredentials.Message,
	"server_error":        appErrors.ErrUpstream.Message,
}

// PageHandler renders the embedded HTML pages.
type PageHandler struct {
	pingInterval time.Duration
	exports      bool
}

// NewPageHandler constructs the handler.
func NewPageHandler(pingInterval time.Duration, exports bool) *PageHandler {
	if pingInterval <= 0 {
		pingInterval = 4 * time.Minute
	}
	return &PageHandler{pingInterval: pingInterval, exports: exports}
}

// Root sends visitors to the landing page.
func (h *PageHandler) Root(c *gin.Context) {
	c.Redirect(http.StatusFound, "/home")
}

// Home renders the landing page.
func (h *PageHandler) Home(c *gin.Context) {
	c.HTML(http.StatusOK, "home.html", gin.H{"Title": "Welcome"})
}

// Login renders the sign-in form, or skips it when both cookies are already set.
func (h *PageHandler) Login(c *gin.Context) {
	if middleware.HasCredentialCookies(c) {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}
	c.HTML(http.StatusOK, "login.html", gin.H{
		"Title": "Sign in",
		"Error": loginErrors[c.Query("error")],
	})
}

// Dashboard renders the compact overview.
func (h *PageHandler) Dashboard(c *gin.Context) {
	h.dashboard(c, "Dashboard", dto.ContextCompact)
}

// Attendance renders the full attendance page.
func (h *PageHandler) Attendance(c *gin.Context) {
	h.dashboard(c, "Attendance", dto.ContextFull)
}

func (h *PageHandler) dashboard(c *gin.Context, title, context string) {
	c.Header("Cache-Control", "no-store")
	c.HTML(http.StatusOK, "dashboard.html", gin.H{
		"Title":      title,
		"Context":    context,
		"PingMillis": h.pingInterval.Milliseconds(),
		"Exports":    h.exports,
	})
}
