package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/pupil-dashboard/internal/dto"
	"github.com/noah-isme/pupil-dashboard/internal/middleware"
	"github.com/noah-isme/pupil-dashboard/internal/service"
	"github.com/noah-isme/pupil-dashboard/pkg/config"
	appErrors "github.com/noah-isme/pupil-dashboard/pkg/errors"
	"github.com/noah-isme/pupil-dashboard/pkg/response"
)

type sessionService interface {
	Verify(ctx context.Context, clientIP string, req dto.CredentialsRequest) (service.RecordsClient, error)
	Status(ctx context.Context, pupilCode, dateOfBirth string) bool
}

// AuthHandler handles credential checks and the credential cookies.
type AuthHandler struct {
	sessions sessionService
	cookies  config.CookieConfig
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(sessions sessionService, cookies config.CookieConfig) *AuthHandler {
	return &AuthHandler{sessions: sessions, cookies: cookies}
}

// VerifyCredentials godoc
// @Summary Verify pupil credentials
// @Description Logs in to the records API and stores the credential cookies on success
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body dto.CredentialsRequest true "Credentials"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 429 {object} response.Envelope
// @Router /api/verify-credentials [post]
func (h *AuthHandler) VerifyCredentials(c *gin.Context) {
	var req dto.CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "Pupil code and date of birth are required"))
		return
	}

	req.PupilCode = strings.TrimSpace(req.PupilCode)
	req.DateOfBirth = strings.TrimSpace(req.DateOfBirth)
	if _, err := h.sessions.Verify(c.Request.Context(), c.ClientIP(), req); err != nil {
		response.Error(c, err)
		return
	}

	rememberFor := h.cookies.RememberFor
	if !req.RememberMe {
		rememberFor = 0
	}
	middleware.SetCredentialCookies(c, req.PupilCode, req.DateOfBirth, rememberFor, h.cookies.Secure)
	response.Message(c, "Credentials verified successfully")
}

// Logout godoc
// @Summary Log out
// @Description Clears the credential cookies
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /api/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	middleware.ClearCredentialCookies(c, h.cookies.Secure)
	response.Message(c, "Logged out successfully")
}

// Status godoc
// @Summary Session status
// @Description Reports whether the credential cookies still open a records session
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /api/auth-status [get]
func (h *AuthHandler) Status(c *gin.Context) {
	if !middleware.HasCredentialCookies(c) {
		response.OK(c, gin.H{"authenticated": false})
		return
	}
	code, _ := c.Cookie(middleware.CookiePupilCode)
	dob, _ := c.Cookie(middleware.CookieDateOfBirth)
	response.OK(c, gin.H{"authenticated": h.sessions.Status(c.Request.Context(), code, dob)})
}
