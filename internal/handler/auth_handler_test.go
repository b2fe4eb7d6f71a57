package handler

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pupil-dashboard/internal/dto"
	"github.com/noah-isme/pupil-dashboard/internal/middleware"
	"github.com/noah-isme/pupil-dashboard/internal/service"
	"github.com/noah-isme/pupil-dashboard/pkg/config"
	appErrors "github.com/noah-isme/pupil-dashboard/pkg/errors"
)

type fakeSessions struct {
	verifyErr error
	status    bool
	lastReq   dto.CredentialsRequest
	lastIP    string
	statusFor string
}

func (f *fakeSessions) Verify(_ context.Context, ip string, req dto.CredentialsRequest) (service.RecordsClient, error) {
	f.lastIP = ip
	f.lastReq = req
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	return clientStub{}, nil
}

func (f *fakeSessions) Status(_ context.Context, code, dob string) bool {
	f.statusFor = code + "|" + dob
	return f.status
}

var testCookies = config.CookieConfig{RememberFor: 30 * 24 * time.Hour}

func TestVerifyCredentialsSetsCookies(t *testing.T) {
	sessions := &fakeSessions{}
	h := NewAuthHandler(sessions, testCookies)

	c, rec := newContext(http.MethodPost, "/api/verify-credentials",
		strings.NewReader(`{"pupilCode":" ABC123 ","dateOfBirth":"2010-05-01","rememberMe":true}`), false)
	h.VerifyCredentials(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	payload := decode(t, rec)
	assert.Equal(t, true, payload["success"])
	assert.Equal(t, "Credentials verified successfully", payload["message"])
	assert.Equal(t, "ABC123", sessions.lastReq.PupilCode)

	code := cookieByName(rec, middleware.CookiePupilCode)
	require.NotNil(t, code)
	assert.Equal(t, "ABC123", code.Value)
	assert.Equal(t, 2592000, code.MaxAge)
	assert.Equal(t, http.SameSiteStrictMode, code.SameSite)
}

func TestVerifyCredentialsWithoutRememberUsesSessionCookies(t *testing.T) {
	h := NewAuthHandler(&fakeSessions{}, testCookies)

	c, rec := newContext(http.MethodPost, "/api/verify-credentials",
		strings.NewReader(`{"pupilCode":"ABC123","dateOfBirth":"2010-05-01"}`), false)
	h.VerifyCredentials(c)

	dob := cookieByName(rec, middleware.CookieDateOfBirth)
	require.NotNil(t, dob)
	assert.Equal(t, 0, dob.MaxAge)
}

func TestVerifyCredentialsErrors(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		err    error
		status int
	}{
		{"malformed", `{`, nil, http.StatusBadRequest},
		{"missing", `{"pupilCode":"ABC123"}`, appErrors.Clone(appErrors.ErrValidation, "Pupil code and date of birth are required"), http.StatusBadRequest},
		{"rejected", `{"pupilCode":"ABC123","dateOfBirth":"2010-05-01"}`, appErrors.Clone(appErrors.ErrInvalidCredentials, ""), http.StatusUnauthorized},
		{"throttled", `{"pupilCode":"ABC123","dateOfBirth":"2010-05-01"}`, appErrors.Clone(appErrors.ErrTooManyRequests, ""), http.StatusTooManyRequests},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewAuthHandler(&fakeSessions{verifyErr: tc.err}, testCookies)
			c, rec := newContext(http.MethodPost, "/api/verify-credentials", strings.NewReader(tc.body), false)
			h.VerifyCredentials(c)

			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, false, decode(t, rec)["success"])
			assert.Nil(t, cookieByName(rec, middleware.CookiePupilCode))
		})
	}
}

func TestLogoutClearsCookies(t *testing.T) {
	h := NewAuthHandler(&fakeSessions{}, testCookies)
	c, rec := newContext(http.MethodPost, "/api/logout", nil, true)
	h.Logout(c)

	assert.Equal(t, "Logged out successfully", decode(t, rec)["message"])
	code := cookieByName(rec, middleware.CookiePupilCode)
	require.NotNil(t, code)
	assert.True(t, code.MaxAge < 0)
}

func TestStatus(t *testing.T) {
	sessions := &fakeSessions{status: true}
	h := NewAuthHandler(sessions, testCookies)

	c, rec := newContext(http.MethodGet, "/api/auth-status", nil, false)
	h.Status(c)
	assert.Equal(t, false, decode(t, rec)["authenticated"])
	assert.Empty(t, sessions.statusFor)

	c, rec = newContext(http.MethodGet, "/api/auth-status", nil, false)
	c.Request.AddCookie(&http.Cookie{Name: middleware.CookiePupilCode, Value: "ABC123"})
	c.Request.AddCookie(&http.Cookie{Name: middleware.CookieDateOfBirth, Value: "2010-05-01"})
	h.Status(c)
	assert.Equal(t, true, decode(t, rec)["authenticated"])
	assert.Equal(t, "ABC123|2010-05-01", sessions.statusFor)
}
