package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pupil-dashboard/internal/middleware"
	"github.com/noah-isme/pupil-dashboard/internal/models"
)

type clientStub struct{}

func (clientStub) Login(context.Context) error { return nil }
func (clientStub) Attendance(context.Context, time.Time, time.Time) (models.AttendanceSheet, error) {
	return models.AttendanceSheet{}, nil
}
func (clientStub) Behaviour(context.Context, time.Time, time.Time) (models.BehaviourTally, error) {
	return models.BehaviourTally{}, nil
}
func (clientStub) Announcements(context.Context) ([]models.Announcement, error) { return nil, nil }
func (clientStub) StudentInfo(context.Context) (models.Student, error)          { return models.Student{}, nil }

// newContext builds a gin test context; withClient mimics the records middleware.
func newContext(method, target string, body io.Reader, withClient bool) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(method, target, body)
	if body != nil {
		c.Request.Header.Set("Content-Type", "application/json")
	}
	if withClient {
		c.Set(middleware.ContextClientKey, clientStub{})
	}
	return c, rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return payload
}

func cookieByName(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}
