package classcharts

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.PostForm.Get("code") != "ABC123" || r.PostForm.Get("dob") != "05/09/2010" {
			_, _ = w.Write([]byte(`{"success":0,"error":"Invalid login"}`))
			return
		}
		assert.Equal(t, "no-token-available", r.PostForm.Get("recaptcha-token"))
		_, _ = w.Write([]byte(`{"success":1,"data":{"id":42,"name":"Ada Pupil","first_name":"Ada","avatar_url":"https://img/ada.png"},"meta":{"session_id":"sess-1"}}`))
	})
	mux.HandleFunc("/attendance/42", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Basic sess-1", r.Header.Get("Authorization"))
		assert.Equal(t, "2024-03-01", r.URL.Query().Get("from"))
		assert.Equal(t, "2024-03-31", r.URL.Query().Get("to"))
		_, _ = w.Write([]byte(`{"success":1,"data":{"2024-03-11":{"AM":{"code":"/","status":"present"},"PM":{"code":"N","status":"absent"}},"2024-03-12":[]},"meta":{"dates":["2024-03-11","2024-03-12"],"percentage":"50","percentage_singe_august":97.5}}`))
	})
	mux.HandleFunc("/behaviour/42", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":1,"data":{"positive_reasons":{"Effort":"3","Kindness":2},"negative_reasons":[],"timeline":[]}}`))
	})
	mux.HandleFunc("/announcements/42", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":1,"data":[{"id":1,"title":"Trip","description":"<p>Bring lunch</p>","school_name":"Hill School","teacher_name":"Mr Smith","timestamp":"2024-03-10 09:00:00"}]}`))
	})
	mux.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":1,"data":{"user":{"id":42,"name":"Ada Pupil","first_name":"Ada"}},"meta":{"session_id":"sess-2"}}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestNormaliseDateOfBirth(t *testing.T) {
	got, err := NormaliseDateOfBirth("2010-09-05")
	require.NoError(t, err)
	assert.Equal(t, "05/09/2010", got)

	got, err = NormaliseDateOfBirth("05/09/2010")
	require.NoError(t, err)
	assert.Equal(t, "05/09/2010", got)

	_, err = NormaliseDateOfBirth("September")
	assert.ErrorIs(t, err, ErrInvalidDateOfBirth)
}

func TestClientLoginAndFetch(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()
	client := New("abc123", "2010-09-05", WithBaseURL(srv.URL+"/"), WithTimeout(time.Second))

	require.NoError(t, client.Login(ctx))
	assert.True(t, client.LoggedIn())
	assert.Equal(t, "Ada", client.Pupil().FirstName)

	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	attendance, err := client.Attendance(ctx, from, to)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-03-11", "2024-03-12"}, attendance.Meta.Dates)
	assert.Equal(t, Percent("50"), attendance.Meta.Percentage)
	assert.Equal(t, Percent("97.5"), attendance.Meta.PercentageSinceAugust)
	require.NotNil(t, attendance.Data["2024-03-11"].PM)
	assert.Equal(t, "absent", attendance.Data["2024-03-11"].PM.Status)
	assert.Nil(t, attendance.Data["2024-03-12"].AM)

	behaviour, err := client.Behaviour(ctx, from, to)
	require.NoError(t, err)
	assert.Equal(t, Tally{"Effort": 3, "Kindness": 2}, behaviour.PositiveReasons)
	assert.Empty(t, behaviour.NegativeReasons)

	announcements, err := client.Announcements(ctx)
	require.NoError(t, err)
	require.Len(t, announcements, 1)
	assert.Equal(t, "Trip", announcements[0].Title)

	pupil, err := client.StudentInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, 42, pupil.ID)
}

func TestClientRejectedLogin(t *testing.T) {
	srv := newTestServer(t)
	client := New("nope", "2010-09-05", WithBaseURL(srv.URL))

	err := client.Login(context.Background())
	require.Error(t, err)
	assert.True(t, IsRejected(err))
	assert.Contains(t, err.Error(), "Invalid login")
	assert.False(t, client.LoggedIn())
}

func TestClientRequiresLogin(t *testing.T) {
	client := New("abc123", "2010-09-05")

	_, err := client.Announcements(context.Background())
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	err = New("", "").Login(context.Background())
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestClientNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	err := New("abc123", "2010-09-05", WithBaseURL(srv.URL)).Login(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.False(t, IsRejected(err))
}
