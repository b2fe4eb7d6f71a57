package main

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBodiesEqualOnKeys(t *testing.T) {
	goBody := []byte(`{"success":true,"data":{"2024-03-11":{"AM":{"status":"present"}}},"meta":{"start_date":"2023-08-01"}}`)
	legacyBody := []byte(`{"success":1,"data":{"2024-03-11":{"AM":{"status":"present"}}},"meta":{"session_id":"x"}}`)

	assert.True(t, bodiesEqual(goBody, legacyBody, []string{"success", "data"}))
	assert.False(t, bodiesEqual(goBody, legacyBody, nil))
	assert.False(t, bodiesEqual([]byte("<html>"), legacyBody, []string{"data"}))
}

func TestCompareSendsCookiesAndKeepsRedirects(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		if _, err := r.Cookie("pupilCode"); err != nil {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"user":{"name":"Ada"}}`))
	}
	goSrv := httptest.NewServer(http.HandlerFunc(handler))
	defer goSrv.Close()
	legacySrv := httptest.NewServer(http.HandlerFunc(handler))
	defer legacySrv.Close()

	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }}
	tgt := target{Method: http.MethodGet, Path: "/api/user", Keys: []string{"user"}}

	res := compare(client, goSrv.URL, legacySrv.URL, credentials{PupilCode: "ABC", DateOfBirth: "2010-05-01"}, tgt)
	assert.NoError(t, res.Err)
	assert.Equal(t, http.StatusOK, res.GoStatus)
	assert.False(t, res.diff())

	res = compare(client, goSrv.URL, legacySrv.URL, credentials{}, tgt)
	assert.Equal(t, http.StatusFound, res.GoStatus)
	assert.Equal(t, "/login", res.GoLocation)
	assert.True(t, res.StatusMatch)
}

func TestPrintReportMarksErrors(t *testing.T) {
	var buf bytes.Buffer
	printReport(&buf, []result{
		{Target: target{Method: "GET", Path: "/a"}, StatusMatch: true, BodyMatch: true},
		{Target: target{Method: "GET", Path: "/b"}, Err: errors.New("refused")},
	})
	assert.Contains(t, buf.String(), "[OK] GET /a")
	assert.Contains(t, buf.String(), "[ERROR] GET /b")
}
