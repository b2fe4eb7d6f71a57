// Package classcharts is a small client for the student-facing school records API.
package classcharts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// DefaultBaseURL is the production student API root.
const DefaultBaseURL = "https://www.classcharts.com/apiv2student"

const (
	dateLayout      = "2006-01-02"
	upstreamDOB     = "02/01/2006"
	maxResponseBody = 4 << 20
)

var (
	// ErrNotLoggedIn is returned by data calls made before a successful Login.
	ErrNotLoggedIn = errors.New("classcharts: not logged in")
	// ErrMissingCredentials is returned when the pupil code or date of birth is blank.
	ErrMissingCredentials = errors.New("classcharts: pupil code and date of birth are required")
	// ErrInvalidDateOfBirth is returned when the date of birth cannot be parsed.
	ErrInvalidDateOfBirth = errors.New("classcharts: date of birth must be YYYY-MM-DD or DD/MM/YYYY")
)

// APIError reports an upstream rejection or a non-2xx response.
type APIError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("classcharts %s: status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("classcharts %s: %s", e.Op, e.Message)
}

// IsRejected reports whether err is an upstream refusal rather than an outage or transport failure.
func IsRejected(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode < http.StatusInternalServerError
}

// Option customises a Client.
type Option func(*Client)

// WithBaseURL points the client at another API root.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		if base = strings.TrimRight(strings.TrimSpace(base), "/"); base != "" {
			c.baseURL = base
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout on the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.http = &http.Client{Timeout: timeout}
		}
	}
}

// Client talks to the records API on behalf of one pupil.
type Client struct {
	baseURL     string
	pupilCode   string
	dateOfBirth string
	http        *http.Client

	mu        sync.RWMutex
	sessionID string
	pupil     Pupil
}

// New constructs a client for the supplied credentials. Call Login before any data call.
func New(pupilCode, dateOfBirth string, opts ...Option) *Client {
	c := &Client{
		baseURL:     DefaultBaseURL,
		pupilCode:   strings.TrimSpace(pupilCode),
		dateOfBirth: strings.TrimSpace(dateOfBirth),
		http:        &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NormaliseDateOfBirth converts YYYY-MM-DD input into the DD/MM/YYYY form the API expects.
func NormaliseDateOfBirth(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t.Format(upstreamDOB), nil
	}
	if t, err := time.Parse(upstreamDOB, raw); err == nil {
		return t.Format(upstreamDOB), nil
	}
	return "", ErrInvalidDateOfBirth
}

// Login exchanges the credentials for a session.
func (c *Client) Login(ctx context.Context) error {
	if c.pupilCode == "" || c.dateOfBirth == "" {
		return ErrMissingCredentials
	}
	dob, err := NormaliseDateOfBirth(c.dateOfBirth)
	if err != nil {
		return err
	}

	form := url.Values{}
	form.Set("_method", "POST")
	form.Set("code", strings.ToUpper(c.pupilCode))
	form.Set("dob", dob)
	form.Set("remember_me", "1")
	form.Set("recaptcha-token", "no-token-available")

	var env envelope[Pupil]
	if err := c.do(ctx, "login", http.MethodPost, "/login", form, false, &env); err != nil {
		return err
	}

	var meta sessionMeta
	if len(env.Meta) > 0 {
		if err := json.Unmarshal(env.Meta, &meta); err != nil {
			return fmt.Errorf("classcharts login: decode meta: %w", err)
		}
	}
	if meta.SessionID == "" {
		return &APIError{Op: "login", StatusCode: http.StatusOK, Message: "no session returned"}
	}

	c.mu.Lock()
	c.sessionID = meta.SessionID
	c.pupil = env.Data
	c.mu.Unlock()
	return nil
}

// LoggedIn reports whether Login has succeeded.
func (c *Client) LoggedIn() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessionID != ""
}

// Pupil returns the profile captured at login.
func (c *Client) Pupil() Pupil {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pupil
}

// StudentInfo refreshes the session and returns the current profile.
func (c *Client) StudentInfo(ctx context.Context) (Pupil, error) {
	form := url.Values{}
	form.Set("include_data", "true")

	var env envelope[pingData]
	if err := c.do(ctx, "ping", http.MethodPost, "/ping", form, true, &env); err != nil {
		return Pupil{}, err
	}

	var meta sessionMeta
	if len(env.Meta) > 0 && json.Unmarshal(env.Meta, &meta) == nil && meta.SessionID != "" {
		c.mu.Lock()
		c.sessionID = meta.SessionID
		c.mu.Unlock()
	}
	return env.Data.User, nil
}

// Attendance fetches the attendance sheet between from and to inclusive.
func (c *Client) Attendance(ctx context.Context, from, to time.Time) (*Attendance, error) {
	path, err := c.pupilPath("attendance", rangeQuery(from, to))
	if err != nil {
		return nil, err
	}
	var env envelope[attendanceData]
	if err := c.do(ctx, "attendance", http.MethodGet, path, nil, true, &env); err != nil {
		return nil, err
	}

	out := &Attendance{Data: env.Data}
	if out.Data == nil {
		out.Data = map[string]AttendanceDay{}
	}
	if len(env.Meta) > 0 {
		if err := json.Unmarshal(env.Meta, &out.Meta); err != nil {
			return nil, fmt.Errorf("classcharts attendance: decode meta: %w", err)
		}
	}
	return out, nil
}

// Behaviour fetches positive and negative point tallies between from and to.
func (c *Client) Behaviour(ctx context.Context, from, to time.Time) (*Behaviour, error) {
	path, err := c.pupilPath("behaviour", rangeQuery(from, to))
	if err != nil {
		return nil, err
	}
	var env envelope[Behaviour]
	if err := c.do(ctx, "behaviour", http.MethodGet, path, nil, true, &env); err != nil {
		return nil, err
	}
	if env.Data.PositiveReasons == nil {
		env.Data.PositiveReasons = Tally{}
	}
	if env.Data.NegativeReasons == nil {
		env.Data.NegativeReasons = Tally{}
	}
	return &env.Data, nil
}

// Announcements fetches the pupil's announcements.
func (c *Client) Announcements(ctx context.Context) ([]Announcement, error) {
	path, err := c.pupilPath("announcements", nil)
	if err != nil {
		return nil, err
	}
	var env envelope[announcementList]
	if err := c.do(ctx, "announcements", http.MethodGet, path, nil, true, &env); err != nil {
		return nil, err
	}
	return []Announcement(env.Data), nil
}

type attendanceData map[string]AttendanceDay

func (d *attendanceData) UnmarshalJSON(b []byte) error {
	if isEmptyCollection(b) {
		*d = attendanceData{}
		return nil
	}
	var days map[string]AttendanceDay
	if err := json.Unmarshal(b, &days); err != nil {
		return err
	}
	*d = days
	return nil
}

type announcementList []Announcement

// UnmarshalJSON accepts the keyed-object form as well as a plain array.
func (l *announcementList) UnmarshalJSON(b []byte) error {
	if isEmptyCollection(b) {
		*l = announcementList{}
		return nil
	}
	var items []Announcement
	if err := json.Unmarshal(b, &items); err == nil {
		*l = items
		return nil
	}
	var keyed map[string]Announcement
	if err := json.Unmarshal(b, &keyed); err != nil {
		return err
	}
	out := make(announcementList, 0, len(keyed))
	for _, item := range keyed {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	*l = out
	return nil
}

func (c *Client) pupilPath(resource string, query url.Values) (string, error) {
	c.mu.RLock()
	id := c.pupil.ID
	session := c.sessionID
	c.mu.RUnlock()
	if session == "" {
		return "", ErrNotLoggedIn
	}
	path := "/" + resource + "/" + strconv.Itoa(id)
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	return path, nil
}

func rangeQuery(from, to time.Time) url.Values {
	q := url.Values{}
	q.Set("from", from.Format(dateLayout))
	q.Set("to", to.Format(dateLayout))
	return q
}

func (c *Client) do(ctx context.Context, op, method, path string, form url.Values, authorised bool, out interface{}) error {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("classcharts %s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if authorised {
		c.mu.RLock()
		session := c.sessionID
		c.mu.RUnlock()
		if session == "" {
			return ErrNotLoggedIn
		}
		req.Header.Set("Authorization", "Basic "+session)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("classcharts %s: %w", op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return fmt.Errorf("classcharts %s: read body: %w", op, err)
	}

	var status struct {
		Success flag   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &status); err != nil {
		if resp.StatusCode >= 300 {
			return &APIError{Op: op, StatusCode: resp.StatusCode}
		}
		return fmt.Errorf("classcharts %s: decode response: %w", op, err)
	}
	if !status.Success || resp.StatusCode >= 300 {
		return &APIError{Op: op, StatusCode: resp.StatusCode, Message: status.Error}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("classcharts %s: decode response: %w", op, err)
	}
	return nil
}
