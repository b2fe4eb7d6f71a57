package classcharts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// envelope is the wrapper every endpoint responds with.
type envelope[T any] struct {
	Success flag            `json:"success"`
	Error   string          `json:"error"`
	Data    T               `json:"data"`
	Meta    json.RawMessage `json:"meta"`
}

// flag accepts 1/0 as well as true/false.
type flag bool

func (f *flag) UnmarshalJSON(b []byte) error {
	switch strings.Trim(string(b), `"`) {
	case "1", "true":
		*f = true
	default:
		*f = false
	}
	return nil
}

type sessionMeta struct {
	SessionID string `json:"session_id"`
}

// Pupil is the profile returned on login and by the ping endpoint.
type Pupil struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	AvatarURL string `json:"avatar_url"`
}

type pingData struct {
	User Pupil `json:"user"`
}

// AttendanceSession is a single AM or PM mark.
type AttendanceSession struct {
	Code       string `json:"code"`
	Status     string `json:"status"`
	LessonName string `json:"lesson_name"`
	RoomName   string `json:"room_name"`
}

// AttendanceDay holds the sessions recorded for one date. Either may be nil.
type AttendanceDay struct {
	AM *AttendanceSession `json:"AM,omitempty"`
	PM *AttendanceSession `json:"PM,omitempty"`
}

// UnmarshalJSON tolerates the empty-array form used for dates with no marks.
func (d *AttendanceDay) UnmarshalJSON(b []byte) error {
	if isEmptyCollection(b) {
		*d = AttendanceDay{}
		return nil
	}
	type plain AttendanceDay
	var out plain
	if err := json.Unmarshal(b, &out); err != nil {
		return err
	}
	*d = AttendanceDay(out)
	return nil
}

// AttendanceMeta carries the ordered date list and upstream percentages.
type AttendanceMeta struct {
	Dates                 []string `json:"dates"`
	Sessions              []string `json:"sessions"`
	StartDate             string   `json:"start_date"`
	EndDate               string   `json:"end_date"`
	Percentage            Percent  `json:"percentage"`
	PercentageSinceAugust Percent  `json:"percentage_singe_august"`
}

// Attendance is the decoded attendance endpoint payload.
type Attendance struct {
	Data map[string]AttendanceDay
	Meta AttendanceMeta
}

// Percent keeps the upstream percentage text whether it arrives quoted or not.
type Percent string

func (p *Percent) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" {
		s = ""
	}
	*p = Percent(s)
	return nil
}

// Tally maps a reason label to its point total.
type Tally map[string]int

// UnmarshalJSON accepts numeric or quoted values and the empty-array form.
func (t *Tally) UnmarshalJSON(b []byte) error {
	if isEmptyCollection(b) {
		*t = Tally{}
		return nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := make(Tally, len(raw))
	for label, value := range raw {
		text := strings.Trim(string(value), `"`)
		if text == "" || text == "null" {
			out[label] = 0
			continue
		}
		n, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return fmt.Errorf("tally %q: %w", label, err)
		}
		out[label] = int(math.Round(n))
	}
	*t = out
	return nil
}

// BehaviourPoint is one bucket of the behaviour timeline.
type BehaviourPoint struct {
	Positive int    `json:"positive"`
	Negative int    `json:"negative"`
	Name     string `json:"name"`
	Start    string `json:"start"`
	End      string `json:"end"`
}

// Behaviour is the decoded behaviour endpoint payload.
type Behaviour struct {
	Timeline        []BehaviourPoint `json:"timeline"`
	PositiveReasons Tally            `json:"positive_reasons"`
	NegativeReasons Tally            `json:"negative_reasons"`
}

// Announcement is a single school announcement.
type Announcement struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	SchoolName  string `json:"school_name"`
	TeacherName string `json:"teacher_name"`
	SchoolLogo  string `json:"school_logo"`
	Timestamp   string `json:"timestamp"`
}

func isEmptyCollection(b []byte) bool {
	trimmed := bytes.TrimSpace(b)
	return bytes.Equal(trimmed, []byte("[]")) || bytes.Equal(trimmed, []byte("null"))
}
