package service

import (
	"sync"

	"github.com/noah-isme/pupil-dashboard/internal/dto"
	"github.com/noah-isme/pupil-dashboard/internal/models"
)

// ViewSnapshot is the data a view was last rendered from.
type ViewSnapshot struct {
	Token               uint64
	Range               models.DateRange
	Sheet               models.AttendanceSheet
	Behaviour           models.BehaviourTally
	Announcements       []models.Announcement
	AnnouncementsFailed bool
	AnnouncementsLoaded bool
}

// ViewState holds one page's data between requests. Range refreshes and
// announcement loads each take a token from their own sequence; a commit is
// applied only while its token is still the newest of its sequence, so a slow
// stale fetch can never overwrite a fresher one.
type ViewState struct {
	mu        sync.Mutex
	latest    uint64
	annLatest uint64
	snapshot  ViewSnapshot
	theme     string
	context   string
}

// NewViewState creates an empty state for the given page context and theme.
func NewViewState(context, theme string) *ViewState {
	if context != dto.ContextFull {
		context = dto.ContextCompact
	}
	return &ViewState{context: context, theme: NormaliseTheme(theme)}
}

// Begin issues the next range refresh token.
func (s *ViewState) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest++
	return s.latest
}

// Commit stores the attendance and behaviour of snapshot if its token is
// current and reports whether it did. Announcements are left as they are.
func (s *ViewState) Commit(snapshot ViewSnapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if snapshot.Token != s.latest {
		return false
	}
	s.snapshot.Token = snapshot.Token
	s.snapshot.Range = snapshot.Range
	s.snapshot.Sheet = snapshot.Sheet
	s.snapshot.Behaviour = snapshot.Behaviour
	return true
}

// BeginAnnouncements issues the next announcement load token.
func (s *ViewState) BeginAnnouncements() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.annLatest++
	return s.annLatest
}

// CommitAnnouncements stores a loaded announcement list if token is the newest
// announcement token and reports whether it did.
func (s *ViewState) CommitAnnouncements(token uint64, items []models.Announcement, failed bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.annLatest {
		return false
	}
	s.snapshot.Announcements = items
	s.snapshot.AnnouncementsFailed = failed
	s.snapshot.AnnouncementsLoaded = true
	return true
}

// SetTheme changes the theme used by later renders.
func (s *ViewState) SetTheme(theme string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.theme = NormaliseTheme(theme)
}

// SetContext switches between the compact and full page layouts.
func (s *ViewState) SetContext(context string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if context != dto.ContextFull {
		context = dto.ContextCompact
	}
	s.context = context
}

// Render binds the committed snapshot with the current theme.
func (s *ViewState) Render(b *Binder) dto.DashboardView {
	s.mu.Lock()
	in := ViewInput{
		Token:                s.snapshot.Token,
		Context:              s.context,
		Theme:                s.theme,
		Range:                s.snapshot.Range,
		Sheet:                s.snapshot.Sheet,
		Behaviour:            s.snapshot.Behaviour,
		Announcements:        s.snapshot.Announcements,
		AnnouncementsFailed:  s.snapshot.AnnouncementsFailed,
		AnnouncementsPending: !s.snapshot.AnnouncementsLoaded,
	}
	s.mu.Unlock()
	return b.Bind(in)
}

// RenderAnnouncements binds the committed announcements with the cursor at index.
func (s *ViewState) RenderAnnouncements(index int) dto.AnnouncementsView {
	s.mu.Lock()
	items := s.snapshot.Announcements
	failed := s.snapshot.AnnouncementsFailed
	loaded := s.snapshot.AnnouncementsLoaded
	s.mu.Unlock()
	if !loaded {
		return dto.AnnouncementsView{Items: []dto.AnnouncementView{}, Pending: true}
	}
	return BindAnnouncements(items, index, failed)
}
