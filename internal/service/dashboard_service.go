package service

import (
	"context"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/pupil-dashboard/internal/dto"
	"github.com/noah-isme/pupil-dashboard/internal/models"
	appErrors "github.com/noah-isme/pupil-dashboard/pkg/errors"
)

// DashboardParams wires DashboardService.
type DashboardParams struct {
	Records              *RecordsService
	Binder               *Binder
	AnnouncementsTimeout time.Duration
	Views                *ViewStore
	Validator            *validator.Validate
	Logger               *zap.Logger
}

// DashboardService composes attendance, behaviour and announcements into one view.
type DashboardService struct {
	records              *RecordsService
	binder               *Binder
	announcementsTimeout time.Duration
	views                *ViewStore
	validator            *validator.Validate
	logger               *zap.Logger
	now                  func() time.Time
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(params DashboardParams) *DashboardService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	records := params.Records
	if records == nil {
		records = NewRecordsService(nil, logger)
	}
	binder := params.Binder
	if binder == nil {
		binder = NewBinder(0, 0)
	}
	timeout := params.AnnouncementsTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	v := params.Validator
	if v == nil {
		v = validator.New()
	}
	return &DashboardService{
		records:              records,
		binder:               binder,
		announcementsTimeout: timeout,
		views:                params.Views,
		validator:            v,
		logger:               logger,
		now:                  time.Now,
	}
}

// Binder exposes the binder used for rendering.
func (s *DashboardService) Binder() *Binder {
	return s.binder
}

// ResolveRange resolves the query's period against the service clock.
func (s *DashboardService) ResolveRange(q dto.ViewQuery) (models.DateRange, error) {
	if err := s.validator.Struct(q); err != nil {
		return models.DateRange{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid view query")
	}
	return ResolveDateRange(ParsePeriod(q.Period), s.now(), q.From, q.To)
}

// View renders the dashboard for one page. Requests carrying the same page id
// within a scope share their ViewState, so a refresh that started earlier than
// the newest one cannot replace its data. The caller's token is echoed back so
// the page can discard responses to superseded requests.
func (s *DashboardService) View(ctx context.Context, client RecordsClient, scope string, q dto.ViewQuery) (dto.DashboardView, error) {
	state := s.views.Acquire(scope, q.Page, q.Context, q.Theme)
	view, err := s.Refresh(ctx, client, state, q)
	if err != nil {
		return dto.DashboardView{}, err
	}
	view.Token = q.Token
	return view, nil
}

// Refresh fetches attendance and behaviour together into state and renders
// as soon as both are in; either failure fails the refresh. Announcements are
// not waited for: they are loaded through Announcements and the view reports
// them as pending until then.
func (s *DashboardService) Refresh(ctx context.Context, client RecordsClient, state *ViewState, q dto.ViewQuery) (dto.DashboardView, error) {
	r, err := s.ResolveRange(q)
	if err != nil {
		return dto.DashboardView{}, err
	}
	if q.Theme != "" {
		state.SetTheme(q.Theme)
	}
	if q.Context != "" {
		state.SetContext(q.Context)
	}
	token := state.Begin()

	var (
		wg           sync.WaitGroup
		sheet        models.AttendanceSheet
		tally        models.BehaviourTally
		sheetErr     error
		behaviourErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		sheet, sheetErr = s.records.Attendance(ctx, client, r)
	}()
	go func() {
		defer wg.Done()
		tally, behaviourErr = s.records.Behaviour(ctx, client, r)
	}()
	wg.Wait()

	if sheetErr != nil {
		return dto.DashboardView{}, sheetErr
	}
	if behaviourErr != nil {
		return dto.DashboardView{}, behaviourErr
	}

	if !state.Commit(ViewSnapshot{Token: token, Range: r, Sheet: sheet, Behaviour: tally}) {
		s.logger.Debug("discarded stale dashboard refresh", zap.Uint64("token", token))
	}
	return state.Render(s.binder), nil
}

// Announcements loads the announcements panel of a page under its own timeout.
// A failed or timed out load is reported on the panel, never as an error.
func (s *DashboardService) Announcements(ctx context.Context, client RecordsClient, scope string, q dto.AnnouncementsQuery) (dto.AnnouncementsView, error) {
	if err := s.validator.Struct(q); err != nil {
		return dto.AnnouncementsView{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid announcements query")
	}
	state := s.views.Acquire(scope, q.Page, "", "")
	s.LoadAnnouncements(ctx, client, state)
	return state.RenderAnnouncements(q.Index), nil
}

// LoadAnnouncements fetches announcements into state. It reports whether the
// result was committed; a load overtaken by a newer one is dropped.
func (s *DashboardService) LoadAnnouncements(ctx context.Context, client RecordsClient, state *ViewState) bool {
	token := state.BeginAnnouncements()
	annCtx, cancel := context.WithTimeout(ctx, s.announcementsTimeout)
	defer cancel()

	items, err := s.records.Announcements(annCtx, client)
	if err != nil {
		s.logger.Warn("announcements unavailable", zap.Error(err))
		items = []models.Announcement{}
	}
	committed := state.CommitAnnouncements(token, items, err != nil)
	if !committed {
		s.logger.Debug("discarded stale announcements load", zap.Uint64("token", token))
	}
	return committed
}
