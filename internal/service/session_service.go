package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/pupil-dashboard/internal/dto"
	appErrors "github.com/noah-isme/pupil-dashboard/pkg/errors"
)

const missingCredentialsMessage = "Pupil code and date of birth are required"

// SessionParams wires SessionService.
type SessionParams struct {
	Factory   ClientFactory
	Records   *RecordsService
	Throttle  *ThrottleService
	Validator *validator.Validate
	Metrics   *MetricsService
	Logger    *zap.Logger
}

// SessionService gates access on a successful upstream login. The credentials
// are passed through untouched; there is no local session store.
type SessionService struct {
	factory   ClientFactory
	records   *RecordsService
	throttle  *ThrottleService
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewSessionService constructs a SessionService.
func NewSessionService(params SessionParams) *SessionService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	v := params.Validator
	if v == nil {
		v = validator.New()
	}
	records := params.Records
	if records == nil {
		records = NewRecordsService(params.Metrics, logger)
	}
	return &SessionService{
		factory:   params.Factory,
		records:   records,
		throttle:  params.Throttle,
		validator: v,
		metrics:   params.Metrics,
		logger:    logger,
	}
}

// Verify checks a credential pair submitted from the login form.
func (s *SessionService) Verify(ctx context.Context, clientIP string, req dto.CredentialsRequest) (RecordsClient, error) {
	req.PupilCode = strings.TrimSpace(req.PupilCode)
	req.DateOfBirth = strings.TrimSpace(req.DateOfBirth)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, missingCredentialsMessage)
	}

	if err := s.throttle.Allow(ctx, clientIP, req.PupilCode); err != nil {
		s.metrics.RecordLoginAttempt("throttled")
		return nil, err
	}

	client, err := s.Open(ctx, req.PupilCode, req.DateOfBirth)
	if err != nil {
		if errors.Is(err, appErrors.ErrInvalidCredentials) {
			s.throttle.Fail(ctx, clientIP, req.PupilCode)
			s.metrics.RecordLoginAttempt(OutcomeRejected)
		} else {
			s.metrics.RecordLoginAttempt(OutcomeError)
		}
		return nil, err
	}

	s.throttle.Succeed(ctx, clientIP, req.PupilCode)
	s.metrics.RecordLoginAttempt(OutcomeSuccess)
	return client, nil
}

// Open builds a client for the pair and logs it in.
func (s *SessionService) Open(ctx context.Context, pupilCode, dateOfBirth string) (RecordsClient, error) {
	if strings.TrimSpace(pupilCode) == "" || strings.TrimSpace(dateOfBirth) == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, missingCredentialsMessage)
	}
	if s.factory == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "records client not configured")
	}
	client := s.factory(pupilCode, dateOfBirth)
	if err := s.records.Login(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

// Status reports whether the pair still opens an upstream session.
func (s *SessionService) Status(ctx context.Context, pupilCode, dateOfBirth string) bool {
	_, err := s.Open(ctx, pupilCode, dateOfBirth)
	return err == nil
}
