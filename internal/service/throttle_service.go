package service

import (
	"context"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"

	appErrors "github.com/noah-isme/pupil-dashboard/pkg/errors"
)

// ThrottleStore persists attempt counters.
type ThrottleStore interface {
	Count(ctx context.Context, key string) (int64, error)
	Hit(ctx context.Context, key string, window time.Duration) (int64, error)
	Reset(ctx context.Context, key string) error
}

// ThrottleParams configures ThrottleService.
type ThrottleParams struct {
	Store       ThrottleStore
	Enabled     bool
	MaxAttempts int
	Window      time.Duration
	Metrics     *MetricsService
	Logger      *zap.Logger
}

// ThrottleService limits failed credential checks per client IP and pupil code.
// Store failures never block a login.
type ThrottleService struct {
	store       ThrottleStore
	enabled     bool
	maxAttempts int64
	window      time.Duration
	metrics     *MetricsService
	logger      *zap.Logger
}

// NewThrottleService constructs a ThrottleService.
func NewThrottleService(params ThrottleParams) *ThrottleService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	maxAttempts := params.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	window := params.Window
	if window <= 0 {
		window = 15 * time.Minute
	}
	return &ThrottleService{
		store:       params.Store,
		enabled:     params.Enabled,
		maxAttempts: int64(maxAttempts),
		window:      window,
		metrics:     params.Metrics,
		logger:      logger,
	}
}

// Enabled reports whether attempts are being counted.
func (s *ThrottleService) Enabled() bool {
	return s != nil && s.enabled && s.store != nil
}

// Allow returns ErrTooManyRequests once the key has used up its attempts.
func (s *ThrottleService) Allow(ctx context.Context, clientIP, pupilCode string) error {
	if !s.Enabled() {
		return nil
	}
	count, err := s.store.Count(ctx, throttleKey(clientIP, pupilCode))
	if err != nil {
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("throttle lookup failed", zap.Error(err))
		}
		return nil
	}
	if count >= s.maxAttempts {
		s.metrics.RecordThrottleRejection()
		return appErrors.Clone(appErrors.ErrTooManyRequests, "")
	}
	return nil
}

// Fail records a failed attempt.
func (s *ThrottleService) Fail(ctx context.Context, clientIP, pupilCode string) {
	if !s.Enabled() {
		return
	}
	if _, err := s.store.Hit(ctx, throttleKey(clientIP, pupilCode), s.window); err != nil {
		s.logger.Warn("throttle hit failed", zap.Error(err))
	}
}

// Succeed clears the counter for the key.
func (s *ThrottleService) Succeed(ctx context.Context, clientIP, pupilCode string) {
	if !s.Enabled() {
		return
	}
	if err := s.store.Reset(ctx, throttleKey(clientIP, pupilCode)); err != nil {
		s.logger.Warn("throttle reset failed", zap.Error(err))
	}
}

// throttleKey hashes the pair so pupil codes never appear in Redis.
func throttleKey(clientIP, pupilCode string) string {
	sum := blake2b.Sum256([]byte(strings.TrimSpace(clientIP) + "|" + strings.ToUpper(strings.TrimSpace(pupilCode))))
	return hex.EncodeToString(sum[:])
}
