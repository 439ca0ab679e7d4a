package calinga

import (
	"context"
	"sync"
	"time"
)

// RateLimitConfig configures the token bucket in front of the service.
type RateLimitConfig struct {
	RequestsPerMinute int // Sustained request rate (default: 60)
	BurstSize         int // Bucket capacity (default: RequestsPerMinute)
}

// RateLimiter is a token bucket. It never queues work; callers either take
// a token or wait for the next one.
type RateLimiter struct {
	mu         sync.Mutex
	tokens     float64
	capacity   float64
	perSecond  float64
	lastRefill time.Time
	now        func() time.Time
}

// NewRateLimiter creates a limiter with a full bucket.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	rpm := float64(cfg.RequestsPerMinute)
	if rpm <= 0 {
		rpm = 60
	}
	burst := float64(cfg.BurstSize)
	if burst <= 0 {
		burst = rpm
	}

	r := &RateLimiter{
		tokens:    burst,
		capacity:  burst,
		perSecond: rpm / 60.0,
		now:       time.Now,
	}
	r.lastRefill = r.now()
	return r
}

// Wait blocks until a token is taken or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		wait, ok := r.reserve()
		if ok {
			return nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// TryAcquire takes a token without blocking.
func (r *RateLimiter) TryAcquire() bool {
	_, ok := r.reserve()
	return ok
}

// Available returns the current number of tokens.
func (r *RateLimiter) Available() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refillLocked()
	return r.tokens
}

// reserve takes a token if one is available, otherwise reports how long
// until the next token.
func (r *RateLimiter) reserve() (time.Duration, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.refillLocked()
	if r.tokens >= 1 {
		r.tokens--
		return 0, true
	}

	missing := 1 - r.tokens
	return time.Duration(missing / r.perSecond * float64(time.Second)), false
}

func (r *RateLimiter) refillLocked() {
	now := r.now()
	r.tokens += now.Sub(r.lastRefill).Seconds() * r.perSecond
	if r.tokens > r.capacity {
		r.tokens = r.capacity
	}
	r.lastRefill = now
}

// RateLimitedService wraps a Service with a RateLimiter. Each call waits for
// a token; a cancelled wait is reported as a ServiceError.
type RateLimitedService struct {
	service Service
	limiter *RateLimiter
}

// NewRateLimitedService creates a rate-limited Service.
func NewRateLimitedService(svc Service, cfg RateLimitConfig) *RateLimitedService {
	return &RateLimitedService{
		service: svc,
		limiter: NewRateLimiter(cfg),
	}
}

// FetchTranslations implements Service.
func (s *RateLimitedService) FetchTranslations(ctx context.Context, language, etag string) (*FetchResult, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, &ServiceError{Message: "rate limit wait cancelled", Cause: err}
	}
	return s.service.FetchTranslations(ctx, language, etag)
}

// FetchLanguages implements Service.
func (s *RateLimitedService) FetchLanguages(ctx context.Context) ([]Language, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, &ServiceError{Message: "rate limit wait cancelled", Cause: err}
	}
	return s.service.FetchLanguages(ctx)
}

// Limiter returns the underlying rate limiter for inspection.
func (s *RateLimitedService) Limiter() *RateLimiter {
	return s.limiter
}

var _ Service = (*RateLimitedService)(nil)
