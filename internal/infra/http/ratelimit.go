package http

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rohanbsher/immigration-ai/internal/domain"
	"github.com/rohanbsher/immigration-ai/internal/infra/ratelimit"
)

// Retry-After fallback when the limiter could not estimate a window
// reset.
const defaultRetryAfterSeconds = 60

// enforceLimit runs one increment-and-compare against the counter store.
// A store failure fails open by default; RATE_LIMIT_FAIL_CLOSED flips it
// to a 429 with the default Retry-After.
func (s *Server) enforceLimit(c *gin.Context, policy ratelimit.Policy, routeID, subject string) bool {
	if s.rateLimiter == nil || policy.Limit <= 0 {
		return true
	}
	key := policy.Key(routeID, subject)
	decision, err := s.rateLimiter.Allow(c.Request.Context(), key, policy.Limit, policy.Window)
	if err != nil {
		log.Printf("rate limiter unavailable on %s: %v", routeID, err)
		if s.rateLimitFailClosed {
			c.Header("Retry-After", strconv.Itoa(defaultRetryAfterSeconds))
			writeErrorCode(c, http.StatusTooManyRequests, "RATE_LIMIT_UNAVAILABLE", "rate limiter unavailable")
			return false
		}
		return true
	}
	writeRateLimitHeaders(c, decision)
	if !decision.Allowed {
		writeErrorCode(c, http.StatusTooManyRequests, "RATE_LIMITED", "rate limit exceeded")
		return false
	}
	return true
}

func writeRateLimitHeaders(c *gin.Context, decision domain.RateLimitDecision) {
	if decision.Limit > 0 {
		c.Header("RateLimit-Limit", strconv.Itoa(decision.Limit))
	}
	if decision.Remaining >= 0 {
		c.Header("RateLimit-Remaining", strconv.Itoa(decision.Remaining))
	}
	if !decision.ResetAt.IsZero() {
		c.Header("RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))
	}
	if !decision.Allowed {
		retryAfter := decision.RetryAfter(time.Now())
		if retryAfter <= 0 {
			retryAfter = defaultRetryAfterSeconds
		}
		c.Header("Retry-After", strconv.FormatInt(retryAfter, 10))
	}
}
