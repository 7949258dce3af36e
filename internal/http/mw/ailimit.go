package mw

import (
	"net/http"
	"sync"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/time/rate"
)

// aiLimiters tracks one token bucket per user for LLM-backed operations.
type aiLimiters struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func (l *aiLimiters) get(userID string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	limiter, ok := l.limiters[userID]
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[userID] = limiter
	}
	return limiter
}

// HumaAIRateLimit returns a Huma middleware that rate limits operations
// flagged with MetaKeyAIRateLimit, per authenticated user. Runs after
// HumaAuth so claims are already in context.
func HumaAIRateLimit(api huma.API, perMinute int) func(ctx huma.Context, next func(huma.Context)) {
	limiters := &aiLimiters{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(float64(perMinute) / 60.0),
		burst:    perMinute,
	}

	return func(ctx huma.Context, next func(huma.Context)) {
		op := ctx.Operation()
		if op == nil || op.Metadata == nil {
			next(ctx)
			return
		}
		if flagged, ok := op.Metadata[string(MetaKeyAIRateLimit)].(bool); !ok || !flagged {
			next(ctx)
			return
		}

		claims := GetUserClaims(ctx.Context())
		if claims == nil {
			next(ctx)
			return
		}

		if !limiters.get(claims.UserID).Allow() {
			huma.WriteErr(api, ctx, http.StatusTooManyRequests, "AI rate limit exceeded, try again shortly")
			return
		}
		next(ctx)
	}
}
