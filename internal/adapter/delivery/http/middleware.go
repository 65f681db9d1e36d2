package http

import (
	"strings"
	"sync"
	"time"

	"github.com/fasthttp/router"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	handlerhttp "network-registry/internal/adapter/handler/http"
	"network-registry/internal/domain"
	domainService "network-registry/internal/domain/service"
	"network-registry/internal/pkg/apperrors"
	"network-registry/internal/pkg/metrics"
)

// Middleware wraps a request handler.
type Middleware func(fasthttp.RequestHandler) fasthttp.RequestHandler

// Chain applies middlewares so that the first one listed runs first.
func Chain(h fasthttp.RequestHandler, mws ...Middleware) fasthttp.RequestHandler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// RequestID reuses the caller's X-Request-Id or generates one, and echoes it back.
func RequestID() Middleware {
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			id := string(ctx.Request.Header.Peek(handlerhttp.HeaderRequestID))
			if id == "" {
				id = uuid.NewString()
			}
			handlerhttp.SetRequestID(ctx, id)
			ctx.Response.Header.Set(handlerhttp.HeaderRequestID, id)
			next(ctx)
		}
	}
}

// Logging logs every finished request.
func Logging(logger *zap.Logger) Middleware {
	logger = logger.Named("HTTP")
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			start := time.Now()
			next(ctx)

			fields := []zap.Field{
				zap.String("requestId", handlerhttp.RequestID(ctx)),
				zap.ByteString("method", ctx.Method()),
				zap.ByteString("path", ctx.Path()),
				zap.Int("status", ctx.Response.StatusCode()),
				zap.Duration("duration", time.Since(start)),
			}
			if p := handlerhttp.PrincipalFrom(ctx); p != nil {
				fields = append(fields, zap.String("subject", p.Subject))
			}
			logger.Info("Request handled", fields...)
		}
	}
}

// Metrics records request counts and latency labelled by the matched route pattern.
func Metrics(m *metrics.HTTPMetrics) Middleware {
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			start := time.Now()
			next(ctx)

			route, _ := ctx.UserValue(router.MatchedRoutePathParam).(string)
			if route == "" {
				route = "unmatched"
			}
			m.Observe(string(ctx.Method()), route, ctx.Response.StatusCode(), time.Since(start))
		}
	}
}

// CORS sets cross-origin headers for allowed origins and answers preflight requests.
// An empty origin list disables CORS entirely.
func CORS(allowedOrigins []string) Middleware {
	allowAll := false
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[strings.TrimRight(o, "/")] = struct{}{}
	}

	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		if len(allowed) == 0 {
			return next
		}
		return func(ctx *fasthttp.RequestCtx) {
			origin := string(ctx.Request.Header.Peek(fasthttp.HeaderOrigin))
			if origin == "" {
				next(ctx)
				return
			}
			if _, ok := allowed[origin]; !ok && !allowAll {
				next(ctx)
				return
			}

			h := &ctx.Response.Header
			h.Set(fasthttp.HeaderAccessControlAllowOrigin, origin)
			h.Set(fasthttp.HeaderVary, fasthttp.HeaderOrigin)
			h.Set(fasthttp.HeaderAccessControlExposeHeaders, handlerhttp.HeaderRequestID)

			if ctx.IsOptions() && len(ctx.Request.Header.Peek(fasthttp.HeaderAccessControlRequestMethod)) > 0 {
				h.Set(fasthttp.HeaderAccessControlAllowMethods, "GET, POST, PUT, PATCH, DELETE, OPTIONS")
				h.Set(fasthttp.HeaderAccessControlAllowHeaders, "Authorization, Content-Type, "+handlerhttp.HeaderRequestID)
				h.Set(fasthttp.HeaderAccessControlMaxAge, "600")
				ctx.SetStatusCode(fasthttp.StatusNoContent)
				return
			}
			next(ctx)
		}
	}
}

// ipLimiters hands out one token bucket per client address. Idle buckets expire from the cache.
type ipLimiters struct {
	mu       sync.Mutex
	limiters *cache.Cache
	limit    rate.Limit
	burst    int
}

func newIPLimiters(requestsPerSecond float64, burst int) *ipLimiters {
	return &ipLimiters{
		limiters: cache.New(10*time.Minute, 10*time.Minute),
		limit:    rate.Limit(requestsPerSecond),
		burst:    burst,
	}
}

func (l *ipLimiters) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if x, found := l.limiters.Get(key); found {
		if limiter, ok := x.(*rate.Limiter); ok {
			l.limiters.SetDefault(key, limiter)
			return limiter
		}
	}
	limiter := rate.NewLimiter(l.limit, l.burst)
	l.limiters.SetDefault(key, limiter)
	return limiter
}

// RateLimit rejects clients exceeding requestsPerSecond with burst headroom.
// A non-positive rate disables limiting.
func RateLimit(requestsPerSecond float64, burst int, logger *zap.Logger) Middleware {
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		if requestsPerSecond <= 0 {
			return next
		}
		limiters := newIPLimiters(requestsPerSecond, burst)
		return func(ctx *fasthttp.RequestCtx) {
			key := ctx.RemoteIP().String()
			if !limiters.get(key).Allow() {
				logger.Debug("Rate limit exceeded", zap.String("client", key))
				handlerhttp.WriteError(ctx, apperrors.ErrRateLimited, logger)
				return
			}
			next(ctx)
		}
	}
}

// Auth requires a valid bearer token and stores the resolved principal on the request.
func Auth(authenticator domainService.Authenticator, logger *zap.Logger) Middleware {
	logger = logger.Named("Auth")
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			header := string(ctx.Request.Header.Peek(fasthttp.HeaderAuthorization))
			scheme, token, found := strings.Cut(header, " ")
			if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				handlerhttp.WriteError(ctx, domain.NewUnauthorizedError("missing bearer token"), logger)
				return
			}

			principal, err := authenticator.Authenticate(ctx, strings.TrimSpace(token))
			if err != nil {
				handlerhttp.WriteError(ctx, err, logger)
				return
			}
			handlerhttp.SetPrincipal(ctx, principal)
			next(ctx)
		}
	}
}
