package api

import (
	"net"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/listenupapp/storybook/internal/errors"
	"github.com/listenupapp/storybook/internal/ratelimit"
)

// rateLimited returns an operation middleware that rejects requests once the
// client IP has spent its budget. Rejections are 429 RATE_LIMITED.
func (s *Server) rateLimited(limiter *ratelimit.KeyedRateLimiter) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		key := clientIP(ctx.Header("X-Forwarded-For"), ctx.Header("X-Real-IP"), ctx.RemoteAddr())

		if !limiter.Allow(key) {
			s.logger.Warn("rate limit exceeded",
				"ip", key,
				"path", ctx.URL().Path,
			)
			_ = huma.WriteErr(s.api, ctx, http.StatusTooManyRequests, "Too many requests. Please try again later.",
				domainerrors.RateLimited("too many uploads, try again in a minute"))
			return
		}

		next(ctx)
	}
}

// clientIP picks the client address: first X-Forwarded-For hop, then
// X-Real-IP, then the connection address without its port.
func clientIP(forwardedFor, realIP, remoteAddr string) string {
	if forwardedFor != "" {
		first, _, _ := strings.Cut(forwardedFor, ",")
		return strings.TrimSpace(first)
	}

	if realIP != "" {
		return realIP
	}

	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	return remoteAddr
}
