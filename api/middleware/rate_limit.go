package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/angelmondragon/workshop-backend/api/responses"
	"github.com/angelmondragon/workshop-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/workshop-backend/pkg/errors"
	"github.com/angelmondragon/workshop-backend/pkg/logger"
)

type rateLimiterStore interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// TenantWriteLimit throttles mutating requests per tenant with a fixed Redis
// window. Reads pass through, as do requests without a tenant (auth rejects
// those later in the chain).
func TenantWriteLimit(cfg config.RateLimitConfig, store rateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if store == nil || cfg.TenantWriteLimit <= 0 || cfg.TenantWriteWindow <= 0 {
			return next
		}
		limit := int64(cfg.TenantWriteLimit)

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tenantID, ok := TenantIDFromContext(r.Context())
			if !ok || !isWrite(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			allowed, count, err := store.FixedWindowAllow(ctx, "tenant-writes:"+tenantID.String(), limit, cfg.TenantWriteWindow)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
				return
			}
			if !allowed {
				retryAfter := int(cfg.TenantWriteWindow.Seconds())
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				details := map[string]any{"limit": limit, "count": count, "window_seconds": retryAfter}
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeRateLimit, "tenant write limit exceeded").WithDetails(details))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func isWrite(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
