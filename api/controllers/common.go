package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/workshop-backend/api/middleware"
	"github.com/angelmondragon/workshop-backend/api/responses"
	"github.com/angelmondragon/workshop-backend/api/validators"
	pkgerrors "github.com/angelmondragon/workshop-backend/pkg/errors"
	"github.com/angelmondragon/workshop-backend/pkg/logger"
)

// requireTenant resolves the caller's tenant or writes a 401.
func requireTenant(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (uuid.UUID, bool) {
	tenantID, ok := middleware.TenantIDFromContext(r.Context())
	if !ok {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "tenant context missing"))
		return uuid.Nil, false
	}
	return tenantID, true
}

func serviceUnavailable(w http.ResponseWriter, r *http.Request, logg *logger.Logger, name string) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, name+" service unavailable"))
}

func sanitizeOptional(value *string, maxLen int) *string {
	if value == nil {
		return nil
	}
	trimmed := validators.SanitizeString(*value, maxLen)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
