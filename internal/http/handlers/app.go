package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"equityfund/internal/domain"
	"equityfund/internal/funding"
	"equityfund/internal/infra"
	"equityfund/internal/middleware"
)

// App carries the dependencies shared by all endpoint handlers. The service
// covers the domain operations; SQL is the marker-checked executor used by the
// platform counters endpoint.
type App struct {
	Service *funding.Service
	SQL     infra.SQLExecutor
	Logger  infra.Logger
}

func NewApp(service *funding.Service, sql infra.SQLExecutor, logger infra.Logger) *App {
	return &App{Service: service, SQL: sql, Logger: logger}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, kind, message string) {
	a.json(w, code, map[string]string{"error": kind, "message": message})
}

// domainError translates engine error kinds into HTTP responses. Validation
// failures name the violated field, authorization failures name the required
// tier, and external failures come back retryable as 502.
func (a *App) domainError(w http.ResponseWriter, err error) {
	if ve, ok := domain.AsValidation(err); ok {
		a.json(w, http.StatusBadRequest, map[string]string{
			"error":   "validation_failed",
			"field":   ve.Field,
			"message": ve.Reason,
		})
		return
	}
	if ae, ok := domain.AsAuthorization(err); ok {
		body := map[string]string{"error": "forbidden", "message": ae.Reason}
		if ae.RequiredTier != domain.KYCTierNone {
			body["required_tier"] = string(ae.RequiredTier)
		}
		a.json(w, http.StatusForbidden, body)
		return
	}
	var ee *domain.ExternalError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", "record not found")
	case errors.Is(err, domain.ErrUnauthorized):
		a.error(w, http.StatusForbidden, "forbidden", "access denied")
	case errors.Is(err, domain.ErrCampaignClosed):
		a.error(w, http.StatusBadRequest, "campaign_closed", domain.ErrCampaignClosed.Error())
	case errors.Is(err, domain.ErrImmutableRecord):
		a.error(w, http.StatusBadRequest, "immutable", domain.ErrImmutableRecord.Error())
	case errors.As(err, &ee):
		a.Logger.Error().Err(ee.Err).Str("service", ee.Service).Msg("external failure")
		a.error(w, http.StatusBadGateway, "external_failure", ee.Service+" unavailable, retry later")
	default:
		a.Logger.Error().Err(err).Msg("unhandled error")
		a.error(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

func (a *App) currentUserID(r *http.Request) string {
	return middleware.UserIDFromContext(r.Context())
}
