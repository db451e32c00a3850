package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"service-exchange/internal"
	"service-exchange/internal/models"
)

type APIKeyValidator interface {
	Validate(ctx context.Context, rawKey string) (*internal.APIKey, error)
}

// APIKeyAuth checks X-API-Key and, for requests naming a driver, that the key
// is scoped to it.
func APIKeyAuth(keys APIKeyValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("X-API-Key"))
			if raw == "" {
				writeBizErr(w, models.BizError(models.CodeAPIKeyMissing, "missing X-API-Key"))
				return
			}

			key, err := keys.Validate(r.Context(), raw)
			if err != nil {
				writeBizErr(w, models.BizError(models.CodeInternal, "internal error"))
				return
			}
			if key == nil {
				writeBizErr(w, models.BizError(models.CodeAPIKeyInvalid, "invalid api key"))
				return
			}
			if !key.Active {
				writeBizErr(w, models.BizError(models.CodeAPIKeyRevoked, "api key is revoked"))
				return
			}
			if driver := r.URL.Query().Get("driver"); driver != "" && !key.AllowsDriver(driver) {
				writeBizErr(w, models.DriverError(driver, models.CodeDriverNotAllowed, "api key is not granted this driver"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeBizErr(w http.ResponseWriter, e *models.BusinessError) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(e.HTTPStatus())
	_ = json.NewEncoder(w).Encode(e)
}
