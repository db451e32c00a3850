package rates

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"service-exchange/internal"
	"service-exchange/internal/metrics"
	"service-exchange/internal/models"
	"service-exchange/internal/service/logger"
	"service-exchange/internal/service/rates"
)

type Handler struct {
	rates   *rates.Service
	logger  logger.RequestLogger
	log     *zap.Logger
	metrics *metrics.Metrics
}

// New builds the handler; the request logger and metrics may be nil.
func New(r *rates.Service, l logger.RequestLogger, log *zap.Logger, m *metrics.Metrics) *Handler {
	return &Handler{rates: r, logger: l, log: log, metrics: m}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/rates", h.getRates)
	mux.HandleFunc("/api/v1/rate", h.getRate)
	mux.HandleFunc("/api/v1/drivers", h.getDrivers)
}

// getRates: GET /api/v1/rates?driver=cnb&date=2024-01-15&codes=EUR,USD
func (h *Handler) getRates(w http.ResponseWriter, r *http.Request) {
	if !h.allowGet(w, r) {
		return
	}

	q := r.URL.Query()
	out, err := h.rates.Latest(r.Context(), q.Get("driver"), q.Get("date"), q["codes"])
	if err != nil {
		h.done(r, h.writeErr(w, err), q.Get("driver"), nil)
		return
	}

	h.done(r, writeJSON(w, out), out.Driver, &out.Date)
}

// getRate: GET /api/v1/rate?driver=cnb&base=EUR&quote=USD
func (h *Handler) getRate(w http.ResponseWriter, r *http.Request) {
	if !h.allowGet(w, r) {
		return
	}

	q := r.URL.Query()
	out, err := h.rates.PairRate(r.Context(), q.Get("driver"), q.Get("date"), q.Get("base"), q.Get("quote"))
	if err != nil {
		h.done(r, h.writeErr(w, err), q.Get("driver"), nil)
		return
	}

	h.done(r, writeJSON(w, out), q.Get("driver"), out.Date)
}

func (h *Handler) getDrivers(w http.ResponseWriter, r *http.Request) {
	if !h.allowGet(w, r) {
		return
	}
	h.done(r, writeJSON(w, h.rates.Drivers()), "", nil)
}

func (h *Handler) allowGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet {
		return true
	}
	st := http.StatusMethodNotAllowed
	w.Header().Set("Allow", http.MethodGet)
	w.WriteHeader(st)
	h.done(r, st, r.URL.Query().Get("driver"), nil)
	return false
}

func (h *Handler) done(r *http.Request, status int, driver string, dateAsOf *internal.Date) {
	h.metrics.RecordHTTPRequest(r.URL.Path, strconv.Itoa(status))
	if h.logger == nil {
		return
	}
	entry := logger.RequestEntry{Path: r.URL.Path, Driver: driver, Status: status, DateAsOf: dateAsOf}
	if err := h.logger.LogRequest(r.Context(), entry); err != nil && h.log != nil {
		h.log.Warn("log request", zap.String("path", r.URL.Path), zap.Error(err))
	}
}

func writeJSON(w http.ResponseWriter, v any) int {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(v)
	return http.StatusOK
}

// writeErr answers business errors as they are and everything else as a
// failed upstream.
func (h *Handler) writeErr(w http.ResponseWriter, err error) int {
	var biz *models.BusinessError
	if !errors.As(err, &biz) {
		if h.log != nil {
			h.log.Warn("rates request failed", zap.Error(err))
		}
		biz = models.BizError(models.CodeUpstream, err.Error())
	}

	status := biz.HTTPStatus()
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(biz)
	return status
}
