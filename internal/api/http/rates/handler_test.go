package rates_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"service-exchange/internal"
	rateshttp "service-exchange/internal/api/http/rates"
	"service-exchange/internal/cnb"
	"service-exchange/internal/driver"
	"service-exchange/internal/metrics"
	"service-exchange/internal/models"
	"service-exchange/internal/service/logger"
	ratessvc "service-exchange/internal/service/rates"
)

const dailyFixing = `15.01.2024 #10
země|měna|množství|kód|kurz
EMU|euro|1|EUR|25,000
USA|dolar|1|USD|20,000
`

type mockRequestLogger struct {
	mock.Mock
}

func (m *mockRequestLogger) LogRequest(ctx context.Context, e logger.RequestEntry) error {
	return m.Called(ctx, e).Error(0)
}

func newMux(t *testing.T, upstreamStatus int, reqLog *mockRequestLogger, m *metrics.Metrics) *http.ServeMux {
	t.Helper()
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(upstreamStatus)
		_, _ = w.Write([]byte(dailyFixing))
	}))
	t.Cleanup(upstream.Close)

	p := cnb.New()
	p.BaseURL = upstream.URL
	d, err := driver.New[[]string](p, nil)
	require.NoError(t, err)

	svc := ratessvc.New(zap.NewNop(), nil, nil, d)
	mux := http.NewServeMux()
	if reqLog == nil {
		rateshttp.New(svc, nil, zap.NewNop(), m).Register(mux)
	} else {
		rateshttp.New(svc, reqLog, zap.NewNop(), m).Register(mux)
	}
	return mux
}

func do(t *testing.T, mux *http.ServeMux, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestHandler_GetRates(t *testing.T) {
	reqLog := &mockRequestLogger{}
	reqLog.On("LogRequest", mock.Anything, mock.MatchedBy(func(e logger.RequestEntry) bool {
		return e.Path == "/api/v1/rates" && e.Driver == "cnb" && e.Status == http.StatusOK &&
			e.DateAsOf != nil && e.DateAsOf.Format(internal.DateLayout) == "2024-01-15"
	})).Return(nil).Once()

	m := metrics.NewMetrics(prometheus.NewRegistry(), "test")
	mux := newMux(t, http.StatusOK, reqLog, m)

	rec := do(t, mux, http.MethodGet, "/api/v1/rates?driver=cnb&codes=USD")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"driver":"cnb","date":"2024-01-15","rates":[{"code":"USD","rate":20,"unit":1}]}`, rec.Body.String())
	reqLog.AssertExpectations(t)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("/api/v1/rates", "200")))
}

func TestHandler_GetRates_MethodNotAllowed(t *testing.T) {
	mux := newMux(t, http.StatusOK, nil, nil)

	rec := do(t, mux, http.MethodPost, "/api/v1/rates?driver=cnb")

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodGet, rec.Header().Get("Allow"))
}

func TestHandler_GetRates_Errors(t *testing.T) {
	cases := []struct {
		name     string
		upstream int
		target   string
		status   int
		code     string
	}{
		{"bad date", http.StatusOK, "/api/v1/rates?driver=cnb&date=15.01.2024", http.StatusBadRequest, "invalid_date"},
		{"unknown driver", http.StatusOK, "/api/v1/rates?driver=fed", http.StatusNotFound, "unknown_driver"},
		{"upstream down", http.StatusServiceUnavailable, "/api/v1/rates?driver=cnb", http.StatusBadGateway, "upstream_error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mux := newMux(t, tc.upstream, nil, nil)

			rec := do(t, mux, http.MethodGet, tc.target)

			require.Equal(t, tc.status, rec.Code)
			var body models.BusinessError
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.code, body.Code)
		})
	}
}

func TestHandler_GetRates_LogsDriverOnFailure(t *testing.T) {
	reqLog := &mockRequestLogger{}
	reqLog.On("LogRequest", mock.Anything, mock.MatchedBy(func(e logger.RequestEntry) bool {
		return e.Driver == "cnb" && e.Status == http.StatusBadGateway && e.DateAsOf == nil
	})).Return(nil).Once()

	mux := newMux(t, http.StatusServiceUnavailable, reqLog, nil)

	rec := do(t, mux, http.MethodGet, "/api/v1/rates?driver=cnb")

	require.Equal(t, http.StatusBadGateway, rec.Code)
	reqLog.AssertExpectations(t)
}

func TestHandler_GetRates_InvalidDateNamesDriver(t *testing.T) {
	mux := newMux(t, http.StatusOK, nil, nil)

	rec := do(t, mux, http.MethodGet, "/api/v1/rates?driver=cnb&date=2024/01/15")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body models.BusinessError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, models.CodeInvalidDate, body.Code)
	assert.Equal(t, "cnb", body.Driver)
}

func TestHandler_GetRate(t *testing.T) {
	mux := newMux(t, http.StatusOK, nil, nil)

	rec := do(t, mux, http.MethodGet, "/api/v1/rate?driver=cnb&base=EUR&quote=USD")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"base":"EUR","quote":"USD","rate":"1.25","date":"2024-01-15"}`, rec.Body.String())
}

func TestHandler_GetDrivers(t *testing.T) {
	mux := newMux(t, http.StatusOK, nil, nil)

	rec := do(t, mux, http.MethodGet, "/api/v1/drivers")

	require.Equal(t, http.StatusOK, rec.Code)
	var out []ratessvc.DriverInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, "cnb", out[0].Name)
	assert.Equal(t, "Europe/Prague", out[0].TimeZone)
}
