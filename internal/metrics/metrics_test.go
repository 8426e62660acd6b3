package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/titles/{title_id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues(http.MethodGet, "/titles/{title_id}", "418"))

	for _, path := range []string{"/titles/1", "/titles/2"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusTeapot, rec.Code)
	}

	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues(http.MethodGet, "/titles/{title_id}", "418"))
	assert.InDelta(t, 2, after-before, 0.0001)
}

func TestRecordMailDelivery(t *testing.T) {
	sent := testutil.ToFloat64(MailDeliveries.WithLabelValues("log", "sent"))
	failed := testutil.ToFloat64(MailDeliveries.WithLabelValues("log", "failed"))

	RecordMailDelivery("log", nil)
	RecordMailDelivery("log", errors.New("boom"))

	assert.InDelta(t, sent+1, testutil.ToFloat64(MailDeliveries.WithLabelValues("log", "sent")), 0.0001)
	assert.InDelta(t, failed+1, testutil.ToFloat64(MailDeliveries.WithLabelValues("log", "failed")), 0.0001)
}

func TestHandler_Exposition(t *testing.T) {
	RecordAuthzDenial("catalog", "write")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "yamdb_authz_denials_total"))
}
