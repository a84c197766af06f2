package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"gotest.tools/v3/assert"
)

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordIntegrationConnected("LINKEDIN")
	c.RecordIntegrationConnected("LINKEDIN")
	c.RecordIntegrationDisconnected("LINKEDIN")
	c.RecordPublish("LINKEDIN", OutcomeSuccess)
	c.RecordPublish("LINKEDIN", OutcomeFailure)
	c.RecordPublish("LINKEDIN", OutcomeFailure)
	c.RecordTokenRefresh(OutcomeSuccess)
	c.RecordSourcePoll(OutcomeFailure)
	c.RecordItemsImported(3)

	assert.Equal(t, testutil.ToFloat64(c.connected.WithLabelValues("LINKEDIN")), float64(2))
	assert.Equal(t, testutil.ToFloat64(c.disconnected.WithLabelValues("LINKEDIN")), float64(1))
	assert.Equal(t, testutil.ToFloat64(c.publishes.WithLabelValues("LINKEDIN", OutcomeSuccess)), float64(1))
	assert.Equal(t, testutil.ToFloat64(c.publishes.WithLabelValues("LINKEDIN", OutcomeFailure)), float64(2))
	assert.Equal(t, testutil.ToFloat64(c.refreshes.WithLabelValues(OutcomeSuccess)), float64(1))
	assert.Equal(t, testutil.ToFloat64(c.sourcePolls.WithLabelValues(OutcomeFailure)), float64(1))
	assert.Equal(t, testutil.ToFloat64(c.itemsImported), float64(3))
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordPublish("LINKEDIN", OutcomeSuccess)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	recorder := httptest.NewRecorder()

	Handler(reg).ServeHTTP(recorder, req)

	res := recorder.Result()
	assert.Equal(t, res.StatusCode, http.StatusOK)

	body, err := io.ReadAll(res.Body)
	assert.NilError(t, err)
	assert.Assert(t, strings.Contains(string(body), "tinypost_publish_total"))
}
