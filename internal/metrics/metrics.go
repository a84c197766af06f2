package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is implemented by Collector and NopRecorder
type Recorder interface {
	RecordIntegrationConnected(platform string)
	RecordIntegrationDisconnected(platform string)
	RecordPublish(platform string, outcome string)
	RecordTokenRefresh(outcome string)
	RecordSourcePoll(outcome string)
	RecordItemsImported(count int)
}

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

type Collector struct {
	connected     *prometheus.CounterVec
	disconnected  *prometheus.CounterVec
	publishes     *prometheus.CounterVec
	refreshes     *prometheus.CounterVec
	sourcePolls   *prometheus.CounterVec
	itemsImported prometheus.Counter
}

var _ Recorder = (*Collector)(nil)

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		connected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tinypost_integrations_connected_total",
			Help: "Number of completed account connections.",
		}, []string{"platform"}),
		disconnected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tinypost_integrations_disconnected_total",
			Help: "Number of disconnected accounts.",
		}, []string{"platform"}),
		publishes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tinypost_publish_total",
			Help: "Publish attempts by outcome.",
		}, []string{"platform", "outcome"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tinypost_token_refresh_total",
			Help: "Token refreshes by outcome.",
		}, []string{"outcome"}),
		sourcePolls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tinypost_source_poll_total",
			Help: "Content source polls by outcome.",
		}, []string{"outcome"}),
		itemsImported: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tinypost_items_imported_total",
			Help: "Content items imported from sources.",
		}),
	}

	reg.MustRegister(
		c.connected,
		c.disconnected,
		c.publishes,
		c.refreshes,
		c.sourcePolls,
		c.itemsImported,
	)

	return c
}

func (c *Collector) RecordIntegrationConnected(platform string) {
	c.connected.WithLabelValues(platform).Inc()
}

func (c *Collector) RecordIntegrationDisconnected(platform string) {
	c.disconnected.WithLabelValues(platform).Inc()
}

func (c *Collector) RecordPublish(platform string, outcome string) {
	c.publishes.WithLabelValues(platform, outcome).Inc()
}

func (c *Collector) RecordTokenRefresh(outcome string) {
	c.refreshes.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordSourcePoll(outcome string) {
	c.sourcePolls.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordItemsImported(count int) {
	c.itemsImported.Add(float64(count))
}

type NopRecorder struct{}

var _ Recorder = NopRecorder{}

func (NopRecorder) RecordIntegrationConnected(string)    {}
func (NopRecorder) RecordIntegrationDisconnected(string) {}
func (NopRecorder) RecordPublish(string, string)         {}
func (NopRecorder) RecordTokenRefresh(string)            {}
func (NopRecorder) RecordSourcePoll(string)              {}
func (NopRecorder) RecordItemsImported(int)              {}

// Handler serves the prometheus scrape endpoint for gatherer
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
