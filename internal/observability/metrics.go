package observability

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
)

var (
	ItemsExtracted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_items_extracted_total",
			Help: "Products recovered from the catalog source",
		},
	)
	ItemsDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_items_dropped_total",
			Help: "Catalog items discarded for lacking an id",
		},
	)
	AspectsDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_aspects_dropped_total",
			Help: "Sentiment aspect entries discarded for a non-integer score",
		},
	)
	IngestionRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_ingestion_runs_total",
			Help: "Ingestion runs by outcome",
		},
		[]string{"outcome"},
	)
	LLMRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_llm_requests_total",
			Help: "LLM calls made by the assistant endpoints",
		},
		[]string{"endpoint", "status"},
	)
)

// Register adds the collectors to reg.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(ItemsExtracted, ItemsDropped, AspectsDropped, IngestionRuns, LLMRequests)
}

// Start registers the collectors globally and serves /metrics on port.
func Start(port string) {
	Register(prometheus.DefaultRegisterer)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go http.ListenAndServe(":"+port, mux)
}

// Push sends the current counters to a Pushgateway, replacing the group
// previously pushed under job. Used by one-shot jobs that exit before a
// scrape could reach them.
func Push(ctx context.Context, gatewayURL, job string) error {
	reg := prometheus.NewRegistry()
	Register(reg)
	return push.New(gatewayURL, job).Gatherer(reg).PushContext(ctx)
}
