package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	GeoLookupCacheHit   = "cache_hit"
	GeoLookupResolved   = "resolved"
	GeoLookupDNSFailure = "dns_failure"
	GeoLookupNotFound   = "not_found"

	StageJoined   = "joined"
	StageExcluded = "excluded"
	StageRendered = "rendered"
)

var (
	BuildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "indexer_map_build_info",
			Help: "Build information of the indexer map generator",
		},
		[]string{"version", "commit", "date"},
	)

	GraphQLPagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "indexer_map_graphql_pages_total",
		Help: "Total number of indexer pages fetched from the network subgraph",
	}, []string{"network"})

	IndexersFetchedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "indexer_map_indexers_fetched_total",
		Help: "Total number of indexers fetched from the network subgraph",
	}, []string{"network"})

	GeoLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "indexer_map_geo_lookups_total",
		Help: "Total number of host geolocation lookups by result",
	}, []string{"result"})

	RecordsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "indexer_map_records_total",
		Help: "Total number of indexer records per pipeline stage",
	}, []string{"network", "category", "stage"})

	MapsRenderedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "indexer_map_maps_rendered_total",
		Help: "Total number of map files written",
	})
)

// WriteTextfile writes the default registry in the text exposition format, for
// pickup by the node exporter textfile collector.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
