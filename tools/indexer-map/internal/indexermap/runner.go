package indexermap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"

	"github.com/thegraph-community/indexer-maps/config"
	"github.com/thegraph-community/indexer-maps/tools/indexer-map/internal/leaderboard"
	"github.com/thegraph-community/indexer-maps/tools/indexer-map/internal/metrics"
	"github.com/thegraph-community/indexer-maps/tools/indexer-map/internal/network"
	"github.com/thegraph-community/indexer-maps/tools/indexer-map/internal/render"
	"github.com/thegraph-community/indexer-maps/tools/indexer-map/internal/transport"
	"github.com/thegraph-community/indexer-maps/tools/maxmind/pkg/geoip"
)

type LeaderboardSource interface {
	Fetch(ctx context.Context) ([]leaderboard.Participant, error)
}

type IndexerSource interface {
	FetchIndexers(ctx context.Context, networkName, endpoint string) ([]network.Indexer, error)
}

type MapWriter interface {
	WriteMap(m render.Map) (render.Artifact, error)
	WriteIndex(artifacts []render.Artifact) (string, error)
}

type Publisher interface {
	Publish(ctx context.Context, path string) (string, error)
}

type RunnerConfig struct {
	Logger      *slog.Logger
	Leaderboard LeaderboardSource
	Indexers    IndexerSource
	Networks    []config.NetworkConfig

	// GeoIP configuration.
	DNS   IPResolver
	GeoIP geoip.Resolver

	// Output configuration.
	Writer    MapWriter
	Publisher Publisher
	Summary   io.Writer

	ExcludedOrgs []string
	Jitter       float64
	Rand         *rand.Rand
}

func (cfg *RunnerConfig) Validate() error {
	if cfg.Logger == nil {
		return errors.New("logger is required")
	}
	if cfg.Leaderboard == nil {
		return errors.New("leaderboard source is required")
	}
	if cfg.Indexers == nil {
		return errors.New("indexer source is required")
	}
	if len(cfg.Networks) == 0 {
		return errors.New("at least one network is required")
	}
	for i := range cfg.Networks {
		if err := cfg.Networks[i].Validate(); err != nil {
			return fmt.Errorf("network config is invalid: %w", err)
		}
	}
	if cfg.DNS == nil {
		return errors.New("dns resolver is required")
	}
	if cfg.GeoIP == nil {
		return errors.New("geoip resolver is required")
	}
	if cfg.Writer == nil {
		return errors.New("map writer is required")
	}
	if cfg.Jitter < 0 {
		return errors.New("jitter must not be negative")
	}
	return nil
}

// Report is the outcome of a full run.
type Report struct {
	Artifacts []render.Artifact
	IndexPath string
	Passes    []PassSummary
}

type Runner struct {
	log        *slog.Logger
	cfg        *RunnerConfig
	geolocator *Geolocator
	rng        *rand.Rand
}

func NewRunner(cfg *RunnerConfig) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Runner{
		log:        cfg.Logger,
		cfg:        cfg,
		geolocator: NewGeolocator(cfg.Logger, cfg.DNS, cfg.GeoIP),
		rng:        rng,
	}, nil
}

// Run fetches the leaderboard once, then renders one map per (network, score
// category) and finally the index page. Any fetch, render or publish error
// aborts the run.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	participants, err := r.cfg.Leaderboard.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch leaderboard: %w", err)
	}

	report := &Report{}
	for _, net := range r.cfg.Networks {
		r.log.Info("Processing network", "network", net.Name)

		indexers, err := r.cfg.Indexers.FetchIndexers(ctx, net.Name, net.Endpoint)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch indexers: %w", err)
		}

		// Hosts are resolved at most once per network, across all its categories.
		cache := NewGeoCache()
		for _, category := range net.ScoreCategories {
			pass, artifact, err := r.runPass(ctx, cache, net, category, participants, indexers)
			if err != nil {
				return nil, err
			}
			report.Passes = append(report.Passes, pass)
			if artifact != nil {
				report.Artifacts = append(report.Artifacts, *artifact)
			}
		}
		r.log.Info("Processed network", "network", net.Name, "indexers", len(indexers), "hosts", cache.Len())
	}

	indexPath, err := r.cfg.Writer.WriteIndex(report.Artifacts)
	if err != nil {
		return nil, transport.NewError(transport.ErrorKindIO, "write_index", "failed to write index page", err)
	}
	report.IndexPath = indexPath

	if r.cfg.Publisher != nil {
		if err := r.publish(ctx, report); err != nil {
			return nil, err
		}
	}

	if r.cfg.Summary != nil {
		WriteSummary(r.cfg.Summary, report.Passes)
	}

	return report, nil
}

func (r *Runner) runPass(ctx context.Context, cache *GeoCache, net config.NetworkConfig, category string, participants []leaderboard.Participant, indexers []network.Indexer) (PassSummary, *render.Artifact, error) {
	log := r.log.With("network", net.Name, "category", category)
	log.Info("Processing score type")

	joined := Join(category, net.AddressField, participants, indexers)
	records := ResolveHosts(log, joined)
	records = r.geolocator.Geolocate(ctx, cache, records)
	records = DecodeSelfReports(records)
	kept := ExcludeOrganizations(records, r.cfg.ExcludedOrgs)
	kept = Jitter(kept, r.rng, r.cfg.Jitter)

	pass := PassSummary{
		Network:  net.Name,
		Category: category,
		Joined:   len(joined),
		Excluded: len(records) - len(kept),
		Rendered: len(kept),
	}
	metrics.RecordsTotal.WithLabelValues(net.Name, category, metrics.StageJoined).Add(float64(pass.Joined))
	metrics.RecordsTotal.WithLabelValues(net.Name, category, metrics.StageExcluded).Add(float64(pass.Excluded))

	if len(kept) == 0 {
		log.Warn("No indexers left to render, skipping map", "joined", pass.Joined)
		return pass, nil, nil
	}

	artifact, err := r.cfg.Writer.WriteMap(render.Map{
		Network:  net.Name,
		Category: category,
		Markers:  Markers(kept),
	})
	if err != nil {
		return pass, nil, transport.NewError(transport.ErrorKindRender, "write_map",
			fmt.Sprintf("failed to write map for %s/%s", net.Name, category), err)
	}
	pass.Path = artifact.Path
	metrics.RecordsTotal.WithLabelValues(net.Name, category, metrics.StageRendered).Add(float64(pass.Rendered))
	metrics.MapsRenderedTotal.Inc()

	log.Info("Processed score type", "joined", pass.Joined, "excluded", pass.Excluded, "rendered", pass.Rendered)
	return pass, &artifact, nil
}

func (r *Runner) publish(ctx context.Context, report *Report) error {
	paths := make([]string, 0, len(report.Artifacts)+1)
	for _, a := range report.Artifacts {
		paths = append(paths, a.Path)
	}
	paths = append(paths, report.IndexPath)

	for _, p := range paths {
		if _, err := r.cfg.Publisher.Publish(ctx, p); err != nil {
			return transport.NewError(transport.ErrorKindIO, "publish", "failed to publish output", err)
		}
	}
	return nil
}

// Markers converts records into map markers at their (jittered) position.
func Markers(records []Record) []render.Marker {
	markers := make([]render.Marker, len(records))
	for i, rec := range records {
		markers[i] = render.Marker{
			ID:        rec.ID,
			Score:     rec.Score,
			Host:      rec.Host,
			Latitude:  rec.Latitude,
			Longitude: rec.Longitude,
		}
	}
	return markers
}
