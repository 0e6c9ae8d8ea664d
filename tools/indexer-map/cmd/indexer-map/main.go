package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/lmittmann/tint"
	"github.com/oschwald/geoip2-golang"
	"github.com/spf13/cobra"

	"github.com/thegraph-community/indexer-maps/config"
	"github.com/thegraph-community/indexer-maps/tools/indexer-map/internal/indexermap"
	"github.com/thegraph-community/indexer-maps/tools/indexer-map/internal/leaderboard"
	"github.com/thegraph-community/indexer-maps/tools/indexer-map/internal/metrics"
	"github.com/thegraph-community/indexer-maps/tools/indexer-map/internal/network"
	"github.com/thegraph-community/indexer-maps/tools/indexer-map/internal/publish"
	"github.com/thegraph-community/indexer-maps/tools/indexer-map/internal/render"
	"github.com/thegraph-community/indexer-maps/tools/indexer-map/internal/transport"
	"github.com/thegraph-community/indexer-maps/tools/maxmind/pkg/geoip"
)

const (
	defaultOutputDir     = "output"
	defaultGeoIPCityPath = "GeoLite2-City.mmdb"
	defaultGeoIPASNPath  = "GeoLite2-ASN.mmdb"
)

var (
	leaderboardURL string
	outputDir      string
	geoipCityPath  string
	geoipASNPath   string
	networksFile   string
	excludedOrgs   []string
	pageSize       int
	httpTimeout    time.Duration
	maxRetries     int
	jitter         float64
	metricsFile    string
	s3Config       publish.Config
	verbose        bool

	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "indexer-map",
	Short: "Render indexer score maps",
	Long: `indexer-map joins the migration incentive leaderboard with the indexer
registry of each network, geolocates every indexer and writes one HTML map per
network and score category, plus an index page linking them.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger(verbose)
		if err := run(cmd, log); err != nil {
			log.Error("Operation failed: generate_maps", "kind", string(transport.KindOf(err)), "error", err)
			return err
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("indexer-map %s (commit: %s, built: %s)\n", version, commit, date)
	},
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&leaderboardURL, "url", "", "leaderboard JSON URL (env URL)")
	flags.StringVar(&outputDir, "output-dir", "", "directory for generated HTML (env OUTPUT_DIR, default "+defaultOutputDir+")")
	flags.StringVar(&geoipCityPath, "geoip-city-db-path", "", "path to the GeoLite2 City database (env GEOIP_CITY_DB_PATH)")
	flags.StringVar(&geoipASNPath, "geoip-asn-db-path", "", "path to the GeoLite2 ASN database (env GEOIP_ASN_DB_PATH)")
	flags.StringVar(&networksFile, "networks-file", "", "YAML file replacing the built-in network table (env NETWORKS_FILE)")
	flags.StringSliceVar(&excludedOrgs, "exclude-org", []string{config.CloudflareOrg}, "organization whose indexers are left off the maps (repeatable)")
	flags.IntVar(&pageSize, "page-size", network.DefaultPageSize, "indexers requested per GraphQL page")
	flags.DurationVar(&httpTimeout, "http-timeout", transport.DefaultTimeout, "timeout for each HTTP request")
	flags.IntVar(&maxRetries, "max-retries", 0, "retries for failed HTTP requests")
	flags.Float64Var(&jitter, "jitter", indexermap.DefaultJitter, "maximum marker offset in degrees")
	flags.StringVar(&metricsFile, "metrics-file", "", "write prometheus metrics to this file at the end of the run")
	flags.StringVar(&s3Config.Bucket, "s3-bucket", "", "upload generated files to this S3 bucket (env S3_BUCKET)")
	flags.StringVar(&s3Config.Region, "s3-region", "", "S3 region (env S3_REGION or AWS_REGION)")
	flags.StringVar(&s3Config.KeyPrefix, "s3-key-prefix", "", "prefix for uploaded object keys (env S3_KEY_PREFIX)")
	flags.StringVar(&s3Config.EndpointURL, "s3-endpoint-url", "", "custom S3-compatible endpoint (env S3_ENDPOINT_URL)")
	flags.BoolVar(&verbose, "verbose", false, "enable debug logging")

	rootCmd.AddCommand(versionCmd)
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, log *slog.Logger) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if pageSize <= 0 {
		return transport.NewError(transport.ErrorKindConfig, "parse_flags", "page size must be positive", nil)
	}
	if httpTimeout <= 0 {
		return transport.NewError(transport.ErrorKindConfig, "parse_flags", "http timeout must be positive", nil)
	}
	if maxRetries < 0 {
		return transport.NewError(transport.ErrorKindConfig, "parse_flags", "max retries must not be negative", nil)
	}

	url := stringSetting(leaderboardURL, "URL", config.DefaultLeaderboardURL)
	outDir := stringSetting(outputDir, "OUTPUT_DIR", defaultOutputDir)
	cityPath := stringSetting(geoipCityPath, "GEOIP_CITY_DB_PATH", defaultGeoIPCityPath)
	asnPath := stringSetting(geoipASNPath, "GEOIP_ASN_DB_PATH", defaultGeoIPASNPath)
	netsPath := stringSetting(networksFile, "NETWORKS_FILE", "")

	log.Info("Operation started: generate_maps",
		"url", url,
		"output_dir", outDir,
		"networks_file", netsPath,
		"excluded_orgs", excludedOrgs)

	networks, err := config.LoadNetworks(netsPath)
	if err != nil {
		return transport.NewError(transport.ErrorKindConfig, "load_networks", "failed to load network table", err)
	}

	cityDB, err := geoip2.Open(cityPath)
	if err != nil {
		return transport.NewError(transport.ErrorKindIO, "open_geoip", "failed to open city database", err)
	}
	defer cityDB.Close()

	asnDB, err := geoip2.Open(asnPath)
	if err != nil {
		return transport.NewError(transport.ErrorKindIO, "open_geoip", "failed to open asn database", err)
	}
	defer asnDB.Close()

	geo, err := geoip.NewResolver(log, cityDB, asnDB)
	if err != nil {
		return fmt.Errorf("failed to create geoip resolver: %w", err)
	}

	renderer, err := render.NewRenderer(log, outDir, clockwork.NewRealClock())
	if err != nil {
		return transport.NewError(transport.ErrorKindIO, "create_output_dir", "failed to prepare output directory", err)
	}

	httpClient := transport.NewHTTPClient(httpTimeout)
	retry := transport.RetryPolicy{MaxRetries: maxRetries}

	lb := leaderboard.NewClient(log, url, httpClient)
	lb.Retry = retry

	indexers := network.NewClient(log, httpClient, pageSize)
	indexers.Retry = retry

	cfg := &indexermap.RunnerConfig{
		Logger:       log,
		Leaderboard:  lb,
		Indexers:     indexers,
		Networks:     networks,
		DNS:          net.DefaultResolver,
		GeoIP:        geo,
		Writer:       renderer,
		Summary:      os.Stdout,
		ExcludedOrgs: excludedOrgs,
		Jitter:       jitter,
	}

	s3Config.ApplyEnv()
	if s3Config.Enabled() {
		uploader, err := publish.New(ctx, &s3Config, log)
		if err != nil {
			return transport.NewError(transport.ErrorKindConfig, "create_uploader", "failed to configure s3 publishing", err)
		}
		cfg.Publisher = uploader
	}

	runner, err := indexermap.NewRunner(cfg)
	if err != nil {
		return transport.NewError(transport.ErrorKindConfig, "new_runner", "invalid configuration", err)
	}

	metrics.BuildInfo.WithLabelValues(version, commit, date).Set(1)

	report, runErr := runner.Run(ctx)
	if metricsFile != "" {
		if err := metrics.WriteTextfile(metricsFile); err != nil {
			log.Warn("Failed to write metrics file", "path", metricsFile, "error", err)
		}
	}
	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			log.Info("Operation cancelled by signal")
		}
		return runErr
	}

	log.Info("Operation completed: generate_maps",
		"maps", len(report.Artifacts),
		"index", report.IndexPath)
	return nil
}

// stringSetting resolves a setting as flag, then environment, then default.
func stringSetting(flagValue, envKey, fallback string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	return fallback
}

func newLogger(verbose bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level: logLevel,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				t := a.Value.Time().UTC()
				a.Value = slog.StringValue(formatRFC3339Millis(t))
			}
			if s, ok := a.Value.Any().(string); ok && s == "" {
				return slog.Attr{}
			}
			return a
		},
	}))
}

func formatRFC3339Millis(t time.Time) string {
	t = t.UTC()
	base := t.Format("2006-01-02T15:04:05")
	ms := t.Nanosecond() / 1_000_000
	return fmt.Sprintf("%s.%03dZ", base, ms)
}
