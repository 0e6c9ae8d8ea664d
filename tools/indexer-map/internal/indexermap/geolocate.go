package indexermap

import (
	"context"
	"errors"
	"log/slog"
	"net"

	"github.com/jellydator/ttlcache/v3"
	"github.com/thegraph-community/indexer-maps/tools/indexer-map/internal/metrics"
	"github.com/thegraph-community/indexer-maps/tools/maxmind/pkg/geoip"
)

// LoopbackIP is recorded for hosts that fail DNS resolution.
const LoopbackIP = "127.0.0.1"

var errNoAddresses = errors.New("no ipv4 addresses")

type IPResolver interface {
	LookupIP(ctx context.Context, network, host string) ([]net.IP, error)
}

// GeoEntry is the cached outcome of resolving and geolocating one host.
type GeoEntry struct {
	IP        string
	City      string
	Longitude float64
	Latitude  float64
	Org       string
}

// GeoCache holds geolocation results by host for one network pass.
type GeoCache struct {
	items *ttlcache.Cache[string, GeoEntry]
}

func NewGeoCache() *GeoCache {
	return &GeoCache{
		items: ttlcache.New[string, GeoEntry](
			ttlcache.WithDisableTouchOnHit[string, GeoEntry](),
		),
	}
}

func (c *GeoCache) Get(host string) (GeoEntry, bool) {
	item := c.items.Get(host)
	if item == nil {
		return GeoEntry{}, false
	}
	return item.Value(), true
}

func (c *GeoCache) Set(host string, entry GeoEntry) {
	c.items.Set(host, entry, ttlcache.NoTTL)
}

func (c *GeoCache) Len() int {
	return c.items.Len()
}

type Geolocator struct {
	log *slog.Logger
	dns IPResolver
	geo geoip.Resolver
}

func NewGeolocator(log *slog.Logger, dns IPResolver, geo geoip.Resolver) *Geolocator {
	return &Geolocator{log: log, dns: dns, geo: geo}
}

// Locate resolves host to an IPv4 address and geolocates it. DNS failures
// yield the loopback IP with zero coordinates and are not cached, so the
// next record with the same host resolves again.
func (g *Geolocator) Locate(ctx context.Context, cache *GeoCache, host string) GeoEntry {
	if entry, ok := cache.Get(host); ok {
		metrics.GeoLookupsTotal.WithLabelValues(metrics.GeoLookupCacheHit).Inc()
		return entry
	}

	ip, err := g.lookupIPv4(ctx, host)
	if err != nil {
		g.log.Debug("Failed to resolve host", "host", host, "error", err)
		metrics.GeoLookupsTotal.WithLabelValues(metrics.GeoLookupDNSFailure).Inc()
		return GeoEntry{IP: LoopbackIP}
	}

	entry := GeoEntry{IP: ip.String()}
	if rec := g.geo.Resolve(ip); rec != nil {
		entry.City = rec.City
		entry.Latitude = rec.Latitude
		entry.Longitude = rec.Longitude
		entry.Org = rec.ASNOrg
		metrics.GeoLookupsTotal.WithLabelValues(metrics.GeoLookupResolved).Inc()
	} else {
		g.log.Debug("Address not found in geoip databases", "host", host, "ip", entry.IP)
		metrics.GeoLookupsTotal.WithLabelValues(metrics.GeoLookupNotFound).Inc()
	}

	cache.Set(host, entry)
	return entry
}

// Geolocate returns a copy of records with their resolved location attached.
func (g *Geolocator) Geolocate(ctx context.Context, cache *GeoCache, records []Record) []Record {
	out := make([]Record, len(records))
	for i, r := range records {
		entry := g.Locate(ctx, cache, r.Host)
		r.IP = entry.IP
		r.City = entry.City
		r.Latitude = entry.Latitude
		r.Longitude = entry.Longitude
		r.Org = entry.Org
		out[i] = r
	}
	return out
}

func (g *Geolocator) lookupIPv4(ctx context.Context, host string) (net.IP, error) {
	ips, err := g.dns.LookupIP(ctx, "ip4", host)
	if err != nil {
		return nil, err
	}
	for _, ip := range ips {
		if v4 := ip.To4(); v4 != nil {
			return v4, nil
		}
	}
	return nil, errNoAddresses
}
