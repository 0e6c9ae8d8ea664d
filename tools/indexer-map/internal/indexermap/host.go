package indexermap

import (
	"fmt"
	"log/slog"
	"strings"
)

// PlaceholderURL stands in for indexers that never published a service URL.
const PlaceholderURL = "http://example.com"

const schemeSeparator = "://"

// ExtractHost returns the host of a service URL: the text between "://" and
// the next "/", without any ":port" suffix.
func ExtractHost(serviceURL string) (string, error) {
	_, rest, ok := strings.Cut(serviceURL, schemeSeparator)
	if !ok {
		return "", fmt.Errorf("url %q has no scheme separator", serviceURL)
	}
	hostport, _, _ := strings.Cut(rest, "/")
	host, _, _ := strings.Cut(hostport, ":")
	if host == "" {
		return "", fmt.Errorf("url %q has an empty host", serviceURL)
	}
	return host, nil
}

// ResolveHosts fills in placeholder URLs, drops records whose URL does not
// look like an http(s) URL, and derives each remaining record's host.
func ResolveHosts(log *slog.Logger, records []Record) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if r.URL == "" {
			r.URL = PlaceholderURL
		}
		if !strings.Contains(r.URL, "http") {
			log.Debug("Dropping indexer with invalid url", "id", r.ID, "url", r.URL)
			continue
		}
		host, err := ExtractHost(r.URL)
		if err != nil {
			log.Debug("Dropping indexer with unparseable url", "id", r.ID, "url", r.URL, "error", err)
			continue
		}
		r.Host = host
		out = append(out, r)
	}
	return out
}
