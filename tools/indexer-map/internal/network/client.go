package network

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/thegraph-community/indexer-maps/tools/indexer-map/internal/metrics"
	"github.com/thegraph-community/indexer-maps/tools/indexer-map/internal/transport"
)

const (
	DefaultPageSize = 100

	// Ids compare greater than this cursor, so the first page starts at the beginning.
	initialCursor = "0"

	operation = "fetch_indexers"
)

const indexersQuery = `query Indexers($first: Int!, $after: String) {
  indexers(first: $first, where: { id_gt: $after }) {
    id
    geoHash
    url
  }
}`

// Indexer is a registered indexer as reported by the network subgraph. GeoHash
// and URL are empty when the indexer did not publish them.
type Indexer struct {
	ID      string `json:"id"`
	GeoHash string `json:"geoHash"`
	URL     string `json:"url"`
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type indexersResponse struct {
	Data *struct {
		Indexers *[]Indexer `json:"indexers"`
	} `json:"data"`
	Errors []graphQLError `json:"errors"`
}

type Client struct {
	HTTPClient transport.HTTPClient
	PageSize   int
	Retry      transport.RetryPolicy
	log        *slog.Logger
}

func NewClient(log *slog.Logger, httpClient transport.HTTPClient, pageSize int) *Client {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Client{
		HTTPClient: httpClient,
		PageSize:   pageSize,
		log:        log,
	}
}

// FetchIndexers pages through every indexer registered at endpoint using
// id_gt cursors. It stops at the first empty page.
func (c *Client) FetchIndexers(ctx context.Context, networkName, endpoint string) ([]Indexer, error) {
	var (
		indexers []Indexer
		cursor   = initialCursor
	)

	for {
		page, err := c.fetchPage(ctx, endpoint, cursor)
		if err != nil {
			return nil, fmt.Errorf("network %s: %w", networkName, err)
		}
		metrics.GraphQLPagesTotal.WithLabelValues(networkName).Inc()
		if len(page) == 0 {
			break
		}

		// Ordering is the subgraph's, so only a repeated cursor is rejected.
		next := page[len(page)-1].ID
		if next == cursor {
			return nil, fmt.Errorf("network %s: %w", networkName, transport.NewShapeError(operation,
				fmt.Sprintf("cursor did not advance past %q", cursor), nil))
		}

		indexers = append(indexers, page...)
		cursor = next
		c.log.Info("Processed indexers", "network", networkName, "count", len(indexers))
	}

	metrics.IndexersFetchedTotal.WithLabelValues(networkName).Add(float64(len(indexers)))
	return indexers, nil
}

func (c *Client) fetchPage(ctx context.Context, endpoint, cursor string) ([]Indexer, error) {
	var resp indexersResponse
	err := transport.DoJSON(ctx, c.log, c.HTTPClient, c.Retry, transport.Request{
		Operation: operation,
		Method:    http.MethodPost,
		URL:       endpoint,
		Body: graphQLRequest{
			Query: indexersQuery,
			Variables: map[string]any{
				"first": c.PageSize,
				"after": cursor,
			},
		},
	}, &resp)
	if err != nil {
		return nil, err
	}

	if len(resp.Errors) > 0 {
		msgs := make([]string, 0, len(resp.Errors))
		for _, e := range resp.Errors {
			msgs = append(msgs, e.Message)
		}
		return nil, transport.NewShapeError(operation, "graphql errors: "+strings.Join(msgs, "; "), nil)
	}
	if resp.Data == nil || resp.Data.Indexers == nil {
		return nil, transport.NewShapeError(operation, "missing data.indexers", nil)
	}
	return *resp.Data.Indexers, nil
}
