package leaderboard

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"github.com/thegraph-community/indexer-maps/tools/indexer-map/internal/transport"
)

const operation = "fetch_leaderboard"

// Participant is one program entrant. Addresses are keyed by leaderboard field
// name (for example indexerGoerliAddress) and scores by score category.
type Participant struct {
	Addresses map[string]string
	Scores    map[string]float64
}

// Address returns the lower-cased address stored under field, or false when it is absent.
func (p Participant) Address(field string) (string, bool) {
	addr, ok := p.Addresses[field]
	if !ok || addr == "" {
		return "", false
	}
	return strings.ToLower(addr), true
}

func (p Participant) Score(category string) (float64, bool) {
	s, ok := p.Scores[category]
	return s, ok
}

// UnmarshalJSON keeps string fields as addresses and numeric fields as scores.
// Nulls and other value types are ignored.
func (p *Participant) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	p.Addresses = make(map[string]string)
	p.Scores = make(map[string]float64)
	for key, raw := range fields {
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
			continue
		}
		switch raw[0] {
		case '"':
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				return fmt.Errorf("field %q: %w", key, err)
			}
			p.Addresses[key] = s
		case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
			var f float64
			if err := json.Unmarshal(raw, &f); err != nil {
				return fmt.Errorf("field %q: %w", key, err)
			}
			p.Scores[key] = f
		}
	}
	return nil
}

type document struct {
	PageProps *struct {
		Participants *[]Participant `json:"participants"`
	} `json:"pageProps"`
}

type Client struct {
	URL        string
	HTTPClient transport.HTTPClient
	Retry      transport.RetryPolicy
	log        *slog.Logger
}

func NewClient(log *slog.Logger, url string, httpClient transport.HTTPClient) *Client {
	return &Client{
		URL:        url,
		HTTPClient: httpClient,
		log:        log,
	}
}

// Fetch downloads the leaderboard and returns its participants. A document
// without pageProps.participants is a shape error.
func (c *Client) Fetch(ctx context.Context) ([]Participant, error) {
	if c.URL == "" {
		return nil, transport.NewError(transport.ErrorKindConfig, operation, "leaderboard url is empty", nil)
	}

	var doc document
	err := transport.DoJSON(ctx, c.log, c.HTTPClient, c.Retry, transport.Request{
		Operation: operation,
		Method:    http.MethodGet,
		URL:       c.URL,
	}, &doc)
	if err != nil {
		return nil, err
	}

	if doc.PageProps == nil {
		return nil, transport.NewShapeError(operation, "missing pageProps", nil)
	}
	if doc.PageProps.Participants == nil {
		return nil, transport.NewShapeError(operation, "missing pageProps.participants", nil)
	}

	participants := *doc.PageProps.Participants
	c.log.Info("Fetched leaderboard", "url", c.URL, "participants", len(participants))
	return participants, nil
}
