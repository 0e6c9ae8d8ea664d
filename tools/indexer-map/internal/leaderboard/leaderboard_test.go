package leaderboard

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
	"github.com/thegraph-community/indexer-maps/tools/indexer-map/internal/transport"
)

const sampleLeaderboard = `{
  "pageProps": {
    "participants": [
      {
        "name": "alpha",
        "indexerGoerliAddress": "0xAAbb",
        "indexerMainnetAddress": null,
        "celoPhase1Score": 912.5,
        "gnosisPhase2Score": null,
        "rank": 3,
        "tags": ["x"]
      },
      {
        "indexerGoerliAddress": null,
        "indexerMainnetAddress": "0xCC",
        "gnosisPhase2Score": 1000
      }
    ]
  }
}`

func newServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestIndexerMap_Leaderboard_Fetch(t *testing.T) {
	t.Parallel()

	srv := newServer(t, http.StatusOK, sampleLeaderboard)
	c := NewClient(logger, srv.URL, srv.Client())

	participants, err := c.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, participants, 2)

	first := participants[0]
	addr, ok := first.Address("indexerGoerliAddress")
	require.True(t, ok)
	require.Equal(t, "0xaabb", addr)
	_, ok = first.Address("indexerMainnetAddress")
	require.False(t, ok)

	score, ok := first.Score("celoPhase1Score")
	require.True(t, ok)
	require.Equal(t, 912.5, score)
	_, ok = first.Score("gnosisPhase2Score")
	require.False(t, ok)
	require.Equal(t, "alpha", first.Addresses["name"])

	second := participants[1]
	addr, ok = second.Address("indexerMainnetAddress")
	require.True(t, ok)
	require.Equal(t, "0xcc", addr)
	score, ok = second.Score("gnosisPhase2Score")
	require.True(t, ok)
	require.Equal(t, 1000.0, score)
}

func TestIndexerMap_Leaderboard_Fetch_ShapeErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{name: "missing pageProps", body: `{"props":{}}`},
		{name: "missing participants", body: `{"pageProps":{"entries":[]}}`},
		{name: "participants not a list", body: `{"pageProps":{"participants":{"a":1}}}`},
		{name: "not json", body: `<!doctype html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := newServer(t, http.StatusOK, tt.body)
			_, err := NewClient(logger, srv.URL, srv.Client()).Fetch(context.Background())
			require.ErrorIs(t, err, transport.ErrUnexpectedShape)
		})
	}
}

func TestIndexerMap_Leaderboard_Fetch_EmptyParticipants(t *testing.T) {
	t.Parallel()

	srv := newServer(t, http.StatusOK, `{"pageProps":{"participants":[]}}`)
	participants, err := NewClient(logger, srv.URL, srv.Client()).Fetch(context.Background())
	require.NoError(t, err)
	require.Empty(t, participants)
}

func TestIndexerMap_Leaderboard_Fetch_StatusError(t *testing.T) {
	t.Parallel()

	srv := newServer(t, http.StatusNotFound, `{}`)
	_, err := NewClient(logger, srv.URL, srv.Client()).Fetch(context.Background())
	require.Error(t, err)
	require.Equal(t, transport.ErrorKindStatus, transport.KindOf(err))
}

func TestIndexerMap_Leaderboard_Fetch_EmptyURL(t *testing.T) {
	t.Parallel()

	_, err := NewClient(logger, "", http.DefaultClient).Fetch(context.Background())
	require.Equal(t, transport.ErrorKindConfig, transport.KindOf(err))
}

func TestIndexerMap_Leaderboard_Participant_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	var p Participant
	require.NoError(t, json.Unmarshal([]byte(`{"a":"0xAB","s":-1.5e2,"n":null,"b":true,"o":{}}`), &p))
	require.Equal(t, map[string]string{"a": "0xAB"}, p.Addresses)
	require.Equal(t, map[string]float64{"s": -150}, p.Scores)

	require.Error(t, json.Unmarshal([]byte(`[1,2]`), &p))
}
