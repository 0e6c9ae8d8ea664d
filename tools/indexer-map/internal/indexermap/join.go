package indexermap

import (
	"strings"

	"github.com/thegraph-community/indexer-maps/tools/indexer-map/internal/leaderboard"
	"github.com/thegraph-community/indexer-maps/tools/indexer-map/internal/network"
)

// ScoreMap maps lower-cased indexer addresses on one network to their score
// in one category. Participants without an address on the network, or
// without a score in the category, are left out.
func ScoreMap(category, addressField string, participants []leaderboard.Participant) map[string]float64 {
	scores := make(map[string]float64)
	for _, p := range participants {
		addr, ok := p.Address(addressField)
		if !ok {
			continue
		}
		score, ok := p.Score(category)
		if !ok {
			continue
		}
		scores[addr] = score
	}
	return scores
}

// Join attaches each indexer's score and drops indexers that have none.
// Indexer ids are lower-cased before lookup so mixed-case ids still match.
func Join(category, addressField string, participants []leaderboard.Participant, indexers []network.Indexer) []Record {
	scores := ScoreMap(category, addressField, participants)

	var records []Record
	for _, idx := range indexers {
		score, ok := scores[strings.ToLower(idx.ID)]
		if !ok {
			continue
		}
		records = append(records, Record{
			ID:      idx.ID,
			GeoHash: idx.GeoHash,
			URL:     idx.URL,
			Score:   score,
		})
	}
	return records
}
