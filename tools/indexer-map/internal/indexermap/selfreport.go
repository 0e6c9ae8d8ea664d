package indexermap

import (
	"github.com/mmcloughlin/geohash"
)

// DecodeGeohash returns the center of the geohash cell. Empty or malformed
// hashes decode to (0, 0).
func DecodeGeohash(hash string) (lat, lng float64) {
	if hash == "" {
		return 0, 0
	}
	if err := geohash.Validate(hash); err != nil {
		return 0, 0
	}
	return geohash.DecodeCenter(hash)
}

// DecodeSelfReports attaches the self-reported location decoded from each
// record's geohash. It never affects where a record is drawn.
func DecodeSelfReports(records []Record) []Record {
	out := make([]Record, len(records))
	for i, r := range records {
		r.SelfReportLatitude, r.SelfReportLongitude = DecodeGeohash(r.GeoHash)
		out[i] = r
	}
	return out
}
