package indexermap

import (
	"testing"

	"github.com/mmcloughlin/geohash"
	"github.com/stretchr/testify/require"
)

func TestIndexerMap_DecodeGeohash_RoundTrip(t *testing.T) {
	t.Parallel()

	points := []struct{ lat, lng float64 }{
		{45.4215, -75.6972},
		{-33.8688, 151.2093},
		{51.5074, -0.1278},
		{0, 0},
	}

	for _, p := range points {
		for _, chars := range []uint{5, 9, 12} {
			hash := geohash.EncodeWithPrecision(p.lat, p.lng, chars)
			box := geohash.BoundingBox(hash)

			lat, lng := DecodeGeohash(hash)
			require.GreaterOrEqual(t, lat, box.MinLat)
			require.LessOrEqual(t, lat, box.MaxLat)
			require.GreaterOrEqual(t, lng, box.MinLng)
			require.LessOrEqual(t, lng, box.MaxLng)
			require.InDelta(t, p.lat, lat, box.MaxLat-box.MinLat)
			require.InDelta(t, p.lng, lng, box.MaxLng-box.MinLng)
		}
	}
}

func TestIndexerMap_DecodeGeohash_Known(t *testing.T) {
	t.Parallel()

	lat, lng := DecodeGeohash("u4pruydqqvj")
	require.InDelta(t, 57.64911, lat, 1e-4)
	require.InDelta(t, 10.40744, lng, 1e-4)
}

func TestIndexerMap_DecodeGeohash_Invalid(t *testing.T) {
	t.Parallel()

	for _, hash := range []string{"", "not a hash", "u4pru!", "aaaa", "ilo"} {
		lat, lng := DecodeGeohash(hash)
		require.Zero(t, lat, hash)
		require.Zero(t, lng, hash)
	}
}

func TestIndexerMap_DecodeSelfReports(t *testing.T) {
	t.Parallel()

	in := []Record{{ID: "a", GeoHash: "u4pruydqqvj"}, {ID: "b"}}
	got := DecodeSelfReports(in)

	require.InDelta(t, 57.64911, got[0].SelfReportLatitude, 1e-4)
	require.InDelta(t, 10.40744, got[0].SelfReportLongitude, 1e-4)
	require.Zero(t, got[1].SelfReportLatitude)
	require.Zero(t, got[1].SelfReportLongitude)
	require.Zero(t, in[0].SelfReportLatitude)
}
