package indexermap

// Record is one indexer joined with its score for a single (network, score
// category) pass. Pipeline stages return new slices instead of mutating their input.
type Record struct {
	ID      string
	GeoHash string
	URL     string
	Score   float64

	Host      string
	IP        string
	City      string
	Latitude  float64
	Longitude float64
	Org       string

	SelfReportLatitude  float64
	SelfReportLongitude float64
}
