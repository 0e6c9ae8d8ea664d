package render

import (
	"bytes"
	"embed"
	"fmt"
	"html"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	DefaultZoom   = 2
	DefaultRadius = 4

	IndexFileName = "index.html"
	legendCaption = "Indexer Score"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// Marker is one indexer drawn on a map.
type Marker struct {
	ID        string
	Score     float64
	Host      string
	Latitude  float64
	Longitude float64
}

// Map is the input for one (network, score category) map.
type Map struct {
	Network  string
	Category string
	Markers  []Marker
}

// Artifact records a written map file for the index page.
type Artifact struct {
	Path     string
	Category string
	Network  string
}

func (a Artifact) Label() string {
	return a.Category + " - " + a.Network
}

func FileName(category, network string) string {
	return fmt.Sprintf("indexer_map_%s_%s.html", category, network)
}

// MeanCenter returns the arithmetic mean position of the markers. ok is false
// when there are none.
func MeanCenter(markers []Marker) (lat, lng float64, ok bool) {
	if len(markers) == 0 {
		return 0, 0, false
	}
	for _, m := range markers {
		lat += m.Latitude
		lng += m.Longitude
	}
	n := float64(len(markers))
	return lat / n, lng / n, true
}

type Renderer struct {
	log       *slog.Logger
	outputDir string
	clock     clockwork.Clock
}

// NewRenderer creates outputDir if it does not exist.
func NewRenderer(log *slog.Logger, outputDir string, clock clockwork.Clock) (*Renderer, error) {
	if outputDir == "" {
		return nil, fmt.Errorf("output dir is required")
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir %s: %w", outputDir, err)
	}
	return &Renderer{log: log, outputDir: outputDir, clock: clock}, nil
}

type markerView struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Color   string  `json:"color"`
	Tooltip string  `json:"tooltip"`
}

type legendStop struct {
	Color  string  `json:"color"`
	Offset float64 `json:"offset"`
	Label  string  `json:"label"`
}

type legendView struct {
	Caption string       `json:"caption"`
	Stops   []legendStop `json:"stops"`
}

type mapView struct {
	Network   string
	Category  string
	CenterLat float64
	CenterLng float64
	Zoom      int
	Radius    int
	Markers   []markerView
	Legend    legendView
}

// WriteMap renders m to <outputDir>/indexer_map_<category>_<network>.html.
func (r *Renderer) WriteMap(m Map) (Artifact, error) {
	lat, lng, ok := MeanCenter(m.Markers)
	if !ok {
		return Artifact{}, fmt.Errorf("map %s/%s has no markers", m.Network, m.Category)
	}

	scores := make([]float64, len(m.Markers))
	for i, mk := range m.Markers {
		scores[i] = mk.Score
	}
	scale := NewColorScale(scores, ScoreThreshold)

	view := mapView{
		Network:   m.Network,
		Category:  m.Category,
		CenterLat: lat,
		CenterLng: lng,
		Zoom:      DefaultZoom,
		Radius:    DefaultRadius,
		Markers:   make([]markerView, len(m.Markers)),
		Legend:    newLegend(scale),
	}
	for i, mk := range m.Markers {
		view.Markers[i] = markerView{
			Lat:     mk.Latitude,
			Lng:     mk.Longitude,
			Color:   scale.Hex(mk.Score),
			Tooltip: tooltip(mk),
		}
	}

	path := filepath.Join(r.outputDir, FileName(m.Category, m.Network))
	if err := r.execute("map.html.tmpl", path, view); err != nil {
		return Artifact{}, err
	}
	r.log.Info("Wrote map", "path", path, "markers", len(m.Markers))

	return Artifact{Path: path, Category: m.Category, Network: m.Network}, nil
}

type indexLink struct {
	Href  string
	Label string
}

// WriteIndex overwrites <outputDir>/index.html with one link per artifact.
func (r *Renderer) WriteIndex(artifacts []Artifact) (string, error) {
	links := make([]indexLink, len(artifacts))
	for i, a := range artifacts {
		links[i] = indexLink{Href: filepath.Base(a.Path), Label: a.Label()}
	}

	path := filepath.Join(r.outputDir, IndexFileName)
	err := r.execute("index.html.tmpl", path, struct {
		Links       []indexLink
		GeneratedAt time.Time
	}{
		Links:       links,
		GeneratedAt: r.clock.Now().UTC(),
	})
	if err != nil {
		return "", err
	}
	r.log.Info("Wrote index", "path", path, "maps", len(artifacts))
	return path, nil
}

func (r *Renderer) execute(name, path string, data any) error {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func newLegend(scale ColorScale) legendView {
	offset := func(v float64) float64 {
		if scale.Max == scale.Min {
			return 0
		}
		return 100 * (v - scale.Min) / (scale.Max - scale.Min)
	}
	return legendView{
		Caption: legendCaption,
		Stops: []legendStop{
			{Color: Hex(Red), Offset: 0, Label: formatScore(scale.Min)},
			{Color: Hex(Yellow), Offset: offset(scale.Mid), Label: formatScore(scale.Mid)},
			{Color: Hex(Green), Offset: 100, Label: formatScore(scale.Max)},
		},
	}
}

// tooltip is handed to Leaflet, which inserts it as HTML, so ids and hosts
// taken from the registry are escaped here.
func tooltip(mk Marker) string {
	return html.EscapeString(fmt.Sprintf("%s - %s - %s", mk.ID, formatScore(mk.Score), mk.Host))
}

func formatScore(s float64) string {
	return strconv.FormatFloat(s, 'f', -1, 64)
}
