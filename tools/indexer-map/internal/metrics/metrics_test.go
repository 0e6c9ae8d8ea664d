package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIndexerMap_Metrics_WriteTextfile(t *testing.T) {
	t.Parallel()

	BuildInfo.WithLabelValues("v1", "abc", "today").Set(1)
	MapsRenderedTotal.Inc()

	path := filepath.Join(t.TempDir(), "indexer_map.prom")
	require.NoError(t, WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `indexer_map_build_info{commit="abc",date="today",version="v1"} 1`)
	require.Contains(t, string(data), "indexer_map_maps_rendered_total")
}
