package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIndexerMap_Main_StringSetting(t *testing.T) {
	t.Setenv("OUTPUT_DIR", "from-env")

	require.Equal(t, "from-flag", stringSetting("from-flag", "OUTPUT_DIR", "default"))
	require.Equal(t, "from-env", stringSetting("", "OUTPUT_DIR", "default"))

	t.Setenv("OUTPUT_DIR", "")
	require.Equal(t, "default", stringSetting("", "OUTPUT_DIR", "default"))
}

func TestIndexerMap_Main_FormatRFC3339Millis(t *testing.T) {
	t.Parallel()

	ts := time.Date(2023, 5, 17, 12, 30, 1, 234_567_890, time.FixedZone("X", 3600))
	require.Equal(t, "2023-05-17T11:30:01.234Z", formatRFC3339Millis(ts))
}
