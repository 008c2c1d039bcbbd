package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Resolve.Workers)
	assert.Equal(t, 8, cfg.Resolve.MaxVariants)
	assert.Equal(t, 3, cfg.Resolve.TopK)
	assert.Equal(t, "Aparecida de Goiânia", cfg.Resolve.ParcelCity)

	assert.Equal(t, 90, cfg.Classify.MinScore)
	assert.InDelta(t, 250, cfg.Classify.SpreadMeters, 0.01)

	assert.Equal(t, -1000, cfg.Score.NoCoordinate)
	assert.Equal(t, 250, cfg.Score.ParcelBlockMatch)

	assert.Equal(t, 2.0, cfg.Parcel.BufferMeters)
	assert.Equal(t, 12, cfg.Parcel.CacheH3Res)
	assert.Contains(t, cfg.Parcel.BlockAttrs, "num_qdr")
	assert.Equal(t, "0", cfg.Parcel.ArcGISLayer)
	assert.Contains(t, cfg.Parcel.ArcGISURL, "goiania")

	assert.Contains(t, cfg.Here.ReverseURL, "revgeocode")

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("STOPS_RESOLVE_WORKERS", "9")
	t.Setenv("STOPS_HERE_KEY", "test-key")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Resolve.Workers)
	assert.Equal(t, "test-key", cfg.Here.Key)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))
	require.Error(t, InitLogger(LogConfig{Level: "nope"}))
}
