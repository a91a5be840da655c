package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_Defaults(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Resolve(Flags{InputDir: "frames", OutputPath: "out"}, "")

	assert.Equal(t, "frames", cfg.InputDir)
	assert.Equal(t, "out", cfg.OutputPath, "output path is used as given")
	assert.Equal(t, 24.0, cfg.SampleRate)
	assert.Equal(t, ".obj", cfg.Extension)
	assert.Equal(t, 256, cfg.PreviewSize)
	assert.Equal(t, 2, cfg.Supersample)
	assert.Equal(t, -30.0, cfg.PreviewYaw)
	assert.Equal(t, 20.0, cfg.PreviewPitch)
	assert.False(t, cfg.Prefetch)
	assert.NoError(t, cfg.Validate())
}

func TestLoadAndResolve_FlagsOverrideFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"input_dir": "seq",
		"output_path": "cache/anim.abc",
		"preview_path": "/abs/poster.webp",
		"sample_rate": 30,
		"extension": "OBJ",
		"prefetch": true,
		"preview_size": 128
	}`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	fps := 60.0
	cfg.Resolve(Flags{SampleRate: &fps}, dir)

	assert.Equal(t, filepath.Join(dir, "seq"), cfg.InputDir)
	assert.Equal(t, filepath.Join(dir, "cache", "anim.abc"), cfg.OutputPath)
	assert.Equal(t, "/abs/poster.webp", cfg.PreviewPath)
	assert.Equal(t, 60.0, cfg.SampleRate)
	assert.Equal(t, ".OBJ", cfg.Extension)
	assert.True(t, cfg.Prefetch)
	assert.Equal(t, 128, cfg.PreviewSize)
}

func TestResolve_ExplicitSampleRateIsValidated(t *testing.T) {
	t.Parallel()

	for _, rate := range []float64{-5, 0, math.NaN(), math.Inf(1)} {
		t.Run(fmt.Sprint(rate), func(t *testing.T) {
			t.Parallel()

			cfg := Default()
			r := rate
			cfg.Resolve(Flags{InputDir: "in", OutputPath: "out", SampleRate: &r}, "")

			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorContains(t, err, "sample rate must be positive")
		})
	}
}

func TestLoad_ZeroPreviewAnglesAreKept(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"preview_yaw": 0, "preview_pitch": 0}`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	cfg.Resolve(Flags{InputDir: "in", OutputPath: "out"}, dir)

	assert.Zero(t, cfg.PreviewYaw)
	assert.Zero(t, cfg.PreviewPitch)
	assert.Equal(t, DefaultSampleRate, cfg.SampleRate)
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, err := Load(filepath.Join(dir, "nope.json"))
	assert.ErrorContains(t, err, "config: read")

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"sample_rate": "fast"}`), 0644))
	_, err = Load(bad)
	assert.ErrorContains(t, err, "config: parse")
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cfg := Config{SampleRate: -1}
	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorContains(t, err, "input directory is required")
	assert.ErrorContains(t, err, "output path is required")
	assert.ErrorContains(t, err, "sample rate must be positive")
}
