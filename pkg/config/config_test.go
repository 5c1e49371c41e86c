package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, 10, c.Sim.MaxVehicles)
	assert.Equal(t, 10, c.Sim.TickMS)
	assert.Equal(t, 33, c.Sim.RenderMS)
	assert.Equal(t, ":8090", c.API.Listen)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ridesim.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
seed: 7
map:
  path: city.bin
  largest_component: true
sim:
  max_vehicles: 25
  max_passengers: 40
  tick_ms: 10
  render_ms: 33
  generate_ms: 50
  match_ms: 50
  failure_limit: 5
api:
  listen: ":9000"
`), 0o644))

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, uint64(7), c.Seed)
	assert.Equal(t, "city.bin", c.Map.Path)
	assert.True(t, c.Map.LargestComponent)
	assert.Equal(t, 25, c.Sim.MaxVehicles)
	assert.Equal(t, 5, c.Sim.FailureLimit)
	assert.Equal(t, ":9000", c.API.Listen)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(path, []byte("velocity: 11\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("RIDESIM_MAX_VEHICLES", "3")
	t.Setenv("RIDESIM_LISTEN", ":7070")
	t.Setenv("RIDESIM_DISTANCE_PER_CYCLE", "0.0002")

	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 3, c.Sim.MaxVehicles)
	assert.Equal(t, ":7070", c.API.Listen)
	assert.Equal(t, 0.0002, c.Sim.DistancePerCycle)
}

func TestEnvOverrideBadValue(t *testing.T) {
	t.Setenv("RIDESIM_TICK_MS", "fast")

	_, err := Load("")
	assert.Error(t, err)
}

func TestIntervals(t *testing.T) {
	s := Default().Sim
	assert.Equal(t, "10ms", s.TickInterval().String())
	assert.Equal(t, "33ms", s.RenderInterval().String())
	assert.Equal(t, "50ms", s.GenerateInterval().String())
	assert.Equal(t, "50ms", s.MatchInterval().String())
}
