package overlay

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overlay.yaml")
	data := `mode: inproc
namespace: vehicle-bus
delivery_bound: 512
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ModeInProc, cfg.Mode)
	assert.Equal(t, "vehicle-bus", cfg.Namespace)
	assert.Equal(t, 512, cfg.DeliveryBound)
	// Unset fields keep their defaults.
	assert.Equal(t, DefaultQueryableBound, cfg.QueryableBound)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadConfigMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mode: ["), 0o644))
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, ModeInProc, cfg.Mode)
	assert.Equal(t, DefaultNamespace, cfg.Namespace)
	assert.Equal(t, DefaultDeliveryBound, cfg.DeliveryBound)
	assert.Equal(t, DefaultQueryableBound, cfg.QueryableBound)
}
