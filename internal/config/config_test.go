package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadConfig(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() {
		initialized = false
		_ = os.Chdir(wd)
	})

	// first read creates the file with defaults and asks for an edit
	_, err = ReadConfig()
	require.Error(t, err)
	_, err = os.Stat("config.json")
	require.NoError(t, err)

	// second read parses the created file
	cfg, err := ReadConfig()
	require.NoError(t, err)
	assert.Equal(t, "aware-go-nan-manager", cfg.AppName)
	assert.Equal(t, "1s", cfg.Simulator.ResponseDelay)

	cached, err := GetConfig()
	require.NoError(t, err)
	assert.Equal(t, cfg, cached)
}
