package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvBackend, EnvStdIOLog, EnvFBDevice, EnvOutput, EnvFrames, EnvSize, EnvListen} {
		t.Setenv(k, "")
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestFromEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvBackend, " GIF ")
	t.Setenv(EnvOutput, "/tmp/out.gif")
	t.Setenv(EnvFrames, "12")
	t.Setenv(EnvSize, "140x100")
	t.Setenv(EnvStdIOLog, "/tmp/stdio.log")
	t.Setenv(EnvListen, "127.0.0.1:0")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, BackendGIF, cfg.Backend)
	assert.Equal(t, "/tmp/out.gif", cfg.Output)
	assert.Equal(t, 12, cfg.Frames)
	assert.Equal(t, 140, cfg.Width)
	assert.Equal(t, 100, cfg.Height)
	assert.Equal(t, "/tmp/stdio.log", cfg.StdIOLog)
	assert.Equal(t, "127.0.0.1:0", cfg.PreviewAddr)
	assert.NoError(t, cfg.Validate())
}

func TestFromEnvErrors(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvFrames, "many")
	_, err := FromEnv()
	assert.Error(t, err)

	clearEnv(t)
	t.Setenv(EnvSize, "wide")
	_, err = FromEnv()
	assert.Error(t, err)
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		in      string
		w, h    int
		wantErr bool
	}{
		{"140x100", 140, 100, false},
		{" 1920X1080 ", 1920, 1080, false},
		{"140", 0, 0, true},
		{"ax100", 0, 0, true},
		{"140xb", 0, 0, true},
		{"0x100", 0, 0, true},
		{"140x-1", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			w, h, err := ParseSize(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.w, w)
			assert.Equal(t, tt.h, h)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"terminal default", func(c *Config) {}, false},
		{"unknown backend", func(c *Config) { c.Backend = "x11" }, true},
		{"fb without device", func(c *Config) { c.Backend = BackendFramebuffer; c.FBDevice = "" }, true},
		{"fb with preview", func(c *Config) { c.Backend = BackendFramebuffer; c.PreviewAddr = ":8080" }, false},
		{"gif without output", func(c *Config) { c.Backend = BackendGIF; c.Output = "" }, true},
		{"gif without frames", func(c *Config) { c.Backend = BackendGIF; c.Frames = 0 }, true},
		{"gif without size", func(c *Config) { c.Backend = BackendGIF; c.Width = 0 }, true},
		{"terminal with preview", func(c *Config) { c.PreviewAddr = ":8080" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if tt.wantErr {
				assert.Error(t, cfg.Validate())
			} else {
				assert.NoError(t, cfg.Validate())
			}
		})
	}
}
