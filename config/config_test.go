package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaults_AreValid(t *testing.T) {
	require.NoError(t, Defaults().Validate())
}

func TestLoad_MissingPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Defaults(), cfg)

	cfg, err = Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	require.Equal(t, Defaults(), cfg)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	doc := `
test: random
ops: 5000
min_order: 6
max_order: 18
format: json
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, WorkloadRandom, cfg.Test)
	require.Equal(t, 5000, cfg.Ops)
	require.Equal(t, 6, cfg.MinOrder)
	require.Equal(t, 18, cfg.MaxOrder)
	require.Equal(t, FormatJSON, cfg.Format)
	require.Equal(t, Defaults().BlockSize, cfg.BlockSize)
}

func TestLoad_MalformedYAMLIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("test: [unterminated"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestValidate_RejectsBadFields(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
	}{
		{"bad test kind", func(c *Config) { c.Test = "bogus" }},
		{"bad format", func(c *Config) { c.Format = "xml" }},
		{"min order zero", func(c *Config) { c.MinOrder = 0 }},
		{"max order not greater", func(c *Config) { c.MaxOrder = c.MinOrder }},
		{"max order too large", func(c *Config) { c.MaxOrder = 31 }},
		{"block size range inverted", func(c *Config) { c.MaxBlockSize = c.MinBlockSize - 1 }},
		{"negative ops", func(c *Config) { c.Ops = -1 }},
		{"zero threads", func(c *Config) { c.Threads = 0 }},
		{"negative duration", func(c *Config) { c.DurationSecs = -1 }},
		{"non power of two alignment", func(c *Config) { c.Alignment = 3 }},
		{"empty out", func(c *Config) { c.Out = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Defaults()
			tc.mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}
