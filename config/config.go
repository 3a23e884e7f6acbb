// Package config loads the benchmark harness's typed configuration
// document and merges it with command-line overrides, following the
// precedence rule CLI > config file > built-in defaults.
package config

import (
	"os"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// WorkloadKind names one of the workload generators that Harness.Run in
// package bench dispatches to.
type WorkloadKind string

const (
	WorkloadSequential WorkloadKind = "sequential"
	WorkloadRandom     WorkloadKind = "random"
	WorkloadMixed      WorkloadKind = "mixed"
	WorkloadStress     WorkloadKind = "stress"
)

// OutputFormat selects the telemetry sink's on-disk encoding.
type OutputFormat string

const (
	FormatCSV  OutputFormat = "csv"
	FormatJSON OutputFormat = "json"
)

// Config is the typed configuration document for the benchmark harness.
// Every field may be set from a YAML file, then overridden by an
// explicitly-passed CLI flag of the same name.
type Config struct {
	Test          WorkloadKind `yaml:"test"`
	Ops           int          `yaml:"ops"`
	BlockSize     int          `yaml:"block_size"`
	MinBlockSize  int          `yaml:"min_block_size"`
	MaxBlockSize  int          `yaml:"max_block_size"`
	MinOrder      int          `yaml:"min_order"`
	MaxOrder      int          `yaml:"max_order"`
	Alignment     int          `yaml:"alignment"`
	Threads       int          `yaml:"threads"`
	DurationSecs  float64      `yaml:"duration"`
	Seed          int64        `yaml:"seed"`
	Out           string       `yaml:"out"`
	Format        OutputFormat `yaml:"format"`
}

// Defaults returns the built-in defaults, the lowest-precedence layer.
func Defaults() Config {
	return Config{
		Test:         WorkloadSequential,
		Ops:          100000,
		BlockSize:    64,
		MinBlockSize: 32,
		MaxBlockSize: 512,
		MinOrder:     5,
		MaxOrder:     20,
		Alignment:    8,
		Threads:      1,
		DurationSecs: 10.0,
		Seed:         1,
		Out:          "benchmark_data.csv",
		Format:       FormatCSV,
	}
}

// Load reads a YAML configuration document from path and merges it over
// the built-in defaults. A missing path is not an error: it simply leaves
// the defaults untouched, consistent with the harness being runnable with
// no config file at all.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, errors.Wrapf(err, "config: reading %s", path)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "config: parsing %s", path)
	}
	return cfg, nil
}

// Validate checks that the merged configuration is internally consistent,
// surfacing the same class of error the original system's ConfigManager
// raised from its validate() method.
func (c Config) Validate() error {
	switch c.Test {
	case WorkloadSequential, WorkloadRandom, WorkloadMixed, WorkloadStress:
	default:
		return errors.Newf("config: invalid test type %q", c.Test)
	}
	switch c.Format {
	case FormatCSV, FormatJSON:
	default:
		return errors.Newf("config: invalid format %q", c.Format)
	}
	if c.MinOrder <= 0 || c.MaxOrder <= c.MinOrder || c.MaxOrder > 30 {
		return errors.Newf("config: invalid min-order/max-order (%d, %d)", c.MinOrder, c.MaxOrder)
	}
	if c.MinBlockSize <= 0 || c.MaxBlockSize < c.MinBlockSize {
		return errors.Newf("config: invalid min-block-size/max-block-size (%d, %d)", c.MinBlockSize, c.MaxBlockSize)
	}
	if c.Ops < 0 {
		return errors.Newf("config: ops must be >= 0, got %d", c.Ops)
	}
	if c.Threads <= 0 {
		return errors.Newf("config: threads must be > 0, got %d", c.Threads)
	}
	if c.DurationSecs < 0 {
		return errors.Newf("config: duration must be >= 0, got %f", c.DurationSecs)
	}
	if c.Alignment <= 0 || c.Alignment&(c.Alignment-1) != 0 {
		return errors.Newf("config: alignment must be a power of two, got %d", c.Alignment)
	}
	if c.Out == "" {
		return errors.New("config: out path must not be empty")
	}
	return nil
}
