package run

import (
	"fmt"

	"github.com/c2h5oh/datasize"
	"gopkg.in/yaml.v3"

	"github.com/relex/diag-tap/base"
	"github.com/relex/diag-tap/tap"
	"github.com/relex/diag-tap/util"
)

// Config defines the root of a diag-tap config file
type Config struct {
	Anchors AnchorsConfig `yaml:"anchors"`
	Host    HostConfig    `yaml:"host"`
	Tap     tap.Settings  `yaml:"tap"`
	Input   InputConfig   `yaml:"input"`
}

// AnchorsConfig defines the anchors section in config file
// The section is meant to provide anchors for other sections and doesn't need to be unmarshalled itself
type AnchorsConfig struct {
}

// HostConfig describes the host program whose diagnostics are replayed
type HostConfig struct {
	MinLevel  base.Severity `yaml:"minLevel"`  // minimum logging level of the host
	ProcessID int           `yaml:"processID"` // process id stamped on capture output, 0 = the replay process itself
}

// InputConfig bounds the recorded event files accepted for replay
type InputConfig struct {
	MaxRecordSize datasize.ByteSize `yaml:"maxRecordSize"` // upper bound for the total text of one recorded event
}

// defaultConfig returns the values in effect before a config file is applied
func defaultConfig() *Config {
	return &Config{
		Host: HostConfig{
			MinLevel:  base.Warning,
			ProcessID: 0,
		},
		Tap: tap.DefaultSettings(),
		Input: InputConfig{
			MaxRecordSize: 1 * datasize.MB,
		},
	}
}

// LoadConfigFile loads config from the path and verifies all sections
func LoadConfigFile(filepath string) (*Config, error) {
	cref := defaultConfig()
	if err := util.UnmarshalYamlFile(filepath, cref); err != nil {
		return nil, err
	}
	if err := cref.verify(); err != nil {
		return nil, err
	}
	return cref, nil
}

// LoadConfigString loads config from the given contents and verifies all sections, mainly for
// testing
func LoadConfigString(contents string) (*Config, error) {
	cref := defaultConfig()
	if err := util.UnmarshalYamlString(contents, cref); err != nil {
		return nil, err
	}
	if err := cref.verify(); err != nil {
		return nil, err
	}
	return cref, nil
}

func (cfg *Config) verify() error {
	if cfg.Host.ProcessID < 0 {
		return fmt.Errorf("host: processID cannot be negative: %d", cfg.Host.ProcessID)
	}
	if err := tap.VerifySettings(cfg.Tap, cfg.Host.MinLevel); err != nil {
		return fmt.Errorf("tap: %w", err)
	}
	if cfg.Input.MaxRecordSize == 0 {
		return fmt.Errorf("input: maxRecordSize must be positive")
	}
	return nil
}

// MarshalYAML provides custom marshalling for AnchorsConfig, whose contents are never kept
func (holder AnchorsConfig) MarshalYAML() (interface{}, error) {
	return []string(nil), nil
}

// UnmarshalYAML accepts and discards the anchors section; it exists only to host YAML anchors
// referenced from other sections
func (holder *AnchorsConfig) UnmarshalYAML(value *yaml.Node) error {
	return nil
}
