package provision

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/moffa90/go-seccnt/counters"
)

// DefaultMaxSize is the default size of the provisioning area.
const DefaultMaxSize = 0x1000

// Config holds the settings of one generation run.
type Config struct {
	// SecureCounterAddress is where the counters are placed in standalone mode
	SecureCounterAddress uint64 `yaml:"secure_cnt_addr"`

	// Output is the path of the generated HEX file
	Output string `yaml:"output"`

	// MaxSize is the size of the provisioning area, including the merged
	// provision data
	MaxSize uint64 `yaml:"max_size"`

	// NumCounters is the number of bootloader monotonic counters
	NumCounters int `yaml:"mcuboot_num_counters"`

	// CounterSlots is the number of slots requested per bootloader counter
	CounterSlots int `yaml:"mcuboot_counter_slots"`

	// ProvisionHex is the immutable bootloader's provisioning image. When
	// set, a provision counter group is added and the counters are merged
	// right after this image.
	ProvisionHex string `yaml:"b0_provision_hex"`

	// ProvisionSlots is the number of slots requested for the provision
	// counter group (optional)
	ProvisionSlots *int `yaml:"b0_provision_counter_slots"`

	// FixedSlotCount emits every counter with counters.FixedSlotCount slots
	// instead of the requested counts
	FixedSlotCount bool `yaml:"fixed_slot_count"`
}

// DefaultConfig returns a Config with the default maximum size and the
// fixed slot count layout.
func DefaultConfig() Config {
	return Config{
		MaxSize:        DefaultMaxSize,
		FixedSlotCount: true,
	}
}

// Layout returns the counter layout described by the configuration.
func (c Config) Layout() counters.Layout {
	return counters.Layout{
		BootloaderCounters: c.NumCounters,
		BootloaderSlots:    c.CounterSlots,
		Provision:          c.ProvisionHex != "",
		ProvisionSlots:     c.ProvisionSlots,
		FixedSlotCount:     c.FixedSlotCount,
	}
}

// Validate checks the configuration, except Output which only Generate needs.
func (c Config) Validate() error {
	if c.NumCounters < 0 {
		return &ConfigError{Field: "mcuboot_num_counters", Err: fmt.Errorf("must not be negative, got %d", c.NumCounters)}
	}
	if c.CounterSlots < 0 {
		return &ConfigError{Field: "mcuboot_counter_slots", Err: fmt.Errorf("must not be negative, got %d", c.CounterSlots)}
	}
	if c.ProvisionSlots != nil && *c.ProvisionSlots < 0 {
		return &ConfigError{Field: "b0_provision_counter_slots", Err: fmt.Errorf("must not be negative, got %d", *c.ProvisionSlots)}
	}
	if err := c.Layout().Validate(); err != nil {
		return &ConfigError{Field: "counter layout", Err: err}
	}
	return nil
}

// LoadConfigFile reads YAML settings from path into cfg. Keys missing from
// the file leave the corresponding fields of cfg untouched; unknown keys are
// an error.
//
// Example file:
//
//	secure_cnt_addr: 0x1000
//	output: secure_counters.hex
//	mcuboot_num_counters: 2
//	mcuboot_counter_slots: 4
func LoadConfigFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("failed to parse config file %q: %w", path, err)
	}
	return nil
}
