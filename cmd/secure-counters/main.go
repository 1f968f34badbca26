// Command secure-counters generates the HEX file holding the secure
// monotonic counter collection, either at a fixed address or appended to
// the immutable bootloader's provisioning image.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/moffa90/go-seccnt/internal/cliutil"
	"github.com/moffa90/go-seccnt/ihex"
	"github.com/moffa90/go-seccnt/provision"
)

type rootFlags struct {
	configFile     string
	address        cliutil.HexUint64
	output         string
	maxSize        cliutil.HexUint64
	numCounters    int
	counterSlots   int
	provisionHex   string
	provisionSlots int
	fixedSlotCount bool
}

// flagsRequiredWithoutConfig must be given when no --config file is used.
var flagsRequiredWithoutConfig = []string{
	"secure-cnt-addr",
	"output",
	"mcuboot-num-counters",
	"mcuboot-counter-slots",
}

func newRootCmd() *cobra.Command {
	flags := rootFlags{
		maxSize:        provision.DefaultMaxSize,
		fixedSlotCount: true,
	}

	cmd := &cobra.Command{
		Use:   "secure-counters",
		Short: "Generate secure monotonic counter HEX file",
		Long: `Generate a HEX file holding the secure monotonic counter collection.

Without --b0-provision-hex the counters are placed at --secure-cnt-addr.
With it, a provision counter group is added and the counters are merged
right after the provisioning data.`,
		Example: `  # Standalone counters
  secure-counters --secure-cnt-addr 0x1000 -o counters.hex \
    --mcuboot-num-counters 1 --mcuboot-counter-slots 2

  # Counters merged with the provisioning image
  secure-counters --secure-cnt-addr 0x0 -o merged.hex \
    --mcuboot-num-counters 1 --mcuboot-counter-slots 2 \
    --b0-provision-hex provision.hex`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.config(cmd)
			if err != nil {
				return err
			}

			w := provision.New(ihex.GoHex{}, provision.WithLogger(cliutil.KlogLogger{}))
			result, err := w.Generate(cfg)
			if err != nil {
				return err
			}

			for _, n := range result.Notices {
				fmt.Fprintln(cmd.OutOrStdout(), n.String())
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.configFile, "config", "",
		"YAML file with the generation settings; flags given explicitly override it")
	f.Var(&flags.address, "secure-cnt-addr",
		"Address at which to place the secure counters in flash")
	f.StringVarP(&flags.output, "output", "o", "",
		"Output file name")
	f.Var(&flags.maxSize, "max-size",
		"Maximum number of bytes allowed for the secure counters and provision data")
	f.IntVar(&flags.numCounters, "mcuboot-num-counters", 0,
		"Number of bootloader monotonic counters")
	f.IntVar(&flags.counterSlots, "mcuboot-counter-slots", 0,
		"Number of slots per bootloader counter")
	f.StringVar(&flags.provisionHex, "b0-provision-hex", "",
		"Provisioning HEX file of the immutable bootloader to merge the counters with")
	f.IntVar(&flags.provisionSlots, "b0-provision-counter-slots", 0,
		"Number of slots for the immutable bootloader's counter")
	f.BoolVar(&flags.fixedSlotCount, "fixed-slot-count", true,
		"Emit every counter with 2 slots regardless of the requested slot counts")

	cliutil.AddKlogFlags(cmd.PersistentFlags())
	return cmd
}

// config builds the generation settings from the optional config file and
// the flags set on the command line.
func (r *rootFlags) config(cmd *cobra.Command) (provision.Config, error) {
	cfg := provision.DefaultConfig()
	f := cmd.Flags()

	if r.configFile != "" {
		if err := provision.LoadConfigFile(r.configFile, &cfg); err != nil {
			return cfg, err
		}
	} else if err := cliutil.RequireFlags(f, flagsRequiredWithoutConfig...); err != nil {
		return cfg, err
	}

	if f.Changed("secure-cnt-addr") {
		cfg.SecureCounterAddress = uint64(r.address)
	}
	if f.Changed("output") {
		cfg.Output = r.output
	}
	if f.Changed("max-size") {
		cfg.MaxSize = uint64(r.maxSize)
	}
	if f.Changed("mcuboot-num-counters") {
		cfg.NumCounters = r.numCounters
	}
	if f.Changed("mcuboot-counter-slots") {
		cfg.CounterSlots = r.counterSlots
	}
	if f.Changed("b0-provision-hex") {
		cfg.ProvisionHex = r.provisionHex
	}
	if f.Changed("b0-provision-counter-slots") {
		slots := r.provisionSlots
		cfg.ProvisionSlots = &slots
	}
	if f.Changed("fixed-slot-count") {
		cfg.FixedSlotCount = r.fixedSlotCount
	}

	return cfg, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		cliutil.Exit(err, "secure counter generation failed")
	}
}
