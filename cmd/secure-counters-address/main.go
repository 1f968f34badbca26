// Command secure-counters-address writes the configuration line placing the
// secure counters right after the immutable bootloader's provisioning data.
package main

import (
	"github.com/spf13/cobra"

	"github.com/moffa90/go-seccnt/internal/cliutil"
	"github.com/moffa90/go-seccnt/ihex"
	"github.com/moffa90/go-seccnt/provision"
)

type rootFlags struct {
	hexFile    string
	outputFile string
}

func newRootCmd() *cobra.Command {
	var flags rootFlags

	cmd := &cobra.Command{
		Use:   "secure-counters-address",
		Short: "Compute the secure counter address from a provisioning HEX file",
		Long: `Compute the address following the highest used byte of the provisioning
HEX file and write it as ` + provision.AddressConfigKey + `=0x<addr>.`,
		Example: `  secure-counters-address --hex-file provision.hex --output-file address.conf`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := provision.New(ihex.GoHex{}, provision.WithLogger(cliutil.KlogLogger{}))
			_, err := w.GenerateAddressConfig(flags.hexFile, flags.outputFile)
			return err
		},
	}

	cmd.Flags().StringVar(&flags.hexFile, "hex-file", "",
		"Provisioning HEX file of the immutable bootloader")
	cmd.Flags().StringVar(&flags.outputFile, "output-file", "",
		"File to write the address configuration to")
	_ = cmd.MarkFlagRequired("hex-file")
	_ = cmd.MarkFlagRequired("output-file")

	cliutil.AddKlogFlags(cmd.PersistentFlags())
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		cliutil.Exit(err, "secure counter address generation failed")
	}
}
