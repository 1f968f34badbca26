// Command secure-counters-dump decodes a secure counter collection from a
// HEX file and prints its descriptors.
package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/moffa90/go-seccnt/counters"
	"github.com/moffa90/go-seccnt/internal/cliutil"
	"github.com/moffa90/go-seccnt/ihex"
	"github.com/moffa90/go-seccnt/provision"
)

type rootFlags struct {
	hexFile      string
	address      cliutil.HexUint64
	provisionHex string
}

func newRootCmd() *cobra.Command {
	var flags rootFlags

	cmd := &cobra.Command{
		Use:   "secure-counters-dump",
		Short: "Print the secure counter collection stored in a HEX file",
		Long: `Decode the secure counter collection stored in a HEX file.

The collection is read at --address, right after the data of
--b0-provision-hex, or at the lowest address of the file.`,
		Example: `  secure-counters-dump --hex-file counters.hex
  secure-counters-dump --hex-file merged.hex --b0-provision-hex provision.hex`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			codec := ihex.GoHex{}
			img, err := codec.Load(flags.hexFile)
			if err != nil {
				return err
			}

			addr := img.MinAddress()
			switch {
			case cmd.Flags().Changed("address"):
				addr = uint64(flags.address)
			case flags.provisionHex != "":
				b0, err := codec.Load(flags.provisionHex)
				if err != nil {
					return err
				}
				addr = provision.ResolveAddress(b0)
			}

			data, ok := img.Contiguous(addr)
			if !ok {
				return fmt.Errorf("no data at 0x%x in %s", addr, flags.hexFile)
			}

			c, n, err := counters.DecodePrefix(data)
			if err != nil {
				return fmt.Errorf("decode counters at 0x%x: %w", addr, err)
			}
			klog.V(cliutil.DebugLevel).InfoS("decoded counter collection",
				"address", fmt.Sprintf("0x%x", addr), "size", n, "descriptors", c.Len())

			fmt.Fprintf(cmd.OutOrStdout(), "counter collection at 0x%x (%d bytes)\n", addr, n)
			printCollection(cmd.OutOrStdout(), c)
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.hexFile, "hex-file", "",
		"HEX file holding the counter collection")
	cmd.Flags().Var(&flags.address, "address",
		"Address of the counter collection")
	cmd.Flags().StringVar(&flags.provisionHex, "b0-provision-hex", "",
		"Provisioning HEX file the counters were merged after")
	_ = cmd.MarkFlagRequired("hex-file")
	cmd.MarkFlagsMutuallyExclusive("address", "b0-provision-hex")

	cliutil.AddKlogFlags(cmd.PersistentFlags())
	return cmd
}

func printCollection(w io.Writer, c counters.Collection) {
	rows := make([][]string, 0, c.Len())
	for i, d := range c.Descriptors {
		rows = append(rows, []string{
			fmt.Sprintf("0x%04X", d.Kind),
			c.Name(i),
			strconv.Itoa(int(d.SlotCount)),
			strconv.FormatBool(d.Erased()),
		})
	}
	printTable(w, []string{"kind", "name", "slots", "erased"}, rows)
}

func printTable(writer io.Writer, header []string, rows [][]string) {
	table := tablewriter.NewWriter(writer)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	table.SetNoWhiteSpace(true)
	table.AppendBulk(rows)
	table.Render()
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		cliutil.Exit(err, "secure counter dump failed")
	}
}
