package provision

import (
	"fmt"
	"io"

	"github.com/moffa90/go-seccnt/ihex"
)

// AddressConfigKey is the configuration option written by WriteAddressConfig.
const AddressConfigKey = "CONFIG_MCUBOOT_SECURE_COUNTER_ADDRESS"

// ResolveAddress returns the address one past the highest used byte of img,
// which is where the secure counters follow a provisioning image.
func ResolveAddress(img ihex.Image) uint64 {
	return img.MaxAddress() + 1
}

// WriteAddressConfig writes the configuration line for the secure counter
// address, e.g. "CONFIG_MCUBOOT_SECURE_COUNTER_ADDRESS=0x2001".
// No trailing newline is written.
func WriteAddressConfig(w io.Writer, addr uint64) error {
	_, err := fmt.Fprintf(w, "%s=0x%x", AddressConfigKey, addr)
	return err
}

// ResolveAddressFile loads the HEX file at path and returns the address
// following its highest used byte.
func (w *Writer) ResolveAddressFile(path string) (uint64, error) {
	img, err := w.codec.Load(path)
	if err != nil {
		return 0, err
	}

	addr := ResolveAddress(img)
	w.logDebug("resolved secure counter address",
		"hex_file", path,
		"min_address", fmt.Sprintf("0x%08X", img.MinAddress()),
		"max_address", fmt.Sprintf("0x%08X", img.MaxAddress()),
		"address", fmt.Sprintf("0x%08X", addr),
	)
	return addr, nil
}

// GenerateAddressConfig resolves the secure counter address from the HEX
// file at hexPath and writes the configuration line to output.
func (w *Writer) GenerateAddressConfig(hexPath, output string) (uint64, error) {
	if output == "" {
		return 0, &ConfigError{Field: "output", Err: fmt.Errorf("no output file given")}
	}

	addr, err := w.ResolveAddressFile(hexPath)
	if err != nil {
		return 0, err
	}

	err = w.writeAtomic(output, func(out io.Writer) error {
		return WriteAddressConfig(out, addr)
	})
	if err != nil {
		return 0, err
	}

	w.logInfo("secure counter address written", "output", output, "address", fmt.Sprintf("0x%x", addr))
	return addr, nil
}
