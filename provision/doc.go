// Package provision generates the secure counter provisioning image.
//
// # Overview
//
// The Writer encodes a counter collection (see package counters), places it
// in an Intel HEX image and writes the image out:
//   - Standalone: the record is placed at Config.SecureCounterAddress
//   - Merge: the record is placed right after the highest byte of the
//     immutable bootloader's provisioning image (Config.ProvisionHex) and
//     merged with it; any overlapping address is an error
//
// In both modes the record (plus the existing provisioning data, when
// merging) must fit in Config.MaxSize, otherwise a *CapacityError is
// returned and nothing is written.
//
// # Basic Usage
//
//	cfg := provision.DefaultConfig()
//	cfg.SecureCounterAddress = 0x1000
//	cfg.NumCounters = 2
//	cfg.CounterSlots = 4
//	cfg.Output = "secure_counters.hex"
//
//	w := provision.New(ihex.GoHex{})
//	res, err := w.Generate(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%d bytes at 0x%08X\n", res.Size, res.Address)
//
// # Output Files
//
// Output is written to a temporary file in the destination directory and
// renamed into place once complete, so a failed run never leaves a partial
// image behind.
//
// # Slot Counts
//
// Existing images were generated with every descriptor fixed at two slots,
// regardless of the requested slot counts. Config.FixedSlotCount (on by
// default) keeps that layout; turning it off honours the requested counts,
// rounded up to an even number.
//
// # Logging
//
// Provide a Logger to trace generation:
//
//	w := provision.New(ihex.GoHex{}, provision.WithLogger(myLogger))
//
// Slot count adjustments are logged at Info and returned in Result.Notices.
package provision
