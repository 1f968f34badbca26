// Package counters encodes and decodes the secure counter provisioning record
// read by the bootloader to track monotonic anti-rollback counters.
//
// # Record Format
//
// The record is a "counter collection": a fixed header followed by one
// descriptor per counter group. All fields are 16-bit little-endian.
//
//	[TYPE(2)][COUNT(2)][DESCRIPTOR]...
//
// Each descriptor names the counter group and the number of slots allocated
// to it, followed by the slots themselves:
//
//	[KIND(2)][SLOTS(2)][SLOT(2)]...
//
// Slots are written erased (0xFFFF). The bootloader consumes one slot each
// time the counter is increased, since flash/OTP cannot be decremented in
// place.
//
// Example record with two bootloader counters of two slots each:
//
//	01 00 02 00                 TYPE=1 (counter collection), COUNT=2
//	00 00 02 00 FF FF FF FF     KIND=0, SLOTS=2
//	01 00 02 00 FF FF FF FF     KIND=1, SLOTS=2
//
// # Descriptor Kinds
//
//   - KindProvision (0x10): the counter group owned by the immutable
//     bootloader's provisioning data. Present only when that provisioning
//     image is part of the build, and always first.
//   - 0 .. N-1: bootloader hardware counter IDs, in ascending order.
//
// # Usage
//
// Build a collection from a layout and encode it:
//
//	c, notices := counters.Build(counters.Layout{
//	    BootloaderCounters: 2,
//	    BootloaderSlots:    4,
//	    FixedSlotCount:     true,
//	})
//	for _, n := range notices {
//	    log.Println(n)
//	}
//	data := counters.Encode(c)
//
// Decode a record read back from an image:
//
//	c, err := counters.Decode(data)
//	if err != nil {
//	    log.Fatal(err)
//	}
package counters
