package counters

import "fmt"

// Descriptor is one group of monotonic counter slots.
type Descriptor struct {
	// Kind identifies the counter group (KindProvision or a bootloader counter ID)
	Kind uint16

	// SlotCount is the number of slots allocated to the group
	SlotCount uint16

	// Slots holds the raw slot bytes (SlotSize bytes per slot).
	// A nil Slots is encoded as erased slots.
	Slots []byte
}

// NewDescriptor returns a descriptor with all slots erased.
func NewDescriptor(kind, slotCount uint16) Descriptor {
	slots := make([]byte, SlotSize*int(slotCount))
	for i := range slots {
		slots[i] = ErasedByte
	}
	return Descriptor{Kind: kind, SlotCount: slotCount, Slots: slots}
}

// Size returns the encoded size of the descriptor in bytes.
func (d Descriptor) Size() uint64 {
	return DescriptorHeaderSize + SlotSize*uint64(d.SlotCount)
}

// Erased reports whether no slot of the descriptor has been written.
func (d Descriptor) Erased() bool {
	for _, b := range d.Slots {
		if b != ErasedByte {
			return false
		}
	}
	return true
}

// Collection is a complete counter collection record.
type Collection struct {
	// Descriptors are the counter groups in record order
	Descriptors []Descriptor
}

// Len returns the number of descriptors in the collection.
func (c Collection) Len() int {
	return len(c.Descriptors)
}

// HasProvision reports whether the collection starts with a provision group.
// Build always places that group first, so a bootloader counter with ID
// 0x10 further down is not mistaken for it.
func (c Collection) HasProvision() bool {
	return len(c.Descriptors) > 0 && c.Descriptors[0].Kind == KindProvision
}

// Name returns a human-readable name for the i-th descriptor.
func (c Collection) Name(i int) string {
	return KindName(c.Descriptors[i].Kind, c.HasProvision())
}

// Lookup returns the first descriptor of the given kind.
func (c Collection) Lookup(kind uint16) (Descriptor, bool) {
	for _, d := range c.Descriptors {
		if d.Kind == kind {
			return d, true
		}
	}
	return Descriptor{}, false
}

// KindName returns a human-readable name for a descriptor kind in a
// collection with or without a provision group. Without one every kind is a
// bootloader counter ID; with one, IDs stop below KindProvision.
func KindName(kind uint16, provision bool) string {
	switch {
	case !provision:
		return fmt.Sprintf("bootloader counter %d", kind)
	case kind == KindProvision:
		return "provision"
	case kind < MaxBootloaderCounters:
		return fmt.Sprintf("bootloader counter %d", kind)
	default:
		return fmt.Sprintf("unknown (0x%04X)", kind)
	}
}
