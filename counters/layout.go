package counters

import "fmt"

// Layout describes which counter groups a collection holds and how many
// slots each gets.
type Layout struct {
	// BootloaderCounters is the number of bootloader hardware counters (kinds 0..N-1)
	BootloaderCounters int

	// BootloaderSlots is the requested slot count of each bootloader counter
	BootloaderSlots int

	// Provision adds the KindProvision group in front of the bootloader counters
	Provision bool

	// ProvisionSlots is the requested slot count of the provision group.
	// Nil means no value was supplied, which counts as zero slots.
	ProvisionSlots *int

	// FixedSlotCount emits every descriptor with FixedSlotCount slots,
	// discarding the requested (and rounded) values. This is the behaviour
	// existing provisioning images were generated with.
	FixedSlotCount bool
}

// Notice reports a non-fatal adjustment made while building a collection.
type Notice struct {
	// Group names the counter group the adjustment applies to
	Group string

	// Requested is the slot count supplied by the caller
	Requested int

	// Adjusted is the slot count after rounding
	Adjusted int
}

func (n Notice) String() string {
	return fmt.Sprintf("monotonic counter slots for %s rounded up to %d (requested %d)",
		n.Group, n.Adjusted, n.Requested)
}

// Descriptors returns the number of descriptors the layout produces.
func (l Layout) Descriptors() int {
	if l.Provision {
		return l.BootloaderCounters + 1
	}
	return l.BootloaderCounters
}

// Validate checks that the layout can be encoded. Slot counts only need to
// fit a descriptor when FixedSlotCount is off, since they are discarded
// otherwise.
func (l Layout) Validate() error {
	if l.BootloaderCounters < 0 {
		return fmt.Errorf("bootloader counter count must not be negative, got %d", l.BootloaderCounters)
	}
	if l.Descriptors() > MaxDescriptors {
		return fmt.Errorf("descriptor count %d exceeds maximum %d", l.Descriptors(), MaxDescriptors)
	}
	if l.Provision && l.BootloaderCounters > MaxBootloaderCounters {
		return fmt.Errorf("bootloader counter IDs 0..%d collide with provision kind 0x%02X, at most %d counters allowed",
			l.BootloaderCounters-1, KindProvision, MaxBootloaderCounters)
	}
	if err := l.validateSlots("bootloader counter", l.BootloaderSlots); err != nil {
		return err
	}
	if l.ProvisionSlots != nil {
		if err := l.validateSlots("provision counter", *l.ProvisionSlots); err != nil {
			return err
		}
	}
	return nil
}

func (l Layout) validateSlots(what string, slots int) error {
	if slots < 0 {
		return fmt.Errorf("%s slot count must not be negative, got %d", what, slots)
	}
	if !l.FixedSlotCount && roundEven(slots) > MaxSlotCount {
		return fmt.Errorf("%s slot count %d exceeds maximum %d", what, slots, MaxSlotCount-1)
	}
	return nil
}

// Build creates the collection described by the layout. The provision group
// comes first when present, followed by the bootloader counters in ascending
// kind order. Odd slot counts are rounded up to the next even number and
// reported as notices.
//
// The layout must be valid, see Validate.
func Build(l Layout) (Collection, []Notice) {
	var notices []Notice
	descriptors := make([]Descriptor, 0, l.Descriptors())

	if l.Provision {
		slots := 0
		if l.ProvisionSlots != nil {
			slots = *l.ProvisionSlots
			if slots%2 == 1 {
				slots = roundEven(slots)
				notices = append(notices, Notice{
					Group:     KindName(KindProvision, true),
					Requested: *l.ProvisionSlots,
					Adjusted:  slots,
				})
			}
		}
		if l.FixedSlotCount {
			slots = FixedSlotCount
		}
		descriptors = append(descriptors, NewDescriptor(KindProvision, uint16(slots)))
	}

	slots := FixedSlotCount
	if !l.FixedSlotCount {
		slots = roundEven(l.BootloaderSlots)
		if slots != l.BootloaderSlots && l.BootloaderCounters > 0 {
			notices = append(notices, Notice{
				Group:     "bootloader counters",
				Requested: l.BootloaderSlots,
				Adjusted:  slots,
			})
		}
	}
	for id := 0; id < l.BootloaderCounters; id++ {
		descriptors = append(descriptors, NewDescriptor(uint16(id), uint16(slots)))
	}

	return Collection{Descriptors: descriptors}, notices
}

// roundEven rounds n up to the next even number.
func roundEven(n int) int {
	return n + n%2
}
