package counters

// Record layout constants.
const (
	// TypeCounterCollection is the record type tag of a counter collection
	TypeCounterCollection = 1

	// HeaderSize is the size of the collection header: TYPE(2) + COUNT(2)
	HeaderSize = 4

	// DescriptorHeaderSize is the size of a descriptor header: KIND(2) + SLOTS(2)
	DescriptorHeaderSize = 4

	// SlotSize is the size in bytes of a single counter slot
	SlotSize = 2

	// ErasedByte is the value of an unwritten flash/OTP byte
	ErasedByte = 0xFF

	// ErasedSlot is the value of an unused counter slot
	ErasedSlot = 0xFFFF
)

// Descriptor kinds.
const (
	// KindProvision is the counter group of the immutable bootloader's
	// provisioning data
	KindProvision = 0x10

	// MaxBootloaderCounters is the number of bootloader counter IDs that fit
	// below KindProvision
	MaxBootloaderCounters = KindProvision
)

// FixedSlotCount is the slot count every descriptor is emitted with when
// Layout.FixedSlotCount is set.
const FixedSlotCount = 2

// MaxSlotCount is the largest slot count a descriptor can declare.
const MaxSlotCount = 0xFFFF

// MaxDescriptors is the largest descriptor count a collection can declare.
const MaxDescriptors = 0xFFFF
