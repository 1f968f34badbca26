package counters

import "encoding/binary"

// EncodedSize returns the encoded size of the collection in bytes:
// HeaderSize plus DescriptorHeaderSize and SlotSize per slot for each
// descriptor.
func EncodedSize(c Collection) uint64 {
	size := uint64(HeaderSize)
	for _, d := range c.Descriptors {
		size += d.Size()
	}
	return size
}

// Encode serializes the collection.
//
// Record structure:
//
//	[TYPE_L][TYPE_H][COUNT_L][COUNT_H]
//	[KIND_L][KIND_H][SLOTS_L][SLOTS_H][SLOT...]   (per descriptor)
//
// Each descriptor is written with exactly SlotSize*SlotCount slot bytes:
// missing slot bytes are written erased and extra bytes are dropped.
func Encode(c Collection) []byte {
	buf := make([]byte, 0, EncodedSize(c))

	buf = binary.LittleEndian.AppendUint16(buf, TypeCounterCollection)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(c.Descriptors)))

	for _, d := range c.Descriptors {
		buf = binary.LittleEndian.AppendUint16(buf, d.Kind)
		buf = binary.LittleEndian.AppendUint16(buf, d.SlotCount)

		n := SlotSize * int(d.SlotCount)
		slots := d.Slots
		if len(slots) > n {
			slots = slots[:n]
		}
		buf = append(buf, slots...)
		for i := len(slots); i < n; i++ {
			buf = append(buf, ErasedByte)
		}
	}

	return buf
}

// EncodeLayout builds the collection described by the layout and encodes it.
func EncodeLayout(l Layout) ([]byte, Collection, []Notice) {
	c, notices := Build(l)
	return Encode(c), c, notices
}
