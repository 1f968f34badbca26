package counters

import (
	"encoding/binary"
	"fmt"
)

// Decode parses a counter collection that spans all of data.
// Trailing bytes after the last descriptor are an error.
func Decode(data []byte) (Collection, error) {
	c, n, err := DecodePrefix(data)
	if err != nil {
		return Collection{}, err
	}
	if n != len(data) {
		return Collection{}, &DecodeError{
			Offset: n,
			Reason: fmt.Sprintf("%d trailing bytes after last descriptor", len(data)-n),
		}
	}
	return c, nil
}

// DecodePrefix parses a counter collection at the start of data and returns
// it along with the number of bytes it occupies. Bytes after the last
// descriptor are ignored.
//
// Descriptors are walked the way the bootloader walks them: each one is
// skipped by its declared slot count.
func DecodePrefix(data []byte) (Collection, int, error) {
	if len(data) < HeaderSize {
		return Collection{}, 0, &DecodeError{
			Offset: 0,
			Reason: fmt.Sprintf("header too short: got %d bytes, need %d", len(data), HeaderSize),
		}
	}

	tag := binary.LittleEndian.Uint16(data[0:2])
	if tag != TypeCounterCollection {
		return Collection{}, 0, &DecodeError{
			Offset: 0,
			Reason: fmt.Sprintf("invalid type: got 0x%04X, expected 0x%04X", tag, TypeCounterCollection),
		}
	}

	count := int(binary.LittleEndian.Uint16(data[2:4]))
	c := Collection{Descriptors: make([]Descriptor, 0, count)}

	offset := HeaderSize
	for i := 0; i < count; i++ {
		if len(data)-offset < DescriptorHeaderSize {
			return Collection{}, 0, &DecodeError{
				Offset: offset,
				Reason: fmt.Sprintf("descriptor %d of %d truncated", i, count),
			}
		}

		d := Descriptor{
			Kind:      binary.LittleEndian.Uint16(data[offset : offset+2]),
			SlotCount: binary.LittleEndian.Uint16(data[offset+2 : offset+4]),
		}
		offset += DescriptorHeaderSize

		n := SlotSize * int(d.SlotCount)
		if len(data)-offset < n {
			return Collection{}, 0, &DecodeError{
				Offset: offset,
				Reason: fmt.Sprintf("descriptor %d (kind 0x%04X) needs %d slot bytes, %d left",
					i, d.Kind, n, len(data)-offset),
			}
		}

		d.Slots = make([]byte, n)
		copy(d.Slots, data[offset:offset+n])
		offset += n

		c.Descriptors = append(c.Descriptors, d)
	}

	return c, offset, nil
}
