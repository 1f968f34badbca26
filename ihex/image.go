package ihex

import "io"

// MaxAddress is the highest address an Intel HEX image can hold.
const MaxAddress = 0xFFFFFFFF

// DefaultLineLength is the number of data bytes per record when writing.
const DefaultLineLength = 16

// Segment is a contiguous run of bytes at an address.
type Segment struct {
	// Address is the address of the first byte
	Address uint64

	// Data holds the segment bytes
	Data []byte
}

// End returns the address one past the last byte of the segment.
func (s Segment) End() uint64 {
	return s.Address + uint64(len(s.Data))
}

// Overlaps reports whether s and o share at least one address.
func (s Segment) Overlaps(o Segment) bool {
	return s.Address < o.End() && o.Address < s.End()
}

// Image is an addressable byte image.
//
// MinAddress and MaxAddress are only meaningful on a non-empty image; a
// Codec never returns an empty one.
type Image interface {
	// MinAddress returns the lowest used address
	MinAddress() uint64

	// MaxAddress returns the highest used address (inclusive)
	MaxAddress() uint64

	// Segments returns the data segments in ascending address order
	Segments() []Segment

	// Contiguous returns the bytes from addr to the end of the segment
	// holding addr, or false if addr is not used
	Contiguous(addr uint64) ([]byte, bool)

	// Merge adds every segment of other to the image. other holds the data
	// already in place: any address defined in both images is an
	// *OverlapError whose Existing range lies in other, and leaves the
	// image unchanged.
	Merge(other Image) error

	// WriteTo serializes the image as Intel HEX text
	WriteTo(w io.Writer) (int64, error)
}

// Codec creates Images.
type Codec interface {
	// Load parses the Intel HEX file at path
	Load(path string) (Image, error)

	// FromBytes creates an image holding data at offset
	FromBytes(data []byte, offset uint64) (Image, error)
}

// contiguous is the Contiguous implementation shared by Image types.
func contiguous(segments []Segment, addr uint64) ([]byte, bool) {
	for _, s := range segments {
		if addr >= s.Address && addr < s.End() {
			return s.Data[addr-s.Address:], true
		}
	}
	return nil, false
}

// findOverlap returns the first incoming segment that collides with an
// existing one.
func findOverlap(existing, incoming []Segment) (*OverlapError, bool) {
	for _, in := range incoming {
		for _, ex := range existing {
			if in.Overlaps(ex) {
				return &OverlapError{
					Address:       in.Address,
					End:           in.End(),
					ExistingStart: ex.Address,
					ExistingEnd:   ex.End(),
				}, true
			}
		}
	}
	return nil, false
}
