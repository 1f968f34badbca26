package ihex

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/marcinbor85/gohex"
)

// GoHex is the Codec backed by github.com/marcinbor85/gohex.
type GoHex struct {
	// LineLength is the number of data bytes per written record.
	// Zero means DefaultLineLength.
	LineLength byte
}

var _ Codec = GoHex{}

// Load parses the Intel HEX file at path.
//
// Example:
//
//	img, err := ihex.GoHex{}.Load("provision.hex")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("0x%08X-0x%08X\n", img.MinAddress(), img.MaxAddress())
func (g GoHex) Load(path string) (Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	defer func() { _ = f.Close() }()

	img, err := g.Parse(f)
	if err != nil {
		if pe, ok := err.(*ParseError); ok {
			pe.Path = path
			return nil, pe
		}
		return nil, err
	}
	return img, nil
}

// Parse parses Intel HEX text from any io.Reader.
func (g GoHex) Parse(r io.Reader) (Image, error) {
	mem := gohex.NewMemory()
	if err := mem.ParseIntelHex(r); err != nil {
		return nil, &ParseError{Err: err}
	}

	if len(mem.GetDataSegments()) == 0 {
		return nil, &ParseError{Err: ErrEmptyImage}
	}

	return &memoryImage{mem: mem, lineLength: g.lineLength()}, nil
}

// FromBytes creates an image holding a copy of data at offset.
func (g GoHex) FromBytes(data []byte, offset uint64) (Image, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}

	seg := Segment{Address: offset, Data: data}
	if seg.End()-1 > MaxAddress {
		return nil, fmt.Errorf("%d bytes at 0x%X: %w", len(data), offset, ErrAddressRange)
	}

	mem := gohex.NewMemory()
	buf := make([]byte, len(data))
	copy(buf, data)
	if err := mem.AddBinary(uint32(offset), buf); err != nil {
		return nil, fmt.Errorf("add %d bytes at 0x%08X: %w", len(data), offset, err)
	}

	return &memoryImage{mem: mem, lineLength: g.lineLength()}, nil
}

func (g GoHex) lineLength() byte {
	if g.LineLength == 0 {
		return DefaultLineLength
	}
	return g.LineLength
}

// memoryImage is an Image held in a gohex.Memory.
type memoryImage struct {
	mem        *gohex.Memory
	lineLength byte
}

func (m *memoryImage) Segments() []Segment {
	segs := m.mem.GetDataSegments()
	out := make([]Segment, 0, len(segs))
	for _, s := range segs {
		out = append(out, Segment{Address: uint64(s.Address), Data: s.Data})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })
	return out
}

func (m *memoryImage) MinAddress() uint64 {
	segs := m.Segments()
	if len(segs) == 0 {
		return 0
	}
	return segs[0].Address
}

func (m *memoryImage) MaxAddress() uint64 {
	segs := m.Segments()
	if len(segs) == 0 {
		return 0
	}
	return segs[len(segs)-1].End() - 1
}

func (m *memoryImage) Contiguous(addr uint64) ([]byte, bool) {
	return contiguous(m.Segments(), addr)
}

func (m *memoryImage) Merge(other Image) error {
	incoming := other.Segments()

	for _, s := range incoming {
		if len(s.Data) > 0 && s.End()-1 > MaxAddress {
			return fmt.Errorf("segment at 0x%X: %w", s.Address, ErrAddressRange)
		}
	}
	if oe, ok := findOverlap(incoming, m.Segments()); ok {
		return oe
	}

	for _, s := range incoming {
		if len(s.Data) == 0 {
			continue
		}
		buf := make([]byte, len(s.Data))
		copy(buf, s.Data)
		if err := m.mem.AddBinary(uint32(s.Address), buf); err != nil {
			return fmt.Errorf("merge %d bytes at 0x%08X: %w", len(s.Data), s.Address, err)
		}
	}

	// Keep the entry point of a merged application image.
	if o, ok := other.(*memoryImage); ok {
		if _, set := m.mem.GetStartAddress(); !set {
			if adr, set := o.mem.GetStartAddress(); set {
				m.mem.SetStartAddress(adr)
			}
		}
	}

	return nil
}

func (m *memoryImage) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	err := m.mem.DumpIntelHex(cw, m.lineLength)
	return cw.n, err
}

// countingWriter counts the bytes written through it.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
