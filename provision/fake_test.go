package provision

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/moffa90/go-seccnt/ihex"
)

// fakeImage is an in-memory ihex.Image for testing.
type fakeImage struct {
	segments []ihex.Segment

	// maxOverride, if set, is reported by MaxAddress instead of the real
	// highest address
	maxOverride *uint64
}

func newFakeImage(addr uint64, data []byte) *fakeImage {
	buf := make([]byte, len(data))
	copy(buf, data)
	return &fakeImage{segments: []ihex.Segment{{Address: addr, Data: buf}}}
}

func (f *fakeImage) Segments() []ihex.Segment {
	out := append([]ihex.Segment(nil), f.segments...)
	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })
	return out
}

func (f *fakeImage) MinAddress() uint64 {
	return f.Segments()[0].Address
}

func (f *fakeImage) MaxAddress() uint64 {
	if f.maxOverride != nil {
		return *f.maxOverride
	}
	segs := f.Segments()
	return segs[len(segs)-1].End() - 1
}

func (f *fakeImage) Contiguous(addr uint64) ([]byte, bool) {
	for _, s := range f.segments {
		if addr >= s.Address && addr < s.End() {
			return s.Data[addr-s.Address:], true
		}
	}
	return nil, false
}

func (f *fakeImage) Merge(other ihex.Image) error {
	for _, in := range f.segments {
		for _, ex := range other.Segments() {
			if in.Overlaps(ex) {
				return &ihex.OverlapError{
					Address:       in.Address,
					End:           in.End(),
					ExistingStart: ex.Address,
					ExistingEnd:   ex.End(),
				}
			}
		}
	}
	f.segments = append(f.segments, other.Segments()...)
	return nil
}

func (f *fakeImage) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, s := range f.Segments() {
		n, err := fmt.Fprintf(w, "%08X:% X\n", s.Address, s.Data)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// fakeCodec serves fakeImages by path.
type fakeCodec struct {
	images map[string]*fakeImage
	loads  []string
}

func (c *fakeCodec) Load(path string) (ihex.Image, error) {
	c.loads = append(c.loads, path)
	img, ok := c.images[path]
	if !ok {
		return nil, &ihex.ParseError{Path: path, Err: os.ErrNotExist}
	}
	return img, nil
}

func (c *fakeCodec) FromBytes(data []byte, offset uint64) (ihex.Image, error) {
	if len(data) == 0 {
		return nil, errors.New("no data")
	}
	return newFakeImage(offset, data), nil
}

// failingImage fails to write after emitting some bytes.
type failingImage struct {
	*fakeImage
}

func (f failingImage) WriteTo(w io.Writer) (int64, error) {
	n, _ := io.WriteString(w, ":10000000")
	return int64(n), errors.New("disk full")
}

// failingCodec hands out failingImages.
type failingCodec struct {
	fakeCodec
}

func (c *failingCodec) FromBytes(data []byte, offset uint64) (ihex.Image, error) {
	return failingImage{newFakeImage(offset, data)}, nil
}

// recordingLogger records logged messages.
type recordingLogger struct {
	debugMsgs []string
	infoMsgs  []string
	errorMsgs []string
}

func (l *recordingLogger) Debug(msg string, kv ...interface{}) {
	l.debugMsgs = append(l.debugMsgs, msg)
}

func (l *recordingLogger) Info(msg string, kv ...interface{}) {
	l.infoMsgs = append(l.infoMsgs, msg)
}

func (l *recordingLogger) Error(msg string, kv ...interface{}) {
	l.errorMsgs = append(l.errorMsgs, msg)
}
