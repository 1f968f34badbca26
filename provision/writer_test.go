package provision

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/moffa90/go-seccnt/counters"
	"github.com/moffa90/go-seccnt/ihex"
)

func erased(n int) []byte {
	return bytes.Repeat([]byte{counters.ErasedByte}, n)
}

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func intPtr(n int) *int { return &n }

// recordBytes returns the bytes placed at res.Address.
func recordBytes(t *testing.T, res *Result) []byte {
	t.Helper()
	data, ok := res.Image.Contiguous(res.Address)
	if !ok {
		t.Fatalf("no data at 0x%X", res.Address)
	}
	if uint64(len(data)) < res.Size {
		t.Fatalf("only %d bytes at 0x%X, want %d", len(data), res.Address, res.Size)
	}
	return data[:res.Size]
}

// provisionImage is a 16 byte provisioning image ending at 0x2000.
func provisionImage() *fakeImage {
	return newFakeImage(0x1FF1, bytes.Repeat([]byte{0x5A}, 16))
}

func baseConfig() Config {
	cfg := DefaultConfig()
	cfg.SecureCounterAddress = 0x1000
	cfg.NumCounters = 2
	cfg.CounterSlots = 4
	return cfg
}

func TestNew(t *testing.T) {
	t.Run("nil codec panics", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("New(nil) should panic")
			}
		}()
		New(nil)
	})

	t.Run("options", func(t *testing.T) {
		logger := &recordingLogger{}
		w := New(&fakeCodec{}, WithLogger(logger), WithFileMode(0o600))

		if w.options.Logger != logger {
			t.Error("logger not set")
		}
		if w.options.FileMode != 0o600 {
			t.Errorf("file mode = %o, want 600", w.options.FileMode)
		}
	})

	t.Run("zero file mode keeps default", func(t *testing.T) {
		w := New(&fakeCodec{}, WithFileMode(0))
		if w.options.FileMode != 0o644 {
			t.Errorf("file mode = %o, want 644", w.options.FileMode)
		}
	})
}

func TestBuildStandalone(t *testing.T) {
	w := New(&fakeCodec{})

	res, err := w.Build(baseConfig())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	want := concat(
		[]byte{0x01, 0x00, 0x02, 0x00},
		[]byte{0x00, 0x00, 0x02, 0x00}, erased(4),
		[]byte{0x01, 0x00, 0x02, 0x00}, erased(4),
	)

	if res.Address != 0x1000 {
		t.Errorf("Address = 0x%X, want 0x1000", res.Address)
	}
	if res.Merged {
		t.Error("Merged = true in standalone mode")
	}
	if res.Image.MinAddress() != 0x1000 {
		t.Errorf("image starts at 0x%X, want 0x1000", res.Image.MinAddress())
	}
	if got := recordBytes(t, res); !bytes.Equal(got, want) {
		t.Errorf("record = % X, want % X", got, want)
	}
	if len(res.Image.Segments()) != 1 {
		t.Errorf("image has %d segments, want 1", len(res.Image.Segments()))
	}
}

func TestBuildMerge(t *testing.T) {
	codec := &fakeCodec{images: map[string]*fakeImage{"b0.hex": provisionImage()}}
	w := New(codec)

	cfg := baseConfig()
	cfg.ProvisionHex = "b0.hex"

	res, err := w.Build(cfg)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	want := concat(
		[]byte{0x01, 0x00, 0x03, 0x00},
		[]byte{0x10, 0x00, 0x02, 0x00}, erased(4),
		[]byte{0x00, 0x00, 0x02, 0x00}, erased(4),
		[]byte{0x01, 0x00, 0x02, 0x00}, erased(4),
	)

	if res.Address != 0x2001 {
		t.Errorf("Address = 0x%X, want 0x2001", res.Address)
	}
	if !res.Merged {
		t.Error("Merged = false in merge mode")
	}
	if res.Existing != 15 {
		t.Errorf("Existing = %d, want 15", res.Existing)
	}
	if got := recordBytes(t, res); !bytes.Equal(got, want) {
		t.Errorf("record = % X, want % X", got, want)
	}
	if res.Image.MinAddress() != 0x1FF1 {
		t.Errorf("merged image starts at 0x%X, want 0x1FF1", res.Image.MinAddress())
	}
	if res.Image.MaxAddress() != 0x2001+uint64(len(want))-1 {
		t.Errorf("merged image ends at 0x%X", res.Image.MaxAddress())
	}
	if diff := cmp.Diff([]string{"b0.hex"}, codec.loads); diff != "" {
		t.Errorf("loads mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildProvisionSlotsRounded(t *testing.T) {
	codec := &fakeCodec{images: map[string]*fakeImage{"b0.hex": provisionImage()}}
	logger := &recordingLogger{}
	w := New(codec, WithLogger(logger))

	cfg := baseConfig()
	cfg.ProvisionHex = "b0.hex"
	cfg.ProvisionSlots = intPtr(3)

	res, err := w.Build(cfg)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	wantNotices := []counters.Notice{{Group: "provision", Requested: 3, Adjusted: 4}}
	if diff := cmp.Diff(wantNotices, res.Notices); diff != "" {
		t.Errorf("notices mismatch (-want +got):\n%s", diff)
	}
	if len(logger.infoMsgs) == 0 || !strings.Contains(logger.infoMsgs[0], "rounded up to 4") {
		t.Errorf("notice not logged, info messages: %q", logger.infoMsgs)
	}

	// The notice reports 4, but the descriptor is still written with the
	// fixed slot count of 2.
	d, ok := res.Collection.Lookup(counters.KindProvision)
	if !ok {
		t.Fatal("provision descriptor missing")
	}
	if d.SlotCount != 2 {
		t.Errorf("provision slot count = %d, want 2", d.SlotCount)
	}
	got := recordBytes(t, res)
	if !bytes.Equal(got[4:8], []byte{0x10, 0x00, 0x02, 0x00}) {
		t.Errorf("provision descriptor header = % X", got[4:8])
	}

	t.Run("honoured when fixed slot count is off", func(t *testing.T) {
		cfg.FixedSlotCount = false
		res, err := w.Build(cfg)
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		d, _ := res.Collection.Lookup(counters.KindProvision)
		if d.SlotCount != 4 {
			t.Errorf("provision slot count = %d, want 4", d.SlotCount)
		}
		d, _ = res.Collection.Lookup(0)
		if d.SlotCount != 4 {
			t.Errorf("bootloader slot count = %d, want 4", d.SlotCount)
		}
	})
}

func TestBuildIgnoresOversizedSlots(t *testing.T) {
	cfg := baseConfig()
	cfg.CounterSlots = 70000

	res, err := New(&fakeCodec{}).Build(cfg)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	for _, d := range res.Collection.Descriptors {
		if d.SlotCount != counters.FixedSlotCount {
			t.Errorf("descriptor %d has %d slots, want %d", d.Kind, d.SlotCount, counters.FixedSlotCount)
		}
	}
	if res.Size != 20 {
		t.Errorf("Size = %d, want 20", res.Size)
	}
}

func TestBuildCapacity(t *testing.T) {
	// Two fixed-slot counters encode to 4 + 2*(4+4) = 20 bytes; with the
	// provision group and a provision image spanning 15 bytes, 28 + 15 = 43.
	tests := []struct {
		name      string
		cfg       func() Config
		wantErr   bool
		wantError CapacityError
	}{
		{
			name: "standalone exact fit",
			cfg: func() Config {
				cfg := baseConfig()
				cfg.MaxSize = 20
				return cfg
			},
		},
		{
			name: "standalone one byte over",
			cfg: func() Config {
				cfg := baseConfig()
				cfg.MaxSize = 19
				return cfg
			},
			wantErr:   true,
			wantError: CapacityError{Required: 20, MaxSize: 19},
		},
		{
			name: "merge exact fit",
			cfg: func() Config {
				cfg := baseConfig()
				cfg.ProvisionHex = "b0.hex"
				cfg.MaxSize = 43
				return cfg
			},
		},
		{
			name: "merge one byte over",
			cfg: func() Config {
				cfg := baseConfig()
				cfg.ProvisionHex = "b0.hex"
				cfg.MaxSize = 42
				return cfg
			},
			wantErr:   true,
			wantError: CapacityError{Required: 28, Existing: 15, MaxSize: 42},
		},
		{
			name: "zero max size",
			cfg: func() Config {
				cfg := baseConfig()
				cfg.MaxSize = 0
				return cfg
			},
			wantErr:   true,
			wantError: CapacityError{Required: 20, MaxSize: 0},
		},
		{
			name: "far too many counters",
			cfg: func() Config {
				cfg := baseConfig()
				cfg.NumCounters = 1000
				cfg.MaxSize = 0x10
				return cfg
			},
			wantErr:   true,
			wantError: CapacityError{Required: 8004, MaxSize: 0x10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codec := &fakeCodec{images: map[string]*fakeImage{"b0.hex": provisionImage()}}
			_, err := New(codec).Build(tt.cfg())
			if (err != nil) != tt.wantErr {
				t.Fatalf("Build() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				return
			}

			var ce *CapacityError
			if !errors.As(err, &ce) {
				t.Fatalf("Build() error = %v, want *CapacityError", err)
			}
			if diff := cmp.Diff(tt.wantError, *ce); diff != "" {
				t.Errorf("CapacityError mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuildErrors(t *testing.T) {
	t.Run("invalid config", func(t *testing.T) {
		cfg := baseConfig()
		cfg.NumCounters = -1

		_, err := New(&fakeCodec{}).Build(cfg)
		var ce *ConfigError
		if !errors.As(err, &ce) {
			t.Fatalf("Build() error = %v, want *ConfigError", err)
		}
		if ce.Field != "mcuboot_num_counters" {
			t.Errorf("ConfigError.Field = %q", ce.Field)
		}
	})

	t.Run("missing provision image", func(t *testing.T) {
		cfg := baseConfig()
		cfg.ProvisionHex = "missing.hex"

		_, err := New(&fakeCodec{}).Build(cfg)
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("Build() error = %v, want wrapped os.ErrNotExist", err)
		}
	})

	t.Run("overlap is fatal", func(t *testing.T) {
		// An image whose reported highest address is below data it holds.
		img := provisionImage()
		img.segments = append(img.segments, ihex.Segment{Address: 0x2010, Data: []byte{1}})
		max := uint64(0x2000)
		img.maxOverride = &max

		cfg := baseConfig()
		cfg.ProvisionHex = "b0.hex"

		_, err := New(&fakeCodec{images: map[string]*fakeImage{"b0.hex": img}}).Build(cfg)
		if !ihex.IsOverlapError(err) {
			t.Fatalf("Build() error = %v, want *ihex.OverlapError", err)
		}
		if !strings.Contains(err.Error(), "b0.hex") {
			t.Errorf("error should name the provision image, got: %v", err)
		}
		var oe *ihex.OverlapError
		errors.As(err, &oe)
		if oe.Address != 0x2001 || oe.ExistingStart != 0x2010 || oe.ExistingEnd != 0x2011 {
			t.Errorf("OverlapError = %+v, want counters at 0x2001 over provision data at 0x2010", oe)
		}
	})
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "secure_counters.hex")

	cfg := baseConfig()
	cfg.Output = out

	logger := &recordingLogger{}
	res, err := New(&fakeCodec{}, WithLogger(logger)).Generate(cfg)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	var want bytes.Buffer
	if _, err := res.Image.WriteTo(&want); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, want.Bytes()) {
		t.Errorf("output = %q, want %q", got, want.String())
	}

	assertOnlyFiles(t, dir, "secure_counters.hex")

	if len(logger.infoMsgs) == 0 || logger.infoMsgs[len(logger.infoMsgs)-1] != "secure counters written" {
		t.Errorf("info messages = %q", logger.infoMsgs)
	}
}

func TestGenerateWritesNothingOnFailure(t *testing.T) {
	tests := []struct {
		name  string
		codec ihex.Codec
		cfg   func(out string) Config
	}{
		{
			name:  "capacity exceeded",
			codec: &fakeCodec{},
			cfg: func(out string) Config {
				cfg := baseConfig()
				cfg.NumCounters = 1000
				cfg.MaxSize = 0x10
				cfg.Output = out
				return cfg
			},
		},
		{
			name:  "missing provision image",
			codec: &fakeCodec{},
			cfg: func(out string) Config {
				cfg := baseConfig()
				cfg.ProvisionHex = "missing.hex"
				cfg.Output = out
				return cfg
			},
		},
		{
			name:  "write fails midway",
			codec: &failingCodec{},
			cfg: func(out string) Config {
				cfg := baseConfig()
				cfg.Output = out
				return cfg
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			logger := &recordingLogger{}

			_, err := New(tt.codec, WithLogger(logger)).Generate(tt.cfg(filepath.Join(dir, "out.hex")))
			if err == nil {
				t.Fatal("Generate() should fail")
			}
			if len(logger.errorMsgs) == 0 {
				t.Error("failure not logged")
			}
			assertOnlyFiles(t, dir)
		})
	}
}

func TestGenerateRequiresOutput(t *testing.T) {
	_, err := New(&fakeCodec{}).Generate(baseConfig())

	var ce *ConfigError
	if !errors.As(err, &ce) || ce.Field != "output" {
		t.Errorf("Generate() error = %v, want output ConfigError", err)
	}
}

func TestGenerateWithGoHex(t *testing.T) {
	dir := t.TempDir()
	b0 := filepath.Join(dir, "b0.hex")
	// 16 bytes of 0xAA at 0x2000
	b0Hex := ":10200000AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA30\n:00000001FF\n"
	if err := os.WriteFile(b0, []byte(b0Hex), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := baseConfig()
	cfg.ProvisionHex = b0
	cfg.Output = filepath.Join(dir, "out.hex")

	res, err := New(ihex.GoHex{}).Generate(cfg)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if res.Address != 0x2010 {
		t.Errorf("Address = 0x%X, want 0x2010", res.Address)
	}

	img, err := ihex.GoHex{}.Load(cfg.Output)
	if err != nil {
		t.Fatalf("Load() of output error = %v", err)
	}
	if img.MinAddress() != 0x2000 {
		t.Errorf("output starts at 0x%X, want 0x2000", img.MinAddress())
	}

	data, ok := img.Contiguous(res.Address)
	if !ok {
		t.Fatalf("no data at 0x%X in output", res.Address)
	}
	got, err := counters.Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if diff := cmp.Diff(res.Collection, got); diff != "" {
		t.Errorf("decoded collection mismatch (-want +got):\n%s", diff)
	}

	prefix, _ := img.Contiguous(0x2000)
	if !bytes.Equal(prefix[:16], bytes.Repeat([]byte{0xAA}, 16)) {
		t.Errorf("provision data changed: % X", prefix[:16])
	}
}

func assertOnlyFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, e := range entries {
		got = append(got, e.Name())
	}
	if diff := cmp.Diff(names, got); diff != "" {
		t.Errorf("directory contents mismatch (-want +got):\n%s", diff)
	}
}
