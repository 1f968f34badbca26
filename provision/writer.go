package provision

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/moffa90/go-seccnt/counters"
	"github.com/moffa90/go-seccnt/ihex"
)

// Writer generates secure counter provisioning images.
//
// A Writer keeps no state between runs and can be reused.
type Writer struct {
	codec   ihex.Codec
	options Options
}

// Result describes a generated provisioning image.
type Result struct {
	// Image is the complete output image
	Image ihex.Image

	// Collection is the encoded counter collection
	Collection counters.Collection

	// Notices lists the slot count adjustments made while building
	Notices []counters.Notice

	// Address is where the counter collection starts
	Address uint64

	// Size is the encoded size of the counter collection
	Size uint64

	// Existing is the space taken by the merged provisioning image
	// (highest minus lowest address), zero in standalone mode
	Existing uint64

	// Merged is true if the counters were merged with a provisioning image
	Merged bool
}

// New creates a new Writer that reads and builds images with codec.
//
// Example:
//
//	w := provision.New(ihex.GoHex{},
//	    provision.WithLogger(myLogger),
//	)
func New(codec ihex.Codec, opts ...Option) *Writer {
	if codec == nil {
		panic("codec cannot be nil")
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return &Writer{
		codec:   codec,
		options: o,
	}
}

// Build creates the provisioning image in memory:
//  1. Validate the configuration
//  2. Encode the counter collection
//  3. Load the provisioning image (merge mode only)
//  4. Check the counters fit in cfg.MaxSize
//  5. Place the counters and merge them with the provisioning image
func (w *Writer) Build(cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.ProvisionHex == "" && cfg.ProvisionSlots != nil {
		w.logDebug("provision counter slots ignored without a provision image",
			"b0_provision_counter_slots", *cfg.ProvisionSlots)
	}

	data, collection, notices := counters.EncodeLayout(cfg.Layout())
	for _, n := range notices {
		w.logInfo(n.String(), "group", n.Group, "requested", n.Requested, "adjusted", n.Adjusted)
	}

	res := &Result{
		Collection: collection,
		Notices:    notices,
		Size:       uint64(len(data)),
	}

	w.logDebug("encoded secure counters",
		"descriptors", collection.Len(),
		"size", res.Size,
		"fixed_slot_count", cfg.FixedSlotCount,
	)

	if cfg.ProvisionHex == "" {
		if res.Size > cfg.MaxSize {
			return nil, &CapacityError{Required: res.Size, MaxSize: cfg.MaxSize}
		}

		img, err := w.codec.FromBytes(data, cfg.SecureCounterAddress)
		if err != nil {
			return nil, fmt.Errorf("place secure counters: %w", err)
		}

		res.Image = img
		res.Address = cfg.SecureCounterAddress
		return res, nil
	}

	existing, err := w.codec.Load(cfg.ProvisionHex)
	if err != nil {
		return nil, fmt.Errorf("load provision image: %w", err)
	}

	res.Existing = existing.MaxAddress() - existing.MinAddress()
	if res.Size+res.Existing > cfg.MaxSize {
		return nil, &CapacityError{Required: res.Size, Existing: res.Existing, MaxSize: cfg.MaxSize}
	}

	res.Address = ResolveAddress(existing)
	w.logDebug("placing secure counters after provision image",
		"provision_hex", cfg.ProvisionHex,
		"min_address", fmt.Sprintf("0x%08X", existing.MinAddress()),
		"max_address", fmt.Sprintf("0x%08X", existing.MaxAddress()),
		"address", fmt.Sprintf("0x%08X", res.Address),
	)

	img, err := w.codec.FromBytes(data, res.Address)
	if err != nil {
		return nil, fmt.Errorf("place secure counters: %w", err)
	}
	if err := img.Merge(existing); err != nil {
		return nil, fmt.Errorf("merge with provision image %q: %w", cfg.ProvisionHex, err)
	}

	res.Image = img
	res.Merged = true
	return res, nil
}

// Generate builds the provisioning image and writes it to cfg.Output.
// Nothing is written if any step fails.
//
// Example:
//
//	res, err := w.Generate(cfg)
//	if provision.IsCapacityError(err) {
//	    // fewer counters or slots needed
//	}
func (w *Writer) Generate(cfg Config) (*Result, error) {
	if cfg.Output == "" {
		return nil, &ConfigError{Field: "output", Err: errors.New("no output file given")}
	}

	res, err := w.Build(cfg)
	if err != nil {
		w.logError("secure counter generation failed", "error", err)
		return nil, err
	}

	err = w.writeAtomic(cfg.Output, func(out io.Writer) error {
		_, err := res.Image.WriteTo(out)
		return err
	})
	if err != nil {
		w.logError("secure counter generation failed", "error", err)
		return nil, err
	}

	w.logInfo("secure counters written",
		"output", cfg.Output,
		"address", fmt.Sprintf("0x%08X", res.Address),
		"size", res.Size,
		"descriptors", res.Collection.Len(),
		"merged", res.Merged,
	)
	return res, nil
}

// writeAtomic writes path through a temporary file in the same directory
// that is renamed into place only after write succeeded. The temporary file
// is removed on every failure path.
func (w *Writer) writeAtomic(path string, write func(io.Writer) error) (err error) {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	tmp := f.Name()

	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(tmp)
		}
	}()

	if err = write(f); err != nil {
		return fmt.Errorf("failed to write %q: %w", path, err)
	}
	if err = f.Chmod(w.options.FileMode); err != nil {
		return fmt.Errorf("failed to set mode of %q: %w", path, err)
	}
	if err = f.Sync(); err != nil {
		return fmt.Errorf("failed to sync %q: %w", path, err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("failed to close %q: %w", path, err)
	}
	if err = os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to move output into place: %w", err)
	}

	w.logDebug("wrote file", "path", path)
	return nil
}

// logDebug logs a debug message if a logger is configured.
func (w *Writer) logDebug(msg string, keysAndValues ...interface{}) {
	if w.options.Logger != nil {
		w.options.Logger.Debug(msg, keysAndValues...)
	}
}

// logInfo logs an info message if a logger is configured.
func (w *Writer) logInfo(msg string, keysAndValues ...interface{}) {
	if w.options.Logger != nil {
		w.options.Logger.Info(msg, keysAndValues...)
	}
}

// logError logs an error message if a logger is configured.
func (w *Writer) logError(msg string, keysAndValues ...interface{}) {
	if w.options.Logger != nil {
		w.options.Logger.Error(msg, keysAndValues...)
	}
}
