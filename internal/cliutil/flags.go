package cliutil

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

// HexUint64 is a pflag.Value for addresses and sizes. It accepts decimal,
// 0x-prefixed hex and 0o/0-prefixed octal input and prints in hex.
type HexUint64 uint64

func (h *HexUint64) String() string {
	return fmt.Sprintf("0x%x", uint64(*h))
}

func (h *HexUint64) Set(s string) error {
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return fmt.Errorf("invalid number %q: %w", s, err)
	}
	*h = HexUint64(v)
	return nil
}

func (h *HexUint64) Type() string {
	return "uint64"
}

// RequireFlags returns an error naming every flag in names that was not set
// on the command line.
func RequireFlags(fs *pflag.FlagSet, names ...string) error {
	var missing []string
	for _, name := range names {
		if !fs.Changed(name) {
			missing = append(missing, `"`+name+`"`)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("required flag(s) %s not set", strings.Join(missing, ", "))
	}
	return nil
}
