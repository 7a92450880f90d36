// Package config holds the launch-time settings of the network viewer.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/hailam/netview/internal/netfile"
	"github.com/hailam/netview/internal/palette"
)

// EnvNetPath names the environment variable consulted when no -net flag
// is given.
const EnvNetPath = "NETVIEW_NET"

// CurveAuto picks the color curve native to the file's layout.
const CurveAuto = "auto"

// Config is passed explicitly from main to every component.
type Config struct {
	Path      string
	OutputDir string

	Margin         int
	HeaderSize     int
	NumKingBuckets int
	Bucket         int
	Scale          int
	Magic          uint
	Curve          string
	Labels         bool
	CPUProfile     string

	pathSet bool
}

// Default returns the stock settings: 1 pixel margins, 64 byte header,
// 11 king buckets, bucket 0.
func Default() Config {
	return Config{
		Path:           "eval.pnn",
		OutputDir:      ".",
		Margin:         1,
		HeaderSize:     netfile.DefaultHeaderSize,
		NumKingBuckets: netfile.DefaultKingBuckets,
		Scale:          1,
		Magic:          netfile.MagicNumber,
		Curve:          CurveAuto,
	}
}

// RegisterFlags binds every setting to a flag on fs, using the current
// values as defaults.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.Func("net", fmt.Sprintf("network file to visualize (default %q, or $%s)", c.Path, EnvNetPath), func(s string) error {
		c.Path = s
		c.pathSet = true
		return nil
	})
	fs.StringVar(&c.OutputDir, "out", c.OutputDir, "directory for the rendered images")
	fs.IntVar(&c.Margin, "margin", c.Margin, "pixels between board view tiles")
	fs.IntVar(&c.HeaderSize, "header", c.HeaderSize, "size of the file header block in bytes")
	fs.IntVar(&c.NumKingBuckets, "buckets", c.NumKingBuckets, "number of king buckets in king-bucket files")
	fs.IntVar(&c.Bucket, "bucket", c.Bucket, "king bucket to render")
	fs.IntVar(&c.Scale, "scale", c.Scale, "integer upscale factor for the written images")
	fs.UintVar(&c.Magic, "magic", c.Magic, "expected magic number (files written with magic 0x1 need -magic 1)")
	fs.StringVar(&c.Curve, "curve", c.Curve, "color curve: auto, linear or sqrt")
	fs.BoolVar(&c.Labels, "labels", c.Labels, "also write a board view with tile captions")
	fs.StringVar(&c.CPUProfile, "cpuprofile", c.CPUProfile, "write cpu profile to file")
}

// ApplyEnv takes the network path and the CPU profile path from the
// environment unless they were set by flag.
func (c *Config) ApplyEnv() {
	if c.CPUProfile == "" {
		c.CPUProfile = os.Getenv("CPUPROFILE")
	}
	if c.pathSet {
		return
	}
	if p := os.Getenv(EnvNetPath); p != "" {
		c.Path = p
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch {
	case c.Path == "":
		return errors.New("no network file given")
	case c.Margin < 0:
		return fmt.Errorf("margin must not be negative, got %d", c.Margin)
	case c.HeaderSize < 40:
		return fmt.Errorf("header size must be at least 40 bytes, got %d", c.HeaderSize)
	case c.NumKingBuckets < 1:
		return fmt.Errorf("need at least one king bucket, got %d", c.NumKingBuckets)
	case c.Bucket < 0 || c.Bucket >= c.NumKingBuckets:
		return fmt.Errorf("bucket %d out of range [0, %d)", c.Bucket, c.NumKingBuckets)
	case c.Scale < 1:
		return fmt.Errorf("scale must be at least 1, got %d", c.Scale)
	case c.Magic > 0xFFFFFFFF:
		return fmt.Errorf("magic %x does not fit in 32 bits", c.Magic)
	}
	if c.Curve != CurveAuto {
		if _, err := palette.ParseCurve(c.Curve); err != nil {
			return err
		}
	}
	return nil
}

// NetOptions returns the decoding options for netfile.
func (c Config) NetOptions() netfile.Options {
	return netfile.Options{
		Magic:          uint32(c.Magic),
		HeaderSize:     c.HeaderSize,
		NumKingBuckets: c.NumKingBuckets,
	}
}

// ResolveCurve returns the configured curve, or the layout's own curve
// for "auto".
func (c Config) ResolveCurve(l netfile.Layout) (palette.Curve, error) {
	if c.Curve == CurveAuto {
		return l.Curve(), nil
	}
	return palette.ParseCurve(c.Curve)
}
