package netfile

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hailam/netview/internal/board"
	"github.com/hailam/netview/internal/netfile/netfiletest"
	"github.com/hailam/netview/internal/palette"
)

func legacyOptions() Options {
	opts := DefaultOptions()
	opts.Magic = 0x1
	return opts
}

func golden(row, col, bucket int) int16 {
	return int16(row*7 - col*3 + bucket*1000)
}

func TestReadHeaderLegacy(t *testing.T) {
	data := netfiletest.Legacy{Inputs: 8, Width: 4}.Bytes()

	h, err := ReadHeader(data, 0x1)
	if err != nil {
		t.Fatalf("ReadHeader failed: %v", err)
	}
	if h.Magic != 0x1 || h.Version != 1 {
		t.Errorf("magic/version = %x/%d, want 1/1", h.Magic, h.Version)
	}
	if h.LayerSizes != [4]uint32{8, 4, 0, 0} {
		t.Errorf("LayerSizes = %v", h.LayerSizes)
	}
	if h.Kind() != Legacy {
		t.Errorf("Kind = %s, want legacy", h.Kind())
	}
}

func TestReadHeaderKingBucket(t *testing.T) {
	data := netfiletest.KingBucket{Accumulator: 2, Buckets: 1, Variants: 3}.Bytes()

	h, err := ReadHeader(data, MagicNumber)
	if err != nil {
		t.Fatalf("ReadHeader failed: %v", err)
	}
	if h.Version != 12 || h.Kind() != KingBucket {
		t.Errorf("version %d kind %s, want 12 king-bucket", h.Version, h.Kind())
	}
	if h.LayerSizes[0] != 768 || h.LayerSizes[1] != 4 {
		t.Errorf("LayerSizes = %v", h.LayerSizes)
	}
	if h.LayerVariants[1] != 3 {
		t.Errorf("LayerVariants = %v", h.LayerVariants)
	}
}

func TestReadHeaderTruncated(t *testing.T) {
	legacy := netfiletest.Legacy{Inputs: 8, Width: 4}.Bytes()
	kb := netfiletest.KingBucket{Accumulator: 2, Buckets: 1, Variants: 1}.Bytes()

	tests := []struct {
		name  string
		data  []byte
		magic uint32
	}{
		{"empty", nil, 0x1},
		{"magic only", legacy[:4], 0x1},
		{"legacy prefix", legacy[:15], 0x1},
		{"king-bucket prefix", kb[:39], MagicNumber},
		{"king-bucket legacy-sized", kb[:16], MagicNumber},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadHeader(tt.data, tt.magic)
			if !errors.Is(err, ErrTruncated) {
				t.Errorf("error = %v, want ErrTruncated", err)
			}
		})
	}

	if _, err := ReadHeader(legacy[:16], 0x1); err != nil {
		t.Errorf("16 bytes should be enough for a legacy header: %v", err)
	}
	if _, err := ReadHeader(kb[:40], MagicNumber); err != nil {
		t.Errorf("40 bytes should be enough for a king-bucket header: %v", err)
	}
}

func TestReadHeaderBadMagic(t *testing.T) {
	data := netfiletest.Legacy{Magic: 0xdeadbeef, Inputs: 8, Width: 4}.Bytes()
	_, err := ReadHeader(data, MagicNumber)
	if !errors.Is(err, ErrBadMagic) {
		t.Fatalf("error = %v, want ErrBadMagic", err)
	}
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("error %T is not a *FormatError", err)
	}
}

func TestReadHeaderVersionZero(t *testing.T) {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, []uint32{MagicNumber, 0, 8, 4})
	if _, err := ReadHeader(buf.Bytes(), MagicNumber); !errors.Is(err, ErrUnsupportedVersion) {
		t.Errorf("error = %v, want ErrUnsupportedVersion", err)
	}
}

func TestLegacyWeightAt(t *testing.T) {
	const inputs, width = 5, 3
	data := netfiletest.Legacy{
		Inputs: inputs,
		Width:  width,
		Weight: golden,
		Bias:   func(col int) int16 { return int16(-100 - col) },
		Output: func(col int) int16 { return int16(200 + col) },
	}.Bytes()

	n, err := NewNetwork(data, legacyOptions())
	if err != nil {
		t.Fatalf("NewNetwork failed: %v", err)
	}
	if err := n.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if n.Layout.Kind() != Legacy || n.Layout.Rows() != inputs || n.Layout.Columns() != width {
		t.Fatalf("layout %s %dx%d", n.Layout.Kind(), n.Layout.Rows(), n.Layout.Columns())
	}

	for row := 0; row < inputs; row++ {
		for col := 0; col < width; col++ {
			w, err := n.WeightAt(row, col, 0)
			if err != nil {
				t.Fatalf("WeightAt(%d, %d) failed: %v", row, col, err)
			}
			if want := golden(row, col, 0); w != want {
				t.Errorf("WeightAt(%d, %d) = %d, want %d", row, col, w, want)
			}
		}
	}
	for col := 0; col < width; col++ {
		if b, _ := n.BiasAt(col); b != int16(-100-col) {
			t.Errorf("BiasAt(%d) = %d", col, b)
		}
		if o, _ := n.OutputWeightAt(0, col); o != int16(200+col) {
			t.Errorf("OutputWeightAt(0, %d) = %d", col, o)
		}
	}
	if n.Layout.Size() != len(data) {
		t.Errorf("Size() = %d, file is %d bytes", n.Layout.Size(), len(data))
	}
}

func TestLegacyOffsets(t *testing.T) {
	l := LegacyLayout{HeaderSize: 64, Inputs: 8, Width: 4}
	if got := l.WeightOffset(2, 3, 0); got != 64+2*(4*2+3) {
		t.Errorf("WeightOffset(2, 3) = %d", got)
	}
	if got := l.OutputOffset(0, 0); got != 64+2*4*9 {
		t.Errorf("OutputOffset(0, 0) = %d", got)
	}
	if got := l.Size(); got != 144 {
		t.Errorf("Size() = %d, want 144", got)
	}
	if l.FeatureSet() != board.PrunedFeatures || l.Curve() != palette.LinearSaturating {
		t.Error("legacy layout should use pruned features and the linear curve")
	}
}

func TestKingBucketWeightAt(t *testing.T) {
	fixture := netfiletest.KingBucket{
		Accumulator: 3,
		Buckets:     2,
		Variants:    2,
		Weight:      golden,
		Bias:        func(col int) int16 { return int16(-col - 1) },
		Output:      func(v, col int) int16 { return int16(v*100 + col) },
	}
	data := fixture.Bytes()

	opts := DefaultOptions()
	opts.NumKingBuckets = 2
	n, err := NewNetwork(data, opts)
	if err != nil {
		t.Fatalf("NewNetwork failed: %v", err)
	}
	if err := n.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	l := n.Layout
	if l.Kind() != KingBucket || l.Rows() != 768 || l.Columns() != 3 || l.Buckets() != 2 || l.Variants() != 2 {
		t.Fatalf("layout %s rows %d cols %d buckets %d variants %d", l.Kind(), l.Rows(), l.Columns(), l.Buckets(), l.Variants())
	}

	for bucket := 0; bucket < 2; bucket++ {
		for _, row := range []int{0, 1, 47, 383, 767} {
			for col := 0; col < 3; col++ {
				w, err := n.WeightAt(row, col, bucket)
				if err != nil {
					t.Fatalf("WeightAt(%d, %d, %d) failed: %v", row, col, bucket, err)
				}
				if want := golden(row, col, bucket); w != want {
					t.Errorf("WeightAt(%d, %d, %d) = %d, want %d", row, col, bucket, w, want)
				}
			}
		}
	}
	for col := 0; col < 3; col++ {
		if b, _ := n.BiasAt(col); b != int16(-col-1) {
			t.Errorf("BiasAt(%d) = %d", col, b)
		}
		for v := 0; v < 2; v++ {
			if o, _ := n.OutputWeightAt(v, col); o != int16(v*100+col) {
				t.Errorf("OutputWeightAt(%d, %d) = %d", v, col, o)
			}
		}
	}
}

func TestVariantPaddingBoundary(t *testing.T) {
	// layerSize1 = 10: 2*(10+1) = 22 bytes of weights, padded to 64.
	fixture := netfiletest.KingBucket{Accumulator: 5, Buckets: 2, Variants: 3}
	data := fixture.Bytes()

	l := KingBucketLayout{HeaderSize: 64, Accumulator: 5, NumKingBuckets: 2, NumVariants: 3}
	if got := l.VariantStride(); got != 64 {
		t.Fatalf("VariantStride() = %d, want 64", got)
	}

	base := 64 + 2*5*(768*2+1)
	if got := l.OutputOffset(0, 0); got != base {
		t.Errorf("OutputOffset(0, 0) = %d, want %d", got, base)
	}
	for v := 0; v < 3; v++ {
		if got := l.OutputOffset(v, 0); got != base+64*v {
			t.Errorf("OutputOffset(%d, 0) = %d, want %d", v, got, base+64*v)
		}
	}
	// The padding of the last variant ends exactly at end of file.
	if got := l.Size(); got != len(data) {
		t.Errorf("Size() = %d, fixture is %d bytes", got, len(data))
	}
	if got := l.BiasOffset(0); got != base-2*5 {
		t.Errorf("BiasOffset(0) = %d, want %d", got, base-2*5)
	}
}

func TestWeightAtOutOfRange(t *testing.T) {
	data := netfiletest.Legacy{Inputs: 4, Width: 2}.Bytes()
	n, err := NewNetwork(data, legacyOptions())
	if err != nil {
		t.Fatalf("NewNetwork failed: %v", err)
	}

	for _, idx := range [][3]int{{-1, 0, 0}, {4, 0, 0}, {0, 2, 0}, {0, 0, 1}} {
		if _, err := n.WeightAt(idx[0], idx[1], idx[2]); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("WeightAt%v error = %v, want ErrOutOfRange", idx, err)
		}
	}
	if _, err := n.OutputWeightAt(1, 0); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("OutputWeightAt(1, 0) error = %v, want ErrOutOfRange", err)
	}
}

func TestShortFile(t *testing.T) {
	data := netfiletest.Legacy{Inputs: 4, Width: 2}.Bytes()
	short := data[:len(data)-1]

	n, err := NewNetwork(short, legacyOptions())
	if err != nil {
		t.Fatalf("NewNetwork failed: %v", err)
	}
	if err := n.Validate(); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Validate error = %v, want ErrOutOfRange", err)
	}
	// The last output weight straddles the end of the file.
	_, err = n.OutputWeightAt(0, 1)
	var fe *FormatError
	if !errors.As(err, &fe) || fe.Kind != ErrOutOfRange {
		t.Fatalf("OutputWeightAt error = %v, want *FormatError(ErrOutOfRange)", err)
	}
	if fe.Offset != len(data)-2 || fe.Length != len(short) {
		t.Errorf("offset %d length %d", fe.Offset, fe.Length)
	}
}

func TestBadDimensions(t *testing.T) {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, []uint32{MagicNumber, 12, 768, 5, 0, 0, 0, 1, 0, 0})
	if _, err := NewNetwork(buf.Bytes(), DefaultOptions()); !errors.Is(err, ErrBadDimensions) {
		t.Errorf("odd accumulator: error = %v, want ErrBadDimensions", err)
	}

	data := netfiletest.Legacy{Inputs: 705, Width: 1}.Bytes()
	n, err := NewNetwork(data, legacyOptions())
	if err != nil {
		t.Fatalf("NewNetwork failed: %v", err)
	}
	if err := n.Validate(); !errors.Is(err, ErrBadDimensions) {
		t.Errorf("705 legacy inputs: error = %v, want ErrBadDimensions", err)
	}

	opts := legacyOptions()
	opts.HeaderSize = 8
	if _, err := NewNetwork(netfiletest.Legacy{Inputs: 1, Width: 1}.Bytes(), opts); !errors.Is(err, ErrBadDimensions) {
		t.Errorf("header size 8: error = %v, want ErrBadDimensions", err)
	}
}

func TestLegacyFullInputLayer(t *testing.T) {
	data := netfiletest.Legacy{Inputs: 704, Width: 4, Weight: golden}.Bytes()
	n, err := NewNetwork(data, legacyOptions())
	if err != nil {
		t.Fatalf("NewNetwork failed: %v", err)
	}
	if err := n.Validate(); err != nil {
		t.Fatalf("704 legacy inputs rejected: %v", err)
	}
	w, err := n.WeightAt(703, 3, 0)
	if err != nil {
		t.Fatalf("WeightAt failed: %v", err)
	}
	if want := golden(703, 3, 0); w != want {
		t.Errorf("WeightAt(703, 3) = %d, want %d", w, want)
	}
}

func TestValidateOverflow(t *testing.T) {
	tests := []struct {
		name   string
		prefix []uint32
	}{
		{"wide accumulator and variants", []uint32{MagicNumber, 12, 768, 0xFFFFFFFE, 1, 0, 0, 1 << 30, 0, 0}},
		{"wide accumulator", []uint32{MagicNumber, 12, 768, 0xFFFFFFFE, 1, 0, 0, 1, 0, 0}},
		{"legacy matrix", []uint32{MagicNumber, 1, 0xFFFFFFFF, 0xFFFFFFFF}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			binary.Write(&buf, binary.LittleEndian, tt.prefix)
			data := make([]byte, 128)
			copy(data, buf.Bytes())

			n, err := NewNetwork(data, DefaultOptions())
			if err != nil {
				t.Fatalf("NewNetwork failed: %v", err)
			}
			if err := n.Validate(); !errors.Is(err, ErrOutOfRange) {
				t.Errorf("Validate error = %v, want ErrOutOfRange", err)
			}
		})
	}
}

func TestLayoutSpan(t *testing.T) {
	layouts := []Layout{
		LegacyLayout{HeaderSize: 64, Inputs: 704, Width: 8},
		KingBucketLayout{HeaderSize: 64, Accumulator: 5, NumKingBuckets: 2, NumVariants: 3},
		KingBucketLayout{HeaderSize: 64, Accumulator: 512, NumKingBuckets: 11, NumVariants: 8},
	}
	for _, l := range layouts {
		n, ok := l.span()
		if !ok || n != uint64(l.Size()) {
			t.Errorf("%s span = (%d, %v), want (%d, true)", l.Kind(), n, ok, l.Size())
		}
	}

	if _, ok := (LegacyLayout{HeaderSize: 64, Inputs: -1, Width: 4}).span(); ok {
		t.Error("negative inputs accepted")
	}
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eval.pnn")
	if err := os.WriteFile(path, netfiletest.Legacy{Inputs: 2, Width: 2, Weight: netfiletest.Zero}.Bytes(), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	n, err := Open(path, legacyOptions())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if n.Len() != 64+2*2*3+2*2 {
		t.Errorf("Len() = %d", n.Len())
	}

	_, err = Open(filepath.Join(t.TempDir(), "missing.pnn"), legacyOptions())
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file error = %v, want os.ErrNotExist", err)
	}
}

func TestCeilToMultiple(t *testing.T) {
	tests := [][3]int{{22, 64, 64}, {64, 64, 64}, {65, 64, 128}, {0, 64, 0}, {4098, 64, 4160}}
	for _, tt := range tests {
		if got := CeilToMultiple(tt[0], tt[1]); got != tt[2] {
			t.Errorf("CeilToMultiple(%d, %d) = %d, want %d", tt[0], tt[1], got, tt[2])
		}
	}
}
