// Package stats summarizes the value ranges of a network's weights.
package stats

import (
	"fmt"
	"log"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/hailam/netview/internal/board"
	"github.com/hailam/netview/internal/netfile"
	"github.com/hailam/netview/internal/palette"
)

// Range describes the distribution of a group of quantized values.
type Range struct {
	Count  int
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64
}

func newRange(values []float64) Range {
	if len(values) == 0 {
		return Range{}
	}
	mean, std := stat.MeanStdDev(values, nil)
	return Range{
		Count:  len(values),
		Min:    floats.Min(values),
		Max:    floats.Max(values),
		Mean:   mean,
		StdDev: std,
	}
}

// Feature locates one input weight: the piece and square of its row and
// the accumulator column.
type Feature struct {
	Piece  board.Piece
	Square board.Square
	Column int
}

func (f Feature) String() string {
	return fmt.Sprintf("%s%s column %d", f.Piece, f.Square, f.Column)
}

// Summary holds the ranges of every rendered weight group.
type Summary struct {
	Bucket  int
	Weights Range // input weights of the rendered bucket
	MinAt   Feature
	MaxAt   Feature
	Biases  Range // accumulator biases
	Outputs Range // output weights over all variants
	Curve   palette.Curve
}

// Summarize reads every weight of one king bucket, the accumulator biases
// and the output weights.
func Summarize(net *netfile.Network, bucket int, curve palette.Curve) (Summary, error) {
	l := net.Layout
	s := Summary{Bucket: bucket, Curve: curve}

	weights := make([]float64, 0, l.Rows()*l.Columns())
	for row := 0; row < l.Rows(); row++ {
		for col := 0; col < l.Columns(); col++ {
			w, err := net.WeightAt(row, col, bucket)
			if err != nil {
				return s, err
			}
			weights = append(weights, float64(w))
		}
	}
	s.Weights = newRange(weights)
	if len(weights) > 0 {
		mapper := board.Mapper{Set: l.FeatureSet()}
		var err error
		if s.MinAt, err = locate(mapper, floats.MinIdx(weights), l.Columns()); err != nil {
			return s, err
		}
		if s.MaxAt, err = locate(mapper, floats.MaxIdx(weights), l.Columns()); err != nil {
			return s, err
		}
	}

	biases := make([]float64, 0, l.Columns())
	for col := 0; col < l.Columns(); col++ {
		b, err := net.BiasAt(col)
		if err != nil {
			return s, err
		}
		biases = append(biases, float64(b))
	}
	s.Biases = newRange(biases)

	outputs := make([]float64, 0, l.Columns()*l.Variants())
	for v := 0; v < l.Variants(); v++ {
		for col := 0; col < l.Columns(); col++ {
			o, err := net.OutputWeightAt(v, col)
			if err != nil {
				return s, err
			}
			outputs = append(outputs, float64(o))
		}
	}
	s.Outputs = newRange(outputs)

	return s, nil
}

func locate(m board.Mapper, idx, columns int) (Feature, error) {
	p, sq, err := m.Segment(idx / columns)
	if err != nil {
		return Feature{}, err
	}
	return Feature{Piece: p, Square: sq, Column: idx % columns}, nil
}

// Log prints the summary, with the colors the extreme weights render as.
func (s Summary) Log() {
	log.Printf("Bucket %d weight range: [%.0f ... %.0f], mean %.2f, stddev %.2f (%d weights)",
		s.Bucket, s.Weights.Min, s.Weights.Max, s.Weights.Mean, s.Weights.StdDev, s.Weights.Count)
	log.Printf("Min weight at %s, max weight at %s", s.MinAt, s.MaxAt)
	log.Printf("Bias range: [%.0f ... %.0f]", s.Biases.Min, s.Biases.Max)
	log.Printf("Output weight range: [%.0f ... %.0f]", s.Outputs.Min, s.Outputs.Max)
	log.Printf("Extreme colors (%s curve): min %s, max %s", s.Curve,
		palette.Hex(palette.WeightToColor(int16(s.Weights.Min), s.Curve)),
		palette.Hex(palette.WeightToColor(int16(s.Weights.Max), s.Curve)))
}
