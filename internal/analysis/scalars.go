package analysis

import (
	"bytes"
	"encoding/json"

	"gonum.org/v1/gonum/stat"

	"github.com/gaitlab/stride.report/internal/kinematics"
)

// Series is the unreduced output of one metric: one value per detected cycle
// or repetition. Per-side metrics populate Sides instead of Values.
type Series struct {
	Values []float64                        `json:"values,omitempty"`
	Sides  map[kinematics.Side][]float64    `json:"sides,omitempty"`
	Unit   string                           `json:"unit"`
}

// Scalar is a metric reduced across cycles: mean, population standard
// deviation, and the fixed unit. Per-side metrics carry one mean per side.
type Scalar struct {
	Value float64                        `json:"value"`
	Std   float64                        `json:"std"`
	Sides map[kinematics.Side]float64    `json:"sides,omitempty"`
	Unit  string                         `json:"unit"`
}

// Reduce collapses a series to its scalar summary.
func (s Series) Reduce() Scalar {
	out := Scalar{Unit: s.Unit}
	if len(s.Sides) > 0 {
		out.Sides = make(map[kinematics.Side]float64, len(s.Sides))
		var all []float64
		for side, vals := range s.Sides {
			out.Sides[side] = stat.Mean(vals, nil)
			all = append(all, vals...)
		}
		out.Value = stat.Mean(all, nil)
		out.Std = popStd(all)
		return out
	}
	out.Value = stat.Mean(s.Values, nil)
	out.Std = popStd(s.Values)
	return out
}

func popStd(vals []float64) float64 {
	if len(vals) < 2 {
		return 0
	}
	return stat.PopStdDev(vals, nil)
}

// ScalarSet is a name-keyed, insertion-ordered collection of scalar results.
type ScalarSet struct {
	names  []string
	byName map[string]Scalar
}

// NewScalarSet returns an empty set.
func NewScalarSet() *ScalarSet {
	return &ScalarSet{byName: make(map[string]Scalar)}
}

// Add inserts or replaces a scalar, keeping first-insertion order.
func (s *ScalarSet) Add(name string, sc Scalar) {
	if _, ok := s.byName[name]; !ok {
		s.names = append(s.names, name)
	}
	s.byName[name] = sc
}

// Get returns the scalar for name.
func (s *ScalarSet) Get(name string) (Scalar, bool) {
	sc, ok := s.byName[name]
	return sc, ok
}

// Names returns the metric names in insertion order.
func (s *ScalarSet) Names() []string {
	return append([]string(nil), s.names...)
}

// Len returns the number of scalars in the set.
func (s *ScalarSet) Len() int { return len(s.names) }

// MarshalJSON writes the set as a JSON object with keys in insertion order.
func (s *ScalarSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range s.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(s.byName[name])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
