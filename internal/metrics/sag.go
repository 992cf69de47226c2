package metrics

import (
	"math"

	"github.com/san-kum/clothsim/internal/dynamo"
)

// Sag measures how far the watched points have dropped below their height
// in the first observed frame. Value is the largest drop seen.
type Sag struct {
	indices []int
	start   []float64
	current float64
	max     float64
}

// NewSag watches the given point indices; nil watches every point.
func NewSag(indices []int) *Sag {
	return &Sag{indices: indices}
}

func (s *Sag) Name() string { return "sag" }

func (s *Sag) Observe(f dynamo.Frame) {
	idx := s.indices
	if idx == nil {
		idx = make([]int, len(f.Positions))
		for i := range idx {
			idx[i] = i
		}
		s.indices = idx
	}
	if s.start == nil {
		s.start = make([]float64, len(idx))
		for k, i := range idx {
			s.start[k] = f.Positions[i].Y
		}
	}

	var drop float64
	for k, i := range idx {
		drop = math.Max(drop, s.start[k]-f.Positions[i].Y)
	}
	s.current = drop
	s.max = math.Max(s.max, drop)
}

func (s *Sag) Value() float64 { return s.max }

// Current is the drop in the most recent frame.
func (s *Sag) Current() float64 { return s.current }

func (s *Sag) Reset() {
	s.start = nil
	s.current = 0
	s.max = 0
}
