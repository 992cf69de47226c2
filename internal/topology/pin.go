package topology

import (
	"fmt"

	"github.com/san-kum/clothsim/internal/dynamo"
)

// PinPolicy selects which grid points are anchored. It is configuration,
// never derived from the geometry.
type PinPolicy int

const (
	PinNone PinPolicy = iota
	PinTopRow
	PinEdgeColumns
	PinCorners
)

var pinNames = map[PinPolicy]string{
	PinNone:        "none",
	PinTopRow:      "top-row",
	PinEdgeColumns: "edge-columns",
	PinCorners:     "corners",
}

func (p PinPolicy) String() string {
	if s, ok := pinNames[p]; ok {
		return s
	}
	return fmt.Sprintf("pin(%d)", int(p))
}

func ParsePinPolicy(s string) (PinPolicy, error) {
	for p, name := range pinNames {
		if name == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("%w: pin policy %q", dynamo.ErrUnknownName, s)
}

// Pinned returns a per-point pin mask for the policy.
func (g *Grid) Pinned(policy PinPolicy) []bool {
	mask := make([]bool, g.Len())
	switch policy {
	case PinTopRow:
		for j := 0; j < g.Cols; j++ {
			mask[g.Index(0, j)] = true
		}
	case PinEdgeColumns:
		for i := 0; i < g.Rows; i++ {
			mask[g.Index(i, 0)] = true
			mask[g.Index(i, g.Cols-1)] = true
		}
	case PinCorners:
		mask[g.Index(0, 0)] = true
		mask[g.Index(0, g.Cols-1)] = true
	}
	return mask
}
