package topology

import "fmt"

type Kind int

const (
	Structural Kind = iota
	Shear
	Bend
)

func (k Kind) String() string {
	switch k {
	case Structural:
		return "structural"
	case Shear:
		return "shear"
	case Bend:
		return "bend"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Link is a spring endpoint pair. A is always the lower index.
type Link struct {
	A, B int
	Kind Kind
}

// offsets are forward-only so each pair is linked exactly once.
var (
	structuralOffsets = [][2]int{{0, 1}, {1, 0}}
	shearOffsets      = [][2]int{{1, 1}, {1, -1}}
	bendOffsets       = [][2]int{{0, 2}, {2, 0}}
)

func buildLinks(rows, cols int, shear, bend bool) []Link {
	links := make([]Link, 0, rows*cols*6)
	add := func(offsets [][2]int, kind Kind) {
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				for _, o := range offsets {
					r, c := i+o[0], j+o[1]
					if r < 0 || r >= rows || c < 0 || c >= cols {
						continue
					}
					a, b := i*cols+j, r*cols+c
					if b < a {
						a, b = b, a
					}
					links = append(links, Link{A: a, B: b, Kind: kind})
				}
			}
		}
	}

	add(structuralOffsets, Structural)
	if shear {
		add(shearOffsets, Shear)
	}
	if bend {
		add(bendOffsets, Bend)
	}
	return links
}

// CountLinks returns the number of links of each kind.
func CountLinks(links []Link) map[Kind]int {
	counts := make(map[Kind]int, 3)
	for _, l := range links {
		counts[l.Kind]++
	}
	return counts
}
