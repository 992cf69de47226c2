package topology

import "testing"

func TestStripIndices_Restart(t *testing.T) {
	idx, err := StripIndices(3, 3, LayoutRestart)
	if err != nil {
		t.Fatal(err)
	}

	want := []uint32{0, 3, 1, 4, 2, 5, RestartIndex, 3, 6, 4, 7, 5, 8}
	if len(idx) != len(want) {
		t.Fatalf("got %v, want %v", idx, want)
	}
	for i := range want {
		if idx[i] != want[i] {
			t.Fatalf("got %v, want %v", idx, want)
		}
	}
}

func TestStripIndices_Snake(t *testing.T) {
	idx, err := StripIndices(3, 3, LayoutSnake)
	if err != nil {
		t.Fatal(err)
	}

	want := []uint32{0, 3, 1, 4, 2, 5, 8, 4, 7, 3, 6}
	if len(idx) != len(want) {
		t.Fatalf("got %v, want %v", idx, want)
	}
	for i := range want {
		if idx[i] != want[i] {
			t.Fatalf("got %v, want %v", idx, want)
		}
	}
	for _, v := range idx {
		if v == RestartIndex {
			t.Fatal("snake strip must not contain the restart sentinel")
		}
	}
}

func TestTriangles_CoverGrid(t *testing.T) {
	sizes := [][2]int{{2, 2}, {3, 3}, {4, 7}, {9, 5}}

	for _, layout := range []Layout{LayoutRestart, LayoutSnake} {
		for _, sz := range sizes {
			g, err := Generate(Options{Rows: sz[0], Cols: sz[1], Spacing: 1, Layout: layout})
			if err != nil {
				t.Fatal(err)
			}

			tris := Triangles(g.Indices, g.Positions)
			if len(tris) != g.TriangleCount() {
				t.Errorf("%s %dx%d: %d triangles, want %d", layout, sz[0], sz[1], len(tris), g.TriangleCount())
			}

			// every grid cell is covered by exactly two triangles
			cells := make(map[[2]int]int)
			for _, tri := range tris {
				minR, minC := g.Rows, g.Cols
				for _, v := range tri {
					r, c := g.RowCol(int(v))
					if r < minR {
						minR = r
					}
					if c < minC {
						minC = c
					}
				}
				cells[[2]int{minR, minC}]++
			}
			for cell, n := range cells {
				if n != 2 {
					t.Errorf("%s %dx%d: cell %v covered %d times", layout, sz[0], sz[1], cell, n)
				}
			}
		}
	}
}

func TestParseLayout(t *testing.T) {
	tests := map[string]Layout{"": LayoutRestart, "restart": LayoutRestart, "snake": LayoutSnake, "boustrophedon": LayoutSnake}
	for in, want := range tests {
		got, err := ParseLayout(in)
		if err != nil || got != want {
			t.Errorf("ParseLayout(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseLayout("spiral"); err == nil {
		t.Error("expected error for unknown layout")
	}
}

func TestTriangles_SnakeTurnOnDeformedGrid(t *testing.T) {
	g, err := Generate(Options{Rows: 3, Cols: 3, Spacing: 1, Layout: LayoutSnake})
	if err != nil {
		t.Fatal(err)
	}
	if n := len(Triangles(g.Indices, g.Positions)); n != g.TriangleCount() {
		t.Fatalf("rest grid: %d triangles, want %d", n, g.TriangleCount())
	}

	// the turn triangle 2-5-8 stops being collinear once 5 moves
	moved := append(g.Positions[:0:0], g.Positions...)
	moved[g.Index(1, 2)].X += 0.3
	if n := len(Triangles(g.Indices, moved)); n != g.TriangleCount()+1 {
		t.Errorf("deformed grid: %d triangles, want %d", n, g.TriangleCount()+1)
	}
}
