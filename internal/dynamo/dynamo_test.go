package dynamo

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"sync/atomic"
	"testing"
)

func TestVec3Ops(t *testing.T) {
	a, b := V3(1, 2, 3), V3(4, -1, 0.5)
	if got := a.Add(b); got != V3(5, 1, 3.5) {
		t.Errorf("Add = %v", got)
	}
	if got := a.Sub(b); got != V3(-3, 3, 2.5) {
		t.Errorf("Sub = %v", got)
	}
	if got := a.Dot(b); got != 3.5 {
		t.Errorf("Dot = %g", got)
	}
	if got := V3(3, 4, 0).Len(); got != 5 {
		t.Errorf("Len = %g", got)
	}
	if got := V3(0, 0, 0).Dist(V3(0, 3, 4)); got != 5 {
		t.Errorf("Dist = %g", got)
	}
	if got := a.Neg(); got != V3(-1, -2, -3) {
		t.Errorf("Neg = %v", got)
	}
}

func TestNormalize(t *testing.T) {
	n := V3(0, 0, 2).Normalize()
	if !n.ApproxEqual(V3(0, 0, 1), 1e-12) {
		t.Errorf("Normalize = %v", n)
	}
	if got := V3(1e-9, 0, 0).Normalize(); got != Zero3 {
		t.Errorf("near-zero Normalize = %v, want zero", got)
	}
}

func TestClampLen(t *testing.T) {
	tests := []struct {
		v    Vec3
		max  float64
		want float64
	}{
		{V3(3, 4, 0), 1, 1},
		{V3(3, 4, 0), 10, 5},
		{V3(3, 4, 0), 0, 5},
		{V3(3, 4, 0), -1, 5},
	}
	for _, tt := range tests {
		if got := tt.v.ClampLen(tt.max).Len(); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("ClampLen(%v, %g) len = %g, want %g", tt.v, tt.max, got, tt.want)
		}
	}
}

func TestIsFinite(t *testing.T) {
	if !V3(1, 2, 3).IsFinite() {
		t.Error("finite vector reported non-finite")
	}
	for _, v := range []Vec3{V3(math.NaN(), 0, 0), V3(0, math.Inf(1), 0), V3(0, 0, math.Inf(-1))} {
		if v.IsFinite() {
			t.Errorf("%v reported finite", v)
		}
	}
}

func TestFrameCloneAndValidity(t *testing.T) {
	f := Frame{Step: 3, Time: 0.05, Positions: []Vec3{V3(1, 2, 3)}, Velocities: []Vec3{V3(0, -1, 0)}}
	c := f.Clone()
	c.Positions[0].X = 99
	if f.Positions[0].X != 1 {
		t.Error("Clone shares position storage")
	}
	if c.Step != 3 || c.Time != 0.05 {
		t.Errorf("Clone header = %d %g", c.Step, c.Time)
	}
	if !f.IsValid() {
		t.Error("finite frame invalid")
	}
	f.Velocities[0].Y = math.NaN()
	if f.IsValid() {
		t.Error("NaN velocity accepted")
	}
}

func TestSimError(t *testing.T) {
	err := SimError{Time: 1.5, Step: 90, Message: "step failed", Wrapped: ErrInvalidState}
	if !errors.Is(err, ErrInvalidState) {
		t.Error("SimError does not unwrap to its cause")
	}
	if msg := err.Error(); !strings.Contains(msg, "step 90") || !strings.Contains(msg, "step failed") {
		t.Errorf("Error() = %q", msg)
	}
}

func TestParallelForCoversRange(t *testing.T) {
	tests := []struct {
		n, workers, minChunk int
	}{
		{0, 4, 1},
		{1, 4, 1},
		{10, 1, 1},
		{10, 3, 1},
		{100, 8, 16},
		{1000, 7, 0},
	}
	for _, tt := range tests {
		hits := make([]int32, tt.n)
		var calls atomic.Int32
		ParallelFor(tt.n, tt.workers, tt.minChunk, func(start, end int) {
			calls.Add(1)
			for i := start; i < end; i++ {
				atomic.AddInt32(&hits[i], 1)
			}
		})
		for i, h := range hits {
			if h != 1 {
				t.Fatalf("n=%d workers=%d: index %d visited %d times", tt.n, tt.workers, i, h)
			}
		}
		if tt.workers > 0 && int(calls.Load()) > max(tt.workers, 1) {
			t.Errorf("n=%d workers=%d: %d chunks", tt.n, tt.workers, calls.Load())
		}
	}
}

func TestLogger(t *testing.T) {
	defer SetLogger(nil)

	if Logger().Enabled(context.Background(), slog.LevelError) {
		t.Error("default logger should be silent")
	}

	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	Logger().Warn("clamp engaged", "points", 3)
	if !strings.Contains(buf.String(), "clamp engaged") || !strings.Contains(buf.String(), "points=3") {
		t.Errorf("log output = %q", buf.String())
	}

	SetLogger(nil)
	buf.Reset()
	Logger().Error("dropped")
	if buf.Len() != 0 {
		t.Errorf("nil logger still writes: %q", buf.String())
	}
}
