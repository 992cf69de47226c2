package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/clothsim/internal/dynamo"
	"github.com/san-kum/clothsim/internal/sim"
)

func sampleResult() *sim.Result {
	return &sim.Result{
		Frames: []dynamo.Frame{
			{Step: 0, Time: 0, Positions: []dynamo.Vec3{dynamo.V3(0, 1, 0), dynamo.V3(1, 1, 0)}},
			{Step: 1, Time: 0.0166667, Positions: []dynamo.Vec3{dynamo.V3(0, 1, 0), dynamo.V3(1, 0.99, -0.01)}},
		},
		Times:      []float64{0, 0.0166667},
		StepsTaken: 1,
		Metrics: map[string]float64{
			"sag": 0.01,
		},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save(RunMetadata{Name: "test", Integrator: "verlet", ForceModel: "damped", Dt: 1.0 / 60, Duration: 1, Rows: 1, Cols: 2, Spacing: 0.5, Layout: "snake", Pin: "none"}, sampleResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Name != "test" || meta.Integrator != "verlet" {
		t.Errorf("unexpected metadata: %+v", meta)
	}
	if meta.Steps != 1 {
		t.Errorf("expected 1 step, got %d", meta.Steps)
	}
	if meta.Spacing != 0.5 || meta.Layout != "snake" || meta.Pin != "none" {
		t.Errorf("grid shape not kept: %+v", meta)
	}
	if meta.Metrics["sag"] != 0.01 {
		t.Errorf("expected sag 0.01, got %f", meta.Metrics["sag"])
	}

	frames, err := st.LoadFrames(runID)
	if err != nil {
		t.Fatalf("load frames failed: %v", err)
	}
	if len(frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(frames))
	}
	want := dynamo.V3(1, 0.99, -0.01)
	if got := frames[1].Positions[1]; !got.ApproxEqual(want, 1e-6) {
		t.Errorf("position = %+v, want %+v", got, want)
	}
	if frames[1].Step != 1 {
		t.Errorf("step = %d", frames[1].Step)
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	for _, name := range []string{"first", "second"} {
		if _, err := st.Save(RunMetadata{Name: name}, sampleResult()); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Name != "first" || runs[1].Name != "second" {
		t.Errorf("runs out of order: %s, %s", runs[0].Name, runs[1].Name)
	}
}

func TestStoreListMissingDir(t *testing.T) {
	runs, err := New(filepath.Join(t.TempDir(), "nope")).List()
	if err != nil || len(runs) != 0 {
		t.Errorf("List on missing dir = %v, %v", runs, err)
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	runID, err := st.Save(RunMetadata{Name: "test"}, sampleResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	for _, name := range []string{"metadata.json", "frames.csv"} {
		if _, err := os.Stat(filepath.Join(tmpDir, runID, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}
}

func TestLoadFramesMalformed(t *testing.T) {
	tmpDir := t.TempDir()
	runDir := filepath.Join(tmpDir, "broken")
	os.MkdirAll(runDir, 0755)
	os.WriteFile(filepath.Join(runDir, "frames.csv"), []byte("step,time,x0,y0,z0\n0,0,1,2,oops\n"), 0644)

	if _, err := New(tmpDir).LoadFrames("broken"); err == nil {
		t.Error("expected parse error")
	}
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportJSON(&buf, RunMetadata{Name: "demo", Integrator: "euler"}, sampleResult()); err != nil {
		t.Fatal(err)
	}

	var got ExportData
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Name != "demo" || got.Steps != 1 {
		t.Errorf("metadata lost: %+v", got.RunMetadata)
	}
	if len(got.Positions) != 2 || got.Positions[1][1] != [3]float64{1, 0.99, -0.01} {
		t.Errorf("positions = %v", got.Positions)
	}
	if got.Metrics["sag"] != 0.01 {
		t.Errorf("metrics = %v", got.Metrics)
	}
}
