package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/clothsim/internal/sim"
)

type ExportData struct {
	RunMetadata
	Times     []float64          `json:"times"`
	Positions [][][3]float64     `json:"positions"`
	Metrics   map[string]float64 `json:"metrics"`
}

// ExportJSON writes the run description and every recorded frame as one
// indented JSON document.
func ExportJSON(w io.Writer, meta RunMetadata, result *sim.Result) error {
	data := ExportData{
		RunMetadata: meta,
		Times:       result.Times,
		Positions:   make([][][3]float64, len(result.Frames)),
		Metrics:     result.Metrics,
	}
	data.Steps = result.StepsTaken

	for i, f := range result.Frames {
		pts := make([][3]float64, len(f.Positions))
		for j, p := range f.Positions {
			pts[j] = [3]float64{p.X, p.Y, p.Z}
		}
		data.Positions[i] = pts
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
