package config

import "sort"

var Presets = map[string]*Config{
	// 30x30 sheet, 9.6 units wide, hanging from its top edge.
	"hanging": {
		Integrator: "euler", ForceModel: "damped", Dt: DefaultDt, Duration: 10,
		Grid: GridConfig{Rows: 30, Cols: 30, Spacing: 0.32, Height: 10, Layout: "restart", Pin: "top-row", Shear: true, Bend: true},
		Physics: PhysicsConfig{
			Gravity: [3]float64{0, -9.8, 0}, AirResistance: 0.0125, Mass: 0.1,
			Stiffness: 15, Damping: 0.96, BendStiffness: 0.036, BendDamping: 0.96,
			Substeps: 1, MaxDisplacement: 1,
		},
	},
	// 21x31 curtain held at both sides, light breeze.
	"curtain": {
		Integrator: "verlet", ForceModel: "damped", Dt: DefaultDt, Duration: 20,
		Grid: GridConfig{Rows: 21, Cols: 31, Spacing: 1.0 / 3.0, Height: 10, Layout: "snake", Pin: "edge-columns", Shear: true, Bend: true},
		Physics: PhysicsConfig{
			Gravity: [3]float64{0, -0.98, 0}, Wind: [3]float64{0, 0.01, -0.01}, AirResistance: 0.0125, Mass: 0.1,
			Stiffness: 120, Damping: 0.6, BendStiffness: 36, BendDamping: 0.6,
			Substeps: 1, MaxDisplacement: 1,
		},
	},
	// sheet dropped onto a sphere.
	"drape": {
		Integrator: "verlet", ForceModel: "damped", Dt: DefaultDt, Duration: 10,
		Grid: GridConfig{Rows: 21, Cols: 21, Spacing: 0.5, Height: 6, Layout: "restart", Pin: "none", Shear: true, Bend: true},
		Physics: PhysicsConfig{
			Gravity: [3]float64{0, -9.8, 0}, AirResistance: 0.0125, Mass: 0.1,
			Stiffness: 120, Damping: 0.6, BendStiffness: 36, BendDamping: 0.6,
			Substeps: 4, MaxDisplacement: 1,
		},
		Spheres: []SphereConfig{{Center: [3]float64{0, 4, 0}, Radius: 1}},
	},
	// top edge pinned in a strong gust.
	"flag": {
		Integrator: "verlet", ForceModel: "damped", Dt: DefaultDt, Duration: 10,
		Grid: GridConfig{Rows: 15, Cols: 25, Spacing: 0.25, Height: 8, Layout: "restart", Pin: "top-row", Shear: true, Bend: true},
		Physics: PhysicsConfig{
			Gravity: [3]float64{0, -9.8, 0}, Wind: [3]float64{0.3, 0, -0.6}, AirResistance: 0.0125, Mass: 0.1,
			Stiffness: 40, Damping: 0.8, BendStiffness: 2, BendDamping: 0.6,
			Substeps: 2, MaxDisplacement: 1,
		},
	},
	// small sheet resting on a unit sphere.
	"sphere": {
		Integrator: "verlet", ForceModel: "damped", Dt: DefaultDt, Duration: 6,
		Grid: GridConfig{Rows: 15, Cols: 15, Spacing: 0.2, Height: 3, Layout: "restart", Pin: "none", Shear: true, Bend: true},
		Physics: PhysicsConfig{
			Gravity: [3]float64{0, -9.8, 0}, AirResistance: 0.0125, Mass: 0.1,
			Stiffness: 15, Damping: 0.96, BendStiffness: 0.036, BendDamping: 0.96,
			Substeps: 4, MaxDisplacement: 1,
		},
		Spheres: []SphereConfig{{Center: [3]float64{0, 1.5, 0}, Radius: 1}},
	},
}

var descriptions = map[string]string{
	"hanging": "sheet hanging from its top edge",
	"curtain": "curtain held at both sides in a breeze",
	"drape":   "sheet dropped onto a sphere",
	"flag":    "flag in a strong gust",
	"sphere":  "small sheet resting on a sphere",
}

// Describe returns a one-line description of a preset.
func Describe(name string) string { return descriptions[name] }

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
