package export

import (
	"strings"
	"testing"

	"github.com/san-kum/rigidsim/internal/analysis"
	"github.com/san-kum/rigidsim/internal/scene"
	"github.com/san-kum/rigidsim/internal/world"
)

func TestScenePlacesColliders(t *testing.T) {
	s := world.Snapshot{
		Bodies: []world.BodyState{{Handle: 1, Position: []float64{2, 3, 0}}},
		Colliders: []world.ColliderState{
			{Handle: 5, Parent: 1, Shape: "ball", Radius: 1, Offset: []float64{0, 0, 0}},
		},
	}
	out := Scene(s, nil, 100, 100)
	if !strings.Contains(out, `<circle cx="50.0" cy="50.0" r="41.7"`) {
		t.Errorf("ball not centered:\n%s", out)
	}
}

func TestSceneFromWorld(t *testing.T) {
	w, err := world.New(world.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := scene.NewWreckingBall().Build(w); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 30; i++ {
		if err := w.Step(); err != nil {
			t.Fatal(err)
		}
	}

	path := []analysis.Point{{X: -3, Y: 8}, {X: -2, Y: 7}, {X: 0, Y: 5}}
	out := Scene(w.Snapshot(), [][]analysis.Point{path}, 400, 300)

	tests := []struct {
		name, want string
	}{
		{"header", `<?xml version="1.0"`},
		{"ball", "<circle"},
		{"cuboid", "<rect x="},
		{"rope", "stroke-dasharray"},
		{"path", pathColors[0]},
		{"footer", "</svg>\n"},
	}
	for _, tt := range tests {
		if !strings.Contains(out, tt.want) {
			t.Errorf("%s: missing %q", tt.name, tt.want)
		}
	}
}

func TestPath(t *testing.T) {
	if Path([]analysis.Point{{X: 1, Y: 1}}, 100, 100, "#fff") != "" {
		t.Error("a single point is not a path")
	}
	points := analysis.Zip([]float64{0, 1, 2, 3}, []float64{0, 1, 0, 1})
	out := Path(points, 200, 100, "#00ff00")
	if got := strings.Count(out, " L"); got != 3 {
		t.Errorf("%d segments, want 3", got)
	}
	if !strings.Contains(out, `stroke="#00ff00"`) {
		t.Error("stroke color not applied")
	}
}
