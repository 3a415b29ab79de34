package scene

import (
	"math"
	"testing"

	"github.com/san-kum/rigidsim/internal/config"
	"github.com/san-kum/rigidsim/internal/geom"
	"github.com/san-kum/rigidsim/internal/world"
)

func newWorld(t *testing.T) *world.World {
	t.Helper()
	w, err := world.New(world.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	return w
}

func depth(width int) int {
	if geom.Dim == 3 {
		return width
	}
	return 1
}

func TestBuildCounts(t *testing.T) {
	tests := []struct {
		name    string
		scene   Scene
		args    config.SceneConfig
		bodies  int
		joints  int
		tracked int
	}{
		{"drop", NewDrop(), config.SceneConfig{Count: 3}, 4, 0, 3},
		{"tower", NewTower(), config.SceneConfig{Width: 3, Height: 4}, 1 + 3*4*depth(3), 0, 1},
		{"wrecking ball", NewWreckingBall(), config.SceneConfig{Width: 2, Height: 2}, 1 + 2*2*depth(2) + 2, 1, 1},
		{"springs", NewSprings(), config.SceneConfig{Count: 4}, 1 + 4*2, 4, 4},
		{"pyramid", NewPyramid(), config.SceneConfig{Height: 4}, 1 + 4 + 3 + 2 + 1, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newWorld(t)
			tt.scene.Configure(tt.args)
			info, err := tt.scene.Build(w)
			if err != nil {
				t.Fatalf("build: %v", err)
			}
			if info.Bodies != tt.bodies || len(w.Bodies()) != tt.bodies {
				t.Errorf("expected %d bodies, info says %d, world has %d", tt.bodies, info.Bodies, len(w.Bodies()))
			}
			if info.Joints != tt.joints || len(w.Joints()) != tt.joints {
				t.Errorf("expected %d joints, got %d", tt.joints, info.Joints)
			}
			if info.Colliders != len(w.Colliders()) {
				t.Errorf("info reports %d colliders, world has %d", info.Colliders, len(w.Colliders()))
			}
			if len(info.Tracked) != tt.tracked {
				t.Errorf("expected %d tracked bodies, got %d", tt.tracked, len(info.Tracked))
			}
		})
	}
}

func TestScenesStayConsistent(t *testing.T) {
	scenes := []Scene{NewDrop(), NewTower(), NewWreckingBall(), NewSprings(), NewPyramid()}

	for _, sc := range scenes {
		t.Run(sc.Name(), func(t *testing.T) {
			w := newWorld(t)
			sc.Configure(config.SceneConfig{Count: 3, Width: 2, Height: 3})
			if _, err := sc.Build(w); err != nil {
				t.Fatal(err)
			}
			for i := 0; i < 90; i++ {
				if err := w.Step(); err != nil {
					t.Fatalf("step %d: %v", i, err)
				}
			}
			if v := w.CheckInvariants(); len(v) != 0 {
				t.Errorf("invariant violations: %v", v)
			}
			for _, h := range w.Bodies() {
				b, _ := w.Body(h)
				if !geom.IsFinite(b.Position) || !geom.IsFinite(b.LinearVelocity) {
					t.Fatalf("body %v diverged: %v %v", h, b.Position, b.LinearVelocity)
				}
			}
		})
	}
}

func TestDropStartsInFreeFall(t *testing.T) {
	w := newWorld(t)
	info, err := NewDrop().Build(w)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Step(); err != nil {
		t.Fatal(err)
	}

	b, _ := w.Body(info.Tracked[0])
	dt := w.Params().Dt
	if math.Abs(b.LinearVelocity[geom.Y]+9.81*dt) > 1e-9 {
		t.Errorf("expected vy=%v, got %v", -9.81*dt, b.LinearVelocity[geom.Y])
	}
	if len(w.Contacts()) != 0 {
		t.Error("no contact expected on the first step")
	}
}

func TestWreckingBallRope(t *testing.T) {
	w := newWorld(t)
	wb := NewWreckingBall()
	wb.Configure(config.SceneConfig{Width: 2, Height: 2})
	info, err := wb.Build(w)
	if err != nil {
		t.Fatal(err)
	}

	if len(info.Tracked) != 1 {
		t.Fatalf("expected only the ball to be tracked, got %d bodies", len(info.Tracked))
	}
	ball, _ := w.Body(info.Tracked[0])
	if ball.Mass() != wb.BallMass {
		t.Fatalf("tracked body has mass %v, the ball has %v", ball.Mass(), wb.BallMass)
	}

	for i := 0; i < 60; i++ {
		if err := w.Step(); err != nil {
			t.Fatal(err)
		}
		b, _ := w.Body(info.Tracked[0])
		if d := b.Position.Sub(wb.Anchor).Len(); d > wb.RopeLength+0.25 {
			t.Fatalf("step %d: ball %v from the anchor, rope is %v", i, d, wb.RopeLength)
		}
	}
}

func TestSpringsDampingSweep(t *testing.T) {
	s := NewSprings()
	critical := 2 * math.Sqrt(s.Stiffness)

	if got := s.Damping(0, 1); got != 0 {
		t.Errorf("first spring should be undamped, got %v", got)
	}
	if got := s.Damping(s.Count/2, 1); math.Abs(got-critical) > 1e-9 {
		t.Errorf("middle spring should be critically damped, got %v want %v", got, critical)
	}

	s.Configure(config.SceneConfig{DampingRatio: 0.5})
	if got := s.Damping(7, 1); math.Abs(got-critical/2) > 1e-9 {
		t.Errorf("fixed ratio ignored, got %v", got)
	}
}

func TestConfigureKeepsDefaults(t *testing.T) {
	tw := NewTower()
	tw.Configure(config.SceneConfig{})
	if tw.Width != 5 || tw.Height != 15 {
		t.Errorf("empty args should keep defaults, got %dx%d", tw.Width, tw.Height)
	}
}
