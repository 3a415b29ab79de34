package automation

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/rigidsim/internal/geom"
	"github.com/san-kum/rigidsim/internal/handle"
	"github.com/san-kum/rigidsim/internal/scene"
	"github.com/san-kum/rigidsim/internal/world"
)

var ErrInvalidAction = errors.New("automation: invalid action")

type ActionKind string

const (
	RemoveCollider ActionKind = "remove_collider"
	RemoveBody     ActionKind = "remove_body"
	RemoveJoint    ActionKind = "remove_joint"
	Impulse        ActionKind = "impulse"
	SetVelocity    ActionKind = "set_velocity"
	SetGravity     ActionKind = "set_gravity"
)

// Action is one scripted host call. The target is either a raw handle key
// or an index into the scene's tracked bodies. For remove_collider on a
// tracked body, the body's first collider at that tick is used.
type Action struct {
	Tick    uint64     `yaml:"tick"`
	Kind    ActionKind `yaml:"action"`
	Key     *uint64    `yaml:"key,omitempty"`
	Tracked *int       `yaml:"tracked,omitempty"`
	Vector  []float64  `yaml:"vector,omitempty"`
}

// Outcome records what an action did. Applied is false when the target was
// already gone.
type Outcome struct {
	Tick    uint64
	Kind    ActionKind
	Key     uint64
	Applied bool
}

type Script struct {
	Name    string   `yaml:"name"`
	Actions []Action `yaml:"actions"`
}

func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script %s: %w", path, err)
	}
	return ParseScript(data)
}

func ParseScript(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	s.sortActions()
	return &s, nil
}

func (s *Script) sortActions() {
	sort.SliceStable(s.Actions, func(i, j int) bool { return s.Actions[i].Tick < s.Actions[j].Tick })
}

func (s *Script) Validate() error {
	for i, a := range s.Actions {
		if err := a.validate(); err != nil {
			return fmt.Errorf("action %d: %w", i, err)
		}
	}
	return nil
}

func (a Action) validate() error {
	switch a.Kind {
	case RemoveCollider, RemoveBody, RemoveJoint:
	case Impulse, SetVelocity:
		if _, err := geom.VectorFromComponents(a.Vector); err != nil {
			return err
		}
	case SetGravity:
		if _, err := geom.VectorFromComponents(a.Vector); err != nil {
			return err
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidAction, a.Kind)
	}
	if (a.Key == nil) == (a.Tracked == nil) {
		return fmt.Errorf("%w: %s needs exactly one of key or tracked", ErrInvalidAction, a.Kind)
	}
	if a.Kind == RemoveJoint && a.Tracked != nil {
		return fmt.Errorf("%w: remove_joint needs a key", ErrInvalidAction)
	}
	return nil
}

// Runner applies a script to a world as it is stepped.
type Runner struct {
	script   *Script
	tracked  []handle.Handle
	logger   *zap.Logger
	next     int
	outcomes []Outcome
}

func NewRunner(s *Script, info scene.Info, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	sorted := &Script{Name: s.Name, Actions: append([]Action(nil), s.Actions...)}
	sorted.sortActions()
	return &Runner{script: sorted, tracked: info.Tracked, logger: logger}
}

// BeforeStep applies every action scheduled at or before tick.
func (r *Runner) BeforeStep(w *world.World, tick uint64) error {
	for r.next < len(r.script.Actions) && r.script.Actions[r.next].Tick <= tick {
		a := r.script.Actions[r.next]
		r.next++
		out, err := r.apply(w, a)
		if err != nil {
			return fmt.Errorf("%s: %w", a.Kind, err)
		}
		out.Tick = tick
		r.outcomes = append(r.outcomes, out)
		r.logger.Debug("script action",
			zap.String("action", string(a.Kind)),
			zap.Uint64("tick", tick),
			zap.Uint64("key", out.Key),
			zap.Bool("applied", out.Applied),
		)
	}
	return nil
}

func (r *Runner) Outcomes() []Outcome { return r.outcomes }

// Done reports whether every action has been applied.
func (r *Runner) Done() bool { return r.next >= len(r.script.Actions) }

func (r *Runner) target(a Action) handle.Handle {
	if a.Key != nil {
		return handle.FromRaw(*a.Key)
	}
	if *a.Tracked < 0 || *a.Tracked >= len(r.tracked) {
		return handle.Invalid
	}
	return r.tracked[*a.Tracked]
}

func (r *Runner) apply(w *world.World, a Action) (Outcome, error) {
	out := Outcome{Kind: a.Kind}
	var err error

	switch a.Kind {
	case SetGravity:
		g, _ := geom.VectorFromComponents(a.Vector)
		w.SetGravity(g)
		out.Applied = true

	case RemoveCollider:
		key := r.colliderKey(w, a)
		out.Key = key
		out.Applied, err = w.RemoveCollider(key)

	case RemoveBody:
		h := r.target(a)
		out.Key = h.Raw()
		out.Applied, err = w.RemoveRigidBody(h)

	case RemoveJoint:
		h := r.target(a)
		out.Key = h.Raw()
		out.Applied, err = w.RemoveJoint(h)

	case Impulse:
		h := r.target(a)
		v, _ := geom.VectorFromComponents(a.Vector)
		out.Key = h.Raw()
		out.Applied = w.ApplyImpulse(h, v)

	case SetVelocity:
		h := r.target(a)
		v, _ := geom.VectorFromComponents(a.Vector)
		out.Key = h.Raw()
		out.Applied = w.SetLinvel(h, v)
	}
	return out, err
}

func (r *Runner) colliderKey(w *world.World, a Action) uint64 {
	if a.Key != nil {
		return *a.Key
	}
	body, ok := w.Body(r.target(a))
	if !ok || len(body.Colliders()) == 0 {
		return handle.Invalid.Raw()
	}
	return body.Colliders()[0].Raw()
}
