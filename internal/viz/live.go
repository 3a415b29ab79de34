package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"go.uber.org/zap"

	"github.com/san-kum/rigidsim/internal/collision"
	"github.com/san-kum/rigidsim/internal/dynamics"
	"github.com/san-kum/rigidsim/internal/geom"
	"github.com/san-kum/rigidsim/internal/handle"
	"github.com/san-kum/rigidsim/internal/metrics"
	"github.com/san-kum/rigidsim/internal/scene"
	"github.com/san-kum/rigidsim/internal/world"
)

const (
	historyCapacity = 600
	panStep         = 8
	impulseSpeed    = 5.0
)

// Factory builds a fresh world. It is called on start and on every reset.
type Factory func() (*world.World, scene.Info, error)

type Options struct {
	Title string
	FPS   int
	// StepsPerFrame physics steps are taken per rendered frame.
	StepsPerFrame int
	// Canvas size in terminal cells.
	Width, Height int
	Theme         string
	Logger        *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.FPS <= 0 {
		o.FPS = 30
	}
	if o.StepsPerFrame <= 0 {
		o.StepsPerFrame = 1
	}
	if o.Width <= 0 {
		o.Width = 72
	}
	if o.Height <= 0 {
		o.Height = 22
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

type TickMsg time.Time

type shapeView struct {
	shape    collision.Shape
	center   geom.Vector
	fixed    bool
	selected bool
}

type segment struct {
	a, b geom.Vector
}

// frame holds what one tick looks like, so history can be replayed without
// touching the world.
type frame struct {
	tick     uint64
	time     float64
	energy   float64
	bodies   int
	pairs    int
	shapes   []shapeView
	joints   []segment
	contacts []geom.Vector
}

// Model steps a world and renders it to a braille canvas.
type Model struct {
	factory  Factory
	opts     Options
	world    *world.World
	info     scene.Info
	err      error
	camera   *Camera
	canvas   *Canvas
	theme    Theme
	styles   styles
	running  bool
	history  []frame
	playHead int
	selected int
	status   string
	showHelp bool
}

func NewModel(factory Factory, opts Options) Model {
	opts = opts.withDefaults()
	theme := GetTheme(opts.Theme)
	m := Model{
		factory:  factory,
		opts:     opts,
		camera:   NewCamera(10),
		canvas:   NewCanvas(opts.Width, opts.Height),
		theme:    theme,
		styles:   newStyles(theme),
		history:  make([]frame, 0, historyCapacity),
		playHead: -1,
	}
	m.reset()
	m.fit()
	return m
}

// Run shows the live view until the user quits.
func Run(factory Factory, opts Options) error {
	p := tea.NewProgram(NewModel(factory, opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.opts.FPS), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return m.tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ", "space":
			m.running = !m.running && m.err == nil
		case "n":
			m.running = false
			m.playHead = -1
			m.step()
		case "r":
			m.reset()
		case "[":
			m.scrub(-1)
		case "]":
			m.scrub(1)
		case "tab":
			if len(m.info.Tracked) > 0 {
				m.selected = (m.selected + 1) % len(m.info.Tracked)
				m.refresh()
			}
		case "d":
			m.removeBody()
		case "c":
			m.removeCollider()
		case "i":
			m.impulse()
		case "f":
			m.fit()
		case "t":
			m.theme = NextTheme(m.theme.Name)
			m.styles = newStyles(m.theme)
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		case "left":
			m.camera.Pan(-panStep, 0)
		case "right":
			m.camera.Pan(panStep, 0)
		case "up":
			m.camera.Pan(0, panStep)
		case "down":
			m.camera.Pan(0, -panStep)
		case "x":
			m.camera.Rotate(0, 0.1)
		case "X":
			m.camera.Rotate(0, -0.1)
		case "y":
			m.camera.Rotate(0.1, 0)
		case "Y":
			m.camera.Rotate(-0.1, 0)
		case "?":
			m.showHelp = !m.showHelp
		}
	case tea.WindowSizeMsg:
		m.canvas.Resize(max(msg.Width-56, 20), max(msg.Height-4, 8))
		m.fit()
	case TickMsg:
		if m.running {
			if m.playHead == -1 {
				m.step()
			} else {
				m.playHead++
				if m.playHead >= len(m.history) {
					m.playHead = -1
				}
			}
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) reset() {
	w, info, err := m.factory()
	m.history = m.history[:0]
	m.playHead = -1
	m.selected = 0
	if err != nil {
		m.world, m.err, m.running = nil, err, false
		m.status = err.Error()
		m.opts.Logger.Error("build world", zap.Error(err))
		return
	}
	m.world, m.info, m.err, m.running = w, info, nil, true
	m.status = info.String()
	m.record()
}

func (m *Model) step() {
	if m.world == nil || m.err != nil {
		return
	}
	for i := 0; i < m.opts.StepsPerFrame; i++ {
		if err := m.world.Step(); err != nil {
			m.err, m.running = err, false
			m.status = err.Error()
			m.opts.Logger.Error("step failed", zap.Uint64("tick", m.world.Tick()), zap.Error(err))
			break
		}
	}
	m.record()
}

func (m *Model) record() {
	if len(m.history) == historyCapacity {
		m.history = append(m.history[:0], m.history[1:]...)
	}
	m.history = append(m.history, m.capture())
}

// refresh redraws the newest frame after a host-side edit.
func (m *Model) refresh() {
	if m.world == nil || len(m.history) == 0 {
		return
	}
	m.history[len(m.history)-1] = m.capture()
}

func (m *Model) scrub(dir int) {
	if m.playHead == -1 {
		if len(m.history) == 0 {
			return
		}
		m.playHead = len(m.history) - 1
		m.running = false
	}
	m.playHead = max(m.playHead+dir, 0)
	if m.playHead >= len(m.history) {
		m.playHead = -1
	}
}

func (m *Model) current() frame {
	if m.playHead >= 0 && m.playHead < len(m.history) {
		return m.history[m.playHead]
	}
	if len(m.history) == 0 {
		return frame{}
	}
	return m.history[len(m.history)-1]
}

func (m *Model) target() (handle.Handle, bool) {
	if m.world == nil || len(m.info.Tracked) == 0 {
		m.status = "no tracked bodies"
		return handle.Invalid, false
	}
	m.playHead = -1
	return m.info.Tracked[m.selected%len(m.info.Tracked)], true
}

func (m *Model) removeBody() {
	h, ok := m.target()
	if !ok {
		return
	}
	removed, err := m.world.RemoveRigidBody(h)
	m.report("body", h.Raw(), removed, err)
}

// removeCollider removes the first collider of the selected body.
func (m *Model) removeCollider() {
	h, ok := m.target()
	if !ok {
		return
	}
	body, ok := m.world.Body(h)
	if !ok || len(body.Colliders()) == 0 {
		m.status = fmt.Sprintf("body %d has no colliders", h.Raw())
		return
	}
	key := body.Colliders()[0].Raw()
	removed, err := m.world.RemoveCollider(key)
	m.report("collider", key, removed, err)
}

func (m *Model) report(kind string, key uint64, removed bool, err error) {
	switch {
	case err != nil:
		m.status = fmt.Sprintf("remove %s %d: %v", kind, key, err)
	case removed:
		m.status = fmt.Sprintf("removed %s %d", kind, key)
	default:
		m.status = fmt.Sprintf("%s %d is already gone", kind, key)
	}
	m.opts.Logger.Debug("live removal", zap.String("kind", kind), zap.Uint64("key", key), zap.Bool("removed", removed), zap.Error(err))
	m.refresh()
}

// impulse kicks the selected body upwards.
func (m *Model) impulse() {
	h, ok := m.target()
	if !ok {
		return
	}
	body, ok := m.world.Body(h)
	if !ok || !m.world.ApplyImpulse(h, geom.Unit(geom.Y, impulseSpeed*body.Mass())) {
		m.status = fmt.Sprintf("body %d is gone", h.Raw())
		return
	}
	m.status = fmt.Sprintf("kicked body %d", h.Raw())
}

func (m *Model) capture() frame {
	w := m.world
	f := frame{
		tick:   w.Tick(),
		time:   w.Time(),
		energy: metrics.MechanicalEnergy(w),
		bodies: len(w.Bodies()),
	}
	selected := handle.Invalid
	if len(m.info.Tracked) > 0 {
		selected = m.info.Tracked[m.selected%len(m.info.Tracked)]
	}
	w.EachCollider(func(_ handle.Handle, c *collision.Collider) {
		body, ok := w.Body(c.Parent)
		if !ok {
			return
		}
		f.shapes = append(f.shapes, shapeView{
			shape:    c.Shape,
			center:   c.Position(body.Position),
			fixed:    body.Status == dynamics.Fixed,
			selected: c.Parent == selected,
		})
	})
	for _, h := range w.Joints() {
		j, _ := w.Joint(h)
		b1, ok1 := w.Body(j.Body1)
		b2, ok2 := w.Body(j.Body2)
		if ok1 && ok2 {
			f.joints = append(f.joints, segment{b1.Position.Add(j.Anchor1), b2.Position.Add(j.Anchor2)})
		}
	}
	contacts := w.Contacts()
	f.pairs = len(contacts)
	for _, cp := range contacts {
		f.contacts = append(f.contacts, cp.Manifold.Points...)
	}
	return f
}

// fit frames the moving shapes, or everything if nothing moves.
func (m *Model) fit() {
	f := m.current()
	var bounds geom.AABB
	found := false
	for _, fixed := range []bool{false, true} {
		for _, s := range f.shapes {
			if s.fixed != fixed {
				continue
			}
			box := s.shape.AABB(s.center)
			if !found {
				bounds, found = box, true
			} else {
				bounds = bounds.Merge(box)
			}
		}
		if found {
			break
		}
	}
	if !found {
		return
	}
	w, h := m.canvas.Dots()
	m.camera.Fit(bounds.Expand(2), w, h)
}

func (m *Model) draw(f frame) {
	m.canvas.Clear()
	w, h := m.canvas.Dots()
	for _, s := range f.shapes {
		switch s.shape.Kind {
		case collision.ShapeBall:
			x, y := m.camera.Project(s.center, w, h)
			m.canvas.DrawCircle(x, y, m.camera.Length(s.shape.Radius))
		case collision.ShapeCuboid:
			m.drawCuboid(s.center, s.shape.HalfExtents, w, h)
		}
		if s.selected {
			x, y := m.camera.Project(s.center, w, h)
			m.canvas.DrawCross(x, y, 2)
		}
	}
	for _, j := range f.joints {
		x0, y0 := m.camera.Project(j.a, w, h)
		x1, y1 := m.camera.Project(j.b, w, h)
		m.canvas.DrawLine(x0, y0, x1, y1)
	}
	for _, p := range f.contacts {
		x, y := m.camera.Project(p, w, h)
		m.canvas.DrawCross(x, y, 1)
	}
}

// drawCuboid projects every corner and joins the corners that differ along
// exactly one axis.
func (m *Model) drawCuboid(center, half geom.Vector, w, h int) {
	n := 1 << geom.Dim
	xs, ys := make([]int, n), make([]int, n)
	for i := 0; i < n; i++ {
		p := center
		for a := 0; a < geom.Dim; a++ {
			if i&(1<<a) != 0 {
				p[a] += half[a]
			} else {
				p[a] -= half[a]
			}
		}
		xs[i], ys[i] = m.camera.Project(p, w, h)
	}
	for i := 0; i < n; i++ {
		for a := 0; a < geom.Dim; a++ {
			if j := i | 1<<a; j != i {
				m.canvas.DrawLine(xs[i], ys[i], xs[j], ys[j])
			}
		}
	}
}

func (m Model) statusLine() string {
	switch {
	case m.err != nil:
		return m.styles.failed.Render("FAILED")
	case m.playHead != -1:
		last := m.history[len(m.history)-1].time
		label := fmt.Sprintf("REPLAY (%.2fs)", m.history[m.playHead].time-last)
		if !m.running {
			return m.styles.paused.Render(label + " PAUSED")
		}
		return m.styles.running.Render(label)
	case !m.running:
		return m.styles.paused.Render("PAUSED")
	default:
		return m.styles.running.Render("RUNNING")
	}
}

// series returns the energy and contact history up to the displayed frame.
func (m Model) series() ([]float64, []float64) {
	end := len(m.history)
	if m.playHead >= 0 {
		end = m.playHead + 1
	}
	energy := make([]float64, end)
	pairs := make([]float64, end)
	for i, f := range m.history[:end] {
		energy[i], pairs[i] = f.energy, float64(f.pairs)
	}
	return energy, pairs
}

const helpText = `space  pause / resume      n  single step
r      rebuild the scene     f  fit view
[ ]    replay history        t  cycle theme
tab    select tracked body   i  kick selected body
d      remove selected body  c  remove its collider
+ -    zoom                  arrows  pan
x y    tilt / turn (3D)      q  quit`

func (m Model) View() string {
	if m.world == nil {
		return m.styles.failed.Render("cannot build world: "+m.status) + "\n"
	}
	f := m.current()
	m.draw(f)

	var s strings.Builder
	s.WriteString(m.styles.header.Render(strings.ToUpper(m.opts.Title)) + "\n")
	s.WriteString(m.statusLine() + "\n\n")

	energy, pairs := m.series()
	if len(energy) > 1 {
		chart := asciigraph.Plot(energy, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy"))
		s.WriteString(m.styles.graph.Render(chart) + "\n\n")
	}
	counters := m.world.Counters()
	s.WriteString(m.styles.row("Tick", fmt.Sprintf("%d", f.tick)))
	s.WriteString(m.styles.row("Time", fmt.Sprintf("%.2fs", f.time)))
	s.WriteString(m.styles.row("Energy", fmt.Sprintf("%.3f", f.energy)))
	s.WriteString(m.styles.row("Bodies", fmt.Sprintf("%d", f.bodies)))
	s.WriteString(m.styles.row("Contacts", fmt.Sprintf("%d", f.pairs)))
	s.WriteString(m.styles.row("", m.styles.sparkline(pairs, 30)))
	s.WriteString(m.styles.row("Solver", m.world.IntegratorName()))
	s.WriteString(m.styles.row("Step", counters.LastStep.String()))
	s.WriteString(m.styles.row("Removed", fmt.Sprintf("%d bodies, %d colliders", counters.BodiesRemoved, counters.CollidersRemoved)))
	if n := len(m.info.Tracked); n > 0 {
		s.WriteString(m.styles.row("Selected", fmt.Sprintf("%d/%d", m.selected%n+1, n)))
	}
	s.WriteString(m.styles.row("View", fmt.Sprintf("%s x%.1f", m.theme.Name, m.camera.Scale)))
	s.WriteString("\n" + m.styles.value.Render(m.status) + "\n")
	s.WriteString(m.styles.help.Render("space:pause  n:step  r:reset  ?:help  q:quit"))

	main := lipgloss.JoinHorizontal(lipgloss.Top,
		m.styles.canvas.Render(m.canvas.String()),
		m.styles.stats.Render(s.String()),
	)
	if m.showHelp {
		return lipgloss.JoinVertical(lipgloss.Left, m.styles.overlay.Render(helpText), main)
	}
	return main
}
