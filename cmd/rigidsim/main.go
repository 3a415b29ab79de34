package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"math"
	"os"
	"os/signal"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/rigidsim/internal/analysis"
	"github.com/san-kum/rigidsim/internal/automation"
	"github.com/san-kum/rigidsim/internal/config"
	"github.com/san-kum/rigidsim/internal/experiment"
	"github.com/san-kum/rigidsim/internal/export"
	"github.com/san-kum/rigidsim/internal/geom"
	"github.com/san-kum/rigidsim/internal/logging"
	"github.com/san-kum/rigidsim/internal/scene"
	"github.com/san-kum/rigidsim/internal/storage"
	"github.com/san-kum/rigidsim/internal/viz"
	"github.com/san-kum/rigidsim/internal/world"
)

var (
	dataDir    string
	dt         float64
	duration   float64
	seed       int64
	integrator string
	configFile string
	preset     string
	scriptFile string
	logLevel   string
	logFormat  string

	// live view
	frameRate int
	themeName string

	// plot and export
	column    string
	outFile   string
	precision int

	// bench
	profileMode string

	// sweep
	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int
	workers    int

	// search
	searchParams []string
	metric       string
	maximize     bool

	// svg
	svgWidth  int
	svgHeight int
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "rigidsim",
		Short:        "rigid-body step pipeline lab",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".rigidsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (console, json)")

	runCmd := &cobra.Command{
		Use:   "run [scene]",
		Short: "run a scene and record it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addConfigFlags(runCmd)
	runCmd.Flags().StringVar(&scriptFile, "script", "", "automation script (yaml)")

	liveCmd := &cobra.Command{
		Use:   "live [scene]",
		Short: "step a scene in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addConfigFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")
	liveCmd.Flags().StringVar(&themeName, "theme", "", fmt.Sprintf("color theme %v", viz.ThemeNames()))

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list recorded runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a recorded trajectory",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&column, "column", "", "column to plot (default: energy, contacts and b0_y)")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export a trajectory as CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")
	exportCSVCmd.Flags().IntVar(&precision, "precision", 6, "decimal places")

	benchCmd := &cobra.Command{
		Use:   "bench [scene]",
		Short: "benchmark the integrators on a scene",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchScene,
	}
	addConfigFlags(benchCmd)
	benchCmd.Flags().StringVar(&profileMode, "profile", "", "write a cpu or mem profile")

	scenesCmd := &cobra.Command{
		Use:   "scenes",
		Short: "list scenes and integrators",
		Args:  cobra.NoArgs,
		RunE:  listScenes,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [scene]",
		Short: "list presets for a scene",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				cfg := config.GetPreset(args[0], p)
				fmt.Printf("  %-10s %s, %.1fs\n", p, cfg.Integrator, cfg.Duration)
			}
			return nil
		},
	}

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [scene]",
		Short: "sweep one parameter and report stability",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	addConfigFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "dt", fmt.Sprintf("parameter %v", automation.SweepParams()))
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 1.0/120, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 1.0/30, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 5, "number of values")
	sweepCmd.Flags().IntVar(&workers, "workers", runtime.NumCPU(), "concurrent runs")

	searchCmd := &cobra.Command{
		Use:   "search [scene]",
		Short: "grid search parameters for the best metric",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSearch,
	}
	addConfigFlags(searchCmd)
	searchCmd.Flags().StringArrayVar(&searchParams, "param", nil, "name=v1,v2,... (repeatable)")
	searchCmd.Flags().StringVar(&metric, "metric", "energy_drift", "metric to optimize")
	searchCmd.Flags().BoolVar(&maximize, "maximize", false, "prefer the largest value instead of the one closest to zero")
	searchCmd.Flags().IntVar(&workers, "workers", runtime.NumCPU(), "concurrent runs")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "spectrum, period and phase portrait of a column",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&column, "column", "b0_y", "column to analyze")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "draw the final state and tracked paths as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")
	exportSVGCmd.Flags().IntVar(&svgWidth, "width", 800, "image width")
	exportSVGCmd.Flags().IntVar(&svgHeight, "height", 600, "image height")

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, exportCmd, exportCSVCmd, exportSVGCmd,
		benchCmd, scenesCmd, presetsCmd, scenarioCmd, sweepCmd, searchCmd, analyzeCmd)

	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, geom.ErrDimensionMismatch) {
			fmt.Fprintf(os.Stderr, "this build is %dD: vectors need %d components\n", geom.Dim, geom.Dim)
		}
		os.Exit(1)
	}
}

func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", 1.0/60, "timestep")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	cmd.Flags().Int64Var(&seed, "seed", 42, "random seed")
	cmd.Flags().StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator")
	cmd.Flags().StringVar(&configFile, "config", "", "config file (yaml or toml)")
	cmd.Flags().StringVar(&preset, "preset", "", "scene preset")
}

// buildConfig layers the defaults, a preset, a config file and explicit
// flags, in that order.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if len(args) > 0 {
		cfg.Scene = args[0]
	}

	if preset != "" {
		p := config.GetPreset(cfg.Scene, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(cfg.Scene))
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		if len(args) > 0 {
			loaded.Scene = args[0]
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Params.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("seed") || cfg.Seed == 0 {
		cfg.Seed = seed
	}
	if flags.Changed("script") {
		cfg.Script = scriptFile
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}
	return cfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer logger.Sync()

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp, err := experiment.NewRegistry().Prepare(cfg, logger)
	if err != nil {
		return err
	}

	var runner *automation.Runner
	if cfg.Script != "" {
		script, err := automation.LoadScript(cfg.Script)
		if err != nil {
			return err
		}
		runner = automation.NewRunner(script, exp.Info(), logger)
		exp.AddHook(runner)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %s (%s, %d steps)...\n", cfg.Scene, exp.Info(), cfg.Steps())
	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}

	runID, err := st.Save(cfg, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", result.Elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.Steps)
	fmt.Printf("contact events: %d\n", result.Events)
	fmt.Println("\nmetrics:")
	for _, name := range slices.Sorted(maps.Keys(result.Metrics)) {
		fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
	}
	if runner != nil {
		printOutcomes(runner.Outcomes())
	}
	return nil
}

func printOutcomes(outcomes []automation.Outcome) {
	if len(outcomes) == 0 {
		return
	}
	fmt.Println("\nactions:")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  TICK\tACTION\tKEY\tAPPLIED")
	for _, o := range outcomes {
		fmt.Fprintf(w, "  %d\t%s\t%d\t%v\n", o.Tick, o.Kind, o.Key, o.Applied)
	}
	w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// stderr belongs to the terminal UI unless logs go elsewhere
	logger := zap.NewNop()
	if len(cfg.Logging.Output) > 0 {
		if logger, err = logging.New(cfg.Logging); err != nil {
			return err
		}
		defer logger.Sync()
	}

	registry := experiment.NewRegistry()
	factory := func() (*world.World, scene.Info, error) {
		exp, err := registry.Prepare(cfg, logger)
		if err != nil {
			return nil, scene.Info{}, err
		}
		// nothing drains buffered events here; the panel reads counters
		exp.World().SetEventHandler(nil)
		return exp.World(), exp.Info(), nil
	}

	perFrame := 1
	if frameRate > 0 {
		perFrame = max(1, int(math.Round(1/(cfg.Params.Dt*float64(frameRate)))))
	}
	return viz.Run(factory, viz.Options{
		Title:         cfg.Scene,
		FPS:           frameRate,
		StepsPerFrame: perFrame,
		Theme:         themeName,
		Logger:        logger,
	})
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENE\tDIM\tTIME\tDURATION\tDT\tINTEG\tSTEPS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%dD\t%s\t%.2fs\t%.4fs\t%s\t%d\n",
			run.ID,
			run.Scene,
			run.Dim,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Integrator,
			run.Steps,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	traj, err := st.LoadTrajectory(runID)
	if err != nil {
		return err
	}
	if len(traj.Rows) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scene: %s (%dD, %s)\n", meta.Scene, meta.Dim, meta.Integrator)
	fmt.Printf("samples: %d\n\n", len(traj.Rows))

	columns := []string{"energy", "contacts", "b0_y"}
	if column != "" {
		columns = []string{column}
	}
	for _, col := range columns {
		data, ok := traj.Column(col)
		if !ok {
			if column != "" {
				return fmt.Errorf("unknown column %q (available: %v)", col, traj.Header[1:])
			}
			continue
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(col+" vs time"),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

// output returns the file named by --out, or stdout.
func output() (*os.File, func() error, error) {
	if outFile == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(outFile)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	data, err := storage.New(dataDir).Export(args[0])
	if err != nil {
		return err
	}
	if outFile != "" {
		if err := storage.ExportJSON(outFile, data); err != nil {
			return err
		}
		fmt.Printf("exported to %s\n", outFile)
		return nil
	}
	return storage.WriteJSON(os.Stdout, data)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	data, err := storage.New(dataDir).Export(args[0])
	if err != nil {
		return err
	}
	f, done, err := output()
	if err != nil {
		return err
	}
	if err := storage.WriteCSV(f, data, precision); err != nil {
		done()
		return err
	}
	return done()
}

func benchScene(cmd *cobra.Command, args []string) error {
	base, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("time") && configFile == "" && preset == "" {
		base.Duration = 2
	}

	switch profileMode {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(dataDir), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfileAllocs, profile.ProfilePath(dataDir), profile.NoShutdownHook).Stop()
	default:
		return fmt.Errorf("unknown profile mode: %s (want cpu or mem)", profileMode)
	}

	registry := experiment.NewRegistry()
	dts := []float64{1.0 / 30, 1.0 / 60, 1.0 / 120}

	fmt.Printf("benchmarking %s for %.1fs\n\n", base.Scene, base.Duration)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEG\tDT\tSTEPS\tTIME\tSTEPS/SEC\tSTABILITY")

	for _, integ := range registry.ListIntegrators() {
		for _, step := range dts {
			cfg := base.Clone()
			cfg.Integrator = integ
			cfg.Params.Dt = step

			exp, err := registry.Prepare(cfg, nil)
			if err != nil {
				return err
			}
			result, err := exp.Run(context.Background())
			if err != nil {
				return err
			}

			fmt.Fprintf(w, "%s\t%.4fs\t%d\t%v\t%.0f\t%.3f\n",
				integ, step, result.Steps, result.Elapsed.Round(time.Microsecond),
				float64(result.Steps)/result.Elapsed.Seconds(), result.Metrics["stability"])
		}
	}
	return w.Flush()
}

func listScenes(cmd *cobra.Command, args []string) error {
	registry := experiment.NewRegistry()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCENE\tPRESETS")
	for _, name := range registry.ListScenes() {
		fmt.Fprintf(w, "%s\t%v\n", name, config.ListPresets(name))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\nintegrators: %v\n", registry.ListIntegrators())
	fmt.Printf("dimension: %dD\n", geom.Dim)
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	cfg := config.DefaultConfig()
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("scenario: %s\n", scenario.Name)
	if scenario.Description != "" {
		fmt.Printf("%s\n", scenario.Description)
	}
	results, err := automation.RunScenario(ctx, scenario, experiment.NewRegistry(), logger)

	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tSCENE\tSTEPS\tTIME\tACTIONS\tSTABILITY")
	for _, r := range results {
		applied := 0
		for _, o := range r.Outcomes {
			if o.Applied {
				applied++
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%v\t%d/%d\t%.3f\n",
			r.Name, r.Result.Scene, r.Result.Steps, r.Result.Elapsed.Round(time.Millisecond),
			applied, len(r.Outcomes), r.Result.Metrics["stability"])
	}
	w.Flush()
	return err
}

func runSweep(cmd *cobra.Command, args []string) error {
	base, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	logger, err := logging.New(base.Logging)
	if err != nil {
		return err
	}
	defer logger.Sync()

	sweep := &automation.ParameterSweep{
		Base:     base,
		Param:    sweepParam,
		ParamMin: sweepMin,
		ParamMax: sweepMax,
		NumSteps: sweepSteps,
		Workers:  workers,
	}
	results, err := automation.RunSweep(cmd.Context(), sweep, experiment.NewRegistry(), logger)
	if err != nil {
		return err
	}

	fmt.Printf("sweep %s on %s\n\n", sweepParam, base.Scene)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VALUE\tSTABILITY\tENERGY DRIFT\tMAX PENETRATION\tTIME")
	drift := make([]float64, len(results))
	for i, r := range results {
		drift[i] = r.EnergyDrift
		fmt.Fprintf(w, "%.4g\t%.3f\t%.4g\t%.4g\t%v\n",
			r.ParamValue, r.Stability, r.EnergyDrift, r.MaxPenetration, r.Elapsed.Round(time.Millisecond))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if len(drift) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(drift, asciigraph.Height(8), asciigraph.Width(60), asciigraph.Caption("energy drift")))
	}
	return nil
}

// parseSearchParam reads "name=v1,v2,...".
func parseSearchParam(arg string) (string, []float64, error) {
	name, list, ok := strings.Cut(arg, "=")
	if !ok || name == "" {
		return "", nil, fmt.Errorf("bad --param %q: want name=v1,v2,...", arg)
	}
	var values []float64
	for _, f := range strings.Split(list, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return "", nil, fmt.Errorf("bad --param %q: %w", arg, err)
		}
		values = append(values, v)
	}
	return name, values, nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	base, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if len(searchParams) == 0 {
		return fmt.Errorf("no --param given (available: %v)", automation.SweepParams())
	}
	logger, err := logging.New(base.Logging)
	if err != nil {
		return err
	}
	defer logger.Sync()

	g := &automation.GridSearch{
		Base:     base,
		Metric:   metric,
		Maximize: maximize,
		Workers:  workers,
	}
	for _, arg := range searchParams {
		name, values, err := parseSearchParam(arg)
		if err != nil {
			return err
		}
		g.Params = append(g.Params, name)
		g.Ranges = append(g.Ranges, values)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	best, err := g.Search(ctx, experiment.NewRegistry(), logger)
	if err != nil {
		return err
	}

	fmt.Printf("searched %d combinations on %s\n", best.Evaluated, base.Scene)
	fmt.Printf("best %s: %.6g\n", metric, best.Value)
	for _, name := range g.Params {
		fmt.Printf("  %s = %.6g\n", name, best.Params[name])
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	traj, err := storage.New(dataDir).LoadTrajectory(args[0])
	if err != nil {
		return err
	}
	values, ok := traj.Column(column)
	if !ok {
		return fmt.Errorf("unknown column %q (available: %v)", column, traj.Header[1:])
	}
	if len(values) < 4 {
		return fmt.Errorf("run has %d samples, need at least 4", len(values))
	}
	interval := traj.Times[1] - traj.Times[0]

	fmt.Printf("run: %s, column %s, %d samples every %.4gs\n\n", args[0], column, len(values), interval)

	spectrum := analysis.PowerSpectrum(values)
	if len(spectrum) > 1 {
		fmt.Println(asciigraph.Plot(spectrum[1:min(len(spectrum), 81)],
			asciigraph.Height(8),
			asciigraph.Caption("power spectrum"),
		))
		fmt.Println()
	}
	if f, ok := analysis.DominantFrequency(values, interval); ok {
		fmt.Printf("dominant frequency: %.4g Hz (period %.4gs)\n", f, 1/f)
	} else {
		fmt.Println("dominant frequency: none")
	}
	if p, ok := analysis.Period(values, traj.Times); ok {
		fmt.Printf("mean crossing period: %.4gs\n", p)
	}

	fmt.Printf("\nphase portrait (%s against its rate):\n", column)
	fmt.Print(analysis.PathASCII(analysis.PhasePortrait(values, traj.Times), 60, 16))
	return nil
}

// trackedPaths returns the XY path of every tracked body in the trajectory.
func trackedPaths(data *storage.ExportData) [][]analysis.Point {
	traj := &storage.Trajectory{Header: data.Header, Times: data.Times, Rows: data.Rows}
	var paths [][]analysis.Point
	for i := 0; ; i++ {
		xs, okX := traj.Column(fmt.Sprintf("b%d_x", i))
		ys, okY := traj.Column(fmt.Sprintf("b%d_y", i))
		if !okX || !okY {
			return paths
		}
		paths = append(paths, analysis.Zip(xs, ys))
	}
}

func exportSVG(cmd *cobra.Command, args []string) error {
	data, err := storage.New(dataDir).Export(args[0])
	if err != nil {
		return err
	}
	f, done, err := output()
	if err != nil {
		return err
	}
	if _, err := io.WriteString(f, export.Scene(data.Snapshot, trackedPaths(data), svgWidth, svgHeight)); err != nil {
		done()
		return err
	}
	if outFile != "" {
		fmt.Printf("exported to %s\n", outFile)
	}
	return done()
}
