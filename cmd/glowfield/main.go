package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/glowfield/internal/config"
	"github.com/san-kum/glowfield/internal/export"
	"github.com/san-kum/glowfield/internal/field"
	"github.com/san-kum/glowfield/internal/gui"
	"github.com/san-kum/glowfield/internal/metrics"
	"github.com/san-kum/glowfield/internal/sim"
	"github.com/san-kum/glowfield/internal/storage"
	"github.com/san-kum/glowfield/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	preset     string
	logLevel   string
	watch      bool

	count       int
	seed        int64
	workers     int
	frames      int
	fps         int
	aspect      float64
	pathName    string
	radius      float64
	theme       string
	modelPath   string
	sampleEvery int
	seeds       int

	particle   int
	axis       string
	sampleIdx  int
	lightPath  bool
	svgWidth   int
	svgHeight  int
	outFile    string
	benchTicks int
)

var rootCmd = &cobra.Command{
	Use:   "glowfield",
	Short: "Pointer-lit particle field",
	Long:  "glowfield animates a field of drifting particles lit by a light that follows the pointer.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging(logLevel)
	},
	RunE: runGUI,
}

func main() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".glowfield", "data directory")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (YAML)")
	rootCmd.PersistentFlags().StringVarP(&preset, "preset", "p", "", "preset name (see 'presets')")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")

	addFieldFlags(rootCmd)
	rootCmd.Flags().StringVar(&modelPath, "model", "", "model file shown at the center")
	rootCmd.Flags().BoolVarP(&watch, "watch", "w", false, "reload the config file when it changes")

	guiCmd := &cobra.Command{
		Use:   "gui",
		Short: "Open the desktop renderer",
		RunE:  runGUI,
	}
	addFieldFlags(guiCmd)
	guiCmd.Flags().StringVar(&modelPath, "model", "", "model file shown at the center")
	guiCmd.Flags().BoolVarP(&watch, "watch", "w", false, "reload the config file when it changes")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "Animate the field in the terminal",
		RunE:  runLive,
	}
	addFieldFlags(liveCmd)
	liveCmd.Flags().StringVar(&theme, "theme", config.DefaultTheme, "theme: "+strings.Join(viz.ThemeNames(), ", "))
	liveCmd.Flags().BoolVarP(&watch, "watch", "w", false, "reload the config file when it changes")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Record a headless run along a scripted pointer path",
		RunE:  runField,
	}
	addFieldFlags(runCmd)
	runCmd.Flags().IntVarP(&frames, "frames", "f", config.DefaultFrames, "frames to simulate")
	runCmd.Flags().Float64VarP(&aspect, "aspect", "a", config.DefaultAspect, "pixels per world unit")
	runCmd.Flags().StringVar(&pathName, "path", config.DefaultPath, "pointer path: "+strings.Join(sim.PathNames(), ", "))
	runCmd.Flags().Float64Var(&radius, "radius", config.DefaultRadius, "pointer path radius in pixels")
	runCmd.Flags().IntVar(&sampleEvery, "sample-every", 1, "keep one frame of matrices every N frames (0 keeps none)")
	runCmd.Flags().IntVar(&seeds, "seeds", 1, "run consecutive seeds in parallel")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "Plot a particle or the light over a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&particle, "particle", 0, "particle index")
	plotCmd.Flags().StringVar(&axis, "axis", "y", "x, y, z, scale or light")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "Export particle positions as CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "Export a run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "Render a sampled frame or the light path as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")
	exportSVGCmd.Flags().IntVar(&sampleIdx, "sample", -1, "sample index, negative counts from the end")
	exportSVGCmd.Flags().BoolVar(&lightPath, "light-path", false, "draw the light path instead of a frame")
	exportSVGCmd.Flags().IntVar(&svgWidth, "width", 800, "image width")
	exportSVGCmd.Flags().IntVar(&svgHeight, "height", 600, "image height")
	exportSVGCmd.Flags().StringVar(&theme, "theme", config.DefaultTheme, "colour theme")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure tick throughput across particle counts",
		RunE:  benchField,
	}
	benchCmd.Flags().IntVar(&benchTicks, "ticks", 300, "ticks per measurement")
	benchCmd.Flags().Int64VarP(&seed, "seed", "s", 1, "random seed")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "List available presets",
		Run: func(cmd *cobra.Command, args []string) {
			listPresets()
		},
	}

	rootCmd.AddCommand(guiCmd, liveCmd, runCmd, listCmd, plotCmd,
		exportCSVCmd, exportJSONCmd, exportSVGCmd, benchCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addFieldFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&count, "count", "n", config.DefaultCount, "number of particles")
	cmd.Flags().Int64VarP(&seed, "seed", "s", 0, "random seed (0 picks one from the clock)")
	cmd.Flags().IntVar(&workers, "workers", config.DefaultWorkers, "goroutines per tick")
	cmd.Flags().IntVar(&fps, "fps", config.DefaultFPS, "target frame rate")
}

func setupLogging(level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("log level %q: %w", level, err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
	return nil
}

// baseConfig is DefaultConfig with --preset applied.
func baseConfig() (*config.Config, error) {
	if preset == "" {
		return config.DefaultConfig(), nil
	}
	cfg := config.GetPreset(preset)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset: %s (available: %s)", preset, strings.Join(config.ListPresets(), ", "))
	}
	return cfg, nil
}

// flagOverrides applies the flags the user set. A zero seed becomes
// fallbackSeed so reloads keep the seed picked at startup.
func flagOverrides(cmd *cobra.Command, fallbackSeed int64) func(*config.Config) {
	flags := cmd.Flags()
	return func(cfg *config.Config) {
		if flags.Changed("count") {
			cfg.Count = count
		}
		if flags.Changed("seed") {
			cfg.Seed = seed
		}
		if flags.Changed("workers") {
			cfg.Workers = workers
		}
		if flags.Changed("fps") {
			cfg.FPS = fps
		}
		if flags.Changed("frames") {
			cfg.Frames = frames
		}
		if flags.Changed("aspect") {
			cfg.Aspect = aspect
		}
		if flags.Changed("path") {
			cfg.Path = pathName
		}
		if flags.Changed("radius") {
			cfg.Radius = radius
		}
		if flags.Changed("theme") {
			cfg.Theme = theme
		}
		if flags.Changed("model") {
			cfg.ModelPath = modelPath
		}
		if cfg.Seed == 0 {
			cfg.Seed = fallbackSeed
		}
	}
}

// loadConfig layers defaults, preset, config file and explicit flags, in
// that order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := baseConfig()
	if err != nil {
		return nil, err
	}

	// config file overrides preset
	if configFile != "" {
		cfg, err = config.LoadInto(cfg, configFile)
		if err != nil {
			return nil, err
		}
	}

	flagOverrides(cmd, time.Now().UnixNano())(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// startWatcher reloads --config with the same preset and flag layering as
// cfg was built with.
func startWatcher(cmd *cobra.Command, cfg *config.Config) (*config.Watcher, error) {
	if !watch {
		return nil, nil
	}
	if configFile == "" {
		return nil, fmt.Errorf("--watch needs --config")
	}
	base, err := baseConfig()
	if err != nil {
		return nil, err
	}
	return config.Watch(configFile,
		config.WithBase(base),
		config.WithOverride(flagOverrides(cmd, cfg.Seed)))
}

func runGUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	w, err := startWatcher(cmd, cfg)
	if err != nil {
		return err
	}
	if w != nil {
		defer w.Close()
	}

	slog.Info("opening window", "count", cfg.Count, "seed", cfg.Seed, "workers", cfg.Workers)
	return gui.Run(cfg, w)
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	w, err := startWatcher(cmd, cfg)
	if err != nil {
		return err
	}
	if w != nil {
		defer w.Close()
	}

	m, err := viz.NewModel(viz.Options{
		Config:   cfg,
		Watcher:  w,
		Exporter: snapshotExporter(filepath.Join(dataDir, "snapshots")),
	})
	if err != nil {
		return err
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

// snapshotExporter saves terminal frames as SVG files under dir.
func snapshotExporter(dir string) viz.Exporter {
	return func(c *viz.Canvas, t viz.Theme) (string, error) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", err
		}
		path := filepath.Join(dir, fmt.Sprintf("glowfield_%d.svg", time.Now().UnixNano()))
		if err := os.WriteFile(path, []byte(export.CanvasToSVG(c, 4, t)), 0644); err != nil {
			return "", err
		}
		return path, nil
	}
}

func newRunner(path sim.PointerPath) func() *sim.Runner {
	return func() *sim.Runner {
		r := sim.New(path)
		for _, m := range metrics.Standard() {
			r.AddMetric(m)
		}
		return r
	}
}

func runField(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	path, err := sim.ParsePath(cfg.Path, cfg.Radius)
	if err != nil {
		return err
	}

	simCfg := sim.Config{
		Count:       cfg.Count,
		Seed:        cfg.Seed,
		Workers:     cfg.Workers,
		Frames:      cfg.Frames,
		Aspect:      cfg.Aspect,
		SampleEvery: sampleEvery,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %d particles for %d frames along %s (seed %d)\n", cfg.Count, cfg.Frames, cfg.Path, cfg.Seed)
	start := time.Now()

	var results []*sim.Result
	if seeds > 1 {
		results, err = sim.NewEnsemble(newRunner(path), seeds, cfg.Seed).Run(ctx, simCfg)
	} else {
		var res *sim.Result
		res, err = newRunner(path)().Run(ctx, simCfg)
		results = []*sim.Result{res}
	}
	if err != nil {
		return err
	}
	slog.Debug("run finished", "runs", len(results), "elapsed", time.Since(start))

	st := storage.New(dataDir)
	for _, res := range results {
		runID, err := st.Save(storage.RunMetadata{
			SampleEvery: sampleEvery,
			Aspect:      cfg.Aspect,
			Path:        cfg.Path,
			Workers:     cfg.Workers,
		}, res)
		if err != nil {
			return err
		}

		fmt.Printf("\nrun id: %s\n", runID)
		fmt.Printf("samples: %d\n", len(res.Frames))
		fmt.Println("metrics:")
		for _, name := range sortedKeys(res.Metrics) {
			fmt.Printf("  %s: %.6f\n", name, res.Metrics[name])
		}
	}
	return nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
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
	fmt.Fprintln(w, "ID\tCOUNT\tSEED\tFRAMES\tSAMPLES\tPATH\tTIMESTAMP")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%s\t%s\n",
			run.ID, run.Count, run.Seed, run.Frames, run.Samples, run.Path,
			run.Timestamp.Format("2006-01-02 15:04:05"))
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

	if axis == "light" {
		light, err := st.LoadLight(runID)
		if err != nil {
			return err
		}
		if len(light) == 0 {
			return fmt.Errorf("no light data")
		}
		xs := make([]float64, len(light))
		ys := make([]float64, len(light))
		for i, p := range light {
			xs[i], ys[i] = p.X(), p.Y()
		}
		fmt.Println(asciigraph.PlotMany([][]float64{xs, ys},
			asciigraph.Height(10), asciigraph.Width(80),
			asciigraph.SeriesColors(asciigraph.Blue, asciigraph.Red),
			asciigraph.Caption(fmt.Sprintf("%s - light x (blue), y (red)", runID))))
		return nil
	}

	samples, index, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("run %s has no sampled frames", runID)
	}
	if particle < 0 || particle >= meta.Count {
		return fmt.Errorf("particle %d out of range [0, %d)", particle, meta.Count)
	}

	data := make([]float64, len(samples))
	for i, frame := range samples {
		m := frame[particle]
		pos := storage.Position(m)
		switch axis {
		case "x":
			data[i] = float64(pos[0])
		case "y":
			data[i] = float64(pos[1])
		case "z":
			data[i] = float64(pos[2])
		case "scale":
			data[i] = float64(m.Col(0).Vec3().Len())
		default:
			return fmt.Errorf("unknown axis: %s", axis)
		}
	}

	caption := fmt.Sprintf("%s - particle %d %s, frames %d..%d", runID, particle, axis, index[0], index[len(index)-1])
	fmt.Println(asciigraph.Plot(data, asciigraph.Height(10), asciigraph.Width(80), asciigraph.Caption(caption)))

	fmt.Println("\nmetrics:")
	for _, name := range sortedKeys(meta.Metrics) {
		fmt.Printf("  %s: %.6f\n", name, meta.Metrics[name])
	}
	return nil
}

// output returns stdout, or the --out file with its closer.
func output() (io.Writer, func() error, error) {
	if outFile == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(outFile)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	w, closeFn, err := output()
	if err != nil {
		return err
	}
	if err := storage.New(dataDir).ExportCSV(w, args[0]); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}

func exportJSON(cmd *cobra.Command, args []string) error {
	w, closeFn, err := output()
	if err != nil {
		return err
	}
	if err := storage.New(dataDir).ExportJSON(w, args[0]); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}

func exportSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)
	th := viz.GetTheme(theme)

	var svg string
	if lightPath {
		light, err := st.LoadLight(runID)
		if err != nil {
			return err
		}
		svg = export.LightPathToSVG(light, svgWidth, svgHeight, th)
	} else {
		samples, _, err := st.LoadFrames(runID)
		if err != nil {
			return err
		}
		i := sampleIdx
		if i < 0 {
			i += len(samples)
		}
		if i < 0 || i >= len(samples) {
			return fmt.Errorf("sample %d out of range (run has %d)", sampleIdx, len(samples))
		}
		svg = export.FrameToSVG(samples[i], svgWidth, svgHeight, th)
	}
	if svg == "" {
		return fmt.Errorf("nothing to draw")
	}

	w, closeFn, err := output()
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, svg); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}

func benchField(cmd *cobra.Command, args []string) error {
	counts := []int{500, 5000, 50000}
	workerSets := []int{1, runtime.NumCPU()}

	fmt.Printf("benchmarking %d ticks per row\n\n", benchTicks)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "COUNT\tWORKERS\tTIME\tTICKS/SEC\tPARTICLES/SEC")

	for _, n := range counts {
		for _, wk := range workerSets {
			ptr := field.NewPointer()
			anim, err := field.New(n, ptr, nil, nil, field.WithSeed(seed), field.WithWorkers(wk))
			if err != nil {
				return err
			}

			start := time.Now()
			for i := 0; i < benchTicks; i++ {
				ptr.Set(float64(i%200-100), float64(i%120-60))
				anim.Tick(config.DefaultAspect)
			}
			elapsed := time.Since(start)

			tps := float64(benchTicks) / elapsed.Seconds()
			fmt.Fprintf(w, "%d\t%d\t%v\t%.0f\t%.0f\n", n, wk, elapsed.Round(time.Microsecond), tps, tps*float64(n))
		}
	}
	return w.Flush()
}

func listPresets() {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tCOUNT\tPATH\tWORKERS\tFRAMES")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%d\t%s\t%d\t%d\n", name, cfg.Count, cfg.Path, cfg.Workers, cfg.Frames)
	}
	w.Flush()
}
