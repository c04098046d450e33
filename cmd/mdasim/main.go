package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/mdasim/internal/camera"
	"github.com/san-kum/mdasim/internal/config"
	"github.com/san-kum/mdasim/internal/imagegen"
	"github.com/san-kum/mdasim/internal/logging"
)

var (
	dataDir    string
	configFile string
	preset     string
	seed       int64
	cells      int
	logLevel   string

	// snap
	stageX   float64
	stageY   float64
	focusZ   float64
	exposure float64
	channel  string
	asRGB    bool

	// autofocus
	focusRange float64
	focusStep  float64

	// acquire
	loops  int
	deltaT float64

	// ensemble
	numRuns int

	// plot
	metricName string

	// export-json
	outPath string

	// drift
	driftSteps int
	driftDt    float64

	// live
	frameRate  int
	timing     float64
	startTimer bool
	theme      string
)

// main registers the mdasim commands and runs the live preview when no
// subcommand is given.
func main() {
	rootCmd := &cobra.Command{
		Use:           "mdasim",
		Short:         "fake microscope image generator",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runLive,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", ".mdasim", "data directory")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "use preset configuration")
	pf.Int64Var(&seed, "seed", 0, "random seed (0 seeds from entropy)")
	pf.IntVar(&cells, "cells", config.DefaultCells, "number of cells")
	pf.StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level (trace, debug, info, warn, error)")

	snapCmd := &cobra.Command{
		Use:   "snap",
		Short: "render a single frame",
		RunE:  runSnap,
	}
	snapCmd.Flags().Float64Var(&stageX, "x", 0, "stage x (rows)")
	snapCmd.Flags().Float64Var(&stageY, "y", 0, "stage y (columns)")
	snapCmd.Flags().Float64Var(&focusZ, "z", 0, "focus offset")
	snapCmd.Flags().Float64Var(&exposure, "exposure", 1, "exposure")
	snapCmd.Flags().StringVar(&channel, "channel", "", "channel preset (default: first preset)")
	snapCmd.Flags().BoolVar(&asRGB, "rgb", false, "print the colors of the visible cells")

	autofocusCmd := &cobra.Command{
		Use:   "autofocus",
		Short: "sweep the focus and report the sharpest plane",
		RunE:  runAutofocus,
	}
	autofocusCmd.Flags().Float64Var(&stageX, "x", 0, "stage x (rows)")
	autofocusCmd.Flags().Float64Var(&stageY, "y", 0, "stage y (columns)")
	autofocusCmd.Flags().StringVar(&channel, "channel", "", "channel preset (default: first preset)")
	autofocusCmd.Flags().Float64Var(&focusRange, "range", 40, "sweep range around z=0")
	autofocusCmd.Flags().Float64Var(&focusStep, "step", 2, "sweep step")

	acquireCmd := &cobra.Command{
		Use:   "acquire",
		Short: "run the configured multi-dimensional acquisition",
		RunE:  runAcquire,
	}
	acquireCmd.Flags().IntVar(&loops, "loops", config.DefaultLoops, "time points")
	acquireCmd.Flags().Float64Var(&deltaT, "dt", config.DefaultDeltaT, "simulated time between time points")

	ensembleCmd := &cobra.Command{
		Use:   "ensemble",
		Short: "run the acquisition over several seeds and compare metrics",
		RunE:  runEnsemble,
	}
	ensembleCmd.Flags().IntVar(&numRuns, "runs", 4, "number of seeds")
	ensembleCmd.Flags().IntVar(&loops, "loops", config.DefaultLoops, "time points")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot per-frame statistics of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&metricName, "metric", "", "cells, mean, peak or focus (default: all)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default: stdout)")

	driftCmd := &cobra.Command{
		Use:   "drift",
		Short: "plot how far the population moves over time",
		RunE:  runDrift,
	}
	driftCmd.Flags().IntVar(&driftSteps, "steps", 50, "time steps")
	driftCmd.Flags().Float64Var(&driftDt, "dt", 1, "time per step")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE:  listPresets,
	}

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "interactive live preview",
		RunE:  runLive,
	}
	for _, cmd := range []*cobra.Command{rootCmd, liveCmd} {
		cmd.Flags().IntVar(&frameRate, "fps", 10, "frame rate")
		cmd.Flags().Float64Var(&timing, "timing", camera.DefaultTiming.Seconds(), "seconds between time steps")
		cmd.Flags().BoolVar(&startTimer, "start", false, "start the time-step timer immediately")
		cmd.Flags().StringVar(&theme, "theme", "", "color theme")
	}

	rootCmd.AddCommand(snapCmd, autofocusCmd, acquireCmd, ensembleCmd, listCmd, plotCmd, exportJSONCmd, driftCmd, presetsCmd, liveCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadConfig layers defaults, the preset, the config file and explicitly
// set flags, in that order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("cells") {
		cfg.Generator.Cells = cells
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("loops") {
		cfg.Sequence.TimePlan.Loops = loops
	}
	if flags.Changed("dt") && cmd.Name() == "acquire" {
		cfg.Sequence.TimePlan.DeltaT = deltaT
	}
	if flags.Changed("timing") {
		cfg.Camera.Timing = timing
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	return logging.NewLogger(cfg.LogLevel, os.Stderr)
}

func newCamera(cfg *config.Config, log *slog.Logger) (*camera.Camera, error) {
	start := time.Now()
	gen, err := imagegen.New(cfg.GeneratorOptions())
	if err != nil {
		return nil, err
	}
	log.Debug("generated population", "cells", gen.N(), "elapsed", time.Since(start))

	opts := cfg.CameraOptions()
	opts.Logger = log
	return camera.New(gen, opts)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}
