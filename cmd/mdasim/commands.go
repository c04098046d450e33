package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/mdasim/internal/acquire"
	"github.com/san-kum/mdasim/internal/camera"
	"github.com/san-kum/mdasim/internal/config"
	"github.com/san-kum/mdasim/internal/imagegen"
	"github.com/san-kum/mdasim/internal/logging"
	"github.com/san-kum/mdasim/internal/metrics"
	"github.com/san-kum/mdasim/internal/storage"
	"github.com/san-kum/mdasim/internal/viz"
)

const maxLegend = 12

func runSnap(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := newLogger(cfg)
	cam, err := newCamera(cfg, log)
	if err != nil {
		return err
	}

	center := imagegen.Point{X: stageX, Y: stageY}
	cam.SetXY(center)
	cam.SetZ(focusZ)
	if err := cam.SetExposure(exposure); err != nil {
		return err
	}
	if channel != "" {
		if err := cam.SetChannel(channel); err != nil {
			return err
		}
	}

	f, err := cam.LastImage()
	if err != nil {
		return err
	}
	st := cam.State()

	var threshold uint16
	if st.ChannelIndex > 0 {
		threshold = viz.Threshold(f, viz.DefaultLiveOptions().Threshold)
	}
	canvas := viz.NewCanvas(64, 32)
	viz.DrawFrame(canvas, f, threshold)
	fmt.Print(canvas.String())

	stats := metrics.Summarize(f)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "channel\t%s (%d)\n", st.Channel, st.ChannelIndex)
	fmt.Fprintf(w, "stage\t(%.1f, %.1f) z=%.1f\n", st.XY.X, st.XY.Y, st.Z)
	fmt.Fprintf(w, "exposure\t%g\n", st.Exposure)
	fmt.Fprintf(w, "cells\t%d\n", stats.Cells)
	fmt.Fprintf(w, "mean\t%.3f\n", stats.Mean)
	fmt.Fprintf(w, "peak\t%d\n", stats.Peak)
	fmt.Fprintf(w, "focus\t%.4f\n", stats.Focus)
	if err := w.Flush(); err != nil {
		return err
	}

	if asRGB {
		labels, rgb := cam.Generator().SnapRGB(center, focusZ)
		printLegend(os.Stdout, labels, rgb)
	}
	return nil
}

// printLegend lists the visible cells with the color they are drawn in.
func printLegend(out io.Writer, labels imagegen.Frame, rgb imagegen.ColorFrame) {
	first := make(map[uint16]int)
	for i, v := range labels.Pix {
		if _, ok := first[v]; !ok && v != 0 {
			first[v] = i
		}
	}

	fmt.Fprintf(out, "\n%d cells in view\n", len(first))
	shown := 0
	for _, label := range labels.Labels() {
		if label == 0 {
			continue
		}
		if shown == maxLegend {
			fmt.Fprintf(out, "  ... %d more\n", len(first)-shown)
			break
		}
		c := rgb.Pix[first[label]]
		fmt.Fprintf(out, "  %s %5d %s\n", viz.Swatch(c), label, c.Hex())
		shown++
	}
}

func runAutofocus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cam, err := newCamera(cfg, newLogger(cfg))
	if err != nil {
		return err
	}
	cam.SetXY(imagegen.Point{X: stageX, Y: stageY})
	if channel != "" {
		if err := cam.SetChannel(channel); err != nil {
			return err
		}
	}

	ctx, cancel := signalContext()
	defer cancel()

	plan := acquire.ZPlan{Range: focusRange, Step: focusStep}
	res, err := acquire.Autofocus(ctx, cam, plan)
	if err != nil {
		return err
	}

	fmt.Println(asciigraph.Plot(res.Scores,
		asciigraph.Height(8),
		asciigraph.Width(60),
		asciigraph.Caption(fmt.Sprintf("focus score, z from %g by %g", plan.Offsets()[0], focusStep)),
	))
	fmt.Printf("\nbest z: %g (score %.4f)\n", res.Z, res.Score)
	return nil
}

func runAcquire(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := newLogger(cfg)
	cam, err := newCamera(cfg, log)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	seq := cfg.AcquireSequence()
	runner := acquire.NewRunner(cam, log)
	for _, m := range metrics.Defaults() {
		runner.AddMetric(m)
	}
	runner.AddObserver(acquire.ObserverFunc(func(ev acquire.Event, f imagegen.Frame) {
		log.Log(ctx, logging.LevelTrace, "frame acquired",
			"index", ev.Index, "t", ev.T, "p", ev.P, "channel", ev.Channel, "z", ev.ZPos)
	}))

	fmt.Printf("acquiring %d frames...\n", len(seq.Events()))
	result, err := runner.Run(ctx, seq)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	name := preset
	if name == "" {
		name = "run"
	}
	runID, err := st.Save(storage.RunMetadata{
		Name:      name,
		Seed:      cfg.Seed,
		Generator: cfg.GeneratorOptions(),
		Sequence:  seq,
		Frames:    result.Frames,
		Steps:     result.Steps,
		Duration:  result.Duration,
		Metrics:   result.Metrics,
	}, result.Records)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", result.Duration)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("frames: %d\n", result.Frames)
	fmt.Printf("time steps: %d\n", result.Steps)
	fmt.Println("\nmetrics:")
	for _, m := range metrics.Defaults() {
		fmt.Printf("  %s: %.6f\n", m.Name(), result.Metrics[m.Name()])
	}
	return nil
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	if numRuns < 1 {
		return fmt.Errorf("runs must be at least 1, got %d", numRuns)
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	seedStart := cfg.Seed
	if seedStart == 0 {
		seedStart = 1
	}
	factory := func(s int64) (*camera.Camera, error) {
		runCfg := cfg.Clone()
		runCfg.Seed = s
		return newCamera(runCfg, log)
	}

	ctx, cancel := signalContext()
	defer cancel()

	seq := cfg.AcquireSequence()
	fmt.Printf("acquiring %d frames for seeds %d..%d...\n", len(seq.Events()), seedStart, seedStart+int64(numRuns)-1)
	results, err := acquire.NewEnsemble(factory, numRuns, seedStart).Run(ctx, seq)
	if err != nil {
		return err
	}

	spread := acquire.Summarize(results)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tMEAN\tSTDDEV")
	for _, m := range metrics.Defaults() {
		s := spread[m.Name()]
		fmt.Fprintf(w, "%s\t%.6f\t%.6f\n", m.Name(), s.Mean, s.StdDev)
	}
	return w.Flush()
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
	fmt.Fprintln(w, "ID\tTIME\tCELLS\tFRAMES\tSTEPS\tAXES\tDURATION")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%s\t%v\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Generator.N,
			run.Frames,
			run.Steps,
			run.Sequence.AxisOrder,
			run.Duration.Round(time.Millisecond),
		)
	}
	return w.Flush()
}

var statSeries = []struct {
	name  string
	value func(metrics.FrameStats) float64
}{
	{"cells", func(s metrics.FrameStats) float64 { return float64(s.Cells) }},
	{"mean", func(s metrics.FrameStats) float64 { return s.Mean }},
	{"peak", func(s metrics.FrameStats) float64 { return float64(s.Peak) }},
	{"focus", func(s metrics.FrameStats) float64 { return s.Focus }},
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	records, err := st.LoadRecords(runID)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("frames: %d\n\n", len(records))

	plotted := 0
	for _, series := range statSeries {
		if metricName != "" && metricName != series.name {
			continue
		}
		data := make([]float64, len(records))
		for i, rec := range records {
			data[i] = series.value(rec.Stats)
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(series.name+" per frame"),
		)
		fmt.Println(graph)
		fmt.Println()
		plotted++
	}
	if plotted == 0 {
		names := make([]string, len(statSeries))
		for i, s := range statSeries {
			names[i] = s.name
		}
		return fmt.Errorf("unknown metric: %s (available: %s)", metricName, strings.Join(names, ", "))
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	if outPath == "" {
		return st.ExportJSON(args[0], os.Stdout)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := st.ExportJSON(args[0], f); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "exported %s to %s\n", args[0], outPath)
	return nil
}

func runDrift(cmd *cobra.Command, args []string) error {
	if driftSteps < 1 {
		return fmt.Errorf("steps must be at least 1, got %d", driftSteps)
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	gen, err := imagegen.New(cfg.GeneratorOptions())
	if err != nil {
		return err
	}

	origin := gen.Centroid()
	xs := make([]float64, 0, driftSteps+1)
	ys := make([]float64, 0, driftSteps+1)
	xs, ys = append(xs, 0), append(ys, 0)
	for range driftSteps {
		gen.Advance(driftDt)
		d := gen.Centroid().Sub(origin)
		xs = append(xs, d.X)
		ys = append(ys, d.Y)
	}

	graph := asciigraph.PlotMany([][]float64{xs, ys},
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.SeriesColors(asciigraph.Red, asciigraph.Blue),
		asciigraph.SeriesLegends("x", "y"),
		asciigraph.Caption("centroid displacement"),
	)
	fmt.Println(graph)

	drift := cfg.Generator.StageDrift
	fmt.Printf("\nafter %d steps: (%.2f, %.2f)\n", driftSteps, xs[driftSteps], ys[driftSteps])
	fmt.Printf("stage drift alone: (%.2f, %.2f)\n", drift.X*float64(driftSteps), drift.Y*float64(driftSteps))
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCELLS\tFRAMES\tCHANNELS\tDRIFT")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		channels := make([]string, len(cfg.Sequence.Channels))
		for i, ch := range cfg.Sequence.Channels {
			channels[i] = ch.Name
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\t(%g, %g)\n",
			name,
			cfg.Generator.Cells,
			len(cfg.Sequence.Events()),
			strings.Join(channels, ","),
			cfg.Generator.StageDrift.X,
			cfg.Generator.StageDrift.Y,
		)
	}
	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// The TUI owns the terminal.
	cfg.LogLevel = "error"
	log := newLogger(cfg)
	cam, err := newCamera(cfg, log)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	opts := viz.DefaultLiveOptions()
	opts.FPS = frameRate
	if theme != "" {
		opts.Theme = theme
	}
	if startTimer {
		cam.Start(ctx)
	}
	return viz.RunLive(ctx, cam, opts)
}
