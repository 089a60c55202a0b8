package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	pyroscope "github.com/grafana/pyroscope-go"
	"github.com/yanun0323/logs"

	"bondtrading/internal/ops"
	"bondtrading/internal/pipeline"
	"bondtrading/internal/state"
)

func main() {
	configPath := flag.String("config", "", "Path to JSON or YAML config (empty: defaults)")
	inputDir := flag.String("input-dir", "", "Input directory (overrides config)")
	outputDir := flag.String("output-dir", "", "Output directory (overrides config)")
	snapshotPath := flag.String("snapshot-path", "", "Position snapshot output (default: <output-dir>/positions.json)")
	restorePath := flag.String("restore-snapshot", "", "Seed positions from a snapshot before the run")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loaded, err := ops.Load(*configPath)
	if err != nil {
		logs.Errorf("config load failed: %+v", err)
		os.Exit(1)
	}
	if *inputDir != "" {
		loaded.IO.InputDir = *inputDir
	}
	if *outputDir != "" {
		loaded.IO.OutputDir = *outputDir
	}
	if *snapshotPath == "" {
		*snapshotPath = filepath.Join(loaded.IO.OutputDir, "positions.json")
	}

	if err := run(ctx, loaded, *restorePath, *snapshotPath); err != nil {
		logs.Errorf("run failed: %+v", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, loaded ops.Loaded, restorePath, snapshotPath string) (err error) {
	if loaded.Profiling.ServerAddress != "" {
		profiler, perr := startProfiler(loaded.Profiling)
		if perr != nil {
			return perr
		}
		defer func() {
			_ = profiler.Stop()
		}()
		logs.Infof("profiling enabled, server: %s", loaded.Profiling.ServerAddress)
	}

	sinks, err := pipeline.OpenSinks(ctx, loaded.IO, nil)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sinks.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	p, err := pipeline.New(loaded, sinks)
	if err != nil {
		return err
	}
	if restorePath != "" {
		restored, err := state.ReadSnapshot(restorePath)
		if err != nil {
			return err
		}
		n, err := p.RestorePositions(restored)
		if err != nil {
			return err
		}
		logs.Infof("positions restored, path: %s, entries: %d, products: %d", restorePath, len(restored.Positions), n)
	}

	logs.Infof("pipeline start, products: %d, input: %s, output: %s, sink: %s",
		loaded.Registry.Count(), loaded.IO.InputDir, loaded.IO.OutputDir, loaded.IO.Sink)
	report, err := p.Run(ctx)
	logReport(report, p)
	if err != nil {
		return err
	}

	snap := p.Positions.SnapshotWithMeta(uint64(report.Records()))
	if err := state.WriteSnapshot(snapshotPath, snap); err != nil {
		return err
	}
	logs.Infof("positions snapshot written, path: %s, positions: %d", snapshotPath, len(snap.Positions))
	return nil
}

func logReport(report pipeline.Report, p *pipeline.Pipeline) {
	logs.Infof("pipeline done, records: %d, failures: %d, elapsed: %s",
		report.Records(), report.Failures(), report.Elapsed)

	snap := p.Metrics().Snapshot()
	for t, c := range snap.Events {
		logs.Infof("events %s, adds: %d, updates: %d, removes: %d", t, c.Adds, c.Updates, c.Removes)
	}
	for t, n := range snap.Published {
		logs.Infof("published %s: %d", t, n)
	}
	logs.Infof("throttle drops: %d, risk breaches: %d, record latency avg: %s, max: %s",
		snap.ThrottleDrops, snap.RiskBreaches, snap.RecordLatency.Avg, snap.RecordLatency.Max)

	for _, b := range p.BucketedRisk() {
		logs.Infof("bucketed risk %s, quantity: %d, pv01: %s", b.Sector.Name, b.Quantity, b.PV01)
	}
}

func startProfiler(cfg ops.Profiling) (*pyroscope.Profiler, error) {
	name := cfg.ApplicationName
	if name == "" {
		name = "bondtrading.trader"
	}
	return pyroscope.Start(pyroscope.Config{
		ApplicationName: name,
		ServerAddress:   cfg.ServerAddress,
		Logger:          profilerLogger{},
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseObjects,
			pyroscope.ProfileInuseSpace,
		},
	})
}

type profilerLogger struct{}

func (profilerLogger) Infof(format string, args ...any)  { logs.Debugf(format, args...) }
func (profilerLogger) Debugf(format string, args ...any) { logs.Debugf(format, args...) }
func (profilerLogger) Errorf(format string, args ...any) { logs.Errorf(format, args...) }
