// Command dectnrpd is the orchestrating binary: it loads a configuration
// directory, constructs the termination-point firmware, its HARQ pools,
// and a job/baton/worker dispatch pool wired against an Adapter, then
// runs the pool until told to stop. Binding that pool to real IQ samples
// requires a concrete radio.RxSynced/Tx/BufferTxPool/ChScanner
// implementation, which is outside this module's scope (see radio
// package); this entry point supplies radioStub at that boundary so the
// dispatch path itself — queueing, baton handoff, Adapter, workers — runs
// the way a deployment would run it, with only the hardware/SDR binding
// left for that deployment to substitute.
//
// Grounded on the teacher's cmd/direwolf/main.go: a single pflag-parsed
// configuration input, validated up front, followed by constructing the
// long-lived subsystem and running it until a termination signal
// arrives.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/maxpenner/dectnrp-core/alloc"
	"github.com/maxpenner/dectnrp-core/config"
	"github.com/maxpenner/dectnrp-core/contact"
	"github.com/maxpenner/dectnrp-core/cqi"
	"github.com/maxpenner/dectnrp-core/dectime"
	"github.com/maxpenner/dectnrp-core/harq"
	"github.com/maxpenner/dectnrp-core/pll"
	"github.com/maxpenner/dectnrp-core/pool/baton"
	"github.com/maxpenner/dectnrp-core/pool/irregular"
	"github.com/maxpenner/dectnrp-core/pool/job"
	"github.com/maxpenner/dectnrp-core/pool/worker"
	"github.com/maxpenner/dectnrp-core/radio"
	"github.com/maxpenner/dectnrp-core/telemetry"
	"github.com/maxpenner/dectnrp-core/tpoint"
)

// syncTimeUniqueLimitSamples bounds baton.Baton's double-detection
// window; rxJobRegularPeriod is left at 0 (disabled) since this command
// has no real regular-report source driving it yet.
const syncTimeUniqueLimitSamples int64 = 1

// Exit codes per the orchestrating-binary contract: 0 clean stop, 1
// config error, 2 runtime abort.
const (
	exitClean        = 0
	exitConfigError  = 1
	exitRuntimeAbort = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	configDir := pflag.StringP("config-dir", "c", "", "Directory containing radio.yaml.")
	help := pflag.BoolP("help", "h", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "dectnrpd - DECT NR+ wireless-link core daemon.\n\n")
		fmt.Fprintf(os.Stderr, "Usage: dectnrpd --config-dir <dir>\n\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if *help {
		pflag.Usage()
		return exitClean
	}

	if *configDir == "" {
		fmt.Fprintln(os.Stderr, "missing required --config-dir")
		pflag.Usage()
		return exitConfigError
	}

	logger := log.New(os.Stderr)

	cfg, err := config.Load(*configDir)
	if err != nil {
		logger.Error("configuration error", "err", err)
		return exitConfigError
	}

	ft, err := buildFT(cfg, logger)
	if err != nil {
		logger.Error("configuration error", "err", err)
		return exitConfigError
	}

	p, err := buildPool(cfg, ft, logger)
	if err != nil {
		logger.Error("configuration error", "err", err)
		return exitConfigError
	}
	defer p.close()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	p.start()
	logger.Info("dectnrpd ready", "network_id", cfg.NetworkID, "nof_antennas", cfg.NofAntennas, "nof_workers", cfg.NofWorkers)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("runtime abort", "panic", r)
			os.Exit(exitRuntimeAbort)
		}
	}()

	<-sigCh
	logger.Info("shutdown requested")
	p.stop()
	logger.Info("dectnrpd stopped cleanly")
	return exitClean
}

// builtFT bundles the FT firmware with the runtime state buildPool needs
// but that buildFT alone doesn't return: the TX HARQ pool must be the
// exact instance the FT firmware was constructed with, since HARQ process
// indices the firmware hands out are only meaningful against that pool.
type builtFT struct {
	ft     *tpoint.FT
	harqTx *harq.Pool
}

// buildFT constructs the FT firmware and its supporting runtime state
// from a validated configuration.
func buildFT(cfg *config.Radio, logger *log.Logger) (*builtFT, error) {
	lut, err := dectime.NewLUT(cfg.SamplesPerSecond)
	if err != nil {
		return nil, fmt.Errorf("dectime: %w", err)
	}

	a := alloc.New(
		lut,
		lut.Duration(dectime.UnitMillisecond, uint32(cfg.BeaconPeriodMs)),
		lut.Duration(dectime.UnitMillisecond, 0),
		lut.Duration(dectime.UnitMillisecond, 0),
		0,
	)

	p := pll.New(lut, lut.Duration(dectime.UnitMillisecond, uint32(cfg.BeaconPeriodMs)))

	cqiLUT, err := cqi.New(cfg.CQI.MinMCS, cfg.CQI.MaxMCS, cfg.CQI.SNROffsetDB)
	if err != nil {
		return nil, fmt.Errorf("cqi: %w", err)
	}

	contacts := contact.New[tpoint.PeerState](256)

	harqTx := harq.NewPool(cfg.HARQ.TXPoolSize, uint32(cfg.HARQ.SoftBufferCapacity))

	location, err := cfg.LatLng()
	if err != nil {
		return nil, fmt.Errorf("location: %w", err)
	}

	beaconPrepare := lut.Duration(dectime.UnitMillisecond, uint32(cfg.BeaconPrepareDurationMs))

	ftLogger := logger.With("component", "ft")

	ft := tpoint.NewFT(
		lut, a, p, cqiLUT, contacts, harqTx,
		cfg.NetworkID, cfg.ShortRadioDeviceID, location,
		beaconPrepare, nil, ftLogger,
	)

	return &builtFT{ft: ft, harqTx: harqTx}, nil
}

// pool bundles the dispatch subsystem this command drives against
// radioStub: the job queue(s), the baton serializing firmware invocation
// across workers, the Adapter bridging the FT to pool/worker.Firmware,
// and the workers themselves.
type pool struct {
	adapter   *tpoint.Adapter
	queues    []*job.Queue
	irregular *irregular.Queue
	baton     *baton.Baton
	workers   []*worker.Worker
	telemetry *telemetry.Writer
	logger    *log.Logger
}

// buildPool constructs the job/baton/worker dispatch pool and wires it to
// an Adapter around ft, against radioStub at the radio-contract boundary.
// If cfg.TelemetryPath is non-empty, a telemetry.Writer is attached to the
// adapter so every WorkSync invocation appends a diagnostic record.
func buildPool(cfg *config.Radio, built *builtFT, logger *log.Logger) (*pool, error) {
	harqRx := harq.NewPool(cfg.HARQ.RXPoolSize, uint32(cfg.HARQ.SoftBufferCapacity))

	adapterLogger := logger.With("component", "adapter")
	adapter := tpoint.NewAdapter(
		built.ft,
		radioStub{}, radioStub{}, radioStub{}, radioStub{},
		built.harqTx, harqRx,
		cfg.NetworkID,
		adapterLogger,
	)

	var tw *telemetry.Writer
	if cfg.TelemetryPath != "" {
		w, err := telemetry.NewWriter(cfg.TelemetryPath)
		if err != nil {
			return nil, fmt.Errorf("telemetry: %w", err)
		}
		tw = w
		adapter.SetTelemetry(tw, 0)
	}

	nofWorkers := uint32(cfg.NofWorkers)
	b := baton.New(nofWorkers, syncTimeUniqueLimitSamples, 0)
	irregularQ := irregular.New()

	queues := make([]*job.Queue, cfg.NofWorkers)
	workers := make([]*worker.Worker, cfg.NofWorkers)
	for i := range queues {
		queues[i] = job.NewQueue(cfg.JobQueueCapacity)
		workers[i] = worker.New(uint32(i), queues[i], irregularQ, adapter)
	}

	return &pool{
		adapter:   adapter,
		queues:    queues,
		irregular: irregularQ,
		baton:     b,
		workers:   workers,
		telemetry: tw,
		logger:    logger,
	}, nil
}

// start invokes the adapter's initial-rendezvous callback directly (the
// original's pool orchestrator does this once, before any worker begins
// draining its job queue) and then launches one dispatch goroutine per
// worker, each bracketing its firmware invocations with the shared baton
// keyed by FIFO counter modulo worker count, reproducing the ring
// hand-off pattern lib/src/phy/pool/baton.cpp implements.
func (p *pool) start() {
	now := monotonicNow()
	p.adapter.WorkStart(now)

	n := uint32(len(p.workers))
	for i, w := range p.workers {
		id := uint32(i)
		lockFIFO := func(fifoCnt uint64) bool {
			return p.baton.WaitTo(uint32(fifoCnt % uint64(n)))
		}
		unlockFIFO := func() {
			p.baton.PassOn(id)
		}
		go w.RunWithBaton(lockFIFO, unlockFIFO)
	}
}

// stop requests every worker to exit and drives the adapter's shutdown
// callback.
func (p *pool) stop() {
	for _, w := range p.workers {
		w.Stop()
	}
	p.adapter.WorkStop(monotonicNow())
}

// close releases resources start doesn't own outright, namely the
// telemetry file if one was opened.
func (p *pool) close() {
	if p.telemetry == nil {
		return
	}
	if err := p.telemetry.Close(); err != nil && p.logger != nil {
		p.logger.Warn("telemetry close failed", "err", err)
	}
}

// monotonicNow reads CLOCK_MONOTONIC_RAW via radio.ClockGettimeNanos,
// falling back to 0 if the syscall is unavailable; the FT's own notion of
// "now" is sample time from a bound BufferRx, which radioStub doesn't
// supply, so this nanosecond reading is only used to seed the adapter's
// start/stop calls, not as a sample-time reference.
func monotonicNow() int64 {
	if t, err := radio.ClockGettimeNanos(); err == nil {
		return t
	}
	return 0
}
