package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nsdr/streamcore/capture"
	"github.com/nsdr/streamcore/decoder"
	"github.com/nsdr/streamcore/dtype"
	"github.com/nsdr/streamcore/internal/config"
	"github.com/nsdr/streamcore/internal/log"
	"github.com/nsdr/streamcore/memspace"
	"github.com/nsdr/streamcore/ndarray"
	"github.com/nsdr/streamcore/ring"
)

var statsInterval time.Duration

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one capture session to completion (or until interrupted)",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runCapture(); err != nil {
			exitWithError("capture session failed", err)
		}
	},
}

func init() {
	runCmd.Flags().DurationVar(&statsInterval, "stats-interval", 10*time.Second,
		"how often to log a stats snapshot while the session runs")
}

func runCapture() error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log.Init(&cfg.Log)
	logger := log.GetLogger()

	engine := memspace.NewEngine()
	scratch, scratchErr := allocScratchArray(engine, cfg.Array)
	if scratchErr != nil {
		logger.WithError(scratchErr).Warn("array defaults could not be honored; continuing without scratch buffer")
	}
	if scratch != nil {
		defer scratch.desc.Free(engine)
		logger.WithFields(map[string]interface{}{
			"space": scratch.desc.Space.String(),
			"dtype": scratch.dtype.String(),
			"shape": scratch.shape,
		}).Info("array defaults resolved")
	}

	readTimeout, err := time.ParseDuration(cfg.Capture.ReadTimeout)
	if err != nil {
		return fmt.Errorf("parse capture.read_timeout: %w", err)
	}

	src, err := buildSource(cfg.Capture.Source)
	if err != nil {
		return fmt.Errorf("build capture source: %w", err)
	}
	defer src.Close()

	r := ring.New(cfg.Ring.CapacityBytes)

	elemBytes := int64(1)
	if scratch != nil {
		elemBytes = int64(dtype.ElementBytes(scratch.dtype))
	}
	tensorHint := []int64{int64(cfg.Capture.NSrc), cfg.Ring.FrameBytes / elemBytes}

	sess, err := capture.NewSession(capture.Config{
		Format:             decoder.Format(cfg.Capture.Format),
		Source:             src,
		Ring:               r,
		Callback:           loggingCallback(logger),
		NSrc:               cfg.Capture.NSrc,
		Src0:               int32(cfg.Capture.Src0),
		FrameBytes:         cfg.Ring.FrameBytes,
		SlotNTime:          cfg.Ring.SlotNTime,
		BufferNTime:        cfg.Ring.BufferNTime,
		ReadTimeout:        readTimeout,
		MaxPacketsPerCycle: cfg.Capture.MaxPacketsPerCycle,
		CoreAffinity:       cfg.Node.CoreAffinity,
		TensorShapeHint:    tensorHint,
	})
	if err != nil {
		return fmt.Errorf("build capture session: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	statsDone := make(chan struct{})
	go reportStats(sess, logger, statsInterval, statsDone)
	defer close(statsDone)

	logger.WithFields(map[string]interface{}{
		"format": cfg.Capture.Format,
		"source": cfg.Capture.Source.Type,
	}).Info("capture session starting")

	runErr := sess.Run(ctx)
	sess.Flush()
	logger.WithField("stats", sess.Stats()).Info("capture session ended")
	return runErr
}

// scratchArray bundles the ndarray.Descriptor §3.1's ArrayConfig produces
// with the dtype it was allocated at, so the caller can report it without
// re-deriving ElementBytes from the descriptor's opaque Handle.
type scratchArray struct {
	desc  *ndarray.Descriptor
	dtype dtype.Type
	shape []int64
}

// allocScratchArray resolves cfg.Array's space/dtype names and allocates a
// small demonstration buffer, exercising the memory engine and array
// descriptor the same way a real consumer would size a per-span tensor
// view over a committed ring span.
func allocScratchArray(engine *memspace.Engine, cfg config.ArrayConfig) (*scratchArray, error) {
	space, ok := memspace.ParseSpace(cfg.Space)
	if !ok {
		return nil, fmt.Errorf("array.space %q is not a recognized memory space", cfg.Space)
	}
	dt, ok := dtype.Lookup(cfg.DType)
	if !ok {
		return nil, fmt.Errorf("array.dtype %q is not a recognized type name", cfg.DType)
	}

	shape := []int64{1}
	desc, err := ndarray.Malloc(engine, space, dt, shape)
	if err != nil {
		return nil, fmt.Errorf("allocate array defaults scratch buffer: %w", err)
	}
	return &scratchArray{desc: desc, dtype: dt, shape: shape}, nil
}

func buildSource(cfg config.SourceConfig) (capture.Source, error) {
	switch cfg.Type {
	case "udp":
		return capture.NewUDPSource(cfg.UDP.Addr, cfg.UDP.MaxPacketBytes)
	case "raw":
		return capture.NewRawSource(capture.RawSourceConfig{
			Device:       cfg.Raw.Device,
			SnapLen:      cfg.Raw.SnapLen,
			BufferSizeMB: cfg.Raw.BufferSizeMB,
			TimeoutMs:    cfg.Raw.TimeoutMs,
			FanoutID:     uint16(cfg.Raw.FanoutID),
			BPFFilter:    cfg.Raw.BPFFilter,
		})
	case "file":
		return capture.NewFileSource(cfg.File.Path, cfg.File.RecordSize)
	default:
		return nil, fmt.Errorf("unknown source type %q", cfg.Type)
	}
}

// loggingCallback logs every sequence-lifecycle transition at a severity
// matching how noisy/important it is: CONTINUED is debug-only since it
// fires once per packet in steady state, everything else is info or
// louder.
func loggingCallback(logger log.Logger) capture.Callback {
	return func(ev capture.Event) []byte {
		fields := map[string]interface{}{
			"seq":      ev.Seq,
			"time_tag": ev.TimeTag,
		}
		switch ev.Status {
		case capture.CONTINUED:
			logger.WithFields(fields).Debug(ev.Status.String())
		case capture.NO_DATA:
			logger.WithFields(fields).Warn(ev.Status.String())
		case capture.ERROR, capture.INTERRUPTED:
			logger.WithFields(fields).Error(ev.Status.String())
		default:
			logger.WithFields(fields).Info(ev.Status.String())
		}
		return nil
	}
}

func reportStats(sess *capture.Session, logger log.Logger, interval time.Duration, done <-chan struct{}) {
	if interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-done:
			return
		case <-t.C:
			logger.WithField("stats", sess.Stats()).Info("capture stats")
		}
	}
}
