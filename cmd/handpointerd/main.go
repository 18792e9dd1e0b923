// Package main provides the CLI wrapper for handpointer.
//
// handpointerd replays a JSONL stream of FrameEvents (one per line, from a
// file or stdin — standing in for the upstream vision plugin's
// FRAME_PROCESSED publication, which is out of this module's scope) through
// the core pipeline and prints the resulting STATE_CHANGE and
// POINTER_UPDATE bus events. This mirrors cmd/miface/main.go's role as a
// thin wiring layer over the library, with the camera/MediaPipe stage
// replaced by file/stdin ingestion now that landmark detection is out of
// scope (spec §1).
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/handpointer/core/internal/config"
	"github.com/handpointer/core/pkg/bus"
	"github.com/handpointer/core/pkg/pointer"
	"github.com/handpointer/core/pkg/supervisor"
	"github.com/handpointer/core/pkg/surface"
)

var version = "0.1.0"

func main() {
	configPath := flag.String("config", "", "Path to TOML configuration file")
	framesPath := flag.String("frames", "", "Path to a JSONL FrameEvent file (defaults to stdin)")
	showVersion := flag.Bool("version", false, "Show version information")
	verbose := flag.Bool("verbose", false, "Enable verbose (debug-level) logging")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "handpointerd - hand-gesture-to-pointer-event core\n\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -frames session.jsonl          # replay a recorded session\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  cat session.jsonl | %s            # read frames from stdin\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -config handpointer.toml       # run with custom tunables\n", os.Args[0])
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("handpointerd version %s\n", version)
		os.Exit(0)
	}

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	watcher, err := config.NewWatcher(*configPath, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	defer watcher.Close()
	cfg := watcher.Current()

	var sinks []surface.Sink
	var debugSink *surface.DebugSink
	if cfg.DebugSurface.Enabled {
		debugSink, err = surface.NewDebugSink(cfg.DebugSurface.Address, cfg.DebugSurface.Port)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create debug surface sink")
		}
		defer debugSink.Close()
		sinks = append(sinks, debugSink)
		log.Info().Str("address", cfg.DebugSurface.Address).Int("port", cfg.DebugSurface.Port).Msg("debug surface sink configured")
	}

	surfaceFabric := surface.NewFabric(surface.FixedScreenSize{Width: 1920, Height: 1080}, cfg.Fabric.OverscanScale, sinks, surface.WithLogger(log))

	var highlanderCfg *pointer.HighlanderConfig
	if cfg.Highlander.Enabled {
		highlanderCfg = &pointer.HighlanderConfig{
			LockOnCommitOnly: cfg.Highlander.LockOnCommitOnly,
			DropHoverEvents:  cfg.Highlander.DropHoverEvents,
		}
	}

	sup := supervisor.New(supervisor.Config{
		Tunables:         cfg.Tunables(),
		HighlanderConfig: highlanderCfg,
		GraceMs:          cfg.Router.PruneGraceMs,
		Logger:           log,
		SurfaceFabric:    surfaceFabric,
	})
	if err := sup.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start supervisor")
	}
	defer sup.Close()

	stateCh := sup.Bus().Subscribe(bus.ChannelStateChange)
	updateCh := sup.Bus().Subscribe(bus.ChannelPointerUpdate)
	coastCh := sup.Bus().Subscribe(bus.ChannelPointerCoast)

	go func() {
		for ev := range stateCh {
			sc := ev.(bus.StateChangeEvent)
			fmt.Printf("STATE_CHANGE hand=%d %s -> %s\n", sc.HandID, sc.Previous, sc.Current)
		}
	}()
	go func() {
		for ev := range updateCh {
			pu := ev.(bus.PointerUpdateEvent)
			fmt.Printf("POINTER_UPDATE hand=%d x=%.4f y=%.4f pinching=%v\n", pu.HandID, pu.X, pu.Y, pu.IsPinching)
		}
	}()
	go func() {
		for ev := range coastCh {
			pc := ev.(bus.PointerCoastEvent)
			fmt.Printf("POINTER_COAST hand=%d destroy=%v\n", pc.HandID, pc.Destroy)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := replayFrames(*framesPath, sup, log); err != nil {
			log.Error().Err(err).Msg("frame replay ended with error")
		}
	}()

	select {
	case <-done:
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("received signal, shutting down")
	}
}

// replayFrames reads newline-delimited JSON FrameEvents from path (or stdin
// when path is empty) and feeds each one to sup.ProcessFrame in order.
func replayFrames(path string, sup *supervisor.Supervisor, log zerolog.Logger) error {
	var r io.Reader = os.Stdin
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("opening frames file: %w", err)
		}
		defer f.Close()
		r = f
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var frame pointer.FrameEvent
		if err := json.Unmarshal(line, &frame); err != nil {
			log.Warn().Err(err).Msg("skipping malformed frame line")
			continue
		}
		if err := sup.ProcessFrame(frame); err != nil {
			log.Warn().Err(err).Msg("surface dispatch failure during frame processing")
		}
	}
	return scanner.Err()
}
