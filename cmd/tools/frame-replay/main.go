// Command frame-replay streams a frame recording to an upstream collector.
//
// A recording is a byte-faithful copy of the uplink stream (consecutive
// whole frames, no framing) written by the capture daemon's -record flag.
// Replaying one exercises a collector without a sensor attached.
//
// Usage:
//
//	go run ./cmd/tools/frame-replay [flags]
//
// Flags:
//
//	-record    Path to the recording file (required)
//	-upstream  Collector address (default: 192.168.1.204:8002)
//	-rate      Frames per second (default: 5)
//	-loop      Restart from the first frame at end of file
package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/fieldrover/scanlink/internal/config"
	"github.com/fieldrover/scanlink/internal/scan"
	"github.com/fieldrover/scanlink/internal/uplink"
)

func main() {
	record := flag.String("record", "", "Path to the recording file (required)")
	upstream := flag.String("upstream", config.DefaultEndpoint, "Collector address (host:port)")
	rate := flag.Float64("rate", 5, "Frames per second")
	loop := flag.Bool("loop", false, "Restart from the first frame at end of file")
	flag.Parse()

	if *record == "" {
		log.Fatal("Error: -record flag is required")
	}
	if *rate <= 0 {
		log.Fatal("Error: -rate must be positive")
	}

	replayer, err := scan.OpenReplay(*record)
	if err != nil {
		log.Fatalf("Failed to open recording: %v", err)
	}
	defer replayer.Close()

	if replayer.FrameCount() == 0 {
		log.Fatalf("Recording %s contains no complete frames", *record)
	}
	log.Printf("Recording: %d frames (%s)", replayer.FrameCount(), *record)

	sender, err := uplink.Dial(*upstream)
	if err != nil {
		log.Fatalf("Failed to connect to collector: %v", err)
	}
	defer sender.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	interval := time.Duration(float64(time.Second) / *rate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Printf("Replaying to %s at %.1f frames/sec", *upstream, *rate)

	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			log.Printf("Interrupted after %d frames", sender.FramesSent())
			return
		case <-ticker.C:
		}

		frame, err := replayer.Next()
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			// ErrUnexpectedEOF means the capture was cut mid-write;
			// everything before the stub replayed fine.
			if *loop {
				if err := replayer.Rewind(); err != nil {
					log.Fatalf("Failed to rewind recording: %v", err)
				}
				continue
			}
			break
		}
		if err != nil {
			log.Fatalf("Failed to read frame: %v", err)
		}

		if err := sender.Send(frame); err != nil {
			log.Fatalf("Failed to send frame: %v", err)
		}
	}

	log.Printf("Replay complete: %d frames, %d bytes in %.1fs",
		sender.FramesSent(), sender.BytesSent(), time.Since(start).Seconds())
}
