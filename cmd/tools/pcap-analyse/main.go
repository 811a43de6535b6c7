// Command pcap-analyse summarises uplink traffic in a packet capture.
//
// It counts payload-bearing TCP segments on the collector port and reports
// how many whole revolution frames crossed the wire. The stream carries no
// framing, so the byte count is the ground truth: a non-zero trailing byte
// count means the capture ended mid-frame or the sender was cut off.
//
// Reading captures needs libpcap, so build with -tags=pcap. Without the tag
// the command still builds but reports that PCAP support is not enabled.
//
// Usage:
//
//	go run -tags=pcap ./cmd/tools/pcap-analyse [flags]
//
// Flags:
//
//	-pcap  Path to the capture file (required)
//	-port  Collector TCP port (default: 8002)
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/fieldrover/scanlink/internal/uplink"
)

func main() {
	pcapFile := flag.String("pcap", "", "Path to the capture file (required)")
	port := flag.Int("port", 8002, "Collector TCP port")
	flag.Parse()

	if *pcapFile == "" {
		fmt.Fprintln(os.Stderr, "Error: -pcap flag is required")
		flag.Usage()
		os.Exit(1)
	}
	if _, err := os.Stat(*pcapFile); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Error: capture file not found: %s\n", *pcapFile)
		os.Exit(1)
	}

	report, err := uplink.AnalysePCAPFile(context.Background(), *pcapFile, *port)
	if err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}

	printReport(*pcapFile, report)
}

func printReport(path string, r *uplink.CaptureReport) {
	fmt.Println("========== Uplink Capture Summary ==========")
	fmt.Printf("File: %s\n", path)
	fmt.Printf("Duration: %.1f seconds\n", r.Duration.Seconds())
	fmt.Printf("Segments: %d\n", r.Packets)
	fmt.Printf("Payload: %d bytes\n", r.Bytes)
	fmt.Printf("Frames: %d whole (%.2f/sec)\n", r.Frames, r.FrameRate())
	if r.TrailingBytes != 0 {
		fmt.Printf("Trailing: %d bytes (ended mid-frame)\n", r.TrailingBytes)
	}
	fmt.Printf("Longest gap between segments: %s\n", r.LongestGap)
	fmt.Println("============================================")
}
