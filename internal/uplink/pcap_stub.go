//go:build !pcap
// +build !pcap

package uplink

import (
	"context"
	"fmt"
)

// AnalysePCAPFile is a stub implementation when PCAP support is disabled
// Build with -tags=pcap to enable PCAP file analysis
func AnalysePCAPFile(ctx context.Context, pcapFile string, tcpPort int) (*CaptureReport, error) {
	return nil, fmt.Errorf("PCAP support not enabled: rebuild with -tags=pcap to enable PCAP file analysis")
}
