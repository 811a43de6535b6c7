//go:build pcap
// +build pcap

package uplink

import (
	"context"
	"fmt"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"

	"github.com/fieldrover/scanlink/internal/monitoring"
	"github.com/fieldrover/scanlink/internal/scan"
)

// AnalysePCAPFile reads a capture of uplink traffic and reports how many
// whole frames crossed the wire on the given TCP port.
// This function is only available when building with the 'pcap' build tag.
func AnalysePCAPFile(ctx context.Context, pcapFile string, tcpPort int) (*CaptureReport, error) {
	handle, err := pcap.OpenOffline(pcapFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open PCAP file %s: %w", pcapFile, err)
	}
	defer handle.Close()

	filterStr := fmt.Sprintf("tcp port %d", tcpPort)
	if err := handle.SetBPFFilter(filterStr); err != nil {
		return nil, fmt.Errorf("failed to set BPF filter '%s': %w", filterStr, err)
	}
	monitoring.Logf("[uplink] PCAP BPF filter set: %s", filterStr)

	packetSource := gopacket.NewPacketSource(handle, handle.LinkType())
	report := &CaptureReport{}
	var firstSeen, lastSeen, prevSeen time.Time

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case packet := <-packetSource.Packets():
			if packet == nil {
				// End of capture file
				if !firstSeen.IsZero() {
					report.Duration = lastSeen.Sub(firstSeen)
				}
				report.Frames = int(report.Bytes / scan.FrameBytes)
				report.TrailingBytes = int(report.Bytes % scan.FrameBytes)
				monitoring.Logf("[uplink] PCAP analysis complete: %d segments, %d bytes, %d whole frames",
					report.Packets, report.Bytes, report.Frames)
				return report, nil
			}

			tcpLayer := packet.Layer(layers.LayerTypeTCP)
			if tcpLayer == nil {
				continue
			}
			tcp, ok := tcpLayer.(*layers.TCP)
			if !ok {
				continue
			}
			payload := tcp.Payload
			if len(payload) == 0 {
				continue // pure ACKs and handshake segments
			}

			ts := packet.Metadata().Timestamp
			if firstSeen.IsZero() {
				firstSeen = ts
			}
			if !prevSeen.IsZero() {
				if gap := ts.Sub(prevSeen); gap > report.LongestGap {
					report.LongestGap = gap
				}
			}
			prevSeen = ts
			lastSeen = ts

			report.Packets++
			report.Bytes += int64(len(payload))
		}
	}
}
