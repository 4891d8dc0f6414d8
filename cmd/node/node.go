package node

import (
	"fmt"
	"io"
	"net/netip"
	"time"

	"github.com/ricardo-zabir/udp-peer2peer/internal/metrics"
	"github.com/ricardo-zabir/udp-peer2peer/internal/peerlink"
	"github.com/ricardo-zabir/udp-peer2peer/internal/peerlink/constants"
	"github.com/ricardo-zabir/udp-peer2peer/internal/transport"
	"github.com/spf13/cobra"
)

var (
	port            int
	broadcast       string
	group           string
	iface           string
	savetodir       string
	metricsInterval time.Duration
)

// AddFlags registers the flags every command that joins the network
// shares.
func AddFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().IntVar(&port, "port", constants.DefaultPort, "UDP port shared by all peers")
	cmd.PersistentFlags().StringVar(&broadcast, "broadcast", constants.BroadcastIP, "Broadcast address for announcements")
	cmd.PersistentFlags().StringVar(&group, "group", "", "Announce on this IPv4 multicast group instead of broadcasting")
	cmd.PersistentFlags().StringVar(&iface, "iface", "", "Interface for the multicast group")
	cmd.PersistentFlags().StringVarP(&savetodir, "dir", "d", ".", "Directory for received files")
	cmd.PersistentFlags().DurationVar(&metricsInterval, "metrics-interval", 0, "Log counters at this interval (0 disables)")
}

// Start opens the socket and builds an engine named name. The returned
// closer flushes metrics and must be called once the engine has stopped.
func Start(name string) (*peerlink.Engine, io.Closer, error) {
	opts := transport.Options{
		Port:      port,
		Interface: iface,
	}

	if broadcast != "" {
		addr, err := netip.ParseAddr(broadcast)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid broadcast address: %w", err)
		}
		opts.Broadcast = addr
	}
	if group != "" {
		addr, err := netip.ParseAddr(group)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid multicast group: %w", err)
		}
		opts.Group = addr
	}

	conn, err := transport.Listen(opts)
	if err != nil {
		return nil, nil, err
	}

	engOpts := peerlink.DefaultOptions(name)
	engOpts.Port = int(conn.LocalAddr().Port())
	engOpts.SaveDir = savetodir

	var closer io.Closer = nopCloser{}
	if metricsInterval > 0 {
		engOpts.Scope, closer = metrics.NewRootScope("peerlink", metricsInterval)
	}

	return peerlink.NewEngine(conn, engOpts), closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
