package scan

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/ricardo-zabir/udp-peer2peer/cmd/node"
	"github.com/ricardo-zabir/udp-peer2peer/internal/utils"
	"github.com/spf13/cobra"
)

var timeout int64

var Cmd = &cobra.Command{
	Use:   "scan",
	Short: "List devices announcing on the local network",
	Long:  "Listen for announcements for a while and list every device heard",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, metricsCloser, err := node.Start(utils.GenAlias())
		if err != nil {
			return err
		}
		defer metricsCloser.Close()

		slog.Info("Start Scanning")

		ctx, cancel := context.WithTimeout(context.Background(), time.Second*time.Duration(timeout))
		defer cancel()

		// Run returns once the timeout cancels ctx
		eng.Run(ctx)
		slog.Info("Stop Scanning")

		now := time.Now()
		self := eng.Info().Name
		found := 0
		for _, dev := range eng.Devices() {
			if dev.Name == self {
				continue
			}
			if found == 0 {
				fmt.Fprintf(os.Stdout, "Found Devices: \n")
			}
			found++
			fmt.Fprintf(os.Stdout, "\tName: %s, Address: %s, Last seen: %ds ago\n",
				dev.Name, dev.Addr, int64(dev.Age(now)/time.Second))
		}
		if found == 0 {
			fmt.Fprintln(os.Stderr, "No device found")
		}

		return nil
	},
}

func init() {
	node.AddFlags(Cmd)
	Cmd.PersistentFlags().Int64VarP(&timeout, "timeout", "t", 6, "scan duration in seconds")
}
