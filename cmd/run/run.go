package run

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/ricardo-zabir/udp-peer2peer/cmd/node"
	"github.com/ricardo-zabir/udp-peer2peer/internal/api"
	"github.com/ricardo-zabir/udp-peer2peer/internal/console"
	"github.com/ricardo-zabir/udp-peer2peer/internal/peerlink/constants"
	"github.com/ricardo-zabir/udp-peer2peer/internal/utils"
	"github.com/spf13/cobra"
)

var (
	devname     string
	apiAddr     string
	interactive bool
)

var Cmd = &cobra.Command{
	Use:   "run",
	Short: "Join the network and open the command prompt",
	Long:  "Join the network, announce this device, receive messages and files, and read commands from stdin",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, metricsCloser, err := node.Start(devname)
		if err != nil {
			return err
		}
		defer metricsCloser.Close()

		ips, err := utils.GetMyIPv4Addr()
		if err == nil {
			slog.Info("Local addresses", "ips", ips, "name", devname)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var wg sync.WaitGroup

		wg.Add(1)
		go func() {
			defer wg.Done()
			eng.Run(ctx)
		}()

		if apiAddr != "" {
			server := api.NewServer(eng)
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := server.Serve(ctx, apiAddr)
				if err != nil {
					slog.Error("Fail to start local API", "error", err)
				}
			}()
		}

		if interactive {
			con := console.New(eng, os.Stdin, os.Stdout)
			eng.OnEvent(con.PrintEvent)

			go func() {
				if consoleEnded(con.Run(ctx)) {
					cancel()
				}
			}()
		}

		select {
		case <-utils.WaitForSignal():
		case <-ctx.Done():
		}

		slog.Info("Shutting down")
		cancel()
		wg.Wait()
		return nil
	},
}

// consoleEnded reports whether the node should stop with its console. Only
// an explicit quit stops it; a closed stdin leaves it serving.
func consoleEnded(err error) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, io.EOF):
		slog.Info("Console input closed, node keeps running")
		return false
	default:
		slog.Error("Console stopped", "error", err)
		return false
	}
}

func init() {
	node.AddFlags(Cmd)
	Cmd.PersistentFlags().StringVarP(&devname, "name", "n", utils.GenAlias(), "Device name that is announced")
	Cmd.PersistentFlags().StringVar(&apiAddr, "api", constants.DefaultAPIListen, "Local API listen address (empty disables)")
	Cmd.PersistentFlags().BoolVarP(&interactive, "interactive", "i", true, "Read commands from stdin")
}
