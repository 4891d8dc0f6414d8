package send

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ricardo-zabir/udp-peer2peer/cmd/node"
	"github.com/ricardo-zabir/udp-peer2peer/internal/api"
	"github.com/ricardo-zabir/udp-peer2peer/internal/peerlink/constants"
	"github.com/ricardo-zabir/udp-peer2peer/internal/utils"
	"github.com/spf13/cobra"
)

var (
	wait    int64
	apiAddr string
)

var Cmd = &cobra.Command{
	Use:   "send <name> <file>",
	Short: "Send a file to a device",
	Long:  "Send a file to a device. With --api the transfer is handed to a running node instead of a temporary one.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, file := args[0], args[1]

		finfo, err := os.Stat(file)
		if err != nil || finfo.IsDir() {
			return fmt.Errorf("%w: %s", constants.ErrFileNotFound, file)
		}

		if apiAddr != "" {
			// the node resolves paths against its own working directory
			abs, err := filepath.Abs(file)
			if err != nil {
				return err
			}
			id, err := api.NewClient(apiAddr).SendFile(name, abs)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "Transfer %s of %s to %s started\n", id, file, name)
			return nil
		}

		eng, metricsCloser, err := node.Start(utils.GenAlias())
		if err != nil {
			return err
		}
		defer metricsCloser.Close()

		expectAcks := node.ExpectedAcks(finfo.Size(), constants.ChunkSize)

		tracker := node.NewTracker()
		eng.OnEvent(tracker.Observe)

		ctx, cancel := context.WithCancel(context.Background())
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			eng.Run(ctx)
		}()
		defer wg.Wait()
		defer cancel()

		go func() {
			<-utils.WaitForSignal()
			slog.Info("Abort")
			cancel()
		}()

		findCtx, findCancel := context.WithTimeout(ctx, time.Second*time.Duration(wait))
		_, err = node.WaitForDevice(findCtx, eng, name)
		findCancel()
		if err != nil {
			return err
		}

		slog.Info("Start sending", "file", file, "name", name)
		id, err := eng.SendFileTo(ctx, name, file)
		if err != nil {
			return err
		}

		verdictCtx, verdictCancel := context.WithTimeout(ctx, time.Second*time.Duration(wait))
		defer verdictCancel()

		acks, err := tracker.Wait(verdictCtx, id, expectAcks)
		switch {
		case err == nil:
			slog.Info("Done", "id", id)
			return nil
		case errors.Is(err, context.DeadlineExceeded):
			// datagrams are never retransmitted, so a missing ack is
			// not proof of failure
			slog.Warn("Transfer sent but not confirmed", "id", id, "acks", acks, "expected", expectAcks)
			return nil
		default:
			return err
		}
	},
}

func init() {
	node.AddFlags(Cmd)
	Cmd.PersistentFlags().Int64VarP(&wait, "wait", "w", 8, "seconds to wait for the device and for the receiver's verdict")
	Cmd.PersistentFlags().StringVar(&apiAddr, "api", "", "Hand the transfer to the local API of a running node")
}
