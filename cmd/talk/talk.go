package talk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/ricardo-zabir/udp-peer2peer/cmd/node"
	"github.com/ricardo-zabir/udp-peer2peer/internal/api"
	"github.com/ricardo-zabir/udp-peer2peer/internal/utils"
	"github.com/spf13/cobra"
)

var (
	wait    int64
	apiAddr string
)

var Cmd = &cobra.Command{
	Use:   "talk <name> <message>...",
	Short: "Send a text message to a device",
	Long:  "Send a text message to a device. With --api the message goes through a running node instead of a temporary one.",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, text := args[0], strings.Join(args[1:], " ")

		if apiAddr != "" {
			id, err := api.NewClient(apiAddr).Talk(name, text)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "Message %s sent to %s\n", id, name)
			return nil
		}

		eng, metricsCloser, err := node.Start(utils.GenAlias())
		if err != nil {
			return err
		}
		defer metricsCloser.Close()

		tracker := node.NewTracker()
		eng.OnEvent(tracker.Observe)

		ctx, cancel := context.WithTimeout(context.Background(), time.Second*time.Duration(wait))
		defer cancel()

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			eng.Run(ctx)
		}()
		defer wg.Wait()
		defer cancel()

		_, err = node.WaitForDevice(ctx, eng, name)
		if err != nil {
			return err
		}

		id, err := eng.Talk(name, text)
		if err != nil {
			return err
		}

		_, err = tracker.Wait(ctx, id, 1)
		if errors.Is(err, context.DeadlineExceeded) {
			return errors.New("no acknowledgment")
		}
		if err != nil {
			return err
		}

		slog.Info("Delivered", "id", id, "name", name)
		return nil
	},
}

func init() {
	node.AddFlags(Cmd)
	Cmd.PersistentFlags().Int64VarP(&wait, "wait", "w", 8, "seconds to wait for the device and its acknowledgment")
	Cmd.PersistentFlags().StringVar(&apiAddr, "api", "", "Send through the local API of a running node")
}
