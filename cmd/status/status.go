package status

import (
	"fmt"
	"os"

	"github.com/ricardo-zabir/udp-peer2peer/internal/api"
	"github.com/ricardo-zabir/udp-peer2peer/internal/peerlink/constants"
	"github.com/spf13/cobra"
)

var apiAddr string

var Cmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state of a running node",
	Long:  "Query the local API of a running node for its identity, known devices and inbound transfers",
	RunE: func(cmd *cobra.Command, args []string) error {
		cl := api.NewClient(apiAddr)

		info, err := cl.Info()
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Name: %s, Port: %d, Saving to: %s\n", info.Name, info.Port, info.SaveDir)

		devs, err := cl.Devices()
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Active devices: %d\n", len(devs))
		for _, d := range devs {
			fmt.Fprintf(os.Stdout, "\t%s - %s - %ds ago\n", d.Name, d.Address, d.AgeSeconds)
		}

		sessions, err := cl.Transfers()
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Inbound transfers: %d\n", len(sessions))
		for _, s := range sessions {
			fmt.Fprintf(os.Stdout, "\t%s %s from %s: %d chunks, %d/%d bytes\n",
				s.ID, s.Filename, s.Source, s.Chunks, s.Bytes, s.ExpectedSize)
		}

		return nil
	},
}

func init() {
	Cmd.PersistentFlags().StringVar(&apiAddr, "api", constants.DefaultAPIListen, "Local API address of the running node")
}
