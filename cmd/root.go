package cmd

import (
	"log/slog"
	"os"

	"github.com/ricardo-zabir/udp-peer2peer/cmd/run"
	"github.com/ricardo-zabir/udp-peer2peer/cmd/scan"
	"github.com/ricardo-zabir/udp-peer2peer/cmd/send"
	"github.com/ricardo-zabir/udp-peer2peer/cmd/status"
	"github.com/ricardo-zabir/udp-peer2peer/cmd/talk"
	"github.com/spf13/cobra"
)

var debug bool

var rootCmd = &cobra.Command{
	Use:   "peerlink",
	Short: "LAN peer discovery, messaging and file transfer over UDP",
	Long:  "LAN peer discovery, messaging and file transfer over UDP",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if debug {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	},
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		slog.Error("Fail to execute", "error", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Verbose logging")

	rootCmd.AddCommand(run.Cmd)
	rootCmd.AddCommand(scan.Cmd)
	rootCmd.AddCommand(talk.Cmd)
	rootCmd.AddCommand(send.Cmd)
	rootCmd.AddCommand(status.Cmd)
}
