package main

import "github.com/ricardo-zabir/udp-peer2peer/cmd"

func main() {
	cmd.Execute()
}
