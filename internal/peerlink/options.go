package peerlink

import (
	"time"

	"github.com/andres-erbsen/clock"
	"github.com/ricardo-zabir/udp-peer2peer/internal/peerlink/constants"
	"github.com/uber-go/tally"
)

// Options tunes the engine. DefaultOptions carries the protocol constants.
type Options struct {
	Name    string
	Port    int
	SaveDir string

	HeartbeatInterval time.Duration
	DeviceTimeout     time.Duration
	ReapInterval      time.Duration

	ChunkSize  int
	ChunkDelay time.Duration
	OfferDelay time.Duration

	SessionIdleTimeout time.Duration
	MaxSessions        int

	Clock clock.Clock
	Scope tally.Scope
}

func DefaultOptions(name string) Options {
	return Options{
		Name:               name,
		Port:               constants.DefaultPort,
		SaveDir:            ".",
		HeartbeatInterval:  constants.HeartbeatInterval,
		DeviceTimeout:      constants.DeviceTimeout,
		ReapInterval:       constants.ReapInterval,
		ChunkSize:          constants.ChunkSize,
		ChunkDelay:         constants.ChunkDelay,
		OfferDelay:         constants.OfferDelay,
		SessionIdleTimeout: constants.SessionIdleTimeout,
		MaxSessions:        constants.MaxSessions,
		Clock:              clock.New(),
		Scope:              tally.NoopScope,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions(o.Name)

	if o.Port == 0 {
		o.Port = def.Port
	}
	if o.SaveDir == "" {
		o.SaveDir = def.SaveDir
	}
	if o.HeartbeatInterval <= 0 {
		o.HeartbeatInterval = def.HeartbeatInterval
	}
	if o.DeviceTimeout <= 0 {
		o.DeviceTimeout = def.DeviceTimeout
	}
	if o.ReapInterval <= 0 {
		o.ReapInterval = def.ReapInterval
	}
	if o.ChunkSize <= 0 {
		o.ChunkSize = def.ChunkSize
	}
	if o.Clock == nil {
		o.Clock = def.Clock
	}
	if o.Scope == nil {
		o.Scope = def.Scope
	}

	return o
}
