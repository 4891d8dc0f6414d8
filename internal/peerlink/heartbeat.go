package peerlink

import (
	"context"
	"log/slog"
	"time"

	"github.com/ricardo-zabir/udp-peer2peer/internal/metrics"
	"github.com/ricardo-zabir/udp-peer2peer/internal/peerlink/wire"
)

// Announce broadcasts our name once.
func (e *Engine) Announce() error {
	msg := wire.Announce{Name: e.opts.Name}

	err := e.tx.Broadcast(wire.Encode(msg))
	if err != nil {
		e.opts.Scope.Counter(metrics.SendErrors).Inc(1)
		return err
	}

	e.opts.Scope.Tagged(map[string]string{"command": msg.Command()}).Counter(metrics.DatagramsSent).Inc(1)
	return nil
}

// emitLoop announces right away and then on every heartbeat tick. A late
// tick is not caught up.
func (e *Engine) emitLoop(ctx context.Context) {
	ticker := e.opts.Clock.Ticker(e.opts.HeartbeatInterval)
	defer ticker.Stop()

	e.advertise()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.advertise()
		}
	}
}

func (e *Engine) advertise() {
	err := e.Announce()
	if err != nil {
		slog.Warn("Fail to send announcement", "error", err)
	}
}

func (e *Engine) reapLoop(ctx context.Context) {
	ticker := e.opts.Clock.Ticker(e.opts.ReapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.reap(e.opts.Clock.Now())
		}
	}
}

// reap drops timed-out devices and abandoned inbound sessions.
func (e *Engine) reap(now time.Time) {
	for _, name := range e.registry.Sweep(now) {
		slog.Debug("Device timed out", "name", name)
		e.opts.Scope.Counter(metrics.DevicesEvicted).Inc(1)
	}

	for _, id := range e.sessions.Evict(now) {
		slog.Warn("Abandoned transfer discarded", "id", id)
		e.opts.Scope.Counter(metrics.SessionsEvicted).Inc(1)
	}

	e.opts.Scope.Gauge(metrics.Devices).Update(float64(e.registry.Len()))
	e.opts.Scope.Gauge(metrics.Sessions).Update(float64(e.sessions.Len()))
}
