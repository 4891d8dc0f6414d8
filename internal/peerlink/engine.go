package peerlink

import (
	"context"
	"fmt"
	"log/slog"
	"net/netip"
	"sync"

	"github.com/google/uuid"
	"github.com/ricardo-zabir/udp-peer2peer/internal/metrics"
	"github.com/ricardo-zabir/udp-peer2peer/internal/models"
	"github.com/ricardo-zabir/udp-peer2peer/internal/peerlink/constants"
	"github.com/ricardo-zabir/udp-peer2peer/internal/peerlink/session"
	"github.com/ricardo-zabir/udp-peer2peer/internal/peerlink/wire"
	"github.com/ricardo-zabir/udp-peer2peer/internal/store"
	"github.com/ricardo-zabir/udp-peer2peer/internal/transport"
	"github.com/ricardo-zabir/udp-peer2peer/internal/utils"
)

// Transport is the datagram primitive the engine runs on.
type Transport interface {
	Sender
	Broadcast(b []byte) error
	ReadFrom(b []byte) (int, netip.AddrPort, error)
	Close() error
}

// Engine owns the registry, the session store and the loops that feed
// them: receive, heartbeat emitter and reaper.
type Engine struct {
	opts       Options
	instanceID string
	tx         Transport
	registry   *store.Registry
	sessions   *session.Store
	dispatcher *Dispatcher

	handlerMu sync.RWMutex
	onEvent   func(Event)
}

func NewEngine(tx Transport, opts Options) *Engine {
	opts = opts.withDefaults()

	e := &Engine{
		opts:       opts,
		instanceID: uuid.NewString(),
		tx:         tx,
		registry:   store.NewRegistry(opts.DeviceTimeout),
		sessions:   session.NewStore(opts.MaxSessions, opts.SessionIdleTimeout),
	}
	e.dispatcher = NewDispatcher(e.registry, e.sessions, tx, opts.Clock, opts.Scope, opts.SaveDir, e.emit)

	return e
}

// OnEvent sets the callback for talks, acknowledgments and transfer
// outcomes. Without one, events are only logged.
func (e *Engine) OnEvent(handler func(Event)) {
	e.handlerMu.Lock()
	defer e.handlerMu.Unlock()

	e.onEvent = handler
}

func (e *Engine) emit(ev Event) {
	e.handlerMu.RLock()
	handler := e.onEvent
	e.handlerMu.RUnlock()

	if handler == nil {
		slog.Info("Event", "kind", ev.Kind.String(), "remote", ev.From, "id", ev.ID, "text", ev.Text, "path", ev.Path)
		return
	}
	handler(ev)
}

// Run starts the receive loop, the heartbeat emitter and the reaper, and
// blocks until ctx is cancelled and all of them have stopped. The
// transport is closed on the way out.
func (e *Engine) Run(ctx context.Context) error {
	slog.Info("Engine started", "name", e.opts.Name, "instance", e.instanceID)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		e.receiveLoop(ctx)
	}()
	go func() {
		defer wg.Done()
		e.emitLoop(ctx)
	}()
	go func() {
		defer wg.Done()
		e.reapLoop(ctx)
	}()

	<-ctx.Done()
	// unblock the pending read
	e.tx.Close()
	wg.Wait()

	slog.Info("Engine stopped", "name", e.opts.Name)
	return nil
}

func (e *Engine) receiveLoop(ctx context.Context) {
	buf := make([]byte, constants.ReceiveBufSize)

	for {
		n, from, err := e.tx.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil || transport.IsClosed(err) {
				return
			}
			slog.Warn("Fail to receive", "error", err)
			e.opts.Scope.Counter(metrics.ReceiveErrors).Inc(1)
			continue
		}

		e.dispatcher.Handle(buf[:n], from)
	}
}

// Handle feeds a datagram to the dispatcher as if it had been received.
func (e *Engine) Handle(raw []byte, from netip.AddrPort) {
	e.dispatcher.Handle(raw, from)
}

func (e *Engine) Info() models.DeviceInfo {
	return models.DeviceInfo{
		Name:       e.opts.Name,
		InstanceID: e.instanceID,
		Port:       e.opts.Port,
		SaveDir:    e.opts.SaveDir,
	}
}

func (e *Engine) Devices() []models.Device {
	return e.registry.List()
}

func (e *Engine) Sessions() []models.SessionInfo {
	return e.sessions.Snapshot()
}

func (e *Engine) Resolve(name string) (models.Device, error) {
	dev, ok := e.registry.Lookup(name)
	if !ok {
		return models.Device{}, fmt.Errorf("%w: %s", constants.ErrUnknownDevice, name)
	}
	return dev, nil
}

// Talk sends text to the named device and returns the message id. The
// acknowledgment, if any, arrives later as an EventAck.
func (e *Engine) Talk(name, text string) (string, error) {
	dev, err := e.Resolve(name)
	if err != nil {
		return "", err
	}

	id := utils.RandomID()
	err = send(e.tx, e.opts.Scope, wire.Talk{ID: id, Text: text}, dev.Addr)
	if err != nil {
		return "", err
	}
	return id, nil
}
