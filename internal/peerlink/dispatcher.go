package peerlink

import (
	"errors"
	"log/slog"
	"net/netip"

	"github.com/andres-erbsen/clock"
	"github.com/ricardo-zabir/udp-peer2peer/internal/metrics"
	"github.com/ricardo-zabir/udp-peer2peer/internal/peerlink/constants"
	"github.com/ricardo-zabir/udp-peer2peer/internal/peerlink/session"
	"github.com/ricardo-zabir/udp-peer2peer/internal/peerlink/wire"
	"github.com/ricardo-zabir/udp-peer2peer/internal/store"
	"github.com/uber-go/tally"
)

// Sender writes one datagram.
type Sender interface {
	WriteTo(b []byte, dst netip.AddrPort) error
}

// Dispatcher routes decoded datagrams to the registry and the session
// store and sends the replies. It keeps no state of its own.
type Dispatcher struct {
	registry *store.Registry
	sessions *session.Store
	tx       Sender
	clock    clock.Clock
	scope    tally.Scope
	saveDir  string
	emit     func(Event)
}

func NewDispatcher(registry *store.Registry, sessions *session.Store, tx Sender,
	clk clock.Clock, scope tally.Scope, saveDir string, emit func(Event)) *Dispatcher {
	if emit == nil {
		emit = func(Event) {}
	}
	return &Dispatcher{
		registry: registry,
		sessions: sessions,
		tx:       tx,
		clock:    clk,
		scope:    scope,
		saveDir:  saveDir,
		emit:     emit,
	}
}

// Handle processes one inbound datagram. It never panics on bad input and
// drops anything it cannot use without replying.
func (d *Dispatcher) Handle(raw []byte, from netip.AddrPort) {
	d.scope.Counter(metrics.DatagramsReceived).Inc(1)

	msg, err := wire.Decode(raw)
	if err != nil {
		slog.Debug("Drop malformed datagram", "remote", from, "error", err)
		d.scope.Counter(metrics.DecodeErrors).Inc(1)
		return
	}

	switch m := msg.(type) {
	case wire.Announce:
		d.registry.Upsert(m.Name, from, d.clock.Now())

	case wire.Talk:
		d.emit(Event{Kind: EventTalk, From: from, ID: m.ID, Text: m.Text})
		d.reply(wire.Ack{ID: m.ID}, from)

	case wire.Ack:
		d.emit(Event{Kind: EventAck, From: from, ID: m.ID})

	case wire.Nack:
		d.emit(Event{Kind: EventNack, From: from, ID: m.ID, Text: m.Reason})

	case wire.FileOffer:
		evicted := d.sessions.Open(m.ID, m.Filename, m.Size, from, d.clock.Now())
		if evicted != "" {
			slog.Warn("Too many transfers, dropping oldest", "id", evicted)
			d.scope.Counter(metrics.SessionsEvicted).Inc(1)
		}
		slog.Info("Accepting file", "remote", from, "id", m.ID, "file", m.Filename, "size", m.Size)
		d.reply(wire.Ack{ID: m.ID}, from)

	case wire.Chunk:
		if !d.sessions.PutChunk(m.ID, m.Seq, m.Data, d.clock.Now()) {
			d.drop(msg, from, "no session")
			return
		}
		d.reply(wire.Ack{ID: m.ID}, from)

	case wire.End:
		d.finalize(m, from)

	case wire.Unknown:
		d.drop(msg, from, "unknown command")
	}
}

func (d *Dispatcher) finalize(m wire.End, from netip.AddrPort) {
	sess, ok := d.sessions.Take(m.ID)
	if !ok {
		d.drop(m, from, "no session")
		return
	}

	path, err := sess.Finalize(d.saveDir, m.Hash)
	switch {
	case err == nil:
		slog.Info("Recv file", "file", path, "id", m.ID, "remote", from)
		d.scope.Counter(metrics.TransfersOk).Inc(1)
		d.reply(wire.Ack{ID: m.ID}, from)
		d.emit(Event{Kind: EventFileReceived, From: from, ID: m.ID, Path: path})

	case errors.Is(err, constants.ErrHashMismatch):
		slog.Error("Checksum mismatch", "file", path, "id", m.ID, "remote", from)
		d.scope.Counter(metrics.TransfersFailed).Inc(1)
		d.reply(wire.Nack{ID: m.ID, Reason: constants.HashMismatch}, from)
		d.emit(Event{Kind: EventFileFailed, From: from, ID: m.ID, Path: path, Err: err})

	default:
		slog.Error("Fail to save file", "file", sess.Filename, "id", m.ID, "error", err)
		d.scope.Counter(metrics.TransfersFailed).Inc(1)
		d.reply(wire.Nack{ID: m.ID, Reason: constants.IOErrorReason}, from)
		d.emit(Event{Kind: EventFileFailed, From: from, ID: m.ID, Err: err})
	}
}

func (d *Dispatcher) reply(msg wire.Message, to netip.AddrPort) {
	send(d.tx, d.scope, msg, to)
}

func (d *Dispatcher) drop(msg wire.Message, from netip.AddrPort, why string) {
	slog.Debug("Drop datagram", "command", msg.Command(), "remote", from, "reason", why)
	d.scope.Tagged(map[string]string{"reason": why}).Counter(metrics.Dropped).Inc(1)
}

func send(tx Sender, scope tally.Scope, msg wire.Message, to netip.AddrPort) error {
	err := tx.WriteTo(wire.Encode(msg), to)
	if err != nil {
		slog.Warn("Fail to send", "command", msg.Command(), "remote", to, "error", err)
		scope.Counter(metrics.SendErrors).Inc(1)
		return err
	}

	scope.Tagged(map[string]string{"command": msg.Command()}).Counter(metrics.DatagramsSent).Inc(1)
	return nil
}
