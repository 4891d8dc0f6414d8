package peerlink

import (
	"net"
	"net/netip"
	"sync"
	"testing"
	"time"
)

type datagram struct {
	payload string
	addr    netip.AddrPort
}

// recorder is a Sender that keeps everything written to it.
type recorder struct {
	mu   sync.Mutex
	sent []datagram
}

func (r *recorder) WriteTo(b []byte, dst netip.AddrPort) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sent = append(r.sent, datagram{payload: string(b), addr: dst})
	return nil
}

func (r *recorder) datagrams() []datagram {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]datagram(nil), r.sent...)
}

func (r *recorder) payloads() []string {
	var out []string
	for _, d := range r.datagrams() {
		out = append(out, d.payload)
	}
	return out
}

// memNet is an in-process broadcast domain. Every conn attached to it
// receives broadcasts, including the sender's own.
type memNet struct {
	mu    sync.Mutex
	conns map[netip.AddrPort]*memConn
}

func newMemNet() *memNet {
	return &memNet{conns: make(map[netip.AddrPort]*memConn)}
}

func (n *memNet) attach(addr string) *memConn {
	n.mu.Lock()
	defer n.mu.Unlock()

	c := &memConn{
		net:    n,
		addr:   netip.MustParseAddrPort(addr),
		inbox:  make(chan datagram, 1024),
		closed: make(chan struct{}),
	}
	n.conns[c.addr] = c
	return c
}

func (n *memNet) deliver(from, to netip.AddrPort, b []byte) {
	n.mu.Lock()
	c, ok := n.conns[to]
	n.mu.Unlock()

	if ok {
		c.push(datagram{payload: string(b), addr: from})
	}
}

type memConn struct {
	net   *memNet
	addr  netip.AddrPort
	inbox chan datagram

	once   sync.Once
	closed chan struct{}

	mu         sync.Mutex
	broadcasts []string
	sent       []datagram
}

func (c *memConn) push(d datagram) {
	select {
	case c.inbox <- d:
	case <-c.closed:
	}
}

func (c *memConn) WriteTo(b []byte, dst netip.AddrPort) error {
	c.mu.Lock()
	c.sent = append(c.sent, datagram{payload: string(b), addr: dst})
	c.mu.Unlock()

	c.net.deliver(c.addr, dst, b)
	return nil
}

func (c *memConn) Broadcast(b []byte) error {
	c.mu.Lock()
	c.broadcasts = append(c.broadcasts, string(b))
	c.mu.Unlock()

	c.net.mu.Lock()
	targets := make([]*memConn, 0, len(c.net.conns))
	for _, other := range c.net.conns {
		targets = append(targets, other)
	}
	c.net.mu.Unlock()

	for _, other := range targets {
		other.push(datagram{payload: string(b), addr: c.addr})
	}
	return nil
}

func (c *memConn) ReadFrom(b []byte) (int, netip.AddrPort, error) {
	select {
	case d := <-c.inbox:
		return copy(b, d.payload), d.addr, nil
	case <-c.closed:
		return 0, netip.AddrPort{}, net.ErrClosed
	}
}

func (c *memConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func (c *memConn) broadcastCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.broadcasts)
}

func (c *memConn) sentTo(dst netip.AddrPort) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []string
	for _, d := range c.sent {
		if d.addr == dst {
			out = append(out, d.payload)
		}
	}
	return out
}

// eventually polls cond until it holds or a few seconds pass.
func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

// events collects engine events for inspection.
type events struct {
	mu  sync.Mutex
	all []Event
}

func (ev *events) add(e Event) {
	ev.mu.Lock()
	defer ev.mu.Unlock()

	ev.all = append(ev.all, e)
}

func (ev *events) list() []Event {
	ev.mu.Lock()
	defer ev.mu.Unlock()

	return append([]Event(nil), ev.all...)
}

func (ev *events) ofKind(kind EventKind) []Event {
	var out []Event
	for _, e := range ev.list() {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}
