package transport

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/netip"

	"github.com/ricardo-zabir/udp-peer2peer/internal/peerlink/constants"
	"golang.org/x/net/ipv4"
)

// Options configures the datagram socket.
type Options struct {
	// Bind is the local address, the zero value listens on every interface.
	Bind netip.Addr
	Port int
	// Broadcast is where announcements go when no Group is set.
	Broadcast netip.Addr
	// Group, when valid, switches announcements to this multicast group.
	Group netip.Addr
	// Interface restricts the multicast join to one interface.
	Interface    string
	MulticastTTL int
}

// Conn is a broadcast-capable UDP socket. Payloads are opaque.
type Conn struct {
	conn     *net.UDPConn
	pc       *ipv4.PacketConn
	announce netip.AddrPort
}

func Listen(opts Options) (*Conn, error) {
	laddr := &net.UDPAddr{Port: opts.Port}
	if opts.Bind.IsValid() {
		laddr.IP = net.IP(opts.Bind.AsSlice())
	}

	conn, err := net.ListenUDP("udp4", laddr)
	if err != nil {
		return nil, err
	}

	err = conn.SetReadBuffer(constants.ReceiveBufSize)
	if err != nil {
		slog.Warn("Fail to set read buffer", "error", err)
	}

	c := &Conn{
		conn: conn,
		pc:   ipv4.NewPacketConn(conn),
	}

	port := c.LocalAddr().Port()

	if opts.Group.IsValid() {
		err = c.joinGroup(opts)
		if err != nil {
			conn.Close()
			return nil, err
		}
		c.announce = netip.AddrPortFrom(opts.Group, port)
		return c, nil
	}

	bcast := opts.Broadcast
	if !bcast.IsValid() {
		bcast = netip.MustParseAddr(constants.BroadcastIP)
	}
	c.announce = netip.AddrPortFrom(bcast, port)

	return c, nil
}

func (c *Conn) joinGroup(opts Options) error {
	if !opts.Group.Is4() || !opts.Group.IsMulticast() {
		return fmt.Errorf("%s is not an ipv4 multicast group", opts.Group)
	}
	group := &net.UDPAddr{IP: net.IP(opts.Group.AsSlice())}

	var ifaces []net.Interface
	if opts.Interface != "" {
		ifi, err := net.InterfaceByName(opts.Interface)
		if err != nil {
			return err
		}
		ifaces = append(ifaces, *ifi)
	} else {
		all, err := net.Interfaces()
		if err != nil {
			return err
		}
		for _, ifi := range all {
			if ifi.Flags&net.FlagUp != 0 && ifi.Flags&net.FlagMulticast != 0 {
				ifaces = append(ifaces, ifi)
			}
		}
	}

	joined := 0
	for i := range ifaces {
		err := c.pc.JoinGroup(&ifaces[i], group)
		if err != nil {
			slog.Debug("Fail to join group", "iface", ifaces[i].Name, "error", err)
			continue
		}
		joined++
	}
	if joined == 0 {
		return errors.New("no interface could join the multicast group")
	}

	ttl := opts.MulticastTTL
	if ttl <= 0 {
		ttl = 1
	}
	if err := c.pc.SetMulticastTTL(ttl); err != nil {
		return err
	}
	// peers on this host must hear each other too
	return c.pc.SetMulticastLoopback(true)
}

// WriteTo sends one datagram to dst.
func (c *Conn) WriteTo(b []byte, dst netip.AddrPort) error {
	_, err := c.conn.WriteToUDPAddrPort(b, dst)
	return err
}

// Broadcast sends one datagram to the announce destination: the
// broadcast address, or the multicast group when one is configured.
func (c *Conn) Broadcast(b []byte) error {
	return c.WriteTo(b, c.announce)
}

// ReadFrom blocks for the next datagram.
func (c *Conn) ReadFrom(b []byte) (int, netip.AddrPort, error) {
	n, addr, err := c.conn.ReadFromUDPAddrPort(b)
	if err != nil {
		return 0, netip.AddrPort{}, err
	}
	return n, netip.AddrPortFrom(addr.Addr().Unmap(), addr.Port()), nil
}

func (c *Conn) LocalAddr() netip.AddrPort {
	addr := c.conn.LocalAddr().(*net.UDPAddr).AddrPort()
	return netip.AddrPortFrom(addr.Addr().Unmap(), addr.Port())
}

// AnnounceAddr is where Broadcast sends.
func (c *Conn) AnnounceAddr() netip.AddrPort {
	return c.announce
}

// Close unblocks any pending ReadFrom.
func (c *Conn) Close() error {
	return c.conn.Close()
}

// IsClosed reports whether err comes from using a closed socket.
func IsClosed(err error) bool {
	return errors.Is(err, net.ErrClosed)
}
