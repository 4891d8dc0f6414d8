package peerlink

import "net/netip"

type EventKind int

const (
	EventTalk EventKind = iota
	EventAck
	EventNack
	EventFileReceived
	EventFileFailed
)

func (k EventKind) String() string {
	switch k {
	case EventTalk:
		return "talk"
	case EventAck:
		return "ack"
	case EventNack:
		return "nack"
	case EventFileReceived:
		return "file_received"
	case EventFileFailed:
		return "file_failed"
	default:
		return "unknown"
	}
}

// Event is something the local user should see: an incoming talk, an
// acknowledgment or the outcome of an inbound transfer.
type Event struct {
	Kind EventKind
	From netip.AddrPort
	ID   string
	// Text is the talk text or the nack reason.
	Text string
	// Path is where a received file was written.
	Path string
	Err  error
}
