package models

import (
	"net/netip"
	"time"
)

// OutboundTransfer is the state of one file being sent. It lives only as
// long as the send loop.
type OutboundTransfer struct {
	ID       string
	Path     string
	Filename string
	Size     int64
	Dest     netip.AddrPort
}

// SessionInfo is a read-only snapshot of an inbound transfer session.
type SessionInfo struct {
	ID           string    `json:"id"`
	Filename     string    `json:"fileName"`
	ExpectedSize int64     `json:"size"`
	Chunks       int       `json:"chunks"`
	Bytes        int64     `json:"bytes"`
	Source       string    `json:"source"`
	LastActivity time.Time `json:"lastActivity"`
}

// TalkReq is the body of an API talk request.
type TalkReq struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// SendFileReq is the body of an API sendfile request.
type SendFileReq struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// IDResp carries the id assigned to a talk or transfer.
type IDResp struct {
	ID string `json:"id"`
}
