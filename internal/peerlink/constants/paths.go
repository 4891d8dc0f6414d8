package constants

import "time"

const (
	InfoPath      = "/api/peerlink/v1/info"
	DevicesPath   = "/api/peerlink/v1/devices"
	TransfersPath = "/api/peerlink/v1/transfers"
	TalkPath      = "/api/peerlink/v1/talk"
	SendFilePath  = "/api/peerlink/v1/sendfile"
)

const (
	DefaultPort      = 50000
	BroadcastIP      = "255.255.255.255"
	ReceiveBufSize   = 65535
	ReceivedPrefix   = "received_"
	HashMismatch     = "hash_mismatch"
	IOErrorReason    = "io_error"
	DefaultAPIListen = "127.0.0.1:50080"
)

const (
	HeartbeatInterval  = 5 * time.Second
	DeviceTimeout      = 10 * time.Second
	ReapInterval       = 1 * time.Second
	ChunkSize          = 1024
	ChunkDelay         = 100 * time.Millisecond
	OfferDelay         = 500 * time.Millisecond
	SessionIdleTimeout = 2 * time.Minute
	MaxSessions        = 64
)
