package wire

// Command tokens as they appear on the wire. Tokens are case-sensitive.
const (
	CmdAnnounce  = "ANNOUNCE"
	CmdTalk      = "TALK"
	CmdAck       = "ACK"
	CmdNack      = "NACK"
	CmdFileOffer = "FILE_OFFER"
	CmdChunk     = "CHUNK"
	CmdEnd       = "END"
)

// Tokens spoken by older peers, accepted on decode only.
const (
	legacyAnnounce  = "HEARTBEAT"
	legacyFileOffer = "FILE"
)

// Message is a decoded datagram. The set of variants is closed:
// Announce, Talk, Ack, Nack, FileOffer, Chunk, End and Unknown.
type Message interface {
	Command() string
	isMessage()
}

// Announce asserts the liveness of a named device.
type Announce struct {
	Name string
}

// Talk carries a short text message.
type Talk struct {
	ID   string
	Text string
}

// Ack acknowledges a talk, offer, chunk or completed transfer.
type Ack struct {
	ID string
}

// Nack reports a failure for the given id.
type Nack struct {
	ID     string
	Reason string
}

// FileOffer opens an inbound transfer session on the receiver.
type FileOffer struct {
	ID       string
	Filename string
	Size     int64
}

// Chunk is one sequence-numbered block of a file. Data holds the raw
// bytes; the base64 form only exists on the wire.
type Chunk struct {
	ID   string
	Seq  int
	Data []byte
}

// End closes a transfer with the sender's sha256 of the whole file.
type End struct {
	ID   string
	Hash string
}

// Unknown is any datagram whose command token is not recognised.
type Unknown struct {
	Token string
}

func (Announce) Command() string  { return CmdAnnounce }
func (Talk) Command() string      { return CmdTalk }
func (Ack) Command() string       { return CmdAck }
func (Nack) Command() string      { return CmdNack }
func (FileOffer) Command() string { return CmdFileOffer }
func (Chunk) Command() string     { return CmdChunk }
func (End) Command() string       { return CmdEnd }
func (u Unknown) Command() string { return u.Token }

func (Announce) isMessage()  {}
func (Talk) isMessage()      {}
func (Ack) isMessage()       {}
func (Nack) isMessage()      {}
func (FileOffer) isMessage() {}
func (Chunk) isMessage()     {}
func (End) isMessage()       {}
func (Unknown) isMessage()   {}
