package wire

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/ricardo-zabir/udp-peer2peer/internal/peerlink/constants"
)

// Decode parses a datagram payload. Unrecognised command tokens yield an
// Unknown message and no error; a recognised command with missing or
// invalid fields yields an error wrapping constants.ErrMalformed.
func Decode(b []byte) (Message, error) {
	line := strings.TrimSuffix(string(b), "\n")
	line = strings.TrimSuffix(line, "\r")

	token, rest, _ := strings.Cut(line, " ")

	switch token {
	case CmdAnnounce, legacyAnnounce:
		if rest == "" {
			return nil, malformed(token, "missing name")
		}
		return Announce{Name: rest}, nil

	case CmdTalk:
		id, text, ok := strings.Cut(rest, " ")
		if !ok || id == "" {
			return nil, malformed(token, "missing text")
		}
		return Talk{ID: id, Text: text}, nil

	case CmdAck:
		id, _, _ := strings.Cut(rest, " ")
		if id == "" {
			return nil, malformed(token, "missing id")
		}
		return Ack{ID: id}, nil

	case CmdNack:
		id, reason, _ := strings.Cut(rest, " ")
		if id == "" {
			return nil, malformed(token, "missing id")
		}
		return Nack{ID: id, Reason: reason}, nil

	case CmdFileOffer, legacyFileOffer:
		return decodeOffer(token, rest)

	case CmdChunk:
		return decodeChunk(token, rest)

	case CmdEnd:
		id, hash, ok := strings.Cut(rest, " ")
		if !ok || id == "" || hash == "" {
			return nil, malformed(token, "missing hash")
		}
		return End{ID: id, Hash: hash}, nil
	}

	return Unknown{Token: token}, nil
}

// filename sits between the id and the trailing size, so it may hold spaces
func decodeOffer(token, rest string) (Message, error) {
	id, tail, ok := strings.Cut(rest, " ")
	if !ok || id == "" {
		return nil, malformed(token, "missing filename")
	}

	idx := strings.LastIndexByte(tail, ' ')
	if idx <= 0 {
		return nil, malformed(token, "missing size")
	}

	size, err := strconv.ParseInt(tail[idx+1:], 10, 64)
	if err != nil || size < 0 {
		return nil, malformed(token, "bad size")
	}

	return FileOffer{ID: id, Filename: tail[:idx], Size: size}, nil
}

func decodeChunk(token, rest string) (Message, error) {
	id, tail, ok := strings.Cut(rest, " ")
	if !ok || id == "" {
		return nil, malformed(token, "missing seq")
	}

	seqStr, payload, ok := strings.Cut(tail, " ")
	if !ok {
		return nil, malformed(token, "missing payload")
	}

	seq, err := strconv.Atoi(seqStr)
	if err != nil || seq < 0 {
		return nil, malformed(token, "bad seq")
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, malformed(token, "bad payload")
	}

	return Chunk{ID: id, Seq: seq, Data: data}, nil
}

func malformed(token, why string) error {
	return fmt.Errorf("%w: %s: %s", constants.ErrMalformed, token, why)
}

// Encode renders a message in its wire form.
func Encode(msg Message) []byte {
	var s string

	switch m := msg.(type) {
	case Announce:
		s = CmdAnnounce + " " + m.Name
	case Talk:
		s = CmdTalk + " " + m.ID + " " + m.Text
	case Ack:
		s = CmdAck + " " + m.ID
	case Nack:
		s = CmdNack + " " + m.ID + " " + m.Reason
	case FileOffer:
		s = fmt.Sprintf("%s %s %s %d", CmdFileOffer, m.ID, m.Filename, m.Size)
	case Chunk:
		s = fmt.Sprintf("%s %s %d %s", CmdChunk, m.ID, m.Seq, base64.StdEncoding.EncodeToString(m.Data))
	case End:
		s = CmdEnd + " " + m.ID + " " + m.Hash
	case Unknown:
		s = m.Token
	}

	return []byte(s)
}
