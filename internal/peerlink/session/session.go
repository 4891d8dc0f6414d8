package session

import (
	"fmt"
	"io/fs"
	"net/netip"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/ricardo-zabir/udp-peer2peer/internal/models"
	"github.com/ricardo-zabir/udp-peer2peer/internal/peerlink/constants"
	"github.com/ricardo-zabir/udp-peer2peer/internal/utils"
)

// Session is one inbound file reconstruction. It is only reachable through
// the Store until Take hands it to a single owner.
type Session struct {
	ID           string
	Filename     string
	ExpectedSize int64
	Source       netip.AddrPort

	chunks       map[int][]byte
	bytes        int64
	lastActivity time.Time
}

func newSession(id, filename string, size int64, src netip.AddrPort, now time.Time) *Session {
	return &Session{
		ID:           id,
		Filename:     filename,
		ExpectedSize: size,
		Source:       src,
		chunks:       make(map[int][]byte),
		lastActivity: now,
	}
}

func (sess *Session) put(seq int, data []byte, now time.Time) {
	if old, ok := sess.chunks[seq]; ok {
		sess.bytes -= int64(len(old))
	}
	sess.chunks[seq] = data
	sess.bytes += int64(len(data))
	sess.lastActivity = now
}

// Assemble concatenates the chunks in ascending sequence order. Missing
// sequence numbers are skipped.
func (sess *Session) Assemble() []byte {
	seqs := make([]int, 0, len(sess.chunks))
	for seq := range sess.chunks {
		seqs = append(seqs, seq)
	}
	sort.Ints(seqs)

	out := make([]byte, 0, sess.bytes)
	for _, seq := range seqs {
		out = append(out, sess.chunks[seq]...)
	}
	return out
}

func (sess *Session) info() models.SessionInfo {
	return models.SessionInfo{
		ID:           sess.ID,
		Filename:     sess.Filename,
		ExpectedSize: sess.ExpectedSize,
		Chunks:       len(sess.chunks),
		Bytes:        sess.bytes,
		Source:       sess.Source.String(),
		LastActivity: sess.lastActivity,
	}
}

// ArtifactName is the local name a received file is stored under.
func ArtifactName(filename string) string {
	return constants.ReceivedPrefix + filepath.Base(filename)
}

// Finalize writes the assembled file into dir, overwriting any previous
// artifact of the same name, and checks its sha256 against expected.
// The artifact stays on disk even when the hash does not match.
func (sess *Session) Finalize(dir string, expected string) (string, error) {
	err := os.MkdirAll(dir, fs.ModePerm)
	if err != nil {
		return "", fmt.Errorf("%w: %v", constants.ErrFileIO, err)
	}

	saveAs := filepath.Join(dir, ArtifactName(sess.Filename))
	tmp := filepath.Join(dir, "."+ArtifactName(sess.Filename)+"."+uuid.NewString()+".part")

	err = os.WriteFile(tmp, sess.Assemble(), 0o640)
	if err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("%w: %v", constants.ErrFileIO, err)
	}
	err = os.Rename(tmp, saveAs)
	if err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("%w: %v", constants.ErrFileIO, err)
	}

	checksum, err := utils.SHA256ofFile(saveAs)
	if err != nil {
		return saveAs, fmt.Errorf("%w: %v", constants.ErrFileIO, err)
	}
	if checksum != expected {
		return saveAs, constants.ErrHashMismatch
	}

	return saveAs, nil
}
