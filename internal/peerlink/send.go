package peerlink

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/netip"
	"os"
	"path/filepath"
	"time"

	"github.com/ricardo-zabir/udp-peer2peer/internal/models"
	"github.com/ricardo-zabir/udp-peer2peer/internal/peerlink/constants"
	"github.com/ricardo-zabir/udp-peer2peer/internal/peerlink/wire"
	"github.com/ricardo-zabir/udp-peer2peer/internal/utils"
)

// Prepare checks that path is a readable regular file and assigns a fresh
// transfer id. Nothing is sent.
func Prepare(path string, dst netip.AddrPort) (*models.OutboundTransfer, error) {
	fi, err := statFile(path)
	if err != nil {
		return nil, err
	}

	return newTransfer(path, fi, dst), nil
}

func statFile(path string) (os.FileInfo, error) {
	fi, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", constants.ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("%w: %v", constants.ErrFileIO, err)
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", constants.ErrFileNotFound, path)
	}
	return fi, nil
}

func newTransfer(path string, fi os.FileInfo, dst netip.AddrPort) *models.OutboundTransfer {
	return &models.OutboundTransfer{
		ID:       utils.RandomID(),
		Path:     path,
		Filename: filepath.Base(path),
		Size:     fi.Size(),
		Dest:     dst,
	}
}

// SendFileTo streams the file at path to the named device and returns
// once END has been sent. The receiver's verdict arrives later as an
// EventAck or EventNack carrying the returned id.
func (e *Engine) SendFileTo(ctx context.Context, name, path string) (string, error) {
	t, err := e.prepare(name, path)
	if err != nil {
		return "", err
	}

	return t.ID, e.Transfer(ctx, t)
}

// StartSendFile validates the request and runs the transfer in the
// background.
func (e *Engine) StartSendFile(ctx context.Context, name, path string) (string, error) {
	t, err := e.prepare(name, path)
	if err != nil {
		return "", err
	}

	go func() {
		err := e.Transfer(ctx, t)
		if err != nil {
			slog.Error("Fail to send file", "id", t.ID, "file", t.Filename, "error", err)
		}
	}()

	return t.ID, nil
}

func (e *Engine) prepare(name, path string) (*models.OutboundTransfer, error) {
	// a missing file is reported before an unknown peer
	fi, err := statFile(path)
	if err != nil {
		return nil, err
	}

	dev, err := e.Resolve(name)
	if err != nil {
		return nil, err
	}

	return newTransfer(path, fi, dev.Addr), nil
}

// Transfer sends FILE_OFFER, every chunk in order and END with the sha256
// of the file. There is no retransmission and replies are not awaited.
func (e *Engine) Transfer(ctx context.Context, t *models.OutboundTransfer) error {
	slog.Info("Sending file", "id", t.ID, "file", t.Filename, "size", t.Size, "remote", t.Dest)

	err := send(e.tx, e.opts.Scope, wire.FileOffer{ID: t.ID, Filename: t.Filename, Size: t.Size}, t.Dest)
	if err != nil {
		return err
	}
	if err := e.pause(ctx, e.opts.OfferDelay); err != nil {
		return err
	}

	f, err := os.Open(t.Path)
	if err != nil {
		return fmt.Errorf("%w: %v", constants.ErrFileIO, err)
	}
	defer f.Close()

	buf := make([]byte, e.opts.ChunkSize)
	for seq := 0; ; seq++ {
		n, err := io.ReadFull(f, buf)
		if n > 0 {
			err := send(e.tx, e.opts.Scope, wire.Chunk{ID: t.ID, Seq: seq, Data: buf[:n]}, t.Dest)
			if err != nil {
				return err
			}
			if err := e.pause(ctx, e.opts.ChunkDelay); err != nil {
				return err
			}
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			return fmt.Errorf("%w: %v", constants.ErrFileIO, err)
		}
	}

	hash, err := utils.SHA256ofFile(t.Path)
	if err != nil {
		return fmt.Errorf("%w: %v", constants.ErrFileIO, err)
	}

	err = send(e.tx, e.opts.Scope, wire.End{ID: t.ID, Hash: hash}, t.Dest)
	if err != nil {
		return err
	}

	slog.Info("File sent", "id", t.ID, "file", t.Filename, "remote", t.Dest)
	return nil
}

func (e *Engine) pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-e.opts.Clock.After(d):
		return nil
	}
}
