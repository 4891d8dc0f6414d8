package node

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ricardo-zabir/udp-peer2peer/internal/peerlink"
)

var ErrRejected = errors.New("rejected by receiver")

// Tracker tallies ACK and NACK events per id. Observe never blocks, so it
// can sit on the engine's receive path however fast replies arrive.
type Tracker struct {
	mu      sync.Mutex
	acks    map[string]int
	nacks   map[string]string
	changed chan struct{}
}

func NewTracker() *Tracker {
	return &Tracker{
		acks:    make(map[string]int),
		nacks:   make(map[string]string),
		changed: make(chan struct{}, 1),
	}
}

// Observe is meant to be passed to Engine.OnEvent.
func (tr *Tracker) Observe(ev peerlink.Event) {
	tr.mu.Lock()
	switch ev.Kind {
	case peerlink.EventAck:
		tr.acks[ev.ID]++
	case peerlink.EventNack:
		tr.nacks[ev.ID] = ev.Text
	default:
		tr.mu.Unlock()
		return
	}
	tr.mu.Unlock()

	select {
	case tr.changed <- struct{}{}:
	default:
	}
}

func (tr *Tracker) Acks(id string) int {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	return tr.acks[id]
}

// Wait blocks until id has collected want ACKs, a NACK arrives for it or
// ctx ends. It returns the ACKs seen so far.
func (tr *Tracker) Wait(ctx context.Context, id string, want int) (int, error) {
	for {
		tr.mu.Lock()
		got := tr.acks[id]
		reason, nacked := tr.nacks[id]
		tr.mu.Unlock()

		if nacked {
			return got, fmt.Errorf("%w: %s %s", ErrRejected, id, reason)
		}
		if got >= want {
			return got, nil
		}

		select {
		case <-ctx.Done():
			return got, ctx.Err()
		case <-tr.changed:
		}
	}
}

// ExpectedAcks is how many ACKs a complete transfer of size bytes earns:
// one for the offer, one per chunk and one for the verified file.
func ExpectedAcks(size int64, chunkSize int) int {
	chunks := (size + int64(chunkSize) - 1) / int64(chunkSize)
	return int(chunks) + 2
}
