package node

import (
	"context"
	"errors"
	"time"

	"github.com/ricardo-zabir/udp-peer2peer/internal/models"
	"github.com/ricardo-zabir/udp-peer2peer/internal/peerlink"
	"github.com/ricardo-zabir/udp-peer2peer/internal/peerlink/constants"
)

// WaitForDevice polls the registry until name shows up or ctx ends.
// A fresh node knows nobody until the first round of announcements.
func WaitForDevice(ctx context.Context, eng *peerlink.Engine, name string) (models.Device, error) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		dev, err := eng.Resolve(name)
		if err == nil {
			return dev, nil
		}
		if !errors.Is(err, constants.ErrUnknownDevice) {
			return models.Device{}, err
		}

		select {
		case <-ctx.Done():
			return models.Device{}, err
		case <-ticker.C:
		}
	}
}
