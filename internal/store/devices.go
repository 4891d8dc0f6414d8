package store

import (
	"net/netip"
	"sort"
	"sync"
	"time"

	"github.com/ricardo-zabir/udp-peer2peer/internal/models"
)

// Registry tracks known devices by declared name. Names are not unique
// beyond last-write-wins.
type Registry struct {
	devices map[string]models.Device
	timeout time.Duration
	mu      *sync.RWMutex
}

func NewRegistry(timeout time.Duration) *Registry {
	return &Registry{
		devices: make(map[string]models.Device),
		timeout: timeout,
		mu:      &sync.RWMutex{},
	}
}

// Upsert inserts the device or refreshes its last-seen time. The address
// is always overwritten so peers may move.
func (r *Registry) Upsert(name string, addr netip.AddrPort, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.devices[name] = models.Device{
		Name:     name,
		Addr:     addr,
		LastSeen: now,
	}
}

func (r *Registry) Lookup(name string) (models.Device, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	dev, ok := r.devices[name]
	return dev, ok
}

// Sweep removes every device not heard from for longer than the timeout
// and returns the evicted names.
func (r *Registry) Sweep(now time.Time) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var evicted []string
	for name, dev := range r.devices {
		if now.Sub(dev.LastSeen) > r.timeout {
			delete(r.devices, name)
			evicted = append(evicted, name)
		}
	}

	return evicted
}

// List returns a snapshot sorted by name.
func (r *Registry) List() []models.Device {
	r.mu.RLock()
	result := make([]models.Device, 0, len(r.devices))
	for _, dev := range r.devices {
		result = append(result, dev)
	}
	r.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.devices)
}
