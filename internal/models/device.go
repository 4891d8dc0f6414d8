package models

import (
	"net/netip"
	"time"
)

// Device is a peer known from its announcements.
type Device struct {
	Name     string         `json:"name"`
	Addr     netip.AddrPort `json:"address"`
	LastSeen time.Time      `json:"lastSeen"`
}

// Age reports how long ago the device was last heard from.
func (d Device) Age(now time.Time) time.Duration {
	return now.Sub(d.LastSeen)
}

// DeviceInfo describes the local node.
type DeviceInfo struct {
	Name       string `json:"name"`
	InstanceID string `json:"instanceId"`
	Port       int    `json:"port"`
	SaveDir    string `json:"saveDir"`
}

// DeviceView is the API representation of a known peer.
type DeviceView struct {
	Name       string `json:"name"`
	Address    string `json:"address"`
	AgeSeconds int64  `json:"ageSeconds"`
}

func NewDeviceView(d Device, now time.Time) DeviceView {
	return DeviceView{
		Name:       d.Name,
		Address:    d.Addr.String(),
		AgeSeconds: int64(d.Age(now) / time.Second),
	}
}
