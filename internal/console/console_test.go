package console

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/netip"
	"strings"
	"testing"
	"time"

	"github.com/andres-erbsen/clock"
	"github.com/ricardo-zabir/udp-peer2peer/internal/models"
	"github.com/ricardo-zabir/udp-peer2peer/internal/peerlink"
	"github.com/ricardo-zabir/udp-peer2peer/internal/peerlink/constants"
)

type fakeNode struct {
	devices []models.Device
	talks   []string
	sends   []string
}

func (n *fakeNode) Devices() []models.Device { return n.devices }

func (n *fakeNode) Talk(name, text string) (string, error) {
	if name != "bob" {
		return "", fmt.Errorf("%w: %s", constants.ErrUnknownDevice, name)
	}
	n.talks = append(n.talks, text)
	return "1234", nil
}

func (n *fakeNode) StartSendFile(ctx context.Context, name, path string) (string, error) {
	if path == "missing.txt" {
		return "", fmt.Errorf("%w: %s", constants.ErrFileNotFound, path)
	}
	if name != "bob" {
		return "", fmt.Errorf("%w: %s", constants.ErrUnknownDevice, name)
	}
	n.sends = append(n.sends, path)
	return "5678", nil
}

func newTestConsole(node Node) (*Console, *bytes.Buffer) {
	out := &bytes.Buffer{}
	c := New(node, strings.NewReader(""), out)
	return c, out
}

func TestExec(t *testing.T) {
	tests := []struct {
		line  string
		want  string
		talks []string
		sends []string
	}{
		{"talk bob hello there", "Message 1234 sent to bob", []string{"hello there"}, nil},
		{"talk carol hi", "Device carol not found", nil, nil},
		{"talk bob", "usage: talk", nil, nil},
		{"sendfile bob notes.txt", "Sending notes.txt to bob as transfer 5678", nil, []string{"notes.txt"}},
		{"sendfile carol notes.txt", "Device carol not found", nil, nil},
		{"sendfile carol missing.txt", "File not found", nil, nil},
		{"sendfile", "usage: sendfile", nil, nil},
		{"help", "talk <name> <message>", nil, nil},
		{"dance", `Unknown command "dance"`, nil, nil},
		{"devices", "No active devices", nil, nil},
	}

	for _, tt := range tests {
		node := &fakeNode{}
		c, out := newTestConsole(node)

		if c.Exec(context.Background(), tt.line) {
			t.Errorf("Exec(%q) asked to quit", tt.line)
		}
		if !strings.Contains(out.String(), tt.want) {
			t.Errorf("Exec(%q) printed %q; want it to contain %q", tt.line, out.String(), tt.want)
		}
		if fmt.Sprint(node.talks) != fmt.Sprint(tt.talks) || fmt.Sprint(node.sends) != fmt.Sprint(tt.sends) {
			t.Errorf("Exec(%q) talks=%v sends=%v; want %v %v", tt.line, node.talks, node.sends, tt.talks, tt.sends)
		}
	}
}

func TestExecDevices(t *testing.T) {
	mock := clock.NewMock()
	node := &fakeNode{devices: []models.Device{
		{Name: "bob", Addr: netip.MustParseAddrPort("192.168.1.11:50000"), LastSeen: mock.Now()},
	}}
	c, out := newTestConsole(node)
	c.clock = mock
	mock.Add(3 * time.Second)

	c.Exec(context.Background(), "devices")
	if !strings.Contains(out.String(), "bob - 192.168.1.11:50000 - 3s ago") {
		t.Errorf("devices printed %q", out.String())
	}
}

func TestRunStopsOnQuit(t *testing.T) {
	node := &fakeNode{}
	out := &bytes.Buffer{}
	c := New(node, strings.NewReader("talk bob hi\nquit\ntalk bob again\n"), out)

	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(node.talks) != 1 || node.talks[0] != "hi" {
		t.Errorf("talks = %v; want [hi]", node.talks)
	}
}

func TestRunStopsAtEOF(t *testing.T) {
	c, _ := newTestConsole(&fakeNode{})

	if err := c.Run(context.Background()); err != io.EOF {
		t.Errorf("Run at end of input = %v; want io.EOF", err)
	}
}

func TestPrintEvent(t *testing.T) {
	from := netip.MustParseAddrPort("192.168.1.10:50000")
	tests := []struct {
		ev   peerlink.Event
		want string
	}{
		{peerlink.Event{Kind: peerlink.EventTalk, From: from, ID: "7", Text: "hi"}, "Message from 192.168.1.10:50000: hi"},
		{peerlink.Event{Kind: peerlink.EventAck, ID: "7"}, "ACK received for 7"},
		{peerlink.Event{Kind: peerlink.EventNack, ID: "42", Text: "hash_mismatch"}, "NACK received for 42: hash_mismatch"},
		{peerlink.Event{Kind: peerlink.EventFileReceived, Path: "in/received_a.txt"}, "File in/received_a.txt received"},
		{peerlink.Event{Kind: peerlink.EventFileFailed, ID: "42", From: from, Err: errors.New("boom")}, "Transfer 42 from 192.168.1.10:50000 failed: boom"},
	}

	for _, tt := range tests {
		c, out := newTestConsole(&fakeNode{})
		c.PrintEvent(tt.ev)
		if !strings.Contains(out.String(), tt.want) {
			t.Errorf("PrintEvent(%v) = %q; want %q", tt.ev.Kind, out.String(), tt.want)
		}
	}
}
