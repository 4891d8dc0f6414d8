package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/andres-erbsen/clock"
	"github.com/ricardo-zabir/udp-peer2peer/internal/models"
	"github.com/ricardo-zabir/udp-peer2peer/internal/peerlink"
	"github.com/ricardo-zabir/udp-peer2peer/internal/peerlink/constants"
)

const prompt = "> "

const helpText = `Commands:
  devices                  list active devices
  talk <name> <message>    send a text message
  sendfile <name> <path>   send a file
  help                     show this help
  quit                     leave
`

// Node is the part of the engine the console drives.
type Node interface {
	Devices() []models.Device
	Talk(name, text string) (string, error)
	StartSendFile(ctx context.Context, name, path string) (string, error)
}

// Console is the interactive command prompt.
type Console struct {
	node  Node
	clock clock.Clock
	in    io.Reader

	mu  sync.Mutex
	out io.Writer
}

func New(node Node, in io.Reader, out io.Writer) *Console {
	return &Console{
		node:  node,
		clock: clock.New(),
		in:    in,
		out:   out,
	}
}

// Run reads commands until quit or ctx is cancelled, which return nil, or
// until the input ends, which returns io.EOF.
func (c *Console) Run(ctx context.Context) error {
	lines := make(chan string)
	errc := make(chan error, 1)
	stop := make(chan struct{})
	defer close(stop)

	go func() {
		sc := bufio.NewScanner(c.in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-stop:
				return
			}
		}
		errc <- sc.Err()
	}()

	c.printf(prompt)
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errc:
			if err == nil {
				return io.EOF
			}
			return err
		case line := <-lines:
			if c.Exec(ctx, line) {
				return nil
			}
			c.printf(prompt)
		}
	}
}

// Exec runs one command line and reports whether the user asked to quit.
func (c *Console) Exec(ctx context.Context, line string) bool {
	cmd, args, _ := strings.Cut(strings.TrimSpace(line), " ")
	args = strings.TrimSpace(args)

	switch cmd {
	case "":
	case "devices":
		c.devices()
	case "talk":
		c.talk(args)
	case "sendfile":
		c.sendFile(ctx, args)
	case "help":
		c.printf(helpText)
	case "quit", "exit":
		return true
	default:
		c.printf("Unknown command %q, type help\n", cmd)
	}
	return false
}

func (c *Console) devices() {
	devs := c.node.Devices()
	if len(devs) == 0 {
		c.printf("No active devices\n")
		return
	}

	now := c.clock.Now()
	c.printf("Active devices:\n")
	for _, d := range devs {
		c.printf("%s - %s - %ds ago\n", d.Name, d.Addr, int64(d.Age(now)/time.Second))
	}
}

func (c *Console) talk(args string) {
	name, text, _ := strings.Cut(args, " ")
	if name == "" || text == "" {
		c.printf("usage: talk <name> <message>\n")
		return
	}

	id, err := c.node.Talk(name, text)
	if err != nil {
		c.printError(name, err)
		return
	}
	c.printf("Message %s sent to %s\n", id, name)
}

func (c *Console) sendFile(ctx context.Context, args string) {
	name, path, _ := strings.Cut(args, " ")
	path = strings.TrimSpace(path)
	if name == "" || path == "" {
		c.printf("usage: sendfile <name> <path>\n")
		return
	}

	id, err := c.node.StartSendFile(ctx, name, path)
	if err != nil {
		c.printError(name, err)
		return
	}
	c.printf("Sending %s to %s as transfer %s\n", path, name, id)
}

func (c *Console) printError(name string, err error) {
	switch {
	case errors.Is(err, constants.ErrUnknownDevice):
		c.printf("Device %s not found\n", name)
	case errors.Is(err, constants.ErrFileNotFound):
		c.printf("File not found\n")
	default:
		c.printf("error: %v\n", err)
	}
}

// PrintEvent shows an engine event to the user. It is meant to be passed
// to Engine.OnEvent.
func (c *Console) PrintEvent(ev peerlink.Event) {
	switch ev.Kind {
	case peerlink.EventTalk:
		c.printf("\nMessage from %s: %s\n", ev.From, ev.Text)
	case peerlink.EventAck:
		c.printf("\nACK received for %s\n", ev.ID)
	case peerlink.EventNack:
		c.printf("\nNACK received for %s: %s\n", ev.ID, ev.Text)
	case peerlink.EventFileReceived:
		c.printf("\nFile %s received\n", ev.Path)
	case peerlink.EventFileFailed:
		c.printf("\nTransfer %s from %s failed: %v\n", ev.ID, ev.From, ev.Err)
	}
}

func (c *Console) printf(format string, a ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintf(c.out, format, a...)
}
