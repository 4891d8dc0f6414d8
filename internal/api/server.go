package api

import (
	"context"
	"log/slog"
	"time"

	"github.com/andres-erbsen/clock"
	"github.com/gofiber/fiber/v2"
	"github.com/ricardo-zabir/udp-peer2peer/internal/models"
	"github.com/ricardo-zabir/udp-peer2peer/internal/peerlink/constants"
)

// Node is what the API exposes of a running engine.
type Node interface {
	Info() models.DeviceInfo
	Devices() []models.Device
	Sessions() []models.SessionInfo
	Talk(name, text string) (string, error)
	StartSendFile(ctx context.Context, name, path string) (string, error)
}

// Server is the local control API. It lets other processes on this host
// use a running node without going through its console.
type Server struct {
	node  Node
	app   *fiber.App
	clock clock.Clock
	// transfers started over the API outlive the request
	ctx context.Context
}

func NewServer(node Node) *Server {
	s := &Server{
		node:  node,
		clock: clock.New(),
		ctx:   context.Background(),
		app: fiber.New(fiber.Config{
			AppName:               "peerlink",
			DisableStartupMessage: true,
			ReadTimeout:           10 * time.Second,
		}),
	}

	s.app.Get(constants.InfoPath, s.infoHandler)
	s.app.Get(constants.DevicesPath, s.devicesHandler)
	s.app.Get(constants.TransfersPath, s.transfersHandler)
	s.app.Post(constants.TalkPath, s.talkHandler)
	s.app.Post(constants.SendFilePath, s.sendFileHandler)

	return s
}

// Serve listens on addr until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, addr string) error {
	s.ctx = ctx

	go func() {
		<-ctx.Done()
		s.app.Shutdown()
	}()

	slog.Info("Local API listening", "addr", addr)
	return s.app.Listen(addr)
}

func (s *Server) infoHandler(c *fiber.Ctx) error {
	info := s.node.Info()
	return c.JSON(&info)
}

func (s *Server) devicesHandler(c *fiber.Ctx) error {
	now := s.clock.Now()

	views := make([]models.DeviceView, 0)
	for _, d := range s.node.Devices() {
		views = append(views, models.NewDeviceView(d, now))
	}
	return c.JSON(views)
}

func (s *Server) transfersHandler(c *fiber.Ctx) error {
	sessions := s.node.Sessions()
	if sessions == nil {
		sessions = []models.SessionInfo{}
	}
	return c.JSON(sessions)
}

func (s *Server) talkHandler(c *fiber.Ctx) error {
	var req models.TalkReq

	err := c.BodyParser(&req)
	if err != nil || req.Name == "" || req.Text == "" {
		return c.SendStatus(constants.Status(constants.ErrInvalidBody))
	}

	id, err := s.node.Talk(req.Name, req.Text)
	if err != nil {
		slog.Debug("Talk rejected", "name", req.Name, "error", err)
		return c.SendStatus(constants.Status(err))
	}

	return c.JSON(&models.IDResp{ID: id})
}

func (s *Server) sendFileHandler(c *fiber.Ctx) error {
	var req models.SendFileReq

	err := c.BodyParser(&req)
	if err != nil || req.Name == "" || req.Path == "" {
		return c.SendStatus(constants.Status(constants.ErrInvalidBody))
	}

	id, err := s.node.StartSendFile(s.ctx, req.Name, req.Path)
	if err != nil {
		slog.Debug("Send rejected", "name", req.Name, "path", req.Path, "error", err)
		return c.SendStatus(constants.Status(err))
	}

	return c.Status(fiber.StatusAccepted).JSON(&models.IDResp{ID: id})
}
