package api

import (
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/ricardo-zabir/udp-peer2peer/internal/models"
	"github.com/ricardo-zabir/udp-peer2peer/internal/peerlink/constants"
	"github.com/valyala/fasthttp"
)

// Client talks to the local API of a running node.
type Client struct {
	addr    string
	timeout time.Duration
}

func NewClient(addr string) *Client {
	return &Client{addr: addr, timeout: 5 * time.Second}
}

func (cl *Client) Info() (models.DeviceInfo, error) {
	var info models.DeviceInfo
	err := cl.do(fiber.MethodGet, constants.InfoPath, nil, &info)
	return info, err
}

func (cl *Client) Devices() ([]models.DeviceView, error) {
	var devs []models.DeviceView
	err := cl.do(fiber.MethodGet, constants.DevicesPath, nil, &devs)
	return devs, err
}

func (cl *Client) Transfers() ([]models.SessionInfo, error) {
	var sessions []models.SessionInfo
	err := cl.do(fiber.MethodGet, constants.TransfersPath, nil, &sessions)
	return sessions, err
}

func (cl *Client) Talk(name, text string) (string, error) {
	var resp models.IDResp
	err := cl.do(fiber.MethodPost, constants.TalkPath, &models.TalkReq{Name: name, Text: text}, &resp)
	return resp.ID, err
}

// SendFile asks the node to send path, which is resolved on the node's
// side, and returns the transfer id without waiting for it to finish.
func (cl *Client) SendFile(name, path string) (string, error) {
	var resp models.IDResp
	err := cl.do(fiber.MethodPost, constants.SendFilePath, &models.SendFileReq{Name: name, Path: path}, &resp)
	return resp.ID, err
}

func (cl *Client) do(method, path string, body any, out any) error {
	agent := fiber.AcquireAgent()
	defer fiber.ReleaseAgent(agent)

	req := agent.Request()
	cl.prepareUri(req, path)
	req.Header.SetMethod(method)
	err := agent.Parse()
	if err != nil {
		return err
	}

	if body != nil {
		agent.JSON(body)
	}

	status, b, errs := agent.Timeout(cl.timeout).Bytes()
	if len(errs) != 0 {
		return errs[0]
	}

	// parse error from http status
	err = constants.ParseError(status)
	if err != nil {
		return err
	}

	return json.Unmarshal(b, out)
}

func (cl *Client) prepareUri(req *fasthttp.Request, path string) {
	req.Header.SetUserAgent("peerlink")
	req.URI().SetScheme("http")
	req.URI().SetHost(cl.addr)
	req.URI().SetPath(path)
}
