package ui

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/irisauth/kiosk/internal/log"
	"github.com/irisauth/kiosk/pkg/hub"
	"github.com/irisauth/kiosk/pkg/media"
	"github.com/irisauth/kiosk/pkg/transport"
	"github.com/irisauth/kiosk/pkg/workflow"
)

// Accounts is the slice of the remote service the account routes use.
// *transport.Client satisfies it.
type Accounts interface {
	Register(ctx context.Context, username, password string) error
	Login(ctx context.Context, username, password string) error
	Logout(ctx context.Context) error
}

// Server is the local dashboard server. It exposes the workflow over
// REST, pushes status over a websocket hub, and relays preview frames
// to the browser.
type Server struct {
	app  *fiber.App
	port int

	wf          *workflow.Workflow
	accounts    Accounts
	constraints media.Constraints

	statusHub *hub.Hub
	cameraHub *hub.Hub
}

// navigateEvent tells the dashboard to change pages.
type navigateEvent struct {
	Event string `json:"event"`
	URL   string `json:"url"`
}

// NewServer creates the dashboard server around a workflow. The
// constraints are used when the dashboard asks to (re)acquire the
// camera; accounts backs the register/login/logout routes.
func NewServer(port int, wf *workflow.Workflow, accounts Accounts, constraints media.Constraints) *Server {
	s := &Server{
		port:        port,
		wf:          wf,
		accounts:    accounts,
		constraints: constraints,
		statusHub:   hub.New("status"),
		cameraHub:   hub.New("camera"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "Iris Kiosk",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	app.Static("/", "./web")

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Post("/flows/:kind", s.handleTrigger)
	api.Post("/camera/acquire", s.handleAcquire)
	api.Post("/camera/release", s.handleRelease)
	api.Post("/account/register", s.handleRegister)
	api.Post("/account/login", s.handleLogin)
	api.Post("/account/logout", s.handleLogout)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/status", websocket.New(s.handleStatusWS))
	app.Get("/ws/camera", websocket.New(s.handleCameraWS))

	s.app = app
	return s
}

// Start runs the hubs and serves on the configured port. Blocks.
func (s *Server) Start() error {
	go s.statusHub.Run()
	go s.cameraHub.Run()
	log.Info("dashboard listening", "port", s.port)
	return s.app.Listen(fmt.Sprintf(":%d", s.port))
}

// Serve is like Start but on a caller-provided listener.
func (s *Server) Serve(ln net.Listener) error {
	go s.statusHub.Run()
	go s.cameraHub.Run()
	return s.app.Listener(ln)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App exposes the fiber app for in-process testing.
func (s *Server) App() *fiber.App {
	return s.app
}

// view builds the current projection.
func (s *Server) view() StatusView {
	sess := s.wf.Session()
	return Project(sess.State(), sess.Failure(), s.wf.Snapshot())
}

// PushStatus broadcasts the current projection to all dashboard clients.
func (s *Server) PushStatus() {
	s.statusHub.BroadcastJSON(s.view())
}

// PushNavigation tells connected dashboards to navigate to url.
// The workflow's deferred post-verify navigation lands here.
func (s *Server) PushNavigation(url string) {
	s.statusHub.BroadcastJSON(navigateEvent{Event: "navigate", URL: url})
}

// PushPreviewFrame relays one JPEG preview frame to the dashboard.
func (s *Server) PushPreviewFrame(jpeg []byte) {
	s.cameraHub.BroadcastBinary(jpeg)
}

func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.view())
}

func (s *Server) handleTrigger(c *fiber.Ctx) error {
	flow := transport.FlowKind(c.Params("kind"))
	if !flow.Valid() {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "unknown flow: " + string(flow),
		})
	}

	result, err := s.wf.Trigger(c.Context(), flow)
	if errors.Is(err, workflow.ErrBusy) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "a capture is already in progress",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(result)
}

func (s *Server) handleAcquire(c *fiber.Ctx) error {
	if err := s.wf.Session().Acquire(s.constraints); err != nil {
		s.PushStatus()
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	s.PushStatus()
	return c.JSON(s.view())
}

func (s *Server) handleRelease(c *fiber.Ctx) error {
	s.wf.Session().Release()
	s.PushStatus()
	return c.JSON(s.view())
}

// credentialsBody is the JSON body for the account routes.
type credentialsBody struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// handleRegister completes account creation. The remote binds the
// enrollment it already holds to the new account, so the route refuses
// until the registration-time enrollment has been accepted.
func (s *Server) handleRegister(c *fiber.Ctx) error {
	if !s.wf.Snapshot().RegisterEnrollDone {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "capture an iris before creating the account",
		})
	}

	var body credentialsBody
	if err := c.BodyParser(&body); err != nil || body.Username == "" || body.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "username and password are required",
		})
	}

	if err := s.accounts.Register(c.Context(), body.Username, body.Password); err != nil {
		status, msg := accountError(err)
		return c.Status(status).JSON(fiber.Map{"error": msg})
	}
	return c.JSON(fiber.Map{"message": "Account created", "username": body.Username})
}

func (s *Server) handleLogin(c *fiber.Ctx) error {
	var body credentialsBody
	if err := c.BodyParser(&body); err != nil || body.Username == "" || body.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "username and password are required",
		})
	}

	if err := s.accounts.Login(c.Context(), body.Username, body.Password); err != nil {
		status, msg := accountError(err)
		return c.Status(status).JSON(fiber.Map{"error": msg})
	}
	return c.JSON(fiber.Map{"message": "Logged in", "username": body.Username})
}

func (s *Server) handleLogout(c *fiber.Ctx) error {
	if err := s.accounts.Logout(c.Context()); err != nil {
		status, msg := accountError(err)
		return c.Status(status).JSON(fiber.Map{"error": msg})
	}
	return c.JSON(fiber.Map{"message": "Logged out"})
}

// accountError maps a remote account failure onto the dashboard
// response. Remote rejections keep their status and message; anything
// else is a gateway problem.
func accountError(err error) (int, string) {
	var apiErr *transport.APIError
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = apiErr.Error()
		}
		return apiErr.StatusCode, msg
	}
	return fiber.StatusBadGateway, err.Error()
}

// handleStatusWS serves the status stream. The current view is sent
// immediately so a fresh dashboard renders without waiting for a change.
func (s *Server) handleStatusWS(c *websocket.Conn) {
	c.WriteJSON(s.view())
	client := hub.NewClient(s.statusHub, c)
	client.Run()
}

// handleCameraWS serves the preview frame stream.
func (s *Server) handleCameraWS(c *websocket.Conn) {
	client := hub.NewClient(s.cameraHub, c)
	client.Run()
}
