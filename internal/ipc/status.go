package ipc

import (
	"net"
	"net/http"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
	"github.com/spf13/viper"

	"github.com/shaderpaper/shaderpaper"
	"github.com/shaderpaper/shaderpaper/internal/middleware"
)

// StatusSource is what the HTTP API needs from the running daemon.
type StatusSource interface {
	CurrentMedia() string
	MonitorNames() []string
	RequestStop()
}

// StatusResponse is the GET /status payload.
type StatusResponse struct {
	Status       string   `json:"status"`
	Message      string   `json:"message"`
	Version      string   `json:"version"`
	PID          int      `json:"pid"`
	Socket       string   `json:"socket"`
	Config       string   `json:"config"`
	CurrentMedia string   `json:"current_media"`
	Monitors     []string `json:"monitors"`
}

// StartStatusAPI serves the HTTP status API on the api socket. It blocks;
// run it on its own goroutine.
func StartStatusAPI(source StatusSource) {
	sockPath := APISocketPath()

	if _, err := os.Stat(sockPath); err == nil {
		_ = os.Remove(sockPath)
	}

	listener, err := net.Listen("unix", sockPath)
	if err != nil {
		log.Fatal(err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Listener = listener

	e.Use(middleware.CharmLog())

	RegisterRoutes(e, source)

	server := new(http.Server)
	if err := e.StartServer(server); err != nil {
		log.Fatalf("status API server error: %v", err)
	}
}

func RegisterRoutes(e *echo.Echo, source StatusSource) {
	e.GET("/status", statusHandler(source))
	e.POST("/stop", stopHandler(source))
}

// GET /status
func statusHandler(source StatusSource) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSONPretty(http.StatusOK, StatusResponse{
			Status:       "ok",
			Message:      "shaderpaper is running",
			Version:      strings.Trim(shaderpaper.Version, "\n\r "),
			PID:          os.Getpid(),
			Socket:       SocketPath(),
			Config:       viper.ConfigFileUsed(),
			CurrentMedia: source.CurrentMedia(),
			Monitors:     source.MonitorNames(),
		}, "  ")
	}
}

// POST /stop
func stopHandler(source StatusSource) echo.HandlerFunc {
	return func(c echo.Context) error {
		source.RequestStop()
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	}
}
