package cmd

import (
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/spf13/viper"

	"github.com/shaderpaper/shaderpaper/internal/cli/cmd/utils"
	"github.com/shaderpaper/shaderpaper/internal/ipc"
	"github.com/shaderpaper/shaderpaper/internal/media"
	"github.com/shaderpaper/shaderpaper/internal/wayland"
)

// StartManager runs the wallpaper daemon in the current process until it is
// stopped by a signal or the control socket.
func StartManager() {
	log.Infof("StartManager() started in PID: %d", os.Getpid())

	if os.Getenv("BACKGROUND_PROCESS") == "1" {
		setupRotatingLogger()
	}

	if _, err := ipc.GetStatus(); err == nil {
		log.Infof("shaderpaper is already running, exiting")
		os.Exit(0)
	}

	display, err := wayland.Connect()
	if err != nil {
		log.Fatalf("Error connecting to the compositor: %v", err)
	}
	defer display.Close()

	cfg := wayland.Config{
		FPS:      viper.GetInt("fps"),
		Layer:    viper.GetString("layer"),
		FifoPath: utils.CanonicalPath(viper.GetString("fifo")),
		Mute:     viper.GetBool("mute"),
		Initial:  initialMedia(),
	}

	server := startCommandServer()
	defer server.Close()

	scheduler, err := wayland.NewScheduler(display, cfg, server.Changes())
	if err != nil {
		log.Fatalf("Error starting render loop: %v", err)
	}

	go ipc.StartStatusAPI(scheduler)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-sig
		log.Infof("Received %v, shutting down", s)
		scheduler.RequestStop()
	}()

	if err := scheduler.Run(); err != nil {
		log.Fatalf("Render loop failed: %v", err)
	}

	log.Infof("shaderpaper exited")
}

// initialMedia resolves the startup content from config. With no image or
// video configured the built-in shader runs.
func initialMedia() media.Type {
	shader := viper.GetString("shader")
	if shader != "" && shader != media.DefaultShaderName {
		shader = utils.CanonicalPath(shader)
	}

	if path := viper.GetString("image"); path != "" {
		return media.NewImageType(utils.CanonicalPath(path), shader)
	}
	if path := viper.GetString("video"); path != "" {
		return media.NewVideoType(utils.CanonicalPath(path), shader)
	}
	if shader == "" {
		shader = media.DefaultShaderName
	}
	return media.NewShaderType(shader)
}

func startCommandServer() *ipc.Server {
	server, err := ipc.NewServer(ipc.SocketPath())
	if err != nil {
		log.Fatalf("Error starting socket server: %v", err)
	}

	go func() {
		log.Infof("Starting socket server on %s", ipc.SocketPath())
		server.Serve()
	}()

	return server
}

func setupRotatingLogger() {
	home := os.Getenv("HOME")
	logDir := filepath.Join(home, ".local", "share", "shaderpaper")
	logPath := filepath.Join(logDir, "shaderpaper.log")

	writer, err := rotatelogs.New(
		logPath+".%Y%m%d%H%M",
		rotatelogs.WithLinkName(logPath),
		rotatelogs.WithMaxAge(7*24*time.Hour),
		rotatelogs.WithRotationSize(10*1024*1024),
		rotatelogs.WithRotationTime(24*time.Hour),
	)
	if err != nil {
		log.Fatalf("failed to configure log rotation: %v", err)
	}

	log.SetOutput(writer)
	log.SetLevel(log.InfoLevel)
}
