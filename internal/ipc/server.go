package ipc

import (
	"bufio"
	"encoding/json"
	"net"
	"os"

	"github.com/charmbracelet/log"
)

// Server accepts command connections and forwards decoded media changes to
// the render scheduler through Changes. Each connection may send any number
// of commands; every line gets a reply line.
type Server struct {
	listener net.Listener
	changes  chan MediaChange
	path     string
}

// NewServer binds the command socket at path, replacing a stale one.
func NewServer(path string) (*Server, error) {
	if _, err := os.Stat(path); err == nil {
		_ = os.Remove(path)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, err
	}

	log.Infof("command socket listening at %s", path)

	return &Server{
		listener: listener,
		changes:  make(chan MediaChange, 16),
		path:     path,
	}, nil
}

// Changes delivers decoded media changes in arrival order.
func (s *Server) Changes() <-chan MediaChange { return s.changes }

// Serve accepts connections until the listener closes. Run it on its own
// goroutine.
func (s *Server) Serve() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			log.Debugf("command socket closed: %v", err)
			return
		}
		go s.handle(conn)
	}
}

func (s *Server) handle(conn net.Conn) {
	defer conn.Close()

	log.Debug("command client connected")

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	encoder := json.NewEncoder(conn)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var cmd Command
		if err := json.Unmarshal(line, &cmd); err != nil {
			log.Warnf("invalid command json: %v", err)
			if err := encoder.Encode(errorResponse("invalid JSON command: " + err.Error())); err != nil {
				return
			}
			continue
		}

		change, err := cmd.ToMediaChange()
		if err != nil {
			log.Warnf("rejected command: %v", err)
			if err := encoder.Encode(errorResponse(err.Error())); err != nil {
				return
			}
			continue
		}

		log.Infof("command accepted: %s (monitors %v, mute %v)", change.Type, change.Monitors, change.Mute)

		s.changes <- change
		if err := encoder.Encode(successResponse()); err != nil {
			return
		}
	}

	log.Debug("command client disconnected")
}

// Close shuts the listener and removes the socket file.
func (s *Server) Close() {
	_ = s.listener.Close()
	_ = os.Remove(s.path)
}
