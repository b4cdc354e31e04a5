package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
)

// Send delivers one command to the daemon's command socket and returns its
// reply.
func Send(cmd Command) (*Response, error) {
	return SendTo(SocketPath(), cmd)
}

// SendTo is Send against an explicit socket path.
func SendTo(path string, cmd Command) (*Response, error) {
	conn, err := net.Dial("unix", path)
	if err != nil {
		return nil, fmt.Errorf("connecting to daemon at %s: %w", path, err)
	}
	defer conn.Close()

	if err := json.NewEncoder(conn).Encode(cmd); err != nil {
		return nil, fmt.Errorf("sending command: %w", err)
	}

	reader := bufio.NewReader(conn)
	line, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("reading reply: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(line, &resp); err != nil {
		return nil, fmt.Errorf("decoding reply: %w", err)
	}
	if resp.Status == "error" {
		return &resp, fmt.Errorf("daemon rejected command: %s", resp.Message)
	}
	return &resp, nil
}
